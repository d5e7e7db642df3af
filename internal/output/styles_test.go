package output

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestStatusStyle(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		wantBold bool
		wantFG   lipgloss.TerminalColor
		wantDim  bool
	}{
		{name: "current returns faint", status: StatusCurrent, wantDim: true},
		{name: "updated returns yellow", status: StatusUpdated, wantFG: ColorYellow},
		{name: "failed returns bold red", status: StatusFailed, wantBold: true, wantFG: ColorBoldRed},
		{name: "unknown returns default unstyled", status: "unknown-value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			style := StatusStyle(tt.status)
			assert.Equal(t, tt.wantBold, style.GetBold())
			assert.Equal(t, tt.wantDim, style.GetFaint())
			if tt.wantFG != nil {
				assert.Equal(t, tt.wantFG, style.GetForeground())
			}
		})
	}
}

func TestFormatComponentLine(t *testing.T) {
	line := FormatComponentLine("App > File(/etc/app.conf)", StatusUpdated)

	assert.Contains(t, line, "App > File(/etc/app.conf)")
	assert.Contains(t, line, StatusUpdated)
	assert.True(t, strings.Index(line, "App") < strings.Index(line, StatusUpdated))
}

func TestFormatComponentLine_LongPathKeepsSeparation(t *testing.T) {
	path := strings.Repeat("x", 80)
	line := FormatComponentLine(path, StatusCurrent)

	assert.Contains(t, line, path+"  ")
}

func TestFormatCheckmark(t *testing.T) {
	assert.Contains(t, FormatCheckmark("host web01 converged"), "host web01 converged")
	assert.Contains(t, FormatCross("host web02 failed"), "host web02 failed")
}
