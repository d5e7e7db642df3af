package cmdutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/opmodel/converge/internal/component"
	"github.com/opmodel/converge/internal/deploy"
	oerrors "github.com/opmodel/converge/internal/errors"
	"github.com/opmodel/converge/internal/output"
)

// PrintError prints err in a user-friendly format. Structured errors print a
// short summary line followed by their details.
func PrintError(msg string, err error) {
	var detail *oerrors.DetailError
	if errors.As(err, &detail) {
		output.Error(fmt.Sprintf("%s: %s", msg, detail.Message))
		output.Details(detail.Error())
		return
	}
	output.Error(msg, "error", err)
}

// WriteHostResult writes the outcome of one host. Current components are
// listed only when verbose is set.
func WriteHostResult(hr deploy.HostResult, verbose bool) {
	log := output.HostLogger(hr.Host)

	for _, e := range hr.Report.Entries {
		switch {
		case e.Updated:
			log.Info(output.FormatComponentLine(e.Path, output.StatusUpdated))
		case verbose:
			log.Info(output.FormatComponentLine(e.Path, output.StatusCurrent))
		}
	}

	duration := hr.Duration.Round(time.Millisecond)
	if hr.Err != nil {
		var de *component.DeployError
		if errors.As(hr.Err, &de) {
			log.Error(output.FormatComponentLine(de.Path, output.StatusFailed))
		}
		log.Error(output.FormatCross(fmt.Sprintf("host failed after %s", duration)), "error", hr.Err)
		return
	}

	log.Info(output.FormatCheckmark(fmt.Sprintf("host converged: %d updated, %d current (%s)",
		hr.Report.Updated(), len(hr.Report.Entries)-hr.Report.Updated(), duration)))
}

// WriteSummary writes the run summary line.
func WriteSummary(result *deploy.Result) {
	failed := len(result.Failed())
	msg := fmt.Sprintf("%d host(s), %d component(s) updated, %d host(s) failed",
		len(result.Hosts), result.Updated(), failed)
	if failed > 0 {
		output.Println(output.FormatCross(output.StyleSummary.Render(msg)))
		return
	}
	output.Println(output.FormatCheckmark(output.StyleSummary.Render(msg)))
}
