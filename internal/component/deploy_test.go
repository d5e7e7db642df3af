package component

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/opmodel/converge/internal/errors"
)

// tree builds A{B{D}, C}.
func tree(t *testing.T, journal *[]string) (a, b, c, d *recorder) {
	t.Helper()
	a = newRecorder(t, "A", journal)
	b = newRecorder(t, "B", journal)
	c = newRecorder(t, "C", journal)
	d = newRecorder(t, "D", journal)
	a.configure = func(r *recorder) error {
		if err := r.Add(b); err != nil {
			return err
		}
		return r.Add(c)
	}
	b.configure = func(r *recorder) error { return r.Add(d) }
	require.NoError(t, Prepare(a, testContext(), nil))
	*journal = nil
	return a, b, c, d
}

func TestDeploy_PostOrder(t *testing.T) {
	var journal []string
	a, _, _, _ := tree(t, &journal)

	report, err := Deploy(context.Background(), a)
	require.NoError(t, err)

	assert.Equal(t, []string{"verify:D", "verify:B", "verify:C", "verify:A"}, journal)
	require.Len(t, report.Entries, 4)
	assert.Equal(t, "recorder(A) > recorder(B) > recorder(D)", report.Entries[0].Path)
	assert.Equal(t, "recorder(A)", report.Entries[3].Path)
	assert.Zero(t, report.Updated())
}

func TestDeploy_UpdateRunsOnceWhenNeeded(t *testing.T) {
	var journal []string
	a, _, c, _ := tree(t, &journal)
	c.status = NeedsUpdate

	report, err := Deploy(context.Background(), a)
	require.NoError(t, err)

	assert.Equal(t, []string{"verify:D", "verify:B", "verify:C", "update:C", "verify:A"}, journal)
	assert.Equal(t, 1, report.Updated())
	assert.True(t, report.Entries[2].Updated)
}

func TestDeploy_Idempotent(t *testing.T) {
	var journal []string
	a, b, c, d := tree(t, &journal)
	for _, r := range []*recorder{a, b, c, d} {
		r.status = Current
	}

	_, err := Deploy(context.Background(), a)
	require.NoError(t, err)
	_, err = Deploy(context.Background(), a)
	require.NoError(t, err)

	for _, line := range journal {
		assert.NotContains(t, line, "update:")
	}
}

func TestDeploy_VerifyErrorAborts(t *testing.T) {
	var journal []string
	a, b, _, _ := tree(t, &journal)
	boom := errors.New("probe failed")
	b.verifyErr = boom
	b.status = NeedsUpdate

	report, err := Deploy(context.Background(), a)
	require.Error(t, err)

	assert.Equal(t, []string{"verify:D", "verify:B"}, journal)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, cerrors.ErrDeploy)

	var de *DeployError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, PhaseVerify, de.Phase)
	assert.Equal(t, "recorder(A) > recorder(B)", de.Path)
	assert.Len(t, report.Entries, 1)
}

func TestDeploy_UpdateErrorAborts(t *testing.T) {
	var journal []string
	a, _, c, _ := tree(t, &journal)
	c.status = NeedsUpdate
	c.updateErr = errors.New("disk full")

	_, err := Deploy(context.Background(), a)
	require.Error(t, err)
	assert.True(t, IsDeployError(err))
	assert.Contains(t, err.Error(), "update recorder(A) > recorder(C): disk full")
	assert.NotContains(t, journal, "verify:A")
}

func TestDeploy_Canceled(t *testing.T) {
	var journal []string
	a, _, _, _ := tree(t, &journal)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Deploy(ctx, a)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, journal)
}

func TestReportMerge(t *testing.T) {
	r := &Report{Entries: []Entry{{Path: "a"}}}
	r.Merge(&Report{Entries: []Entry{{Path: "b", Updated: true}}})
	r.Merge(nil)

	assert.Len(t, r.Entries, 2)
	assert.Equal(t, 1, r.Updated())
}
