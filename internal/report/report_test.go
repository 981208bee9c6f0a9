package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treecopy/internal/models"
)

func init() {
	color.NoColor = true
}

func TestOutcome(t *testing.T) {
	o := NewOutcome()
	o.RecordSuccess()
	o.RecordFailure(models.FailureRecord{ID: "1", Name: "a", Error: "boom"})
	o.RecordSuccess()
	o.RecordFailure(models.FailureRecord{ID: "1", Name: "a", Error: "boom"})

	stats := o.Summarize()
	assert.Equal(t, models.RunStatistics{Attempted: 4, Succeeded: 2, Failed: 2}, stats)

	failures := o.Failures()
	require.Len(t, failures, 2, "failures are not deduplicated")
	assert.Equal(t, PhaseCopy, failures[0].Phase)

	failures[0].Name = "changed"
	assert.Equal(t, "a", o.Failures()[0].Name)
}

func TestOutcomeRelocations(t *testing.T) {
	o := NewOutcome()
	o.RecordRelocated()
	o.RecordRelocateFailure(nil)
	o.RecordRelocateFailure(&models.FailureRecord{ID: "9", Name: "z", Error: "denied"})

	relocated, failed := o.Relocations()
	assert.Equal(t, 1, relocated)
	assert.Equal(t, 2, failed)
	assert.Equal(t, models.RunStatistics{}, o.Summarize())

	failures := o.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, PhaseRelocate, failures[0].Phase)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []models.FailureRecord{
		{ID: "abc", Name: "report, final.pdf", Error: `quota "exceeded"`},
		{ID: "def", Name: "b.txt", Error: "denied", Phase: PhaseCopy},
		{ID: "ghi", Name: "c.txt", Error: "denied", Phase: PhaseRelocate},
	})
	require.NoError(t, err)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"id", "name", "error"},
		{"abc", "report, final.pdf", `quota "exceeded"`},
		{"def", "b.txt", "denied"},
		{"ghi", "c.txt", "relocate: denied"},
	}, rows)
}

func TestExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	startedAt := time.Date(2024, 7, 9, 14, 3, 27, 0, time.Local)

	path, err := Export(dir, startedAt, nil)
	require.NoError(t, err)
	assert.Empty(t, path)
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "no report directory when there are no failures")

	path, err = Export(dir, startedAt, []models.FailureRecord{{ID: "1", Name: "a", Error: "e"}})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "failed_copies_log_20240709_140327.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id,name,error\n1,a,e\n", string(data))
}

func TestConsole(t *testing.T) {
	var out bytes.Buffer
	console := NewConsole(&out, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	console.RunStarted(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	console.ContainerStarted(PhaseCopy, "Projects", 0)
	console.ContainerStarted(PhaseRelocate, "sub", 1)
	console.LeafFailed(PhaseCopy, "f1", "a.txt", errors.New("quota"))
	console.LeafFailed(PhaseRelocate, "f2", "b.txt", errors.New("denied"))
	console.RunFinished(models.RunSummary{
		EndTime:    "2024-01-01T09:05:00Z",
		Elapsed:    "5m0s",
		Statistics: models.RunStatistics{Attempted: 3, Succeeded: 2, Failed: 1},
		Relocated:  1,
		Failures:   []models.FailureRecord{{ID: "f1", Name: "a.txt", Error: "quota", Phase: PhaseCopy}},
		ReportPath: "failed_copies_log_20240101_090000.csv",
	})

	text := out.String()
	for _, want := range []string{
		"Start time: 2024-01-01T09:00:00Z",
		"Copying folder: Projects",
		"  Relocating folder: sub",
		"An error occurred while moving f2: denied",
		"End time: 2024-01-01T09:05:00Z",
		"Total time elapsed: 5m0s",
		"Copy process completed.",
		"Total files: 3",
		"Successfully copied files: 2",
		"Failed to copy files: 1",
		"Relocated files: 1",
		"Logging failed copies to failed_copies_log_20240101_090000.csv",
		"ID: f1, Name: a.txt, Error: quota",
	} {
		assert.Contains(t, text, want)
	}
	assert.NotContains(t, text, "moving f1", "copy failures are only dumped at the end")
}

func TestConsoleAborted(t *testing.T) {
	var out bytes.Buffer
	NewConsole(&out, nil).RunFinished(models.RunSummary{Error: "failed to list folder"})

	assert.Contains(t, out.String(), "Copy process aborted: failed to list folder")
	assert.NotContains(t, out.String(), "Failed copies:")
}
