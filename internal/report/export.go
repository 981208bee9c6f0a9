package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"treecopy/internal/models"
)

const (
	reportPrefix     = "failed_copies_log_"
	reportTimeLayout = "20060102_150405"
)

var csvHeader = []string{"id", "name", "error"}

func ReportFileName(startedAt time.Time) string {
	return reportPrefix + startedAt.Format(reportTimeLayout) + ".csv"
}

func WriteCSV(w io.Writer, failures []models.FailureRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, f := range failures {
		if err := writer.Write([]string{f.ID, f.Name, csvErrorText(f)}); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", f.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// csvErrorText prefixes relocation failures with their phase so they can be
// told apart from copy failures in the shared log.
func csvErrorText(f models.FailureRecord) string {
	if f.Phase == PhaseRelocate {
		return PhaseRelocate + ": " + f.Error
	}
	return f.Error
}

// Export writes the failure log into dir and returns its path. Nothing is
// written and the returned path is empty when there are no failures.
func Export(dir string, startedAt time.Time, failures []models.FailureRecord) (string, error) {
	if len(failures) == 0 {
		return "", nil
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	path := filepath.Join(dir, ReportFileName(startedAt))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	if err := WriteCSV(file, failures); err != nil {
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close report file: %w", err)
	}
	return path, nil
}
