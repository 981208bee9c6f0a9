package report

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fatih/color"

	"treecopy/internal/models"
	"treecopy/pkg/utils"
)

var (
	headerColor  = color.New(color.Bold, color.FgCyan)
	folderColor  = color.New(color.FgBlue)
	successColor = color.New(color.FgGreen)
	failColor    = color.New(color.FgRed)
	faintColor   = color.New(color.Faint)
)

// Console narrates a run to a terminal and mirrors each event to slog.
type Console struct {
	out    io.Writer
	logger *slog.Logger
}

func NewConsole(out io.Writer, logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{out: out, logger: logger}
}

func (c *Console) RunStarted(t time.Time) {
	fmt.Fprintf(c.out, "%s %s\n", headerColor.Sprint("Start time:"), utils.FormatTime(t))
	c.logger.Info("run started", "start_time", t)
}

func (c *Console) ContainerStarted(phase, name string, depth int) {
	verb := "Copying"
	if phase == PhaseRelocate {
		verb = "Relocating"
	}
	fmt.Fprintf(c.out, "%s%s folder: %s\n", strings.Repeat("  ", depth), verb, folderColor.Sprint(name))
	c.logger.Debug("container started", "phase", phase, "name", name, "depth", depth)
}

func (c *Console) LeafFailed(phase, id, name string, err error) {
	if phase == PhaseRelocate {
		fmt.Fprintf(c.out, "%s\n", failColor.Sprintf("An error occurred while moving %s: %v", id, err))
	}
	c.logger.Warn("leaf operation failed", "phase", phase, "id", id, "name", name, "error", err)
}

// RunFinished prints the timing block, the final counts and, when there are
// failures, a one-line dump per failure.
func (c *Console) RunFinished(summary models.RunSummary) {
	fmt.Fprintf(c.out, "%s %s\n", headerColor.Sprint("End time:"), summary.EndTime)
	fmt.Fprintf(c.out, "%s %s\n", headerColor.Sprint("Total time elapsed:"), summary.Elapsed)

	if summary.Error != "" {
		fmt.Fprintf(c.out, "%s\n", failColor.Sprintf("Copy process aborted: %s", summary.Error))
	} else {
		fmt.Fprintln(c.out, successColor.Sprint("Copy process completed."))
	}

	stats := summary.Statistics
	fmt.Fprintf(c.out, "Total files: %d\n", stats.Attempted)
	fmt.Fprintf(c.out, "Successfully copied files: %d\n", stats.Succeeded)
	fmt.Fprintf(c.out, "Failed to copy files: %d\n", stats.Failed)
	if summary.Relocated > 0 || summary.RelocateFailed > 0 {
		fmt.Fprintf(c.out, "Relocated files: %d\n", summary.Relocated)
		fmt.Fprintf(c.out, "Failed to relocate files: %d\n", summary.RelocateFailed)
	}

	c.logger.Info("run finished",
		"phase", summary.Phase,
		"total", stats.Attempted,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"relocated", summary.Relocated,
		"relocate_failed", summary.RelocateFailed,
		"elapsed", summary.Elapsed,
	)

	if summary.ReportPath != "" {
		fmt.Fprintf(c.out, "Logging failed copies to %s\n", summary.ReportPath)
	}
	if len(summary.Failures) > 0 {
		fmt.Fprintln(c.out, failColor.Sprint("Failed copies:"))
		for _, f := range summary.Failures {
			fmt.Fprintf(c.out, "ID: %s, Name: %s, Error: %s %s\n", f.ID, f.Name, f.Error, faintColor.Sprintf("(%s)", f.Phase))
		}
	}
}
