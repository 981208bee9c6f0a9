package replicator

import (
	"errors"
	"fmt"
	"time"

	"treecopy/internal/models"
	"treecopy/internal/report"
	"treecopy/pkg/utils"
)

var ErrInvalidTransition = errors.New("invalid phase transition")

type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseStaging
	PhaseStaged
	PhaseRelocating
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "NOT_STARTED"
	case PhaseStaging:
		return "STAGING"
	case PhaseStaged:
		return "STAGED"
	case PhaseRelocating:
		return "RELOCATING"
	case PhaseDone:
		return "DONE"
	case PhaseFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Job names the three containers a run operates on.
type Job struct {
	SourceID        string
	StagingParentID string
	DestinationID   string
}

// Run carries the state of one replication job: its phase, the staged root
// and the outcome accumulator. A Run is used by one goroutine only.
type Run struct {
	Job
	SourceName    string
	StagingRootID string
	StartedAt     time.Time
	FinishedAt    time.Time
	Outcome       *report.Outcome

	phase Phase
	err   error
}

func NewRun(job Job) *Run {
	return &Run{
		Job:     job,
		Outcome: report.NewOutcome(),
	}
}

func (r *Run) Phase() Phase {
	return r.phase
}

// Err returns the fatal error that moved the run to PhaseFailed, if any.
func (r *Run) Err() error {
	return r.err
}

func (r *Run) advance(from, to Phase) error {
	if r.phase != from {
		return fmt.Errorf("%w: %s -> %s (run is %s)", ErrInvalidTransition, from, to, r.phase)
	}
	r.phase = to
	return nil
}

func (r *Run) fail(err error, at time.Time) error {
	r.phase = PhaseFailed
	r.err = err
	r.FinishedAt = at
	return err
}

func (r *Run) Summary() models.RunSummary {
	relocated, relocateFailed := r.Outcome.Relocations()
	summary := models.RunSummary{
		SourceID:       r.SourceID,
		StagingRootID:  r.StagingRootID,
		DestinationID:  r.DestinationID,
		Phase:          r.phase.String(),
		Statistics:     r.Outcome.Summarize(),
		Relocated:      relocated,
		RelocateFailed: relocateFailed,
		Failures:       r.Outcome.Failures(),
		StartTime:      utils.FormatTime(r.StartedAt),
		EndTime:        utils.FormatTime(r.FinishedAt),
		Elapsed:        r.FinishedAt.Sub(r.StartedAt).String(),
	}
	if r.err != nil {
		summary.Error = r.err.Error()
	}
	return summary
}
