package replicator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"treecopy/internal/models"
	"treecopy/internal/remote"
	"treecopy/internal/report"
)

type RelocatePolicy string

const (
	// RelocateLog narrates relocation failures without adding them to the
	// failure list.
	RelocateLog RelocatePolicy = "log"
	// RelocateRecord also appends relocation failures to the failure list.
	RelocateRecord RelocatePolicy = "record"
)

func ParseRelocatePolicy(s string) (RelocatePolicy, error) {
	switch RelocatePolicy(s) {
	case "", RelocateLog:
		return RelocateLog, nil
	case RelocateRecord:
		return RelocateRecord, nil
	default:
		return "", fmt.Errorf("unknown relocate policy %q (want %q or %q)", s, RelocateLog, RelocateRecord)
	}
}

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// Narrator receives progress events while a run is in progress.
type Narrator interface {
	RunStarted(startedAt time.Time)
	ContainerStarted(phase, name string, depth int)
	LeafFailed(phase, id, name string, err error)
}

type nopNarrator struct{}

func (nopNarrator) RunStarted(time.Time)                     {}
func (nopNarrator) ContainerStarted(string, string, int)     {}
func (nopNarrator) LeafFailed(string, string, string, error) {}

type Options struct {
	MaxDepth       int
	RelocatePolicy RelocatePolicy
	Clock          Clock
	Narrator       Narrator
}

// Engine replicates a container tree in two strictly sequential phases: a
// copy into a staging root followed by a relocation into the destination.
type Engine struct {
	storage remote.Storage
	opts    Options
}

func New(storage remote.Storage, opts Options) *Engine {
	if opts.RelocatePolicy == "" {
		opts.RelocatePolicy = RelocateLog
	}
	if opts.Clock == nil {
		opts.Clock = ClockFunc(time.Now)
	}
	if opts.Narrator == nil {
		opts.Narrator = nopNarrator{}
	}
	return &Engine{storage: storage, opts: opts}
}

// Replicate runs both phases for job. The returned Run is never nil, so the
// caller can report partial results after a fatal error.
func (e *Engine) Replicate(ctx context.Context, job Job) (*Run, error) {
	run := NewRun(job)
	if err := e.Stage(ctx, run); err != nil {
		return run, err
	}
	if err := e.Relocate(ctx, run); err != nil {
		return run, err
	}
	return run, nil
}

// Stage mirrors the source tree under a new root inside the staging parent.
// Leaf copy failures are recorded on the run; every other error aborts it.
func (e *Engine) Stage(ctx context.Context, run *Run) error {
	if err := run.advance(PhaseNotStarted, PhaseStaging); err != nil {
		return err
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = e.opts.Clock.Now()
	}
	e.opts.Narrator.RunStarted(run.StartedAt)

	name, err := e.storage.GetName(ctx, run.SourceID)
	if err != nil {
		return run.fail(fmt.Errorf("failed to get source folder name: %w", err), e.opts.Clock.Now())
	}
	run.SourceName = name

	rootID, err := e.storage.CreateContainer(ctx, name, run.StagingParentID)
	if err != nil {
		return run.fail(fmt.Errorf("failed to create staging folder %q: %w", name, err), e.opts.Clock.Now())
	}
	run.StagingRootID = rootID

	frame := TraversalContext{SourceID: run.SourceID, DestinationID: rootID, Name: name}
	visitor := &copyVisitor{storage: e.storage, outcome: run.Outcome, narrator: e.opts.Narrator}
	if err := e.walker(report.PhaseCopy).Walk(ctx, frame, visitor); err != nil {
		return run.fail(err, e.opts.Clock.Now())
	}

	run.FinishedAt = e.opts.Clock.Now()
	return run.advance(PhaseStaging, PhaseStaged)
}

// Relocate rebuilds the staged structure under the destination and moves
// each staged leaf into its new container. The staged root's children land
// directly under the destination.
func (e *Engine) Relocate(ctx context.Context, run *Run) error {
	if err := run.advance(PhaseStaged, PhaseRelocating); err != nil {
		return err
	}

	frame := TraversalContext{SourceID: run.StagingRootID, DestinationID: run.DestinationID, Name: run.SourceName}
	visitor := &relocateVisitor{
		storage:  e.storage,
		outcome:  run.Outcome,
		narrator: e.opts.Narrator,
		policy:   e.opts.RelocatePolicy,
	}
	if err := e.walker(report.PhaseRelocate).Walk(ctx, frame, visitor); err != nil {
		return run.fail(err, e.opts.Clock.Now())
	}

	run.FinishedAt = e.opts.Clock.Now()
	return run.advance(PhaseRelocating, PhaseDone)
}

func (e *Engine) walker(phase string) *Walker {
	w := NewWalker(e.storage, e.opts.MaxDepth)
	w.OnContainer = func(frame TraversalContext) {
		e.opts.Narrator.ContainerStarted(phase, frame.Name, frame.Depth)
	}
	return w
}

type copyVisitor struct {
	storage  remote.Storage
	outcome  *report.Outcome
	narrator Narrator
}

func (v *copyVisitor) EnterContainer(ctx context.Context, parent TraversalContext, item models.RemoteItem) (string, error) {
	id, err := v.storage.CreateContainer(ctx, item.Name, parent.DestinationID)
	if err != nil {
		return "", fmt.Errorf("failed to create folder %q: %w", item.Name, err)
	}
	return id, nil
}

func (v *copyVisitor) VisitLeaf(ctx context.Context, parent TraversalContext, item models.RemoteItem) error {
	name, err := v.storage.GetName(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("failed to get name of %s: %w", item.ID, err)
	}

	if _, err := v.storage.CopyItem(ctx, item.ID, parent.DestinationID, name); err != nil {
		v.outcome.RecordFailure(models.FailureRecord{
			ID:    item.ID,
			Name:  name,
			Error: causeText(err),
			Phase: report.PhaseCopy,
		})
		v.narrator.LeafFailed(report.PhaseCopy, item.ID, name, err)
		return nil
	}
	v.outcome.RecordSuccess()
	return nil
}

type relocateVisitor struct {
	storage  remote.Storage
	outcome  *report.Outcome
	narrator Narrator
	policy   RelocatePolicy
}

func (v *relocateVisitor) EnterContainer(ctx context.Context, parent TraversalContext, item models.RemoteItem) (string, error) {
	id, err := v.storage.CreateContainer(ctx, item.Name, parent.DestinationID)
	if err != nil {
		return "", fmt.Errorf("failed to create destination folder %q: %w", item.Name, err)
	}
	return id, nil
}

func (v *relocateVisitor) VisitLeaf(ctx context.Context, parent TraversalContext, item models.RemoteItem) error {
	err := v.storage.ReparentItem(ctx, item.ID, parent.DestinationID, parent.SourceID)
	if err == nil {
		v.outcome.RecordRelocated()
		return nil
	}

	v.narrator.LeafFailed(report.PhaseRelocate, item.ID, item.Name, err)
	if v.policy == RelocateRecord {
		v.outcome.RecordRelocateFailure(&models.FailureRecord{
			ID:    item.ID,
			Name:  item.Name,
			Error: causeText(err),
		})
	} else {
		v.outcome.RecordRelocateFailure(nil)
	}
	return nil
}

// causeText strips the operation prefix from storage errors.
func causeText(err error) string {
	var opErr *remote.OperationError
	if errors.As(err, &opErr) && opErr.Err != nil {
		return opErr.Err.Error()
	}
	return err.Error()
}
