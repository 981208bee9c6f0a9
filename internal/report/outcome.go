// Package report accumulates the outcome of a replication run and renders it
// to the console and to a CSV failure log.
package report

import "treecopy/internal/models"

const (
	PhaseCopy     = "copy"
	PhaseRelocate = "relocate"
)

// Outcome is the per-run accumulator. It is owned by a single run and is not
// safe for concurrent use.
type Outcome struct {
	stats          models.RunStatistics
	relocated      int
	relocateFailed int
	failures       []models.FailureRecord
}

func NewOutcome() *Outcome {
	return &Outcome{}
}

func (o *Outcome) RecordSuccess() {
	o.stats.Attempted++
	o.stats.Succeeded++
}

// RecordFailure counts a failed copy and appends rec in encounter order.
func (o *Outcome) RecordFailure(rec models.FailureRecord) {
	o.stats.Attempted++
	o.stats.Failed++
	if rec.Phase == "" {
		rec.Phase = PhaseCopy
	}
	o.failures = append(o.failures, rec)
}

func (o *Outcome) RecordRelocated() {
	o.relocated++
}

// RecordRelocateFailure counts a failed relocation. A nil rec keeps the
// failure out of the failure list.
func (o *Outcome) RecordRelocateFailure(rec *models.FailureRecord) {
	o.relocateFailed++
	if rec == nil {
		return
	}
	r := *rec
	r.Phase = PhaseRelocate
	o.failures = append(o.failures, r)
}

func (o *Outcome) Summarize() models.RunStatistics {
	return o.stats
}

func (o *Outcome) Relocations() (relocated, failed int) {
	return o.relocated, o.relocateFailed
}

func (o *Outcome) Failures() []models.FailureRecord {
	out := make([]models.FailureRecord, len(o.failures))
	copy(out, o.failures)
	return out
}
