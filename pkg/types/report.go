package types

import (
	"fmt"
	"time"
)

// Outcome is the terminal disposition of one workflow pipeline within a
// cycle. Every workflow the cycle attempts ends in exactly one outcome.
type Outcome string

const (
	// OutcomePublished means the assessment was confirmed on chain.
	OutcomePublished Outcome = "published"
	// OutcomeSkipped means the freshness gate (or a missing/unreadable
	// snapshot) stopped the pipeline before any chain interaction.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeDryRun means the pipeline ran through hashing but publishing
	// was suppressed by the operator.
	OutcomeDryRun Outcome = "dry-run"
	// OutcomeFailed means the pipeline was attempted and errored.
	OutcomeFailed Outcome = "failed"
)

// Skip reasons carried on WorkflowResult.Reason for OutcomeSkipped.
const (
	SkipMissingSnapshot = "snapshot missing"
	SkipUnparseable     = "snapshot unparseable"
	SkipNoTimestamp     = "no generation timestamp"
	SkipUnchanged       = "snapshot unchanged"
	SkipStale           = "snapshot stale"
	SkipShutdown        = "shutdown requested"
)

// WorkflowResult is one workflow's line in the cycle report.
type WorkflowResult struct {
	WorkflowKey  string        `json:"workflow_key"`
	Outcome      Outcome       `json:"outcome"`
	Reason       string        `json:"reason,omitempty"`
	RiskLabel    string        `json:"risk_label,omitempty"`
	SnapshotHash string        `json:"snapshot_hash,omitempty"`
	Duration     time.Duration `json:"duration_ns"`
	Proof        *ProofRecord  `json:"proof,omitempty"`
}

// CycleReport aggregates the results of one full assessment cycle.
type CycleReport struct {
	RunID     string           `json:"run_id"`
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"duration_ns"`
	DryRun    bool             `json:"dry_run,omitempty"`
	Results   []WorkflowResult `json:"results"`
}

// Published counts workflows that confirmed an assessment on chain.
func (r *CycleReport) Published() int { return r.count(OutcomePublished) }

// Skipped counts workflows stopped before publishing, including dry runs.
func (r *CycleReport) Skipped() int { return r.count(OutcomeSkipped) + r.count(OutcomeDryRun) }

// Failed counts workflows that were attempted and errored.
func (r *CycleReport) Failed() int { return r.count(OutcomeFailed) }

func (r *CycleReport) count(o Outcome) int {
	n := 0
	for i := range r.Results {
		if r.Results[i].Outcome == o {
			n++
		}
	}
	return n
}

// AllAttemptedFailed reports whether the cycle produced at least one failure
// and not a single publication. This is the only condition under which a
// finished cycle exits non-zero: skips alone never fail a cycle.
func (r *CycleReport) AllAttemptedFailed() bool {
	return r.Failed() > 0 && r.Published() == 0
}

// Summary renders the one-line human digest, e.g. "2 published, 4 skipped, 1 failed".
func (r *CycleReport) Summary() string {
	return fmt.Sprintf("%d published, %d skipped, %d failed", r.Published(), r.Skipped(), r.Failed())
}
