package freshness

import (
	"time"

	"github.com/orbital-sentinel/sentinel/internal/snapshot"
)

// Decision is the freshness gate's verdict for one snapshot. Exactly one
// decision is produced per workflow per cycle, and only Proceed lets the
// pipeline touch the chain.
type Decision int

const (
	// Proceed means the snapshot is fresh and previously unpublished.
	Proceed Decision = iota
	// SkipNoTimestamp means the snapshot carries no usable generation time.
	SkipNoTimestamp
	// SkipUnchanged means this exact generation was already published.
	SkipUnchanged
	// SkipStale means the snapshot is older than the staleness threshold.
	SkipStale
)

func (d Decision) String() string {
	switch d {
	case Proceed:
		return "proceed"
	case SkipNoTimestamp:
		return "skip-no-timestamp"
	case SkipUnchanged:
		return "skip-unchanged"
	case SkipStale:
		return "skip-stale"
	default:
		return "unknown"
	}
}

// DefaultThreshold is three monitor cycles of headroom over the producer's
// 15-minute cadence: one missed run plus jitter never trips it, a wedged
// producer does.
const DefaultThreshold = 2700 * time.Second

// Normalize renders a generation time in the canonical form stored in the
// write-state file and compared by the gate: UTC, RFC 3339, nanoseconds
// only when present.
func Normalize(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Equal reports whether a stored write-state value refers to the same
// generation instant. Values written by older builds may differ textually
// (offset form, fractional digits), so a parse-and-compare backs up the
// fast string match.
func Equal(stored string, gen time.Time) bool {
	if stored == "" {
		return false
	}
	if stored == Normalize(gen) {
		return true
	}
	if t, err := time.Parse(time.RFC3339Nano, stored); err == nil {
		return t.Equal(gen)
	}
	return false
}

// Evaluate runs the gate for one snapshot. lastPublished is the write-state
// value for this workflow, empty when none exists. The checks are ordered:
// a missing timestamp skips before the unchanged check, and the unchanged
// check wins over staleness so an already-published old snapshot reports
// unchanged rather than stale.
func Evaluate(doc *snapshot.Document, lastPublished string, threshold time.Duration, now time.Time) Decision {
	gen, ok := doc.GeneratedAt()
	if !ok {
		return SkipNoTimestamp
	}

	if Equal(lastPublished, gen) {
		return SkipUnchanged
	}

	age := now.Sub(gen)
	if age < 0 {
		// Producer clock ahead of ours; a future snapshot is maximally fresh.
		age = 0
	}
	if age > threshold {
		return SkipStale
	}

	return Proceed
}
