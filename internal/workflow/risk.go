package workflow

import (
	"github.com/orbital-sentinel/sentinel/internal/snapshot"
	"github.com/orbital-sentinel/sentinel/pkg/types"
)

// declaredRisk returns the producer's own overallRisk verdict when it names
// a known level. The monitor already runs the full threshold analysis; the
// bridge only re-derives when the field is absent or garbled.
func declaredRisk(doc *snapshot.Document) (types.RiskLevel, bool) {
	s, ok := doc.Str("overallRisk")
	if !ok {
		return types.RiskUnknown, false
	}
	return types.ParseRiskLevel(s)
}

// bandRisk classifies a value against ascending thresholds: warning at
// warnAt, critical at critAt, ok below both.
func bandRisk(v, warnAt, critAt float64) types.RiskLevel {
	switch {
	case v >= critAt:
		return types.RiskCritical
	case v >= warnAt:
		return types.RiskWarning
	default:
		return types.RiskOK
	}
}

// worse returns the higher-severity of two levels.
func worse(a, b types.RiskLevel) types.RiskLevel {
	if b.Severity() > a.Severity() {
		return b
	}
	return a
}
