package types

import (
	"fmt"
	"strings"
)

// RiskLevel is the severity classification attached to every published
// assessment. The closed set mirrors what the on-chain consumers expect:
// anything outside it is coerced to RiskUnknown before leaving the process.
type RiskLevel string

const (
	RiskOK       RiskLevel = "ok"
	RiskWarning  RiskLevel = "warning"
	RiskCritical RiskLevel = "critical"
	RiskUnknown  RiskLevel = "unknown"
)

// Valid reports whether l is one of the four published severities.
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskOK, RiskWarning, RiskCritical, RiskUnknown:
		return true
	}
	return false
}

// Severity orders levels for aggregation: unknown < ok < warning < critical.
func (l RiskLevel) Severity() int {
	switch l {
	case RiskCritical:
		return 3
	case RiskWarning:
		return 2
	case RiskOK:
		return 1
	default:
		return 0
	}
}

// ParseRiskLevel normalizes a free-form severity string from a snapshot
// producer. Unrecognized values report ok=false so callers can fall back to
// their own classification.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	l := RiskLevel(strings.ToLower(strings.TrimSpace(s)))
	if l.Valid() {
		return l, true
	}
	return RiskUnknown, false
}

// RiskLabel renders the "<workflow>:<level>" form recorded on chain,
// e.g. "treasury:warning".
func RiskLabel(workflowKey string, l RiskLevel) string {
	if !l.Valid() {
		l = RiskUnknown
	}
	return fmt.Sprintf("%s:%s", workflowKey, l)
}

// SplitRiskLabel is the inverse of RiskLabel. It tolerates labels written by
// older producers as long as they keep the single-colon shape.
func SplitRiskLabel(label string) (workflowKey string, level RiskLevel, err error) {
	idx := strings.LastIndex(label, ":")
	if idx <= 0 || idx == len(label)-1 {
		return "", RiskUnknown, fmt.Errorf("malformed risk label %q", label)
	}
	level, ok := ParseRiskLevel(label[idx+1:])
	if !ok {
		return "", RiskUnknown, fmt.Errorf("unknown risk level in label %q", label)
	}
	return label[:idx], level, nil
}
