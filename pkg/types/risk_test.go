package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRiskLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  RiskLevel
		ok    bool
	}{
		{"lowercase ok", "ok", RiskOK, true},
		{"mixed case", "Warning", RiskWarning, true},
		{"padded", "  critical ", RiskCritical, true},
		{"unknown literal", "unknown", RiskUnknown, true},
		{"unrecognized", "severe", RiskUnknown, false},
		{"empty", "", RiskUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRiskLevel(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestRiskLabel(t *testing.T) {
	assert.Equal(t, "treasury:warning", RiskLabel("treasury", RiskWarning))
	assert.Equal(t, "feeds:ok", RiskLabel("feeds", RiskOK))

	// Invalid levels never leak into a label.
	assert.Equal(t, "curve:unknown", RiskLabel("curve", RiskLevel("bogus")))
}

func TestSplitRiskLabel(t *testing.T) {
	key, level, err := SplitRiskLabel("governance:critical")
	require.NoError(t, err)
	assert.Equal(t, "governance", key)
	assert.Equal(t, RiskCritical, level)

	_, _, err = SplitRiskLabel("no-colon")
	assert.Error(t, err)

	_, _, err = SplitRiskLabel("treasury:")
	assert.Error(t, err)

	_, _, err = SplitRiskLabel("treasury:elevated")
	assert.Error(t, err)
}

func TestSeverityOrdering(t *testing.T) {
	assert.Greater(t, RiskCritical.Severity(), RiskWarning.Severity())
	assert.Greater(t, RiskWarning.Severity(), RiskOK.Severity())
	assert.Greater(t, RiskOK.Severity(), RiskUnknown.Severity())
}
