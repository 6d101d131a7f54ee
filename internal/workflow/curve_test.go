package workflow

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbital-sentinel/sentinel/pkg/types"
)

func TestCurveValues(t *testing.T) {
	w, ok := Lookup("curve")
	require.True(t, ok)

	doc := mustParse(t, "curve", `{
		"generatedAt": "2026-08-23T10:15:00Z",
		"linkBalance": 2150000.4,
		"stlinkBalance": 1980000,
		"imbalancePct": 4.12,
		"virtualPrice": 1.003921,
		"tvlUsd": 63700000,
		"linkUsd": 15.43
	}`)

	payload := unpackPayload(t, w, doc)
	require.Len(t, payload, 6)

	assert.Zero(t, big.NewInt(2150000).Cmp(payload[0]), "linkBalance rounds")
	assert.Zero(t, big.NewInt(1980000).Cmp(payload[1]), "stlinkBalance")
	assert.Zero(t, big.NewInt(412).Cmp(payload[2]), "imbalancePct x100")
	assert.Zero(t, big.NewInt(1003921).Cmp(payload[3]), "virtualPrice x1e6")
	assert.Zero(t, big.NewInt(63700000).Cmp(payload[4]), "tvlUsd")
	assert.Zero(t, big.NewInt(1543000000).Cmp(payload[5]), "linkUsd x1e8")
}

func TestCurveNegativeImbalanceEncodesZero(t *testing.T) {
	// The canonical rule collapses negatives to zero; direction is not
	// carried in the tuple. Risk still sees the magnitude.
	w, _ := Lookup("curve")

	doc := mustParse(t, "curve", `{
		"generatedAt": "2026-08-23T10:15:00Z",
		"imbalancePct": -28.4
	}`)

	payload := unpackPayload(t, w, doc)
	assert.Zero(t, new(big.Int).Cmp(payload[2]), "negative encodes as zero")
	assert.Equal(t, types.RiskCritical, w.Risk(doc), "magnitude past 25 is critical either way")
}

func TestCurveRisk(t *testing.T) {
	w, _ := Lookup("curve")

	tests := []struct {
		name string
		body string
		want types.RiskLevel
	}{
		{"balanced pool", `{"imbalancePct": 4.12}`, types.RiskOK},
		{"ten percent skew warns", `{"imbalancePct": 10}`, types.RiskWarning},
		{"negative skew warns too", `{"imbalancePct": -12.5}`, types.RiskWarning},
		{"quarter out is critical", `{"imbalancePct": 25}`, types.RiskCritical},
		{"no imbalance reading", `{"tvlUsd": 63700000}`, types.RiskUnknown},
		{"declared wins", `{"imbalancePct": 40, "overallRisk": "warning"}`, types.RiskWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, "curve", tt.body)
			assert.Equal(t, tt.want, w.Risk(doc))
		})
	}
}
