package workflow

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbital-sentinel/sentinel/pkg/types"
)

func TestFeedsValues(t *testing.T) {
	w, ok := Lookup("feeds")
	require.True(t, ok)

	doc := mustParse(t, "feeds", `{
		"generatedAt": "2026-08-23T10:15:00Z",
		"ratio": 0.9950,
		"linkUsd": 15.43,
		"ethUsd": 3120.55
	}`)

	payload := unpackPayload(t, w, doc)
	require.Len(t, payload, 4)

	assert.Zero(t, big.NewInt(995000).Cmp(payload[0]), "ratio x1e6")
	assert.Zero(t, big.NewInt(5000).Cmp(payload[1]), "derived 50 bps x100")
	assert.Zero(t, big.NewInt(1543000000).Cmp(payload[2]), "linkUsd x1e8")
	assert.Zero(t, big.NewInt(312055000000).Cmp(payload[3]), "ethUsd x1e8")
}

func TestFeedsExplicitDepegWins(t *testing.T) {
	w, _ := Lookup("feeds")

	doc := mustParse(t, "feeds", `{
		"generatedAt": "2026-08-23T10:15:00Z",
		"ratio": 0.9950,
		"depegBps": 75.5
	}`)

	payload := unpackPayload(t, w, doc)
	assert.Zero(t, big.NewInt(7550).Cmp(payload[1]), "producer's depegBps is not re-derived")
}

func TestFeedsRisk(t *testing.T) {
	w, _ := Lookup("feeds")

	tests := []struct {
		name string
		body string
		want types.RiskLevel
	}{
		{"fifty bps is ok", `{"ratio": 0.9950}`, types.RiskOK},
		{"at par", `{"ratio": 1.0}`, types.RiskOK},
		{"hundred bps is warning", `{"ratio": 0.99}`, types.RiskWarning},
		{"premium side counts too", `{"ratio": 1.02}`, types.RiskWarning},
		{"five hundred bps is critical", `{"ratio": 0.95}`, types.RiskCritical},
		{"explicit depegBps drives risk", `{"depegBps": 320}`, types.RiskWarning},
		{"declared verdict wins", `{"ratio": 0.95, "overallRisk": "ok"}`, types.RiskOK},
		{"no data is unknown", `{}`, types.RiskUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, "feeds", tt.body)
			assert.Equal(t, tt.want, w.Risk(doc))
		})
	}
}
