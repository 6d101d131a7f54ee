package workflow

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbital-sentinel/sentinel/pkg/types"
)

func TestGovernanceValues(t *testing.T) {
	w, ok := Lookup("governance")
	require.True(t, ok)

	doc := mustParse(t, "governance", `{
		"generatedAt": "2026-08-23T10:15:00Z",
		"proposals": [
			{"number": 42, "yesPct": 66.67, "votes": 1205, "outcome": "pending", "urgent": false},
			{"number": 43, "yesPct": 12.5, "votes": 98, "outcome": "failed", "urgent": true},
			{"number": 44, "yesPct": 100, "votes": 70000, "outcome": "executed", "urgent": false}
		]
	}`)

	payload := unpackPayload(t, w, doc)
	require.Len(t, payload, 6)

	assert.Zero(t, big.NewInt(3).Cmp(payload[0]), "activeCount")
	assert.Zero(t, big.NewInt(1).Cmp(payload[1]), "urgentCount")

	// lane 0 least significant, 16 bits per lane
	wantNumbers := big.NewInt(44<<32 | 43<<16 | 42)
	assert.Zero(t, wantNumbers.Cmp(payload[2]), "packedNumbers")

	wantYes := big.NewInt(10000<<32 | 1250<<16 | 6667)
	assert.Zero(t, wantYes.Cmp(payload[3]), "packedYesPct x100 per lane")

	// 70000 votes clamp to the 16-bit lane ceiling
	wantVotes := big.NewInt(0xFFFF<<32 | 98<<16 | 1205)
	assert.Zero(t, wantVotes.Cmp(payload[4]), "packedVotes")

	wantOutcomes := big.NewInt(outcomeExecuted<<32 | outcomeFailed<<16 | outcomePending)
	assert.Zero(t, wantOutcomes.Cmp(payload[5]), "packedOutcomes")
}

func TestGovernanceLaneCapAtSeven(t *testing.T) {
	w, _ := Lookup("governance")

	doc := mustParse(t, "governance", `{
		"generatedAt": "2026-08-23T10:15:00Z",
		"proposals": [
			{"number": 1}, {"number": 2}, {"number": 3}, {"number": 4},
			{"number": 5}, {"number": 6}, {"number": 7}, {"number": 8},
			{"number": 9, "urgent": true}
		]
	}`)

	payload := unpackPayload(t, w, doc)

	assert.Zero(t, big.NewInt(9).Cmp(payload[0]), "activeCount counts all proposals")
	assert.Zero(t, big.NewInt(1).Cmp(payload[1]), "urgent counted past the lane cap")

	// Only seven lanes: proposal 8 and 9 never reach the packed word.
	want := new(big.Int)
	for i := int64(1); i <= 7; i++ {
		want.Or(want, new(big.Int).Lsh(big.NewInt(i), uint(16*(i-1))))
	}
	assert.Zero(t, want.Cmp(payload[2]), "packedNumbers holds the first seven only")
}

func TestGovernanceOutcomeCodes(t *testing.T) {
	w, _ := Lookup("governance")

	doc := mustParse(t, "governance", `{
		"generatedAt": "2026-08-23T10:15:00Z",
		"proposals": [
			{"outcome": "Passed"},
			{"outcome": 2},
			{"outcome": "something-new"},
			{"outcome": 9}
		]
	}`)

	payload := unpackPayload(t, w, doc)

	// passed=1, numeric 2=failed, unknown string=pending, out-of-range=pending
	want := big.NewInt(0<<48 | 0<<32 | 2<<16 | 1)
	assert.Zero(t, want.Cmp(payload[5]))
}

func TestGovernanceRisk(t *testing.T) {
	w, _ := Lookup("governance")

	tests := []struct {
		name string
		body string
		want types.RiskLevel
	}{
		{"no urgent proposals", `{"proposals": [{"number": 1}, {"number": 2}]}`, types.RiskOK},
		{"empty docket", `{"proposals": []}`, types.RiskOK},
		{"one urgent", `{"proposals": [{"number": 1, "urgent": true}]}`, types.RiskWarning},
		{
			"three urgent",
			`{"proposals": [
				{"urgent": true}, {"urgent": true}, {"urgent": true}, {"urgent": false}
			]}`,
			types.RiskCritical,
		},
		{"proposals absent", `{}`, types.RiskUnknown},
		{"declared wins", `{"overallRisk": "critical", "proposals": []}`, types.RiskCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, "governance", tt.body)
			assert.Equal(t, tt.want, w.Risk(doc))
		})
	}
}
