package workflow

import (
	"math/big"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/orbital-sentinel/sentinel/internal/encoding"
	"github.com/orbital-sentinel/sentinel/internal/snapshot"
	"github.com/orbital-sentinel/sentinel/pkg/types"
)

// governanceWorkflow digests the open governance proposals into four packed
// uint256 words, one 16-bit lane per proposal. The packing is a digest, not
// an archive: vote totals past 65535 clamp, and only the first
// governanceMaxLanes proposals are carried.
type governanceWorkflow struct{}

const (
	governanceMaxLanes = 7

	governanceUrgentWarnCount = 1 // at or above: warning
	governanceUrgentCritCount = 3 // at or above: critical
)

// Proposal outcome codes for the packedOutcomes lanes.
const (
	outcomePending  = 0
	outcomePassed   = 1
	outcomeFailed   = 2
	outcomeExecuted = 3
)

var governanceSchema = encoding.Schema{
	Workflow: "governance",
	Version:  1,
	Fields: []encoding.Field{
		{Name: "activeCount", Scale: encoding.Scale1},
		{Name: "urgentCount", Scale: encoding.Scale1},
		{Name: "packedNumbers", Scale: encoding.Scale1},
		{Name: "packedYesPct", Scale: encoding.Scale100},
		{Name: "packedVotes", Scale: encoding.Scale1},
		{Name: "packedOutcomes", Scale: encoding.Scale1},
	},
}

func (governanceWorkflow) Key() string             { return "governance" }
func (governanceWorkflow) SourceFile() string      { return "governance.json" }
func (governanceWorkflow) Schema() encoding.Schema { return governanceSchema }

func (governanceWorkflow) Values(doc *snapshot.Document) []*big.Int {
	proposals := doc.Array("proposals")

	numbers := make([]uint64, 0, governanceMaxLanes)
	yesPcts := make([]uint64, 0, governanceMaxLanes)
	votes := make([]uint64, 0, governanceMaxLanes)
	outcomes := make([]uint64, 0, governanceMaxLanes)

	urgent := 0
	for i, p := range proposals {
		if p.Get("urgent").Bool() {
			urgent++
		}
		if i >= governanceMaxLanes {
			continue
		}
		numbers = append(numbers, laneUint(p.Get("number")))
		yesPcts = append(yesPcts, laneScaled(p.Get("yesPct"), 100))
		votes = append(votes, laneUint(p.Get("votes")))
		outcomes = append(outcomes, outcomeCode(p.Get("outcome")))
	}

	return []*big.Int{
		encoding.Uint(len(proposals)),
		encoding.Uint(urgent),
		encoding.PackLanes16(numbers),
		encoding.PackLanes16(yesPcts),
		encoding.PackLanes16(votes),
		encoding.PackLanes16(outcomes),
	}
}

func (governanceWorkflow) Risk(doc *snapshot.Document) types.RiskLevel {
	if level, ok := declaredRisk(doc); ok {
		return level
	}

	if !doc.Exists("proposals") {
		return types.RiskUnknown
	}

	urgent := 0
	for _, p := range doc.Array("proposals") {
		if p.Get("urgent").Bool() {
			urgent++
		}
	}
	return bandRisk(float64(urgent), governanceUrgentWarnCount, governanceUrgentCritCount)
}

// laneUint reads a non-negative integer lane value; anything else is zero.
// Clamping to 16 bits happens in PackLanes16.
func laneUint(r gjson.Result) uint64 {
	if r.Type != gjson.Number || r.Num < 0 {
		return 0
	}
	return uint64(r.Num)
}

// laneScaled reads a fractional lane value with a fixed-point factor.
func laneScaled(r gjson.Result, scale float64) uint64 {
	if r.Type != gjson.Number || r.Num < 0 {
		return 0
	}
	return uint64(r.Num*scale + 0.5)
}

// outcomeCode maps a proposal outcome to its lane code. Producers emit
// either the string form or the numeric code directly.
func outcomeCode(r gjson.Result) uint64 {
	switch r.Type {
	case gjson.String:
		switch strings.ToLower(strings.TrimSpace(r.Str)) {
		case "passed":
			return outcomePassed
		case "failed":
			return outcomeFailed
		case "executed":
			return outcomeExecuted
		default:
			return outcomePending
		}
	case gjson.Number:
		if r.Num >= outcomePending && r.Num <= outcomeExecuted {
			return uint64(r.Num)
		}
		return outcomePending
	default:
		return outcomePending
	}
}
