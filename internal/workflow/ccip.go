package workflow

import (
	"math/big"
	"strings"

	"github.com/orbital-sentinel/sentinel/internal/encoding"
	"github.com/orbital-sentinel/sentinel/internal/snapshot"
	"github.com/orbital-sentinel/sentinel/pkg/types"
)

// ccipWorkflow covers cross-chain lane health. The tuple carries only the
// two counts; lane-by-lane detail stays in the snapshot.
type ccipWorkflow struct{}

var ccipSchema = encoding.Schema{
	Workflow: "ccip",
	Version:  1,
	Fields: []encoding.Field{
		{Name: "okLaneCount", Scale: encoding.Scale1},
		{Name: "totalLaneCount", Scale: encoding.Scale1},
	},
}

func (ccipWorkflow) Key() string             { return "ccip" }
func (ccipWorkflow) SourceFile() string      { return "ccip.json" }
func (ccipWorkflow) Schema() encoding.Schema { return ccipSchema }

func (ccipWorkflow) Values(doc *snapshot.Document) []*big.Int {
	okCount, total, _ := ccipLaneCounts(doc)
	return []*big.Int{
		encoding.Uint(okCount),
		encoding.Uint(total),
	}
}

func (ccipWorkflow) Risk(doc *snapshot.Document) types.RiskLevel {
	if level, ok := declaredRisk(doc); ok {
		return level
	}

	okCount, total, down := ccipLaneCounts(doc)
	if total == 0 {
		return types.RiskUnknown
	}
	switch {
	case down*2 > total:
		return types.RiskCritical
	case okCount == total:
		return types.RiskOK
	default:
		return types.RiskWarning
	}
}

// ccipLaneCounts tallies lane statuses. Unrecognized statuses count as
// degraded: a lane we cannot read is not a lane we can call healthy.
func ccipLaneCounts(doc *snapshot.Document) (okCount, total, down int) {
	for _, lane := range doc.Array("lanes") {
		total++
		switch strings.ToLower(strings.TrimSpace(lane.Get("status").String())) {
		case "ok", "healthy", "active":
			okCount++
		case "down", "offline", "cursed":
			down++
		}
	}
	return okCount, total, down
}
