package workflow

import (
	"math"
	"math/big"

	"github.com/orbital-sentinel/sentinel/internal/encoding"
	"github.com/orbital-sentinel/sentinel/internal/snapshot"
	"github.com/orbital-sentinel/sentinel/pkg/types"
)

// curveWorkflow covers the Curve stLINK/LINK StableSwap pool. Imbalance is
// the deviation from a balanced pool in percent; risk looks at its
// magnitude regardless of which side is heavy.
type curveWorkflow struct{}

const (
	curveImbalanceWarnPct = 10 // |imbalance| at or above: warning
	curveImbalanceCritPct = 25 // |imbalance| at or above: critical
)

var curveSchema = encoding.Schema{
	Workflow: "curve",
	Version:  1,
	Fields: []encoding.Field{
		{Name: "linkBalance", Scale: encoding.Scale1},
		{Name: "stlinkBalance", Scale: encoding.Scale1},
		{Name: "imbalancePct", Scale: encoding.Scale100},
		{Name: "virtualPrice", Scale: encoding.Scale1e6},
		{Name: "tvlUsd", Scale: encoding.Scale1},
		{Name: "linkUsd", Scale: encoding.Scale1e8},
	},
}

func (curveWorkflow) Key() string             { return "curve" }
func (curveWorkflow) SourceFile() string      { return "curve.json" }
func (curveWorkflow) Schema() encoding.Schema { return curveSchema }

func (curveWorkflow) Values(doc *snapshot.Document) []*big.Int {
	return []*big.Int{
		scaledField(doc, "linkBalance", encoding.Scale1, encoding.RoundNearest),
		scaledField(doc, "stlinkBalance", encoding.Scale1, encoding.RoundNearest),
		scaledField(doc, "imbalancePct", encoding.Scale100, encoding.RoundNearest),
		scaledField(doc, "virtualPrice", encoding.Scale1e6, encoding.RoundNearest),
		scaledField(doc, "tvlUsd", encoding.Scale1, encoding.RoundNearest),
		scaledField(doc, "linkUsd", encoding.Scale1e8, encoding.RoundNearest),
	}
}

func (curveWorkflow) Risk(doc *snapshot.Document) types.RiskLevel {
	if level, ok := declaredRisk(doc); ok {
		return level
	}

	imbalance, ok := doc.Float("imbalancePct")
	if !ok {
		return types.RiskUnknown
	}
	return bandRisk(math.Abs(imbalance), curveImbalanceWarnPct, curveImbalanceCritPct)
}
