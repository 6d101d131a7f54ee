package workflow

import (
	"math/big"

	"github.com/orbital-sentinel/sentinel/internal/encoding"
	"github.com/orbital-sentinel/sentinel/internal/snapshot"
	"github.com/orbital-sentinel/sentinel/pkg/types"
)

// flowsWorkflow covers 24-hour token flow through the protocol contracts.
// Sustained outflow dominance is the early signal of an exit wave, hence
// the ratio-based classification.
type flowsWorkflow struct{}

const (
	flowsOutflowWarnRatio = 2 // outflow above this multiple of inflow: warning
	flowsOutflowCritRatio = 5 // outflow above this multiple of inflow: critical
)

var flowsSchema = encoding.Schema{
	Workflow: "flows",
	Version:  1,
	Fields: []encoding.Field{
		{Name: "inflow24h", Scale: encoding.Scale1},
		{Name: "outflow24h", Scale: encoding.Scale1},
		{Name: "transferCount24h", Scale: encoding.Scale1},
		{Name: "largestTransfer", Scale: encoding.Scale1},
	},
}

func (flowsWorkflow) Key() string             { return "flows" }
func (flowsWorkflow) SourceFile() string      { return "flows.json" }
func (flowsWorkflow) Schema() encoding.Schema { return flowsSchema }

func (flowsWorkflow) Values(doc *snapshot.Document) []*big.Int {
	return []*big.Int{
		scaledField(doc, "inflow24h", encoding.Scale1, encoding.RoundNearest),
		scaledField(doc, "outflow24h", encoding.Scale1, encoding.RoundNearest),
		scaledField(doc, "transferCount24h", encoding.Scale1, encoding.RoundNearest),
		scaledField(doc, "largestTransfer", encoding.Scale1, encoding.RoundNearest),
	}
}

func (flowsWorkflow) Risk(doc *snapshot.Document) types.RiskLevel {
	if level, ok := declaredRisk(doc); ok {
		return level
	}

	inflow, iok := doc.Float("inflow24h")
	outflow, ook := doc.Float("outflow24h")
	if !iok && !ook {
		return types.RiskUnknown
	}
	if inflow <= 0 && outflow <= 0 {
		return types.RiskUnknown
	}

	// Zero inflow with any outflow is an unbounded ratio.
	if inflow <= 0 {
		return types.RiskCritical
	}

	ratio := outflow / inflow
	switch {
	case ratio > flowsOutflowCritRatio:
		return types.RiskCritical
	case ratio > flowsOutflowWarnRatio:
		return types.RiskWarning
	default:
		return types.RiskOK
	}
}
