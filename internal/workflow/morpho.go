package workflow

import (
	"math/big"

	"github.com/orbital-sentinel/sentinel/internal/encoding"
	"github.com/orbital-sentinel/sentinel/internal/snapshot"
	"github.com/orbital-sentinel/sentinel/pkg/types"
)

// morphoWorkflow covers the wstLINK/LINK lending market on Morpho:
// utilization of the supplied liquidity plus the vault's share price and
// assets. Utilization arrives as a 0..1 fraction here, unlike the percent
// scale the treasury snapshot uses for the same market.
type morphoWorkflow struct{}

const (
	morphoUtilWarnFraction = 0.85 // at or above: warning
	morphoUtilCritFraction = 0.95 // at or above: critical
)

var morphoSchema = encoding.Schema{
	Workflow: "morpho",
	Version:  1,
	Fields: []encoding.Field{
		{Name: "utilization", Scale: encoding.Scale1e6},
		{Name: "totalSupply", Scale: encoding.Scale1, Round: encoding.Truncate},
		{Name: "totalBorrow", Scale: encoding.Scale1, Round: encoding.Truncate},
		{Name: "vaultSharePrice", Scale: encoding.Scale1e6},
		{Name: "vaultTotalAssets", Scale: encoding.Scale1},
	},
}

func (morphoWorkflow) Key() string             { return "morpho" }
func (morphoWorkflow) SourceFile() string      { return "morpho.json" }
func (morphoWorkflow) Schema() encoding.Schema { return morphoSchema }

func (morphoWorkflow) Values(doc *snapshot.Document) []*big.Int {
	return []*big.Int{
		scaledField(doc, "utilization", encoding.Scale1e6, encoding.RoundNearest),
		scaledField(doc, "totalSupply", encoding.Scale1, encoding.Truncate),
		scaledField(doc, "totalBorrow", encoding.Scale1, encoding.Truncate),
		scaledField(doc, "vaultSharePrice", encoding.Scale1e6, encoding.RoundNearest),
		scaledField(doc, "vaultTotalAssets", encoding.Scale1, encoding.RoundNearest),
	}
}

func (morphoWorkflow) Risk(doc *snapshot.Document) types.RiskLevel {
	if level, ok := declaredRisk(doc); ok {
		return level
	}

	util, ok := doc.Float("utilization")
	if !ok {
		return types.RiskUnknown
	}
	return bandRisk(util, morphoUtilWarnFraction, morphoUtilCritFraction)
}
