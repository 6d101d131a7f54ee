package workflow

import (
	"math"
	"math/big"

	"github.com/orbital-sentinel/sentinel/internal/encoding"
	"github.com/orbital-sentinel/sentinel/internal/snapshot"
	"github.com/orbital-sentinel/sentinel/pkg/types"
)

// feedsWorkflow covers the stLINK/LINK exchange-rate feed and the reference
// USD prices. Depeg distance is the headline number: basis points away from
// the 1:1 par the wrapped token is supposed to hold.
type feedsWorkflow struct{}

const (
	feedsDepegWarnBps = 100 // at or above: warning
	feedsDepegCritBps = 500 // at or above: critical
)

var feedsSchema = encoding.Schema{
	Workflow: "feeds",
	Version:  1,
	Fields: []encoding.Field{
		{Name: "ratio", Scale: encoding.Scale1e6},
		{Name: "depegBps", Scale: encoding.Scale100},
		{Name: "linkUsd", Scale: encoding.Scale1e8},
		{Name: "ethUsd", Scale: encoding.Scale1e8},
	},
}

func (feedsWorkflow) Key() string             { return "feeds" }
func (feedsWorkflow) SourceFile() string      { return "feeds.json" }
func (feedsWorkflow) Schema() encoding.Schema { return feedsSchema }

func (feedsWorkflow) Values(doc *snapshot.Document) []*big.Int {
	depeg := new(big.Int)
	if bps, ok := feedsDepegBps(doc); ok {
		depeg = encoding.ScaledUint(bps, encoding.Scale100, encoding.RoundNearest)
	}

	return []*big.Int{
		scaledField(doc, "ratio", encoding.Scale1e6, encoding.RoundNearest),
		depeg,
		scaledField(doc, "linkUsd", encoding.Scale1e8, encoding.RoundNearest),
		scaledField(doc, "ethUsd", encoding.Scale1e8, encoding.RoundNearest),
	}
}

func (feedsWorkflow) Risk(doc *snapshot.Document) types.RiskLevel {
	if level, ok := declaredRisk(doc); ok {
		return level
	}

	bps, ok := feedsDepegBps(doc)
	if !ok {
		return types.RiskUnknown
	}
	return bandRisk(bps, feedsDepegWarnBps, feedsDepegCritBps)
}

// feedsDepegBps prefers the producer's own depegBps reading and falls back
// to deriving it from the ratio: |1 - ratio| in basis points.
func feedsDepegBps(doc *snapshot.Document) (float64, bool) {
	if bps, ok := doc.Float("depegBps"); ok {
		return bps, true
	}
	ratio, ok := doc.Float("ratio")
	if !ok {
		return 0, false
	}
	return math.Abs(1-ratio) * 10_000, true
}
