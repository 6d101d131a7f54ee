package workflow

import (
	"math/big"

	"github.com/orbital-sentinel/sentinel/internal/encoding"
	"github.com/orbital-sentinel/sentinel/internal/snapshot"
	"github.com/orbital-sentinel/sentinel/pkg/types"
)

// treasuryWorkflow covers the stLINK staking treasury: Priority Pool fill,
// rewards vault runway, Morpho lending utilization and the withdrawal queue.
type treasuryWorkflow struct{}

// Treasury thresholds, matching the monitor's analysis bands.
const (
	treasuryFillWarnPct = 90  // pool fill % at or above: warning
	treasuryFillCritPct = 100 // pool fill % at or above: critical

	treasuryRunwayWarnDays = 30 // runway at or below: warning
	treasuryRunwayCritDays = 7  // runway below: critical

	treasuryUtilWarnPct = 85 // lending utilization % at or above: warning
	treasuryUtilCritPct = 95 // lending utilization % at or above: critical

	treasuryQueueWarnLink = 1_000  // queued LINK at or above: warning
	treasuryQueueCritLink = 10_000 // queued LINK above: critical
)

var treasurySchema = encoding.Schema{
	Workflow: "treasury",
	Version:  1,
	Fields: []encoding.Field{
		{Name: "communityStaked", Scale: encoding.Scale1},
		{Name: "communityCap", Scale: encoding.Scale1},
		{Name: "communityFillPct", Scale: encoding.Scale100},
		{Name: "operatorStaked", Scale: encoding.Scale1},
		{Name: "operatorCap", Scale: encoding.Scale1},
		{Name: "operatorFillPct", Scale: encoding.Scale100},
		{Name: "queueLink", Scale: encoding.Scale1},
		{Name: "vaultBalance", Scale: encoding.Scale1},
		{Name: "runwayDays", Scale: encoding.Scale100},
	},
}

func (treasuryWorkflow) Key() string             { return "treasury" }
func (treasuryWorkflow) SourceFile() string      { return "treasury.json" }
func (treasuryWorkflow) Schema() encoding.Schema { return treasurySchema }

func (treasuryWorkflow) Values(doc *snapshot.Document) []*big.Int {
	return []*big.Int{
		scaledField(doc, "staking.community.staked", encoding.Scale1, encoding.RoundNearest),
		scaledField(doc, "staking.community.cap", encoding.Scale1, encoding.RoundNearest),
		scaledField(doc, "staking.community.fillPct", encoding.Scale100, encoding.RoundNearest),
		scaledField(doc, "staking.operator.staked", encoding.Scale1, encoding.RoundNearest),
		scaledField(doc, "staking.operator.cap", encoding.Scale1, encoding.RoundNearest),
		scaledField(doc, "staking.operator.fillPct", encoding.Scale100, encoding.RoundNearest),
		scaledField(doc, "queue.queueLink", encoding.Scale1, encoding.RoundNearest),
		scaledField(doc, "rewards.vaultBalance", encoding.Scale1, encoding.RoundNearest),
		scaledField(doc, "rewards.runwayDays", encoding.Scale100, encoding.RoundNearest),
	}
}

// treasuryAtom is one of the four independent health readings the treasury
// verdict synthesizes.
type treasuryAtom struct {
	level   types.RiskLevel
	present bool
}

func (treasuryWorkflow) Risk(doc *snapshot.Document) types.RiskLevel {
	if level, ok := declaredRisk(doc); ok {
		return level
	}

	atoms := []treasuryAtom{
		treasuryFillAtom(doc),
		treasuryRunwayAtom(doc),
		treasuryUtilAtom(doc),
		treasuryQueueAtom(doc),
	}

	missing := 0
	verdict := types.RiskOK
	for _, a := range atoms {
		if !a.present {
			missing++
			continue
		}
		verdict = worse(verdict, a.level)
	}

	// Criticals and warnings stand on whatever data exists; an otherwise
	// quiet picture with two or more blind spots is not a clean bill.
	if verdict == types.RiskOK && missing >= 2 {
		return types.RiskUnknown
	}
	return verdict
}

// treasuryFillAtom takes the worse of the two staking pools' fill levels.
func treasuryFillAtom(doc *snapshot.Document) treasuryAtom {
	community, cok := doc.Float("staking.community.fillPct")
	operator, ook := doc.Float("staking.operator.fillPct")
	if !cok && !ook {
		return treasuryAtom{}
	}

	level := types.RiskOK
	if cok {
		level = worse(level, bandRisk(community, treasuryFillWarnPct, treasuryFillCritPct))
	}
	if ook {
		level = worse(level, bandRisk(operator, treasuryFillWarnPct, treasuryFillCritPct))
	}
	return treasuryAtom{level: level, present: true}
}

func treasuryRunwayAtom(doc *snapshot.Document) treasuryAtom {
	days, ok := doc.Float("rewards.runwayDays")
	if !ok {
		return treasuryAtom{}
	}
	switch {
	case days < treasuryRunwayCritDays:
		return treasuryAtom{level: types.RiskCritical, present: true}
	case days <= treasuryRunwayWarnDays:
		return treasuryAtom{level: types.RiskWarning, present: true}
	default:
		return treasuryAtom{level: types.RiskOK, present: true}
	}
}

func treasuryUtilAtom(doc *snapshot.Document) treasuryAtom {
	pct, ok := doc.Float("morpho.utilization")
	if !ok {
		return treasuryAtom{}
	}
	return treasuryAtom{level: bandRisk(pct, treasuryUtilWarnPct, treasuryUtilCritPct), present: true}
}

func treasuryQueueAtom(doc *snapshot.Document) treasuryAtom {
	queued, ok := doc.Float("queue.queueLink")
	if !ok {
		return treasuryAtom{}
	}
	switch {
	case queued > treasuryQueueCritLink:
		return treasuryAtom{level: types.RiskCritical, present: true}
	case queued >= treasuryQueueWarnLink:
		return treasuryAtom{level: types.RiskWarning, present: true}
	default:
		return treasuryAtom{level: types.RiskOK, present: true}
	}
}
