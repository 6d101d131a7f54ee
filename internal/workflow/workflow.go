package workflow

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/orbital-sentinel/sentinel/internal/encoding"
	"github.com/orbital-sentinel/sentinel/internal/errors"
	"github.com/orbital-sentinel/sentinel/internal/snapshot"
	"github.com/orbital-sentinel/sentinel/pkg/types"
)

// Workflow is one monitored CRE surface the bridge can assess. The set of
// implementations is fixed at compile time: adding a workflow means adding
// a variant file to this package, not registering a plugin. Every variant
// knows its snapshot file, its canonical tuple schema, how to extract the
// schema's values, and how to classify risk.
type Workflow interface {
	// Key is the stable identifier used in labels, write state and logs.
	Key() string
	// SourceFile is the snapshot file name under the snapshots directory.
	SourceFile() string
	// Schema is the canonical tuple layout, versioned per workflow.
	Schema() encoding.Schema
	// Values extracts the schema's payload fields in schema order.
	// Missing or malformed fields extract as zero, never as an error.
	Values(doc *snapshot.Document) []*big.Int
	// Risk classifies the snapshot. A snapshot that declares a valid
	// overallRisk wins; otherwise the workflow's thresholds decide.
	Risk(doc *snapshot.Document) types.RiskLevel
}

// registry holds every workflow in the stable order cycles run them.
var registry = []Workflow{
	treasuryWorkflow{},
	feedsWorkflow{},
	governanceWorkflow{},
	morphoWorkflow{},
	curveWorkflow{},
	ccipWorkflow{},
	flowsWorkflow{},
}

var byKey = buildIndex()

func buildIndex() map[string]Workflow {
	idx := make(map[string]Workflow, len(registry))
	for _, w := range registry {
		if _, dup := idx[w.Key()]; dup {
			panic(fmt.Sprintf("workflow: duplicate key %q", w.Key()))
		}
		idx[w.Key()] = w
	}
	return idx
}

// All returns every workflow in registry order.
func All() []Workflow {
	out := make([]Workflow, len(registry))
	copy(out, registry)
	return out
}

// Lookup resolves a workflow by key.
func Lookup(key string) (Workflow, bool) {
	w, ok := byKey[key]
	return w, ok
}

// Keys returns the sorted workflow keys.
func Keys() []string {
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Assess runs risk extraction and canonical encoding for one snapshot,
// returning the risk label alongside the deterministic tuple bytes.
func Assess(w Workflow, doc *snapshot.Document) (string, []byte, error) {
	gen, ok := doc.GeneratedAt()
	if !ok {
		return "", nil, errors.EncodingFailedError(w.Key(),
			fmt.Errorf("document has no generation timestamp"))
	}

	label := types.RiskLabel(w.Key(), w.Risk(doc))
	encoded, err := w.Schema().Encode(gen, label, w.Values(doc))
	if err != nil {
		return "", nil, err
	}
	return label, encoded, nil
}

// scaledField extracts one numeric field and applies its fixed-point factor.
// Absent fields encode as zero so the tuple shape never varies.
func scaledField(doc *snapshot.Document, path string, scale int64, round encoding.Rounding) *big.Int {
	v, ok := doc.Float(path)
	if !ok {
		return new(big.Int)
	}
	return encoding.ScaledUint(v, scale, round)
}
