package types

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ProofRecord captures everything the bridge knows about one confirmed
// on-chain assessment: the canonical digest, the label it was published
// under, and where the confirmation landed. It is the row shape for the
// local proof index and the payload for machine-readable cycle output.
type ProofRecord struct {
	RunID          string         `json:"run_id"`
	WorkflowKey    string         `json:"workflow_key"`
	SnapshotHash   common.Hash    `json:"snapshot_hash"`
	RiskLabel      string         `json:"risk_label"`
	SchemaVersion  int            `json:"schema_version"`
	GenerationTime time.Time      `json:"generation_time"`
	PublishedAt    time.Time      `json:"published_at"`
	TxHash         common.Hash    `json:"tx_hash"`
	BlockNumber    uint64         `json:"block_number"`
	GasUsed        uint64         `json:"gas_used"`
	Signer         common.Address `json:"signer"`
	Endpoint       string         `json:"endpoint"`
}

// Validate checks that a record is complete enough to persist.
func (r *ProofRecord) Validate() error {
	if r.WorkflowKey == "" {
		return fmt.Errorf("proof record missing workflow key")
	}
	if r.SnapshotHash == (common.Hash{}) {
		return fmt.Errorf("proof record for %s has zero snapshot hash", r.WorkflowKey)
	}
	if r.RiskLabel == "" {
		return fmt.Errorf("proof record for %s missing risk label", r.WorkflowKey)
	}
	if r.GenerationTime.IsZero() {
		return fmt.Errorf("proof record for %s missing generation time", r.WorkflowKey)
	}
	if r.TxHash == (common.Hash{}) {
		return fmt.Errorf("proof record for %s has zero transaction hash", r.WorkflowKey)
	}
	return nil
}
