package proofindex

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbital-sentinel/sentinel/pkg/types"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Open(filepath.Join(t.TempDir(), "proofs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { ix.Close() })
	return ix
}

func sampleProof(workflow string, hashByte byte, publishedAt time.Time) *types.ProofRecord {
	return &types.ProofRecord{
		RunID:          "run-1",
		WorkflowKey:    workflow,
		SnapshotHash:   common.Hash{hashByte},
		RiskLabel:      workflow + ":ok",
		SchemaVersion:  1,
		GenerationTime: publishedAt.Add(-10 * time.Minute),
		PublishedAt:    publishedAt,
		TxHash:         common.Hash{0xAA, hashByte},
		BlockNumber:    1200 + uint64(hashByte),
		GasUsed:        61000,
		Signer:         common.HexToAddress("0x742d35Cc6634C0532925a3b844Bc454e4438f44e"),
		Endpoint:       "https://rpc-primary.example",
	}
}

func TestInsertAndRecent(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)

	require.NoError(t, ix.Insert(ctx, sampleProof("treasury", 1, base)))
	require.NoError(t, ix.Insert(ctx, sampleProof("treasury", 2, base.Add(15*time.Minute))))
	require.NoError(t, ix.Insert(ctx, sampleProof("feeds", 3, base.Add(5*time.Minute))))

	recent, err := ix.Recent(ctx, "treasury", 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	// Newest first.
	assert.Equal(t, common.Hash{2}, recent[0].SnapshotHash)
	assert.Equal(t, common.Hash{1}, recent[1].SnapshotHash)
	assert.Equal(t, "treasury:ok", recent[0].RiskLabel)
	assert.Equal(t, base.Add(15*time.Minute), recent[0].PublishedAt)
	assert.Equal(t, uint64(1202), recent[0].BlockNumber)

	all, err := ix.Recent(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	limited, err := ix.Recent(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, common.Hash{2}, limited[0].SnapshotHash)
}

func TestInsertDuplicateHashIsAbsorbed(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)

	rec := sampleProof("curve", 7, base)
	require.NoError(t, ix.Insert(ctx, rec))
	require.NoError(t, ix.Insert(ctx, rec), "replayed insert must not error")

	count, err := ix.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestInsertSameHashDifferentWorkflow(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)

	require.NoError(t, ix.Insert(ctx, sampleProof("curve", 9, base)))
	require.NoError(t, ix.Insert(ctx, sampleProof("morpho", 9, base)))

	count, err := ix.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "uniqueness is per workflow, not global")
}

func TestInsertRejectsIncompleteRecord(t *testing.T) {
	ix := openTestIndex(t)

	rec := sampleProof("feeds", 4, time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC))
	rec.SnapshotHash = common.Hash{}
	require.Error(t, ix.Insert(context.Background(), rec))
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proofs.db")

	ix, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, ix.Insert(context.Background(),
		sampleProof("ccip", 5, time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC))))
	require.NoError(t, ix.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
