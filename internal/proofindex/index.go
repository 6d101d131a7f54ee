// Package proofindex keeps a local SQLite copy of every confirmed publish so
// dashboards can query history without touching an RPC endpoint. The chain is
// the source of truth: a failed insert here is a logged warning upstream,
// never a workflow failure.
package proofindex

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	_ "github.com/mattn/go-sqlite3"

	"github.com/orbital-sentinel/sentinel/pkg/types"
)

//go:embed schema.sql
var schemaSQL string

// Index is a durable record of confirmed publishes. The UNIQUE
// (workflow_key, snapshot_hash) constraint mirrors the registry's own
// duplicate check, so replayed inserts are silently absorbed.
type Index struct {
	db *sql.DB
}

// Open creates or opens the index database at the given path. WAL mode keeps
// dashboard reads from blocking the bridge's writes; a single writer
// connection sidesteps SQLITE_BUSY. Idempotent.
func Open(path string) (*Index, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open proof index: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect proof index: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply proof index schema: %w", err)
	}

	return &Index{db: db}, nil
}

// Close closes the database connection.
func (ix *Index) Close() error {
	if ix.db == nil {
		return nil
	}
	return ix.db.Close()
}

// Insert stores one confirmed proof. A record whose (workflow, hash) pair is
// already present is ignored rather than rejected: the registry has the same
// constraint, so a conflict means the row is already there.
func (ix *Index) Insert(ctx context.Context, rec *types.ProofRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("insert proof: %w", err)
	}

	_, err := ix.db.ExecContext(ctx, `
		INSERT INTO proofs
		(run_id, workflow_key, snapshot_hash, risk_label, schema_version,
		 generation_time, published_at, tx_hash, block_number, gas_used,
		 signer, endpoint)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(workflow_key, snapshot_hash) DO NOTHING
	`,
		rec.RunID,
		rec.WorkflowKey,
		rec.SnapshotHash.Hex(),
		rec.RiskLabel,
		rec.SchemaVersion,
		rec.GenerationTime.UTC().Format(time.RFC3339Nano),
		rec.PublishedAt.UTC().Format(time.RFC3339Nano),
		rec.TxHash.Hex(),
		rec.BlockNumber,
		rec.GasUsed,
		rec.Signer.Hex(),
		rec.Endpoint,
	)
	if err != nil {
		return fmt.Errorf("insert proof: %w", err)
	}
	return nil
}

// Recent returns the newest records for a workflow, newest first. An empty
// workflowKey returns records across all workflows.
func (ix *Index) Recent(ctx context.Context, workflowKey string, limit int) ([]types.ProofRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT run_id, workflow_key, snapshot_hash, risk_label, schema_version,
		       generation_time, published_at, tx_hash, block_number, gas_used,
		       signer, endpoint
		FROM proofs`
	args := []interface{}{}
	if workflowKey != "" {
		query += ` WHERE workflow_key = ?`
		args = append(args, workflowKey)
	}
	query += ` ORDER BY published_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := ix.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query proofs: %w", err)
	}
	defer rows.Close()

	var out []types.ProofRecord
	for rows.Next() {
		rec, err := scanProof(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Count returns the total number of indexed proofs.
func (ix *Index) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := ix.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM proofs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count proofs: %w", err)
	}
	return n, nil
}

func scanProof(rows *sql.Rows) (types.ProofRecord, error) {
	var (
		rec                     types.ProofRecord
		hash, tx, signer        string
		generation, publishedAt string
	)
	err := rows.Scan(
		&rec.RunID, &rec.WorkflowKey, &hash, &rec.RiskLabel, &rec.SchemaVersion,
		&generation, &publishedAt, &tx, &rec.BlockNumber, &rec.GasUsed,
		&signer, &rec.Endpoint,
	)
	if err != nil {
		return rec, fmt.Errorf("scan proof: %w", err)
	}

	rec.SnapshotHash = common.HexToHash(hash)
	rec.TxHash = common.HexToHash(tx)
	rec.Signer = common.HexToAddress(signer)

	if t, err := time.Parse(time.RFC3339Nano, generation); err == nil {
		rec.GenerationTime = t
	}
	if t, err := time.Parse(time.RFC3339Nano, publishedAt); err == nil {
		rec.PublishedAt = t
	}
	return rec, nil
}
