package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/orbital-sentinel/sentinel/internal/errors"
	"github.com/orbital-sentinel/sentinel/internal/proof"
	"github.com/orbital-sentinel/sentinel/internal/snapshot"
	"github.com/orbital-sentinel/sentinel/internal/workflow"
)

func newVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "verify <workflow> [snapshot-file]",
		Short:        "Recompute a snapshot's canonical encoding and hash",
		SilenceUsage: true,
		Long: `Verify recomputes the canonical encoding and Keccak-256 hash for one
snapshot file, exactly as a cycle would, and prints them. Anyone holding the
same snapshot and schema can reproduce the same digest — this is how
published proofs are checked independently.

With no file argument the workflow's usual snapshot file under the
configured snapshots directory is used.`,
		Example: `  # Hash the current feeds snapshot
  sentinel verify feeds

  # Hash a specific file and compare with an on-chain value
  sentinel verify treasury ./archive/treasury-2026-08-01.json \
    --expect 0x4fd61a...`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runVerify,
	}
	cmd.Flags().String("expect", "", "expected 0x-prefixed hash to compare against")
	return cmd
}

func runVerify(cmd *cobra.Command, args []string) error {
	w, ok := workflow.Lookup(args[0])
	if !ok {
		return errors.ConfigurationError(
			fmt.Sprintf("unknown workflow %q (known: %v)", args[0], workflow.Keys()))
	}

	path := filepath.Join(cfg.Snapshots.Dir, w.SourceFile())
	if len(args) == 2 {
		path = args[1]
	}

	doc, err := snapshot.Read(w.Key(), path)
	if err != nil {
		return err
	}

	label, encoded, err := workflow.Assess(w, doc)
	if err != nil {
		return err
	}
	digest := proof.Hash(encoded)

	out := cmd.OutOrStdout()
	gen, _ := doc.GeneratedAt()
	fmt.Fprintf(out, "workflow:    %s (schema v%d)\n", w.Key(), w.Schema().Version)
	fmt.Fprintf(out, "snapshot:    %s\n", path)
	fmt.Fprintf(out, "generatedAt: %s\n", gen.Format("2006-01-02T15:04:05Z07:00"))
	fmt.Fprintf(out, "riskLabel:   %s\n", label)
	fmt.Fprintf(out, "encoded:     %d bytes\n", len(encoded))
	fmt.Fprintf(out, "hash:        %s\n", digest.Hex())

	if expect, _ := cmd.Flags().GetString("expect"); expect != "" {
		if strings.EqualFold(expect, digest.Hex()) {
			fmt.Fprintln(out, "match:       yes")
			return nil
		}
		fmt.Fprintln(out, "match:       NO")
		return errors.Newf(errors.ErrorTypeValidation,
			"hash mismatch: computed %s, expected %s", digest.Hex(), expect).
			WithWorkflow(w.Key())
	}
	return nil
}
