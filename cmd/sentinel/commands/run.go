package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/orbital-sentinel/sentinel/internal/errors"
	"github.com/orbital-sentinel/sentinel/internal/logger"
	"github.com/orbital-sentinel/sentinel/internal/orchestrator"
	"github.com/orbital-sentinel/sentinel/internal/output"
	"github.com/orbital-sentinel/sentinel/internal/proofindex"
	"github.com/orbital-sentinel/sentinel/internal/publisher"
	"github.com/orbital-sentinel/sentinel/internal/registry"
	"github.com/orbital-sentinel/sentinel/internal/statestore"
	"github.com/orbital-sentinel/sentinel/internal/workflow"
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "run",
		Short:        "Run one assessment cycle",
		SilenceUsage: true,
		Long: `Run executes one full assessment cycle: for every enabled workflow,
read its snapshot, gate it for freshness, canonically encode and hash it,
and publish the proof to the registry through the configured RPC endpoints.

The cycle exits 0 when anything published or nothing failed; it exits 1 only
when every attempted workflow failed.`,
		Example: `  # One full cycle over all workflows
  sentinel run

  # Only the feed and treasury workflows
  sentinel run --workflow feeds --workflow treasury

  # Compute hashes without touching the chain
  sentinel run --dry-run

  # Machine-readable result for a cron wrapper
  sentinel run --dry-run -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCycle(cmd)
		},
	}
	addCycleFlags(cmd)
	return cmd
}

func addCycleFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("workflow", nil, "workflow keys to run (repeatable; default all)")
	cmd.Flags().Bool("dry-run", false, "stop before publishing; print hash and label")
	cmd.Flags().Int("workers", 0, "concurrent workflow pipelines (default from config)")
}

func runCycle(cmd *cobra.Command) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	keys, _ := cmd.Flags().GetStringSlice("workflow")
	workers, _ := cmd.Flags().GetInt("workers")

	if err := cfg.Validate(); err != nil {
		return errors.ConfigurationError(err.Error())
	}
	if !dryRun {
		if err := cfg.ValidateForPublish(); err != nil {
			return errors.ConfigurationError(err.Error())
		}
	}

	workflows, err := selectWorkflows(keys)
	if err != nil {
		return err
	}
	if workers <= 0 {
		workers = cfg.Workflows.Workers
	}

	log := logger.New(viper.GetString("logging.level"), cfg.Logging.Format)

	store := statestore.NewFileStore(cfg.State.Path, log)
	// A load failure here is fatal before any pipeline starts; probing now
	// beats finding out after the snapshots have been read.
	if _, err := store.Load(); err != nil {
		return err
	}

	var index *proofindex.Index
	if cfg.Index.Path != "" {
		index, err = proofindex.Open(cfg.Index.Path)
		if err != nil {
			return errors.StateStoreError("open index", cfg.Index.Path, err)
		}
		defer index.Close()
	}

	var pub orchestrator.ProofPublisher
	if !dryRun {
		pub, err = buildPublisher(log)
		if err != nil {
			return err
		}
	}

	// Shutdown stops new pipelines; in-flight publishes finish their current
	// endpoint attempt and the state save stays best-effort.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch := orchestrator.New(orchestrator.Config{
		SnapshotsDir: cfg.Snapshots.Dir,
		Threshold:    cfg.Freshness.Threshold(),
		Workers:      workers,
		DryRun:       dryRun,
		Workflows:    workflows,
		States:       store,
		Publisher:    pub,
		Index:        index,
		Logger:       log,
	})

	report, runErr := orch.Run(ctx)
	if report != nil {
		if renderErr := newRenderer(cmd).CycleReport(report); renderErr != nil {
			log.Error("failed to render cycle report", renderErr)
		}
	}
	return runErr
}

// selectWorkflows resolves the --workflow selection, falling back to the
// config's enabled list and then to every registered workflow.
func selectWorkflows(keys []string) ([]workflow.Workflow, error) {
	if len(keys) == 0 {
		keys = cfg.Workflows.Enabled
	}
	if len(keys) == 0 {
		return workflow.All(), nil
	}

	out := make([]workflow.Workflow, 0, len(keys))
	for _, key := range keys {
		w, ok := workflow.Lookup(key)
		if !ok {
			return nil, errors.ConfigurationError(
				fmt.Sprintf("unknown workflow %q (known: %v)", key, workflow.Keys()))
		}
		out = append(out, w)
	}
	return out, nil
}

// buildPublisher wires the endpoint-failover publisher over real registry
// clients. The signing key and contract address are validated here, once,
// rather than on every endpoint attempt.
func buildPublisher(log logger.Logger) (*publisher.Publisher, error) {
	if !common.IsHexAddress(cfg.Chain.RegistryAddress) {
		return nil, errors.ConfigurationError(
			fmt.Sprintf("invalid registry address %q", cfg.Chain.RegistryAddress))
	}
	contractAddr := common.HexToAddress(cfg.Chain.RegistryAddress)

	key, err := crypto.HexToECDSA(trimHexPrefix(cfg.Chain.PrivateKey))
	if err != nil {
		return nil, errors.ConfigurationError(fmt.Sprintf("invalid signing key: %v", err))
	}

	dial := func(ctx context.Context, endpoint string) (publisher.RegistryClient, error) {
		return registry.Dial(ctx, endpoint, contractAddr, key)
	}

	return publisher.New(publisher.Config{
		Endpoints:      cfg.Chain.Endpoints,
		Dial:           dial,
		DialTimeout:    cfg.Chain.DialTimeout,
		ConfirmTimeout: cfg.Chain.ConfirmTimeout,
		Logger:         log,
	}), nil
}

func newRenderer(cmd *cobra.Command) *output.Renderer {
	format, err := output.ParseFormat(viper.GetString("output.format"))
	if err != nil {
		format = output.FormatText
	}
	noColor := viper.GetBool("output.no_color") || os.Getenv("NO_COLOR") != ""
	return output.NewRenderer(cmd.OutOrStdout(), format, noColor)
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return s[2:]
	}
	return s
}
