package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/orbital-sentinel/sentinel/internal/errors"
	"github.com/orbital-sentinel/sentinel/internal/logger"
	"github.com/orbital-sentinel/sentinel/internal/output"
	"github.com/orbital-sentinel/sentinel/internal/registry"
	"github.com/orbital-sentinel/sentinel/internal/statestore"
	"github.com/orbital-sentinel/sentinel/internal/workflow"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "status",
		Short:        "Show registry contents and local write-state ages",
		SilenceUsage: true,
		Long: `Status reads the registry's record count and most recent record through
the configured RPC endpoints (first healthy endpoint wins, same ordering as
publishing) and lists each workflow's last locally recorded publish.`,
		RunE: runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	if len(cfg.Chain.Endpoints) == 0 {
		return errors.ConfigurationError("at least one RPC endpoint is required (set SENTINEL_RPC_ENDPOINTS)")
	}
	if !common.IsHexAddress(cfg.Chain.RegistryAddress) {
		return errors.ConfigurationError(
			fmt.Sprintf("invalid registry address %q", cfg.Chain.RegistryAddress))
	}
	contractAddr := common.HexToAddress(cfg.Chain.RegistryAddress)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := readRegistry(ctx, contractAddr)
	if err != nil {
		return err
	}

	store := statestore.NewFileStore(cfg.State.Path, logger.NewNop())
	state, err := store.Load()
	if err != nil {
		return err
	}
	st.WriteState = writeStateView(state, time.Now().UTC())
	st.GeneratedAt = time.Now().UTC()

	return newRenderer(cmd).Status(st)
}

// readRegistry walks the endpoint list until one answers both read calls.
func readRegistry(ctx context.Context, contractAddr common.Address) (*output.StatusReport, error) {
	var lastErr error
	for _, endpoint := range cfg.Chain.Endpoints {
		dialCtx, cancel := context.WithTimeout(ctx, cfg.Chain.DialTimeout)
		client, err := registry.Dial(dialCtx, endpoint, contractAddr, nil)
		cancel()
		if err != nil {
			lastErr = err
			continue
		}

		st, err := readOne(ctx, client, endpoint)
		client.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return st, nil
	}
	return nil, errors.AllEndpointsFailedError("", len(cfg.Chain.Endpoints), lastErr)
}

func readOne(ctx context.Context, client *registry.Client, endpoint string) (*output.StatusReport, error) {
	count, err := client.RecordCount(ctx)
	if err != nil {
		return nil, err
	}

	st := &output.StatusReport{
		Endpoint:    endpoint,
		RecordCount: count.Uint64(),
	}

	if count.Sign() > 0 {
		latest, err := client.LatestRecord(ctx)
		if err != nil {
			return nil, err
		}
		st.Latest = &output.LatestRecord{
			Hash:      latest.Hash.Hex(),
			Label:     latest.Label,
			Timestamp: latest.Timestamp,
			Submitter: latest.Submitter.Hex(),
		}
	}
	return st, nil
}

// writeStateView lists every registered workflow, published or not, in
// registry order.
func writeStateView(state map[string]string, now time.Time) []output.WorkflowState {
	var out []output.WorkflowState
	for _, w := range workflow.All() {
		ws := output.WorkflowState{Workflow: w.Key()}
		if stored, ok := state[w.Key()]; ok {
			ws.LastPublished = stored
			if t, err := time.Parse(time.RFC3339Nano, stored); err == nil {
				age := now.Sub(t)
				if age < 0 {
					age = 0
				}
				ws.Age = age.Round(time.Second).String()
			}
		}
		out = append(out, ws)
	}
	return out
}
