// Package publisher drives a proof through the ordered RPC endpoint list
// until one confirms it. The walk is an explicit state machine rather than
// nested retries: every transition is visible, and nothing below this layer
// retries anything.
package publisher

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/orbital-sentinel/sentinel/internal/errors"
	"github.com/orbital-sentinel/sentinel/internal/logger"
	"github.com/orbital-sentinel/sentinel/pkg/types"
)

// RegistryClient is the per-endpoint contract surface the publisher drives.
// *registry.Client implements it; tests substitute scripted fakes.
type RegistryClient interface {
	Record(ctx context.Context, snapshotHash common.Hash, riskLabel string) (*ethtypes.Transaction, error)
	WaitConfirmed(ctx context.Context, tx *ethtypes.Transaction) (*ethtypes.Receipt, error)
	Signer() common.Address
	Endpoint() string
	Close()
}

// DialFunc builds a client for one endpoint. A fresh client per attempt
// keeps endpoint state from leaking across the failover walk.
type DialFunc func(ctx context.Context, endpoint string) (RegistryClient, error)

// Confirmation is the evidence of one published assessment: where it
// landed and through which endpoint.
type Confirmation struct {
	Endpoint    string
	TxHash      common.Hash
	BlockNumber uint64
	GasUsed     uint64
	Signer      common.Address
	ConfirmedAt time.Time
}

// Config wires a Publisher.
type Config struct {
	Endpoints      []string
	Dial           DialFunc
	DialTimeout    time.Duration
	ConfirmTimeout time.Duration
	Logger         logger.Logger
}

// Publisher walks the ordered endpoint list for each proof.
type Publisher struct {
	endpoints      []string
	dial           DialFunc
	dialTimeout    time.Duration
	confirmTimeout time.Duration
	log            logger.Logger
}

// New builds a Publisher, filling unset timeouts with defaults.
func New(cfg Config) *Publisher {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = 90 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	return &Publisher{
		endpoints:      cfg.Endpoints,
		dial:           cfg.Dial,
		dialTimeout:    cfg.DialTimeout,
		confirmTimeout: cfg.ConfirmTimeout,
		log:            cfg.Logger,
	}
}

// publishState is one step of the failover walk.
type publishState int

const (
	stateTryEndpoint publishState = iota
	stateSubmit
	stateAwaitConfirmation
	stateNextEndpoint
	stateExhausted
)

// Publish submits the proof through the first endpoint that cooperates and
// waits for on-chain confirmation. Endpoint failures move to the next
// endpoint in order; a registry rejection ends the walk immediately
// because every endpoint fronts the same contract. Cancellation is honored
// between endpoints, but a transaction that has already been submitted is
// allowed to finish its bounded confirmation wait.
func (p *Publisher) Publish(ctx context.Context, snapshotHash common.Hash, riskLabel string) (*Confirmation, error) {
	workflowKey, _, labelErr := types.SplitRiskLabel(riskLabel)
	if labelErr != nil {
		workflowKey = riskLabel
	}

	if len(p.endpoints) == 0 {
		return nil, errors.AllEndpointsFailedError(workflowKey, 0,
			fmt.Errorf("no RPC endpoints configured"))
	}

	var (
		idx     int
		client  RegistryClient
		tx      *ethtypes.Transaction
		lastErr error
	)

	state := stateTryEndpoint
	for {
		switch state {
		case stateTryEndpoint:
			if idx > 0 && ctx.Err() != nil {
				lastErr = ctx.Err()
				state = stateExhausted
				continue
			}

			endpoint := p.endpoints[idx]
			dialCtx, cancel := context.WithTimeout(ctx, p.dialTimeout)
			c, err := p.dial(dialCtx, endpoint)
			cancel()
			if err != nil {
				lastErr = fmt.Errorf("dial %s: %w", endpoint, err)
				p.attemptLog(workflowKey, endpoint, idx).WithField("error", err.Error()).
					Warn("endpoint unreachable")
				state = stateNextEndpoint
				continue
			}

			client = c
			state = stateSubmit

		case stateSubmit:
			submitted, err := client.Record(ctx, snapshotHash, riskLabel)
			if err != nil {
				client.Close()
				if errors.IsTerminal(err) {
					// The contract refused; no other endpoint changes that.
					return nil, tagWorkflow(err, workflowKey)
				}
				lastErr = err
				p.attemptLog(workflowKey, p.endpoints[idx], idx).WithField("error", err.Error()).
					Warn("submission failed")
				state = stateNextEndpoint
				continue
			}

			tx = submitted
			p.attemptLog(workflowKey, p.endpoints[idx], idx).WithField("tx", tx.Hash().Hex()).
				Info("assessment submitted")
			state = stateAwaitConfirmation

		case stateAwaitConfirmation:
			receipt, err := p.awaitConfirmation(ctx, client, tx)
			client.Close()
			if err != nil {
				if errors.IsTerminal(err) {
					return nil, tagWorkflow(err, workflowKey)
				}
				lastErr = err
				p.attemptLog(workflowKey, p.endpoints[idx], idx).WithField("error", err.Error()).
					Warn("confirmation not reached")
				state = stateNextEndpoint
				continue
			}

			conf := &Confirmation{
				Endpoint:    client.Endpoint(),
				TxHash:      tx.Hash(),
				GasUsed:     receipt.GasUsed,
				Signer:      client.Signer(),
				ConfirmedAt: time.Now().UTC(),
			}
			if receipt.BlockNumber != nil {
				conf.BlockNumber = receipt.BlockNumber.Uint64()
			}
			p.attemptLog(workflowKey, conf.Endpoint, idx).WithFields(map[string]interface{}{
				"tx":    conf.TxHash.Hex(),
				"block": conf.BlockNumber,
			}).Info("assessment confirmed")
			return conf, nil

		case stateNextEndpoint:
			idx++
			if idx >= len(p.endpoints) {
				state = stateExhausted
				continue
			}
			state = stateTryEndpoint

		case stateExhausted:
			return nil, errors.AllEndpointsFailedError(workflowKey, len(p.endpoints), lastErr)
		}
	}
}

// awaitConfirmation waits for the receipt under the confirmation budget.
// The wait survives parent cancellation: once a transaction is out, walking
// away early would leave its fate unknown.
func (p *Publisher) awaitConfirmation(ctx context.Context, client RegistryClient, tx *ethtypes.Transaction) (*ethtypes.Receipt, error) {
	waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.confirmTimeout)
	defer cancel()
	return client.WaitConfirmed(waitCtx, tx)
}

func (p *Publisher) attemptLog(workflowKey, endpoint string, idx int) logger.Logger {
	return p.log.WithFields(map[string]interface{}{
		"workflow": workflowKey,
		"endpoint": endpoint,
		"attempt":  idx + 1,
	})
}

// tagWorkflow stamps the workflow key onto a typed error that was raised
// below the pipeline layer.
func tagWorkflow(err error, key string) error {
	if se, ok := err.(*errors.SentinelError); ok && se.Workflow == "" {
		se.WithWorkflow(key)
	}
	return err
}
