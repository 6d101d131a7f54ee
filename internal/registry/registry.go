// Package registry wraps the on-chain assessment registry contract. One
// Client speaks to one RPC endpoint; failover across endpoints is the
// publisher's job, and the client never retries anything on its own.
package registry

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/orbital-sentinel/sentinel/internal/errors"
)

// contractABI is the registry surface the bridge uses. recordAssessment
// reverts on duplicate hashes, unauthorized senders and empty labels.
const contractABI = `[
	{"type":"function","name":"recordAssessment","stateMutability":"nonpayable","inputs":[{"name":"snapshotHash","type":"bytes32"},{"name":"riskLabel","type":"string"}],"outputs":[]},
	{"type":"function","name":"recordCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"latestRecord","stateMutability":"view","inputs":[],"outputs":[{"name":"hash","type":"bytes32"},{"name":"label","type":"string"},{"name":"timestamp","type":"uint256"},{"name":"submitter","type":"address"}]}
]`

var registryABI = mustParseABI()

func mustParseABI() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		panic(fmt.Sprintf("registry: bad embedded ABI: %v", err))
	}
	return parsed
}

// Record is one stored assessment as the contract reports it.
type Record struct {
	Hash      common.Hash
	Label     string
	Timestamp time.Time
	Submitter common.Address
}

// Client is a bound registry contract on a single endpoint. Safe for
// sequential use; the bridge never shares one across goroutines.
type Client struct {
	endpoint string
	eth      *ethclient.Client
	contract *bind.BoundContract
	key      *ecdsa.PrivateKey
	chainID  *big.Int
	signer   common.Address
}

// Dial connects to one RPC endpoint and binds the registry contract. The
// chain ID is fetched here so a dead endpoint fails fast, before any
// transaction is built. key may be nil for read-only use.
func Dial(ctx context.Context, endpoint string, contractAddr common.Address, key *ecdsa.PrivateKey) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("chain id from %s: %w", endpoint, err)
	}

	c := &Client{
		endpoint: endpoint,
		eth:      eth,
		contract: bind.NewBoundContract(contractAddr, registryABI, eth, eth, eth),
		key:      key,
		chainID:  chainID,
	}
	if key != nil {
		c.signer = crypto.PubkeyToAddress(key.PublicKey)
	}
	return c, nil
}

// Endpoint returns the RPC URL this client talks to.
func (c *Client) Endpoint() string { return c.endpoint }

// Signer returns the address transactions are signed with, zero when
// read-only.
func (c *Client) Signer() common.Address { return c.signer }

// ChainID returns the chain the endpoint reported at dial time.
func (c *Client) ChainID() *big.Int { return new(big.Int).Set(c.chainID) }

// Record submits recordAssessment(snapshotHash, riskLabel) as a signed
// transaction. A revert during submission is the contract's answer and
// comes back as a terminal RegistryRejected error; transport failures come
// back untyped so the publisher can fail over.
func (c *Client) Record(ctx context.Context, snapshotHash common.Hash, riskLabel string) (*ethtypes.Transaction, error) {
	if c.key == nil {
		return nil, fmt.Errorf("client for %s has no signing key", c.endpoint)
	}

	opts, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("build transactor: %w", err)
	}
	opts.Context = ctx

	tx, err := c.contract.Transact(opts, "recordAssessment", [32]byte(snapshotHash), riskLabel)
	if err != nil {
		return nil, classifySubmitError(err)
	}
	return tx, nil
}

// WaitConfirmed blocks until the transaction is mined, bounded by ctx. A
// mined-but-reverted transaction is a registry rejection: the contract
// executed and said no.
func (c *Client) WaitConfirmed(ctx context.Context, tx *ethtypes.Transaction) (*ethtypes.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return nil, fmt.Errorf("await confirmation of %s: %w", tx.Hash().Hex(), err)
	}

	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return nil, errors.RegistryRejectedError("", "transaction reverted on-chain", nil)
	}
	return receipt, nil
}

// RecordCount reads the registry's total stored assessment count.
func (c *Client) RecordCount(ctx context.Context) (*big.Int, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "recordCount"); err != nil {
		return nil, fmt.Errorf("recordCount via %s: %w", c.endpoint, err)
	}

	count, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("recordCount returned %T, want *big.Int", out[0])
	}
	return count, nil
}

// LatestRecord reads the most recently stored assessment.
func (c *Client) LatestRecord(ctx context.Context) (*Record, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "latestRecord"); err != nil {
		return nil, fmt.Errorf("latestRecord via %s: %w", c.endpoint, err)
	}
	if len(out) != 4 {
		return nil, fmt.Errorf("latestRecord returned %d values, want 4", len(out))
	}

	hash, ok := out[0].([32]byte)
	if !ok {
		return nil, fmt.Errorf("latestRecord hash is %T", out[0])
	}
	label, ok := out[1].(string)
	if !ok {
		return nil, fmt.Errorf("latestRecord label is %T", out[1])
	}
	ts, ok := out[2].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("latestRecord timestamp is %T", out[2])
	}
	submitter, ok := out[3].(common.Address)
	if !ok {
		return nil, fmt.Errorf("latestRecord submitter is %T", out[3])
	}

	return &Record{
		Hash:      common.Hash(hash),
		Label:     label,
		Timestamp: time.Unix(ts.Int64(), 0).UTC(),
		Submitter: submitter,
	}, nil
}

// Close tears down the underlying RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}

// classifySubmitError separates the contract refusing (terminal) from the
// transport failing (retryable on the next endpoint). Nodes surface
// contract refusals as execution-revert errors during gas estimation.
func classifySubmitError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "execution reverted") || strings.Contains(msg, "always failing transaction") {
		return errors.RegistryRejectedError("", revertReason(msg), err)
	}
	return err
}

// revertReason pulls the human-readable reason out of a node's revert
// message when one is attached.
func revertReason(msg string) string {
	const marker = "execution reverted"
	idx := strings.Index(msg, marker)
	if idx < 0 {
		return "contract refused the submission"
	}
	reason := strings.Trim(strings.TrimPrefix(msg[idx+len(marker):], ":"), " \"")
	if reason == "" {
		return "contract refused the submission"
	}
	return reason
}
