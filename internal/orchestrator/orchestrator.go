// Package orchestrator runs one assessment cycle: every enabled workflow's
// pipeline from snapshot file to confirmed proof, a bounded worker pool wide.
// Workflows are independent — they read different files and write different
// state keys — so one failing never stops another.
package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/orbital-sentinel/sentinel/internal/errors"
	"github.com/orbital-sentinel/sentinel/internal/freshness"
	"github.com/orbital-sentinel/sentinel/internal/logger"
	"github.com/orbital-sentinel/sentinel/internal/proof"
	"github.com/orbital-sentinel/sentinel/internal/proofindex"
	"github.com/orbital-sentinel/sentinel/internal/publisher"
	"github.com/orbital-sentinel/sentinel/internal/snapshot"
	"github.com/orbital-sentinel/sentinel/internal/statestore"
	"github.com/orbital-sentinel/sentinel/internal/workflow"
	"github.com/orbital-sentinel/sentinel/pkg/types"
)

// ProofPublisher is the publishing surface the orchestrator drives.
// *publisher.Publisher implements it; tests substitute fakes.
type ProofPublisher interface {
	Publish(ctx context.Context, snapshotHash common.Hash, riskLabel string) (*publisher.Confirmation, error)
}

// Config wires an Orchestrator.
type Config struct {
	SnapshotsDir string
	Threshold    time.Duration
	Workers      int
	DryRun       bool

	Workflows []workflow.Workflow
	States    statestore.Store
	Publisher ProofPublisher
	Index     *proofindex.Index // nil disables indexing
	Logger    logger.Logger

	// Now is the cycle's clock; tests pin it. Defaults to time.Now.
	Now func() time.Time
}

// Orchestrator sequences one cycle over the configured workflows.
type Orchestrator struct {
	cfg Config
	log logger.Logger
	now func() time.Time

	mu    sync.Mutex
	state map[string]string
}

// New builds an Orchestrator, filling defaults for unset fields.
func New(cfg Config) *Orchestrator {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = freshness.DefaultThreshold
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Orchestrator{cfg: cfg, log: cfg.Logger, now: cfg.Now}
}

// Run executes one full cycle. Write state is loaded once up front (a load
// failure is fatal: publishing blind would defeat the dedup gate), every
// workflow pipeline runs to its own outcome, and the state file is saved once
// after all pipelines have joined. The returned error is non-nil only when
// the cycle as a whole failed: every attempted workflow errored and none
// published.
func (o *Orchestrator) Run(ctx context.Context) (*types.CycleReport, error) {
	state, err := o.cfg.States.Load()
	if err != nil {
		return nil, err
	}
	o.state = state

	report := &types.CycleReport{
		RunID:     uuid.New().String(),
		StartedAt: o.now(),
		DryRun:    o.cfg.DryRun,
		Results:   make([]types.WorkflowResult, len(o.cfg.Workflows)),
	}
	o.log.WithFields(map[string]interface{}{
		"run_id":    report.RunID,
		"workflows": len(o.cfg.Workflows),
		"workers":   o.cfg.Workers,
	}).Info("assessment cycle starting")

	sem := make(chan struct{}, o.cfg.Workers)
	var wg sync.WaitGroup
	for i, w := range o.cfg.Workflows {
		// A shutdown request stops new pipelines; in-flight ones finish.
		if ctx.Err() != nil {
			report.Results[i] = types.WorkflowResult{
				WorkflowKey: w.Key(),
				Outcome:     types.OutcomeSkipped,
				Reason:      types.SkipShutdown,
			}
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, w workflow.Workflow) {
			defer wg.Done()
			defer func() { <-sem }()
			report.Results[i] = o.runPipeline(ctx, report.RunID, w)
		}(i, w)
	}
	wg.Wait()

	if !o.cfg.DryRun {
		if err := o.cfg.States.Save(o.state); err != nil {
			// Mid-cycle store trouble costs at most one redundant publish
			// attempt next cycle; the registry's duplicate check absorbs it.
			o.log.Error("write-state save failed", err)
		}
	}

	report.Duration = o.now().Sub(report.StartedAt)
	o.log.WithFields(map[string]interface{}{
		"run_id":   report.RunID,
		"duration": report.Duration.String(),
	}).Info(report.Summary())

	if report.AllAttemptedFailed() {
		return report, errors.CycleFailedError(report.Failed())
	}
	return report, nil
}

// runPipeline drives one workflow from file to outcome. Every failure mode is
// converted into a counted result here; nothing escapes to abort the cycle.
func (o *Orchestrator) runPipeline(ctx context.Context, runID string, w workflow.Workflow) (result types.WorkflowResult) {
	start := o.now()
	log := o.log.WithFields(map[string]interface{}{
		"run_id":   runID,
		"workflow": w.Key(),
	})

	result.WorkflowKey = w.Key()
	defer func() {
		if r := recover(); r != nil {
			result.Outcome = types.OutcomeFailed
			result.Reason = fmt.Sprintf("pipeline panic: %v", r)
			log.Error("workflow pipeline panicked", fmt.Errorf("%v", r))
		}
		result.Duration = o.now().Sub(start)
	}()

	path := filepath.Join(o.cfg.SnapshotsDir, w.SourceFile())
	doc, err := snapshot.Read(w.Key(), path)
	if err != nil {
		return o.skipForReadError(log, result, err)
	}

	decision := freshness.Evaluate(doc, o.lastPublished(w.Key()), o.cfg.Threshold, o.now())
	if decision != freshness.Proceed {
		return o.skipForDecision(log, result, decision)
	}

	label, encoded, err := workflow.Assess(w, doc)
	if err != nil {
		log.Error("canonical encoding failed", err)
		result.Outcome = types.OutcomeFailed
		result.Reason = err.Error()
		return result
	}

	digest := proof.Hash(encoded)
	result.RiskLabel = label
	result.SnapshotHash = digest.Hex()

	if o.cfg.DryRun {
		log.WithFields(map[string]interface{}{
			"hash":  digest.Hex(),
			"label": label,
		}).Info("dry run, skipping publish")
		result.Outcome = types.OutcomeDryRun
		return result
	}

	conf, err := o.cfg.Publisher.Publish(ctx, digest, label)
	if err != nil {
		log.Error("publish failed", err)
		result.Outcome = types.OutcomeFailed
		result.Reason = err.Error()
		return result
	}

	gen, _ := doc.GeneratedAt()
	rec := &types.ProofRecord{
		RunID:          runID,
		WorkflowKey:    w.Key(),
		SnapshotHash:   digest,
		RiskLabel:      label,
		SchemaVersion:  w.Schema().Version,
		GenerationTime: gen,
		PublishedAt:    conf.ConfirmedAt,
		TxHash:         conf.TxHash,
		BlockNumber:    conf.BlockNumber,
		GasUsed:        conf.GasUsed,
		Signer:         conf.Signer,
		Endpoint:       conf.Endpoint,
	}

	o.mu.Lock()
	statestore.Advance(o.state, w.Key(), gen)
	o.mu.Unlock()

	if o.cfg.Index != nil {
		if err := o.cfg.Index.Insert(ctx, rec); err != nil {
			// The chain already holds the proof; the index can catch up later.
			log.WithField("error", err.Error()).Warn("proof index insert failed")
		}
	}

	log.WithFields(map[string]interface{}{
		"hash":  digest.Hex(),
		"label": label,
		"tx":    conf.TxHash.Hex(),
		"block": conf.BlockNumber,
	}).Info("assessment published")

	result.Outcome = types.OutcomePublished
	result.Proof = rec
	return result
}

func (o *Orchestrator) lastPublished(workflowKey string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state[workflowKey]
}

// skipForReadError maps reader failures onto skip outcomes. Missing and
// unparseable snapshots stop this workflow for the cycle but are operational
// states, not bridge failures.
func (o *Orchestrator) skipForReadError(log logger.Logger, result types.WorkflowResult, err error) types.WorkflowResult {
	result.Outcome = types.OutcomeSkipped
	switch errors.TypeOf(err) {
	case errors.ErrorTypeSnapshotMissing:
		result.Reason = types.SkipMissingSnapshot
		log.WithField("error", err.Error()).Warn("snapshot file missing, skipping workflow")
	case errors.ErrorTypeSnapshotUnparseable:
		result.Reason = types.SkipUnparseable
		log.WithField("error", err.Error()).Warn("snapshot file unreadable, skipping workflow")
	default:
		result.Outcome = types.OutcomeFailed
		result.Reason = err.Error()
		log.Error("snapshot read failed", err)
	}
	return result
}

func (o *Orchestrator) skipForDecision(log logger.Logger, result types.WorkflowResult, d freshness.Decision) types.WorkflowResult {
	result.Outcome = types.OutcomeSkipped
	switch d {
	case freshness.SkipNoTimestamp:
		result.Reason = types.SkipNoTimestamp
	case freshness.SkipUnchanged:
		result.Reason = types.SkipUnchanged
	case freshness.SkipStale:
		result.Reason = types.SkipStale
	default:
		result.Reason = d.String()
	}
	log.WithField("decision", d.String()).Info("freshness gate skipped workflow")
	return result
}
