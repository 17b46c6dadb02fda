// Package resolve turns free-text element descriptions into live references
// and, for act, dispatched browser actions. Each look/wait/act invocation is
// one cycle of the same pipeline: rebuild the snapshot, sync the semantic
// store, search, gate on similarity, resolve the winning record's reference.
package resolve

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kalyptra/ariadne/api/schemas"
	"github.com/kalyptra/ariadne/internal/axtree"
	"github.com/kalyptra/ariadne/internal/domdoc"
	"github.com/kalyptra/ariadne/internal/memory"
	"github.com/kalyptra/ariadne/internal/semstore"
)

// Default thresholds and bounds. Look tolerates looser matches than act,
// which is about to mutate the page.
const (
	DefaultLookThreshold = 0.50
	DefaultActThreshold  = 0.65
	DefaultSearchLimit   = 10
	DefaultPollInterval  = 500 * time.Millisecond
	DefaultWaitTimeout   = 30 * time.Second
)

type phase string

const (
	phaseSetup     phase = "setup"
	phaseSearching phase = "searching"
	phaseGating    phase = "gating"
	phaseResolving phase = "resolving"
	phaseExecuting phase = "executing"
)

// Snapshotter rebuilds the accessible tree. Implementations install the
// capture capability in the page, apply the settle delay, and return a
// fresh snapshot.
type Snapshotter interface {
	Snapshot(ctx context.Context) (*axtree.Snapshot, error)
}

// SnapshotFunc adapts a function to the Snapshotter interface.
type SnapshotFunc func(ctx context.Context) (*axtree.Snapshot, error)

func (f SnapshotFunc) Snapshot(ctx context.Context) (*axtree.Snapshot, error) { return f(ctx) }

// Searcher is the ranked-search slice of the semantic store.
type Searcher interface {
	Search(ctx context.Context, query, scope string, limit int) ([]semstore.SearchResult, error)
}

// ActionParams carries the type-specific parameters of one dispatch.
type ActionParams struct {
	Text      string
	Key       string
	Values    []string
	Files     []string
	SecondRef string
}

// Executor performs one action type against a resolved reference. The label
// is the caller's original description, for logging inside the executor.
type Executor func(ctx context.Context, label, ref string, params ActionParams) error

// ExecutorTable maps action types to their executors.
type ExecutorTable map[schemas.ActionType]Executor

// Resolution is the outcome of a successful look or wait.
type Resolution struct {
	Ref     string
	Score   float64
	Content string
	Actions []schemas.ActionType
	Node    *domdoc.Node

	snapshot *axtree.Snapshot
}

// Engine runs look/wait/act cycles for one session. The mutex enforces at
// most one in-flight cycle per session; the reference counter and the
// store's add/delete ordering are not safe under concurrent cycles.
type Engine struct {
	mu          sync.Mutex
	scope       string
	snapshotter Snapshotter
	searcher    Searcher
	syncer      *memory.Synchronizer
	executors   ExecutorTable
	searchLimit int
	log         *zap.Logger
}

// New wires an engine for one session scope.
func New(scope string, snapshotter Snapshotter, searcher Searcher, syncer *memory.Synchronizer, executors ExecutorTable, logger *zap.Logger) *Engine {
	return &Engine{
		scope:       scope,
		snapshotter: snapshotter,
		searcher:    searcher,
		syncer:      syncer,
		executors:   executors,
		searchLimit: DefaultSearchLimit,
		log:         logger.Named("resolve"),
	}
}

// SetSearchLimit overrides the search result bound. Values below one are
// ignored.
func (e *Engine) SetSearchLimit(n int) {
	if n > 0 {
		e.searchLimit = n
	}
}

// Look resolves a description to a live reference in a single cycle.
func (e *Engine) Look(ctx context.Context, description string, threshold float64) (*Resolution, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cycle(ctx, description, threshold)
}

// WaitOptions bounds a wait invocation. Zero values take the defaults.
type WaitOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
	Threshold    float64
}

// Wait repeats the look cycle on a poll interval until a qualifying result
// appears or the budget elapses. Per-iteration failures are logged and
// retried, so a store hiccup or a slow page does not abort the wait.
func (e *Engine) Wait(ctx context.Context, description string, opts WaitOptions) (*Resolution, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultWaitTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultLookThreshold
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	deadline := time.Now().Add(opts.Timeout)
	attempts := 0
	var lastErr error
	for {
		res, err := e.cycle(ctx, description, opts.Threshold)
		attempts++
		if err == nil {
			return res, nil
		}
		lastErr = err
		e.log.Debug("Wait attempt did not qualify, retrying.",
			zap.String("description", description),
			zap.Int("attempt", attempts),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(opts.PollInterval):
		}
		if !time.Now().Before(deadline) {
			return nil, &TimeoutError{
				Description: description,
				Budget:      opts.Timeout,
				Attempts:    attempts,
				LastErr:     lastErr,
			}
		}
	}
}

// Act resolves the request's target and dispatches the action. The action
// type comes from the structured request when present; otherwise it is
// inferred from the description and the matched record's supported actions.
func (e *Engine) Act(ctx context.Context, req schemas.ActionRequest, threshold float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if threshold <= 0 {
		threshold = DefaultActThreshold
	}
	res, err := e.cycle(ctx, req.Description, threshold)
	if err != nil {
		return err
	}

	e.logPhase(phaseExecuting, req.Description)
	actionType := req.Type
	if actionType == "" {
		actionType = inferActionType(req.Description, res.Actions)
	}
	if !actionType.Valid() {
		return &UnsupportedActionError{Type: actionType}
	}
	executor, ok := e.executors[actionType]
	if !ok {
		return &UnsupportedActionError{Type: actionType}
	}

	params := paramsFromRequest(req, actionType)
	if actionType == schemas.ActionDrag && params.SecondRef == "" {
		target := req.TargetDescription
		if target == "" {
			target = extractDragTarget(req.Description)
		}
		if target == "" {
			return fmt.Errorf("drag action for %q names no drop target", req.Description)
		}
		dest, err := e.resolveOnSnapshot(ctx, res.snapshot, target, threshold)
		if err != nil {
			return fmt.Errorf("resolve drop target: %w", err)
		}
		params.SecondRef = dest.Ref
	}

	if err := executor(ctx, req.Description, res.Ref, params); err != nil {
		return fmt.Errorf("execute %s on %s: %w", actionType, res.Ref, err)
	}
	e.log.Info("Action executed.",
		zap.String("action", string(actionType)),
		zap.String("ref", res.Ref),
		zap.Float64("score", res.Score))
	return nil
}

// cycle is one Setup→Searching→Gating→Resolving pass. Callers hold the
// session mutex.
func (e *Engine) cycle(ctx context.Context, description string, threshold float64) (*Resolution, error) {
	e.logPhase(phaseSetup, description)
	snap, err := e.snapshotter.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("rebuild snapshot: %w", err)
	}
	if _, _, err := e.syncer.Sync(ctx, e.scope, memory.Flatten(snap)); err != nil {
		return nil, &StoreUnavailableError{Op: "sync", Err: err}
	}
	return e.resolveOnSnapshot(ctx, snap, description, threshold)
}

// resolveOnSnapshot runs Searching→Gating→Resolving against an existing
// snapshot. Drag drop-targets reuse this to avoid a redundant rebuild.
func (e *Engine) resolveOnSnapshot(ctx context.Context, snap *axtree.Snapshot, description string, threshold float64) (*Resolution, error) {
	e.logPhase(phaseSearching, description)
	results, err := e.searcher.Search(ctx, description, e.scope, e.searchLimit)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "search", Err: err}
	}

	e.logPhase(phaseGating, description)
	if len(results) == 0 || results[0].Score < threshold {
		failure := &ResolutionFailure{Query: description, Threshold: threshold}
		for _, r := range results {
			failure.Candidates = append(failure.Candidates, Candidate{Content: r.Content, Score: r.Score})
		}
		if len(results) > 0 {
			failure.BestScore = results[0].Score
		}
		return nil, failure
	}
	winner := results[0]

	e.logPhase(phaseResolving, description)
	ref, actions, ok := memory.ParseMeta(winner.Content)
	if !ok {
		return nil, &ResolutionFailure{
			Query:      description,
			BestScore:  winner.Score,
			Threshold:  threshold,
			Candidates: []Candidate{{Content: winner.Content, Score: winner.Score}},
		}
	}
	node, ok := snap.Resolve(ref)
	if !ok {
		return nil, &DanglingReferenceError{Ref: ref, Query: description}
	}

	e.log.Debug("Resolved description to reference.",
		zap.String("description", description),
		zap.String("ref", ref),
		zap.Float64("score", winner.Score))
	return &Resolution{
		Ref:      ref,
		Score:    winner.Score,
		Content:  winner.Content,
		Actions:  actions,
		Node:     node,
		snapshot: snap,
	}, nil
}

func (e *Engine) logPhase(p phase, description string) {
	e.log.Debug("Cycle phase.", zap.String("phase", string(p)), zap.String("description", description))
}
