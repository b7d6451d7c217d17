package harvestsync

import (
	"context"
	"sync"

	"github.com/agentstation/harvestsync/pkg/reconciler"
)

// Hook function types for run events
type (
	// ActionAppliedHook is called after an action was written to Harvest
	ActionAppliedHook func(ctx context.Context, action reconciler.Action)

	// ActionSkippedHook is called for every skipped record or field
	ActionSkippedHook func(ctx context.Context, action reconciler.Action)

	// RunFinishedHook is called once per run, with the run error if any
	RunFinishedHook func(ctx context.Context, result *Result, err error)
)

// Hooks registers event callbacks.
type Hooks interface {
	OnActionApplied(fn ActionAppliedHook)
	OnActionSkipped(fn ActionSkippedHook)
	OnRunFinished(fn RunFinishedHook)
}

// hooks manages event callbacks for a client
type hooks struct {
	mu              sync.RWMutex
	onActionApplied []ActionAppliedHook
	onActionSkipped []ActionSkippedHook
	onRunFinished   []RunFinishedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnActionApplied registers a callback for applied actions.
func (c *client) OnActionApplied(fn ActionAppliedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onActionApplied = append(c.hooks.onActionApplied, fn)
}

// OnActionSkipped registers a callback for skipped actions.
func (c *client) OnActionSkipped(fn ActionSkippedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onActionSkipped = append(c.hooks.onActionSkipped, fn)
}

// OnRunFinished registers a callback for finished runs.
func (c *client) OnRunFinished(fn RunFinishedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onRunFinished = append(c.hooks.onRunFinished, fn)
}

func (h *hooks) triggerApplied(ctx context.Context, a reconciler.Action) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onActionApplied {
		hook(ctx, a)
	}
}

func (h *hooks) triggerSkipped(ctx context.Context, a reconciler.Action) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onActionSkipped {
		hook(ctx, a)
	}
}

func (h *hooks) triggerRunFinished(ctx context.Context, result *Result, err error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onRunFinished {
		hook(ctx, result, err)
	}
}
