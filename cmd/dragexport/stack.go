package main

import (
	"fmt"

	"github.com/justyntemme/dragexport/internal/config"
	"github.com/justyntemme/dragexport/internal/debug"
	"github.com/justyntemme/dragexport/internal/dragdrop"
	"github.com/justyntemme/dragexport/internal/staging"
)

// newStager opens the staging directory and clears out anything an earlier
// crash left behind.
func newStager(cfg config.StagingConfig) (*staging.Stager, error) {
	stager, err := staging.New(cfg.Dir, cfg.Prefix)
	if err != nil {
		return nil, fmt.Errorf("staging: %w", err)
	}
	if cfg.SweepOnStart {
		sweep(stager, cfg)
	}
	return stager, nil
}

func sweep(stager *staging.Stager, cfg config.StagingConfig) {
	n, err := stager.Sweep(cfg.StaleAfter.Duration)
	if err != nil {
		debug.Warn(debug.STAGING, "sweep %s: %v", stager.Dir(), err)
		return
	}
	if n > 0 {
		debug.Log(debug.STAGING, "swept %d stale staged files", n)
	}
}

// newDragOrchestrator wires the native drag loop. remove deletes the dragged
// file once the loop returns.
func newDragOrchestrator(cfg config.DragConfig, remove func(string) error) (*dragdrop.Orchestrator, error) {
	allowed, err := dragdrop.ParseEffects(cfg.AllowedEffects)
	if err != nil {
		return nil, fmt.Errorf("drag.allowed_effects: %w", err)
	}
	if allowed == dragdrop.EffectNone {
		allowed = dragdrop.EffectCopy | dragdrop.EffectMove
	}
	opts := []dragdrop.Option{dragdrop.WithAllowedEffects(allowed)}
	if remove != nil {
		opts = append(opts, dragdrop.WithRemover(remove))
	}
	return dragdrop.NewOrchestrator(dragdrop.NewNativeLoop(), dragdrop.NewNativeAllocator(), opts...), nil
}
