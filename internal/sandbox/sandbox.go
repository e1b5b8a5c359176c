// Package sandbox runs candidate programs in isolated, capability-restricted,
// timeout-bounded execution contexts. Candidates never run directly on the
// trainer's interpreter state.
package sandbox

import (
	"context"
	"fmt"
	"time"

	"github.com/evolvesmith/evolvesmith/internal/config"
)

// EntryPoint is the callable every candidate program must define.
const EntryPoint = "solve"

// Executor runs a candidate program's entry point once per input tuple,
// as a single batched unit of work bounded by one wall-clock timeout.
// Each inputs entry holds the argument expressions (Starlark literals)
// for one call.
type Executor interface {
	Execute(ctx context.Context, code string, inputs [][]string) (*Result, error)
}

// Result is a successful batch execution: one output repr per input
// tuple, in order, plus the total elapsed duration of the call loop.
type Result struct {
	Outputs  []string
	Duration time.Duration
}

type FaultKind string

const (
	FaultTimeout      FaultKind = "timeout"
	FaultNoEntryPoint FaultKind = "no_entry_point"
	FaultRuntime      FaultKind = "runtime"
	FaultNoResult     FaultKind = "no_result"
)

// Fault classifies why a batch did not complete. Faults are data to the
// layers above the executor: the fitness evaluator converts them into a
// bounded negative score, never a crash.
type Fault struct {
	Kind   FaultKind
	Detail string
}

func (f *Fault) Error() string {
	if f.Detail == "" {
		return string(f.Kind)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
}

// New builds the executor for the configured isolation mode.
func New(cfg config.Sandbox) (Executor, error) {
	timeout := cfg.Timeout()
	switch cfg.Mode {
	case config.ModeInline:
		return &InlineExecutor{Timeout: timeout, MaxSteps: cfg.MaxSteps}, nil
	case "", config.ModeProcess:
		return &ProcessExecutor{Timeout: timeout, MaxSteps: cfg.MaxSteps}, nil
	case config.ModeDocker:
		return &DockerExecutor{Image: cfg.Image, Timeout: timeout, MaxSteps: cfg.MaxSteps}, nil
	default:
		return nil, fmt.Errorf("unknown sandbox mode %q", cfg.Mode)
	}
}
