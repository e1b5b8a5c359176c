package sandbox

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"

	starlarkmath "go.starlark.net/lib/math"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Candidates run under a fixed dialect: while loops, recursion, and
// top-level control flow enabled so mutated seeds stay recoverable.
var fileOpts = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
	Recursion:       true,
}

// predeclared is the capability whitelist: the Starlark universe (pure
// builtins, no I/O, no load) plus the math module and a few aggregation
// builtins the universe lacks. Constructed fresh per invocation; no
// candidate can observe another's run.
func predeclared() starlark.StringDict {
	return starlark.StringDict{
		"math":  starlarkmath.Module,
		"sum":   starlark.NewBuiltin("sum", builtinSum),
		"pow":   starlark.NewBuiltin("pow", builtinPow),
		"round": starlark.NewBuiltin("round", builtinRound),
	}
}

// InlineExecutor runs candidates on the restricted interpreter inside
// the trainer process. Cancellation is cooperative (step counter), so
// this is the weakest isolation level; the process and docker executors
// wrap the same engine behind a hard process boundary.
type InlineExecutor struct {
	Timeout  time.Duration
	MaxSteps uint64
}

func (e *InlineExecutor) Execute(ctx context.Context, code string, inputs [][]string) (*Result, error) {
	res, fault := runBatch(ctx, code, inputs, e.Timeout, e.MaxSteps)
	if fault != nil {
		return nil, fault
	}
	return res, nil
}

// runBatch executes the candidate's entry point once per input tuple
// within a single interpreter run. Returns a Result or a classified
// Fault; it never returns both.
func runBatch(ctx context.Context, code string, inputs [][]string, timeout time.Duration, maxSteps uint64) (*Result, *Fault) {
	thread := &starlark.Thread{Name: "candidate"}
	if maxSteps > 0 {
		thread.SetMaxExecutionSteps(maxSteps)
	}

	var expired atomic.Bool
	timer := time.AfterFunc(timeout, func() {
		expired.Store(true)
		thread.Cancel("wall clock limit")
	})
	defer timer.Stop()
	stop := context.AfterFunc(ctx, func() {
		expired.Store(true)
		thread.Cancel("context done")
	})
	defer stop()

	globals, err := starlark.ExecFileOptions(fileOpts, thread, "candidate.star", code, predeclared())
	if err != nil {
		return nil, classify(err, &expired)
	}
	fn, ok := globals[EntryPoint].(starlark.Callable)
	if !ok {
		return nil, &Fault{Kind: FaultNoEntryPoint, Detail: "no function `solve` defined"}
	}

	outputs := make([]string, 0, len(inputs))
	start := time.Now()
	for _, argExprs := range inputs {
		args := make(starlark.Tuple, 0, len(argExprs))
		for _, expr := range argExprs {
			v, err := EvalLiteral(expr)
			if err != nil {
				return nil, &Fault{Kind: FaultRuntime, Detail: fmt.Sprintf("bad input literal %q: %v", expr, err)}
			}
			args = append(args, v)
		}
		out, err := starlark.Call(thread, fn, args, nil)
		if err != nil {
			return nil, classify(err, &expired)
		}
		outputs = append(outputs, out.String())
	}
	return &Result{Outputs: outputs, Duration: time.Since(start)}, nil
}

func classify(err error, expired *atomic.Bool) *Fault {
	if expired.Load() {
		return &Fault{Kind: FaultTimeout, Detail: "timeout"}
	}
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		if strings.Contains(evalErr.Msg, "too many steps") {
			return &Fault{Kind: FaultTimeout, Detail: "step budget exhausted"}
		}
		return &Fault{Kind: FaultRuntime, Detail: evalErr.Msg}
	}
	return &Fault{Kind: FaultRuntime, Detail: err.Error()}
}

// EvalLiteral evaluates a trusted test literal (an input argument or an
// expected output) under the same dialect and whitelist as candidates.
func EvalLiteral(expr string) (starlark.Value, error) {
	thread := &starlark.Thread{Name: "literal"}
	return starlark.EvalOptions(fileOpts, thread, "literal.star", expr, predeclared())
}

// CheckLiteral reports whether a task literal is well formed. Used by
// task validation so bad registry entries fail before evolution begins.
func CheckLiteral(expr string) error {
	_, err := EvalLiteral(expr)
	return err
}

func builtinSum(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var iterable starlark.Iterable
	if err := starlark.UnpackPositionalArgs("sum", args, kwargs, 1, &iterable); err != nil {
		return nil, err
	}
	iter := iterable.Iterate()
	defer iter.Done()

	intSum := starlark.MakeInt(0)
	floatSum := starlark.Float(0)
	isFloat := false
	var x starlark.Value
	for iter.Next(&x) {
		switch v := x.(type) {
		case starlark.Int:
			if isFloat {
				floatSum += v.Float()
			} else {
				intSum = intSum.Add(v)
			}
		case starlark.Float:
			if !isFloat {
				isFloat = true
				floatSum = intSum.Float() + v
			} else {
				floatSum += v
			}
		default:
			return nil, fmt.Errorf("sum: unsupported element type %s", x.Type())
		}
	}
	if isFloat {
		return floatSum, nil
	}
	return intSum, nil
}

func builtinPow(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var x, y starlark.Value
	if err := starlark.UnpackPositionalArgs("pow", args, kwargs, 2, &x, &y); err != nil {
		return nil, err
	}
	if xi, ok := x.(starlark.Int); ok {
		if yi, ok := y.(starlark.Int); ok {
			if n, ok := yi.Int64(); ok && n >= 0 {
				result := starlark.MakeInt(1)
				for k := int64(0); k < n; k++ {
					result = result.Mul(xi)
				}
				return result, nil
			}
		}
	}
	xf, err := asFloat(x)
	if err != nil {
		return nil, fmt.Errorf("pow: %w", err)
	}
	yf, err := asFloat(y)
	if err != nil {
		return nil, fmt.Errorf("pow: %w", err)
	}
	return starlark.Float(math.Pow(xf, yf)), nil
}

func builtinRound(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var x starlark.Value
	if err := starlark.UnpackPositionalArgs("round", args, kwargs, 1, &x); err != nil {
		return nil, err
	}
	switch v := x.(type) {
	case starlark.Int:
		return v, nil
	case starlark.Float:
		return starlark.MakeInt64(int64(math.Round(float64(v)))), nil
	default:
		return nil, fmt.Errorf("round: unsupported type %s", x.Type())
	}
}

func asFloat(v starlark.Value) (float64, error) {
	switch x := v.(type) {
	case starlark.Int:
		return float64(x.Float()), nil
	case starlark.Float:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("expected number, got %s", v.Type())
	}
}
