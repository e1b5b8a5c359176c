package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// defaultGrace is how long past the candidate timeout the parent waits
// before killing the worker. The worker normally cancels the candidate
// itself and exits with a timeout fault; the kill is the hard backstop
// for a worker stuck inside the interpreter.
const defaultGrace = 250 * time.Millisecond

// ProcessExecutor runs each batch in a fresh child OS process so that
// an infinite loop, resource exhaustion, or crash in candidate code
// cannot hang or corrupt the trainer. The child is this same binary
// invoked with the hidden `exec` subcommand.
type ProcessExecutor struct {
	Bin      string   // worker binary; defaults to os.Executable()
	Args     []string // worker argv; defaults to ["exec"]
	Timeout  time.Duration
	MaxSteps uint64
	Grace    time.Duration
}

func (e *ProcessExecutor) Execute(ctx context.Context, code string, inputs [][]string) (*Result, error) {
	bin := e.Bin
	if bin == "" {
		self, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("locating worker binary: %w", err)
		}
		bin = self
	}
	args := e.Args
	if args == nil {
		args = []string{"exec"}
	}
	grace := e.Grace
	if grace <= 0 {
		grace = defaultGrace
	}

	payload, err := json.Marshal(workRequest{
		Code:      code,
		Inputs:    inputs,
		TimeoutMS: e.Timeout.Milliseconds(),
		MaxSteps:  e.MaxSteps,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding work request: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, e.Timeout+grace)
	defer cancel()

	cmd := exec.CommandContext(runCtx, bin, args...)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	runErr := cmd.Run()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return nil, &Fault{Kind: FaultTimeout, Detail: "timeout"}
	}

	var res workResult
	if err := json.Unmarshal(stdout.Bytes(), &res); err != nil {
		detail := "worker produced no result"
		if runErr != nil {
			detail = fmt.Sprintf("worker exited: %v", runErr)
		}
		return nil, &Fault{Kind: FaultNoResult, Detail: detail}
	}
	if res.Fault != "" {
		return nil, &Fault{Kind: FaultKind(res.Fault), Detail: res.Detail}
	}
	if res.Outputs == nil {
		return nil, &Fault{Kind: FaultNoResult, Detail: "worker returned an empty result"}
	}
	return &Result{
		Outputs:  res.Outputs,
		Duration: time.Duration(res.DurationUS) * time.Microsecond,
	}, nil
}
