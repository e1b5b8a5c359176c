package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// The process and docker executors speak a small JSON protocol with the
// worker: one workRequest in, one workResult out. A worker always exits
// zero when it produced a result; candidate faults travel as data.

type workRequest struct {
	Code      string     `json:"code"`
	Inputs    [][]string `json:"inputs"`
	TimeoutMS int64      `json:"timeout_ms"`
	MaxSteps  uint64     `json:"max_steps"`
}

type workResult struct {
	Outputs    []string `json:"outputs,omitempty"`
	DurationUS int64    `json:"duration_us"`
	Fault      string   `json:"fault,omitempty"`
	Detail     string   `json:"detail,omitempty"`
}

// ServeWork reads one work request, runs it on the inline engine, and
// writes the result. This is the body of the hidden `exec` subcommand.
func ServeWork(r io.Reader, w io.Writer) error {
	var req workRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return fmt.Errorf("decoding work request: %w", err)
	}
	timeout := time.Duration(req.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 250 * time.Millisecond
	}

	var out workResult
	res, fault := runBatch(context.Background(), req.Code, req.Inputs, timeout, req.MaxSteps)
	if fault != nil {
		out.Fault = string(fault.Kind)
		out.Detail = fault.Detail
	} else {
		out.Outputs = res.Outputs
		out.DurationUS = res.Duration.Microseconds()
	}
	if err := json.NewEncoder(w).Encode(&out); err != nil {
		return fmt.Errorf("encoding work result: %w", err)
	}
	return nil
}
