package sandbox_test

import (
	"context"
	"testing"
	"time"

	"github.com/evolvesmith/evolvesmith/internal/sandbox"
)

// The worker protocol tests substitute plain POSIX binaries for the real
// worker so they run without a built artifact.

func TestProcessKillsHungWorker(t *testing.T) {
	exec := &sandbox.ProcessExecutor{
		Bin:     "sleep",
		Args:    []string{"5"},
		Timeout: 50 * time.Millisecond,
		Grace:   50 * time.Millisecond,
	}
	start := time.Now()
	_, err := exec.Execute(context.Background(), "def solve(n):\n    return n", [][]string{{"1"}})
	elapsed := time.Since(start)
	f := faultOf(t, err)
	if f.Kind != sandbox.FaultTimeout {
		t.Fatalf("fault kind = %q, want %q", f.Kind, sandbox.FaultTimeout)
	}
	if elapsed > 2*time.Second {
		t.Errorf("kill took %v, worker should die at timeout+grace", elapsed)
	}
}

func TestProcessSilentWorkerIsNoResult(t *testing.T) {
	exec := &sandbox.ProcessExecutor{
		Bin:     "true",
		Args:    []string{},
		Timeout: time.Second,
	}
	_, err := exec.Execute(context.Background(), "def solve(n):\n    return n", [][]string{{"1"}})
	f := faultOf(t, err)
	if f.Kind != sandbox.FaultNoResult {
		t.Errorf("fault kind = %q, want %q", f.Kind, sandbox.FaultNoResult)
	}
}

func TestProcessWorkerResultPaths(t *testing.T) {
	cases := []struct {
		name     string
		result   string
		wantKind sandbox.FaultKind // empty means success expected
	}{
		{"success", `{"outputs": ["6"], "duration_us": 120}`, ""},
		{"fault passthrough", `{"fault": "timeout", "detail": "timeout"}`, sandbox.FaultTimeout},
		{"empty outputs object", `{}`, sandbox.FaultNoResult},
		{"garbage", `garbage`, sandbox.FaultNoResult},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			exec := &sandbox.ProcessExecutor{
				Bin:     "sh",
				Args:    []string{"-c", "cat > /dev/null; printf '%s' '" + tc.result + "'"},
				Timeout: time.Second,
			}
			res, err := exec.Execute(context.Background(), "def solve(n):\n    return n * 2", [][]string{{"3"}})
			if tc.wantKind == "" {
				if err != nil {
					t.Fatalf("Execute: %v", err)
				}
				if len(res.Outputs) != 1 || res.Outputs[0] != "6" {
					t.Errorf("outputs = %v", res.Outputs)
				}
				if res.Duration != 120*time.Microsecond {
					t.Errorf("duration = %v, want 120µs", res.Duration)
				}
				return
			}
			f := faultOf(t, err)
			if f.Kind != tc.wantKind {
				t.Errorf("fault kind = %q, want %q", f.Kind, tc.wantKind)
			}
		})
	}
}
