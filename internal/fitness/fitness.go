// Package fitness scores candidates: correctness first, then brevity,
// then speed.
package fitness

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/evolvesmith/evolvesmith/internal/genome"
	"github.com/evolvesmith/evolvesmith/internal/sandbox"
	"github.com/evolvesmith/evolvesmith/internal/task"
)

// Scoring constants. An execution failure costs a heavy but survivable
// penalty so the search can still explore near-miss mutations of broken
// code.
const (
	ExecFailurePenalty = -10.0

	accuracyWeight = 10.0
	lengthWeight   = 0.5
	timeWeight     = 0.3

	lengthBaseline = 300.0 // chars
	lengthCap      = 1.5
	timeCap        = 3.0

	// floatTolerance is the absolute epsilon applied when both the
	// actual and expected reprs parse as numbers.
	floatTolerance = 1e-9
)

var timeBaseline = 10 * time.Millisecond // per batch

// Meta carries the diagnostic outcome of one scoring pass.
type Meta struct {
	Passed   int
	Total    int
	Duration time.Duration
	Err      string
}

// Score sanitizes the candidate, runs it against the task's batched
// inputs, and folds the outcome into a scalar fitness. Execution faults
// return the fixed penalty with the detail in Meta.Err.
func Score(ctx context.Context, exec sandbox.Executor, code string, t *task.Task) (float64, Meta) {
	code = genome.Sanitize(code)
	res, err := exec.Execute(ctx, code, t.BatchInputs())
	if err != nil {
		return ExecFailurePenalty, Meta{Err: err.Error()}
	}

	passed := 0
	total := len(t.Tests)
	for i, c := range t.Tests {
		if i < len(res.Outputs) && Match(res.Outputs[i], c.Want) {
			passed++
		}
	}
	accuracy := float64(passed) / float64(total)
	lengthPenalty := math.Min(float64(len(code))/lengthBaseline, lengthCap)
	timePenalty := math.Min(res.Duration.Seconds()/timeBaseline.Seconds(), timeCap)
	fitness := accuracy*accuracyWeight - lengthWeight*lengthPenalty - timeWeight*timePenalty
	return fitness, Meta{Passed: passed, Total: total, Duration: res.Duration}
}

// Match compares an actual output repr against the expected literal.
// Comparison is exact, with a numeric epsilon fallback so float-valued
// tasks are not misjudged by representation noise.
func Match(got, want string) bool {
	if got == want {
		return true
	}
	gf, gerr := strconv.ParseFloat(strings.TrimSpace(got), 64)
	wf, werr := strconv.ParseFloat(strings.TrimSpace(want), 64)
	if gerr == nil && werr == nil {
		return math.Abs(gf-wf) <= floatTolerance
	}
	return false
}
