package trainer_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/evolvesmith/evolvesmith/internal/config"
	"github.com/evolvesmith/evolvesmith/internal/sandbox"
	"github.com/evolvesmith/evolvesmith/internal/task"
	"github.com/evolvesmith/evolvesmith/internal/trainer"
)

func testExec() sandbox.Executor {
	return &sandbox.InlineExecutor{Timeout: time.Second, MaxSteps: 2_000_000}
}

func testCfg() config.Trainer {
	return config.Trainer{
		Pop:        8,
		Gens:       3,
		Elite:      2,
		MutateRate: 0.7,
		CxRate:     0.5,
		Seed:       1,
		Parallel:   1,
	}
}

// sum_digits seeds solve the task outright, so the first generation
// should contain a full pass and stop early.
func TestEvolveTaskEarlyStop(t *testing.T) {
	tk := task.Filter(task.Builtin(), "sum_digits")[0]
	var out bytes.Buffer
	tr := trainer.New(testCfg(), testExec(), &out)

	outcome, err := tr.EvolveTask(context.Background(), tk)
	if err != nil {
		t.Fatalf("EvolveTask: %v", err)
	}
	best := outcome.Best
	if best.Meta.Total != len(tk.Tests) || best.Meta.Passed != best.Meta.Total {
		t.Fatalf("best passed %d/%d, want all %d", best.Meta.Passed, best.Meta.Total, len(tk.Tests))
	}
	if best.Fitness <= 9.0 {
		t.Errorf("best fitness = %v, want above 9", best.Fitness)
	}
	if len(outcome.History) != 1 {
		t.Errorf("expected early stop after generation 1, history has %d entries", len(outcome.History))
	}
	if !strings.Contains(out.String(), "[sum_digits] gen 001") {
		t.Errorf("missing progress line in output: %q", out.String())
	}
}

// A task whose only seed fails one test exercises the full loop.
func partialTask() *task.Task {
	return &task.Task{
		Name: "add_one",
		Tests: []task.Case{
			{Args: []string{"0"}, Want: "1"},
			{Args: []string{"5"}, Want: "6"},
			{Args: []string{"9"}, Want: "11"},
		},
		Seeds: []string{"def solve(n):\n    return n + 1"},
	}
}

func TestEvolveTaskTracksBestEver(t *testing.T) {
	tk := partialTask()
	cfg := testCfg()
	tr := trainer.New(cfg, testExec(), nil)
	outcome, err := tr.EvolveTask(context.Background(), tk)
	if err != nil {
		t.Fatalf("EvolveTask: %v", err)
	}
	if len(outcome.History) != cfg.Gens {
		t.Fatalf("history has %d entries, want the full %d generations", len(outcome.History), cfg.Gens)
	}
	if outcome.Best.Meta.Passed < 2 {
		t.Errorf("best passed %d/3, the seed alone passes 2", outcome.Best.Meta.Passed)
	}
	// Best-ever fitness never drops below any generation's best.
	for _, stat := range outcome.History {
		if stat.Best > outcome.Best.Fitness {
			t.Errorf("gen %d best %v exceeds recorded best-ever %v", stat.Gen, stat.Best, outcome.Best.Fitness)
		}
	}
}

// Two runs with the same seed must explore the same candidates. Scoring
// consumes no trainer randomness, so the pass-count trajectory is the
// reproducible signal (durations are not).
func TestEvolveTaskDeterministic(t *testing.T) {
	run := func() *trainer.Outcome {
		tr := trainer.New(testCfg(), testExec(), nil)
		outcome, err := tr.EvolveTask(context.Background(), partialTask())
		if err != nil {
			t.Fatalf("EvolveTask: %v", err)
		}
		return outcome
	}
	a, b := run(), run()
	if len(a.History) != len(b.History) {
		t.Fatalf("history lengths differ: %d vs %d", len(a.History), len(b.History))
	}
	for i := range a.History {
		if a.History[i].Passed != b.History[i].Passed || a.History[i].Total != b.History[i].Total {
			t.Errorf("gen %d pass counts differ: %d/%d vs %d/%d", a.History[i].Gen,
				a.History[i].Passed, a.History[i].Total, b.History[i].Passed, b.History[i].Total)
		}
	}
}

func TestEvolveTaskParallelMatchesSequential(t *testing.T) {
	seq := testCfg()
	par := testCfg()
	par.Parallel = 4

	run := func(cfg config.Trainer) *trainer.Outcome {
		tr := trainer.New(cfg, testExec(), nil)
		outcome, err := tr.EvolveTask(context.Background(), partialTask())
		if err != nil {
			t.Fatalf("EvolveTask: %v", err)
		}
		return outcome
	}
	a, b := run(seq), run(par)
	if len(a.History) != len(b.History) {
		t.Fatalf("history lengths differ: %d vs %d", len(a.History), len(b.History))
	}
	for i := range a.History {
		if a.History[i].Passed != b.History[i].Passed {
			t.Errorf("gen %d pass counts differ between sequential and parallel", a.History[i].Gen)
		}
	}
}

func TestEvolveTaskContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tr := trainer.New(testCfg(), testExec(), nil)
	if _, err := tr.EvolveTask(ctx, partialTask()); err == nil {
		t.Fatal("expected context error")
	}
}

func TestRun(t *testing.T) {
	tasks := []*task.Task{
		task.Filter(task.Builtin(), "sum_digits")[0],
		partialTask(),
	}
	tr := trainer.New(testCfg(), testExec(), nil)
	results, err := tr.Run(context.Background(), tasks)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Task != "sum_digits" || results[1].Task != "add_one" {
		t.Errorf("results out of order: %s, %s", results[0].Task, results[1].Task)
	}
	if results[0].Passed != results[0].Total {
		t.Errorf("sum_digits best passed %d/%d", results[0].Passed, results[0].Total)
	}
	if results[1].Code == "" {
		t.Error("result should carry the best candidate's code")
	}
}

func TestRunNoTasks(t *testing.T) {
	tr := trainer.New(testCfg(), testExec(), nil)
	if _, err := tr.Run(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty task list")
	}
}
