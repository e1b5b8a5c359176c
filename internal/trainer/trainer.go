// Package trainer drives the generational search loop per task.
package trainer

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"sort"

	"github.com/evolvesmith/evolvesmith/internal/config"
	"github.com/evolvesmith/evolvesmith/internal/fitness"
	"github.com/evolvesmith/evolvesmith/internal/genome"
	"github.com/evolvesmith/evolvesmith/internal/report"
	"github.com/evolvesmith/evolvesmith/internal/sandbox"
	"github.com/evolvesmith/evolvesmith/internal/task"
)

const mutateIntensity = 0.25

// Candidate is one evolved program. Fitness is -inf until evaluated.
type Candidate struct {
	Code    string
	Fitness float64
	Meta    fitness.Meta
}

// GenStat records one generation's best for progress output and
// reproducibility checks (duration varies run to run; pass counts do
// not, for deterministic candidate code).
type GenStat struct {
	Gen     int
	Best    float64
	Passed  int
	Total   int
	Seconds float64
}

// Outcome is the result of evolving one task: the best-ever candidate
// plus the per-generation history.
type Outcome struct {
	Best    Candidate
	History []GenStat
}

// Trainer owns the population and RNG state for a run. It is not safe
// for concurrent use; parallelism happens only inside candidate
// scoring, which consumes no trainer state.
type Trainer struct {
	cfg  config.Trainer
	exec sandbox.Executor
	out  io.Writer
	rng  *rand.Rand
}

func New(cfg config.Trainer, exec sandbox.Executor, out io.Writer) *Trainer {
	if out == nil {
		out = io.Discard
	}
	return &Trainer{
		cfg:  cfg,
		exec: exec,
		out:  out,
		rng:  rand.New(rand.NewSource(cfg.Seed)),
	}
}

// EvolveTask runs the generational loop for one task: seed, score,
// select, reproduce, until the generation budget is spent or a
// generation's best passes every test.
func (tr *Trainer) EvolveTask(ctx context.Context, tk *task.Task) (*Outcome, error) {
	pop := make([]*Candidate, tr.cfg.Pop)
	for i := range pop {
		pop[i] = &Candidate{Code: genome.NewSeed(tr.rng, tk.Seeds), Fitness: math.Inf(-1)}
	}

	outcome := &Outcome{Best: Candidate{Fitness: math.Inf(-1)}}
	for gen := 1; gen <= tr.cfg.Gens; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tr.scorePopulation(ctx, pop, tk)
		sort.SliceStable(pop, func(i, j int) bool { return pop[i].Fitness > pop[j].Fitness })

		top := pop[0]
		if top.Fitness > outcome.Best.Fitness {
			// Deep copy into the persistent best slot: the population
			// is discarded every generation.
			outcome.Best = *top
		}

		stat := GenStat{
			Gen:     gen,
			Best:    top.Fitness,
			Passed:  top.Meta.Passed,
			Total:   top.Meta.Total,
			Seconds: top.Meta.Duration.Seconds(),
		}
		outcome.History = append(outcome.History, stat)
		fmt.Fprintf(tr.out, "[%s] gen %03d | best %.3f | pass %d/%d | dur %.4fs\n",
			tk.Name, stat.Gen, stat.Best, stat.Passed, stat.Total, stat.Seconds)

		if top.Meta.Total > 0 && top.Meta.Passed == top.Meta.Total {
			break
		}
		pop = tr.nextGeneration(pop, tk)
	}
	return outcome, nil
}

// Run evolves every task in order and collects the final report rows.
func (tr *Trainer) Run(ctx context.Context, tasks []*task.Task) ([]report.TaskResult, error) {
	if len(tasks) == 0 {
		return nil, fmt.Errorf("no tasks to evolve")
	}
	results := make([]report.TaskResult, 0, len(tasks))
	for _, tk := range tasks {
		outcome, err := tr.EvolveTask(ctx, tk)
		if err != nil {
			return nil, fmt.Errorf("evolving %s: %w", tk.Name, err)
		}
		best := outcome.Best
		results = append(results, report.TaskResult{
			Task:      tk.Name,
			Fitness:   best.Fitness,
			Passed:    best.Meta.Passed,
			Total:     best.Meta.Total,
			DurationS: best.Meta.Duration.Seconds(),
			Code:      best.Code,
		})
	}
	return results, nil
}

func (tr *Trainer) scorePopulation(ctx context.Context, pop []*Candidate, tk *task.Task) {
	score := func(c *Candidate) {
		fit, meta := fitness.Score(ctx, tr.exec, c.Code, tk)
		c.Fitness = fit
		c.Meta = meta
	}
	if tr.cfg.Parallel <= 1 {
		for _, c := range pop {
			score(c)
		}
		return
	}
	jobs := make([]Job, len(pop))
	for i := range pop {
		c := pop[i]
		jobs[i] = func() error {
			score(c)
			return nil
		}
	}
	RunPool(tr.cfg.Parallel, jobs)
}

// nextGeneration keeps the elites and fills the remaining slots with
// offspring: crossover of two parents with probability cx_rate,
// otherwise a clone, each then mutated with probability mutate_rate.
// Parents are sampled from a pool of at least max(10, elite) top
// performers.
func (tr *Trainer) nextGeneration(pop []*Candidate, tk *task.Task) []*Candidate {
	next := make([]*Candidate, 0, tr.cfg.Pop)
	next = append(next, pop[:min(tr.cfg.Elite, len(pop))]...)

	poolSize := max(10, tr.cfg.Elite)
	if poolSize > len(pop) {
		poolSize = len(pop)
	}
	parents := pop[:poolSize]

	for len(next) < tr.cfg.Pop {
		var childCode string
		if tr.rng.Float64() < tr.cfg.CxRate && len(parents) >= 2 {
			i := tr.rng.Intn(len(parents))
			j := tr.rng.Intn(len(parents) - 1)
			if j >= i {
				j++
			}
			childCode = genome.Crossover(tr.rng, parents[i].Code, parents[j].Code)
		} else {
			childCode = parents[tr.rng.Intn(len(parents))].Code
		}
		if tr.rng.Float64() < tr.cfg.MutateRate {
			body := genome.Mutate(tr.rng, genome.ExtractBody(childCode), mutateIntensity)
			childCode = genome.Assemble(body)
		}
		next = append(next, &Candidate{Code: childCode, Fitness: math.Inf(-1)})
	}
	return next
}
