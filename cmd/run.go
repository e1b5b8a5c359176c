package cmd

import (
	"fmt"
	"os"

	"github.com/evolvesmith/evolvesmith/internal/config"
	"github.com/evolvesmith/evolvesmith/internal/report"
	"github.com/evolvesmith/evolvesmith/internal/sandbox"
	"github.com/evolvesmith/evolvesmith/internal/task"
	"github.com/evolvesmith/evolvesmith/internal/trainer"
	"github.com/spf13/cobra"
)

var (
	flagGens       int
	flagPop        int
	flagElite      int
	flagSeed       int64
	flagMutateRate float64
	flagCxRate     float64
	flagParallel   int
	flagTask       string
	flagSandbox    string
	flagTimeoutMS  int
	flagTasksFile  string
	flagFormat     string
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evolve candidates for every task and print the best programs",
		RunE:  runEvolve,
	}
	cmd.Flags().IntVar(&flagGens, "gens", 20, "generations per task")
	cmd.Flags().IntVar(&flagPop, "pop", 40, "population size")
	cmd.Flags().Int64Var(&flagSeed, "seed", 0, "random seed")
	cmd.Flags().IntVar(&flagElite, "elite", 6, "elites carried unmodified per generation")
	cmd.Flags().Float64Var(&flagMutateRate, "mutate-rate", 0.7, "per-child mutation probability")
	cmd.Flags().Float64Var(&flagCxRate, "cx-rate", 0.5, "per-child crossover probability")
	cmd.Flags().IntVar(&flagParallel, "parallel", 1, "concurrent candidate evaluations")
	cmd.Flags().StringVar(&flagTask, "task", "", "filter to a single task")
	cmd.Flags().StringVar(&flagSandbox, "sandbox", "", "sandbox mode (inline, process, docker)")
	cmd.Flags().IntVar(&flagTimeoutMS, "timeout-ms", 250, "sandbox timeout per batch in milliseconds")
	cmd.Flags().StringVar(&flagTasksFile, "tasks-file", "", "YAML file with additional tasks")
	cmd.Flags().StringVar(&flagFormat, "format", "table", "report format (table, markdown, json)")
	return cmd
}

func runEvolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	tasks := task.Builtin()
	if cfg.TasksFile != "" {
		extra, err := task.LoadFile(cfg.TasksFile)
		if err != nil {
			return err
		}
		tasks = append(tasks, extra...)
	}
	if err := task.Validate(tasks); err != nil {
		return err
	}
	if flagTask != "" {
		tasks = task.Filter(tasks, flagTask)
		if len(tasks) == 0 {
			return fmt.Errorf("no task named %q", flagTask)
		}
	}

	exec, err := sandbox.New(cfg.Sandbox)
	if err != nil {
		return err
	}

	tr := trainer.New(cfg.Trainer, exec, os.Stdout)
	results, err := tr.Run(cmd.Context(), tasks)
	if err != nil {
		return err
	}

	fmt.Println("\n=== BEST PROGRAMS BY TASK ===")
	return report.Write(os.Stdout, results, flagFormat)
}

// loadConfig reads the config file when present and falls back to
// defaults when the default path is absent. An explicitly requested
// file that cannot be read is an error.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); err != nil {
		if os.IsNotExist(err) && cfgFile == "evolvesmith.yaml" {
			return config.Default(), nil
		}
		return nil, fmt.Errorf("config %s: %w", cfgFile, err)
	}
	return config.Load(cfgFile)
}

// Flags changed on the command line win over the config file.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("gens") {
		cfg.Trainer.Gens = flagGens
	}
	if flags.Changed("pop") {
		cfg.Trainer.Pop = flagPop
	}
	if flags.Changed("seed") {
		cfg.Trainer.Seed = flagSeed
	}
	if flags.Changed("elite") {
		cfg.Trainer.Elite = flagElite
	}
	if flags.Changed("mutate-rate") {
		cfg.Trainer.MutateRate = flagMutateRate
	}
	if flags.Changed("cx-rate") {
		cfg.Trainer.CxRate = flagCxRate
	}
	if flags.Changed("parallel") {
		cfg.Trainer.Parallel = flagParallel
	}
	if flags.Changed("sandbox") {
		cfg.Sandbox.Mode = flagSandbox
	}
	if flags.Changed("timeout-ms") {
		cfg.Sandbox.TimeoutMS = flagTimeoutMS
	}
	if flags.Changed("tasks-file") {
		cfg.TasksFile = flagTasksFile
	}
}
