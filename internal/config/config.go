package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Sandbox modes, ordered by isolation strength.
const (
	ModeInline  = "inline"
	ModeProcess = "process"
	ModeDocker  = "docker"
)

type Config struct {
	Trainer   Trainer `yaml:"trainer"`
	Sandbox   Sandbox `yaml:"sandbox"`
	TasksFile string  `yaml:"tasks_file"`
}

// Trainer holds the run-wide search parameters. The seed fully
// determines the pseudo-random trajectory for fixed scoring behavior.
type Trainer struct {
	Pop        int     `yaml:"pop"`
	Gens       int     `yaml:"gens"`
	Elite      int     `yaml:"elite"`
	MutateRate float64 `yaml:"mutate_rate"`
	CxRate     float64 `yaml:"cx_rate"`
	Seed       int64   `yaml:"seed"`
	Parallel   int     `yaml:"parallel"`
}

type Sandbox struct {
	Mode      string `yaml:"mode"`
	TimeoutMS int    `yaml:"timeout_ms"`
	MaxSteps  uint64 `yaml:"max_steps"`
	Image     string `yaml:"image"`
}

func (s Sandbox) Timeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

func Default() *Config {
	return &Config{
		Trainer: Trainer{
			Pop:        40,
			Gens:       20,
			Elite:      6,
			MutateRate: 0.7,
			CxRate:     0.5,
			Seed:       0,
			Parallel:   1,
		},
		Sandbox: Sandbox{
			Mode:      ModeProcess,
			TimeoutMS: 250,
			MaxSteps:  2_000_000,
			Image:     "evolvesmith-sandbox:latest",
		},
	}
}

// Load reads a config file over the defaults. Missing keys keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	t := c.Trainer
	if t.Pop < 1 {
		return fmt.Errorf("population size must be at least 1, got %d", t.Pop)
	}
	if t.Gens < 1 {
		return fmt.Errorf("generation budget must be at least 1, got %d", t.Gens)
	}
	if t.Elite < 0 {
		return fmt.Errorf("elite count must not be negative, got %d", t.Elite)
	}
	if t.Elite >= t.Pop {
		return fmt.Errorf("elite count %d must be smaller than population size %d", t.Elite, t.Pop)
	}
	if t.MutateRate < 0 || t.MutateRate > 1 {
		return fmt.Errorf("mutate_rate must be in [0,1], got %g", t.MutateRate)
	}
	if t.CxRate < 0 || t.CxRate > 1 {
		return fmt.Errorf("cx_rate must be in [0,1], got %g", t.CxRate)
	}
	if t.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1, got %d", t.Parallel)
	}
	s := c.Sandbox
	if s.TimeoutMS < 1 {
		return fmt.Errorf("sandbox timeout_ms must be positive, got %d", s.TimeoutMS)
	}
	switch s.Mode {
	case ModeInline, ModeProcess:
	case ModeDocker:
		if s.Image == "" {
			return fmt.Errorf("sandbox mode %q requires an image", s.Mode)
		}
	default:
		return fmt.Errorf("unknown sandbox mode %q", s.Mode)
	}
	return nil
}
