// Package task defines the catalog of synthesis problems: named sets of
// input/expected-output pairs with optional seed programs.
package task

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/evolvesmith/evolvesmith/internal/sandbox"
)

// Case is one hand-authored ground-truth test: the argument expressions
// for a single call plus the expected return value, all as Starlark
// literals.
type Case struct {
	Args []string `yaml:"args"`
	Want string   `yaml:"want"`
}

// Task is a named synthesis problem. Seeds, when present, are valid
// programs defining `solve` with the test arity; they bias initial
// population diversity and may deliberately fail some tests.
type Task struct {
	Name  string   `yaml:"name"`
	Tests []Case   `yaml:"tests"`
	Seeds []string `yaml:"seeds"`
}

// BatchInputs returns the argument tuples for all tests, in order, used
// to invoke a candidate in one batched sandbox call.
func (t *Task) BatchInputs() [][]string {
	inputs := make([][]string, len(t.Tests))
	for i, c := range t.Tests {
		inputs[i] = c.Args
	}
	return inputs
}

// Arity is the argument count of the task's entry point.
func (t *Task) Arity() int {
	if len(t.Tests) == 0 {
		return 0
	}
	return len(t.Tests[0].Args)
}

// Validate rejects misconfigured catalogs before evolution begins:
// unnamed or duplicate tasks, empty test lists, inconsistent arity, and
// unparseable test literals are all fatal.
func Validate(tasks []*Task) error {
	if len(tasks) == 0 {
		return fmt.Errorf("no tasks defined")
	}
	seen := make(map[string]bool, len(tasks))
	for i, t := range tasks {
		if t.Name == "" {
			return fmt.Errorf("task %d: name is required", i)
		}
		if seen[t.Name] {
			return fmt.Errorf("task %q: duplicate name", t.Name)
		}
		seen[t.Name] = true
		if len(t.Tests) == 0 {
			return fmt.Errorf("task %q: at least one test is required", t.Name)
		}
		arity := len(t.Tests[0].Args)
		for j, c := range t.Tests {
			if len(c.Args) != arity {
				return fmt.Errorf("task %q: test %d has %d args, want %d", t.Name, j, len(c.Args), arity)
			}
			for _, arg := range c.Args {
				if err := sandbox.CheckLiteral(arg); err != nil {
					return fmt.Errorf("task %q: test %d: bad input literal %q: %w", t.Name, j, arg, err)
				}
			}
			if err := sandbox.CheckLiteral(c.Want); err != nil {
				return fmt.Errorf("task %q: test %d: bad expected literal %q: %w", t.Name, j, c.Want, err)
			}
		}
	}
	return nil
}

// LoadFile reads additional tasks from a YAML catalog.
func LoadFile(path string) ([]*Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading task file %s: %w", path, err)
	}
	var doc struct {
		Tasks []*Task `yaml:"tasks"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing task file %s: %w", path, err)
	}
	if len(doc.Tasks) == 0 {
		return nil, fmt.Errorf("task file %s: no tasks defined", path)
	}
	return doc.Tasks, nil
}

// Filter returns the tasks whose name matches, or all tasks when the
// filter is empty.
func Filter(tasks []*Task, name string) []*Task {
	if name == "" {
		return tasks
	}
	var filtered []*Task
	for _, t := range tasks {
		if t.Name == name {
			filtered = append(filtered, t)
		}
	}
	return filtered
}
