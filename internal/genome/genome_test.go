package genome_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/evolvesmith/evolvesmith/internal/genome"
)

func TestAssembleExtractRoundTrip(t *testing.T) {
	body := "def solve(x):\n    return x + 1"
	code := genome.Assemble(body)
	if !strings.HasPrefix(code, "# evolved candidate\n") {
		t.Errorf("assembled code missing header: %q", code)
	}
	if got := genome.ExtractBody(code); got != body+"\n" {
		t.Errorf("ExtractBody = %q, want %q", got, body+"\n")
	}
}

func TestExtractBodyShortProgram(t *testing.T) {
	if got := genome.ExtractBody("pass"); got != "pass" {
		t.Errorf("ExtractBody(pass) = %q", got)
	}
}

func TestSanitize(t *testing.T) {
	in := strings.Join([]string{
		"import os",
		"from x import y",
		`load("module.star", "f")`,
		"a = __builtins__",
		"def solve(x):",
		"    return x",
	}, "\n")
	got := genome.Sanitize(in)
	want := "def solve(x):\n    return x"
	if got != want {
		t.Errorf("Sanitize = %q, want %q", got, want)
	}
}

func TestMutateNeverEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	body := ""
	for i := 0; i < 200; i++ {
		body = genome.Mutate(rng, body, 0.25)
		if body == "" {
			t.Fatalf("empty body after %d mutations", i+1)
		}
	}
}

func TestMutateDeterministic(t *testing.T) {
	body := "def solve(x):\n    return x * 2"
	a := genome.Mutate(rand.New(rand.NewSource(42)), body, 0.25)
	b := genome.Mutate(rand.New(rand.NewSource(42)), body, 0.25)
	if a != b {
		t.Errorf("same seed produced different mutants:\n%q\n%q", a, b)
	}
	c := genome.Mutate(rand.New(rand.NewSource(43)), body, 0.25)
	if a == c {
		t.Log("different seeds produced the same mutant (possible but unlikely)")
	}
}

func TestCrossoverTotality(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cases := []struct{ name, a, b string }{
		{"both multi-line", "a\nb\nc", "x\ny\nz"},
		{"single lines", "a", "b"},
		{"empty first", "", "x\ny"},
		{"empty second", "a\nb", ""},
		{"both empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := genome.Crossover(rng, tc.a, tc.b)
			if tc.a == "" || tc.b == "" {
				if got != tc.a {
					t.Errorf("empty-parent crossover = %q, want first parent %q", got, tc.a)
				}
			}
			// Never panics, always returns a string built from parent lines.
			for _, ln := range strings.Split(got, "\n") {
				if ln == "" {
					continue
				}
				if !strings.Contains(tc.a+"\n"+tc.b, ln) {
					t.Errorf("child line %q not from either parent", ln)
				}
			}
		})
	}
}

func TestNewSeedFallback(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 10; i++ {
		code := genome.NewSeed(rng, nil)
		if !strings.Contains(code, "def solve(") {
			t.Errorf("fallback seed missing entry point: %q", code)
		}
		if !strings.HasPrefix(code, "# evolved candidate\n") {
			t.Errorf("seed not assembled into template: %q", code)
		}
	}
}

func TestNewSeedUsesProvided(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	seeds := []string{"def solve(n):\n    return n * 3"}
	for i := 0; i < 10; i++ {
		code := genome.NewSeed(rng, seeds)
		if !strings.Contains(code, "n * 3") {
			t.Errorf("seed body lost: %q", code)
		}
	}
}
