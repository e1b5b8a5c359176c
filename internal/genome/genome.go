// Package genome represents candidates as textual programs and supplies
// the genetic operators. Everything works on raw text: most offspring
// are syntactically invalid, which is fine — the sandbox turns parse
// failures into low fitness, not crashes.
package genome

import (
	"math/rand"
	"strings"
)

const (
	header   = "# evolved candidate"
	preamble = "sqrt = math.sqrt"
)

// Token pools used by mutation. Aggregate names mirror the sandbox
// whitelist so inserted tokens at least have a chance of resolving.
var tokenPool = []string{
	" ", "  ", "\n", ":", "(", ")", "[", "]", "{", "}", ",",
	"+", "-", "*", "//", "%", "==", "!=", "<", ">", "<=", ">=",
	"=", "return", "if", "else", "for", "while", "in", "not", "and", "or",
	"True", "False", "None",
	"range", "len", "sum", "abs", "min", "max", "sorted", "reversed", "list", "dict",
}

var constantPool = []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}

const fallbackSeed = "def solve(x):\n    return x\n"

// Assemble wraps a body in the fixed program template: header line,
// fixed preamble, then the mutable body.
func Assemble(body string) string {
	return header + "\n" + preamble + "\n" + body + "\n"
}

// ExtractBody returns the mutable region of an assembled program. A
// program too short to carry the template is its own body.
func ExtractBody(code string) string {
	parts := strings.SplitN(code, "\n", 3)
	if len(parts) < 3 {
		return code
	}
	return parts[2]
}

// Sanitize strips lines that import or load modules and lines carrying
// a double-underscore token. Textual pre-filter only; the interpreter's
// whitelist is the enforced boundary.
func Sanitize(code string) string {
	var lines []string
	for _, ln := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(ln)
		if strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "from ") ||
			strings.HasPrefix(trimmed, "load(") || strings.HasPrefix(trimmed, "load ") {
			continue
		}
		if strings.Contains(ln, "__") {
			continue
		}
		lines = append(lines, ln)
	}
	return strings.Join(lines, "\n")
}

// Mutate applies token-level edits to a body: insert a token or numeric
// literal, delete a rune, or replace a rune. The edit count scales with
// intensity. The result is never empty.
func Mutate(rng *rand.Rand, body string, intensity float64) string {
	s := []rune(body)
	if len(s) == 0 {
		s = []rune("pass")
	}

	edits := int(float64(len(s)) * intensity * 0.05)
	if edits < 1 {
		edits = 1
	}
	for range edits {
		idx := 0
		if len(s) > 0 {
			idx = rng.Intn(len(s))
		}
		switch rng.Intn(4) {
		case 0: // insert
			s = insertRunes(s, idx, pickToken(rng))
		case 1: // delete
			if len(s) > 1 {
				s = append(s[:idx], s[idx+1:]...)
			}
		case 2: // replace
			if len(s) > 0 {
				tok := pickToken(rng)
				s[idx] = []rune(tok)[0]
			}
		case 3: // sprinkle a small int literal
			tok := constantPool[rng.Intn(len(constantPool))]
			s = insertRunes(s, idx, tok)
		}
	}
	return string(s)
}

func pickToken(rng *rand.Rand) string {
	if rng.Intn(2) == 0 {
		return tokenPool[rng.Intn(len(tokenPool))]
	}
	return constantPool[rng.Intn(len(constantPool))]
}

func insertRunes(s []rune, idx int, tok string) []rune {
	out := make([]rune, 0, len(s)+len(tok))
	out = append(out, s[:idx]...)
	out = append(out, []rune(tok)...)
	out = append(out, s[idx:]...)
	return out
}

// Crossover recombines the head of a with the tail of b at
// independently chosen line offsets. If either parent has no lines the
// first parent is returned unchanged.
func Crossover(rng *rand.Rand, a, b string) string {
	alines := splitLines(a)
	blines := splitLines(b)
	if len(alines) == 0 || len(blines) == 0 {
		return a
	}
	i := rng.Intn(len(alines))
	j := rng.Intn(len(blines))
	child := make([]string, 0, i+len(blines)-j)
	child = append(child, alines[:i]...)
	child = append(child, blines[j:]...)
	return strings.Join(child, "\n")
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// NewSeed builds an initial candidate from one of the task's seed texts
// (or the identity fallback), passed through a light non-semantic
// wrapper and inserted into the fixed template.
func NewSeed(rng *rand.Rand, seeds []string) string {
	seed := fallbackSeed
	if len(seeds) > 0 {
		seed = seeds[rng.Intn(len(seeds))]
	}
	switch rng.Intn(3) {
	case 1:
		seed = strings.ReplaceAll(seed, "  ", " ") + "\n"
	case 2:
		seed = "\n" + seed + "\n"
	}
	return Assemble(seed)
}
