package task

// Builtin returns the fixed default catalog. Tests are hand-authored
// ground truth; seeds are known-working (or deliberately partial)
// programs in the sandbox dialect.
func Builtin() []*Task {
	return []*Task{
		{
			Name: "sum_digits",
			Tests: []Case{
				{Args: []string{"0"}, Want: "0"},
				{Args: []string{"7"}, Want: "7"},
				{Args: []string{"42"}, Want: "6"},
				{Args: []string{"999"}, Want: "27"},
				{Args: []string{"123456"}, Want: "21"},
			},
			Seeds: []string{
				"def solve(n):\n    s = 0\n    n = abs(n)\n    while n:\n        s += n % 10\n        n //= 10\n    return s",
				"def solve(n):\n    return sum([int(ch) for ch in str(abs(n)).elems()])",
			},
		},
		{
			Name: "is_prime",
			Tests: []Case{
				{Args: []string{"2"}, Want: "True"},
				{Args: []string{"3"}, Want: "True"},
				{Args: []string{"4"}, Want: "False"},
				{Args: []string{"17"}, Want: "True"},
				{Args: []string{"21"}, Want: "False"},
				{Args: []string{"1"}, Want: "False"},
				{Args: []string{"97"}, Want: "True"},
			},
			Seeds: []string{
				"def solve(n):\n    if n < 2:\n        return False\n    if n % 2 == 0:\n        return n == 2\n    i = 3\n    while i * i <= n:\n        if n % i == 0:\n            return False\n        i += 2\n    return True",
			},
		},
		{
			Name: "reverse_words",
			Tests: []Case{
				{Args: []string{`"hello world"`}, Want: `"world hello"`},
				{Args: []string{`"a b  c"`}, Want: `"c b a"`},
				{Args: []string{`"Python"`}, Want: `"Python"`},
			},
			Seeds: []string{
				"def solve(s):\n    return \" \".join(reversed([w for w in s.split() if w]))",
			},
		},
		{
			Name: "two_sum",
			Tests: []Case{
				{Args: []string{"(2, 7, 11, 15)", "9"}, Want: "(0, 1)"},
				{Args: []string{"(3, 2, 4)", "6"}, Want: "(1, 2)"},
				{Args: []string{"(3, 3)", "6"}, Want: "(0, 1)"},
			},
			Seeds: []string{
				"def solve(nums, target):\n    d = {}\n    for i, x in enumerate(nums):\n        y = target - x\n        if y in d:\n            return (d[y], i)\n        d[x] = i",
			},
		},
		{
			Name: "levenshtein",
			Tests: []Case{
				{Args: []string{`"kitten"`, `"sitting"`}, Want: "3"},
				{Args: []string{`"flaw"`, `"lawn"`}, Want: "2"},
				{Args: []string{`"a"`, `""`}, Want: "1"},
				{Args: []string{`""`, `""`}, Want: "0"},
			},
			Seeds: []string{
				`def solve(a, b):
    la, lb = len(a), len(b)
    dp = [[0] * (lb + 1) for _ in range(la + 1)]
    for i in range(la + 1):
        dp[i][0] = i
    for j in range(lb + 1):
        dp[0][j] = j
    for i in range(1, la + 1):
        for j in range(1, lb + 1):
            cost = 0 if a[i - 1] == b[j - 1] else 1
            dp[i][j] = min(dp[i - 1][j] + 1, dp[i][j - 1] + 1, dp[i - 1][j - 1] + cost)
    return dp[la][lb]`,
			},
		},
		{
			Name: "hypot",
			Tests: []Case{
				{Args: []string{"3", "4"}, Want: "5.0"},
				{Args: []string{"6", "8"}, Want: "10.0"},
				{Args: []string{"1", "1"}, Want: "1.4142135623730951"},
			},
			Seeds: []string{
				"def solve(a, b):\n    return math.sqrt(a * a + b * b)",
			},
		},
	}
}
