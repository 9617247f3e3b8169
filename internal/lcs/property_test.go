package lcs

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func dnaGen() gopter.Gen { return gen.RegexMatch("[ACGT]{0,60}") }

// TestStrategiesAgree_PropertyBased checks that every strategy and worker
// count yields the sequential table, length and string.
func TestStrategiesAgree_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	baseline := NewSequential()
	cases := allStrategies(Options{KeepTable: true})[1:]

	properties.Property("all strategies match the sequential fill", prop.ForAll(
		func(a, b string) bool {
			pair := Pair{A: Sequence(a), B: Sequence(b)}
			want, err := baseline.Solve(context.Background(), nil, 0, pair, Options{KeepTable: true})
			if err != nil {
				t.Logf("sequential failed: %v", err)
				return false
			}
			for _, sc := range cases {
				got, err := sc.solver.Solve(context.Background(), nil, 0, pair, sc.opts)
				if err != nil {
					t.Logf("%s failed: %v", sc.name, err)
					return false
				}
				if got.Length != want.Length || got.LCS != want.LCS || !got.Table.Equal(want.Table) {
					t.Logf("%s disagrees on %q/%q: (%d, %q) vs (%d, %q)", sc.name, a, b, got.Length, got.LCS, want.Length, want.LCS)
					return false
				}
			}
			return true
		},
		dnaGen(), dnaGen(),
	))

	properties.TestingRun(t)
}

// TestTableInvariants_PropertyBased checks the border, monotonicity and
// bound invariants of filled tables.
func TestTableInvariants_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("border is zero, cells are monotone and bounded", prop.ForAll(
		func(a, b string) bool {
			pair := Pair{A: Sequence(a), B: Sequence(b)}
			res, err := NewWavefront().Solve(context.Background(), nil, 0, pair, Options{Workers: 3, KeepTable: true})
			if err != nil {
				return false
			}
			tb := res.Table
			m, n := pair.Dims()
			for j := 0; j <= n; j++ {
				if tb.Length(0, j) != 0 {
					return false
				}
			}
			for i := 0; i <= m; i++ {
				if tb.Length(i, 0) != 0 {
					return false
				}
			}
			for i := 1; i <= m; i++ {
				for j := 1; j <= n; j++ {
					if tb.Length(i, j) < tb.Length(i-1, j) || tb.Length(i, j) < tb.Length(i, j-1) {
						return false
					}
				}
			}
			return tb.Final() >= 0 && tb.Final() <= min(m, n) && isSubsequence(res.LCS, a) && isSubsequence(res.LCS, b)
		},
		dnaGen(), dnaGen(),
	))

	properties.TestingRun(t)
}

// TestIdempotence_PropertyBased runs each strategy twice on the same input.
func TestIdempotence_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	cases := allStrategies(Options{})
	properties.Property("repeated runs give the same answer", prop.ForAll(
		func(a, b string) bool {
			pair := Pair{A: Sequence(a), B: Sequence(b)}
			for _, sc := range cases {
				first, err1 := sc.solver.Solve(context.Background(), nil, 0, pair, sc.opts)
				second, err2 := sc.solver.Solve(context.Background(), nil, 0, pair, sc.opts)
				if err1 != nil || err2 != nil || first.Length != second.Length || first.LCS != second.LCS {
					return false
				}
			}
			return true
		},
		dnaGen(), dnaGen(),
	))

	properties.TestingRun(t)
}
