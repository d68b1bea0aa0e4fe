package textdiff

// Op is the operation of an edit-script run.
type Op string

// Edit-script operations.
const (
	OpEqual  Op = "equal"
	OpDelete Op = "delete"
	OpInsert Op = "insert"
)

// Run is a maximal sequence of tokens sharing one operation. Original
// (non-normalized) token text is preserved for display: equal runs carry
// both sides, delete runs only the before side, insert runs only the after
// side. Concatenating Before across equal+delete runs reconstructs the
// before sequence; After across equal+insert runs reconstructs the after
// sequence.
type Run struct {
	Op     Op
	Before []string
	After  []string
}

// DiffLine tokenizes two raw lines and diffs them.
func DiffLine(before, after string) []Run {
	return DiffTokens(Tokenize(before), Tokenize(after))
}

// DiffTokens aligns two token sequences with a longest-common-subsequence
// table over their normalized forms, then reconstructs a minimal edit script
// by walking the table backward. Ties break so that in the final script a
// delete run always precedes its adjacent insert run; substitutions read as
// (delete, insert) and the walk-back is deterministic.
func DiffTokens(before, after []string) []Run {
	normBefore := NormalizeTokens(before)
	normAfter := NormalizeTokens(after)

	m, n := len(before), len(after)
	// dp[i][j] = LCS length of normBefore[:i] and normAfter[:j]
	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if normBefore[i-1] == normAfter[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else if dp[i-1][j] >= dp[i][j-1] {
				dp[i][j] = dp[i-1][j]
			} else {
				dp[i][j] = dp[i][j-1]
			}
		}
	}

	type step struct {
		op            Op
		before, after string
	}
	var steps []step
	i, j := m, n
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && normBefore[i-1] == normAfter[j-1]:
			steps = append(steps, step{OpEqual, before[i-1], after[j-1]})
			i--
			j--
		case j > 0 && (i == 0 || dp[i][j-1] >= dp[i-1][j]):
			steps = append(steps, step{op: OpInsert, after: after[j-1]})
			j--
		default:
			steps = append(steps, step{op: OpDelete, before: before[i-1]})
			i--
		}
	}

	// Steps are in reverse order; fold them into maximal same-op runs.
	var runs []Run
	for k := len(steps) - 1; k >= 0; k-- {
		s := steps[k]
		if len(runs) == 0 || runs[len(runs)-1].Op != s.op {
			runs = append(runs, Run{Op: s.op})
		}
		r := &runs[len(runs)-1]
		switch s.op {
		case OpEqual:
			r.Before = append(r.Before, s.before)
			r.After = append(r.After, s.after)
		case OpDelete:
			r.Before = append(r.Before, s.before)
		case OpInsert:
			r.After = append(r.After, s.after)
		}
	}
	return runs
}
