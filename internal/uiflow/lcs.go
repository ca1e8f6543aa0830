package uiflow

// LCSMasks marks, per sequence, the positions participating in the
// longest common subsequence of two screen paths. On a backtrack tie
// the walk prefers moving up (consuming the first sequence) so that
// output is reproducible.
func LCSMasks(a, b []string) (maskA, maskB []bool) {
	m, n := len(a), len(b)
	table := make([][]int, m+1)
	for i := range table {
		table[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				table[i][j] = table[i-1][j-1] + 1
			} else if table[i-1][j] >= table[i][j-1] {
				table[i][j] = table[i-1][j]
			} else {
				table[i][j] = table[i][j-1]
			}
		}
	}

	maskA = make([]bool, m)
	maskB = make([]bool, n)
	i, j := m, n
	for i > 0 && j > 0 {
		switch {
		case a[i-1] == b[j-1]:
			maskA[i-1] = true
			maskB[j-1] = true
			i--
			j--
		case table[i-1][j] >= table[i][j-1]:
			i--
		default:
			j--
		}
	}
	return maskA, maskB
}
