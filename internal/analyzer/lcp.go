package analyzer

// BuildLCPArray derives the LCP array from a suffix array with Kasai's
// algorithm. lcp[0] is 0 and lcp[i] is the longest common prefix length of
// the suffixes at sa[i-1] and sa[i].
//
// The sweep walks text positions in order, reusing the running length h:
// when moving from position i to i+1 the common prefix with the preceding
// suffix in suffix-array order can shrink by at most one, so h never
// restarts from zero and the total work is O(n).
func BuildLCPArray(tokens []int, sa []int) []int {
	n := len(sa)
	lcp := make([]int, n)
	if n == 0 {
		return lcp
	}

	// rank is the inverse permutation of sa.
	rank := make([]int, n)
	for i, pos := range sa {
		rank[pos] = i
	}

	h := 0
	for i := 0; i < n; i++ {
		if rank[i] == 0 {
			h = 0
			continue
		}
		j := sa[rank[i]-1]
		for i+h < n && j+h < n && tokens[i+h] == tokens[j+h] {
			h++
		}
		lcp[rank[i]] = h
		if h > 0 {
			h--
		}
	}
	return lcp
}
