package analyzer

import (
	"sort"
)

// SuffixArray holds a token stream and the permutation of its positions
// sorted by the lexicographic order of the suffix starting at each position.
// A shorter suffix that prefixes a longer one sorts first.
type SuffixArray struct {
	tokens []int
	sa     []int
}

// BuildSuffixArray constructs the suffix array by prefix doubling with a
// counting sort per round: O(n log n) total, which keeps multi-hundred-
// thousand-token streams tractable. The input is treated as opaque integer
// codes; no alphabet bound is assumed.
func BuildSuffixArray(tokens []int) *SuffixArray {
	return &SuffixArray{
		tokens: tokens,
		sa:     buildSuffixPermutation(tokens),
	}
}

// Array returns the underlying permutation of [0, n).
func (s *SuffixArray) Array() []int {
	return s.sa
}

// Len returns the number of suffixes.
func (s *SuffixArray) Len() int {
	return len(s.sa)
}

// Tokens returns the indexed token stream.
func (s *SuffixArray) Tokens() []int {
	return s.tokens
}

// buildSuffixPermutation sorts the cyclic shifts of the input extended with
// a terminal sentinel strictly smaller than every code. With the sentinel,
// cyclic-shift order coincides with suffix order, and the sentinel's own
// shift (which sorts first) is dropped from the result.
func buildSuffixPermutation(tokens []int) []int {
	n := len(tokens)
	if n == 0 {
		return []int{}
	}
	if n == 1 {
		return []int{0}
	}

	// Compress codes to 1..m and append sentinel 0.
	s := make([]int, n+1)
	m := compressCodes(tokens, s)
	total := n + 1

	p := make([]int, total)  // positions sorted by current prefix
	c := make([]int, total)  // equivalence class of each position
	cnt := make([]int, m+1)

	// Round 0: counting sort by single code.
	for _, v := range s {
		cnt[v]++
	}
	for i := 1; i <= m; i++ {
		cnt[i] += cnt[i-1]
	}
	for i := total - 1; i >= 0; i-- {
		cnt[s[i]]--
		p[cnt[s[i]]] = i
	}
	c[p[0]] = 0
	classes := 1
	for i := 1; i < total; i++ {
		if s[p[i]] != s[p[i-1]] {
			classes++
		}
		c[p[i]] = classes - 1
	}

	pn := make([]int, total)
	cn := make([]int, total)
	for h := 1; h < total && classes < total; h <<= 1 {
		// Sort by second half: shifting each position left by h yields an
		// order already sorted on the (i+h) key.
		for i := 0; i < total; i++ {
			pn[i] = p[i] - h
			if pn[i] < 0 {
				pn[i] += total
			}
		}
		// Stable counting sort by first-half class.
		cnt = make([]int, classes)
		for i := 0; i < total; i++ {
			cnt[c[pn[i]]]++
		}
		for i := 1; i < classes; i++ {
			cnt[i] += cnt[i-1]
		}
		for i := total - 1; i >= 0; i-- {
			cls := c[pn[i]]
			cnt[cls]--
			p[cnt[cls]] = pn[i]
		}
		// Recompute classes from (first, second) rank pairs.
		cn[p[0]] = 0
		classes = 1
		for i := 1; i < total; i++ {
			currFirst, currSecond := c[p[i]], c[(p[i]+h)%total]
			prevFirst, prevSecond := c[p[i-1]], c[(p[i-1]+h)%total]
			if currFirst != prevFirst || currSecond != prevSecond {
				classes++
			}
			cn[p[i]] = classes - 1
		}
		copy(c, cn)
	}

	// p[0] is the sentinel position n.
	return p[1:]
}

// compressCodes writes the rank-compressed input into dst[:len(tokens)]
// (ranks start at 1, leaving 0 for the sentinel at dst[len(tokens)]) and
// returns the number of distinct codes.
func compressCodes(tokens []int, dst []int) int {
	sorted := make([]int, len(tokens))
	copy(sorted, tokens)
	sort.Ints(sorted)
	unique := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v != unique[len(unique)-1] {
			unique = append(unique, v)
		}
	}
	for i, v := range tokens {
		dst[i] = sort.SearchInts(unique, v) + 1
	}
	dst[len(tokens)] = 0
	return len(unique)
}

// FindOccurrences binary-searches the suffix array for the contiguous range
// of suffixes sharing pattern as a prefix and returns every matching start
// offset in ascending order. Cost is O(m log n) for a pattern of length m.
func (s *SuffixArray) FindOccurrences(pattern []int) []int {
	if len(pattern) == 0 || len(pattern) > len(s.tokens) {
		return nil
	}

	lo := sort.Search(len(s.sa), func(i int) bool {
		return s.compareSuffixToPattern(s.sa[i], pattern) >= 0
	})
	hi := sort.Search(len(s.sa), func(i int) bool {
		return s.compareSuffixToPattern(s.sa[i], pattern) > 0
	})
	if lo >= hi {
		return nil
	}

	occurrences := make([]int, hi-lo)
	copy(occurrences, s.sa[lo:hi])
	sort.Ints(occurrences)
	return occurrences
}

// compareSuffixToPattern compares the suffix at start against the pattern
// over the pattern's length only: 0 means the pattern prefixes the suffix.
func (s *SuffixArray) compareSuffixToPattern(start int, pattern []int) int {
	for i, want := range pattern {
		pos := start + i
		if pos >= len(s.tokens) {
			// Suffix exhausted: it is a proper prefix of the pattern.
			return -1
		}
		if s.tokens[pos] != want {
			if s.tokens[pos] < want {
				return -1
			}
			return 1
		}
	}
	return 0
}
