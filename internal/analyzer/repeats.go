package analyzer

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cloneseek/cloneseek/internal/constants"
)

// RepeatGroup is a set of stream positions sharing a common token prefix of
// at least the group's length. The length is the minimum LCP across the
// originating suffix-array region, which is the guaranteed shared length of
// every pair in the group.
type RepeatGroup struct {
	Positions []int // occurrence start positions, ascending
	Length    int   // shared token length
	SAStart   int   // first suffix-array index of the region
	SAEnd     int   // last suffix-array index of the region (inclusive)
}

// FindRepeatRegions scans the LCP array left to right and collects every
// maximal run of consecutive entries ≥ minLength. Each run yields one group
// whose occurrences are the region's suffix-array positions and whose length
// is the region's minimum LCP. minLength ≤ 0 yields nothing.
func FindRepeatRegions(sa *SuffixArray, lcp []int, minLength int) []RepeatGroup {
	if minLength <= 0 {
		return nil
	}

	var groups []RepeatGroup
	arr := sa.Array()
	i := 1
	for i < len(lcp) {
		if lcp[i] < minLength {
			i++
			continue
		}
		// Region opens at suffix-array index i-1.
		start := i - 1
		shared := lcp[i]
		for i < len(lcp) && lcp[i] >= minLength {
			if lcp[i] < shared {
				shared = lcp[i]
			}
			i++
		}
		end := i - 1

		positions := make([]int, 0, end-start+1)
		positions = append(positions, arr[start:end+1]...)
		sort.Ints(positions)

		if len(positions) >= 2 {
			groups = append(groups, RepeatGroup{
				Positions: positions,
				Length:    shared,
				SAStart:   start,
				SAEnd:     end,
			})
		}
	}
	return groups
}

// FindMaximalRepeats returns repeat regions deduplicated by occurrence
// position set, keeping the longest group for each set.
func FindMaximalRepeats(sa *SuffixArray, lcp []int, minLength int) []RepeatGroup {
	groups := FindRepeatRegions(sa, lcp, minLength)
	if len(groups) == 0 {
		return nil
	}

	byPositions := make(map[string]RepeatGroup, len(groups))
	for _, g := range groups {
		key := positionSetKey(g.Positions)
		if best, ok := byPositions[key]; !ok || g.Length > best.Length {
			byPositions[key] = g
		}
	}

	deduped := make([]RepeatGroup, 0, len(byPositions))
	for _, g := range byPositions {
		deduped = append(deduped, g)
	}
	sortRepeatGroups(deduped)
	return deduped
}

// FindRepeatGroups collapses nested and redundant repeats into maximal
// representatives: candidates are taken longest first, and a candidate is
// dropped when more than half of the stream positions its occurrences cover
// already belong to an accepted group. The length-descending order and the
// exact 50% cutoff are load-bearing; changing either changes which
// representative survives.
func FindRepeatGroups(sa *SuffixArray, lcp []int, minLength int) []RepeatGroup {
	candidates := FindMaximalRepeats(sa, lcp, minLength)
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Length > candidates[j].Length
	})

	accepted := make([]RepeatGroup, 0, len(candidates))
	covered := make(map[int]struct{})
	for _, g := range candidates {
		overlap := 0
		total := g.Length * len(g.Positions)
		for _, start := range g.Positions {
			for pos := start; pos < start+g.Length; pos++ {
				if _, ok := covered[pos]; ok {
					overlap++
				}
			}
		}
		if float64(overlap) > constants.OverlapRatioLimit*float64(total) {
			continue
		}
		accepted = append(accepted, g)
		for _, start := range g.Positions {
			for pos := start; pos < start+g.Length; pos++ {
				covered[pos] = struct{}{}
			}
		}
	}
	sortRepeatGroups(accepted)
	return accepted
}

// sortRepeatGroups orders groups by first occurrence then length descending,
// giving map-derived slices a stable order.
func sortRepeatGroups(groups []RepeatGroup) {
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Positions[0] != groups[j].Positions[0] {
			return groups[i].Positions[0] < groups[j].Positions[0]
		}
		return groups[i].Length > groups[j].Length
	})
}

func positionSetKey(positions []int) string {
	var sb strings.Builder
	for i, p := range positions {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(p))
	}
	return sb.String()
}
