package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cloneseek/cloneseek/domain"
	"github.com/cloneseek/cloneseek/internal/constants"
)

// CloneAssembler maps repeat positions back to file/line spans and emits
// clone groups. It owns all the span filtering: file-boundary validation,
// same-file overlap suppression, and group-level deduplication.
type CloneAssembler struct {
	stream *TokenStream
}

// NewCloneAssembler creates an assembler over the stream the repeats were
// extracted from.
func NewCloneAssembler(stream *TokenStream) *CloneAssembler {
	return &CloneAssembler{stream: stream}
}

// Assemble converts repeat groups into clone groups of the given type.
// Coded-token occurrences inside one repeat group are identical by
// construction, so similarity is always 1.0.
func (a *CloneAssembler) Assemble(repeats []RepeatGroup, cloneType domain.CloneType) []*domain.CloneGroup {
	var groups []*domain.CloneGroup
	for _, repeat := range repeats {
		if group := a.assembleGroup(repeat, cloneType); group != nil {
			groups = append(groups, group)
		}
	}
	return dedupeGroups(groups)
}

func (a *CloneAssembler) assembleGroup(repeat RepeatGroup, cloneType domain.CloneType) *domain.CloneGroup {
	clones := make([]domain.Clone, 0, len(repeat.Positions))
	for _, pos := range repeat.Positions {
		if clone, ok := a.resolveSpan(pos, repeat.Length); ok {
			clones = append(clones, clone)
		}
	}

	clones = filterSameFileOverlaps(clones)
	if len(clones) < 2 {
		return nil
	}

	return &domain.CloneGroup{
		Type:        cloneType,
		Clones:      clones,
		Similarity:  1.0,
		Fingerprint: a.fingerprint(repeat),
	}
}

// resolveSpan validates that a repeat occurrence stays inside one file and
// touches no separator, then converts it to a line-range location.
func (a *CloneAssembler) resolveSpan(start, length int) (domain.Clone, bool) {
	end := start + length - 1
	if start < 0 || end >= a.stream.Len() {
		return domain.Clone{}, false
	}
	if a.stream.IsSeparator(start) || a.stream.IsSeparator(end) {
		return domain.Clone{}, false
	}
	fileIndex := a.stream.FileIndexAt(start)
	if fileIndex < 0 || fileIndex != a.stream.FileIndexAt(end) {
		return domain.Clone{}, false
	}

	return domain.Clone{
		FilePath:   a.stream.Files[fileIndex],
		StartLine:  a.stream.PositionAt(start).Line,
		EndLine:    a.stream.PositionAt(end).Line,
		TokenCount: length,
	}, true
}

// filterSameFileOverlaps drops an occurrence when it overlaps a previously
// kept occurrence in the same file by more than 50% of its own length.
// Occurrences are considered in (file, start line) order so the earliest
// span in a run of overlaps wins.
func filterSameFileOverlaps(clones []domain.Clone) []domain.Clone {
	sort.Slice(clones, func(i, j int) bool {
		if clones[i].FilePath != clones[j].FilePath {
			return clones[i].FilePath < clones[j].FilePath
		}
		return clones[i].StartLine < clones[j].StartLine
	})

	kept := clones[:0]
	for _, c := range clones {
		overlapped := false
		for _, prev := range kept {
			if prev.FilePath != c.FilePath {
				continue
			}
			overlap := lineOverlap(prev, c)
			if float64(overlap) > constants.OverlapRatioLimit*float64(c.LineCount()) {
				overlapped = true
				break
			}
		}
		if !overlapped {
			kept = append(kept, c)
		}
	}
	return kept
}

func lineOverlap(a, b domain.Clone) int {
	lo := a.StartLine
	if b.StartLine > lo {
		lo = b.StartLine
	}
	hi := a.EndLine
	if b.EndLine < hi {
		hi = b.EndLine
	}
	if hi < lo {
		return 0
	}
	return hi - lo + 1
}

// fingerprint builds the dedup key from the literal text of the first
// occurrence's leading tokens.
func (a *CloneAssembler) fingerprint(repeat RepeatGroup) string {
	if len(repeat.Positions) == 0 {
		return ""
	}
	start := repeat.Positions[0]
	limit := repeat.Length
	if limit > constants.FingerprintTokenLimit {
		limit = constants.FingerprintTokenLimit
	}

	texts := make([]string, 0, limit)
	for i := 0; i < limit && start+i < a.stream.Len(); i++ {
		texts = append(texts, a.stream.PositionAt(start+i).Text)
	}
	return strings.Join(texts, " ")
}

// dedupeGroups removes groups whose clone location sets are identical,
// keeping the first.
func dedupeGroups(groups []*domain.CloneGroup) []*domain.CloneGroup {
	seen := make(map[string]struct{}, len(groups))
	result := groups[:0]
	for _, g := range groups {
		key := locationSetKey(g.Clones)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, g)
	}
	return result
}

func locationSetKey(clones []domain.Clone) string {
	locs := make([]string, len(clones))
	for i, c := range clones {
		locs[i] = fmt.Sprintf("%s:%d-%d", c.FilePath, c.StartLine, c.EndLine)
	}
	sort.Strings(locs)
	return strings.Join(locs, "|")
}
