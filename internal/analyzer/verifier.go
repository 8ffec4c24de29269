package analyzer

import (
	"context"
	"runtime"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"github.com/cloneseek/cloneseek/internal/constants"
)

// VerifiedPair is a candidate pair that survived re-scoring.
type VerifiedPair struct {
	Pair       DocumentPair
	Similarity float64
}

// Verifier re-scores LSH candidate pairs and filters them by threshold and
// same-file overlap. The parallel and streaming variants always produce the
// same result set as the sequential one; parallelism only changes
// throughput, never output.
type Verifier struct {
	threshold        float64
	minParallelPairs int
	maxWorkers       int
}

// NewVerifier creates a verifier with the given similarity threshold.
func NewVerifier(threshold float64) *Verifier {
	return &Verifier{
		threshold:        threshold,
		minParallelPairs: constants.MinPairsForParallel,
		maxWorkers:       runtime.NumCPU(),
	}
}

// WithParallelism overrides the parallel activation gate and worker cap,
// mainly for tests.
func (v *Verifier) WithParallelism(minPairs, maxWorkers int) *Verifier {
	v.minParallelPairs = minPairs
	if maxWorkers > 0 {
		v.maxWorkers = maxWorkers
	}
	return v
}

// VerifyPairs re-scores candidates with exact Jaccard similarity over the
// documents' shingle sets. Small inputs run sequentially; above the
// activation gate the pairs are verified in parallel.
func (v *Verifier) VerifyPairs(ctx context.Context, pairs []DocumentPair, docs map[int]*ShingledDocument) []VerifiedPair {
	score := func(pair DocumentPair) (float64, bool) {
		a, b := docs[pair.A], docs[pair.B]
		if a == nil || b == nil {
			return 0, false
		}
		if sameFileOverlap(a, b) {
			return 0, false
		}
		return ExactJaccardSimilarity(a.Shingles, b.Shingles), true
	}
	if len(pairs) < v.minParallelPairs || v.maxWorkers < 2 {
		return v.verifySequential(ctx, pairs, score)
	}
	return v.verifyParallel(ctx, pairs, score)
}

// VerifyPairsEstimated re-scores candidates with the MinHash estimator
// instead of exact Jaccard, trading accuracy for speed on large documents.
func (v *Verifier) VerifyPairsEstimated(ctx context.Context, pairs []DocumentPair, signatures map[int]*MinHashSignature, generator *MinHashGenerator, docs map[int]*ShingledDocument) []VerifiedPair {
	score := func(pair DocumentPair) (float64, bool) {
		a, b := signatures[pair.A], signatures[pair.B]
		if a == nil || b == nil {
			return 0, false
		}
		if docs != nil && sameFileOverlap(docs[pair.A], docs[pair.B]) {
			return 0, false
		}
		return generator.EstimateSimilarity(a, b), true
	}
	if len(pairs) < v.minParallelPairs || v.maxWorkers < 2 {
		return v.verifySequential(ctx, pairs, score)
	}
	return v.verifyParallel(ctx, pairs, score)
}

// VerifyPairsStreaming delivers verified pairs over a channel. Fully
// collected, the stream equals the batch result.
func (v *Verifier) VerifyPairsStreaming(ctx context.Context, pairs []DocumentPair, docs map[int]*ShingledDocument) <-chan VerifiedPair {
	out := make(chan VerifiedPair)
	go func() {
		defer close(out)
		for _, verified := range v.VerifyPairs(ctx, pairs, docs) {
			select {
			case out <- verified:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (v *Verifier) verifySequential(ctx context.Context, pairs []DocumentPair, score func(DocumentPair) (float64, bool)) []VerifiedPair {
	var verified []VerifiedPair
	for _, pair := range pairs {
		if ctx.Err() != nil {
			break
		}
		if similarity, ok := score(pair); ok && similarity >= v.threshold {
			verified = append(verified, VerifiedPair{Pair: pair, Similarity: similarity})
		}
	}
	sortVerified(verified)
	return verified
}

func (v *Verifier) verifyParallel(ctx context.Context, pairs []DocumentPair, score func(DocumentPair) (float64, bool)) []VerifiedPair {
	workers := v.maxWorkers
	if workers > len(pairs) {
		workers = len(pairs)
	}
	chunkSize := (len(pairs) + workers - 1) / workers

	p := pool.NewWithResults[[]VerifiedPair]().WithMaxGoroutines(workers)
	for start := 0; start < len(pairs); start += chunkSize {
		end := start + chunkSize
		if end > len(pairs) {
			end = len(pairs)
		}
		chunk := pairs[start:end]
		p.Go(func() []VerifiedPair {
			var local []VerifiedPair
			for _, pair := range chunk {
				if ctx.Err() != nil {
					return local
				}
				if similarity, ok := score(pair); ok && similarity >= v.threshold {
					local = append(local, VerifiedPair{Pair: pair, Similarity: similarity})
				}
			}
			return local
		})
	}

	var verified []VerifiedPair
	for _, local := range p.Wait() {
		verified = append(verified, local...)
	}
	sortVerified(verified)
	return verified
}

// sameFileOverlap reports whether two documents are self-matches: same file
// with overlapping line spans.
func sameFileOverlap(a, b *ShingledDocument) bool {
	if a == nil || b == nil || a.FilePath != b.FilePath {
		return false
	}
	return a.StartLine <= b.EndLine && b.StartLine <= a.EndLine
}

func sortVerified(verified []VerifiedPair) {
	sort.Slice(verified, func(i, j int) bool {
		if verified[i].Pair.A != verified[j].Pair.A {
			return verified[i].Pair.A < verified[j].Pair.A
		}
		return verified[i].Pair.B < verified[j].Pair.B
	})
}
