package analyzer

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// DocumentPair is an unordered pair of document ids stored in canonical
// order, so DocumentPair(a,b) == DocumentPair(b,a) and the pair is usable
// directly as a map key.
type DocumentPair struct {
	A int
	B int
}

// NewDocumentPair canonicalizes the pair with the smaller id first.
func NewDocumentPair(a, b int) DocumentPair {
	if a > b {
		a, b = b, a
	}
	return DocumentPair{A: a, B: b}
}

// Key packs the canonical pair into a single uint64, symmetric by
// construction.
func (p DocumentPair) Key() uint64 {
	return uint64(uint32(p.A))<<32 | uint64(uint32(p.B))
}

// String returns string representation of DocumentPair
func (p DocumentPair) String() string {
	return fmt.Sprintf("(%d,%d)", p.A, p.B)
}

// LSHIndex buckets MinHash signatures by band so that similar documents
// collide in at least one band with high probability. The cheap bucketing
// stage plus expensive verification downstream is what keeps near-duplicate
// search sub-quadratic.
type LSHIndex struct {
	bands         int
	rows          int
	signatureSize int
	buckets       []map[uint64][]int
	signatures    map[int]*MinHashSignature
	mutex         sync.RWMutex
}

// NewLSHIndex creates an index partitioning signatures of signatureSize
// values into bands contiguous groups of rows values. bands·rows must not
// exceed signatureSize.
func NewLSHIndex(signatureSize, bands, rows int) (*LSHIndex, error) {
	if signatureSize <= 0 || bands <= 0 || rows <= 0 {
		return nil, fmt.Errorf("signatureSize, bands and rows must be positive (got %d, %d, %d)",
			signatureSize, bands, rows)
	}
	if bands*rows > signatureSize {
		return nil, fmt.Errorf("bands*rows = %d exceeds signature size %d", bands*rows, signatureSize)
	}

	buckets := make([]map[uint64][]int, bands)
	for i := range buckets {
		buckets[i] = make(map[uint64][]int)
	}
	return &LSHIndex{
		bands:         bands,
		rows:          rows,
		signatureSize: signatureSize,
		buckets:       buckets,
		signatures:    make(map[int]*MinHashSignature),
	}, nil
}

// OptimalBandsAndRows derives a band/row split for the given signature size
// whose implied candidate threshold (1/bands)^(1/rows) is closest to the
// target. Higher targets yield fewer, longer bands.
func OptimalBandsAndRows(signatureSize int, threshold float64) (int, int) {
	if signatureSize <= 0 {
		return 1, 1
	}
	if threshold <= 0 || threshold >= 1 {
		threshold = 0.5
	}

	bestBands, bestRows := signatureSize, 1
	bestError := math.Inf(1)
	for rows := 1; rows <= signatureSize; rows++ {
		bands := signatureSize / rows
		if bands < 1 {
			break
		}
		implied := math.Pow(1.0/float64(bands), 1.0/float64(rows))
		diff := math.Abs(implied - threshold)
		if diff < bestError {
			bestError = diff
			bestBands, bestRows = bands, rows
		}
	}
	return bestBands, bestRows
}

// Bands returns the number of bands.
func (idx *LSHIndex) Bands() int { return idx.bands }

// Rows returns the rows per band.
func (idx *LSHIndex) Rows() int { return idx.rows }

// Size returns the number of indexed documents.
func (idx *LSHIndex) Size() int {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()
	return len(idx.signatures)
}

// Insert hashes each band's row-slice of the signature into that band's
// bucket, recording the signature's document id.
func (idx *LSHIndex) Insert(signature *MinHashSignature) error {
	if signature == nil {
		return fmt.Errorf("signature cannot be nil")
	}
	if signature.Size() < idx.signatureSize {
		return fmt.Errorf("signature has %d values, need at least %d", signature.Size(), idx.signatureSize)
	}

	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	idx.signatures[signature.DocID] = signature
	for band := 0; band < idx.bands; band++ {
		key := idx.bandHash(signature.Values, band)
		idx.buckets[band][key] = append(idx.buckets[band][key], signature.DocID)
	}
	return nil
}

// bandHash hashes one band's row-slice with xxhash, mixing in the band index
// so identical slices in different bands land in independent buckets.
func (idx *LSHIndex) bandHash(values []uint64, band int) uint64 {
	var buf [8]byte
	digest := xxhash.New()
	binary.LittleEndian.PutUint64(buf[:], uint64(band))
	_, _ = digest.Write(buf[:])

	start := band * idx.rows
	for _, v := range values[start : start+idx.rows] {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = digest.Write(buf[:])
	}
	return digest.Sum64()
}

// Query returns the ids of documents sharing at least one band bucket with
// the signature, the signature's own id excluded, in ascending order.
func (idx *LSHIndex) Query(signature *MinHashSignature) []int {
	if signature == nil || signature.Size() < idx.signatureSize {
		return nil
	}

	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	seen := make(map[int]struct{})
	for band := 0; band < idx.bands; band++ {
		key := idx.bandHash(signature.Values, band)
		for _, id := range idx.buckets[band][key] {
			if id != signature.DocID {
				seen[id] = struct{}{}
			}
		}
	}

	candidates := make([]int, 0, len(seen))
	for id := range seen {
		candidates = append(candidates, id)
	}
	sort.Ints(candidates)
	return candidates
}

// FindCandidatesWithMinBands returns the ids of documents sharing at least
// minBands band buckets with the signature, ascending. A higher minBands
// demands stronger band agreement and so a higher effective similarity bar
// than the single-collision Query.
func (idx *LSHIndex) FindCandidatesWithMinBands(signature *MinHashSignature, minBands int) []int {
	if signature == nil || signature.Size() < idx.signatureSize || minBands <= 0 {
		return nil
	}

	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	counts := make(map[int]int)
	for band := 0; band < idx.bands; band++ {
		key := idx.bandHash(signature.Values, band)
		for _, id := range idx.buckets[band][key] {
			if id != signature.DocID {
				counts[id]++
			}
		}
	}

	candidates := make([]int, 0, len(counts))
	for id, count := range counts {
		if count >= minBands {
			candidates = append(candidates, id)
		}
	}
	sort.Ints(candidates)
	return candidates
}

// ScoredCandidate is a candidate id with its estimated similarity.
type ScoredCandidate struct {
	DocID      int
	Similarity float64
}

// QueryWithSimilarity follows the LSH lookup with a real similarity
// computation against each candidate's stored signature and filters by the
// threshold. Results are ordered by similarity descending, id ascending on
// ties.
func (idx *LSHIndex) QueryWithSimilarity(signature *MinHashSignature, generator *MinHashGenerator, threshold float64) []ScoredCandidate {
	candidates := idx.Query(signature)
	if len(candidates) == 0 {
		return nil
	}

	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	var scored []ScoredCandidate
	for _, id := range candidates {
		stored := idx.signatures[id]
		if stored == nil {
			continue
		}
		similarity := generator.EstimateSimilarity(signature, stored)
		if similarity >= threshold {
			scored = append(scored, ScoredCandidate{DocID: id, Similarity: similarity})
		}
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].DocID < scored[j].DocID
	})
	return scored
}

// FindCandidatePairs returns the deduplicated candidate-pair set across all
// bands: two documents pair up when any one band's row-slice matches, and
// each pair is reported once regardless of how many bands agree. Pairs come
// back in canonical ascending order.
func (idx *LSHIndex) FindCandidatePairs() []DocumentPair {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	pairSet := make(map[DocumentPair]struct{})
	idx.collectPairs(func(pair DocumentPair) {
		pairSet[pair] = struct{}{}
	})

	pairs := make([]DocumentPair, 0, len(pairSet))
	for pair := range pairSet {
		pairs = append(pairs, pair)
	}
	sortPairs(pairs)
	return pairs
}

// FindCandidatePairsStreaming delivers the same pair set as
// FindCandidatePairs over a channel, each pair exactly once. The channel is
// closed when every pair has been sent or the context is cancelled.
func (idx *LSHIndex) FindCandidatePairsStreaming(ctx context.Context) <-chan DocumentPair {
	out := make(chan DocumentPair)
	go func() {
		defer close(out)
		// Collect under the read lock, deliver outside it.
		pairs := idx.FindCandidatePairs()
		for _, pair := range pairs {
			select {
			case out <- pair:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (idx *LSHIndex) collectPairs(emit func(DocumentPair)) {
	for band := range idx.buckets {
		for _, bucket := range idx.buckets[band] {
			if len(bucket) < 2 {
				continue
			}
			for i := 0; i < len(bucket); i++ {
				for j := i + 1; j < len(bucket); j++ {
					emit(NewDocumentPair(bucket[i], bucket[j]))
				}
			}
		}
	}
}

// EstimateFalsePositiveRate returns the probability that two documents of
// the given true similarity collide in at least one band:
// 1 - (1 - s^rows)^bands.
func (idx *LSHIndex) EstimateFalsePositiveRate(trueSimilarity float64) float64 {
	if trueSimilarity <= 0 || trueSimilarity >= 1 {
		return 0.0
	}
	bandMatch := math.Pow(trueSimilarity, float64(idx.rows))
	return 1.0 - math.Pow(1.0-bandMatch, float64(idx.bands))
}

// EstimateFalseNegativeRate returns the probability that two documents of
// the given true similarity collide in no band: (1 - s^rows)^bands.
func (idx *LSHIndex) EstimateFalseNegativeRate(trueSimilarity float64) float64 {
	if trueSimilarity <= 0 || trueSimilarity >= 1 {
		return 1.0
	}
	bandMatch := math.Pow(trueSimilarity, float64(idx.rows))
	return math.Pow(1.0-bandMatch, float64(idx.bands))
}

// IndexStats summarizes the bucket shape of the index.
type IndexStats struct {
	NumDocuments  int
	NumBuckets    int
	Bands         int
	Rows          int
	MaxBucketSize int
	AvgBucketSize float64
}

// Stats returns statistics about the index.
func (idx *LSHIndex) Stats() IndexStats {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	stats := IndexStats{
		NumDocuments: len(idx.signatures),
		Bands:        idx.bands,
		Rows:         idx.rows,
	}
	total := 0
	for band := range idx.buckets {
		for _, bucket := range idx.buckets[band] {
			stats.NumBuckets++
			total += len(bucket)
			if len(bucket) > stats.MaxBucketSize {
				stats.MaxBucketSize = len(bucket)
			}
		}
	}
	if stats.NumBuckets > 0 {
		stats.AvgBucketSize = float64(total) / float64(stats.NumBuckets)
	}
	return stats
}

func sortPairs(pairs []DocumentPair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
}
