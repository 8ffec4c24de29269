package analyzer

import (
	"math"
)

// emptySetSentinel marks a signature slot that never saw an element.
const emptySetSentinel = math.MaxUint64

// MinHashSignature holds the per-hash-function minima for one document.
type MinHashSignature struct {
	DocID  int
	Values []uint64
}

// Size returns the signature length.
func (s *MinHashSignature) Size() int {
	return len(s.Values)
}

// IsEmpty reports whether the signature came from an empty shingle set.
func (s *MinHashSignature) IsEmpty() bool {
	for _, v := range s.Values {
		if v != emptySetSentinel {
			return false
		}
	}
	return true
}

// MinHashGenerator computes deterministic bottom-1 MinHash signatures.
// Identical seed and identical input set always produce a byte-identical
// signature; different seeds give uncorrelated hash families.
type MinHashGenerator struct {
	numHashes int
	seeds     []uint64
}

// NewMinHashGenerator creates a generator with numHashes hash functions
// derived from seed via the splitmix64 sequence.
func NewMinHashGenerator(numHashes int, seed uint64) *MinHashGenerator {
	if numHashes <= 0 {
		numHashes = 128
	}
	seeds := make([]uint64, numHashes)
	state := seed
	for i := range seeds {
		state = splitmix64(state)
		seeds[i] = state
	}
	return &MinHashGenerator{numHashes: numHashes, seeds: seeds}
}

// NumHashes returns the signature size.
func (g *MinHashGenerator) NumHashes() int {
	return g.numHashes
}

// ComputeSignature builds the signature of a shingle-hash set: slot i is the
// minimum of hash function i over every element. An empty set yields the
// all-sentinel signature.
func (g *MinHashGenerator) ComputeSignature(docID int, shingles map[uint64]struct{}) *MinHashSignature {
	sig := &MinHashSignature{DocID: docID, Values: make([]uint64, g.numHashes)}
	for i := range sig.Values {
		sig.Values[i] = emptySetSentinel
	}
	for element := range shingles {
		for i, seed := range g.seeds {
			if h := mixHash(element, seed); h < sig.Values[i] {
				sig.Values[i] = h
			}
		}
	}
	return sig
}

// EstimateSimilarity returns the fraction of agreeing slots, an unbiased
// estimator of the Jaccard similarity of the underlying sets. Signatures of
// mismatched size estimate 0.
func (g *MinHashGenerator) EstimateSimilarity(a, b *MinHashSignature) float64 {
	if a == nil || b == nil || len(a.Values) == 0 || len(a.Values) != len(b.Values) {
		return 0.0
	}
	matches := 0
	for i := range a.Values {
		if a.Values[i] == b.Values[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(a.Values))
}

// ExactJaccardSimilarity computes |A∩B| / |A∪B|, defined as 0.0 when both
// sets are empty.
func ExactJaccardSimilarity(a, b map[uint64]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0.0
	}
	intersection := 0
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	for element := range small {
		if _, ok := large[element]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// WeightedMinHashGenerator biases minimizer selection toward higher-weight
// elements by expanding each element into weight-many salted copies, so the
// estimated similarity shifts toward weighted overlap.
type WeightedMinHashGenerator struct {
	inner *MinHashGenerator
}

// NewWeightedMinHashGenerator creates a weighted generator sharing the
// unweighted generator's hash family parameters.
func NewWeightedMinHashGenerator(numHashes int, seed uint64) *WeightedMinHashGenerator {
	return &WeightedMinHashGenerator{inner: NewMinHashGenerator(numHashes, seed)}
}

// NumHashes returns the signature size.
func (g *WeightedMinHashGenerator) NumHashes() int {
	return g.inner.numHashes
}

// ComputeSignature builds the signature of a weighted shingle set. Elements
// with weight ≤ 0 are ignored; weight 1 behaves exactly like the unweighted
// generator.
func (g *WeightedMinHashGenerator) ComputeSignature(docID int, weighted map[uint64]int) *MinHashSignature {
	sig := &MinHashSignature{DocID: docID, Values: make([]uint64, g.inner.numHashes)}
	for i := range sig.Values {
		sig.Values[i] = emptySetSentinel
	}
	for element, weight := range weighted {
		for copyIndex := 0; copyIndex < weight; copyIndex++ {
			salted := element + uint64(copyIndex)*0x9e3779b97f4a7c15
			for i, seed := range g.inner.seeds {
				if h := mixHash(salted, seed); h < sig.Values[i] {
					sig.Values[i] = h
				}
			}
		}
	}
	return sig
}

// EstimateSimilarity is the slot-agreement estimator over weighted signatures.
func (g *WeightedMinHashGenerator) EstimateSimilarity(a, b *MinHashSignature) float64 {
	return g.inner.EstimateSimilarity(a, b)
}

// mixHash combines an element with a per-function seed through the
// splitmix64 finalizer, giving an independent 64-bit hash per seed.
func mixHash(element, seed uint64) uint64 {
	x := element ^ seed
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// splitmix64 advances the state and returns the next value in the sequence.
func splitmix64(state uint64) uint64 {
	state += 0x9e3779b97f4a7c15
	z := state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	return z
}
