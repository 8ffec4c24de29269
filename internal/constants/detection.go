// Package constants centralizes the tuning defaults of the detection engine.
package constants

// Token-stream and repeat-extraction defaults.
const (
	// DefaultMinimumTokens is the minimum shared token length for a repeat
	// region to be reported as a clone. Values below ~20 tend to flood the
	// output with incidental matches on real codebases.
	DefaultMinimumTokens = 25

	// FingerprintTokenLimit caps how many leading tokens of a clone group's
	// first occurrence contribute to its dedup fingerprint.
	FingerprintTokenLimit = 20

	// OverlapRatioLimit is the fraction of an occurrence's own length above
	// which a positional overlap with an already-accepted occurrence (or
	// repeat group) disqualifies it. The 50% cutoff is load-bearing: both
	// repeat-group merging and same-file clone filtering depend on it.
	OverlapRatioLimit = 0.5
)

// MinHash and shingling defaults.
const (
	// DefaultShingleSize is the k-gram window width over tokens.
	DefaultShingleSize = 5

	// DefaultNumHashes is the MinHash signature size. 256 keeps the
	// estimator's absolute error under ~0.15 on realistic inputs.
	DefaultNumHashes = 256

	// DefaultMinHashSeed seeds the deterministic hash family.
	DefaultMinHashSeed = 0x5eed1234cafebabe
)

// LSH defaults.
const (
	// DefaultLSHBands is the number of signature bands.
	DefaultLSHBands = 32

	// DefaultLSHRows is the rows per band. With 32 bands the implied
	// candidate threshold is (1/32)^(1/8) ≈ 0.65.
	DefaultLSHRows = 8

	// DefaultSimilarityThreshold is the verification threshold for the
	// near-duplicate path.
	DefaultSimilarityThreshold = 0.8
)

// Parallelism gates. Below these sizes the sequential path is used because
// scheduling overhead dominates.
const (
	// MinDocumentsForParallel gates parallel signature computation.
	MinDocumentsForParallel = 32

	// MinPairsForParallel gates parallel pair verification.
	MinPairsForParallel = 64

	// MinEdgesForParallel gates the parallel connected-components pass.
	MinEdgesForParallel = 128
)
