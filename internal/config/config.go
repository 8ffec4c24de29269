// Package config holds the unified detection configuration and its loaders.
package config

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/cloneseek/cloneseek/internal/constants"
)

// Config represents the unified duplicate-detection configuration
type Config struct {
	Analysis AnalysisConfig `toml:"analysis" yaml:"analysis"`
	MinHash  MinHashConfig  `toml:"minhash" yaml:"minhash"`
	LSH      LSHConfig      `toml:"lsh" yaml:"lsh"`
	Input    InputConfig    `toml:"input" yaml:"input"`
}

// AnalysisConfig holds core analysis parameters
type AnalysisConfig struct {
	// Minimum shared token length for a repeat to be reported
	MinimumTokens int `toml:"minimum_tokens" yaml:"minimum_tokens"`

	// Verification threshold for the near-duplicate path
	SimilarityThreshold float64 `toml:"similarity_threshold" yaml:"similarity_threshold"`

	// Type-2 normalization of the near path's shingles
	NormalizeTokens bool `toml:"normalize_tokens" yaml:"normalize_tokens"`

	// Identifiers exempt from normalization
	PreservedIdentifiers []string `toml:"preserved_identifiers" yaml:"preserved_identifiers"`
}

// MinHashConfig holds signature parameters
type MinHashConfig struct {
	ShingleSize int    `toml:"shingle_size" yaml:"shingle_size"`
	NumHashes   int    `toml:"num_hashes" yaml:"num_hashes"`
	Seed        uint64 `toml:"seed" yaml:"seed"`
}

// LSHConfig holds the band/row split. Zero values mean "derive from the
// similarity threshold".
type LSHConfig struct {
	Bands int `toml:"bands" yaml:"bands"`
	Rows  int `toml:"rows" yaml:"rows"`
}

// InputConfig holds path filtering configuration
type InputConfig struct {
	IncludePatterns []string `toml:"include_patterns" yaml:"include_patterns"`
	ExcludePatterns []string `toml:"exclude_patterns" yaml:"exclude_patterns"`
}

// DefaultConfig returns the default detection configuration
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			MinimumTokens:       constants.DefaultMinimumTokens,
			SimilarityThreshold: constants.DefaultSimilarityThreshold,
		},
		MinHash: MinHashConfig{
			ShingleSize: constants.DefaultShingleSize,
			NumHashes:   constants.DefaultNumHashes,
			Seed:        constants.DefaultMinHashSeed,
		},
		LSH: LSHConfig{
			Bands: constants.DefaultLSHBands,
			Rows:  constants.DefaultLSHRows,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Analysis.MinimumTokens < 1 {
		return fmt.Errorf("analysis.minimum_tokens must be >= 1, got %d", c.Analysis.MinimumTokens)
	}
	if c.Analysis.SimilarityThreshold < 0.0 || c.Analysis.SimilarityThreshold > 1.0 {
		return fmt.Errorf("analysis.similarity_threshold must be between 0.0 and 1.0, got %g", c.Analysis.SimilarityThreshold)
	}
	if c.MinHash.ShingleSize < 1 {
		return fmt.Errorf("minhash.shingle_size must be >= 1, got %d", c.MinHash.ShingleSize)
	}
	if c.MinHash.NumHashes < 1 {
		return fmt.Errorf("minhash.num_hashes must be >= 1, got %d", c.MinHash.NumHashes)
	}
	if c.LSH.Bands < 0 || c.LSH.Rows < 0 {
		return fmt.Errorf("lsh.bands and lsh.rows must not be negative")
	}
	if c.LSH.Bands*c.LSH.Rows > c.MinHash.NumHashes {
		return fmt.Errorf("lsh.bands*lsh.rows = %d exceeds minhash.num_hashes = %d",
			c.LSH.Bands*c.LSH.Rows, c.MinHash.NumHashes)
	}
	for _, pattern := range c.Input.IncludePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid include pattern: %q", pattern)
		}
	}
	for _, pattern := range c.Input.ExcludePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern: %q", pattern)
		}
	}
	return nil
}

// ShouldAnalyzePath reports whether a file path passes the include/exclude
// glob filters. An empty include list admits every path; excludes win over
// includes.
func (c *Config) ShouldAnalyzePath(path string) bool {
	for _, pattern := range c.Input.ExcludePatterns {
		if matched, err := doublestar.Match(pattern, path); err == nil && matched {
			return false
		}
	}
	if len(c.Input.IncludePatterns) == 0 {
		return true
	}
	for _, pattern := range c.Input.IncludePatterns {
		if matched, err := doublestar.Match(pattern, path); err == nil && matched {
			return true
		}
	}
	return false
}
