package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 25, cfg.Analysis.MinimumTokens)
	assert.Equal(t, 0.8, cfg.Analysis.SimilarityThreshold)
	assert.Equal(t, 5, cfg.MinHash.ShingleSize)
	assert.Equal(t, 256, cfg.MinHash.NumHashes)
	assert.LessOrEqual(t, cfg.LSH.Bands*cfg.LSH.Rows, cfg.MinHash.NumHashes)
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero minimum tokens", func(c *Config) { c.Analysis.MinimumTokens = 0 }},
		{"negative threshold", func(c *Config) { c.Analysis.SimilarityThreshold = -0.1 }},
		{"threshold above one", func(c *Config) { c.Analysis.SimilarityThreshold = 1.1 }},
		{"zero shingle size", func(c *Config) { c.MinHash.ShingleSize = 0 }},
		{"zero hash count", func(c *Config) { c.MinHash.NumHashes = 0 }},
		{"negative bands", func(c *Config) { c.LSH.Bands = -1 }},
		{"bands times rows too large", func(c *Config) {
			c.LSH.Bands = 64
			c.LSH.Rows = 8
			c.MinHash.NumHashes = 256
		}},
		{"bad include pattern", func(c *Config) {
			c.Input.IncludePatterns = []string{"[unclosed"}
		}},
		{"bad exclude pattern", func(c *Config) {
			c.Input.ExcludePatterns = []string{"[unclosed"}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_BoundaryThresholds(t *testing.T) {
	cfg := DefaultConfig()

	cfg.Analysis.SimilarityThreshold = 0.0
	assert.NoError(t, cfg.Validate())

	cfg.Analysis.SimilarityThreshold = 1.0
	assert.NoError(t, cfg.Validate())
}

func TestShouldAnalyzePath_EmptyIncludesAdmitAll(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.ShouldAnalyzePath("anything/at/all.py"))
}

func TestShouldAnalyzePath_IncludePatterns(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Input.IncludePatterns = []string{"src/**/*.py"}

	assert.True(t, cfg.ShouldAnalyzePath("src/pkg/main.py"))
	assert.False(t, cfg.ShouldAnalyzePath("docs/readme.md"))
}

func TestShouldAnalyzePath_ExcludesWin(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Input.IncludePatterns = []string{"**/*.py"}
	cfg.Input.ExcludePatterns = []string{"**/vendor/**"}

	assert.True(t, cfg.ShouldAnalyzePath("src/main.py"))
	assert.False(t, cfg.ShouldAnalyzePath("src/vendor/dep.py"))
}
