package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloneseek/cloneseek/domain"
)

func tokenizedFile(path string, texts ...string) domain.SourceFile {
	toks := make([]domain.Token, len(texts))
	for i, text := range texts {
		toks[i] = domain.Token{
			Kind:   domain.TokenIdentifier,
			Text:   text,
			Line:   i + 1,
			Column: 1,
		}
	}
	return domain.SourceFile{Path: path, Tokens: toks}
}

func sharedBlockFile(path string, count int) domain.SourceFile {
	texts := make([]string, count)
	for i := range texts {
		texts[i] = fmt.Sprintf("tok%d", i)
	}
	return tokenizedFile(path, texts...)
}

func TestDetectClones_FindsExactDuplicates(t *testing.T) {
	uc := NewDetectUseCase()
	req := &domain.DetectRequest{
		Files: []domain.SourceFile{
			sharedBlockFile("a.py", 30),
			sharedBlockFile("b.py", 30),
		},
		MinimumTokens: 10,
	}

	resp, err := uc.DetectClones(context.Background(), req)

	require.NoError(t, err)
	require.NotNil(t, resp)
	require.NotEmpty(t, resp.CloneGroups)
	assert.Equal(t, 2, resp.Statistics.FilesAnalyzed)
	assert.Greater(t, resp.Statistics.TotalGroups, 0)
	assert.Greater(t, resp.Statistics.TotalClones, 0)
	assert.GreaterOrEqual(t, resp.Duration, int64(0))

	exact := 0
	for _, g := range resp.CloneGroups {
		if g.Type == domain.CloneTypeExact {
			exact++
			assert.Equal(t, 1.0, g.Similarity)
		}
	}
	assert.Greater(t, exact, 0)
}

func TestDetectClones_DefaultsFillUnsetKnobs(t *testing.T) {
	uc := NewDetectUseCase()
	req := &domain.DetectRequest{
		Files: []domain.SourceFile{sharedBlockFile("a.py", 10)},
	}

	_, err := uc.DetectClones(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 25, req.MinimumTokens)
	assert.Equal(t, 0.8, req.SimilarityThreshold)
	assert.Equal(t, 5, req.ShingleSize)
}

func TestDetectClones_InvalidRequest(t *testing.T) {
	uc := NewDetectUseCase()
	req := &domain.DetectRequest{
		MinimumTokens:       -5,
		SimilarityThreshold: 0.8,
		ShingleSize:         5,
	}

	_, err := uc.DetectClones(context.Background(), req)

	assert.Error(t, err)
}

func TestDetectClones_ExcludePatternsFilterFiles(t *testing.T) {
	uc := NewDetectUseCase()
	req := &domain.DetectRequest{
		Files: []domain.SourceFile{
			sharedBlockFile("src/a.py", 30),
			sharedBlockFile("vendor/b.py", 30),
		},
		MinimumTokens:   10,
		ExcludePatterns: []string{"vendor/**"},
	}

	resp, err := uc.DetectClones(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Statistics.FilesAnalyzed)
	assert.Empty(t, resp.CloneGroups, "the only duplicate partner is excluded")
}

func TestDetectClones_ConfigFileApplied(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "detect.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
[analysis]
normalize_tokens = true

[input]
exclude_patterns = ["**/generated/**"]
`), 0o644))

	uc := NewDetectUseCase()
	req := &domain.DetectRequest{
		Files: []domain.SourceFile{
			sharedBlockFile("src/a.py", 30),
			sharedBlockFile("src/generated/b.py", 30),
		},
		MinimumTokens: 10,
		ConfigPath:    configPath,
	}

	resp, err := uc.DetectClones(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Statistics.FilesAnalyzed)
}

func TestDetectClones_ConfigFileLowersMinimumTokens(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "detect.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("[analysis]\nminimum_tokens = 5\n"), 0o644))

	uc := NewDetectUseCase()
	// The shared block is below the default minimum; only the file's lower
	// setting can surface it.
	req := &domain.DetectRequest{
		Files: []domain.SourceFile{
			sharedBlockFile("a.py", 10),
			sharedBlockFile("b.py", 10),
		},
		ConfigPath: configPath,
	}

	resp, err := uc.DetectClones(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 5, req.MinimumTokens, "effective setting must come from the file")
	exact := 0
	for _, g := range resp.CloneGroups {
		if g.Type == domain.CloneTypeExact {
			exact++
		}
	}
	assert.Greater(t, exact, 0)
}

func TestDetectClones_RequestOverridesConfigFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "detect.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("[analysis]\nminimum_tokens = 5\n"), 0o644))

	uc := NewDetectUseCase()
	req := &domain.DetectRequest{
		Files: []domain.SourceFile{
			sharedBlockFile("a.py", 10),
			sharedBlockFile("b.py", 10),
		},
		MinimumTokens: 50,
		ConfigPath:    configPath,
	}

	resp, err := uc.DetectClones(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 50, req.MinimumTokens)
	for _, g := range resp.CloneGroups {
		assert.NotEqual(t, domain.CloneTypeExact, g.Type,
			"an explicit request setting must beat the file's")
	}
}

func TestDetectClones_NilRequest(t *testing.T) {
	uc := NewDetectUseCase()

	_, err := uc.DetectClones(context.Background(), nil)

	require.Error(t, err)
	var derr domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.ErrCodeInvalidInput, derr.Code)
}

func TestDetectClones_BadConfigPath(t *testing.T) {
	uc := NewDetectUseCase()
	req := &domain.DetectRequest{
		Files:      []domain.SourceFile{sharedBlockFile("a.py", 10)},
		ConfigPath: "/nonexistent/detect.toml",
	}

	_, err := uc.DetectClones(context.Background(), req)

	assert.Error(t, err)
}

func TestDetectClones_NormalizedFilesRunNearPath(t *testing.T) {
	uc := NewDetectUseCase()
	normalizedTokens := func(name string) []domain.NormalizedToken {
		return []domain.NormalizedToken{
			{Text: "def", OriginalText: "def", Line: 1, Column: 1},
			{Text: "ID", OriginalText: name, Line: 1, Column: 5},
			{Text: "return", OriginalText: "return", Line: 2, Column: 1},
			{Text: "ID", OriginalText: name, Line: 2, Column: 8},
			{Text: "end", OriginalText: "end", Line: 3, Column: 1},
		}
	}
	req := &domain.DetectRequest{
		NormalizedFiles: []domain.NormalizedFile{
			{Path: "a.py", Tokens: normalizedTokens("alpha")},
			{Path: "b.py", Tokens: normalizedTokens("beta")},
		},
		MinimumTokens: 4,
	}

	resp, err := uc.DetectClones(context.Background(), req)

	require.NoError(t, err)
	require.NotEmpty(t, resp.CloneGroups)
	assert.Equal(t, domain.CloneTypeNear, resp.CloneGroups[0].Type)
	assert.Equal(t, 1, resp.Statistics.GroupsByType["near"])
}

func TestDetectClones_EmptyInputDegradesToEmptyResponse(t *testing.T) {
	uc := NewDetectUseCase()
	req := &domain.DetectRequest{}

	resp, err := uc.DetectClones(context.Background(), req)

	require.NoError(t, err)
	assert.Empty(t, resp.CloneGroups)
	assert.Equal(t, 0, resp.Statistics.TotalGroups)
}

func TestDetectUseCase_ImplementsDuplicateService(t *testing.T) {
	var _ domain.DuplicateService = NewDetectUseCase()
}
