// Package app orchestrates detection requests across the config layer and
// the analysis engine.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/cloneseek/cloneseek/domain"
	"github.com/cloneseek/cloneseek/internal/analyzer"
	"github.com/cloneseek/cloneseek/internal/config"
)

// DetectUseCase wires a detection request end to end: validation, config
// loading, path filtering, both detection paths, and response assembly.
// It implements domain.DuplicateService.
type DetectUseCase struct{}

// NewDetectUseCase creates a new detect use case
func NewDetectUseCase() *DetectUseCase {
	return &DetectUseCase{}
}

// DetectClones executes the detection use case
func (uc *DetectUseCase) DetectClones(ctx context.Context, req *domain.DetectRequest) (*domain.DetectResponse, error) {
	startTime := time.Now()

	if req == nil {
		return nil, domain.NewInvalidInputError("detect request is nil", nil)
	}

	cfg, err := uc.resolveConfig(req)
	if err != nil {
		return nil, err
	}

	fillRequestFromConfig(req, cfg)
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	files := filterFiles(req.Files, cfg)
	normalized := filterNormalizedFiles(req.NormalizedFiles, cfg)

	detector := analyzer.NewDuplicateDetector(cfg)

	var groups []*domain.CloneGroup
	groups = append(groups, detector.DetectExact(ctx, files)...)
	if len(normalized) > 0 {
		groups = append(groups, detector.DetectNormalized(ctx, normalized)...)
	}
	groups = append(groups, detector.DetectNear(ctx, files)...)

	stats := domain.NewCloneStatistics()
	stats.FilesAnalyzed = len(files)
	for _, g := range groups {
		stats.AddGroup(g)
	}

	return &domain.DetectResponse{
		CloneGroups: groups,
		Statistics:  stats,
		Duration:    time.Since(startTime).Milliseconds(),
	}, nil
}

// resolveConfig loads the config file when one is named and folds the
// request's explicitly set knobs over it. Unset (zero) request fields defer
// to the file, and to the defaults when no file is named; an explicitly set
// request field always wins.
func (uc *DetectUseCase) resolveConfig(req *domain.DetectRequest) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if req.ConfigPath != "" {
		loaded, err := config.LoadConfig(req.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
	}

	if req.MinimumTokens != 0 {
		cfg.Analysis.MinimumTokens = req.MinimumTokens
	}
	if req.SimilarityThreshold != 0 {
		cfg.Analysis.SimilarityThreshold = req.SimilarityThreshold
	}
	if req.ShingleSize != 0 {
		cfg.MinHash.ShingleSize = req.ShingleSize
	}
	if len(req.IncludePatterns) > 0 {
		cfg.Input.IncludePatterns = req.IncludePatterns
	}
	if len(req.ExcludePatterns) > 0 {
		cfg.Input.ExcludePatterns = req.ExcludePatterns
	}

	if err := cfg.Validate(); err != nil {
		return nil, domain.NewConfigError("invalid detection configuration", err)
	}
	return cfg, nil
}

// fillRequestFromConfig reflects the resolved settings back onto the request
// so callers see the effective values.
func fillRequestFromConfig(req *domain.DetectRequest, cfg *config.Config) {
	req.MinimumTokens = cfg.Analysis.MinimumTokens
	req.SimilarityThreshold = cfg.Analysis.SimilarityThreshold
	req.ShingleSize = cfg.MinHash.ShingleSize
}

func filterFiles(files []domain.SourceFile, cfg *config.Config) []domain.SourceFile {
	kept := make([]domain.SourceFile, 0, len(files))
	for _, f := range files {
		if cfg.ShouldAnalyzePath(f.Path) {
			kept = append(kept, f)
		}
	}
	return kept
}

func filterNormalizedFiles(files []domain.NormalizedFile, cfg *config.Config) []domain.NormalizedFile {
	kept := make([]domain.NormalizedFile, 0, len(files))
	for _, f := range files {
		if cfg.ShouldAnalyzePath(f.Path) {
			kept = append(kept, f)
		}
	}
	return kept
}
