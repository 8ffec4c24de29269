package domain

import (
	"context"
	"fmt"
)

// CloneType represents different types of code clones
type CloneType int

const (
	// CloneTypeExact - token-identical fragments detected on the raw stream
	CloneTypeExact CloneType = iota + 1
	// CloneTypeNear - identical after Type-2 normalization or approximately
	// similar under MinHash/LSH
	CloneTypeNear
	// CloneTypeSemantic - structurally similar fragments found by external
	// AST-based detection (out of scope for this engine, reserved value)
	CloneTypeSemantic
)

// String returns string representation of CloneType
func (ct CloneType) String() string {
	switch ct {
	case CloneTypeExact:
		return "exact"
	case CloneTypeNear:
		return "near"
	case CloneTypeSemantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// Clone represents one occurrence of duplicated code
type Clone struct {
	FilePath   string `json:"file_path" yaml:"file_path"`
	StartLine  int    `json:"start_line" yaml:"start_line"`
	EndLine    int    `json:"end_line" yaml:"end_line"`
	TokenCount int    `json:"token_count" yaml:"token_count"`
}

// String returns string representation of Clone
func (c *Clone) String() string {
	return fmt.Sprintf("%s:%d-%d", c.FilePath, c.StartLine, c.EndLine)
}

// LineCount returns the number of lines spanned by this clone
func (c *Clone) LineCount() int {
	return c.EndLine - c.StartLine + 1
}

// CloneGroup represents a group of related clones
type CloneGroup struct {
	Type        CloneType `json:"type" yaml:"type"`
	Clones      []Clone   `json:"clones" yaml:"clones"`
	Similarity  float64   `json:"similarity" yaml:"similarity"`
	Fingerprint string    `json:"fingerprint" yaml:"fingerprint"`
}

// String returns string representation of CloneGroup
func (cg *CloneGroup) String() string {
	return fmt.Sprintf("CloneGroup{Type: %s, Size: %d, Similarity: %.3f}",
		cg.Type.String(), len(cg.Clones), cg.Similarity)
}

// Size returns the number of clone occurrences in the group
func (cg *CloneGroup) Size() int {
	return len(cg.Clones)
}

// CloneStatistics provides statistics about clone detection results
type CloneStatistics struct {
	TotalGroups       int            `json:"total_groups" yaml:"total_groups"`
	TotalClones       int            `json:"total_clones" yaml:"total_clones"`
	GroupsByType      map[string]int `json:"groups_by_type" yaml:"groups_by_type"`
	AverageSimilarity float64        `json:"average_similarity" yaml:"average_similarity"`
	FilesAnalyzed     int            `json:"files_analyzed" yaml:"files_analyzed"`
}

// NewCloneStatistics creates a new clone statistics instance
func NewCloneStatistics() *CloneStatistics {
	return &CloneStatistics{
		GroupsByType: make(map[string]int),
	}
}

// AddGroup folds one clone group into the statistics
func (cs *CloneStatistics) AddGroup(group *CloneGroup) {
	cs.TotalGroups++
	cs.TotalClones += group.Size()
	cs.GroupsByType[group.Type.String()]++
	// Running mean over groups
	cs.AverageSimilarity += (group.Similarity - cs.AverageSimilarity) / float64(cs.TotalGroups)
}

// DetectRequest represents a request for clone detection
type DetectRequest struct {
	// Input files in tokenized form; normalized files enable the near path
	Files           []SourceFile     `json:"files"`
	NormalizedFiles []NormalizedFile `json:"normalized_files,omitempty"`

	// Analysis configuration
	MinimumTokens       int     `json:"minimum_tokens"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
	ShingleSize         int     `json:"shingle_size"`

	// Path filtering
	IncludePatterns []string `json:"include_patterns"`
	ExcludePatterns []string `json:"exclude_patterns"`

	// Configuration file
	ConfigPath string `json:"config_path"`
}

// Validate validates a detect request
func (req *DetectRequest) Validate() error {
	if req.MinimumTokens < 1 {
		return NewValidationError("minimum_tokens must be >= 1")
	}
	if req.SimilarityThreshold < 0.0 || req.SimilarityThreshold > 1.0 {
		return NewValidationError("similarity_threshold must be between 0.0 and 1.0")
	}
	if req.ShingleSize < 1 {
		return NewValidationError("shingle_size must be >= 1")
	}
	return nil
}

// DetectResponse represents the response from clone detection
type DetectResponse struct {
	CloneGroups []*CloneGroup    `json:"clone_groups" yaml:"clone_groups"`
	Statistics  *CloneStatistics `json:"statistics" yaml:"statistics"`
	Duration    int64            `json:"duration_ms" yaml:"duration_ms"`
}

// DuplicateService defines the interface for the duplicate-detection engine
type DuplicateService interface {
	// DetectClones performs clone detection on the given request
	DetectClones(ctx context.Context, req *DetectRequest) (*DetectResponse, error)
}
