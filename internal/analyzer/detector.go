package analyzer

import (
	"context"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/cloneseek/cloneseek/domain"
	"github.com/cloneseek/cloneseek/internal/config"
	"github.com/cloneseek/cloneseek/internal/constants"
)

// DuplicateDetector runs the two detection pipelines: the exact path over a
// suffix-indexed token stream and the approximate near path over MinHash
// signatures bucketed by LSH. Every call builds all structures from scratch;
// the detector keeps no cross-call state.
type DuplicateDetector struct {
	cfg             *config.Config
	minDocsParallel int
	maxWorkers      int
}

// NewDuplicateDetector creates a detector from the given configuration.
// A nil config uses the defaults.
func NewDuplicateDetector(cfg *config.Config) *DuplicateDetector {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &DuplicateDetector{
		cfg:             cfg,
		minDocsParallel: constants.MinDocumentsForParallel,
		maxWorkers:      runtime.NumCPU(),
	}
}

// DetectExact finds token-identical repeats of at least minimum_tokens
// length across the raw token streams of the given files.
func (d *DuplicateDetector) DetectExact(ctx context.Context, files []domain.SourceFile) []*domain.CloneGroup {
	builder := NewTokenStreamBuilder()
	for _, f := range files {
		builder.AddFile(f.Path, f.Tokens)
	}
	return d.detectOnStream(ctx, builder.Build(), domain.CloneTypeExact)
}

// DetectNormalized runs the exact pipeline over Type-2-normalized streams,
// so renamed-identifier clones surface as near clones.
func (d *DuplicateDetector) DetectNormalized(ctx context.Context, files []domain.NormalizedFile) []*domain.CloneGroup {
	builder := NewTokenStreamBuilder()
	for _, f := range files {
		builder.AddNormalizedFile(f.Path, f.Tokens)
	}
	return d.detectOnStream(ctx, builder.Build(), domain.CloneTypeNear)
}

func (d *DuplicateDetector) detectOnStream(ctx context.Context, stream *TokenStream, cloneType domain.CloneType) []*domain.CloneGroup {
	if stream.Len() == 0 || ctx.Err() != nil {
		return nil
	}
	sa := BuildSuffixArray(stream.Codes)
	lcp := BuildLCPArray(stream.Codes, sa.Array())
	repeats := FindRepeatGroups(sa, lcp, d.cfg.Analysis.MinimumTokens)
	return NewCloneAssembler(stream).Assemble(repeats, cloneType)
}

// DetectNear finds approximate near-duplicates across whole files: shingle,
// sketch, bucket, verify, cluster. Documents whose verified similarity
// meets the threshold end up grouped by connected component.
func (d *DuplicateDetector) DetectNear(ctx context.Context, files []domain.SourceFile) []*domain.CloneGroup {
	if len(files) < 2 || ctx.Err() != nil {
		return nil
	}

	shingler := NewShingleGenerator(
		d.cfg.MinHash.ShingleSize,
		d.cfg.Analysis.NormalizeTokens,
		d.cfg.Analysis.PreservedIdentifiers,
	)
	docs := d.shingleDocuments(files, shingler)

	generator := NewMinHashGenerator(d.cfg.MinHash.NumHashes, d.cfg.MinHash.Seed)
	signatures := d.computeSignatures(ctx, docs, generator)

	bands, rows := d.cfg.LSH.Bands, d.cfg.LSH.Rows
	if bands <= 0 || rows <= 0 {
		bands, rows = OptimalBandsAndRows(generator.NumHashes(), d.cfg.Analysis.SimilarityThreshold)
	}
	index, err := NewLSHIndex(generator.NumHashes(), bands, rows)
	if err != nil {
		return nil
	}
	for _, sig := range signatures {
		_ = index.Insert(sig)
	}

	docsByID := make(map[int]*ShingledDocument, len(docs))
	for _, doc := range docs {
		docsByID[doc.ID] = doc
	}

	verifier := NewVerifier(d.cfg.Analysis.SimilarityThreshold)
	verified := verifier.VerifyPairs(ctx, index.FindCandidatePairs(), docsByID)
	if len(verified) == 0 {
		return nil
	}

	return d.clusterVerified(ctx, docs, docsByID, verified)
}

// shingleDocuments assigns each file a sequential document id and reduces
// it to its shingle set.
func (d *DuplicateDetector) shingleDocuments(files []domain.SourceFile, shingler *ShingleGenerator) []*ShingledDocument {
	docs := make([]*ShingledDocument, len(files))
	for i, f := range files {
		docs[i] = shingler.ShingleFile(i, f)
	}
	return docs
}

// computeSignatures sketches every document. Above the activation gate the
// per-document work runs in parallel; the output is indexed by document id
// either way, so both paths produce identical results.
func (d *DuplicateDetector) computeSignatures(ctx context.Context, docs []*ShingledDocument, generator *MinHashGenerator) []*MinHashSignature {
	signatures := make([]*MinHashSignature, len(docs))
	if len(docs) < d.minDocsParallel || d.maxWorkers < 2 {
		for i, doc := range docs {
			if ctx.Err() != nil {
				return signatures[:i]
			}
			signatures[i] = generator.ComputeSignature(doc.ID, doc.Shingles)
		}
		return signatures
	}

	p := pool.New().WithMaxGoroutines(d.maxWorkers)
	for i, doc := range docs {
		i, doc := i, doc
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}
			signatures[i] = generator.ComputeSignature(doc.ID, doc.Shingles)
		})
	}
	p.Wait()

	// Drop slots abandoned by cancellation.
	complete := signatures[:0]
	for _, sig := range signatures {
		if sig != nil {
			complete = append(complete, sig)
		}
	}
	return complete
}

// clusterVerified groups verified pairs into multi-document clone clusters
// via connected components and converts each non-trivial component into a
// clone group.
func (d *DuplicateDetector) clusterVerified(ctx context.Context, docs []*ShingledDocument, docsByID map[int]*ShingledDocument, verified []VerifiedPair) []*domain.CloneGroup {
	nodes := make([]int, len(docs))
	for i, doc := range docs {
		nodes[i] = doc.ID
	}
	edges := make([]DocumentPair, len(verified))
	similarity := make(map[DocumentPair]float64, len(verified))
	for i, vp := range verified {
		edges[i] = vp.Pair
		similarity[vp.Pair] = vp.Similarity
	}

	components := ConnectedComponentsParallel(ctx, nodes, edges)

	var groups []*domain.CloneGroup
	for _, members := range components {
		if len(members) < 2 {
			continue
		}
		group := &domain.CloneGroup{
			Type:       domain.CloneTypeNear,
			Similarity: averageComponentSimilarity(members, similarity),
		}
		for _, id := range members {
			doc := docsByID[id]
			group.Clones = append(group.Clones, domain.Clone{
				FilePath:   doc.FilePath,
				StartLine:  doc.StartLine,
				EndLine:    doc.EndLine,
				TokenCount: doc.TokenCount,
			})
		}
		group.Fingerprint = nearFingerprint(docsByID[members[0]])
		groups = append(groups, group)
	}
	return groups
}

// averageComponentSimilarity averages the verified pairwise similarities
// present inside one component.
func averageComponentSimilarity(members []int, similarity map[DocumentPair]float64) float64 {
	total, count := 0.0, 0
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			if s, ok := similarity[NewDocumentPair(members[i], members[j])]; ok {
				total += s
				count++
			}
		}
	}
	if count == 0 {
		return 0.0
	}
	return total / float64(count)
}

// nearFingerprint keys a near group by its representative document's span.
func nearFingerprint(doc *ShingledDocument) string {
	if doc == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(doc.FilePath)
	sb.WriteByte(':')
	hashes := make([]uint64, 0, constants.FingerprintTokenLimit)
	for h := range doc.Shingles {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
	if len(hashes) > constants.FingerprintTokenLimit {
		hashes = hashes[:constants.FingerprintTokenLimit]
	}
	for _, h := range hashes {
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatUint(h, 16))
	}
	return sb.String()
}
