package analyzer

import (
	"encoding/binary"

	"github.com/zeebo/blake3"

	"github.com/cloneseek/cloneseek/domain"
)

// Kind-aware placeholders used when normalization is enabled. Renamed but
// structurally identical code collapses to identical shingle hashes.
const (
	identifierPlaceholder = "ID"
	literalPlaceholder    = "LIT"
)

// Shingle is one k-token window of a document: its 64-bit content hash and
// the window's start offset in the token sequence.
type Shingle struct {
	Hash  uint64
	Start int
}

// ShingledDocument is a document reduced to its shingle-hash set, keeping
// just enough span metadata for verification and reporting.
type ShingledDocument struct {
	ID         int
	FilePath   string
	StartLine  int
	EndLine    int
	TokenCount int
	Shingles   map[uint64]struct{}
}

// ShingleGenerator produces sliding k-token windows hashed to 64 bits.
type ShingleGenerator struct {
	k         int
	normalize bool
	preserved map[string]struct{}
}

// NewShingleGenerator creates a generator with window size k (k ≥ 1).
// When normalize is set, identifier and literal tokens are collapsed to
// kind-aware placeholders before windowing; preserved identifiers keep
// their text.
func NewShingleGenerator(k int, normalize bool, preserved []string) *ShingleGenerator {
	g := &ShingleGenerator{k: k, normalize: normalize}
	if len(preserved) > 0 {
		g.preserved = make(map[string]struct{}, len(preserved))
		for _, p := range preserved {
			g.preserved[p] = struct{}{}
		}
	}
	return g
}

// Generate returns every contiguous k-token window of the input, empty when
// fewer than k tokens are available.
func (g *ShingleGenerator) Generate(tokens []domain.Token) []Shingle {
	if g.k < 1 || len(tokens) < g.k {
		return nil
	}

	texts := make([]string, len(tokens))
	for i, tok := range tokens {
		texts[i] = g.tokenText(tok)
	}

	shingles := make([]Shingle, 0, len(tokens)-g.k+1)
	hasher := blake3.New()
	for i := 0; i+g.k <= len(texts); i++ {
		hasher.Reset()
		for j := i; j < i+g.k; j++ {
			_, _ = hasher.Write([]byte(texts[j]))
			_, _ = hasher.Write([]byte{0})
		}
		shingles = append(shingles, Shingle{Hash: sum64(hasher), Start: i})
	}
	return shingles
}

// GenerateFromText returns character k-gram shingles of raw text, the
// fallback when no token stream is available.
func (g *ShingleGenerator) GenerateFromText(text string) []Shingle {
	runes := []rune(text)
	if g.k < 1 || len(runes) < g.k {
		return nil
	}

	shingles := make([]Shingle, 0, len(runes)-g.k+1)
	hasher := blake3.New()
	for i := 0; i+g.k <= len(runes); i++ {
		hasher.Reset()
		_, _ = hasher.Write([]byte(string(runes[i : i+g.k])))
		shingles = append(shingles, Shingle{Hash: sum64(hasher), Start: i})
	}
	return shingles
}

// ShingleFile reduces one source file to a shingled document with the given id.
func (g *ShingleGenerator) ShingleFile(id int, file domain.SourceFile) *ShingledDocument {
	doc := &ShingledDocument{
		ID:         id,
		FilePath:   file.Path,
		TokenCount: len(file.Tokens),
		Shingles:   make(map[uint64]struct{}),
	}
	if len(file.Tokens) > 0 {
		doc.StartLine = file.Tokens[0].Line
		doc.EndLine = file.Tokens[len(file.Tokens)-1].Line
	}
	for _, sh := range g.Generate(file.Tokens) {
		doc.Shingles[sh.Hash] = struct{}{}
	}
	return doc
}

// WeightedShingles returns the multiset view of a token sequence: shingle
// hash to occurrence count, for the weighted MinHash path.
func (g *ShingleGenerator) WeightedShingles(tokens []domain.Token) map[uint64]int {
	shingles := g.Generate(tokens)
	if len(shingles) == 0 {
		return nil
	}
	weighted := make(map[uint64]int, len(shingles))
	for _, sh := range shingles {
		weighted[sh.Hash]++
	}
	return weighted
}

func (g *ShingleGenerator) tokenText(tok domain.Token) string {
	if !g.normalize {
		return tok.Text
	}
	switch tok.Kind {
	case domain.TokenIdentifier:
		if _, ok := g.preserved[tok.Text]; ok {
			return tok.Text
		}
		return identifierPlaceholder
	case domain.TokenLiteral:
		return literalPlaceholder
	default:
		return tok.Text
	}
}

func sum64(hasher *blake3.Hasher) uint64 {
	sum := hasher.Sum(nil)
	return binary.LittleEndian.Uint64(sum[:8])
}
