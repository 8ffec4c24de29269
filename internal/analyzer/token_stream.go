package analyzer

import (
	"github.com/cloneseek/cloneseek/domain"
)

// separatorBase is the first file-boundary sentinel id. Vocabulary ids are
// interned from 1 upward, so every sentinel is strictly greater than every
// vocabulary id, and sentinels increase per file so no two are equal. A
// suffix comparison therefore always stops at the first separator it meets.
const separatorBase = 1 << 30

// TokenPosition carries the per-position metadata of the combined stream.
type TokenPosition struct {
	FileIndex int
	Line      int
	Column    int
	Text      string
}

// TokenStream is the vocabulary-interned concatenation of all input files,
// one unique separator appended after each file.
type TokenStream struct {
	Codes     []int
	Positions []TokenPosition
	Files     []string
}

// Len returns the total stream length including separators.
func (ts *TokenStream) Len() int {
	return len(ts.Codes)
}

// IsSeparator reports whether the given stream position holds a
// file-boundary sentinel.
func (ts *TokenStream) IsSeparator(pos int) bool {
	return pos >= 0 && pos < len(ts.Codes) && ts.Codes[pos] >= separatorBase
}

// FileIndexAt returns the file index at a stream position, or -1 when the
// position is out of bounds.
func (ts *TokenStream) FileIndexAt(pos int) int {
	if pos < 0 || pos >= len(ts.Positions) {
		return -1
	}
	return ts.Positions[pos].FileIndex
}

// PositionAt returns the metadata of a stream position.
func (ts *TokenStream) PositionAt(pos int) TokenPosition {
	return ts.Positions[pos]
}

// TokenStreamBuilder interns token texts into integer codes and concatenates
// per-file sequences with unique file-boundary sentinels. The vocabulary is
// scoped to the builder; every detection call starts from a fresh one.
type TokenStreamBuilder struct {
	codes      []int
	positions  []TokenPosition
	files      []string
	vocabulary map[string]int
	nextCode   int
}

// NewTokenStreamBuilder creates an empty builder. Code 0 is reserved;
// interned ids start at 1.
func NewTokenStreamBuilder() *TokenStreamBuilder {
	return &TokenStreamBuilder{
		vocabulary: make(map[string]int),
		nextCode:   1,
	}
}

// Intern returns the stable integer code for a token text, assigning codes
// in first-seen order.
func (b *TokenStreamBuilder) Intern(text string) int {
	if code, ok := b.vocabulary[text]; ok {
		return code
	}
	code := b.nextCode
	b.vocabulary[text] = code
	b.nextCode++
	return code
}

// VocabularySize returns the number of distinct interned token texts.
func (b *TokenStreamBuilder) VocabularySize() int {
	return len(b.vocabulary)
}

// AddFile appends one file's token sequence followed by that file's
// separator sentinel.
func (b *TokenStreamBuilder) AddFile(path string, tokens []domain.Token) {
	fileIndex := len(b.files)
	b.files = append(b.files, path)

	for _, tok := range tokens {
		b.codes = append(b.codes, b.Intern(tok.Text))
		b.positions = append(b.positions, TokenPosition{
			FileIndex: fileIndex,
			Line:      tok.Line,
			Column:    tok.Column,
			Text:      tok.Text,
		})
	}
	b.appendSeparator(fileIndex)
}

// AddNormalizedFile appends a Type-2-normalized file. Interning keys on the
// normalized text so renamed identifiers collapse to the same code, while
// the position metadata keeps the original text for fingerprinting.
func (b *TokenStreamBuilder) AddNormalizedFile(path string, tokens []domain.NormalizedToken) {
	fileIndex := len(b.files)
	b.files = append(b.files, path)

	for _, tok := range tokens {
		b.codes = append(b.codes, b.Intern(tok.Text))
		b.positions = append(b.positions, TokenPosition{
			FileIndex: fileIndex,
			Line:      tok.Line,
			Column:    tok.Column,
			Text:      tok.OriginalText,
		})
	}
	b.appendSeparator(fileIndex)
}

func (b *TokenStreamBuilder) appendSeparator(fileIndex int) {
	b.codes = append(b.codes, separatorBase+fileIndex)
	b.positions = append(b.positions, TokenPosition{
		FileIndex: fileIndex,
		Line:      -1,
	})
}

// Build returns the finished stream. The builder keeps ownership of nothing;
// the returned stream is safe to use after further Add calls are not made.
func (b *TokenStreamBuilder) Build() *TokenStream {
	return &TokenStream{
		Codes:     b.codes,
		Positions: b.positions,
		Files:     b.files,
	}
}
