package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloneseek/cloneseek/domain"
)

func tokens(texts ...string) []domain.Token {
	toks := make([]domain.Token, len(texts))
	for i, text := range texts {
		toks[i] = domain.Token{
			Kind:   domain.TokenIdentifier,
			Text:   text,
			Line:   i + 1,
			Column: 1,
		}
	}
	return toks
}

func TestIntern_FirstSeenOrder(t *testing.T) {
	builder := NewTokenStreamBuilder()

	assert.Equal(t, 1, builder.Intern("foo"))
	assert.Equal(t, 2, builder.Intern("bar"))
	assert.Equal(t, 1, builder.Intern("foo"), "re-interning must return the original code")
	assert.Equal(t, 3, builder.Intern("baz"))
	assert.Equal(t, 3, builder.VocabularySize())
}

func TestAddFile_AppendsSeparator(t *testing.T) {
	builder := NewTokenStreamBuilder()
	builder.AddFile("a.py", tokens("x", "y"))
	builder.AddFile("b.py", tokens("x", "z"))
	stream := builder.Build()

	// Two tokens plus a separator per file.
	require.Equal(t, 6, stream.Len())
	assert.True(t, stream.IsSeparator(2))
	assert.True(t, stream.IsSeparator(5))
	assert.False(t, stream.IsSeparator(0))

	// Separators are unique and strictly greater than every vocabulary id.
	assert.NotEqual(t, stream.Codes[2], stream.Codes[5])
	for _, pos := range []int{0, 1, 3, 4} {
		assert.Less(t, stream.Codes[pos], stream.Codes[2])
		assert.Less(t, stream.Codes[pos], stream.Codes[5])
	}

	// Same text in different files interns to the same code.
	assert.Equal(t, stream.Codes[0], stream.Codes[3])
}

func TestAddFile_PositionMetadata(t *testing.T) {
	builder := NewTokenStreamBuilder()
	builder.AddFile("a.py", []domain.Token{
		{Kind: domain.TokenKeyword, Text: "def", Line: 3, Column: 5},
	})
	stream := builder.Build()

	pos := stream.PositionAt(0)
	assert.Equal(t, 0, pos.FileIndex)
	assert.Equal(t, 3, pos.Line)
	assert.Equal(t, 5, pos.Column)
	assert.Equal(t, "def", pos.Text)
	assert.Equal(t, []string{"a.py"}, stream.Files)
}

func TestAddNormalizedFile_InternsOnNormalizedText(t *testing.T) {
	builder := NewTokenStreamBuilder()
	builder.AddNormalizedFile("a.py", []domain.NormalizedToken{
		{Text: "ID", OriginalText: "count", Line: 1, Column: 1},
	})
	builder.AddNormalizedFile("b.py", []domain.NormalizedToken{
		{Text: "ID", OriginalText: "total", Line: 1, Column: 1},
	})
	stream := builder.Build()

	// Renamed identifiers share a code but keep their original text.
	assert.Equal(t, stream.Codes[0], stream.Codes[2])
	assert.Equal(t, "count", stream.PositionAt(0).Text)
	assert.Equal(t, "total", stream.PositionAt(2).Text)
}

func TestFileIndexAt_OutOfBounds(t *testing.T) {
	builder := NewTokenStreamBuilder()
	builder.AddFile("a.py", tokens("x"))
	stream := builder.Build()

	assert.Equal(t, -1, stream.FileIndexAt(-1))
	assert.Equal(t, -1, stream.FileIndexAt(stream.Len()))
	assert.Equal(t, 0, stream.FileIndexAt(0))
}

func TestBuild_EmptyBuilder(t *testing.T) {
	stream := NewTokenStreamBuilder().Build()

	assert.Equal(t, 0, stream.Len())
	assert.Empty(t, stream.Files)
}
