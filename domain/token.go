package domain

import "fmt"

// TokenKind classifies a source token as produced by an external tokenizer.
type TokenKind int

const (
	TokenIdentifier TokenKind = iota
	TokenKeyword
	TokenLiteral
	TokenOperator
	TokenPunctuation
)

// String returns string representation of TokenKind
func (tk TokenKind) String() string {
	switch tk {
	case TokenIdentifier:
		return "identifier"
	case TokenKeyword:
		return "keyword"
	case TokenLiteral:
		return "literal"
	case TokenOperator:
		return "operator"
	case TokenPunctuation:
		return "punctuation"
	default:
		return "unknown"
	}
}

// Token is a single source token with its position in the original file.
type Token struct {
	Kind   TokenKind `json:"kind" yaml:"kind"`
	Text   string    `json:"text" yaml:"text"`
	Line   int       `json:"line" yaml:"line"`
	Column int       `json:"column" yaml:"column"`
}

// String returns string representation of Token
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Kind.String(), t.Text, t.Line, t.Column)
}

// NormalizedToken is a token after Type-2 normalization: identifiers and
// literals collapsed to placeholders, the original text retained for
// fingerprinting and reporting.
type NormalizedToken struct {
	Text         string `json:"text" yaml:"text"`
	OriginalText string `json:"original_text" yaml:"original_text"`
	Line         int    `json:"line" yaml:"line"`
	Column       int    `json:"column" yaml:"column"`
}

// SourceFile bundles the token sequence of one file as handed to the engine
// by the external tokenizer.
type SourceFile struct {
	Path   string  `json:"path" yaml:"path"`
	Tokens []Token `json:"tokens" yaml:"tokens"`
}

// TokenCount returns the number of tokens in the file.
func (sf *SourceFile) TokenCount() int {
	return len(sf.Tokens)
}

// NormalizedFile bundles the Type-2-normalized token sequence of one file.
type NormalizedFile struct {
	Path   string            `json:"path" yaml:"path"`
	Tokens []NormalizedToken `json:"tokens" yaml:"tokens"`
}
