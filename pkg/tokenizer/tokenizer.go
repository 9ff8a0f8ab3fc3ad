// Package tokenizer converts raw corpus text into the token sequences the
// markov package trains on, and joins generated tokens back into text. Word
// and character granularities share one normalization pass so that models at
// both levels see the same cleaned input.
package tokenizer

import (
	"fmt"
	"strings"
	"unicode"
)

// Level selects the token granularity of a Tokenizer.
type Level string

const (
	// LevelWord splits normalized text on whitespace.
	LevelWord Level = "word"
	// LevelChar emits one token per rune, whitespace included.
	LevelChar Level = "char"
)

// ParseLevel maps a configuration string to a Level. It is case-insensitive
// and accepts "character" as an alias for LevelChar.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "word":
		return LevelWord, nil
	case "char", "character":
		return LevelChar, nil
	default:
		return "", fmt.Errorf("unknown tokenizer level %q", s)
	}
}

// DisplayName returns the capitalized form used in report headings.
func (l Level) DisplayName() string {
	if l == LevelChar {
		return "Character"
	}
	return "Word"
}

// Normalize lowercases text, drops punctuation and symbol runes, and folds
// newlines and tabs to single spaces. Both granularities tokenize the output
// of this function, never the raw corpus.
func Normalize(s string) string {
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			return -1
		}
		return r
	}, s)
}

// Tokenizer splits normalized text into tokens and joins generated tokens
// back into display text.
type Tokenizer interface {
	// Level reports the granularity this tokenizer operates at.
	Level() Level
	// Tokens splits normalized text into an ordered token sequence.
	Tokens(text string) []string
	// Join renders a generated token sequence as human-readable text.
	Join(tokens []string) string
}

// New returns the Tokenizer for the given level.
func New(level Level) Tokenizer {
	if level == LevelChar {
		return charTokenizer{}
	}
	return wordTokenizer{}
}

type wordTokenizer struct{}

func (wordTokenizer) Level() Level { return LevelWord }

func (wordTokenizer) Tokens(text string) []string {
	return strings.Fields(text)
}

func (wordTokenizer) Join(tokens []string) string {
	return strings.Join(tokens, " ")
}

type charTokenizer struct{}

func (charTokenizer) Level() Level { return LevelChar }

func (charTokenizer) Tokens(text string) []string {
	tokens := make([]string, 0, len(text))
	for _, r := range text {
		tokens = append(tokens, string(r))
	}
	return tokens
}

func (charTokenizer) Join(tokens []string) string {
	return strings.Join(tokens, "")
}
