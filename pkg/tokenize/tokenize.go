// Package tokenize splits free text into a sequence of classified parts:
// curated keywords, vocabulary words, and unrecognized tokens. At each
// position it checks the keyword table (first matching surface form)
// before the general vocabulary (longest matching word), falling back to a raw token
// boundary (whitespace, with trailing punctuation trimmed) only when
// neither matches.
package tokenize

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/quillpeak/qsim/pkg/keyword"
	"github.com/quillpeak/qsim/pkg/wordvec"
)

// PartKind distinguishes the three cases a SentencePart can hold.
type PartKind int

const (
	// KindListed marks a match against the curated keyword table.
	KindListed PartKind = iota
	// KindKnown marks a match against the general vocabulary.
	KindKnown
	// KindUnknown marks a raw, unrecognized token.
	KindUnknown
)

// SentencePart is one classified piece of a tokenized sentence. Exactly
// one of Keyword, Word, or Text is meaningful, selected by Kind — this is
// a closed sum type expressed as a tagged struct rather than an
// interface, since there is nothing to add without also touching Kind.
type SentencePart struct {
	Kind    PartKind
	Keyword keyword.Index
	Word    wordvec.WordIndex
	Text    string // populated only when Kind == KindUnknown
}

// Listed constructs a SentencePart for a curated-keyword match.
func Listed(idx keyword.Index) SentencePart { return SentencePart{Kind: KindListed, Keyword: idx} }

// Known constructs a SentencePart for a general-vocabulary match.
func Known(idx wordvec.WordIndex) SentencePart { return SentencePart{Kind: KindKnown, Word: idx} }

// Unknown constructs a SentencePart for an unrecognized raw token.
func Unknown(text string) SentencePart { return SentencePart{Kind: KindUnknown, Text: text} }

// Vocabulary is the subset of pkg/wordindex's reader this package needs:
// longest-prefix lookup and word text, satisfied by *wordindex.Index.
type Vocabulary interface {
	IndexStarting(s string) (wordvec.WordIndex, int, bool)
	Word(i wordvec.WordIndex) string
}

// Keywords is the subset of pkg/keyword's table this package needs,
// satisfied by *keyword.Table.
type Keywords interface {
	FindKeywordStarting(s string) (keyword.Index, int, bool)
	Canonical(idx keyword.Index) string
}

// Tokenize lowercases and trims text, then repeatedly consumes a match at
// the front of what remains: first a curated keyword (the first surface
// form that matches), then the longest general-vocabulary word, then (if
// neither matches) a raw token up to the next whitespace boundary. The
// raw token's text has trailing punctuation trimmed off, but that
// punctuation is still consumed.
func Tokenize(text string, words Vocabulary, keywords Keywords) []SentencePart {
	var parts []SentencePart
	left := strings.TrimSpace(strings.ToLower(text))
	for left != "" {
		var used int
		if idx, n, ok := keywords.FindKeywordStarting(left); ok {
			parts = append(parts, Listed(idx))
			used = n
		} else if idx, n, ok := words.IndexStarting(left); ok {
			parts = append(parts, Known(idx))
			used = n
		} else {
			n := lenNextToken(left)
			parts = append(parts, Unknown(left[:n]))
			// The literal drops trailing punctuation, but consumption runs
			// through it up to the next whitespace.
			used = len(left)
			if end := strings.IndexFunc(left[n:], unicode.IsSpace); end >= 0 {
				used = n + end
			}
		}
		left = strings.TrimLeftFunc(left[used:], unicode.IsSpace)
	}
	return parts
}

// lenNextToken returns the length, in bytes, of the next raw token in s:
// the run up to (but not including) the next whitespace, with any
// trailing run of non-alphanumeric runes trimmed off — so "wherefore?,"
// yields "wherefore", not "wherefore?,".
func lenNextToken(s string) int {
	lastWasNotPunctuation := false
	lastStartPunctuation := 0
	for pos, r := range s {
		switch {
		case unicode.IsSpace(r):
			if lastWasNotPunctuation || lastStartPunctuation == 0 {
				return pos
			}
			return lastStartPunctuation
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			lastWasNotPunctuation = true
		default:
			if lastWasNotPunctuation {
				lastWasNotPunctuation = false
				lastStartPunctuation = pos
			}
		}
	}
	if lastWasNotPunctuation || lastStartPunctuation == 0 {
		return len(s)
	}
	return lastStartPunctuation
}

// Explain renders parts as a human-readable debug trace, one line per
// part, resolving keyword and vocabulary indices back to text. It
// supplements the tokenizer for interactive inspection; nothing in the
// scoring path depends on it.
func Explain(parts []SentencePart, words Vocabulary, keywords Keywords) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		switch p.Kind {
		case KindListed:
			out = append(out, fmt.Sprintf("keyword %d: %s", p.Keyword, keywords.Canonical(p.Keyword)))
		case KindKnown:
			out = append(out, fmt.Sprintf("word %d: %s", p.Word, words.Word(p.Word)))
		default:
			out = append(out, fmt.Sprintf("unknown: %s", p.Text))
		}
	}
	return out
}
