// Package scoring implements the engine that turns a tokenized query
// into a ranked list of candidate questions: per-token-class weighted
// accumulation over the posting-list store, with synonym expansion for
// known-vocabulary tokens guarded by a per-token "already credited" set
// so a question is never scored twice for the same source token.
package scoring

import (
	"sort"

	"github.com/quillpeak/qsim/pkg/queststore"
	"github.com/quillpeak/qsim/pkg/tokenize"
	"github.com/quillpeak/qsim/pkg/wordindex"
	"github.com/quillpeak/qsim/pkg/wordvec"
)

// Weights used by the scoring model. Exported so callers can reference
// them without duplicating the numbers.
const (
	ScoreKeyword = 10.0
	ScoreUnique  = 10.0
)

// knownWordIndexThreshold mirrors pkg/queststore's insertion-time
// stopword filter: a token at or below it is never scored, since it was never
// indexed in the first place.
const knownWordIndexThreshold = 100

// scoreKnown is the step function of rarity applied to a Known(w) token's
// own posting-list contribution and, scaled by similarity, to each of its
// synonyms' contributions.
func scoreKnown(w wordvec.WordIndex) float64 {
	switch {
	case w < 100:
		return 1.0
	case w < 500:
		return 2.0
	case w < 1000:
		return 3.0
	case w < 10000:
		return 4.0
	case w < 100000:
		return 6.0
	default:
		return 8.0
	}
}

// Scored pairs an internal question id with its accumulated score.
type Scored struct {
	ID    queststore.InternalID
	Score float64
}

// ScoredExternal pairs a caller-supplied external id with a score, the
// final form returned to API callers.
type ScoredExternal struct {
	ExternalID string
	Score      float64
}

// sentenceScores accumulates per-question scores across every token of
// one query.
type sentenceScores struct {
	scores map[queststore.InternalID]float64
}

func newSentenceScores() *sentenceScores {
	return &sentenceScores{scores: make(map[queststore.InternalID]float64)}
}

func (s *sentenceScores) add(list []queststore.InternalID, points float64) {
	for _, id := range list {
		s.scores[id] += points
	}
}

// addAvoidingTwice adds points to every id in list not already present in
// credited, marking each one it does touch as credited.
func (s *sentenceScores) addAvoidingTwice(list []queststore.InternalID, points float64, credited map[queststore.InternalID]struct{}) {
	for _, id := range list {
		if _, already := credited[id]; already {
			continue
		}
		credited[id] = struct{}{}
		s.scores[id] += points
	}
}

func (s *sentenceScores) extractOrdered() []Scored {
	out := make([]Scored, 0, len(s.scores))
	for id, score := range s.scores {
		if score == 0 {
			continue
		}
		out = append(out, Scored{ID: id, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Synonyms is the subset of pkg/wordindex's reader the scorer needs to
// expand a known word into its precomputed neighbors.
type Synonyms interface {
	Synonyms(i wordvec.WordIndex) []wordindex.Synonym
}

// FindSimilar scores every token of a tokenized query against store's
// posting lists, expanding known-vocabulary tokens through syn, and
// returns all ids with nonzero score ordered by descending score, ties
// broken by ascending internal id.
func FindSimilar(parts []tokenize.SentencePart, store *queststore.Store, syn Synonyms) []Scored {
	scores := newSentenceScores()

	for _, p := range parts {
		switch p.Kind {
		case tokenize.KindListed:
			if list, ok := store.SentencesContainingListedWord(p.Keyword); ok {
				scores.add(list, ScoreKeyword)
			}
		case tokenize.KindKnown:
			if p.Word <= knownWordIndexThreshold {
				continue // stopword: never indexed, never scored
			}
			base := scoreKnown(p.Word)
			credited := make(map[queststore.InternalID]struct{})
			if list, ok := store.SentencesContainingGeneralLexiconWord(p.Word); ok {
				scores.addAvoidingTwice(list, base, credited)
			}
			for _, s := range syn.Synonyms(p.Word) {
				if list, ok := store.SentencesContainingGeneralLexiconWord(s.Word); ok {
					scores.addAvoidingTwice(list, base*float64(s.Similarity), credited)
				}
			}
		case tokenize.KindUnknown:
			if list, ok := store.SentencesContainingUnknownWord(p.Text); ok {
				scores.add(list, ScoreUnique)
			}
		}
	}

	return scores.extractOrdered()
}

// ConvertToExternal remaps a ranked internal-id list to external ids via
// store, preserving order. An id with no external mapping (should not
// happen for a consistent store) is dropped rather than panicking.
func ConvertToExternal(ranked []Scored, store *queststore.Store) []ScoredExternal {
	out := make([]ScoredExternal, 0, len(ranked))
	for _, r := range ranked {
		if ext, ok := store.ExternalID(r.ID); ok {
			out = append(out, ScoredExternal{ExternalID: ext, Score: r.Score})
		}
	}
	return out
}
