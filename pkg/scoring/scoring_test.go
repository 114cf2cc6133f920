package scoring

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quillpeak/qsim/pkg/keyword"
	"github.com/quillpeak/qsim/pkg/queststore"
	"github.com/quillpeak/qsim/pkg/tokenize"
	"github.com/quillpeak/qsim/pkg/wordindex"
	"github.com/quillpeak/qsim/pkg/wordvec"
)

type fakeVocab struct {
	index map[string]wordvec.WordIndex
	words map[wordvec.WordIndex]string
}

func newFakeVocab(entries map[string]wordvec.WordIndex) fakeVocab {
	v := fakeVocab{index: entries, words: make(map[wordvec.WordIndex]string)}
	for w, i := range entries {
		v.words[i] = w
	}
	return v
}

func (v fakeVocab) Word(i wordvec.WordIndex) string { return v.words[i] }

func (v fakeVocab) IndexStarting(s string) (wordvec.WordIndex, int, bool) {
	best := -1
	var bestIdx wordvec.WordIndex
	for w, i := range v.index {
		if len(s) >= len(w) && s[:len(w)] == w && len(w) > best {
			best = len(w)
			bestIdx = i
		}
	}
	if best < 0 {
		return 0, 0, false
	}
	return bestIdx, best, true
}

type fakeKeywords struct {
	classes [][]string
}

func (k fakeKeywords) FindKeywordStarting(s string) (keyword.Index, int, bool) {
	for i, class := range k.classes {
		for _, form := range class {
			if len(s) >= len(form) && s[:len(form)] == form {
				return keyword.Index(i), len(form), true
			}
		}
	}
	return 0, 0, false
}

func (k fakeKeywords) Canonical(idx keyword.Index) string { return k.classes[idx][0] }

// fakeSynonyms returns a fixed neighbor list per word, standing in for a
// built wordindex.Index.
type fakeSynonyms struct {
	table map[wordvec.WordIndex][]wordindex.Synonym
}

func (f fakeSynonyms) Synonyms(i wordvec.WordIndex) []wordindex.Synonym { return f.table[i] }

func scenarioVocab() fakeVocab {
	return newFakeVocab(map[string]wordvec.WordIndex{
		"is":      50,
		"the":     60,
		"vaccine": 120,
		"phone":   250,
		"network": 600,
	})
}

func scenarioKeywords() fakeKeywords {
	return fakeKeywords{classes: [][]string{{"covid", "covid-19", "coronavirus"}}}
}

func newScenarioStore(t *testing.T, vocab tokenize.Vocabulary, kw tokenize.Keywords) *queststore.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.log")
	s, err := queststore.Open(path, vocab, kw)
	require.NoError(t, err)
	return s
}

func TestInsertAndRetrieve(t *testing.T) {
	vocab, kw := scenarioVocab(), scenarioKeywords()
	store := newScenarioStore(t, vocab, kw)
	noSyn := fakeSynonyms{}

	_, err := store.Add("7", "covid vaccine")
	require.NoError(t, err)

	parts := tokenize.Tokenize("covid", vocab, kw)
	ranked := FindSimilar(parts, store, noSyn)
	require.Equal(t, []Scored{{ID: 0, Score: ScoreKeyword}}, ranked)

	parts = tokenize.Tokenize("vaccine", vocab, kw)
	ranked = FindSimilar(parts, store, noSyn)
	require.Equal(t, []Scored{{ID: 0, Score: scoreKnown(120)}}, ranked)

	text, ok := store.Lookup("7")
	require.True(t, ok)
	require.Equal(t, "covid vaccine", text)
}

func TestSynonymExpansionWithDeduplication(t *testing.T) {
	vocab, kw := scenarioVocab(), scenarioKeywords()
	store := newScenarioStore(t, vocab, kw)
	syn := fakeSynonyms{table: map[wordvec.WordIndex][]wordindex.Synonym{
		250: {{Word: 600, Similarity: 0.9}}, // phone -> network
	}}

	_, err := store.Add("Q1", "phone")
	require.NoError(t, err)
	_, err = store.Add("Q2", "network")
	require.NoError(t, err)
	_, err = store.Add("Q3", "phone network")
	require.NoError(t, err)

	parts := tokenize.Tokenize("phone", vocab, kw)
	ranked := FindSimilar(parts, store, syn)

	base := scoreKnown(250) // phone's own rarity bracket

	byID := map[queststore.InternalID]float64{}
	for _, r := range ranked {
		byID[r.ID] = r.Score
	}
	require.InDelta(t, base, byID[0], 1e-9, "Q1 scored from phone's own posting list")
	require.InDelta(t, base, byID[2], 1e-9, "Q3 credited once from phone's own posting list, not again via synonym")
	// Similarities are stored as float32, so 0.9 reaches the scorer as float32(0.9).
	require.InDelta(t, base*float64(float32(0.9)), byID[1], 1e-9, "Q2 scored via the phone->network synonym at 0.9 similarity")

	require.Equal(t, []queststore.InternalID{0, 2, 1}, []queststore.InternalID{ranked[0].ID, ranked[1].ID, ranked[2].ID})
}

func TestStopwordExclusion(t *testing.T) {
	vocab, kw := scenarioVocab(), scenarioKeywords()
	store := newScenarioStore(t, vocab, kw)
	_, err := store.Add("1", "is the vaccine")
	require.NoError(t, err)

	parts := tokenize.Tokenize("is the", vocab, kw)
	ranked := FindSimilar(parts, store, fakeSynonyms{})
	require.Empty(t, ranked)
}

func TestReplayDeterminism(t *testing.T) {
	vocab, kw := scenarioVocab(), scenarioKeywords()
	path := filepath.Join(t.TempDir(), "store.log")
	store, err := queststore.Open(path, vocab, kw)
	require.NoError(t, err)
	_, err = store.Add("7", "covid vaccine")
	require.NoError(t, err)

	before := FindSimilar(tokenize.Tokenize("covid", vocab, kw), store, fakeSynonyms{})

	reopened, err := queststore.Open(path, vocab, kw)
	require.NoError(t, err)
	after := FindSimilar(tokenize.Tokenize("covid", vocab, kw), reopened, fakeSynonyms{})

	require.Equal(t, before, after)
}

func TestNoDoubleInsertionAcrossRepeatedTokenInOneQuestion(t *testing.T) {
	// Regression test for the known source anomaly (spec §9): a question
	// mentioning the same word twice must only ever post its id once per
	// posting list, never twice.
	vocab, kw := scenarioVocab(), scenarioKeywords()
	store := newScenarioStore(t, vocab, kw)
	_, err := store.Add("1", "vaccine vaccine vaccine")
	require.NoError(t, err)

	list, ok := store.SentencesContainingGeneralLexiconWord(120)
	require.True(t, ok)
	require.Equal(t, []queststore.InternalID{0}, list, "id posted once, not once per mention")

	parts := tokenize.Tokenize("vaccine", vocab, kw)
	ranked := FindSimilar(parts, store, fakeSynonyms{})
	require.Len(t, ranked, 1)
	require.Equal(t, scoreKnown(120), ranked[0].Score, "one posting-list credit, not three")
}

func TestConvertToExternal(t *testing.T) {
	vocab, kw := scenarioVocab(), scenarioKeywords()
	store := newScenarioStore(t, vocab, kw)
	_, err := store.Add("ext-7", "covid")
	require.NoError(t, err)

	ranked := FindSimilar(tokenize.Tokenize("covid", vocab, kw), store, fakeSynonyms{})
	external := ConvertToExternal(ranked, store)
	require.Equal(t, []ScoredExternal{{ExternalID: "ext-7", Score: ScoreKeyword}}, external)
}
