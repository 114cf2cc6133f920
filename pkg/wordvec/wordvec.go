// Package wordvec loads a pretrained word-embedding file (one word per
// line, space-separated fields: the word followed by its vector
// components) into an in-memory vocabulary and a parallel table of
// magnitude-cached vectors.
//
// The vocabulary preserves file order, which by upstream convention lists
// the most common word first — rarity of a word is monotone in its
// WordIndex, a property the scoring engine (pkg/scoring) relies on.
package wordvec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/quillpeak/qsim/pkg/math/vector"
)

// WordIndex identifies a word in a general vocabulary. Smaller values are
// more common (closer to the front of the source embedding file).
type WordIndex uint32

// ErrBadEmbeddingLine is returned when a line's vector component is not a
// valid decimal number.
var ErrBadEmbeddingLine = errors.New("wordvec: malformed embedding line")

// Vocabulary is the capability set shared by the in-memory, build-time
// vocabulary (this package) and the mmap-backed vocabulary
// (pkg/wordindex): length, word-by-index, and index-by-word. Iteration
// over all indices is not part of it; only MemoryVocabulary has All.
type Vocabulary interface {
	Len() int
	Word(i WordIndex) string
	Index(word string) (WordIndex, bool)
}

// Vec is a dense embedding vector with a precomputed magnitude.
type Vec struct {
	Components []float64
	Magnitude  float64
}

// NewVec builds a Vec, precomputing its magnitude.
func NewVec(components []float64) Vec {
	return Vec{Components: components, Magnitude: vector.Magnitude(components)}
}

// Cosine returns the cosine similarity between v and other, treating either
// zero-magnitude vector as orthogonal to everything (similarity 0).
func (v Vec) Cosine(other Vec) float64 {
	return vector.CosineSimilarity(v.Components, v.Magnitude, other.Components, other.Magnitude)
}

// MemoryVocabulary is the build-time, in-memory vocabulary produced by
// Read. Position i in words is the i-th loaded word; lookup maps a word
// back to its index, last-write-wins on duplicates.
type MemoryVocabulary struct {
	words  []string
	lookup map[string]WordIndex
}

var _ Vocabulary = (*MemoryVocabulary)(nil)

// Len returns the number of words in the vocabulary.
func (m *MemoryVocabulary) Len() int { return len(m.words) }

// Word returns the text of the word at index i.
func (m *MemoryVocabulary) Word(i WordIndex) string { return m.words[i] }

// Index returns the index of word, if present.
func (m *MemoryVocabulary) Index(word string) (WordIndex, bool) {
	i, ok := m.lookup[word]
	return i, ok
}

// All returns every WordIndex in load order, most common first.
func (m *MemoryVocabulary) All() []WordIndex {
	all := make([]WordIndex, len(m.words))
	for i := range all {
		all[i] = WordIndex(i)
	}
	return all
}

func (m *MemoryVocabulary) add(word string) WordIndex {
	idx := WordIndex(len(m.words))
	m.words = append(m.words, word)
	m.lookup[word] = idx // duplicate input: last one wins the lookup entry
	return idx
}

// Vectors holds the WordVec table parallel to a MemoryVocabulary's words.
type Vectors struct {
	vecs []Vec
}

// Get returns the vector for word index i.
func (v *Vectors) Get(i WordIndex) Vec { return v.vecs[i] }

// Len returns the number of vectors stored.
func (v *Vectors) Len() int { return len(v.vecs) }

// Read parses an embedding file, one word per line, fields separated by
// single spaces: the word followed by its vector components in decimal
// notation. Tabs or repeated spaces are not accepted as separators. If max
// is non-nil, loading stops after that many words.
//
// Duplicate words silently overwrite the prior lookup entry (last wins)
// but both rows remain in the returned Vectors table at their original
// index — callers must treat duplicate input in the source file as
// malformed upstream data, not as something this reader repairs.
func Read(path string, max *int) (*MemoryVocabulary, *Vectors, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("wordvec: opening %s: %w", path, err)
	}
	defer f.Close()

	vocab := &MemoryVocabulary{lookup: make(map[string]WordIndex)}
	vecs := &Vectors{}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, " ")
		if len(fields) < 2 {
			return nil, nil, fmt.Errorf("wordvec: line %d: %w", lineNo, ErrBadEmbeddingLine)
		}
		word := fields[0]
		components := make([]float64, 0, len(fields)-1)
		for _, raw := range fields[1:] {
			val, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("wordvec: line %d, field %q: %w: %v", lineNo, raw, ErrBadEmbeddingLine, err)
			}
			components = append(components, val)
		}
		vocab.add(word)
		vecs.vecs = append(vecs.vecs, NewVec(components))

		if max != nil && vocab.Len() == *max {
			break
		}
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return nil, nil, fmt.Errorf("wordvec: reading %s: %w", path, err)
	}
	return vocab, vecs, nil
}
