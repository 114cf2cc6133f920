package wordindex

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sort"
	"unicode/utf8"

	"github.com/edsrzf/mmap-go"

	"github.com/quillpeak/qsim/pkg/wordvec"
)

// Synonym is a single neighbor entry: the neighboring word and its cosine
// similarity to the word that was looked up.
type Synonym struct {
	Word       wordvec.WordIndex
	Similarity float32
}

// Index is a memory-mapped, read-only view of a built word-synonym file.
// It implements wordvec.Vocabulary so callers can treat it and an
// in-memory build-time vocabulary interchangeably.
type Index struct {
	data   mmap.MMap
	file   *os.File
	layout layout
}

var _ wordvec.Vocabulary = (*Index)(nil)

// Open memory-maps path and validates its header, alpha section, and
// string table bounds before returning. The file remains mapped until
// Close is called.
func Open(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wordindex: opening %s: %w", path, err)
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("wordindex: mapping %s: %w", path, err)
	}

	idx := &Index{data: data, file: f}
	if err := idx.validate(); err != nil {
		idx.Close()
		return nil, err
	}
	return idx, nil
}

// Close unmaps the file and releases the underlying file handle.
func (idx *Index) Close() error {
	var mapErr, fileErr error
	if idx.data != nil {
		mapErr = idx.data.Unmap()
	}
	if idx.file != nil {
		fileErr = idx.file.Close()
	}
	if mapErr != nil {
		return fmt.Errorf("wordindex: unmapping: %w", mapErr)
	}
	if fileErr != nil {
		return fmt.Errorf("wordindex: closing file: %w", fileErr)
	}
	return nil
}

func (idx *Index) validate() error {
	if len(idx.data) < headerSize {
		return ErrTruncated
	}
	if string(idx.data[0:4]) != Magic {
		return ErrBadMagic
	}
	n := binary.LittleEndian.Uint32(idx.data[4:8])
	k := binary.LittleEndian.Uint32(idx.data[8:12])
	idx.layout = newLayout(n, k)

	if int64(len(idx.data)) < idx.layout.stringLenOffset+4 {
		return ErrTruncated
	}
	strLen := binary.LittleEndian.Uint32(idx.data[idx.layout.stringLenOffset : idx.layout.stringLenOffset+4])
	if int64(len(idx.data)) < idx.layout.minFileLength(strLen) {
		return ErrTruncated
	}

	table := idx.stringTable(strLen)
	for i := uint32(0); i < n; i++ {
		off := idx.stringOffset(i)
		if int64(off) > int64(len(table)) {
			return ErrBadStringTable
		}
		rest := table[off:]
		nul := bytes.IndexByte(rest, 0)
		if nul < 0 {
			return ErrBadStringTable
		}
		if !utf8.Valid(rest[:nul]) {
			return ErrInvalidUTF8
		}
	}
	return nil
}

// Len returns the number of words in the index.
func (idx *Index) Len() int { return int(idx.layout.numWords) }

// K returns the number of synonyms stored per word.
func (idx *Index) K() int { return int(idx.layout.numSynonyms) }

func (idx *Index) stringTable(strLen uint32) []byte {
	start := idx.layout.stringsStart
	return idx.data[start : start+int64(strLen)]
}

func (idx *Index) currentStringTable() []byte {
	strLen := binary.LittleEndian.Uint32(idx.data[idx.layout.stringLenOffset : idx.layout.stringLenOffset+4])
	return idx.stringTable(strLen)
}

func (idx *Index) stringOffset(i uint32) uint32 {
	pos := idx.layout.offsetsStart + int64(i)*idxSize
	return binary.LittleEndian.Uint32(idx.data[pos : pos+4])
}

// Word returns the text of the word at index i. It panics if i is out of
// range, matching slice-indexing semantics elsewhere in the package.
func (idx *Index) Word(i wordvec.WordIndex) string {
	table := idx.currentStringTable()
	off := idx.stringOffset(uint32(i))
	rest := table[off:]
	nul := bytes.IndexByte(rest, 0)
	return string(rest[:nul])
}

// alphaWordIndex returns the WordIndex of the word at the j-th position
// in alphabetical order.
func (idx *Index) alphaWordIndex(j int) wordvec.WordIndex {
	pos := idx.layout.alphaStart + int64(j)*idxSize
	return wordvec.WordIndex(binary.LittleEndian.Uint32(idx.data[pos : pos+4]))
}

// Index returns the WordIndex of word via exact binary search over the
// alphabetical permutation. The comparison is byte-exact (case-sensitive).
func (idx *Index) Index(word string) (wordvec.WordIndex, bool) {
	n := int(idx.layout.numWords)
	j := sort.Search(n, func(j int) bool {
		return idx.Word(idx.alphaWordIndex(j)) >= word
	})
	if j < n && idx.Word(idx.alphaWordIndex(j)) == word {
		return idx.alphaWordIndex(j), true
	}
	return 0, false
}

// IndexStarting performs a longest-prefix lookup: it finds the longest
// prefix of s (s itself, then s with trailing bytes dropped one at a
// time) that exactly matches a word in the index, returning that word's
// index and the number of bytes of s it consumed. It returns false if no
// non-empty prefix matches.
//
// This mirrors the punctuation-aware backoff the tokenizer needs: given
// "wherefore?" it first tries the whole token, then "wherefore" (after
// trimming the trailing "?"), before giving up.
func (idx *Index) IndexStarting(s string) (wordvec.WordIndex, int, bool) {
	for length := len(s); length > 0; length = prevRuneBoundary(s, length) {
		candidate := s[:length]
		if wi, ok := idx.Index(candidate); ok {
			return wi, length, true
		}
	}
	return 0, 0, false
}

// prevRuneBoundary returns the largest rune boundary in s strictly less
// than length, trimming exactly one trailing byte sequence worth of a
// rune at a time rather than one raw byte, so multi-byte UTF-8 sequences
// are never split.
func prevRuneBoundary(s string, length int) int {
	if length <= 0 {
		return 0
	}
	_, size := utf8.DecodeLastRuneInString(s[:length])
	if size <= 0 {
		return length - 1
	}
	return length - size
}

// Synonyms returns the up-to-K nearest neighbors stored for word i,
// ordered by descending similarity (the order they were written in).
func (idx *Index) Synonyms(i wordvec.WordIndex) []Synonym {
	k := int(idx.layout.numSynonyms)
	out := make([]Synonym, 0, k)
	base := idx.layout.synonymsStart + int64(i)*int64(k)*synPairSize
	for s := 0; s < k; s++ {
		pos := base + int64(s)*synPairSize
		wordIdx := binary.LittleEndian.Uint32(idx.data[pos : pos+4])
		bits := binary.LittleEndian.Uint32(idx.data[pos+4 : pos+8])
		sim := math.Float32frombits(bits)
		out = append(out, Synonym{Word: wordvec.WordIndex(wordIdx), Similarity: sim})
	}
	return out
}
