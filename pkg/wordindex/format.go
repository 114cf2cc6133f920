// Package wordindex implements the binary embedding-to-synonym index: the
// builder that computes, for every word in a general vocabulary, its
// top-k cosine-closest neighbors, and the memory-mapped reader that
// serves exact and longest-prefix lookups against it.
//
// File format (all integers little-endian):
//
//	offset                          size      contents
//	0                               4         ASCII magic "WORD"
//	4                               4         N, number of words (u32)
//	8                               4         k, synonyms per word (u32)
//	12                              N*k*8     per word i: k (WordIndex u32, similarity f32) pairs, descending similarity
//	12+N*k*8                        N*4       alpha: WordIndex of the j-th word in byte-lex order (u32)
//	12+N*k*8+N*4                    N*4       per word i: offset (u32) of its NUL-terminated string, relative to the string table
//	12+N*k*8+N*8                    4         L, length of the string table in bytes (u32)
//	12+N*k*8+N*8+4                  L         N NUL-terminated UTF-8 strings
package wordindex

import "errors"

// Magic is the 4-byte ASCII file signature.
const Magic = "WORD"

const (
	headerSize  = 12 // magic + N + k
	synPairSize = 8  // u32 WordIndex + f32 similarity
	idxSize     = 4  // u32
)

var (
	// ErrBadMagic is returned when a file does not start with Magic.
	ErrBadMagic = errors.New("wordindex: bad magic")
	// ErrTruncated is returned when the mapped file is shorter than its
	// header implies.
	ErrTruncated = errors.New("wordindex: truncated file")
	// ErrBadStringTable is returned when a string-table entry has no NUL
	// terminator within the mapped bounds.
	ErrBadStringTable = errors.New("wordindex: string table entry missing NUL terminator")
	// ErrInvalidUTF8 is returned when a string-table entry is not valid
	// UTF-8.
	ErrInvalidUTF8 = errors.New("wordindex: string table entry is not valid UTF-8")
)

// layout derives every section's byte offset from N and k.
type layout struct {
	numWords        uint32
	numSynonyms     uint32
	synonymsStart   int64
	alphaStart      int64
	offsetsStart    int64
	stringLenOffset int64
	stringsStart    int64 // valid only after the string-table length is read
}

func newLayout(numWords, numSynonyms uint32) layout {
	n, k := int64(numWords), int64(numSynonyms)
	synonymsStart := int64(headerSize)
	alphaStart := synonymsStart + n*k*synPairSize
	offsetsStart := alphaStart + n*idxSize
	stringLenOffset := offsetsStart + n*idxSize
	return layout{
		numWords:        numWords,
		numSynonyms:     numSynonyms,
		synonymsStart:   synonymsStart,
		alphaStart:      alphaStart,
		offsetsStart:    offsetsStart,
		stringLenOffset: stringLenOffset,
		stringsStart:    stringLenOffset + 4,
	}
}

// minFileLength returns the smallest file size that can hold this layout
// plus a string table of the given length.
func (l layout) minFileLength(stringTableLen uint32) int64 {
	return l.stringsStart + int64(stringTableLen)
}
