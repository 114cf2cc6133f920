package wordindex

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/quillpeak/qsim/pkg/topk"
	"github.com/quillpeak/qsim/pkg/wordvec"
)

// BuildOptions controls index construction.
type BuildOptions struct {
	// K is the number of synonyms kept per word.
	K int
	// Workers bounds the number of goroutines computing cosine scans. A
	// value <= 0 defaults to runtime.GOMAXPROCS(0).
	Workers int
}

// Build computes, for every word in vocab, its K cosine-nearest neighbors
// against vecs, and streams the resulting index to w in the format
// documented in format.go.
//
// The cosine scan is the expensive step (O(N^2·d)) and is parallelized
// across Workers goroutines, each owning a contiguous shard of word
// indices; every section is then written out strictly in word-index
// order. This trades the single-word-of-memory streaming footprint a
// purely sequential builder could achieve for the ability to use every
// core during the scan: the per-word top-k buffers for the whole
// vocabulary (O(N·k)) are held in memory between the scan and the
// write-out passes.
func Build(w io.Writer, vocab *wordvec.MemoryVocabulary, vecs *wordvec.Vectors, opts BuildOptions) error {
	n := vocab.Len()
	if n == 0 {
		return fmt.Errorf("wordindex: build: empty vocabulary")
	}
	k := opts.K
	if k < 0 {
		k = 0
	}
	if k > n-1 {
		k = n - 1
	}

	synonyms, err := computeSynonyms(vocab, vecs, k, opts.Workers)
	if err != nil {
		return err
	}

	alpha := alphabeticalOrder(vocab)

	bw := bufio.NewWriter(w)

	if err := writeHeader(bw, n, k); err != nil {
		return err
	}
	if err := writeSynonyms(bw, synonyms); err != nil {
		return err
	}
	if err := writeAlpha(bw, alpha); err != nil {
		return err
	}
	if err := writeStrings(bw, vocab); err != nil {
		return err
	}
	return bw.Flush()
}

// computeSynonyms runs the cosine scan for every word, sharding the word
// range across a bounded worker pool via errgroup. Each worker only reads
// shared, already-built inputs, so no synchronization beyond the shard
// boundaries is required.
func computeSynonyms(vocab *wordvec.MemoryVocabulary, vecs *wordvec.Vectors, k, workers int) ([][]topk.Item, error) {
	n := vocab.Len()
	results := make([][]topk.Item, n)

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	chunk := (n + workers - 1) / workers

	g := new(errgroup.Group)
	for start := 0; start < n; start += chunk {
		start := start
		end := start + chunk
		if end > n {
			end = n
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				results[i] = nearestNeighbors(vecs, wordvec.WordIndex(i), n, k)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("wordindex: computing synonyms: %w", err)
	}
	return results, nil
}

// nearestNeighbors scans every other word against word i and keeps the k
// closest by cosine similarity, via a bounded top-k selector.
func nearestNeighbors(vecs *wordvec.Vectors, i wordvec.WordIndex, n, k int) []topk.Item {
	self := vecs.Get(i)
	// Selector keeps the k smallest of whatever is added; negate cosine
	// similarity so "smallest negated similarity" means "largest similarity".
	sel := topk.New(k)
	for j := 0; j < n; j++ {
		if wordvec.WordIndex(j) == i {
			continue
		}
		sim := self.Cosine(vecs.Get(wordvec.WordIndex(j)))
		sel.Add(topk.Item{ID: uint32(j), Score: float32(-sim)})
	}
	kept := sel.IntoSorted() // ascending negated similarity == descending similarity
	out := make([]topk.Item, len(kept))
	for idx, it := range kept {
		out[idx] = topk.Item{ID: it.ID, Score: -it.Score}
	}
	return out
}

// alphabeticalOrder returns the WordIndex of every word sorted by its
// text, byte-lexicographically.
func alphabeticalOrder(vocab *wordvec.MemoryVocabulary) []wordvec.WordIndex {
	n := vocab.Len()
	order := make([]wordvec.WordIndex, n)
	for i := range order {
		order[i] = wordvec.WordIndex(i)
	}
	sort.Slice(order, func(a, b int) bool {
		return vocab.Word(order[a]) < vocab.Word(order[b])
	})
	return order
}

func writeHeader(w *bufio.Writer, n, k int) error {
	if _, err := w.WriteString(Magic); err != nil {
		return fmt.Errorf("wordindex: writing magic: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(n)); err != nil {
		return fmt.Errorf("wordindex: writing word count: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(k)); err != nil {
		return fmt.Errorf("wordindex: writing synonym count: %w", err)
	}
	return nil
}

func writeSynonyms(w *bufio.Writer, synonyms [][]topk.Item) error {
	for _, row := range synonyms {
		for _, item := range row {
			if err := binary.Write(w, binary.LittleEndian, item.ID); err != nil {
				return fmt.Errorf("wordindex: writing synonym id: %w", err)
			}
			if err := binary.Write(w, binary.LittleEndian, item.Score); err != nil {
				return fmt.Errorf("wordindex: writing synonym similarity: %w", err)
			}
		}
	}
	return nil
}

func writeAlpha(w *bufio.Writer, alpha []wordvec.WordIndex) error {
	for _, idx := range alpha {
		if err := binary.Write(w, binary.LittleEndian, uint32(idx)); err != nil {
			return fmt.Errorf("wordindex: writing alpha entry: %w", err)
		}
	}
	return nil
}

func writeStrings(w *bufio.Writer, vocab *wordvec.MemoryVocabulary) error {
	n := vocab.Len()
	offsets := make([]uint32, n)
	var table []byte
	for i := 0; i < n; i++ {
		offsets[i] = uint32(len(table))
		table = append(table, vocab.Word(wordvec.WordIndex(i))...)
		table = append(table, 0)
	}
	for _, off := range offsets {
		if err := binary.Write(w, binary.LittleEndian, off); err != nil {
			return fmt.Errorf("wordindex: writing string offset: %w", err)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(table))); err != nil {
		return fmt.Errorf("wordindex: writing string table length: %w", err)
	}
	if _, err := w.Write(table); err != nil {
		return fmt.Errorf("wordindex: writing string table: %w", err)
	}
	return nil
}
