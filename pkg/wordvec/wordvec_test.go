package wordvec

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempEmbeddings(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "embeddings.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestReadPreservesOrderAndIndex(t *testing.T) {
	path := writeTempEmbeddings(t, "the 1 0\ncat 0 1\ndog 1 1\n")

	vocab, vecs, err := Read(path, nil)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if vocab.Len() != 3 || vecs.Len() != 3 {
		t.Fatalf("expected 3 words, got vocab=%d vecs=%d", vocab.Len(), vecs.Len())
	}
	for _, w := range []string{"the", "cat", "dog"} {
		idx, ok := vocab.Index(w)
		if !ok {
			t.Fatalf("expected %q to be present", w)
		}
		if vocab.Word(idx) != w {
			t.Errorf("index(%q)=%d but word(%d)=%q", w, idx, idx, vocab.Word(idx))
		}
	}
	if idx, _ := vocab.Index("the"); idx != 0 {
		t.Errorf("expected 'the' to be index 0 (first in file), got %d", idx)
	}
}

func TestReadMaxWords(t *testing.T) {
	path := writeTempEmbeddings(t, "a 1 0\nb 0 1\nc 1 1\n")
	max := 2
	vocab, vecs, err := Read(path, &max)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if vocab.Len() != 2 || vecs.Len() != 2 {
		t.Fatalf("expected 2 words capped, got %d", vocab.Len())
	}
}

func TestReadDuplicateWordLastLookupWins(t *testing.T) {
	path := writeTempEmbeddings(t, "cat 1 0\ncat 0 1\n")
	vocab, vecs, err := Read(path, nil)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if vecs.Len() != 2 {
		t.Fatalf("expected both duplicate rows retained, got %d", vecs.Len())
	}
	idx, ok := vocab.Index("cat")
	if !ok || idx != 1 {
		t.Errorf("expected lookup('cat') to resolve to the last occurrence (1), got %d ok=%v", idx, ok)
	}
}

func TestReadMalformedNumber(t *testing.T) {
	path := writeTempEmbeddings(t, "cat 1 notanumber\n")
	if _, _, err := Read(path, nil); err == nil {
		t.Fatal("expected an error for a non-numeric vector component")
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, _, err := Read(filepath.Join(t.TempDir(), "missing.txt"), nil); err == nil {
		t.Fatal("expected an error opening a missing file")
	}
}

func TestCosineOfZeroVectorIsZero(t *testing.T) {
	zero := NewVec([]float64{0, 0, 0})
	other := NewVec([]float64{1, 2, 3})
	if got := zero.Cosine(other); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}
