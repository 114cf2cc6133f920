// Package queststore holds the inverted-index posting-list store: three
// maps from token class to an ordered list of questions that mention it,
// plus the parallel id-to-text and id-to-external-id tables, backed by an
// append-only log that is replayed in full on startup.
package queststore

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/quillpeak/qsim/pkg/keyword"
	"github.com/quillpeak/qsim/pkg/tokenize"
	"github.com/quillpeak/qsim/pkg/wordvec"
)

// knownWordIndexThreshold excludes the most common general-vocabulary
// words from inverted indexing entirely: a stopword policy applied at
// insertion time. The scoring engine applies the same threshold when
// deciding whether a known-word token is worth looking up at all, so a
// word that never made it into a posting list is also never scored.
const knownWordIndexThreshold = 100

// InternalID is a densely assigned, zero-based question identifier,
// assigned in insertion order.
type InternalID uint32

// ErrMalformedLogLine is returned when a persisted log line has no TAB
// separator between its external id and its text.
var ErrMalformedLogLine = errors.New("queststore: malformed log line (missing TAB)")

// parsedQuestion is the tokenization of a question reduced to the three
// sets the posting lists key on.
type parsedQuestion struct {
	text       string
	keywords   map[keyword.Index]struct{}
	knownWords map[wordvec.WordIndex]struct{}
	unknown    map[string]struct{}
}

func parseQuestion(text string, vocab tokenize.Vocabulary, keywords tokenize.Keywords) parsedQuestion {
	parts := tokenize.Tokenize(text, vocab, keywords)
	pq := parsedQuestion{
		text:       text,
		keywords:   make(map[keyword.Index]struct{}),
		knownWords: make(map[wordvec.WordIndex]struct{}),
		unknown:    make(map[string]struct{}),
	}
	for _, p := range parts {
		switch p.Kind {
		case tokenize.KindListed:
			pq.keywords[p.Keyword] = struct{}{}
		case tokenize.KindKnown:
			if p.Word > knownWordIndexThreshold {
				pq.knownWords[p.Word] = struct{}{}
			}
		case tokenize.KindUnknown:
			pq.unknown[p.Text] = struct{}{}
		}
	}
	return pq
}

// Store is the posting-list store. All mutation and lookup methods
// acquire a single exclusive lock, matching the single-lock concurrency
// model the engine runs under.
type Store struct {
	mu sync.Mutex

	path string

	vocab    tokenize.Vocabulary
	keywords tokenize.Keywords

	questions    []parsedQuestion
	externalIDs  []string
	containingKw map[keyword.Index][]InternalID
	containingKn map[wordvec.WordIndex][]InternalID
	containingUn map[string][]InternalID
}

// Open constructs a Store backed by the log file at path, replaying it
// in full if it already exists. A malformed line aborts startup.
func Open(path string, vocab tokenize.Vocabulary, keywords tokenize.Keywords) (*Store, error) {
	s := &Store{
		path:         path,
		vocab:        vocab,
		keywords:     keywords,
		containingKw: make(map[keyword.Index][]InternalID),
		containingKn: make(map[wordvec.WordIndex][]InternalID),
		containingUn: make(map[string][]InternalID),
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("queststore: opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		externalID, text, ok := splitLogLine(line)
		if !ok {
			return nil, fmt.Errorf("queststore: replaying %s: %w", path, ErrMalformedLogLine)
		}
		s.insertInMemory(externalID, text)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("queststore: replaying %s: %w", path, err)
	}
	return s, nil
}

func splitLogLine(line string) (externalID, text string, ok bool) {
	i := strings.IndexByte(line, '\t')
	if i < 0 {
		return "", "", false
	}
	return line[:i], line[i+1:], true
}

// Add durably records the insertion to the append-only log, then
// tokenizes text and appends the result to every relevant posting list
// (skipping a consecutive duplicate of the same id within a list), and
// returns the assigned internal id.
func (s *Store) Add(externalID, text string) (InternalID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := strings.ReplaceAll(text, "\n", " ")

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, fmt.Errorf("queststore: opening log %s: %w", s.path, err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "%s\t%s\n", externalID, normalized); err != nil {
		return 0, fmt.Errorf("queststore: appending to log %s: %w", s.path, err)
	}

	return s.insertInMemory(externalID, normalized), nil
}

// insertInMemory performs the in-memory half of an insertion: tokenizing
// the text and growing the posting lists and id tables. It does not
// touch the durable log, so it is safe to call directly during replay.
func (s *Store) insertInMemory(externalID, text string) InternalID {
	pq := parseQuestion(text, s.vocab, s.keywords)
	id := InternalID(len(s.questions))

	for k := range pq.keywords {
		s.containingKw[k] = appendNoConsecutiveDup(s.containingKw[k], id)
	}
	for w := range pq.knownWords {
		s.containingKn[w] = appendNoConsecutiveDup(s.containingKn[w], id)
	}
	for u := range pq.unknown {
		s.containingUn[u] = appendNoConsecutiveDup(s.containingUn[u], id)
	}

	s.questions = append(s.questions, pq)
	s.externalIDs = append(s.externalIDs, externalID)
	return id
}

// appendNoConsecutiveDup appends id unless it already equals the list's
// current last element, preserving the "no consecutive duplicate"
// invariant each posting list maintains.
func appendNoConsecutiveDup(list []InternalID, id InternalID) []InternalID {
	if len(list) > 0 && list[len(list)-1] == id {
		return list
	}
	return append(list, id)
}

// SentencesContainingListedWord returns the posting list for a curated
// keyword class, if any question mentions it.
func (s *Store) SentencesContainingListedWord(k keyword.Index) ([]InternalID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.containingKw[k]
	return list, ok
}

// SentencesContainingGeneralLexiconWord returns the posting list for a
// general-vocabulary word, if any question mentions it (and it passed
// the stopword threshold at insertion time).
func (s *Store) SentencesContainingGeneralLexiconWord(w wordvec.WordIndex) ([]InternalID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.containingKn[w]
	return list, ok
}

// SentencesContainingUnknownWord returns the posting list for a literal
// unrecognized token, if any question contains it.
func (s *Store) SentencesContainingUnknownWord(lit string) ([]InternalID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.containingUn[lit]
	return list, ok
}

// Lookup returns the text of the question with the given external id, by
// a linear scan — acceptable for this debug-oriented path.
func (s *Store) Lookup(externalID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, ext := range s.externalIDs {
		if ext == externalID {
			return s.questions[i].text, true
		}
	}
	return "", false
}

// AllQuestions returns every stored question's text, in insertion order.
func (s *Store) AllQuestions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.questions))
	for i, q := range s.questions {
		out[i] = q.text
	}
	return out
}

// ExternalID returns the external id assigned to an internal id.
func (s *Store) ExternalID(id InternalID) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(id) >= len(s.externalIDs) {
		return "", false
	}
	return s.externalIDs[id], true
}

// ClearAll truncates all in-memory state and deletes the log file.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = nil
	s.externalIDs = nil
	s.containingKw = make(map[keyword.Index][]InternalID)
	s.containingKn = make(map[wordvec.WordIndex][]InternalID)
	s.containingUn = make(map[string][]InternalID)
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("queststore: removing log %s: %w", s.path, err)
	}
	return nil
}
