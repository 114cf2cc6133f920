// Package keyword loads a curated table of keyword equivalence classes
// (for example "Covid", "Covid-19", "Covid 19" and "Coronavirus" all
// naming the same concept) from a flexible-width CSV file, and answers
// case-insensitive prefix lookups against it. A lookup returns the first
// surface form that matches, not the longest one.
//
// Classes are tried in the order they appear in the file; within a class,
// surface forms are tried in the order they were written. The first
// surface form of a class is its canonical name.
package keyword

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Index identifies one keyword equivalence class.
type Index uint32

// Class is one equivalence class: a set of surface forms that are all
// the same concept, in file order. Class[0] is canonical.
type Class []string

// findStarting returns the byte length of the first surface form s
// starts with, ASCII case-insensitively, or -1 if none match.
func (c Class) findStarting(s string) int {
	for _, word := range c {
		if len(s) >= len(word) && strings.EqualFold(s[:len(word)], word) {
			return len(word)
		}
	}
	return -1
}

// Table is the full curated keyword table, loaded once at startup.
type Table struct {
	classes []Class
}

// Load reads a flexible-column, headerless CSV file: each row is one
// equivalence class, its fields the class's surface forms.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("keyword: opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // rows may have a different number of surface forms

	var classes []Class
	for {
		record, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("keyword: reading %s: %w", path, err)
		}
		classes = append(classes, Class(record))
	}
	return &Table{classes: classes}, nil
}

// Len returns the number of keyword classes loaded.
func (t *Table) Len() int { return len(t.classes) }

// FindKeywordStarting scans the classes in load order and returns the
// first one with a surface form that s starts with (ASCII
// case-insensitive), together with the number of bytes of s consumed.
func (t *Table) FindKeywordStarting(s string) (Index, int, bool) {
	for i, class := range t.classes {
		if used := class.findStarting(s); used >= 0 {
			return Index(i), used, true
		}
	}
	return 0, 0, false
}

// Canonical returns the first surface form of the class at index, its
// canonical name.
func (t *Table) Canonical(index Index) string {
	return t.classes[index][0]
}
