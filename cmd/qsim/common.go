package main

import (
	"fmt"

	"github.com/quillpeak/qsim/pkg/keyword"
	"github.com/quillpeak/qsim/pkg/queststore"
	"github.com/quillpeak/qsim/pkg/wordindex"
)

// openEngine loads the binary index and curated keyword table shared by
// every query-path subcommand.
func openEngine(indexPath, keywordsPath string) (*wordindex.Index, *keyword.Table, error) {
	idx, err := wordindex.Open(indexPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening index %s: %w", indexPath, err)
	}
	kw, err := keyword.Load(keywordsPath)
	if err != nil {
		idx.Close()
		return nil, nil, fmt.Errorf("loading keywords %s: %w", keywordsPath, err)
	}
	return idx, kw, nil
}

func openStore(storePath string, idx *wordindex.Index, kw *keyword.Table) (*queststore.Store, error) {
	store, err := queststore.Open(storePath, idx, kw)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", storePath, err)
	}
	return store, nil
}
