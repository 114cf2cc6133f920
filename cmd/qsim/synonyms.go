package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillpeak/qsim/pkg/wordindex"
)

func newSynonymsCmd() *cobra.Command {
	var indexPath string

	cmd := &cobra.Command{
		Use:   "synonyms <word>",
		Short: "Print a word's stored synonyms and cosine scores from the built index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSynonyms(indexPath, args[0])
		},
	}

	cfg := defaultsOrFatal()
	cmd.Flags().StringVar(&indexPath, "index", cfg.IndexPath, "path to the built binary index")

	return cmd
}

func runSynonyms(indexPath, word string) error {
	idx, err := wordindex.Open(indexPath)
	if err != nil {
		return fmt.Errorf("opening index %s: %w", indexPath, err)
	}
	defer idx.Close()

	wi, ok := idx.Index(word)
	if !ok {
		fmt.Printf("%q is not in the vocabulary\n", word)
		return nil
	}

	for _, s := range idx.Synonyms(wi) {
		fmt.Printf("%s\t%.4f\n", idx.Word(s.Word), s.Similarity)
	}
	return nil
}
