package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillpeak/qsim/pkg/tokenize"
)

func newExplainCmd() *cobra.Command {
	var indexPath, keywordsPath, text string

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Print the tokenization of a sentence, part by part",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(indexPath, keywordsPath, text)
		},
	}

	cfg := defaultsOrFatal()
	cmd.Flags().StringVar(&indexPath, "index", cfg.IndexPath, "path to the built binary index")
	cmd.Flags().StringVar(&keywordsPath, "keywords", cfg.KeywordsPath, "path to the curated keyword CSV")
	cmd.Flags().StringVar(&text, "text", "", "sentence to tokenize")
	cmd.MarkFlagRequired("text")

	return cmd
}

func runExplain(indexPath, keywordsPath, text string) error {
	idx, kw, err := openEngine(indexPath, keywordsPath)
	if err != nil {
		return err
	}
	defer idx.Close()

	parts := tokenize.Tokenize(text, idx, kw)
	for _, line := range tokenize.Explain(parts, idx, kw) {
		fmt.Println(line)
	}
	return nil
}
