package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillpeak/qsim/pkg/scoring"
	"github.com/quillpeak/qsim/pkg/tokenize"
)

func newQueryCmd() *cobra.Command {
	var indexPath, keywordsPath, storePath, text string
	var limit int

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Score stored questions against a query and print the ranked results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(indexPath, keywordsPath, storePath, text, limit)
		},
	}

	cfg := defaultsOrFatal()
	cmd.Flags().StringVar(&indexPath, "index", cfg.IndexPath, "path to the built binary index")
	cmd.Flags().StringVar(&keywordsPath, "keywords", cfg.KeywordsPath, "path to the curated keyword CSV")
	cmd.Flags().StringVar(&storePath, "store", cfg.StorePath, "path to the posting-list append-only log")
	cmd.Flags().StringVar(&text, "text", "", "query text")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of results to print")
	cmd.MarkFlagRequired("text")

	return cmd
}

func runQuery(indexPath, keywordsPath, storePath, text string, limit int) error {
	idx, kw, err := openEngine(indexPath, keywordsPath)
	if err != nil {
		return err
	}
	defer idx.Close()

	store, err := openStore(storePath, idx, kw)
	if err != nil {
		return err
	}

	parts := tokenize.Tokenize(text, idx, kw)
	ranked := scoring.FindSimilar(parts, store, idx)
	external := scoring.ConvertToExternal(ranked, store)

	if len(external) == 0 {
		fmt.Println("no matches")
		return nil
	}
	if limit > 0 && len(external) > limit {
		external = external[:limit]
	}
	for _, r := range external {
		fmt.Printf("%s\t%.2f\n", r.ExternalID, r.Score)
	}
	return nil
}
