package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	var indexPath, keywordsPath, storePath, externalID, text string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Tokenize and append one question to the posting-list store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(indexPath, keywordsPath, storePath, externalID, text)
		},
	}

	cfg := defaultsOrFatal()
	cmd.Flags().StringVar(&indexPath, "index", cfg.IndexPath, "path to the built binary index")
	cmd.Flags().StringVar(&keywordsPath, "keywords", cfg.KeywordsPath, "path to the curated keyword CSV")
	cmd.Flags().StringVar(&storePath, "store", cfg.StorePath, "path to the posting-list append-only log")
	cmd.Flags().StringVar(&externalID, "id", "", "external id for this question")
	cmd.Flags().StringVar(&text, "text", "", "question text")
	cmd.MarkFlagRequired("id")
	cmd.MarkFlagRequired("text")

	return cmd
}

func runAdd(indexPath, keywordsPath, storePath, externalID, text string) error {
	idx, kw, err := openEngine(indexPath, keywordsPath)
	if err != nil {
		return err
	}
	defer idx.Close()

	store, err := openStore(storePath, idx, kw)
	if err != nil {
		return err
	}

	id, err := store.Add(externalID, text)
	if err != nil {
		return fmt.Errorf("adding question: %w", err)
	}

	fmt.Printf("added question %q as internal id %d (external id %s)\n", text, id, externalID)
	return nil
}
