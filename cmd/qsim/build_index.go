package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quillpeak/qsim/pkg/wordindex"
	"github.com/quillpeak/qsim/pkg/wordvec"
)

func newBuildIndexCmd() *cobra.Command {
	var embeddingsPath, outPath string
	var maxWords, synonyms, workers int

	cmd := &cobra.Command{
		Use:   "build-index",
		Short: "Build a binary synonym index from a word-embedding file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuildIndex(embeddingsPath, outPath, maxWords, synonyms, workers)
		},
	}

	cfg := defaultsOrFatal()
	cmd.Flags().StringVar(&embeddingsPath, "embeddings", cfg.EmbeddingsPath, "path to the source embedding file")
	cmd.Flags().StringVar(&outPath, "out", cfg.IndexPath, "path to write the built binary index")
	cmd.Flags().IntVar(&maxWords, "max-words", cfg.MaxWords, "cap the number of words loaded (0 = no cap)")
	cmd.Flags().IntVar(&synonyms, "synonyms", cfg.Synonyms, "number of synonyms to keep per word")
	cmd.Flags().IntVar(&workers, "workers", cfg.Workers, "parallel cosine-scan worker count (0 = GOMAXPROCS)")

	return cmd
}

func runBuildIndex(embeddingsPath, outPath string, maxWords, synonyms, workers int) error {
	fmt.Printf("loading embeddings from %s...\n", embeddingsPath)
	var maxPtr *int
	if maxWords > 0 {
		maxPtr = &maxWords
	}
	vocab, vecs, err := wordvec.Read(embeddingsPath, maxPtr)
	if err != nil {
		return fmt.Errorf("loading embeddings: %w", err)
	}
	fmt.Printf("loaded %d words\n", vocab.Len())

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer out.Close()

	fmt.Printf("computing top-%d synonyms per word...\n", synonyms)
	if err := wordindex.Build(out, vocab, vecs, wordindex.BuildOptions{K: synonyms, Workers: workers}); err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	fmt.Printf("wrote index to %s\n", outPath)
	return nil
}
