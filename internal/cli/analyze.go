package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/analyzer"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/phrase/scorer"
)

func (a *app) analyzeCommand() *cobra.Command {
	var (
		opts      analyzer.Options
		threshold float64
		asJSON    bool
		wordSet   string
	)
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Rank the distinctive phrases of one text",
		Long: `Rank the phrases of a single text by how unusual their words are,
skipping phrases made of common English words. Nothing is stored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			if wordSet == "" {
				wordSet = a.cfg.Analyze.ReferencePath
			}
			opts.Filter, err = scorer.Load(wordSet, a.cfg.Analyze.CommonSize)
			if err != nil {
				return err
			}
			if opts.MaxLength <= 0 {
				opts.MaxLength = a.cfg.Analyze.MaxPhraseLength
			}
			if !cmd.Flags().Changed("threshold") {
				threshold = a.cfg.Analyze.Threshold
			}
			if threshold < 0 || threshold > 1 {
				return fmt.Errorf("threshold must be within [0, 1], got %v", threshold)
			}
			opts.Threshold = analyzer.ThresholdOf(threshold)

			results := analyzer.Analyze(text, opts)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if results == nil {
					results = []scorer.Scored{}
				}
				return enc.Encode(results)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SCORE\tFREQ\tPHRASE")
			for _, r := range results {
				fmt.Fprintf(tw, "%d\t%d\t%s\n", r.Score, r.Freq, r.Phrase)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&opts.MaxLength, "max-length", "n", 0, "longest phrase in words (default from config)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "fraction of the word list considered too frequent (default from config)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "phrases to print, 0 for all")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON with occurrence offsets")
	cmd.Flags().StringVar(&wordSet, "words", "", "frequency-ordered word list replacing the built-in one")
	return cmd
}
