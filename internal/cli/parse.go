package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/phrase/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/report"
)

func (a *app) parseCommand() *cobra.Command {
	var (
		maxLength int
		noClean   bool
		top       int
	)
	cmd := &cobra.Command{
		Use:   "parse <file>...",
		Short: "Count every phrase of the given files",
		Long: `Split each file into words, count every phrase of up to -n words,
drop phrases seen only once and print the dictionary stats. Use "-" to
read standard input.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if maxLength <= 0 {
				maxLength = a.cfg.Parse.MaxPhraseLength
			}
			ctx := cmd.Context()
			dict, b, err := a.openDictionary(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			var phrases []string
			for _, path := range args {
				text, err := readInput(cmd, path)
				if err != nil {
					return err
				}
				phrases = append(phrases, tokenizer.Combine(tokenizer.Words(text), maxLength)...)
			}

			bar := progressbar.NewOptions(len(phrases),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("Adding phrases"),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(cmd.ErrOrStderr())
				}),
			)
			err = dict.AddBatched(ctx, phrases, a.cfg.Parse.BatchSize, func(n int) {
				bar.Add(n)
			})
			if err != nil {
				return err
			}
			bar.Finish()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Phrases added: %d\n", len(phrases))
			if !noClean {
				removed, err := dict.Clean(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Phrases removed: %d\n", removed)
			}

			stats, err := report.Collect(ctx, dict, top)
			if err != nil {
				return err
			}
			printStats(out, stats)
			return nil
		},
	}
	cmd.Flags().IntVarP(&maxLength, "max-length", "n", 0, "longest phrase in words (default from config)")
	cmd.Flags().BoolVar(&noClean, "no-clean", false, "keep phrases seen only once")
	cmd.Flags().IntVar(&top, "top", report.DefaultTop, "phrases to list")
	return cmd
}
