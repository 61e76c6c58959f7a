package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/report"
)

func (a *app) statsCommand() *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the dictionary size and its most frequent phrases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dict, b, err := a.openDictionary(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			stats, err := report.Collect(cmd.Context(), dict, top)
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}
	cmd.Flags().IntVar(&top, "top", report.DefaultTop, "phrases to list")
	return cmd
}

func (a *app) exportCommand() *cobra.Command {
	var (
		opts   report.ExportOptions
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the most frequent phrases as a JSON array",
		Long: `Write the most frequent phrases, most frequent first. --pretty puts one
phrase per line annotated with its position and count.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dict, b, err := a.openDictionary(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			if output == "" || output == "-" {
				_, err := report.Export(ctx, dict, cmd.OutOrStdout(), opts)
				return err
			}
			n, err := report.ExportFile(ctx, dict, output, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d phrases to %s\n", n, output)
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Limit, "limit", report.DefaultExportLimit, "phrases to write")
	cmd.Flags().BoolVar(&opts.Pretty, "pretty", false, "annotate each phrase with its position and count")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "overwrite an existing output file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout when empty)")
	return cmd
}

func (a *app) cleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Drop every phrase seen at most once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dict, b, err := a.openDictionary(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			removed, err := dict.Clean(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Phrases removed: %d\n", removed)
			return nil
		},
	}
}

func printStats(w io.Writer, stats report.Stats) {
	fmt.Fprintf(w, "Dictionary size: %d\n", stats.Size)
	if len(stats.Top) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCOUNT\tPHRASE")
	for i, pc := range stats.Top {
		fmt.Fprintf(tw, "%d\t%d\t%s\n", i, pc.Count, pc.Phrase)
	}
	tw.Flush()
}
