package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/ingest"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/kafka"
)

func (a *app) publishCommand() *cobra.Command {
	var (
		maxLength int
		source    string
	)
	cmd := &cobra.Command{
		Use:   "publish <file>...",
		Short: "Queue files on Kafka for a running phrased to count",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			producer := kafka.NewProducer(a.cfg.Kafka, a.cfg.Kafka.Topics.Documents)
			defer producer.Close()
			return publishFiles(cmd, ingest.NewPublisher(producer), args, source, maxLength)
		},
	}
	cmd.Flags().IntVarP(&maxLength, "max-length", "n", 0, "longest phrase in words (daemon default when 0)")
	cmd.Flags().StringVar(&source, "source", "", "source label (file name when empty)")
	return cmd
}

func publishFiles(cmd *cobra.Command, pub *ingest.Publisher, paths []string, source string, maxLength int) error {
	for _, path := range paths {
		text, err := readInput(cmd, path)
		if err != nil {
			return err
		}
		src := source
		if src == "" {
			src = filepath.Base(path)
		}
		ev, err := pub.Publish(cmd.Context(), ingest.TextEvent{
			Source:    src,
			Text:      text,
			MaxLength: maxLength,
		})
		if err != nil {
			return fmt.Errorf("publishing %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", ev.DocumentID, path)
	}
	return nil
}
