// Package cli implements phrasectl, the command-line front end for building,
// inspecting and exporting phrase dictionaries.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/dictionary"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store/backend"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/logger"
)

// app carries state shared by every subcommand of one invocation.
type app struct {
	cfgFile  string
	backend  string
	boltPath string
	logLevel string

	cfg *config.Config
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "phrasectl",
		Short: "Count, rank and export the phrases of English text",
		Long: `phrasectl extracts n-grams from text into a ranked frequency store
(memory, redis, postgres or bolt) and reports on them.

Example usage:
  phrasectl parse book.txt -n 3          # count phrases, prune, print stats
  phrasectl analyze essay.txt            # rank distinctive phrases, no store
  phrasectl export --pretty -o out.json  # write the top phrases`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if a.backend != "" {
				cfg.Store.Backend = strings.ToLower(a.backend)
			}
			if a.boltPath != "" {
				cfg.Store.BoltPath = a.boltPath
			}
			if a.logLevel != "" {
				cfg.Logging.Level = a.logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			a.cfg = cfg
			logger.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, "text")
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (defaults plus PF_* environment overrides when empty)")
	flags.StringVarP(&a.backend, "backend", "b", "", "store backend: memory, redis, postgres or bolt")
	flags.StringVar(&a.boltPath, "bolt-path", "", "bolt database file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		a.parseCommand(),
		a.analyzeCommand(),
		a.statsCommand(),
		a.exportCommand(),
		a.cleanCommand(),
		a.publishCommand(),
	)
	return root
}

// Execute runs phrasectl with os.Args.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// openDictionary opens the configured backend. The caller closes the
// returned Backend.
func (a *app) openDictionary(ctx context.Context) (*dictionary.Dictionary, *backend.Backend, error) {
	b, err := backend.Open(ctx, a.cfg, backend.Options{})
	if err != nil {
		return nil, nil, err
	}
	dict, err := dictionary.New(b.Store, dictionary.WithConcurrency(a.cfg.Store.Concurrency))
	if err != nil {
		b.Close()
		return nil, nil, err
	}
	return dict, b, nil
}

// readInput reads path, or stdin for "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
