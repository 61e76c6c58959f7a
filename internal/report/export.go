package report

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	apperrors "github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/errors"
)

// DefaultExportLimit is used when ExportOptions.Limit is not positive.
const DefaultExportLimit = 1000

type ExportOptions struct {
	Limit int
	// Pretty writes one phrase per line annotated with its position and
	// count. The annotations are // comments, so the output is not strict
	// JSON.
	Pretty bool
	// Force overwrites an existing output file.
	Force bool
}

// Export writes the Limit most frequent phrases, most frequent first, as a
// JSON array of strings.
func Export(ctx context.Context, src Source, w io.Writer, opts ExportOptions) (int, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultExportLimit
	}
	top, err := TopPhrases(ctx, src, limit)
	if err != nil {
		return 0, err
	}

	bw := bufio.NewWriter(w)
	if opts.Pretty {
		writePretty(bw, top)
	} else {
		phrases := make([]string, len(top))
		for i, pc := range top {
			phrases[i] = pc.Phrase
		}
		if err := json.NewEncoder(bw).Encode(phrases); err != nil {
			return 0, fmt.Errorf("encoding export: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("writing export: %w", err)
	}
	return len(top), nil
}

// ExportFile is Export into path. Without Force an existing file is left
// untouched and ErrAlreadyExists is returned.
func ExportFile(ctx context.Context, src Source, path string, opts ExportOptions) (int, error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !opts.Force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return 0, fmt.Errorf("%w: %s (use force to overwrite)", apperrors.ErrAlreadyExists, path)
	}
	if err != nil {
		return 0, fmt.Errorf("creating export file: %w", err)
	}

	n, err := Export(ctx, src, f, opts)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("closing export file: %w", cerr)
	}
	return n, err
}

func writePretty(w *bufio.Writer, top []PhraseCount) {
	w.WriteString("[\n")
	for i, pc := range top {
		w.WriteString("\t")
		w.WriteString(strconv.Quote(pc.Phrase))
		if i != len(top)-1 {
			w.WriteString(",")
		}
		fmt.Fprintf(w, " // #%d, %d\n", i, pc.Count)
	}
	w.WriteString("]\n")
}
