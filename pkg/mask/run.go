package mask

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
)

var DefaultTargets = []string{
	filepath.Join("public", "images", "burgers", "burger-transparent-1.png"),
	filepath.Join("public", "images", "burgers", "burger-transparent-2.png"),
	filepath.Join("public", "images", "burgers", "burger-transparent-3.png"),
}

type Report struct {
	Processed int
	Skipped   int
	Failed    int
}

func (r *Report) WriteSummary(w io.Writer) error {
	_, err := fmt.Fprintf(w, "processed %d, skipped %d, failed %d\n", r.Processed, r.Skipped, r.Failed)
	return err
}

type Options struct {
	Threshold *uint8

	Logger *slog.Logger
}

// Run masks every target in order. Missing files are skipped and broken ones
// counted as failed; neither stops the run.
func Run(ctx context.Context, paths []string, options *Options) (*Report, error) {
	if options == nil {
		options = new(Options)
	}

	threshold := uint8(Threshold)

	if options.Threshold != nil {
		threshold = *options.Threshold
	}

	logger := options.Logger

	if logger == nil {
		logger = slog.Default()
	}

	report := &Report{}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		count, err := ProcessFile(path, threshold)

		if err != nil {
			if errors.Is(err, ErrNotFound) {
				report.Skipped++

				logger.WarnContext(ctx, "file not found", "path", path)
				continue
			}

			report.Failed++

			logger.ErrorContext(ctx, "masking failed", "path", path, "error", err)
			continue
		}

		report.Processed++

		logger.InfoContext(ctx, "processed", "path", path, "pixels", count)
	}

	return report, nil
}
