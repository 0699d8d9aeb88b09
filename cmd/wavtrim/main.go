// Package main provides the wavtrim command: it recursively trims
// leading and trailing silence from the WAV files of a directory tree
// and writes the results into a mirrored output tree.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/wavtools/wavtrim/internal/batch"
	"github.com/wavtools/wavtrim/internal/bootstrap"
	"github.com/wavtools/wavtrim/internal/config"
)

func syntaxExit(message string) {
	fmt.Fprintf(os.Stderr, "syntax error: %s\n", message)
	pflag.Usage()
	os.Exit(2)
}

func main() {
	threshold := pflag.Float64P("threshold", "t", batch.DefaultThresholdDB,
		"silence threshold in dBFS; values closer to zero trim more aggressively")
	pflag.Parse()
	if pflag.NArg() != 2 {
		syntaxExit("expected two arguments: <input-dir> <output-dir>")
	}

	if err := run(pflag.Arg(0), pflag.Arg(1), *threshold); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(inputDir, outputDir string, thresholdDB float64) error {
	// Load ambient configuration from environment
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Create structured logger
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	deps, err := bootstrap.NewDependencies(cfg, logger, thresholdDB)
	if err != nil {
		return fmt.Errorf("initialize dependencies: %w", err)
	}

	sum, err := deps.Processor.Run(context.Background(), inputDir, outputDir)
	if err != nil {
		return err
	}

	// Per-file failures were already reported on stderr and do not
	// affect the exit status.
	fmt.Printf("Processed %d WAV files.\n", sum.Processed)
	return nil
}
