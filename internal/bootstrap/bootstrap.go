// Package bootstrap provides dependency initialization for the
// wavtrim CLI.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/wavtools/wavtrim/internal/batch"
	"github.com/wavtools/wavtrim/internal/config"
	"github.com/wavtools/wavtrim/internal/storage"
)

// Dependencies holds the initialized batch processor.
type Dependencies struct {
	Processor *batch.Processor
}

// NewDependencies creates the batch processor from configuration and
// the run's threshold.
func NewDependencies(cfg *config.Config, logger *slog.Logger, thresholdDB float64) (*Dependencies, error) {
	opts := []batch.Option{
		batch.WithThreshold(thresholdDB),
		batch.WithWorkers(cfg.Workers),
	}

	if cfg.S3Enabled() {
		uploader, err := storage.NewS3Uploader(storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("create S3 uploader: %w", err)
		}
		opts = append(opts, batch.WithUploader(uploader))
		logger.Info("S3 mirroring configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
	}

	return &Dependencies{
		Processor: batch.New(logger, opts...),
	}, nil
}
