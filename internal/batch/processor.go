// Package batch walks an input directory tree and runs the silence
// trim pipeline on every WAV file, mirroring results into an output
// tree. Individual file failures are reported and isolated; only
// missing-input and output-root errors abort a run.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wavtools/wavtrim/internal/audio"
	"github.com/wavtools/wavtrim/internal/batch/id"
	"github.com/wavtools/wavtrim/internal/storage"
	"github.com/wavtools/wavtrim/internal/wavio"
)

// DefaultThresholdDB is the silence threshold applied when none is
// configured.
const DefaultThresholdDB = -50.0

// ErrInputDirNotFound is returned when the input directory does not
// exist. It aborts the run.
var ErrInputDirNotFound = errors.New("input directory does not exist")

// Processor runs trim batches. Construct with New; the zero value is
// not usable.
type Processor struct {
	thresholdDB float64
	windowSize  int
	workers     int
	logger      *slog.Logger
	uploader    storage.Uploader
	errW        io.Writer
}

// Option configures a Processor.
type Option func(*Processor)

// WithThreshold sets the silence threshold in dBFS. Values closer to
// zero trim more aggressively.
func WithThreshold(db float64) Option {
	return func(p *Processor) {
		p.thresholdDB = db
	}
}

// WithWorkers sets the number of files processed concurrently.
// Values below 1 are ignored; the default is sequential.
func WithWorkers(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithUploader mirrors every written output file to remote storage
// under its tree-relative key.
func WithUploader(u storage.Uploader) Option {
	return func(p *Processor) {
		p.uploader = u
	}
}

// WithErrorWriter sets the stream per-file failure lines are printed
// to. Defaults to stderr.
func WithErrorWriter(w io.Writer) Option {
	return func(p *Processor) {
		p.errW = w
	}
}

// New creates a Processor with the production window size of 800
// samples (50ms at 16kHz).
func New(logger *slog.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		thresholdDB: DefaultThresholdDB,
		windowSize:  audio.WindowSize,
		workers:     1,
		logger:      logger,
		errW:        os.Stderr,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run trims every .wav file under inputDir into the mirrored location
// under outputDir. Per-file failures are printed to the error stream
// as "Error processing <path>: <message>" and recorded in the
// Summary; they never abort the batch. The returned error is non-nil
// only for fatal conditions (missing input directory, unusable output
// root).
func (p *Processor) Run(ctx context.Context, inputDir, outputDir string) (*Summary, error) {
	if _, err := os.Stat(inputDir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputDirNotFound, inputDir)
		}
		return nil, fmt.Errorf("stat input directory: %w", err)
	}

	tree, err := storage.NewTree(outputDir)
	if err != nil {
		return nil, err
	}

	sum := &Summary{RunID: id.Generate()}
	log := p.logger.With(slog.String("run_id", sum.RunID))

	files := p.discover(inputDir, log)

	log.Info("starting batch",
		slog.String("input_dir", inputDir),
		slog.String("output_dir", outputDir),
		slog.Int("files", len(files)),
		slog.Float64("threshold_db", p.thresholdDB),
		slog.Int("workers", p.workers),
	)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for _, path := range files {
		path := path
		g.Go(func() error {
			res := p.processFile(gctx, tree, inputDir, path)

			mu.Lock()
			defer mu.Unlock()
			sum.Results = append(sum.Results, res)
			if res.Err != nil {
				sum.Failed++
				fmt.Fprintf(p.errW, "Error processing %s: %v\n", res.Path, res.Err)
				log.Error("file failed",
					slog.String("path", res.Path),
					slog.String("error", res.Err.Error()),
				)
				return nil
			}
			sum.Processed++
			log.Debug("file trimmed",
				slog.String("path", res.Path),
				slog.Int("samples_in", res.SamplesIn),
				slog.Int("samples_out", res.SamplesOut),
			)
			return nil
		})
	}
	// Workers never return errors; per-file failures live in Results.
	_ = g.Wait()

	log.Info("batch complete",
		slog.Int("processed", sum.Processed),
		slog.Int("failed", sum.Failed),
	)
	return sum, nil
}

// discover lists regular files under root carrying a case-sensitive
// .wav extension. Entries the walk cannot read are logged and
// skipped; they never abort the batch. WalkDir does not descend into
// symbolic links, and symlinked files are not regular entries, so
// links are skipped.
func (p *Processor) discover(root string, log *slog.Logger) []string {
	var files []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn("skipping unreadable entry",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			return nil
		}
		name := d.Name()
		// A bare ".wav" has an empty stem, not a .wav extension.
		if d.Type().IsRegular() && filepath.Ext(name) == ".wav" && name != ".wav" {
			files = append(files, path)
		}
		return nil
	})
	return files
}

// processFile runs the whole pipeline for one file. Every failure is
// returned inside the Result, wrapped with the operation that failed.
func (p *Processor) processFile(ctx context.Context, tree *storage.Tree, inputDir, path string) Result {
	res := Result{Path: path}

	rel, err := filepath.Rel(inputDir, path)
	if err != nil {
		res.Err = fmt.Errorf("compute relative path: %w", err)
		return res
	}
	res.RelPath = rel

	samples, format, err := wavio.DecodeFile(path)
	if err != nil {
		res.Err = err
		return res
	}
	res.SamplesIn = len(samples)

	if err := format.Validate(); err != nil {
		res.Err = err
		return res
	}

	trimmed := audio.Trim(samples, p.thresholdDB, p.windowSize)
	res.SamplesOut = len(trimmed)

	dst, err := tree.Create(rel)
	if err != nil {
		res.Err = err
		return res
	}
	if err := wavio.Encode(dst, trimmed, format); err != nil {
		_ = dst.Close()
		res.Err = err
		return res
	}
	if err := dst.Close(); err != nil {
		res.Err = fmt.Errorf("close output WAV file: %w", err)
		return res
	}

	if p.uploader != nil {
		key := filepath.ToSlash(rel)
		if _, err := p.uploader.UploadFile(ctx, key, tree.Path(rel)); err != nil {
			res.Err = fmt.Errorf("mirror to remote storage: %w", err)
			return res
		}
	}

	return res
}
