// Package analyze runs the naming and generic-arity inspections over a
// repository and assembles the ranked report.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/rsinspect/internal/discover"
	"github.com/phobologic/rsinspect/internal/index"
	"github.com/phobologic/rsinspect/internal/inspect"
	"github.com/phobologic/rsinspect/internal/lang"
	"github.com/phobologic/rsinspect/internal/metrics"
	"github.com/phobologic/rsinspect/internal/model"
	"github.com/phobologic/rsinspect/internal/parse"
	"github.com/phobologic/rsinspect/internal/ranking"
)

// ErrNoFiles is returned when the root holds no parseable Rust source.
var ErrNoFiles = errors.New("no parseable files found")

// Options configures Run.
type Options struct {
	// Root is the repository directory.
	Root string
	// Files, when non-nil, skips discovery. Paths are relative to Root.
	Files []discover.FileEntry
	// Discover is used when Files is nil.
	Discover discover.Options
	// Workers bounds parsing concurrency; 0 means GOMAXPROCS.
	Workers  int
	Levels   map[string]model.Level
	Disabled map[string]bool

	Logger  *zap.Logger
	Metrics *metrics.Recorder
}

// Run analyses the repository. Files that cannot be read or parsed are
// logged and skipped. The returned report lists only files with
// diagnostics, ordered by ranking.Rank.
func Run(ctx context.Context, opts Options) (*model.Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	files := opts.Files
	if files == nil {
		var err error
		files, err = discover.Files(opts.Root, opts.Discover)
		if err != nil {
			return nil, fmt.Errorf("discovering files: %w", err)
		}
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	logger.Debug("discovered files", zap.Int("count", len(files)))

	fileInfos, err := parseFiles(ctx, opts.Root, files, opts.Workers, logger, opts.Metrics)
	if err != nil {
		return nil, err
	}
	if len(fileInfos) == 0 {
		return nil, fmt.Errorf("no files could be parsed: %w", ErrNoFiles)
	}

	idx := index.Build(fileInfos)
	logger.Debug("indexed declarations", zap.Int("names", idx.Len()))

	inspector := &inspect.Inspector{
		Levels:   inspect.Levels{Defaults: opts.Levels},
		Disabled: opts.Disabled,
	}

	reports := make([]model.FileReport, len(fileInfos))
	for i := range fileInfos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fi := &fileInfos[i]
		var diags []model.Diagnostic
		inspector.File(fi, idx, inspect.SinkFunc(func(d model.Diagnostic) {
			diags = append(diags, d)
		}))
		sort.SliceStable(diags, func(a, b int) bool {
			if diags[a].Line != diags[b].Line {
				return diags[a].Line < diags[b].Line
			}
			return diags[a].Column < diags[b].Column
		})
		reports[i] = model.FileReport{Path: fi.Path, Diagnostics: diags}
	}

	// Centrality is computed over every analysed file before empty ones
	// are dropped.
	ranking.Rank(reports, idx.Dependencies(fileInfos))

	report := &model.Report{
		RepoName: filepath.Base(opts.Root),
		Root:     filepath.Base(opts.Root),
		Analyzed: len(fileInfos),
	}
	for i := range reports {
		if len(reports[i].Diagnostics) > 0 {
			report.Files = append(report.Files, reports[i])
		}
	}
	opts.Metrics.Report(report)
	return report, nil
}

// parseFiles parses files on a bounded worker pool. Each worker owns its
// parser since tree-sitter parsers are not safe for concurrent use. Results
// keep the order of files.
func parseFiles(
	ctx context.Context,
	root string,
	files []discover.FileEntry,
	workers int,
	logger *zap.Logger,
	rec *metrics.Recorder,
) ([]model.FileInfo, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(files) {
		workers = len(files)
	}

	indexed := make([]model.FileInfo, len(files))
	valid := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	work := make(chan int)

	g.Go(func() error {
		defer close(work)
		for i := range files {
			select {
			case work <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for range workers {
		g.Go(func() error {
			parsers := make(map[string]*sitter.Parser)
			defer func() {
				for _, p := range parsers {
					p.Close()
				}
			}()

			for i := range work {
				if err := gctx.Err(); err != nil {
					return err
				}
				f := files[i]
				parser, ok := parsers[f.Language]
				if !ok {
					l := lang.Languages[f.Language]
					if l == nil {
						logger.Warn("unsupported language", zap.String("path", f.Path), zap.String("language", f.Language))
						rec.ParseError()
						continue
					}
					parser = l.NewParser()
					parsers[f.Language] = parser
				}

				source, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f.Path)))
				if err != nil {
					logger.Warn("failed to read file", zap.String("path", f.Path), zap.Error(err))
					rec.ParseError()
					continue
				}

				fi, err := parse.File(gctx, parser, source, f.Path)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					logger.Warn("failed to parse file", zap.String("path", f.Path), zap.Error(err))
					rec.ParseError()
					continue
				}
				indexed[i] = fi
				valid[i] = true
				rec.FileAnalyzed()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var fileInfos []model.FileInfo
	for i, ok := range valid {
		if ok {
			fileInfos = append(fileInfos, indexed[i])
		}
	}
	return fileInfos, nil
}
