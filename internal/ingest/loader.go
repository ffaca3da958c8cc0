package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// DefaultPatterns selects the file types loaded from a knowledge base
// directory when no explicit patterns are given.
var DefaultPatterns = []string{"**/*.md", "**/*.txt"}

var skipDirs = []string{".git", "node_modules", "vendor", "__pycache__", ".venv"}

// LoadStats summarizes a directory ingestion run.
type LoadStats struct {
	Files  int
	Chunks int
	Failed int
}

// LoadDir ingests every matching file under dir. Files that fail to load are
// logged and skipped; the walk itself failing is an error.
func (s *Service) LoadDir(ctx context.Context, dir string, patterns []string, showProgress bool) (LoadStats, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	files, err := collectFiles(dir, patterns)
	if err != nil {
		return LoadStats{}, err
	}

	var bar *progressbar.ProgressBar
	if showProgress && len(files) > 0 {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("Ingesting documents"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	var stats LoadStats
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}

		content, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("reading file failed", zap.String("path", path), zap.Error(err))
			stats.Failed++
			continue
		}

		title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		res, err := s.AddDocument(ctx, title, filepath.ToSlash(rel), string(content))
		if err != nil {
			s.logger.Warn("ingesting file failed", zap.String("path", path), zap.Error(err))
			stats.Failed++
		} else {
			stats.Files++
			stats.Chunks += res.Chunks
		}

		if bar != nil {
			bar.Describe(rel)
			_ = bar.Add(1)
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}
	return stats, nil
}

// collectFiles walks dir and returns paths matching any pattern, in walk
// order. Patterns match against forward-slashed paths relative to dir.
func collectFiles(dir string, patterns []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			for _, skip := range skipDirs {
				if d.Name() == skip {
					return filepath.SkipDir
				}
			}
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		normalized := filepath.ToSlash(rel)
		for _, pattern := range patterns {
			if matched, err := doublestar.PathMatch(pattern, normalized); err == nil && matched {
				files = append(files, path)
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	return files, nil
}
