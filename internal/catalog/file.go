package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// LoadFile reads and validates a YAML catalog file.
func LoadFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if len(snap.Species) == 0 && len(snap.Ingredients) == 0 {
		return Snapshot{}, fmt.Errorf("catalog %s is empty", path)
	}
	if err := snap.Validate(); err != nil {
		return Snapshot{}, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return snap, nil
}

// Open returns the built-in catalog when path is empty, otherwise the file's.
func Open(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	snap, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return New(snap), nil
}

// Watch reloads c from path every time the file is written or replaced,
// until ctx is cancelled. A reload that fails keeps the previous library.
//
// The parent directory is watched so that saves which rename a temp file over
// path keep being seen.
func Watch(ctx context.Context, c *Catalog, path string, logger *zap.Logger) error {
	path = filepath.Clean(path)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if _, err := os.Stat(path); err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}
	logger.Info("catalog: watching for changes", zap.String("path", path))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			// A rename over path arrives as Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			snap, err := LoadFile(path)
			if err != nil {
				logger.Error("catalog: reload failed, keeping previous library",
					zap.String("path", path), zap.Error(err))
				continue
			}
			if err := c.Replace(snap); err != nil {
				logger.Error("catalog: replace failed", zap.Error(err))
				continue
			}
			logger.Info("catalog: reloaded",
				zap.String("path", path),
				zap.Int("species", len(snap.Species)),
				zap.Int("ingredients", len(snap.Ingredients)))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("catalog: watcher error", zap.Error(err))
		}
	}
}
