package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch monitors paths for changes and calls onChange with the absolute path
// of the file that changed. It runs until ctx is cancelled.
//
// The parent directory of each path is watched rather than the file itself,
// so a save that writes a temp file and renames it over the original is seen
// as a Create of the watched name and the watch survives the inode change.
// Every path must exist when Watch starts.
//
// onChange is called synchronously from the event loop, so two calls never
// overlap. Events that arrive while onChange runs are queued by fsnotify and
// delivered afterwards.
func Watch(ctx context.Context, log *zap.Logger, onChange func(path string), paths ...string) error {
	wanted := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("config: watch %s: %w", p, err)
		}
		if _, err := os.Stat(abs); err != nil {
			return fmt.Errorf("config: watch: %w", err)
		}
		wanted[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("config: watch %s: %w", dir, err)
		}
	}
	for p := range wanted {
		log.Info("config: watching for changes", zap.String("path", p))
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name := filepath.Clean(event.Name)
			if _, ok := wanted[name]; !ok {
				continue
			}
			// A rename into the watched name arrives as Create; Rename and
			// Remove mean the old file went away and a new one may follow.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			log.Debug("config: file changed", zap.String("path", name), zap.Stringer("op", event.Op))
			onChange(name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("config: watcher error", zap.Error(err))
		}
	}
}
