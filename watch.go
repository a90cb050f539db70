package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/df07/go-diffuse-pathtracer/pkg/config"
)

// settleDelay lets editors finish writing before a re-render starts
const settleDelay = 200 * time.Millisecond

// watchedFiles returns the files a render depends on: the config file and,
// for file scenes, the scene description
func watchedFiles(cfg config.RenderConfig, opts options) []string {
	var files []string
	if opts.configPath != "" {
		files = append(files, opts.configPath)
	} else if _, err := os.Stat(config.DefaultFile); err == nil {
		files = append(files, config.DefaultFile)
	}

	switch {
	case strings.HasPrefix(cfg.Scene, "file:"):
		name := strings.TrimPrefix(cfg.Scene, "file:")
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(cfg.ScenesDir, name+ext)
			if _, err := os.Stat(path); err == nil {
				files = append(files, path)
				break
			}
		}
	case strings.HasSuffix(strings.ToLower(cfg.Scene), ".yaml"), strings.HasSuffix(strings.ToLower(cfg.Scene), ".yml"):
		files = append(files, cfg.Scene)
	}

	for i, f := range files {
		files[i] = absOrSelf(f)
	}
	return files
}

// watch renders once and then again each time a watched file changes, until
// ctx is cancelled. reload rebuilds the config from the config file and the
// command line. Render failures are logged and do not stop the watch.
func watch(ctx context.Context, files []string, reload func() (config.RenderConfig, error), logger *slog.Logger) error {
	if len(files) == 0 {
		return errors.New("nothing to watch: use a config file or a scene file")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "unable to create file watcher")
	}
	defer watcher.Close()

	// Watch directories; editors often replace files rather than write them
	wanted := make(map[string]bool)
	for _, f := range files {
		wanted[f] = true
		if err := watcher.Add(filepath.Dir(f)); err != nil {
			return errors.Wrapf(err, "unable to watch %v", f)
		}
	}
	logger.Info("watching for changes", "files", files)

	rerender := func() {
		cfg, err := reload()
		if err != nil {
			logger.Error("config reload failed", "error", err)
			return
		}
		if err := renderAndSave(ctx, cfg, logger); err != nil && ctx.Err() == nil {
			logger.Error("render failed", "error", err)
		}
	}

	rerender()

	timer := time.NewTimer(settleDelay)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !wanted[absOrSelf(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				logger.Debug("file changed", "file", event.Name, "op", event.Op.String())
				timer.Reset(settleDelay)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		case <-timer.C:
			rerender()
		}
	}
}

func absOrSelf(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
