package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DynamicConfig is the subset of configuration that can change while
// the server runs. Today that is the refresh cadence; clients expect
// interval retunes to take effect without a restart.
type DynamicConfig struct {
	EngagementRefreshIntervalMs   int `yaml:"engagementRefreshIntervalMs"`
	NotificationRefreshIntervalMs int `yaml:"notificationRefreshIntervalMs"`
}

// EngagementInterval returns the engagement cadence, zero if unset.
func (d DynamicConfig) EngagementInterval() time.Duration {
	return time.Duration(d.EngagementRefreshIntervalMs) * time.Millisecond
}

// NotificationInterval returns the notification cadence, zero if unset.
func (d DynamicConfig) NotificationInterval() time.Duration {
	return time.Duration(d.NotificationRefreshIntervalMs) * time.Millisecond
}

// Watcher reloads a YAML config file whenever it changes on disk and
// hands the parsed result to a callback.
type Watcher struct {
	path     string
	logger   *zap.Logger
	onChange func(DynamicConfig)
}

// NewWatcher creates a watcher for the given file.
func NewWatcher(path string, logger *zap.Logger, onChange func(DynamicConfig)) *Watcher {
	return &Watcher{path: path, logger: logger, onChange: onChange}
}

// Start loads the file once, then watches its directory until the
// context ends. Editors replace files rather than rewriting them, so
// the directory is watched instead of the file itself.
func (w *Watcher) Start(ctx context.Context) error {
	if cfg, err := w.load(); err == nil {
		w.onChange(cfg)
	} else if !os.IsNotExist(err) {
		w.logger.Warn("Initial dynamic config load failed", zap.String("path", w.path), zap.Error(err))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()

		var debounce *time.Timer
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(w.path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				// Writers emit bursts of events; reload once they settle.
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(200*time.Millisecond, w.reload)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("Config watcher error", zap.Error(err))
			}
		}
	}()

	return nil
}

func (w *Watcher) reload() {
	cfg, err := w.load()
	if err != nil {
		w.logger.Warn("Dynamic config reload failed", zap.String("path", w.path), zap.Error(err))
		return
	}
	w.logger.Info("Dynamic config reloaded",
		zap.Int("engagement_interval_ms", cfg.EngagementRefreshIntervalMs),
		zap.Int("notification_interval_ms", cfg.NotificationRefreshIntervalMs),
	)
	w.onChange(cfg)
}

func (w *Watcher) load() (DynamicConfig, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return DynamicConfig{}, err
	}
	var cfg DynamicConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DynamicConfig{}, err
	}
	return cfg, nil
}
