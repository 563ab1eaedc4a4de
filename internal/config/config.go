// Package config loads the Configuration input spec.md §6 bootstraps a hive
// instance with ({hiveUri, performanceMonitoring?}), expanded with the
// supplemented sync-interval and hot-reload settings from SPEC_FULL.md.
//
// Grounded on evalgo-org-eve/cli/root.go's viper wiring (file + env +
// flag precedence, AutomaticEnv, ReadInConfig) generalized from an HTTP
// service's broad config surface down to the hive's small one, plus
// fsnotify.Watcher for hot reload — open-policy-agent-opa's filewatcher and
// untoldecay-BeadsLog's daemon_watcher.go both reach for fsnotify the same
// way: watch one file, debounce, reload.
package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/dreamware/hivedir/internal/hivelog"
)

// Configuration is the hive's bootstrap input plus the operational knobs
// that may change without a process restart.
type Configuration struct {
	// HiveURI is the hive metadata database connection string. Immutable
	// once loaded — changing it requires a fresh Load.
	HiveURI string

	// PerformanceMonitoring enables the optional observability sink.
	// Hot-reloadable.
	PerformanceMonitoring bool

	// SyncInterval is the sync daemon's tick period (spec.md §9 open
	// question: the source left this undeclared; default 1s here).
	// Hot-reloadable.
	SyncInterval time.Duration
}

func defaults(v *viper.Viper) {
	v.SetDefault("hive_uri", "")
	v.SetDefault("performance_monitoring", false)
	v.SetDefault("sync_interval", time.Second)
}

// Load reads configuration from configPath (if non-empty) and the
// environment (HIVE_ prefix), applying defaults for anything unset.
func Load(configPath string) (Configuration, error) {
	v := viper.New()
	defaults(v)
	v.SetEnvPrefix("hive")
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Configuration{}, fmt.Errorf("config: reading %s: %w", configPath, err)
		}
	}

	return Configuration{
		HiveURI:               v.GetString("hive_uri"),
		PerformanceMonitoring: v.GetBool("performance_monitoring"),
		SyncInterval:          v.GetDuration("sync_interval"),
	}, nil
}

// Watcher hot-reloads SyncInterval and PerformanceMonitoring from
// configPath whenever it changes on disk. HiveURI is deliberately not
// reloadable: swapping the metadata database underneath a running hive has
// no well-defined semantics here.
type Watcher struct {
	v    *viper.Viper
	log  *hivelog.Logger
	path string

	mu      sync.RWMutex
	current Configuration

	onChange func(Configuration)
}

// NewWatcher builds a Watcher seeded with initial and begins watching
// configPath for changes. Call Stop to release the underlying fsnotify
// watcher.
func NewWatcher(configPath string, initial Configuration, log *hivelog.Logger) (*Watcher, error) {
	v := viper.New()
	defaults(v)
	v.SetEnvPrefix("hive")
	v.AutomaticEnv()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", configPath, err)
	}

	w := &Watcher{v: v, log: log, path: configPath, current: initial}
	v.OnConfigChange(func(fsnotify.Event) {
		w.reload()
	})
	v.WatchConfig()
	return w, nil
}

// OnChange registers a callback invoked after every successful hot reload.
func (w *Watcher) OnChange(fn func(Configuration)) {
	w.mu.Lock()
	w.onChange = fn
	w.mu.Unlock()
}

// Current returns the most recently reloaded configuration.
func (w *Watcher) Current() Configuration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *Watcher) reload() {
	w.mu.Lock()
	next := w.current
	next.SyncInterval = w.v.GetDuration("sync_interval")
	next.PerformanceMonitoring = w.v.GetBool("performance_monitoring")
	w.current = next
	onChange := w.onChange
	w.mu.Unlock()

	w.log.Infof("config reloaded from %s: sync_interval=%v performance_monitoring=%v",
		w.path, next.SyncInterval, next.PerformanceMonitoring)
	if onChange != nil {
		onChange(next)
	}
}
