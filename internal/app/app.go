// Package app wires the settings engine together: runtime configuration,
// logging, the state container, the persistence coordinator, and the two
// persistence destinations.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Wolfe-Services/Tachikoma-sub007/internal/appconfig"
	"github.com/Wolfe-Services/Tachikoma-sub007/internal/logging"
	"github.com/Wolfe-Services/Tachikoma-sub007/internal/settings"
	"github.com/Wolfe-Services/Tachikoma-sub007/internal/settings/persist"
	"github.com/Wolfe-Services/Tachikoma-sub007/internal/settings/persist/filebackend"
	"github.com/Wolfe-Services/Tachikoma-sub007/internal/settings/persist/httpbackend"
	"github.com/Wolfe-Services/Tachikoma-sub007/internal/settings/persist/sqlitecache"
)

// Options configures application construction.
type Options struct {
	// ConfigPath is the runtime config file. Empty uses the default path.
	ConfigPath string

	// WatchConfig enables live reload of the runtime config file.
	WatchConfig bool

	// LogOutput overrides the log destination (defaults to stderr).
	LogOutput *os.File
}

// App bundles the engine's components for one process.
type App struct {
	cfg     appconfig.Config
	log     *logging.Logger
	store   *settings.Store
	coord   *persist.Coordinator
	cache   *sqlitecache.Cache
	watcher *appconfig.Watcher
}

// New builds the application from its runtime configuration.
func New(opts Options) (*App, error) {
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = appconfig.DefaultPath()
	}

	cfg, err := appconfig.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading runtime config: %w", err)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel(cfg.Logging.Level)
	if opts.LogOutput != nil {
		logCfg.Output = opts.LogOutput
	}
	log := logging.New(logCfg)

	pipeline := settings.NewPipeline()
	pipeline.OnDefect(func(ruleIndex int, recovered any) {
		// A panicking validator is a programming defect, not user input.
		log.Error("validation rule %d panicked: %v", ruleIndex, recovered)
	})
	store := settings.NewStore(settings.WithPipeline(pipeline))

	cache, err := sqlitecache.Open(cfg.Cache.Dir)
	if err != nil {
		return nil, fmt.Errorf("opening settings cache: %w", err)
	}

	var backend persist.Backend
	if cfg.Backend.URL != "" {
		bopts := []httpbackend.Option{
			httpbackend.WithTimeout(time.Duration(cfg.Backend.TimeoutMs) * time.Millisecond),
		}
		if !cfg.Backend.VerifyTLS {
			bopts = append(bopts, httpbackend.WithInsecureTLS())
		}
		backend = httpbackend.New(cfg.Backend.URL, bopts...)
	} else {
		backend = filebackend.New(filepath.Join(filepath.Dir(cache.Path()), "backend.json"))
	}

	coord := persist.New(store, backend, cache,
		persist.WithDebounceDelay(time.Duration(cfg.Save.DebounceMs)*time.Millisecond),
		persist.WithLogger(log),
	)

	a := &App{
		cfg:   cfg,
		log:   log,
		store: store,
		coord: coord,
		cache: cache,
	}

	if opts.WatchConfig {
		w, err := appconfig.Watch(configPath, a.applyRuntimeConfig)
		if err != nil {
			log.Warn("config watch unavailable: %v", err)
		} else {
			a.watcher = w
		}
	}

	return a, nil
}

// Init performs the initial settings load through the fallback chain.
func (a *App) Init(ctx context.Context) error {
	return a.coord.Init(ctx)
}

// Store returns the settings state container.
func (a *App) Store() *settings.Store {
	return a.store
}

// Coordinator returns the persistence coordinator.
func (a *App) Coordinator() *persist.Coordinator {
	return a.coord
}

// Logger returns the application logger.
func (a *App) Logger() *logging.Logger {
	return a.log
}

// Config returns the runtime configuration the app was built with.
func (a *App) Config() appconfig.Config {
	return a.cfg
}

// Close releases the pending save timer, the config watcher, and the cache.
func (a *App) Close() {
	a.coord.Close()
	if a.watcher != nil {
		a.watcher.Close()
	}
	if err := a.cache.Close(); err != nil {
		a.log.Warn("closing cache: %v", err)
	}
}

// applyRuntimeConfig applies the reloadable subset of a freshly loaded
// runtime config.
func (a *App) applyRuntimeConfig(cfg appconfig.Config) {
	a.log.SetLevel(logging.ParseLevel(cfg.Logging.Level))
	a.coord.SetDebounceDelay(time.Duration(cfg.Save.DebounceMs) * time.Millisecond)
	a.log.Info("runtime config reloaded")
}
