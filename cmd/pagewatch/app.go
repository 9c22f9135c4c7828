package main

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/aleister1102/pagewatch/internal/browser"
	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/aleister1102/pagewatch/internal/datastore"
	"github.com/aleister1102/pagewatch/internal/differ"
	"github.com/aleister1102/pagewatch/internal/extractor"
	"github.com/aleister1102/pagewatch/internal/httpclient"
	"github.com/aleister1102/pagewatch/internal/logger"
	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/aleister1102/pagewatch/internal/monitor"
	"github.com/aleister1102/pagewatch/internal/notifier"
	"github.com/aleister1102/pagewatch/internal/scheduler"
	"github.com/rs/zerolog"
)

// app holds the components shared by every command.
type app struct {
	configPath string
	logger     zerolog.Logger

	mu  sync.RWMutex // guards cfg and notifier across reloads
	cfg *config.GlobalConfig

	store    *datastore.FileSnapshotStore
	journal  *datastore.CheckJournal // nil when the journal is disabled
	notifier *notifier.Multi
	renderer *browser.Renderer
	checker  *monitor.Checker
	service  *monitor.MonitoringService
}

// loadConfig resolves, parses and validates the configuration file.
func loadConfig(path string) (string, *config.GlobalConfig, error) {
	resolved := config.GetConfigPath(path)
	cfg, err := config.LoadGlobalConfig(path)
	if err != nil {
		return "", nil, fmt.Errorf("could not load config: %w", err)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return "", nil, err
	}
	return resolved, cfg, nil
}

// newLogger builds the application logger; verbose forces the debug level.
func newLogger(cfg config.LogConfig, verbose bool) (zerolog.Logger, error) {
	if verbose {
		cfg.LogLevel = "debug"
	}
	return logger.New(cfg)
}

// newApp loads configuration and wires the monitoring engine.
func newApp() (*app, error) {
	path, cfg, err := loadConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	zLogger, err := newLogger(cfg.LogConfig, verbose)
	if err != nil {
		return nil, fmt.Errorf("could not initialize logger: %w", err)
	}

	a := &app{configPath: path, cfg: cfg, logger: zLogger}
	if err := a.wire(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire() error {
	cfg := a.cfg

	fetcher, err := a.newFetcher(cfg)
	if err != nil {
		return err
	}

	// The browser is only launched by the first target that asks for rendering.
	a.renderer = browser.NewRenderer(cfg.BrowserConfig, cfg.FetchConfig.UserAgent, a.logger)

	a.store, err = datastore.NewFileSnapshotStore(cfg.StorageConfig.DataDir, a.logger)
	if err != nil {
		return fmt.Errorf("could not open snapshot store: %w", err)
	}

	var recorder monitor.CheckRecorder
	if cfg.StorageConfig.JournalPath != "" {
		a.journal, err = datastore.NewCheckJournal(cfg.StorageConfig.JournalPath, a.logger)
		if err != nil {
			return fmt.Errorf("could not open check journal: %w", err)
		}
		recorder = a.journal
	}

	a.notifier = notifier.NewNotifierBuilder(a.logger).WithConfig(cfg.NotificationConfig).Build()

	a.checker = monitor.NewChecker(
		fetcher,
		a.renderer,
		extractor.New(a.logger),
		differ.NewLineDiffer(),
		a.store,
		a.notifier,
		fetchSettings(cfg.FetchConfig),
		a.logger,
	)

	sched := scheduler.New(cfg.MonitorTargets(), cfg.MonitorConfig.CheckInterval(), a.store, a.logger)
	a.service = monitor.NewMonitoringService(serviceConfig(cfg.MonitorConfig), a.checker, sched, recorder, a.logger)
	return nil
}

func (a *app) newFetcher(cfg *config.GlobalConfig) (*httpclient.Fetcher, error) {
	client, err := httpclient.NewHTTPClientBuilder(a.logger).WithFetchConfig(cfg.FetchConfig).Build()
	if err != nil {
		return nil, fmt.Errorf("could not create HTTP client: %w", err)
	}
	return httpclient.NewFetcher(client, cfg.MonitorConfig.RequestsPerSecondPerHost, a.logger), nil
}

// config returns the active configuration.
func (a *app) config() *config.GlobalConfig {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

func (a *app) currentNotifier() *notifier.Multi {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.notifier
}

// applyConfig hands a reloaded configuration to the running engine. The HTTP client and
// the notifiers are rebuilt; sections bound at startup only take effect after a restart.
func (a *app) applyConfig(cfg *config.GlobalConfig) {
	previous := a.config()

	if fetcher, err := a.newFetcher(cfg); err != nil {
		a.logger.Error().Err(err).Msg("Keeping the previous HTTP client")
	} else {
		a.checker.SetFetcher(fetcher)
	}
	multi := notifier.NewNotifierBuilder(a.logger).WithConfig(cfg.NotificationConfig).Build()
	a.checker.SetNotifier(multi)
	a.checker.SetSettings(fetchSettings(cfg.FetchConfig))
	a.service.UpdateConfig(serviceConfig(cfg.MonitorConfig))
	a.service.Scheduler().SetDefaultInterval(cfg.MonitorConfig.CheckInterval())
	a.service.SetTargets(cfg.MonitorTargets())

	a.mu.Lock()
	a.cfg = cfg
	a.notifier = multi
	a.mu.Unlock()

	if sections := restartRequired(previous, cfg); len(sections) > 0 {
		a.logger.Warn().Strs("sections", sections).Msg("Some changed settings only apply after a restart")
	}
	a.logger.Info().Int("targets", len(cfg.Targets)).Msg("Configuration reloaded")
}

// restartRequired lists the changed sections that are bound when the process starts.
func restartRequired(old, updated *config.GlobalConfig) []string {
	var sections []string
	if !reflect.DeepEqual(old.BrowserConfig, updated.BrowserConfig) {
		sections = append(sections, "browser_config")
	}
	if old.FetchConfig.UserAgent != updated.FetchConfig.UserAgent {
		sections = append(sections, "fetch_config.user_agent (rendered targets)")
	}
	if !reflect.DeepEqual(old.StorageConfig, updated.StorageConfig) {
		sections = append(sections, "storage_config")
	}
	if !reflect.DeepEqual(old.LogConfig, updated.LogConfig) {
		sections = append(sections, "log_config")
	}
	if !reflect.DeepEqual(old.StatusServerConfig, updated.StatusServerConfig) {
		sections = append(sections, "status_server_config")
	}
	return sections
}

// history returns the journal as an interface value, nil when it is disabled.
func (a *app) history() historyReader {
	if a.journal == nil {
		return nil
	}
	return a.journal
}

// Close releases the browser and the journal.
func (a *app) Close() {
	var errs []error
	if a.renderer != nil {
		errs = append(errs, a.renderer.Close())
	}
	if a.journal != nil {
		errs = append(errs, a.journal.Close())
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn().Err(err).Msg("Error while shutting down")
	}
}

func fetchSettings(cfg config.FetchConfig) monitor.FetchSettings {
	return monitor.FetchSettings{
		Timeout:     cfg.Timeout(),
		MaxAttempts: cfg.RetryCount,
		RetryDelay:  cfg.RetryDelay(),
		Headers:     cfg.Headers,
	}
}

func serviceConfig(cfg config.MonitorConfig) monitor.ServiceConfig {
	return monitor.ServiceConfig{
		MaxConcurrentChecks: cfg.MaxConcurrentChecks,
		PollInterval:        cfg.PollInterval(),
	}
}

// lookupTarget finds a configured target by name or URL.
func (a *app) lookupTarget(nameOrURL string) (models.Target, error) {
	t, ok := config.FindTarget(a.config().MonitorTargets(), nameOrURL)
	if !ok {
		return models.Target{}, fmt.Errorf("no target named or located at %q", nameOrURL)
	}
	return t, nil
}
