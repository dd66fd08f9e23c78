package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/job-agent/internal/answer"
	"github.com/jonathan/job-agent/internal/apply"
	"github.com/jonathan/job-agent/internal/browser"
	"github.com/jonathan/job-agent/internal/config"
	"github.com/jonathan/job-agent/internal/fetch"
	"github.com/jonathan/job-agent/internal/form"
	"github.com/jonathan/job-agent/internal/listing"
	"github.com/jonathan/job-agent/internal/monitor"
	"github.com/jonathan/job-agent/internal/network"
	"github.com/jonathan/job-agent/internal/observability"
	"github.com/jonathan/job-agent/internal/profile"
	"github.com/jonathan/job-agent/internal/tracker"
	"github.com/jonathan/job-agent/internal/types"
)

const defaultConfigPath = "config.json"

// loadConfig reads the config file named by --config and applies --log-level. When
// the default config file does not exist the built-in defaults are used.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := readConfig(configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

func readConfig(path string, explicit bool) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err == nil {
		return cfg, nil
	}
	if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	d := config.Default()
	d.ApplyEnv(os.Getenv)
	return &d, nil
}

// autoSubmit reports whether applications may be submitted without review. Both the
// profile and the config have to allow it.
func autoSubmit(cfg *config.Config, p *profile.Profile) bool {
	return p != nil && p.AutoSubmit && !cfg.ConfirmBeforeSubmit
}

// app holds the resources shared by the commands. Close releases them.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   tracker.Store
	browser *browser.Browser
	page    *browser.Page
	printer *observability.Printer
}

type appOptions struct {
	store   bool
	browser bool
}

func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := observability.NewLogger(observability.LoggerOptions{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, printer: observability.NewPrinter(os.Stdout)}

	if opts.store {
		a.store, err = tracker.Open(ctx, tracker.Options{DatabaseURL: cfg.DatabaseURL, SQLitePath: cfg.SQLitePath})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to open tracker: %w", err)
		}
	}

	if opts.browser {
		bopts := browser.DefaultOptions()
		bopts.Headless = !cfg.ShowBrowser
		a.browser, err = browser.New(ctx, bopts, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.page = a.browser.Page()
	}
	return a, nil
}

func (a *app) Close() {
	if a.browser != nil {
		a.browser.Close()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	_ = a.logger.Sync()
}

func (a *app) exporter() tracker.Exporter {
	return tracker.Exporter{Dir: a.cfg.OutputDir}
}

func (a *app) profile() (*profile.Profile, error) {
	return profile.Load(a.cfg.ProfilePath)
}

// applyOptions picks the application flow. The quick flow has the lower page ceiling.
func applyOptions(cfg *config.Config, p *profile.Profile) apply.Options {
	if cfg.QuickApply {
		return apply.SecondaryOptions(autoSubmit(cfg, p))
	}
	return apply.PrimaryOptions(autoSubmit(cfg, p))
}

func (a *app) applier(p *profile.Profile) *apply.Applier {
	dispatcher := form.NewDispatcher(answer.NewResolver(p), a.logger, form.DispatcherOptions{})
	return apply.NewApplier(a.page, p, dispatcher, applyOptions(a.cfg, p), a.logger)
}

func (a *app) finder() *network.Finder {
	return network.NewFinder(a.page, monitor.Pacer(a.cfg.SearchDelay()), a.logger)
}

// careers renders pages in the session browser when there is one, otherwise in a
// throwaway headless Chrome.
func (a *app) careers() *fetch.CareersMonitor {
	renderer := fetch.HeadlessRenderer(browser.DefaultActionTimeout, a.logger)
	if a.page != nil {
		page := a.page
		renderer = func(ctx context.Context, url string) (string, error) {
			return page.Scroll(ctx, url, 0, 0)
		}
	}
	return fetch.NewCareersMonitor(nil, renderer, monitor.Pacer(a.cfg.SearchDelay()), a.logger)
}

// monitor wires a full run. A nil profile disables applications.
func (a *app) monitor(p *profile.Profile) *monitor.Monitor {
	deps := monitor.Deps{
		Auth:     a.page,
		Searcher: listing.NewSearcher(a.page, monitor.Pacer(a.cfg.SearchDelay()), a.logger),
		Finder:   a.finder(),
		Careers:  a.careers(),
		Store:    a.store,
		Exporter: a.exporter(),
	}
	if p != nil {
		deps.Applier = a.applier(p)
	}
	m := monitor.New(*a.cfg, deps, a.logger)
	m.OnApply(func(job types.Job, _ *apply.Session) { a.printer.PrintOutcomeLine(job) })
	return m
}

// login signs the browser in, reporting whether it worked.
func (a *app) login(ctx context.Context) bool {
	if !a.cfg.HasCredentials() {
		a.logger.Warn("no linkedin credentials, continuing without login")
		return false
	}
	return a.page.LoginOrWarn(ctx, a.cfg.LinkedInEmail, a.cfg.LinkedInPassword)
}
