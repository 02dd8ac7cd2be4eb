package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/feedpulse/feedpulse/pkg/config"
	"github.com/feedpulse/feedpulse/pkg/feed"
	"github.com/feedpulse/feedpulse/pkg/repository"
	"github.com/feedpulse/feedpulse/pkg/scheduler"
	"github.com/feedpulse/feedpulse/pkg/websub"
	"github.com/feedpulse/feedpulse/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"f" long:"config" env:"CONFIG" default:"config.yml" description:"config file path"`
	Listen string `short:"l" long:"listen" env:"LISTEN" description:"listen address, overrides config"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	setupLog(opts.Debug, opts.NoColor)

	lgr.Printf("[INFO] starting feedpulse version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		lgr.Printf("[INFO] termination signal received")
		cancel()
	}()

	if err := run(ctx, opts); err != nil {
		lgr.Printf("[ERROR] feedpulse failed: %v", err)
		os.Exit(1)
	}

	lgr.Printf("[INFO] shutdown complete")
}

func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}

	repos, err := repository.NewRepositories(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer func() {
		if closeErr := repos.Close(); closeErr != nil {
			lgr.Printf("[WARN] database close error: %v", closeErr)
		}
	}()

	fetcher := feed.NewFetcher(cfg.Fetch.Timeout, cfg.Fetch.UserAgent, cfg.Fetch.MaxBodySize)
	backoff := feed.NewBackoff(cfg.Fetch.DefaultInterval, cfg.Fetch.BaseRetryInterval, cfg.Fetch.Jitter)
	prober := feed.NewProbe(cfg.Fetch.Timeout, cfg.Fetch.UserAgent)

	sched := scheduler.NewScheduler(scheduler.Params{
		FeedManager:  repos.Feed,
		Fetcher:      fetcher,
		Backoff:      backoff,
		Sanitizer:    feed.NewSanitizer(),
		TickInterval: cfg.Schedule.TickInterval,
		MaxWorkers:   cfg.Schedule.MaxWorkers,
	})

	var subs *websub.Manager
	if cfg.WebSub.Enabled {
		subs = websub.NewManager(websub.Params{
			Store:           repos.Feed,
			Sink:            sched,
			CallbackBaseURL: cfg.WebSub.CallbackBaseURL,
			LeaseSeconds:    cfg.WebSub.LeaseSeconds,
			Timeout:         cfg.WebSub.Timeout,
		})
		sched.SetHubNotifier(subs)
		subs.Start(ctx)
		defer subs.Stop()
	}

	sched.Start(ctx)
	defer sched.Stop()

	srv := server.New(server.Config{
		Listen:       cfg.Server.Listen,
		Timeout:      cfg.Server.Timeout,
		MaxBodySize:  cfg.Fetch.MaxBodySize,
		PageSize:     cfg.Server.PageSize,
		WebSubEnable: cfg.WebSub.Enabled,
	}, repos.Feed, repos.Entry, sched, subManager(subs), prober, revision, opts.Debug)

	return srv.Run(ctx)
}

// subManager avoids handing the server a non-nil interface wrapping a nil
// manager when websub is disabled
func subManager(m *websub.Manager) server.SubManager {
	if m == nil {
		return nil
	}
	return m
}

func setupLog(dbg, noColor bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	if !noColor {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}

	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
