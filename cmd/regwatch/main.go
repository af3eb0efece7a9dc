package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/regwatch/regwatch/pkg/classify"
	"github.com/regwatch/regwatch/pkg/config"
	"github.com/regwatch/regwatch/pkg/content"
	"github.com/regwatch/regwatch/pkg/dedup"
	"github.com/regwatch/regwatch/pkg/feed"
	"github.com/regwatch/regwatch/pkg/llm"
	"github.com/regwatch/regwatch/pkg/repository"
	"github.com/regwatch/regwatch/pkg/scheduler"
	"github.com/regwatch/regwatch/pkg/search"
	"github.com/regwatch/regwatch/server"
)

// Opts with all CLI options
type Opts struct {
	Config  string `short:"c" long:"config" env:"CONFIG" default:"regwatch.yml" description:"config file path"`
	Debug   bool   `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool   `short:"V" long:"version" description:"show version info"`
	NoColor bool   `long:"no-color" env:"NO_COLOR" description:"disable color output"`
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

	cfg, err := config.Load(opts.Config)
	if err != nil {
		log.Printf("[ERROR] can't load config %s: %v", opts.Config, err)
		os.Exit(1)
	}

	var secrets []string
	if cfg.LLM.APIKey != "" {
		secrets = append(secrets, cfg.LLM.APIKey)
	}
	setupLog(opts.Debug, secrets...)

	log.Printf("[INFO] starting regwatch version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	if err := run(ctx, cfg, opts.Debug); err != nil {
		log.Printf("[ERROR] regwatch failed: %v", err)
		cancel()
		os.Exit(1)
	}
	cancel()

	log.Print("[INFO] shutdown complete")
}

// run wires all components and blocks until the context is canceled
func run(ctx context.Context, cfg *config.Config, debug bool) error {
	repos, err := repository.NewRepositories(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("init repositories: %w", err)
	}
	defer repos.Close()

	classifier := classify.NewClassifier(nil)
	normalizer := classifier.Normalizer()

	allowlist := feed.NewAllowlist(cfg.Search.Domains, cfg.Search.GovSite)
	feedParser := feed.NewParser(cfg.Fetch.Timeout, cfg.Fetch.UserAgent)
	dateScan := content.NewDateScanner(cfg.Fetch.Timeout, cfg.Fetch.UserAgent)
	provider := feed.NewProvider(feedParser, allowlist, dateScan, normalizer, "")

	sources := make([]feed.Source, len(cfg.Feeds))
	for i, f := range cfg.Feeds {
		sources[i] = feed.Source{Name: f.Name, URL: f.URL}
	}
	fetcher := feed.NewFetcher(feedParser, allowlist, normalizer, feed.FetcherConfig{
		Sources: sources,
		MaxAge:  time.Duration(cfg.Fetch.MaxAgeDays) * 24 * time.Hour,
		PerFeed: cfg.Fetch.PerFeed,
	})

	engine := dedup.NewEngine(repos.Record, cfg.Dedup.Threshold)
	expander := search.NewExpander(cfg.Search.Domains, cfg.Search.GovSite)
	ranker := search.NewRanker(cfg.Search.Ranker)
	searcher := search.NewSearcher(provider, expander, ranker, classifier, cfg.Search.Jurisdiction)
	brief := llm.NewGenerator(cfg.GetLLMConfig())

	sched := scheduler.NewScheduler(fetcher, provider, expander, classifier, engine,
		repos.Record, repos.Interest, scheduler.Config{
			ScanInterval: time.Duration(cfg.Schedule.ScanInterval) * time.Minute,
			TopInterests: cfg.Schedule.InterestQueries,
			Backfill:     cfg.Schedule.BackfillQueries,
			DedupWindow:  time.Duration(cfg.Dedup.WindowDays) * 24 * time.Hour,
		})

	sched.Start(ctx)
	defer sched.Stop()

	srv := server.New(cfg, repos.Record, repos.Interest, sched, searcher, brief,
		classifier, expander, revision, debug)
	return srv.Run(ctx)
}

func setupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
