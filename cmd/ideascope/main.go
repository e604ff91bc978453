package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/umputun/ideascope/pkg/config"
	"github.com/umputun/ideascope/pkg/llm"
	"github.com/umputun/ideascope/server"
)

// defaultConfigFile is used when --config is not set, it may be missing
const defaultConfigFile = "ideascope.yml"

// Opts with all CLI options
type Opts struct {
	Config  string `short:"c" long:"config" env:"CONFIG" default:"ideascope.yml" description:"configuration file"`
	EnvFile string `long:"env-file" env:"ENV_FILE" default:".env" description:"dotenv file with credentials"`

	Communities []string `short:"s" long:"community" description:"subreddit or feed URL to scan, repeatable or comma separated"`
	PostLimit   int      `short:"n" long:"limit" description:"maximum posts per community"`
	MinComments int      `long:"min-comments" default:"-1" description:"minimum comments of a post"`
	Provider    string   `short:"p" long:"provider" env:"IDEASCOPE_PROVIDER" description:"generation backend (ollama, openai, groq, huggingface, gemini)"`
	Model       string   `short:"m" long:"model" env:"IDEASCOPE_MODEL" description:"generation model"`
	Formats     []string `short:"f" long:"format" description:"export format (csv, json, text, markdown, sqlite), repeatable or comma separated"`
	OutputDir   string   `short:"o" long:"output" description:"output directory"`

	Listen      string `short:"l" long:"listen" env:"LISTEN" description:"serve control panel on this address instead of a single run"`
	MetricsFile string `long:"metrics-file" env:"METRICS_FILE" description:"write run metrics to this file in prometheus text format"`

	// common options
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
	log.Printf("[INFO] starting ideascope version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals, interrupted run still exports collected ideas
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()

	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
	log.Print("[INFO] completed")
}

// run loads configuration, checks the generation backend and makes a single run,
// or serves the control panel if listen address is set
func run(ctx context.Context, opts Opts) error {
	loadEnvFile(opts.EnvFile)

	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	setupLog(opts.Debug, opts.NoColor, cfg.Secrets()...)

	provider, err := llm.New(ctx, cfg.Generation)
	if err != nil {
		return fmt.Errorf("failed to create generation backend: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 30*time.Second)
	defer pingCancel()
	if err := provider.Ping(pingCtx); err != nil {
		return fmt.Errorf("generation backend %s is not available: %w", provider.Name(), err)
	}
	log.Printf("[INFO] generation backend %s is available", provider.Name())

	r := newRunner(cfg, provider, opts.MetricsFile)

	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
		srv := server.New(cfg, r, revision, opts.Debug)
		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}

	if _, err := r.Run(ctx); err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	return nil
}

// loadConfig reads the config file with command line overrides applied.
// Missing default config file is not an error, defaults are used instead.
func loadConfig(opts Opts) (*config.Config, error) {
	path := opts.Config
	if path == defaultConfigFile {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			log.Printf("[DEBUG] no %s found, using defaults", path)
			path = ""
		}
	}
	return config.Load(path, config.Overrides{
		Communities: opts.Communities,
		PostLimit:   opts.PostLimit,
		MinComments: opts.MinComments,
		Provider:    opts.Provider,
		Model:       opts.Model,
		Formats:     opts.Formats,
		OutputDir:   opts.OutputDir,
	})
}

// loadEnvFile sets credentials from the dotenv file, existing environment wins
func loadEnvFile(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("[WARN] can't load %s: %v", path, err)
		}
		return
	}
	log.Printf("[DEBUG] loaded environment from %s", path)
}

func setupLog(dbg, noColor bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Out(os.Stdout), lgr.Err(io.Discard)}
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
