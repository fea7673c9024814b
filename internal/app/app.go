// Package app implements the hash-audit command tree.
package app

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hasbyte1/hash-audit/benchmark"
	"github.com/hasbyte1/hash-audit/cache"
	"github.com/hasbyte1/hash-audit/config"
	"github.com/hasbyte1/hash-audit/hashing"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Config configures the command tree.
//
// Make sure to use the NewConfig function to create a new config, instead
// of instantiating the struct directly.
type Config struct {
	Stdout io.Writer // optional
	Stderr io.Writer // optional

	Registry *hashing.Registry        // optional
	Source   benchmark.PasswordSource // optional
	Clock    func() time.Time         // optional
}

// NewConfig creates a new config.
func NewConfig(config ...func(*Config)) *Config {
	cfg := Config{}
	for _, f := range config {
		f(&cfg)
	}

	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}

	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}

	if cfg.Registry == nil {
		cfg.Registry = hashing.DefaultRegistry
	}

	return &cfg
}

// WithOutput configures the standard output and error writers.
func WithOutput(stdout, stderr io.Writer) func(*Config) {
	return func(cfg *Config) {
		cfg.Stdout = stdout
		cfg.Stderr = stderr
	}
}

// WithRegistry configures the algorithm registry.
func WithRegistry(registry *hashing.Registry) func(*Config) {
	return func(cfg *Config) { cfg.Registry = registry }
}

// WithSource configures the benchmark password source.
func WithSource(source benchmark.PasswordSource) func(*Config) {
	return func(cfg *Config) { cfg.Source = source }
}

// WithClock configures the benchmark clock.
func WithClock(clock func() time.Time) func(*Config) {
	return func(cfg *Config) { cfg.Clock = clock }
}

// deps is assembled after flags are parsed, only by the commands that
// need the configuration.
type deps struct {
	config *config.Config
	logger *slog.Logger
	store  *cache.Store[benchmark.Result]
	engine *benchmark.Engine
}

// New returns the hash-audit application.
//
// Errors are returned from Run rather than exiting the process; use
// [ExitCode] to map them to a status.
func New(cfg *Config) *cli.App {
	if cfg == nil {
		cfg = NewConfig()
	}

	rt := &deps{}

	return &cli.App{
		Name:  "hash-audit",
		Usage: "Defensive password hashing lab: generate/verify hashes and benchmark hashing cost.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: config.DefaultFile,
				Usage: "YAML configuration file; ignored when missing",
			},
			&cli.StringFlag{
				Name:  "cache-dir",
				Usage: "benchmark cache directory (overrides configuration)",
			},
		},
		Commands: []*cli.Command{
			generateCommand(cfg),
			verifyCommand(cfg),
			benchmarkCommand(cfg, rt),
			algorithmsCommand(cfg),
			cacheCommand(cfg, rt),
		},
		Writer:          cfg.Stdout,
		ErrWriter:       cfg.Stderr,
		ExitErrHandler:  func(*cli.Context, error) {},
		HideHelpCommand: true,
	}
}

func (rt *deps) assemble(c *cli.Context, cfg *Config) error {
	if rt.config != nil {
		return nil
	}

	conf, err := config.Load(c.Context, c.String("config"))
	if err != nil {
		return cli.Exit(err.Error(), ExitUsage)
	}
	if dir := c.String("cache-dir"); dir != "" {
		conf.CacheDir = dir
	}

	rt.config = conf
	rt.logger = conf.Logger(cfg.Stderr)
	rt.store = cache.New[benchmark.Result](conf.CacheDir, cache.WithLogger(rt.logger))
	rt.engine = benchmark.New(benchmark.NewConfig(
		benchmark.WithRegistry(cfg.Registry),
		benchmark.WithCache(rt.store),
		benchmark.WithLogger(rt.logger),
		func(bc *benchmark.Config) {
			bc.Source = cfg.Source
			bc.Clock = cfg.Clock
		},
	))

	return nil
}

// ExitCode maps an error returned by the application to a process exit
// status: 0 for nil, the carried code for [cli.ExitCoder], 2 for an invalid
// configuration, and 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}

	if errors.Is(err, hashing.ErrInvalidConfiguration) {
		return ExitUsage
	}

	return ExitFailure
}
