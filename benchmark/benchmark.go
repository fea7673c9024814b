// Package benchmark measures hash throughput and projects what that
// throughput means for an attacker searching a password policy.
//
// [Engine.Run] hashes random passwords in a busy loop for a fixed wall-clock
// duration, derives hashes per second, and estimates the exhaustive-search
// time of each [Policy].  Results are cached per configuration, so a second
// run of the same configuration does no hashing at all.
package benchmark

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hasbyte1/hash-audit/cache"
	"github.com/hasbyte1/hash-audit/hashing"
)

const (
	// DefaultDurationSeconds is the default length of the timing loop.
	DefaultDurationSeconds = 2.0

	// DefaultPasswordLength is the length of every generated password.
	DefaultPasswordLength = 12

	// SaltFiller is repeated SaltLen times to build the benchmark salt.
	SaltFiller = "S"
)

// Request configures one benchmark run.
type Request struct {
	Algorithm       hashing.Algorithm
	DurationSeconds float64
	SaltMode        hashing.SaltMode
	SaltLen         int
	UseCache        bool
}

// DefaultRequest returns a cached, unsalted 2 second run of algorithm.
func DefaultRequest(algorithm hashing.Algorithm) Request {
	return Request{
		Algorithm:       algorithm,
		DurationSeconds: DefaultDurationSeconds,
		SaltMode:        hashing.SaltNone,
		SaltLen:         0,
		UseCache:        true,
	}
}

// Key returns the cache key of r.
func (r Request) Key() cache.Key {
	return cache.Key{
		Algorithm:       string(r.Algorithm),
		SaltMode:        string(r.SaltMode),
		SaltLen:         r.SaltLen,
		DurationSeconds: r.DurationSeconds,
	}
}

// Spec returns the hashing spec the timing loop uses: a salt of SaltLen
// filler characters, or no salt when SaltLen is 0.
func (r Request) Spec() hashing.Spec {
	var salt string
	if r.SaltLen > 0 {
		salt = strings.Repeat(SaltFiller, r.SaltLen)
	}
	return hashing.Spec{Algorithm: r.Algorithm, SaltMode: r.SaltMode, Salt: salt}
}

// Config is the configuration of an [Engine].
//
// Make sure to use the NewConfig function to create a new config, instead
// of instantiating the struct directly.
type Config struct {
	Registry *hashing.Registry    // optional
	Cache    *cache.Store[Result] // optional
	Source   PasswordSource       // optional
	Logger   *slog.Logger         // optional

	// Policies are projected in order by every run.
	//
	// Defaults to DefaultPolicies.
	Policies []Policy // optional

	// Clock must be monotonic.
	//
	// Defaults to time.Now.
	Clock func() time.Time // optional

	// PasswordLength is the length of generated passwords.
	//
	// Defaults to DefaultPasswordLength.
	PasswordLength int // optional
}

// NewConfig creates a new config.
//
// Without a cache store, requests with UseCache set run uncached.
func NewConfig(config ...func(*Config)) *Config {
	cfg := Config{
		Policies:       DefaultPolicies,
		PasswordLength: DefaultPasswordLength,
	}

	for _, f := range config {
		f(&cfg)
	}

	cfg.defaults()

	return &cfg
}

func (c *Config) defaults() {
	if c.Registry == nil {
		c.Registry = hashing.DefaultRegistry
	}

	if c.Source == nil {
		c.Source = NewCryptoSource()
	}

	if c.Logger == nil {
		c.Logger = slog.Default()
	}

	if c.Clock == nil {
		c.Clock = time.Now
	}

	if c.PasswordLength <= 0 {
		c.PasswordLength = DefaultPasswordLength
	}
}

// WithRegistry configures the algorithm registry.
func WithRegistry(registry *hashing.Registry) func(*Config) {
	return func(cfg *Config) { cfg.Registry = registry }
}

// WithCache configures the result cache.
func WithCache(store *cache.Store[Result]) func(*Config) {
	return func(cfg *Config) { cfg.Cache = store }
}

// WithSource configures the password source.
func WithSource(source PasswordSource) func(*Config) {
	return func(cfg *Config) { cfg.Source = source }
}

// WithPolicies configures the projected policies.
func WithPolicies(policies []Policy) func(*Config) {
	return func(cfg *Config) { cfg.Policies = policies }
}

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) func(*Config) {
	return func(cfg *Config) { cfg.Logger = logger }
}

// WithClock configures the clock.
func WithClock(clock func() time.Time) func(*Config) {
	return func(cfg *Config) { cfg.Clock = clock }
}

// Engine runs benchmarks.  A run occupies the calling goroutine for its
// whole duration and cannot be cancelled once started.
type Engine struct {
	config *Config
}

// New creates a new Engine.  A nil config is replaced by NewConfig().
func New(config *Config) *Engine {
	if config == nil {
		config = NewConfig()
	}
	return &Engine{config: config}
}

// Run benchmarks req.
//
// With req.UseCache set, a cached result for the same configuration is
// returned with Cached set and no hashing is done; otherwise the fresh
// result is saved before it is returned.  A configuration error is returned
// before any hashing starts.  A failure to save the result fails the run.
func (e *Engine) Run(req Request) (*Result, error) {
	if req.SaltMode == "" {
		req.SaltMode = hashing.SaltNone
	}

	spec, deadline, err := e.validate(req)
	if err != nil {
		return nil, err
	}

	log := e.config.Logger.With(
		slog.String("algorithm", string(req.Algorithm)),
		slog.String("salt_mode", string(req.SaltMode)),
		slog.Int("salt_len", req.SaltLen),
		slog.Float64("duration_seconds", req.DurationSeconds),
	)

	store := e.config.Cache
	useCache := req.UseCache && store != nil
	if useCache {
		if cached, ok := store.Load(req.Key()); ok {
			cached.Cached = true
			log.Info("benchmark: served from cache", slog.String("run_id", cached.RunID))
			return &cached, nil
		}
	}

	log.Info("benchmark: measuring")

	count, elapsed, err := e.measure(spec, deadline)
	if err != nil {
		return nil, err
	}

	var hps float64
	if elapsed > 0 {
		hps = float64(count) / elapsed
	}

	result := &Result{
		Tool:            Tool,
		RunID:           uuid.Must(uuid.NewV7()).String(),
		Algorithm:       req.Algorithm,
		Cached:          false,
		SaltMode:        req.SaltMode,
		SaltLen:         req.SaltLen,
		DurationSeconds: req.DurationSeconds,
		HashesComputed:  count,
		ElapsedSeconds:  elapsed,
		HashesPerSecond: hps,
		Estimates:       Project(e.config.Policies, hps),
	}

	log.Info("benchmark: measured",
		slog.String("run_id", result.RunID),
		slog.Uint64("hashes_computed", count),
		slog.Float64("elapsed_seconds", elapsed),
		slog.Float64("hashes_per_second", hps),
	)

	if useCache {
		if err := store.Save(req.Key(), *result); err != nil {
			return nil, fmt.Errorf("benchmark: save result: %w", err)
		}
	}

	return result, nil
}

// validate returns the spec to hash under and the loop duration.
func (e *Engine) validate(req Request) (hashing.Spec, time.Duration, error) {
	spec := req.Spec()
	if err := e.config.Registry.Validate(spec); err != nil {
		return hashing.Spec{}, 0, err
	}

	if req.SaltLen < 0 {
		return hashing.Spec{}, 0, hashing.NewConfigError("salt_len", req.SaltLen, "must be >= 0")
	}

	d := req.DurationSeconds
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return hashing.Spec{}, 0, hashing.NewConfigError("duration_seconds", d, "must be a positive number")
	}
	ns := math.Ceil(d * float64(time.Second))
	// The rounded product may still convert back below d.
	if ns < math.MaxInt64 && time.Duration(ns).Seconds() < d {
		ns++
	}
	if ns >= math.MaxInt64 {
		return hashing.Spec{}, 0, hashing.NewConfigError("duration_seconds", d, "too large")
	}

	return spec, time.Duration(ns), nil
}

// measure hashes one warmup password, then hashes fresh passwords until
// duration has passed.  The deadline is checked before each hash, starting
// with the start reading itself, so at least one hash is counted and none
// starts after the deadline.
func (e *Engine) measure(spec hashing.Spec, duration time.Duration) (uint64, float64, error) {
	if err := e.hashOne(spec); err != nil {
		return 0, 0, err
	}

	clock := e.config.Clock
	start := clock()
	deadline := start.Add(duration)

	var count uint64
	now := start
	for now.Before(deadline) {
		if err := e.hashOne(spec); err != nil {
			return 0, 0, err
		}
		count++
		now = clock()
	}

	// The reading that ended the loop is the end of the measurement.
	return count, now.Sub(start).Seconds(), nil
}

func (e *Engine) hashOne(spec hashing.Spec) error {
	password, err := e.config.Source.Password(e.config.PasswordLength)
	if err != nil {
		return fmt.Errorf("benchmark: generate password: %w", err)
	}
	if _, err := e.config.Registry.Hash(password, spec); err != nil {
		return err
	}
	return nil
}
