package benchmark_test

import (
	"crypto/md5" //nolint:gosec // test algorithm
	"errors"
	"hash"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasbyte1/hash-audit/benchmark"
	"github.com/hasbyte1/hash-audit/cache"
	"github.com/hasbyte1/hash-audit/hashing"
)

// stepClock advances by step on every reading.
type stepClock struct {
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	cur := c.now
	c.now = c.now.Add(c.step)
	return cur
}

// countingRegistry registers "counting", an md5 that counts digests.
func countingRegistry(t *testing.T) (*hashing.Registry, *atomic.Int64) {
	t.Helper()
	var n atomic.Int64
	r := hashing.NewDefaultRegistry()
	require.NoError(t, r.Register("counting", func() hash.Hash {
		n.Add(1)
		return md5.New()
	}))
	return r, &n
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEngine(t *testing.T, store *cache.Store[benchmark.Result], cfgs ...func(*benchmark.Config)) (*benchmark.Engine, *atomic.Int64) {
	t.Helper()
	registry, n := countingRegistry(t)
	clock := &stepClock{now: time.Unix(1_700_000_000, 0), step: 10 * time.Millisecond}
	base := []func(*benchmark.Config){
		benchmark.WithRegistry(registry),
		benchmark.WithCache(store),
		benchmark.WithSource(benchmark.NewSeededSource(1)),
		benchmark.WithClock(clock.Now),
		benchmark.WithLogger(discardLogger()),
	}
	return benchmark.New(benchmark.NewConfig(append(base, cfgs...)...)), n
}

func request() benchmark.Request {
	req := benchmark.DefaultRequest("counting")
	req.DurationSeconds = 1
	return req
}

func TestDefaultRequest(t *testing.T) {
	req := benchmark.DefaultRequest(hashing.AlgorithmSHA256)
	assert.Equal(t, hashing.AlgorithmSHA256, req.Algorithm)
	assert.Equal(t, 2.0, req.DurationSeconds)
	assert.Equal(t, hashing.SaltNone, req.SaltMode)
	assert.Equal(t, 0, req.SaltLen)
	assert.True(t, req.UseCache)
}

func TestRequest_Spec(t *testing.T) {
	req := benchmark.Request{Algorithm: hashing.AlgorithmMD5, SaltMode: hashing.SaltPrefix, SaltLen: 4}
	assert.Equal(t, hashing.Spec{Algorithm: hashing.AlgorithmMD5, SaltMode: hashing.SaltPrefix, Salt: "SSSS"}, req.Spec())

	req.SaltLen = 0
	assert.Empty(t, req.Spec().Salt)
}

func TestEngine_Run_ExactCountWithStepClock(t *testing.T) {
	e, n := newEngine(t, nil)

	r, err := e.Run(request())
	require.NoError(t, err)

	// Readings at 0, 10ms, ..., 990ms start a hash; the 1s reading stops.
	assert.Equal(t, uint64(100), r.HashesComputed)
	assert.Equal(t, 1.0, r.ElapsedSeconds)
	assert.Equal(t, 100.0, r.HashesPerSecond)
	// One warmup digest on top of the counted ones.
	assert.Equal(t, int64(101), n.Load())

	assert.Equal(t, benchmark.Tool, r.Tool)
	assert.NotEmpty(t, r.RunID)
	assert.False(t, r.Cached)
	assert.Equal(t, hashing.Algorithm("counting"), r.Algorithm)
	assert.Equal(t, hashing.SaltNone, r.SaltMode)
	assert.Equal(t, 1.0, r.DurationSeconds)

	require.Len(t, r.Estimates, 3)
	assert.Equal(t, "24169.80d", r.Estimates[0].TimeFullSearchHuman)
	assert.Equal(t, "12084.90d", r.Estimates[0].TimeAvgSearchHuman)
	assert.Equal(t, "3743906242624487424", r.Estimates[2].Keyspace.String())
}

func TestEngine_Run_OverrunByOneStep(t *testing.T) {
	// Steps that do not divide the duration overrun by less than one step.
	e, _ := newEngine(t, nil)
	req := request()
	req.DurationSeconds = 0.025

	r, err := e.Run(req)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), r.HashesComputed)
	assert.InDelta(t, 0.03, r.ElapsedSeconds, 1e-9)
	assert.GreaterOrEqual(t, r.ElapsedSeconds, req.DurationSeconds)
}

func TestEngine_Run_ElapsedCoversDurationOnExactLanding(t *testing.T) {
	// ceil(d*1e9) nanoseconds converts back to slightly less than d.
	const d = 4.786380753000000432
	step := time.Duration(math.Ceil(d * float64(time.Second)))
	clock := &stepClock{now: time.Unix(1_700_000_000, 0), step: step}

	e, _ := newEngine(t, nil, benchmark.WithClock(clock.Now))
	req := request()
	req.DurationSeconds = d

	r, err := e.Run(req)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, r.ElapsedSeconds, req.DurationSeconds)
}

func TestEngine_Run_RealClock(t *testing.T) {
	registry, _ := countingRegistry(t)
	e := benchmark.New(benchmark.NewConfig(
		benchmark.WithRegistry(registry),
		benchmark.WithLogger(discardLogger()),
	))

	req := benchmark.DefaultRequest(hashing.AlgorithmSHA256)
	req.DurationSeconds = 0.02
	req.UseCache = false

	r, err := e.Run(req)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, r.ElapsedSeconds, req.DurationSeconds)
	assert.GreaterOrEqual(t, r.HashesComputed, uint64(1))
	assert.Greater(t, r.HashesPerSecond, 0.0)
	assert.InDelta(t, float64(r.HashesComputed)/r.ElapsedSeconds, r.HashesPerSecond, 1e-6)
}

func TestEngine_Run_SaltedRequest(t *testing.T) {
	e, _ := newEngine(t, nil)
	req := request()
	req.SaltMode = hashing.SaltSuffix
	req.SaltLen = 32

	r, err := e.Run(req)
	require.NoError(t, err)
	assert.Equal(t, hashing.SaltSuffix, r.SaltMode)
	assert.Equal(t, 32, r.SaltLen)
}

func TestEngine_Run_CacheHitDoesNoHashing(t *testing.T) {
	store := cache.New[benchmark.Result](t.TempDir(), cache.WithLogger(discardLogger()))
	e, n := newEngine(t, store)

	first, err := e.Run(request())
	require.NoError(t, err)
	assert.False(t, first.Cached)
	hashed := n.Load()

	second, err := e.Run(request())
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, hashed, n.Load(), "a cache hit must not hash")

	assert.Equal(t, first.RunID, second.RunID)
	assert.Equal(t, first.HashesComputed, second.HashesComputed)
	assert.Equal(t, first.ElapsedSeconds, second.ElapsedSeconds)
	assert.Equal(t, first.HashesPerSecond, second.HashesPerSecond)
	require.Len(t, second.Estimates, len(first.Estimates))
	for i := range first.Estimates {
		assert.Equal(t, first.Estimates[i].Policy, second.Estimates[i].Policy)
		assert.Equal(t, first.Estimates[i].Keyspace.String(), second.Estimates[i].Keyspace.String())
		assert.Equal(t, first.Estimates[i].TimeFullSearchSeconds, second.Estimates[i].TimeFullSearchSeconds)
		assert.Equal(t, first.Estimates[i].TimeFullSearchHuman, second.Estimates[i].TimeFullSearchHuman)
		assert.Equal(t, first.Estimates[i].TimeAvgSearchHuman, second.Estimates[i].TimeAvgSearchHuman)
	}

	// The stored entry keeps cached=false.
	stored, ok := store.Load(request().Key())
	require.True(t, ok)
	assert.False(t, stored.Cached)
}

func TestEngine_Run_CacheIsolation(t *testing.T) {
	store := cache.New[benchmark.Result](t.TempDir(), cache.WithLogger(discardLogger()))
	e, n := newEngine(t, store)

	base := request()
	variants := []benchmark.Request{base, base, base, base}
	variants[1].SaltMode = hashing.SaltPrefix
	variants[2].SaltLen = 8
	variants[3].DurationSeconds = 1.002

	for _, req := range variants {
		r, err := e.Run(req)
		require.NoError(t, err)
		assert.False(t, r.Cached, "%+v should not hit another configuration's entry", req)
	}

	ids, err := store.Entries()
	require.NoError(t, err)
	assert.Len(t, ids, len(variants))

	// Sub-millisecond differences share an entry.
	before := n.Load()
	near := base
	near.DurationSeconds = 1.0004
	r, err := e.Run(near)
	require.NoError(t, err)
	assert.True(t, r.Cached)
	assert.Equal(t, before, n.Load())
}

func TestEngine_Run_UseCacheFalseBypassesStore(t *testing.T) {
	store := cache.New[benchmark.Result](t.TempDir(), cache.WithLogger(discardLogger()))
	e, _ := newEngine(t, store)

	req := request()
	req.UseCache = false
	_, err := e.Run(req)
	require.NoError(t, err)

	ids, err := store.Entries()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestEngine_Run_CorruptEntryIsRemeasured(t *testing.T) {
	store := cache.New[benchmark.Result](t.TempDir(), cache.WithLogger(discardLogger()))
	require.NoError(t, os.WriteFile(store.Path(request().Key()), []byte("{"), 0o644))

	e, n := newEngine(t, store)
	r, err := e.Run(request())
	require.NoError(t, err)
	assert.False(t, r.Cached)
	assert.Positive(t, n.Load())

	_, ok := store.Load(request().Key())
	assert.True(t, ok, "a fresh result replaces the corrupt entry")
}

func TestEngine_Run_EmptyEntryIsRemeasured(t *testing.T) {
	for _, body := range []string{"null", "{}", `{"tool":"hash-audit"}`} {
		t.Run(body, func(t *testing.T) {
			store := cache.New[benchmark.Result](t.TempDir(), cache.WithLogger(discardLogger()))
			require.NoError(t, os.WriteFile(store.Path(request().Key()), []byte(body), 0o644))

			e, n := newEngine(t, store)
			r, err := e.Run(request())
			require.NoError(t, err)
			assert.False(t, r.Cached)
			assert.Equal(t, hashing.Algorithm("counting"), r.Algorithm)
			assert.Equal(t, uint64(100), r.HashesComputed)
			assert.Len(t, r.Estimates, 3)
			assert.Positive(t, n.Load())
		})
	}
}

func TestEngine_Run_SaveFailureFailsRun(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "cache")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	store := cache.New[benchmark.Result](blocker, cache.WithLogger(discardLogger()))

	e, _ := newEngine(t, store)
	r, err := e.Run(request())
	assert.Nil(t, r)
	assert.ErrorIs(t, err, cache.ErrWrite)
}

func TestEngine_Run_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*benchmark.Request)
		field string
	}{
		{"algorithm", func(r *benchmark.Request) { r.Algorithm = "sha999" }, "algorithm"},
		{"salt mode", func(r *benchmark.Request) { r.SaltMode = "middle" }, "salt_mode"},
		{"salt mode without salt", func(r *benchmark.Request) { r.SaltMode = "middle"; r.SaltLen = 0 }, "salt_mode"},
		{"negative salt length", func(r *benchmark.Request) { r.SaltLen = -1 }, "salt_len"},
		{"zero duration", func(r *benchmark.Request) { r.DurationSeconds = 0 }, "duration_seconds"},
		{"negative duration", func(r *benchmark.Request) { r.DurationSeconds = -2 }, "duration_seconds"},
		{"infinite duration", func(r *benchmark.Request) { r.DurationSeconds = math.Inf(1) }, "duration_seconds"},
		{"huge duration", func(r *benchmark.Request) { r.DurationSeconds = 1e12 }, "duration_seconds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, n := newEngine(t, nil)
			req := request()
			tt.edit(&req)

			_, err := e.Run(req)
			require.ErrorIs(t, err, hashing.ErrInvalidConfiguration)

			var cfgErr *hashing.ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.Zero(t, n.Load(), "no hashing before validation")
		})
	}
}

func TestEngine_Run_SourceFailure(t *testing.T) {
	e, _ := newEngine(t, nil, benchmark.WithSource(failingSource{}))
	_, err := e.Run(request())
	assert.ErrorIs(t, err, errSource)
}

func TestEngine_Run_CustomPolicies(t *testing.T) {
	policies := []benchmark.Policy{{Label: "pin(10) length=4", CharsetSize: 10, Length: 4}}
	e, _ := newEngine(t, nil, benchmark.WithPolicies(policies))

	r, err := e.Run(request())
	require.NoError(t, err)
	require.Len(t, r.Estimates, 1)
	assert.Equal(t, "10000", r.Estimates[0].Keyspace.String())
	assert.Equal(t, "1.67m", r.Estimates[0].TimeFullSearchHuman)
	assert.Equal(t, "50.00s", r.Estimates[0].TimeAvgSearchHuman)
}

var errSource = errors.New("source exhausted")

type failingSource struct{}

func (failingSource) Password(int) (string, error) { return "", errSource }
