package benchmark

import (
	"encoding/json"
	"math"
	"math/big"

	"github.com/hasbyte1/hash-audit/hashing"
)

// Tool is the value of [Result.Tool].
const Tool = "hash-audit"

// Result is the payload of one benchmark run.
//
// A Result is saved to the cache exactly as returned by a measuring run,
// with Cached false.  Cached is set only on the copy returned for a cache
// hit.
type Result struct {
	Tool  string `json:"tool" yaml:"tool"`
	RunID string `json:"run_id" yaml:"run_id"`

	Algorithm       hashing.Algorithm `json:"algorithm" yaml:"algorithm"`
	Cached          bool              `json:"cached" yaml:"cached"`
	SaltMode        hashing.SaltMode  `json:"salt_mode" yaml:"salt_mode"`
	SaltLen         int               `json:"salt_len" yaml:"salt_len"`
	DurationSeconds float64           `json:"duration_seconds" yaml:"duration_seconds"`

	HashesComputed  uint64     `json:"hashes_computed" yaml:"hashes_computed"`
	ElapsedSeconds  float64    `json:"elapsed_seconds" yaml:"elapsed_seconds"`
	HashesPerSecond float64    `json:"hashes_per_second" yaml:"hashes_per_second"`
	Estimates       []Estimate `json:"estimates" yaml:"estimates"`
}

// Valid reports whether r was produced by a measuring run.  A decoded
// empty object is not valid.
func (r Result) Valid() bool {
	return r.Tool == Tool && r.Algorithm != "" && r.RunID != ""
}

// Estimate is the projected exhaustive-search cost of one [Policy].
type Estimate struct {
	Policy                string   `json:"policy" yaml:"policy"`
	Keyspace              *big.Int `json:"keyspace" yaml:"keyspace"`
	TimeFullSearchSeconds Seconds  `json:"time_full_search_seconds" yaml:"time_full_search_seconds"`
	TimeFullSearchHuman   string   `json:"time_full_search_human" yaml:"time_full_search_human"`
	TimeAvgSearchHuman    string   `json:"time_avg_search_human" yaml:"time_avg_search_human"`
}

// Seconds is a duration in seconds that may be infinite.  JSON has no
// infinity, so a non-finite value is encoded as the string "inf".
type Seconds float64

// IsInf reports whether s is infinite (or NaN).
func (s Seconds) IsInf() bool {
	return math.IsInf(float64(s), 0) || math.IsNaN(float64(s))
}

func (s Seconds) MarshalJSON() ([]byte, error) {
	if s.IsInf() {
		return []byte(`"inf"`), nil
	}
	return json.Marshal(float64(s))
}

func (s *Seconds) UnmarshalJSON(data []byte) error {
	if string(data) == `"inf"` {
		*s = Seconds(math.Inf(1))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*s = Seconds(f)
	return nil
}
