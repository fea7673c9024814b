package benchmark

import (
	"fmt"
	"math"
	"math/big"

	"github.com/samber/lo"
)

// Policy is a password policy an attacker has to search exhaustively:
// every password of exactly Length characters over a CharsetSize alphabet.
type Policy struct {
	Label       string
	CharsetSize int64
	Length      int
}

// DefaultPolicies are projected by every benchmark run, smallest first.
//
//nolint:gochecknoglobals
var DefaultPolicies = []Policy{
	{Label: "lowercase(26) length=8", CharsetSize: 26, Length: 8},
	{Label: "alnum(62) length=8", CharsetSize: 62, Length: 8},
	{Label: "alnum+sym(72) length=10", CharsetSize: 72, Length: 10},
}

// Keyspace returns CharsetSize^Length.  The result is exact for any
// policy; it does not fit in 64 bits for larger ones.
func (p Policy) Keyspace() *big.Int {
	return new(big.Int).Exp(big.NewInt(p.CharsetSize), big.NewInt(int64(p.Length)), nil)
}

// Estimate projects the time to search p at hashesPerSecond.
func (p Policy) Estimate(hashesPerSecond float64) Estimate {
	space := p.Keyspace()
	full := FullSearchSeconds(space, hashesPerSecond)

	return Estimate{
		Policy:                p.Label,
		Keyspace:              space,
		TimeFullSearchSeconds: Seconds(full),
		TimeFullSearchHuman:   FormatSeconds(full),
		TimeAvgSearchHuman:    FormatSeconds(full / 2),
	}
}

// Project returns one [Estimate] per policy, in order.
func Project(policies []Policy, hashesPerSecond float64) []Estimate {
	return lo.Map(policies, func(p Policy, _ int) Estimate {
		return p.Estimate(hashesPerSecond)
	})
}

// FullSearchSeconds returns keyspace/hashesPerSecond, or +Inf when the rate
// is not positive.  The division is done in arbitrary precision and only
// the quotient is rounded to float64.
func FullSearchSeconds(keyspace *big.Int, hashesPerSecond float64) float64 {
	if !(hashesPerSecond > 0) || math.IsInf(hashesPerSecond, 0) {
		return math.Inf(1)
	}

	q := new(big.Float).SetInt(keyspace)
	q.Quo(q, big.NewFloat(hashesPerSecond))
	f, _ := q.Float64()
	return f
}

// FormatSeconds renders s in the largest unit among seconds, minutes,
// hours and days that keeps it below the next unit, with two decimals.
// Non-finite values render as "inf".
func FormatSeconds(s float64) string {
	switch {
	case math.IsInf(s, 0) || math.IsNaN(s):
		return "inf"
	case s < 60:
		return fmt.Sprintf("%.2fs", s)
	case s < 3600:
		return fmt.Sprintf("%.2fm", s/60)
	case s < 86400:
		return fmt.Sprintf("%.2fh", s/3600)
	default:
		return fmt.Sprintf("%.2fd", s/86400)
	}
}
