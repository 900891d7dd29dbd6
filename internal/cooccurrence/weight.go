package cooccurrence

import (
	"math"
	"strconv"
	"time"
)

// Decay is the recency weighting function applied to every deck.
type Decay struct {
	HalfLifeDays float64
	// Floor is the minimum weight any deck can receive. Exponential decay
	// never reaches 0, so a floor of 0 leaves every weight untouched.
	Floor float64
}

// Weight returns max(Floor, exp(-ageDays/HalfLifeDays)).
func (d Decay) Weight(ageDays int) float64 {
	return math.Max(d.Floor, math.Exp(-float64(ageDays)/d.HalfLifeDays))
}

// AgeDays is the number of whole days between created and latest,
// truncating any partial day.
func AgeDays(latest, created time.Time) int {
	return int(latest.Sub(created) / (24 * time.Hour))
}

// round is correctly rounded on the exact binary value, ties to even.
// Scaling by 10^places first would round twice.
func round(v float64, places int) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	return r
}
