package rating

import (
	"github.com/podiumlab/podium/internal/domain/model"
)

// FromBreakpoints interpolates a percentile fraction for a raw value using
// a metric's optional breakpoint table. Tables map known standards (e.g. a
// 4.5s sprint is "elite") to percentiles without needing a population; they
// feed display layers, not the canonical population-based percentile path.
//
// Tables are ascending by value; the percent column carries the direction,
// so lower-is-better metrics simply hold descending percents. Values
// outside the table clamp to its edges; between rows the percentile
// interpolates linearly. An empty table yields zero.
func FromBreakpoints(def model.MetricDefinition, value float64) float64 {
	bps := def.Breakpoints
	if len(bps) == 0 {
		return 0
	}

	if value <= bps[0].Value {
		return bps[0].Percent / 100
	}
	last := bps[len(bps)-1]
	if value >= last.Value {
		return last.Percent / 100
	}

	for i := 1; i < len(bps); i++ {
		lo, hi := bps[i-1], bps[i]
		if value > hi.Value {
			continue
		}
		frac := (value - lo.Value) / (hi.Value - lo.Value)
		return (lo.Percent + frac*(hi.Percent-lo.Percent)) / 100
	}
	return last.Percent / 100
}
