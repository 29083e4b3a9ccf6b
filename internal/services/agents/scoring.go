package agents

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Shared scoring math for all agent variants. Every sub-indicator score lands
// in [-100, 100]; confidence always lands in [0, 1].

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampScore(v float64) float64 { return clamp(v, -100, 100) }

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the population standard deviation.
func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// meanScores averages the sub-indicator map, the per-agent composite used by
// every variant.
func meanScores(scores map[string]float64) float64 {
	vals := make([]float64, 0, len(scores))
	for _, v := range scores {
		vals = append(vals, v)
	}
	return mean(vals)
}

// consensusConfidence rewards directional agreement among sub-indicators:
// full agreement beyond +-20 yields 0.9, otherwise confidence decays with
// dispersion down to a 0.3 floor.
func consensusConfidence(scores map[string]float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	vals := make([]float64, 0, len(scores))
	for _, v := range scores {
		vals = append(vals, v)
	}
	allBull, allBear := true, true
	for _, v := range vals {
		if v <= 20 {
			allBull = false
		}
		if v >= -20 {
			allBear = false
		}
	}
	if allBull || allBear {
		return 0.9
	}
	return math.Max(0.3, 1-stddev(vals)/100)
}

// completenessConfidence grows with the number of computable sub-indicators,
// capped per variant.
func completenessConfidence(base, step, cap float64, n int) float64 {
	return math.Min(cap, base+step*float64(n))
}

// joinReasons renders sub-indicator commentary in stable order.
func joinReasons(parts []string, fallback string) string {
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, "; ")
}

// sortedKeys keeps reasoning and tests deterministic over score maps.
func sortedKeys(scores map[string]float64) []string {
	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func pct(v float64) string { return fmt.Sprintf("%.1f%%", v*100) }
