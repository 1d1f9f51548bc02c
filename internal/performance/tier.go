package performance

import "math"

// TierEvidence blends the three tier signals into a 0-100 evidence score.
// The streak term is worth at most cfg.StreakBonusCap points.
func TierEvidence(avg, completionRatio float64, streak int, cfg Config) float64 {
	// Ten streak days saturate the 0-100 streak scale.
	streakScale := math.Min(float64(max(streak, 0))*10, 100)
	streakPoints := math.Min(cfg.StreakWeight*streakScale, cfg.StreakBonusCap)

	evidence := cfg.AverageWeight*clampScore(avg) +
		cfg.CompletionWeight*clamp(completionRatio, 0, 1)*100 +
		streakPoints
	return clampScore(evidence)
}

// SmoothTierScore moves the previous tier score toward the new evidence.
func SmoothTierScore(prev, evidence, alpha float64) float64 {
	return clampScore(clampScore(prev)*(1-alpha) + evidence*alpha)
}

// ClassifyTier maps a tier score onto a band. A score sitting exactly on a
// band boundary keeps the previous tier when that tier borders the boundary;
// crossing requires being strictly past it.
func ClassifyTier(score float64, prev Tier, cfg Config) Tier {
	bounds := []float64{cfg.IntermediateBand, cfg.AdvancedBand}
	strict, lenient := 0, 0
	for _, b := range bounds {
		if score > b {
			strict++
		}
		if score >= b {
			lenient++
		}
	}

	idx := prev.rank()
	if idx < 0 {
		idx = strict
	}
	idx = min(max(idx, strict), lenient)
	return tierLevels[idx]
}
