package performance

// ClassifyTrend compares the mean of the older half of the window with the
// newer half. For odd lengths the middle score belongs to neither half.
// Fewer than two scores yields a stable, low-confidence result.
func ClassifyTrend(window []float64, threshold float64) (trend Trend, confident bool) {
	if len(window) < 2 {
		return TrendStable, false
	}
	half := len(window) / 2
	older := mean(window[:half])
	newer := mean(window[len(window)-half:])

	switch diff := newer - older; {
	case diff > threshold:
		return TrendImproving, true
	case diff < -threshold:
		return TrendDeclining, true
	default:
		return TrendStable, true
	}
}
