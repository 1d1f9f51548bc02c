package performance

// PushScore appends score to the recent window and drops the oldest entries
// beyond size. The input slice is not modified.
func PushScore(window []float64, score float64, size int) []float64 {
	if size <= 0 {
		size = DefaultWindowSize
	}
	out := make([]float64, 0, size)
	out = append(out, window...)
	out = append(out, clampScore(score))
	if len(out) > size {
		out = out[len(out)-size:]
	}
	return out
}

// CumulativeAverage folds score into an all-time mean over completed quizzes.
func CumulativeAverage(avg float64, completed int, score float64) float64 {
	if completed <= 0 {
		return clampScore(score)
	}
	n := float64(completed)
	return clampScore((avg*n + clampScore(score)) / (n + 1))
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
