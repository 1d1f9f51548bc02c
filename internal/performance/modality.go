package performance

// UpdateModalityScores smooths the score of the lesson's modality toward the
// quiz score. Other modalities are copied unchanged. An unknown modality
// leaves every score as it was.
func UpdateModalityScores(scores map[Modality]float64, m Modality, score, alpha float64) map[Modality]float64 {
	out := make(map[Modality]float64, len(scores)+1)
	for k, v := range scores {
		out[k] = v
	}
	if !m.Valid() {
		return out
	}
	old, ok := out[m]
	if !ok {
		old = NeutralModalityScore
	}
	out[m] = clampScore(old*(1-alpha) + clampScore(score)*alpha)
	return out
}
