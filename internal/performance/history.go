package performance

import (
	"math"
	"slices"
	"time"
)

// NeutralModalityScore is the prior every modality starts from.
const NeutralModalityScore = 50.0

// ReasonInsufficientLessons is shown until enough quizzes have been taken.
const ReasonInsufficientLessons = "Need more lessons before difficulty adapts."

// History is a learner's performance record. It is treated as an immutable
// value: Update returns a new History and never modifies its input.
type History struct {
	ModalityScores                map[Modality]float64 `json:"modalityScores"`
	AverageQuizScore              float64              `json:"averageQuizScore"`
	TotalLessonsCompleted         int                  `json:"totalLessonsCompleted"`
	RecentQuizScores              []float64            `json:"recentQuizScores"`
	CurrentDifficulty             Difficulty           `json:"currentDifficulty"`
	LearnerTier                   Tier                 `json:"learnerTier"`
	TierScore                     float64              `json:"tierScore"`
	Trend                         Trend                `json:"trend"`
	TrendConfident                bool                 `json:"trendConfident"`
	StreakHealth                  StreakHealth         `json:"streakHealth"`
	StrongTopics                  []string             `json:"strongTopics"`
	WeakTopics                    []string             `json:"weakTopics"`
	DifficultyChangeReason        string               `json:"difficultyChangeReason"`
	LastDifficultyChangeDirection Direction            `json:"lastDifficultyChangeDirection"`

	// LastUpdated is stamped by the persistence layer.
	LastUpdated time.Time `json:"lastUpdated"`
}

// NewHistory returns the neutral record used the first time a learner is seen.
func NewHistory() History {
	scores := make(map[Modality]float64, 4)
	for _, m := range AllModalities() {
		scores[m] = NeutralModalityScore
	}
	return History{
		ModalityScores:                scores,
		RecentQuizScores:              []float64{},
		CurrentDifficulty:             DifficultyBeginner,
		LearnerTier:                   TierBeginner,
		Trend:                         TrendStable,
		StreakHealth:                  StreakAtRisk,
		StrongTopics:                  []string{},
		WeakTopics:                    []string{},
		DifficultyChangeReason:        ReasonInsufficientLessons,
		LastDifficultyChangeDirection: DirectionStable,
	}
}

// Clone returns a deep copy of h.
func (h History) Clone() History {
	out := h
	out.ModalityScores = make(map[Modality]float64, len(h.ModalityScores))
	for k, v := range h.ModalityScores {
		out.ModalityScores[k] = v
	}
	out.RecentQuizScores = slices.Clone(h.RecentQuizScores)
	out.StrongTopics = slices.Clone(h.StrongTopics)
	out.WeakTopics = slices.Clone(h.WeakTopics)
	if out.RecentQuizScores == nil {
		out.RecentQuizScores = []float64{}
	}
	if out.StrongTopics == nil {
		out.StrongTopics = []string{}
	}
	if out.WeakTopics == nil {
		out.WeakTopics = []string{}
	}
	return out
}

// Normalize repairs a record loaded from storage so every field holds a legal
// value: unknown enum strings fall back to their defaults, scores are clamped
// and missing modalities get the neutral prior.
func (h History) Normalize() History {
	out := h.Clone()
	for _, m := range AllModalities() {
		v, ok := out.ModalityScores[m]
		if !ok || math.IsNaN(v) {
			v = NeutralModalityScore
		}
		out.ModalityScores[m] = clampScore(v)
	}
	for m := range out.ModalityScores {
		if !m.Valid() {
			delete(out.ModalityScores, m)
		}
	}
	out.AverageQuizScore = clampScore(out.AverageQuizScore)
	out.TierScore = clampScore(out.TierScore)
	if out.TotalLessonsCompleted < 0 {
		out.TotalLessonsCompleted = 0
	}
	for i, s := range out.RecentQuizScores {
		out.RecentQuizScores[i] = clampScore(s)
	}
	if !out.CurrentDifficulty.Valid() {
		out.CurrentDifficulty = DifficultyBeginner
	}
	if !out.LearnerTier.Valid() {
		out.LearnerTier = TierBeginner
	}
	if !out.Trend.Valid() {
		out.Trend = TrendStable
	}
	if !out.StreakHealth.Valid() {
		out.StreakHealth = StreakAtRisk
	}
	if !out.LastDifficultyChangeDirection.Valid() {
		out.LastDifficultyChangeDirection = DirectionStable
	}
	if out.DifficultyChangeReason == "" {
		out.DifficultyChangeReason = ReasonInsufficientLessons
	}
	return out
}

// StrongestModality returns the modality with the highest score. Ties resolve
// in AllModalities order.
func (h History) StrongestModality() Modality {
	best := ModalityVisual
	bestScore := -1.0
	for _, m := range AllModalities() {
		if s, ok := h.ModalityScores[m]; ok && s > bestScore {
			best, bestScore = m, s
		}
	}
	return best
}

func clampScore(v float64) float64 {
	return clamp(v, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
