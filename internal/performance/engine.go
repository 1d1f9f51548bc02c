package performance

import "math"

// Signals is caller-supplied engagement context. Nil fields mean the value
// was missing and are replaced with the most conservative default.
type Signals struct {
	// CurrentStreak is the engagement streak in days.
	CurrentStreak *int `json:"currentStreak,omitempty"`
	// CompletionRatio is the fraction of course lessons completed, 0-1.
	CompletionRatio *float64 `json:"completionRatio,omitempty"`
}

// Streak returns the streak, defaulting to 0 when missing or negative.
func (s Signals) Streak() int {
	if s.CurrentStreak == nil || *s.CurrentStreak < 0 {
		return 0
	}
	return *s.CurrentStreak
}

// Completion returns the completion ratio clamped to [0,1], defaulting to 0.
func (s Signals) Completion() float64 {
	if s.CompletionRatio == nil || math.IsNaN(*s.CompletionRatio) {
		return 0
	}
	return clamp(*s.CompletionRatio, 0, 1)
}

// Quiz is a single completed quiz as seen by the engine.
type Quiz struct {
	// Score is the percentage earned; out-of-range values are clamped.
	Score    float64
	Modality Modality
	Topic    string
	Signals  Signals
}

// TierChange describes the tier transition, if any, caused by a quiz.
type TierChange struct {
	From Tier `json:"from"`
	To   Tier `json:"to"`
}

// Promoted reports whether the learner moved up a tier.
func (c TierChange) Promoted() bool {
	return c.To.rank() > c.From.rank()
}

// Demoted reports whether the learner moved down a tier.
func (c TierChange) Demoted() bool {
	return c.To.rank() < c.From.rank()
}

// Outcome is the result of applying one quiz to a History.
type Outcome struct {
	History  History
	Decision Decision
	Tier     TierChange
	// Score is the clamped score actually used.
	Score float64
}

// Engine applies quizzes to performance records.
type Engine struct {
	cfg Config
}

// New creates an Engine. Invalid configs fall back to DefaultConfig so an
// adaptive update can never be blocked by bad tuning.
func New(cfg Config) *Engine {
	if cfg.Validate() != nil {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg}
}

// Config returns the tunables in use.
func (e *Engine) Config() Config {
	return e.cfg
}

// Update returns the record that results from applying q to h.
func (e *Engine) Update(h History, q Quiz) History {
	return e.Apply(h, q).History
}

// Apply runs every stage in order and returns the new record together with
// the difficulty decision and tier change. h is not modified.
func (e *Engine) Apply(h History, q Quiz) Outcome {
	cfg := e.cfg
	prev := h.Normalize()
	next := prev.Clone()

	score := q.Score
	if math.IsNaN(score) {
		score = 0
	}
	score = clampScore(score)
	streak := q.Signals.Streak()

	next.ModalityScores = UpdateModalityScores(prev.ModalityScores, q.Modality, score, cfg.ModalityAlpha)

	next.RecentQuizScores = PushScore(prev.RecentQuizScores, score, cfg.WindowSize)
	next.AverageQuizScore = CumulativeAverage(prev.AverageQuizScore, prev.TotalLessonsCompleted, score)
	next.TotalLessonsCompleted = prev.TotalLessonsCompleted + 1

	next.Trend, next.TrendConfident = ClassifyTrend(next.RecentQuizScores, cfg.TrendThreshold)

	evidence := TierEvidence(next.AverageQuizScore, q.Signals.Completion(), streak, cfg)
	next.TierScore = SmoothTierScore(prev.TierScore, evidence, cfg.TierAlpha)
	next.LearnerTier = ClassifyTier(next.TierScore, prev.LearnerTier, cfg)

	next.StreakHealth = EvaluateStreak(streak, cfg)

	decision := Decide(ControllerInput{
		Trend:            next.Trend,
		Tier:             next.LearnerTier,
		StreakHealth:     next.StreakHealth,
		LessonsCompleted: next.TotalLessonsCompleted,
		LastDirection:    prev.LastDifficultyChangeDirection,
		Current:          prev.CurrentDifficulty,
	}, cfg)
	next.CurrentDifficulty = decision.To
	next.LastDifficultyChangeDirection = decision.Direction
	next.DifficultyChangeReason = decision.Reason

	next.StrongTopics, next.WeakTopics = UpdateTopics(prev.StrongTopics, prev.WeakTopics, q.Topic, score, cfg)

	return Outcome{
		History:  next,
		Decision: decision,
		Tier:     TierChange{From: prev.LearnerTier, To: next.LearnerTier},
		Score:    score,
	}
}

// Update applies q to h using the default engine settings.
func Update(h History, q Quiz) History {
	return defaultEngine.Update(h, q)
}

var defaultEngine = New(DefaultConfig())
