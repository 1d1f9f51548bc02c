package performance

import "fmt"

const (
	// DefaultWindowSize is the number of recent quiz scores kept for trend detection.
	DefaultWindowSize = 5

	// DefaultTopicCap is the maximum size of the strong and weak topic sets.
	DefaultTopicCap = 5
)

// Config holds the engine's tunable constants. The defaults are design
// choices and should be validated against real learner data.
type Config struct {
	// ModalityAlpha is the smoothing factor for per-modality scores.
	ModalityAlpha float64 `mapstructure:"modality_alpha" json:"modality_alpha"`
	// TierAlpha is the smoothing factor for the tier score.
	TierAlpha float64 `mapstructure:"tier_alpha" json:"tier_alpha"`

	// WindowSize bounds RecentQuizScores.
	WindowSize int `mapstructure:"window_size" json:"window_size"`
	// TrendThreshold is the half-window mean difference (points) that
	// counts as a directional trend.
	TrendThreshold float64 `mapstructure:"trend_threshold" json:"trend_threshold"`

	// Tier evidence weights: all-time average, completion and streak.
	AverageWeight    float64 `mapstructure:"average_weight" json:"average_weight"`
	CompletionWeight float64 `mapstructure:"completion_weight" json:"completion_weight"`
	StreakWeight     float64 `mapstructure:"streak_weight" json:"streak_weight"`
	// StreakBonusCap is the maximum number of tier-score points the streak
	// term can contribute.
	StreakBonusCap float64 `mapstructure:"streak_bonus_cap" json:"streak_bonus_cap"`

	// Tier band boundaries on the 0-100 tier score.
	IntermediateBand float64 `mapstructure:"intermediate_band" json:"intermediate_band"`
	AdvancedBand     float64 `mapstructure:"advanced_band" json:"advanced_band"`

	// Streak lengths (days) for healthy and warning.
	HealthyStreak int `mapstructure:"healthy_streak" json:"healthy_streak"`
	WarningStreak int `mapstructure:"warning_streak" json:"warning_streak"`

	// MinLessons is the number of completed lessons before difficulty may move.
	MinLessons int `mapstructure:"min_lessons" json:"min_lessons"`

	// Topic thresholds (inclusive) and set cap.
	StrongTopicScore float64 `mapstructure:"strong_topic_score" json:"strong_topic_score"`
	WeakTopicScore   float64 `mapstructure:"weak_topic_score" json:"weak_topic_score"`
	TopicCap         int     `mapstructure:"topic_cap" json:"topic_cap"`
}

// DefaultConfig returns the standard engine settings.
func DefaultConfig() Config {
	return Config{
		ModalityAlpha:    0.3,
		TierAlpha:        0.3,
		WindowSize:       DefaultWindowSize,
		TrendThreshold:   8,
		AverageWeight:    0.6,
		CompletionWeight: 0.3,
		StreakWeight:     0.1,
		StreakBonusCap:   10,
		IntermediateBand: 40,
		AdvancedBand:     75,
		HealthyStreak:    3,
		WarningStreak:    1,
		MinLessons:       3,
		StrongTopicScore: 85,
		WeakTopicScore:   40,
		TopicCap:         DefaultTopicCap,
	}
}

// Validate checks that the tunables describe a sane engine.
func (c Config) Validate() error {
	switch {
	case c.ModalityAlpha <= 0 || c.ModalityAlpha > 1:
		return fmt.Errorf("modality alpha %.3f outside (0,1]", c.ModalityAlpha)
	case c.TierAlpha <= 0 || c.TierAlpha > 1:
		return fmt.Errorf("tier alpha %.3f outside (0,1]", c.TierAlpha)
	case c.WindowSize < 2:
		return fmt.Errorf("window size %d must be at least 2", c.WindowSize)
	case c.TrendThreshold < 0:
		return fmt.Errorf("trend threshold %.1f must not be negative", c.TrendThreshold)
	case c.AverageWeight < 0 || c.CompletionWeight < 0 || c.StreakWeight < 0:
		return fmt.Errorf("tier weights must not be negative")
	case c.StreakBonusCap < 0 || c.StreakBonusCap > 100:
		return fmt.Errorf("streak bonus cap %.1f outside [0,100]", c.StreakBonusCap)
	case !(0 < c.IntermediateBand && c.IntermediateBand < c.AdvancedBand && c.AdvancedBand < 100):
		return fmt.Errorf("tier bands %.1f/%.1f must satisfy 0 < intermediate < advanced < 100",
			c.IntermediateBand, c.AdvancedBand)
	case c.WarningStreak < 1 || c.HealthyStreak <= c.WarningStreak:
		return fmt.Errorf("streak thresholds healthy=%d warning=%d must satisfy 1 <= warning < healthy",
			c.HealthyStreak, c.WarningStreak)
	case c.MinLessons < 0:
		return fmt.Errorf("min lessons %d must not be negative", c.MinLessons)
	case c.WeakTopicScore >= c.StrongTopicScore:
		return fmt.Errorf("weak topic score %.1f must be below strong topic score %.1f",
			c.WeakTopicScore, c.StrongTopicScore)
	case c.TopicCap < 1:
		return fmt.Errorf("topic cap %d must be at least 1", c.TopicCap)
	}
	return nil
}
