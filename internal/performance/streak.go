package performance

// EvaluateStreak classifies the externally tracked engagement streak.
func EvaluateStreak(streak int, cfg Config) StreakHealth {
	switch {
	case streak >= cfg.HealthyStreak:
		return StreakHealthy
	case streak >= cfg.WarningStreak:
		return StreakWarning
	default:
		return StreakAtRisk
	}
}
