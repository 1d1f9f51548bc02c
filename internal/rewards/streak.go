package rewards

// BaseStreakThreshold is the first streak length that awards a gem.
const BaseStreakThreshold = 5

// NextStreakThreshold returns the next streak milestone above current.
func NextStreakThreshold(current int) int {
	thresholds := []int{5, 10, 15, 20}
	for _, t := range thresholds {
		if t > current {
			return t
		}
	}
	// Beyond 20, award every 5.
	return ((current / 5) + 1) * 5
}

// ReachedMilestone returns the highest milestone in (claimed, streak], or 0
// if streak hasn't passed a new one. Skipped milestones collapse into the
// highest so a learner gets one gem per quiz.
func ReachedMilestone(claimed, streak int) int {
	reached := 0
	for m := NextStreakThreshold(claimed); m <= streak; m = NextStreakThreshold(m) {
		reached = m
	}
	return reached
}
