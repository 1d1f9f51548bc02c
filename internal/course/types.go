// Package course asks an LLM for a short course outline tailored to a
// learner's current performance record.
package course

import "github.com/abhisek/brightpath/internal/performance"

// Request describes what to plan.
type Request struct {
	// Subject is the course subject, e.g. "fractions".
	Subject string `json:"subject" validate:"required,max=128"`
	// Lessons is the number of lessons wanted. Zero uses DefaultLessons.
	Lessons int `json:"lessons" validate:"omitempty,min=1,max=12"`
	// GradeLevel is optional and only shapes tone.
	GradeLevel int `json:"gradeLevel,omitempty" validate:"omitempty,min=1,max=12"`
}

// Lesson is one planned lesson.
type Lesson struct {
	Title      string                 `json:"title"`
	Objective  string                 `json:"objective"`
	Modality   performance.Modality   `json:"modality"`
	Difficulty performance.Difficulty `json:"difficulty"`
	Topic      string                 `json:"topic,omitempty"`
}

// Outline is the planned course.
type Outline struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Lessons []Lesson `json:"lessons"`
	Model   string   `json:"model,omitempty"`
}

// Profile is the slice of a performance record the prompt uses.
type Profile struct {
	Difficulty        performance.Difficulty
	Tier              performance.Tier
	Trend             performance.Trend
	StreakHealth      performance.StreakHealth
	PreferredModality performance.Modality
	StrongTopics      []string
	WeakTopics        []string
	AverageScore      float64
	LessonsCompleted  int
}

// ProfileFromHistory extracts a Profile. h is not modified.
func ProfileFromHistory(h performance.History) Profile {
	h = h.Normalize()
	return Profile{
		Difficulty:        h.CurrentDifficulty,
		Tier:              h.LearnerTier,
		Trend:             h.Trend,
		StreakHealth:      h.StreakHealth,
		PreferredModality: h.StrongestModality(),
		StrongTopics:      append([]string(nil), h.StrongTopics...),
		WeakTopics:        append([]string(nil), h.WeakTopics...),
		AverageScore:      h.AverageQuizScore,
		LessonsCompleted:  h.TotalLessonsCompleted,
	}
}
