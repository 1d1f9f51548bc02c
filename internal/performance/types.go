package performance

// Modality is the primary activity mode of a lesson.
type Modality string

const (
	ModalityVisual    Modality = "visual"
	ModalityReading   Modality = "reading"
	ModalityHandsOn   Modality = "handson"
	ModalityListening Modality = "listening"
)

// AllModalities returns every modality in display order.
func AllModalities() []Modality {
	return []Modality{ModalityVisual, ModalityReading, ModalityHandsOn, ModalityListening}
}

// Valid reports whether m is one of the known modalities.
func (m Modality) Valid() bool {
	switch m {
	case ModalityVisual, ModalityReading, ModalityHandsOn, ModalityListening:
		return true
	}
	return false
}

// DisplayName returns a human-readable label for the modality.
func (m Modality) DisplayName() string {
	switch m {
	case ModalityVisual:
		return "Visual"
	case ModalityReading:
		return "Reading"
	case ModalityHandsOn:
		return "Hands-on"
	case ModalityListening:
		return "Listening"
	default:
		return string(m)
	}
}

// ParseModality maps loosely formatted input ("Hands-On", " visual ") to a
// Modality. ok is false when the value is not recognised.
func ParseModality(s string) (Modality, bool) {
	var b []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
			b = append(b, c+('a'-'A'))
		case c >= 'a' && c <= 'z':
			b = append(b, c)
		}
	}
	m := Modality(b)
	return m, m.Valid()
}

// Difficulty is the content-generation level for upcoming lessons.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

var difficultyLevels = []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	return d.level() >= 0
}

func (d Difficulty) level() int {
	for i, l := range difficultyLevels {
		if l == d {
			return i
		}
	}
	return -1
}

// Up returns the next harder difficulty, or d itself at the top.
func (d Difficulty) Up() Difficulty {
	i := d.level()
	if i < 0 {
		return DifficultyBeginner
	}
	if i+1 < len(difficultyLevels) {
		return difficultyLevels[i+1]
	}
	return d
}

// Down returns the next easier difficulty, or d itself at the bottom.
func (d Difficulty) Down() Difficulty {
	i := d.level()
	if i <= 0 {
		return DifficultyBeginner
	}
	return difficultyLevels[i-1]
}

// Tier is a slow-moving, holistic classification of learner skill.
type Tier string

const (
	TierBeginner     Tier = "beginner"
	TierIntermediate Tier = "intermediate"
	TierAdvanced     Tier = "advanced"
)

var tierLevels = []Tier{TierBeginner, TierIntermediate, TierAdvanced}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	return t.rank() >= 0
}

func (t Tier) rank() int {
	for i, l := range tierLevels {
		if l == t {
			return i
		}
	}
	return -1
}

// Trend is the short-horizon direction of recent quiz performance.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// Valid reports whether t is a known trend.
func (t Trend) Valid() bool {
	return t == TrendImproving || t == TrendStable || t == TrendDeclining
}

// StreakHealth classifies engagement consistency.
type StreakHealth string

const (
	StreakHealthy StreakHealth = "healthy"
	StreakWarning StreakHealth = "warning"
	StreakAtRisk  StreakHealth = "at-risk"
)

// Valid reports whether s is a known streak health value.
func (s StreakHealth) Valid() bool {
	return s == StreakHealthy || s == StreakWarning || s == StreakAtRisk
}

// Direction is the last difficulty move made by the controller.
type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStable Direction = "stable"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown || d == DirectionStable
}

// opposite reports whether a and b are reversing moves.
func (d Direction) opposite(o Direction) bool {
	return (d == DirectionUp && o == DirectionDown) || (d == DirectionDown && o == DirectionUp)
}
