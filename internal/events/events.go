// Package events publishes learner performance events to downstream
// consumers (analytics, parent dashboards, notifications).
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Event types. The type doubles as the AMQP routing key.
const (
	TypePerformanceUpdated = "performance.updated"
	TypeDifficultyChanged  = "difficulty.changed"
	TypeRewardEarned       = "reward.earned"
)

// Event is one published message.
type Event struct {
	Type         string    `json:"type"`
	LearnerID    string    `json:"learnerId"`
	SubmissionID string    `json:"submissionId,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
	Payload      any       `json:"payload"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// PerformancePayload is the payload of performance.updated.
type PerformancePayload struct {
	Score            float64 `json:"score"`
	Difficulty       string  `json:"difficulty"`
	Tier             string  `json:"tier"`
	Trend            string  `json:"trend"`
	StreakHealth     string  `json:"streakHealth"`
	LessonsCompleted int     `json:"lessonsCompleted"`
	Reason           string  `json:"reason"`
}

// DifficultyPayload is the payload of difficulty.changed.
type DifficultyPayload struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Direction string `json:"direction"`
	Rule      string `json:"rule"`
	Reason    string `json:"reason"`
}

// RewardPayload is the payload of reward.earned.
type RewardPayload struct {
	XP   int      `json:"xp"`
	Gems []string `json:"gems,omitempty"`
}

func encode(e Event) ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", e.Type, err)
	}
	return body, nil
}
