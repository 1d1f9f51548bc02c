package api

import (
	"time"

	"github.com/abhisek/brightpath/internal/store"
)

type adaptationJSON struct {
	Sequence       int64     `json:"sequence"`
	SubmissionID   string    `json:"submissionId"`
	Score          float64   `json:"score"`
	Modality       string    `json:"modality,omitempty"`
	Topic          string    `json:"topic,omitempty"`
	Rule           string    `json:"rule"`
	FromDifficulty string    `json:"fromDifficulty"`
	ToDifficulty   string    `json:"toDifficulty"`
	Direction      string    `json:"direction"`
	FromTier       string    `json:"fromTier"`
	ToTier         string    `json:"toTier"`
	Trend          string    `json:"trend"`
	StreakHealth   string    `json:"streakHealth"`
	Reason         string    `json:"reason"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toAdaptationJSON(e store.AdaptationEvent) adaptationJSON {
	return adaptationJSON{
		Sequence:       e.Sequence,
		SubmissionID:   e.SubmissionID,
		Score:          e.Score,
		Modality:       e.Modality,
		Topic:          e.Topic,
		Rule:           e.Rule,
		FromDifficulty: e.FromDifficulty,
		ToDifficulty:   e.ToDifficulty,
		Direction:      e.Direction,
		FromTier:       e.FromTier,
		ToTier:         e.ToTier,
		Trend:          e.Trend,
		StreakHealth:   e.StreakHealth,
		Reason:         e.Reason,
		CreatedAt:      e.CreatedAt,
	}
}

type rewardsJSON struct {
	XP              int            `json:"xp"`
	Gems            int            `json:"gems"`
	ByRarity        map[string]int `json:"byRarity"`
	StreakMilestone int            `json:"streakMilestone"`
}
