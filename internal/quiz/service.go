// Package quiz runs the quiz-completion workflow: validate the submission,
// apply it to the learner's performance record, then record and announce
// what changed.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/abhisek/brightpath/internal/events"
	"github.com/abhisek/brightpath/internal/performance"
	"github.com/abhisek/brightpath/internal/rewards"
	"github.com/abhisek/brightpath/internal/store"
)

// DefaultMaxAttempts bounds retries when the record changes underneath us.
const DefaultMaxAttempts = 3

// AdaptationLog records difficulty decisions.
type AdaptationLog interface {
	AppendAdaptation(ctx context.Context, e store.AdaptationEvent) (int64, error)
}

// Service completes quizzes.
type Service struct {
	engine      *performance.Engine
	records     store.RecordRepo
	adaptations AdaptationLog
	rewards     *rewards.Service
	publisher   events.Publisher
	logger      *slog.Logger
	validate    *validator.Validate
	newID       func() string
	maxAttempts int
}

// Option configures a Service.
type Option func(*Service)

// WithAdaptationLog records every decision to log.
func WithAdaptationLog(log AdaptationLog) Option {
	return func(s *Service) { s.adaptations = log }
}

// WithRewards awards XP and gems after each quiz.
func WithRewards(r *rewards.Service) Option {
	return func(s *Service) { s.rewards = r }
}

// WithPublisher announces performance changes through p.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMaxAttempts sets how many times a conflicting update is attempted.
func WithMaxAttempts(n int) Option {
	return func(s *Service) { s.maxAttempts = max(n, 1) }
}

// WithIDGenerator overrides submission ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// NewService creates a quiz Service.
func NewService(engine *performance.Engine, records store.RecordRepo, opts ...Option) *Service {
	s := &Service{
		engine:      engine,
		records:     records,
		logger:      slog.Default(),
		validate:    newValidator(),
		newID:       uuid.NewString,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Complete applies sub to the learner's record. Only the record write can
// fail the call; event logging, rewards and publishing are best-effort and
// logged on failure.
func (s *Service) Complete(ctx context.Context, sub Submission) (*Result, error) {
	sub.LearnerID = strings.TrimSpace(sub.LearnerID)
	if err := s.validate.Struct(sub); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSubmission, describeValidation(err))
	}

	modality, ok := performance.ParseModality(sub.Modality)
	if !ok {
		if sub.Modality != "" {
			s.logger.WarnContext(ctx, "unknown modality, modality scores unchanged",
				"learner_id", sub.LearnerID, "modality", sub.Modality)
		}
		modality = ""
	}

	q := performance.Quiz{
		Score:    sub.Score,
		Modality: modality,
		Topic:    sub.Topic,
		Signals: performance.Signals{
			CurrentStreak:   sub.CurrentStreak,
			CompletionRatio: sub.CompletionRatio,
		},
	}

	submissionID := s.newID()

	var (
		outcome performance.Outcome
		rec     *store.Record
		err     error
	)
	for attempt := 1; ; attempt++ {
		rec, err = s.records.Update(ctx, sub.LearnerID, func(h performance.History) (performance.History, error) {
			outcome = s.engine.Apply(h, q)
			return outcome.History, nil
		})
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrConflict) || attempt >= s.maxAttempts {
			return nil, fmt.Errorf("update performance record: %w", err)
		}
		s.logger.DebugContext(ctx, "record changed concurrently, retrying",
			"learner_id", sub.LearnerID, "attempt", attempt)
	}

	if rec.Recovered {
		s.logger.WarnContext(ctx, "stored record was unreadable, replaced with default",
			"learner_id", sub.LearnerID)
	}

	d := outcome.Decision
	s.logger.InfoContext(ctx, "quiz completed",
		"learner_id", sub.LearnerID,
		"submission_id", submissionID,
		"score", outcome.Score,
		"rule", d.Rule,
		"difficulty", d.To,
		"direction", d.Direction,
		"tier", outcome.Tier.To,
	)

	result := &Result{
		SubmissionID: submissionID,
		LearnerID:    sub.LearnerID,
		Version:      rec.Version,
		Performance:  rec.History,
		Decision:     d,
		Tier:         outcome.Tier,
		Score:        outcome.Score,
		Recovered:    rec.Recovered,
	}

	s.recordAdaptation(ctx, sub, submissionID, modality, outcome)

	if s.rewards != nil {
		award, err := s.rewards.Award(ctx, sub.LearnerID, submissionID, outcome, q.Signals.Streak())
		if err != nil {
			s.logger.WarnContext(ctx, "record rewards", "learner_id", sub.LearnerID, "error", err)
		}
		result.Rewards = &award
	}

	s.publish(ctx, result)
	return result, nil
}

func (s *Service) recordAdaptation(ctx context.Context, sub Submission, submissionID string, modality performance.Modality, o performance.Outcome) {
	if s.adaptations == nil {
		return
	}
	h := o.History
	_, err := s.adaptations.AppendAdaptation(ctx, store.AdaptationEvent{
		LearnerID:      sub.LearnerID,
		SubmissionID:   submissionID,
		Score:          o.Score,
		Modality:       string(modality),
		Topic:          strings.TrimSpace(sub.Topic),
		Rule:           string(o.Decision.Rule),
		FromDifficulty: string(o.Decision.From),
		ToDifficulty:   string(o.Decision.To),
		Direction:      string(o.Decision.Direction),
		FromTier:       string(o.Tier.From),
		ToTier:         string(o.Tier.To),
		Trend:          string(h.Trend),
		StreakHealth:   string(h.StreakHealth),
		Reason:         o.Decision.Reason,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "record adaptation event", "learner_id", sub.LearnerID, "error", err)
	}
}

func (s *Service) publish(ctx context.Context, r *Result) {
	if s.publisher == nil {
		return
	}
	h := r.Performance
	msgs := []events.Event{{
		Type:         events.TypePerformanceUpdated,
		LearnerID:    r.LearnerID,
		SubmissionID: r.SubmissionID,
		OccurredAt:   h.LastUpdated,
		Payload: events.PerformancePayload{
			Score:            r.Score,
			Difficulty:       string(h.CurrentDifficulty),
			Tier:             string(h.LearnerTier),
			Trend:            string(h.Trend),
			StreakHealth:     string(h.StreakHealth),
			LessonsCompleted: h.TotalLessonsCompleted,
			Reason:           h.DifficultyChangeReason,
		},
	}}
	if r.Decision.Direction != performance.DirectionStable {
		msgs = append(msgs, events.Event{
			Type:         events.TypeDifficultyChanged,
			LearnerID:    r.LearnerID,
			SubmissionID: r.SubmissionID,
			OccurredAt:   h.LastUpdated,
			Payload: events.DifficultyPayload{
				From:      string(r.Decision.From),
				To:        string(r.Decision.To),
				Direction: string(r.Decision.Direction),
				Rule:      string(r.Decision.Rule),
				Reason:    r.Decision.Reason,
			},
		})
	}
	if r.Rewards != nil && (r.Rewards.XP > 0 || len(r.Rewards.Gems) > 0) {
		gems := make([]string, 0, len(r.Rewards.Gems))
		for _, g := range r.Rewards.Gems {
			gems = append(gems, string(g.Type))
		}
		msgs = append(msgs, events.Event{
			Type:         events.TypeRewardEarned,
			LearnerID:    r.LearnerID,
			SubmissionID: r.SubmissionID,
			OccurredAt:   h.LastUpdated,
			Payload:      events.RewardPayload{XP: r.Rewards.XP, Gems: gems},
		})
	}

	for _, m := range msgs {
		if err := s.publisher.Publish(ctx, m); err != nil {
			s.logger.WarnContext(ctx, "publish event", "type", m.Type, "learner_id", r.LearnerID, "error", err)
		}
	}
}
