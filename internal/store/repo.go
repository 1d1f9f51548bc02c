package store

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/brightpath/internal/performance"
)

var (
	// ErrConflict is returned when a record changed between read and write.
	ErrConflict = errors.New("performance record was modified concurrently")

	// ErrUnsupportedFormat is returned for records written by a newer release.
	ErrUnsupportedFormat = errors.New("unsupported record format")
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// Record is a stored performance record.
type Record struct {
	LearnerID string
	Version   int64
	Format    string
	History   performance.History
	UpdatedAt time.Time

	// Recovered is set when the stored data could not be decoded and the
	// neutral default record was substituted. Update reports it for the
	// record it replaced.
	Recovered bool
}

// UpdateFunc computes the next History from the current one.
type UpdateFunc func(current performance.History) (performance.History, error)

// RecordRepo stores one performance record per learner.
type RecordRepo interface {
	// Get returns the learner's record, or nil if none exists.
	Get(ctx context.Context, learnerID string) (*Record, error)

	// Update applies fn to the current record (or the neutral default) and
	// writes the result. It returns ErrConflict if another writer got there
	// first; the caller may retry.
	Update(ctx context.Context, learnerID string, fn UpdateFunc) (*Record, error)

	// Delete removes the learner's record. Deleting a missing record is not
	// an error.
	Delete(ctx context.Context, learnerID string) error

	// List returns all learner IDs with a record, sorted.
	List(ctx context.Context) ([]string, error)
}

// AdaptationEvent records one difficulty decision.
type AdaptationEvent struct {
	Sequence       int64
	LearnerID      string
	SubmissionID   string
	Score          float64
	Modality       string
	Topic          string
	Rule           string
	FromDifficulty string
	ToDifficulty   string
	Direction      string
	FromTier       string
	ToTier         string
	Trend          string
	StreakHealth   string
	Reason         string
	CreatedAt      time.Time
}

// RewardEvent records XP or a gem awarded for a quiz.
type RewardEvent struct {
	Sequence     int64
	LearnerID    string
	SubmissionID string
	Kind         string // "xp" or "gem"
	GemType      string
	Rarity       string
	XP           int
	Milestone    int // streak length for streak gems
	Streak       int // streak reported with the quiz
	StreakRun    int // increments each time the streak breaks
	Reason       string
	CreatedAt    time.Time
}

// RewardTotals summarizes a learner's rewards.
type RewardTotals struct {
	XP       int
	Gems     int
	ByRarity map[string]int

	// StreakMilestone is the highest milestone rewarded in the current
	// streak run.
	StreakMilestone int
	// LastStreak and StreakRun come from the most recent reward event.
	LastStreak int
	StreakRun  int
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request.
type LLMRequestEvent struct {
	Sequence int64
	LLMRequestEventData
	CreatedAt time.Time
}

// LLMUsage aggregates LLM requests for one purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendAdaptation records a difficulty decision.
	AppendAdaptation(ctx context.Context, e AdaptationEvent) (int64, error)

	// Adaptations returns a learner's decisions, newest first.
	Adaptations(ctx context.Context, learnerID string, opts QueryOpts) ([]AdaptationEvent, error)

	// AppendReward records an awarded reward.
	AppendReward(ctx context.Context, e RewardEvent) (int64, error)

	// RewardTotals sums a learner's rewards.
	RewardTotals(ctx context.Context, learnerID string) (*RewardTotals, error)

	// ClaimStreakMilestone reserves milestone for the learner's streak run.
	// It reports false when the milestone was already claimed in that run.
	ClaimStreakMilestone(ctx context.Context, learnerID string, run, milestone int) (bool, error)

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM request events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// LLMUsageByPurpose aggregates LLM requests grouped by purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates LLM requests grouped by model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
