package quiz

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/brightpath/internal/performance"
	"github.com/abhisek/brightpath/internal/rewards"
)

// ErrInvalidSubmission is returned when a submission fails validation.
var ErrInvalidSubmission = errors.New("invalid submission")

// Submission is a completed quiz as reported by the client.
type Submission struct {
	LearnerID string  `json:"learnerId" validate:"required,max=128,learner_id"`
	Score     float64 `json:"score"`
	Modality  string  `json:"modality" validate:"max=32"`
	Topic     string  `json:"topic" validate:"max=128"`

	// Optional engagement signals. Missing values are treated conservatively.
	CurrentStreak   *int     `json:"currentStreak,omitempty"`
	CompletionRatio *float64 `json:"completionRatio,omitempty"`
}

// Result is the outcome of completing a quiz.
type Result struct {
	SubmissionID string                 `json:"submissionId"`
	LearnerID    string                 `json:"learnerId"`
	Version      int64                  `json:"version"`
	Performance  performance.History    `json:"performance"`
	Decision     performance.Decision   `json:"decision"`
	Tier         performance.TierChange `json:"tier"`
	Score        float64                `json:"score"`
	Rewards      *rewards.Award         `json:"rewards,omitempty"`
	// Recovered is set when a corrupt stored record was replaced.
	Recovered bool `json:"recovered,omitempty"`
}

var learnerIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.:@-]*$`)

// ValidLearnerID reports whether id is acceptable as a learner ID.
func ValidLearnerID(id string) bool {
	return len(id) <= 128 && learnerIDPattern.MatchString(id)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("learner_id", func(fl validator.FieldLevel) bool {
		return learnerIDPattern.MatchString(fl.Field().String())
	})
	return v
}

// describeValidation turns validator errors into a short message.
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		case "learner_id":
			msgs = append(msgs, fmt.Sprintf("%s contains invalid characters", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
