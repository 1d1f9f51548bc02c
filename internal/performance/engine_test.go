package performance

import (
	"math/rand/v2"
	"reflect"
	"slices"
	"strings"
	"testing"
)

func streakOf(n int) *int { return &n }

func ratioOf(r float64) *float64 { return &r }

func quiz(score float64, streak int) Quiz {
	return Quiz{
		Score:    score,
		Modality: ModalityVisual,
		Topic:    "addition",
		Signals:  Signals{CurrentStreak: streakOf(streak), CompletionRatio: ratioOf(0.5)},
	}
}

// improvingHistory is a beginner record with five lessons behind it and a
// rising window.
func improvingHistory() History {
	h := NewHistory()
	h.TotalLessonsCompleted = 5
	h.RecentQuizScores = []float64{60, 65, 70, 90, 95}
	h.AverageQuizScore = 76
	h.TierScore = 50
	h.LearnerTier = TierIntermediate
	return h
}

func TestEngine_FreshRecordHoldsDifficulty(t *testing.T) {
	e := New(DefaultConfig())
	out := e.Apply(NewHistory(), quiz(95, 1))

	if out.History.CurrentDifficulty != DifficultyBeginner {
		t.Errorf("difficulty = %s, want beginner", out.History.CurrentDifficulty)
	}
	if out.History.DifficultyChangeReason != ReasonInsufficientLessons {
		t.Errorf("reason = %q, want %q", out.History.DifficultyChangeReason, ReasonInsufficientLessons)
	}
	if out.Decision.Rule != RuleInsufficientEvidence {
		t.Errorf("rule = %s, want %s", out.Decision.Rule, RuleInsufficientEvidence)
	}
	if out.History.LastDifficultyChangeDirection != DirectionStable {
		t.Errorf("direction = %s, want stable", out.History.LastDifficultyChangeDirection)
	}
	if out.History.TotalLessonsCompleted != 1 {
		t.Errorf("lessons = %d, want 1", out.History.TotalLessonsCompleted)
	}
	if out.History.TrendConfident {
		t.Error("expected low-confidence trend with a single score")
	}
}

func TestEngine_InsufficientEvidenceTwice(t *testing.T) {
	e := New(DefaultConfig())
	h := NewHistory()
	for _, score := range []float64{100, 0} {
		h = e.Update(h, quiz(score, 5))
		if h.CurrentDifficulty != DifficultyBeginner {
			t.Fatalf("difficulty = %s after %d lessons, want beginner", h.CurrentDifficulty, h.TotalLessonsCompleted)
		}
	}
}

func TestEngine_ImprovingEscalates(t *testing.T) {
	e := New(DefaultConfig())
	out := e.Apply(improvingHistory(), quiz(95, 4))
	h := out.History

	if h.Trend != TrendImproving {
		t.Errorf("trend = %s, want improving", h.Trend)
	}
	if h.StreakHealth != StreakHealthy {
		t.Errorf("streak health = %s, want healthy", h.StreakHealth)
	}
	if h.CurrentDifficulty != DifficultyIntermediate {
		t.Errorf("difficulty = %s, want intermediate", h.CurrentDifficulty)
	}
	if h.LastDifficultyChangeDirection != DirectionUp {
		t.Errorf("direction = %s, want up", h.LastDifficultyChangeDirection)
	}
	if !strings.Contains(h.DifficultyChangeReason, "improving") {
		t.Errorf("reason %q does not mention the trend", h.DifficultyChangeReason)
	}
	if !out.Decision.Changed() {
		t.Error("expected decision to report a change")
	}
}

func TestEngine_OscillationGuardFiresOnce(t *testing.T) {
	e := New(DefaultConfig())
	h := e.Update(improvingHistory(), quiz(95, 4))
	if h.LastDifficultyChangeDirection != DirectionUp {
		t.Fatalf("setup: direction = %s, want up", h.LastDifficultyChangeDirection)
	}

	guardFired := 0
	var directions []Direction
	for i := 0; i < 3; i++ {
		out := e.Apply(h, quiz(30, 4))
		if out.Decision.Rule == RuleOscillationGuard {
			guardFired++
		}
		directions = append(directions, out.History.LastDifficultyChangeDirection)
		h = out.History
	}

	if guardFired != 1 {
		t.Errorf("guard fired %d times, want 1", guardFired)
	}
	want := []Direction{DirectionStable, DirectionDown}
	if !slices.Equal(directions[:2], want) {
		t.Errorf("directions = %v, want prefix %v", directions, want)
	}
	if h.CurrentDifficulty != DifficultyBeginner {
		t.Errorf("difficulty = %s, want beginner after the delayed de-escalation", h.CurrentDifficulty)
	}
}

func TestEngine_GuardHoldsDifficulty(t *testing.T) {
	e := New(DefaultConfig())
	h := e.Update(improvingHistory(), quiz(95, 4))
	out := e.Apply(h, quiz(30, 4))

	if out.History.Trend != TrendDeclining {
		t.Fatalf("trend = %s, want declining", out.History.Trend)
	}
	if out.History.CurrentDifficulty != DifficultyIntermediate {
		t.Errorf("difficulty = %s, want intermediate held by guard", out.History.CurrentDifficulty)
	}
	if !strings.Contains(out.History.DifficultyChangeReason, "just moved up") {
		t.Errorf("reason = %q", out.History.DifficultyChangeReason)
	}
}

func TestEngine_SameDirectionEscalationAllowed(t *testing.T) {
	e := New(DefaultConfig())
	h := e.Update(improvingHistory(), quiz(95, 4))
	h.RecentQuizScores = []float64{40, 45, 50, 90}

	out := e.Apply(h, quiz(98, 4))
	if out.Decision.Rule != RuleEscalate {
		t.Fatalf("rule = %s, want escalate", out.Decision.Rule)
	}
	if out.History.CurrentDifficulty != DifficultyAdvanced {
		t.Errorf("difficulty = %s, want advanced", out.History.CurrentDifficulty)
	}
}

func TestEngine_BrokenStreakDeescalates(t *testing.T) {
	e := New(DefaultConfig())
	h := NewHistory()
	h.TotalLessonsCompleted = 6
	h.RecentQuizScores = []float64{55, 55, 55, 55}
	h.AverageQuizScore = 55
	h.CurrentDifficulty = DifficultyIntermediate

	out := e.Apply(h, quiz(55, 0))
	if out.History.Trend != TrendStable {
		t.Fatalf("trend = %s, want stable", out.History.Trend)
	}
	if out.History.StreakHealth != StreakAtRisk {
		t.Errorf("streak health = %s, want at-risk", out.History.StreakHealth)
	}
	if out.History.CurrentDifficulty != DifficultyBeginner {
		t.Errorf("difficulty = %s, want beginner", out.History.CurrentDifficulty)
	}
	if out.Decision.Rule != RuleDeescalateStreak {
		t.Errorf("rule = %s, want %s", out.Decision.Rule, RuleDeescalateStreak)
	}

	// A score-driven de-escalation explains itself differently.
	declining := h
	declining.RecentQuizScores = []float64{90, 90, 70, 40}
	scoreOut := e.Apply(declining, quiz(35, 5))
	if scoreOut.Decision.Rule != RuleDeescalateDecline {
		t.Fatalf("rule = %s, want %s", scoreOut.Decision.Rule, RuleDeescalateDecline)
	}
	if scoreOut.History.DifficultyChangeReason == out.History.DifficultyChangeReason {
		t.Errorf("decline and streak reasons are identical: %q", out.History.DifficultyChangeReason)
	}
}

func TestEngine_TopicDeduplicated(t *testing.T) {
	e := New(DefaultConfig())
	h := NewHistory()
	for i := 0; i < 3; i++ {
		q := quiz(90, 3)
		q.Topic = "fractions"
		h = e.Update(h, q)
	}

	count := 0
	for _, topic := range h.StrongTopics {
		if topic == "fractions" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("fractions appears %d times in %v, want 1", count, h.StrongTopics)
	}
}

func TestEngine_MissingSignalsAreConservative(t *testing.T) {
	e := New(DefaultConfig())
	h := improvingHistory()
	h.CurrentDifficulty = DifficultyIntermediate

	out := e.Apply(h, Quiz{Score: 70, Modality: ModalityReading})
	if out.History.StreakHealth != StreakAtRisk {
		t.Errorf("streak health = %s, want at-risk for missing streak", out.History.StreakHealth)
	}
	if out.History.CurrentDifficulty == DifficultyAdvanced {
		t.Error("missing streak must not allow escalation")
	}
}

func TestEngine_ClampsScoreInput(t *testing.T) {
	e := New(DefaultConfig())
	out := e.Apply(NewHistory(), quiz(250, 3))
	if out.Score != 100 {
		t.Errorf("score = %f, want 100", out.Score)
	}
	if out.History.AverageQuizScore != 100 {
		t.Errorf("average = %f, want 100", out.History.AverageQuizScore)
	}

	out = e.Apply(NewHistory(), quiz(-20, 3))
	if out.Score != 0 {
		t.Errorf("score = %f, want 0", out.Score)
	}
}

func TestEngine_DoesNotMutateInput(t *testing.T) {
	e := New(DefaultConfig())
	h := improvingHistory()
	h.StrongTopics = []string{"shapes"}
	before := h.Clone()

	first := e.Update(h, quiz(95, 4))
	second := e.Update(h, quiz(95, 4))

	if !reflect.DeepEqual(h, before) {
		t.Error("input history was modified")
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different outputs")
	}
}

func TestEngine_NormalizesCorruptRecord(t *testing.T) {
	e := New(DefaultConfig())
	h := History{
		CurrentDifficulty:             "expert",
		LearnerTier:                   "wizard",
		LastDifficultyChangeDirection: "sideways",
		AverageQuizScore:              400,
		TotalLessonsCompleted:         -4,
	}
	out := e.Apply(h, quiz(50, 2))

	if !out.History.CurrentDifficulty.Valid() || !out.History.LearnerTier.Valid() {
		t.Errorf("invalid enums survived: %s / %s", out.History.CurrentDifficulty, out.History.LearnerTier)
	}
	if out.History.TotalLessonsCompleted != 1 {
		t.Errorf("lessons = %d, want 1", out.History.TotalLessonsCompleted)
	}
	if len(out.History.ModalityScores) != len(AllModalities()) {
		t.Errorf("modality scores = %v, want all modalities", out.History.ModalityScores)
	}
}

func TestEngine_InvalidConfigFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TopicCap = 0
	e := New(cfg)
	if e.Config() != DefaultConfig() {
		t.Error("expected invalid config to fall back to defaults")
	}
}

func TestEngine_Properties(t *testing.T) {
	e := New(DefaultConfig())
	rng := rand.New(rand.NewPCG(7, 11))
	modalities := append(AllModalities(), Modality("unknown"))
	topics := []string{"fractions", "shapes", "time", "money", "decimals", "angles", "area", ""}

	for run := 0; run < 50; run++ {
		h := NewHistory()
		for step := 0; step < 40; step++ {
			q := Quiz{
				Score:    rng.Float64()*200 - 50,
				Modality: modalities[rng.IntN(len(modalities))],
				Topic:    topics[rng.IntN(len(topics))],
				Signals: Signals{
					CurrentStreak:   streakOf(rng.IntN(15) - 3),
					CompletionRatio: ratioOf(rng.Float64()*2 - 0.5),
				},
			}
			if rng.IntN(5) == 0 {
				q.Signals = Signals{}
			}

			out := e.Apply(h, q)
			next := out.History

			assertBounded(t, next)

			if moved := abs(next.CurrentDifficulty.level() - h.CurrentDifficulty.level()); moved > 1 {
				t.Fatalf("difficulty moved %d levels: %s -> %s", moved, h.CurrentDifficulty, next.CurrentDifficulty)
			}
			if h.LastDifficultyChangeDirection.opposite(next.LastDifficultyChangeDirection) {
				t.Fatalf("consecutive reversal %s -> %s", h.LastDifficultyChangeDirection, next.LastDifficultyChangeDirection)
			}
			if next.DifficultyChangeReason == "" {
				t.Fatal("empty difficulty change reason")
			}
			if !next.LastDifficultyChangeDirection.Valid() {
				t.Fatalf("invalid direction %q", next.LastDifficultyChangeDirection)
			}
			if next.TotalLessonsCompleted < e.Config().MinLessons && next.CurrentDifficulty != h.CurrentDifficulty {
				t.Fatal("difficulty changed before enough lessons")
			}
			h = next
		}
	}
}

func assertBounded(t *testing.T, h History) {
	t.Helper()
	inRange := func(name string, v float64) {
		if v < 0 || v > 100 {
			t.Fatalf("%s = %f outside [0,100]", name, v)
		}
	}
	for m, v := range h.ModalityScores {
		inRange(string(m), v)
	}
	for _, v := range h.RecentQuizScores {
		inRange("recent score", v)
	}
	inRange("average", h.AverageQuizScore)
	inRange("tier score", h.TierScore)
	if len(h.RecentQuizScores) > DefaultWindowSize {
		t.Fatalf("window length %d > %d", len(h.RecentQuizScores), DefaultWindowSize)
	}
	if len(h.StrongTopics) > DefaultTopicCap || len(h.WeakTopics) > DefaultTopicCap {
		t.Fatalf("topic sets exceed cap: %v / %v", h.StrongTopics, h.WeakTopics)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
