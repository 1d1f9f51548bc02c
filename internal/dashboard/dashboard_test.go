package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/abhisek/brightpath/internal/performance"
	"github.com/abhisek/brightpath/internal/store"
)

func sampleSnapshot() Snapshot {
	h := performance.NewHistory()
	h.CurrentDifficulty = performance.DifficultyIntermediate
	h.LearnerTier = performance.TierIntermediate
	h.Trend = performance.TrendImproving
	h.TrendConfident = true
	h.StreakHealth = performance.StreakHealthy
	h.TotalLessonsCompleted = 6
	h.AverageQuizScore = 78.5
	h.RecentQuizScores = []float64{70, 80, 90}
	h.ModalityScores[performance.ModalityHandsOn] = 91
	h.StrongTopics = []string{"counting"}
	h.WeakTopics = []string{"fractions"}
	h.DifficultyChangeReason = "Great progress, moving up."

	return Snapshot{
		LearnerID: "ada",
		Exists:    true,
		Version:   6,
		History:   h,
		Rewards:   store.RewardTotals{XP: 420, Gems: 3},
		Adaptations: []store.AdaptationEvent{
			{Score: 90, Rule: "escalate", FromDifficulty: "beginner", ToDifficulty: "intermediate", Reason: "Great progress, moving up.", CreatedAt: time.Now()},
			{Score: 80, Rule: "hold", FromDifficulty: "beginner", ToDifficulty: "beginner", Reason: "Keep going.", CreatedAt: time.Now()},
		},
	}
}

func TestRenderOverview(t *testing.T) {
	out := ansi.Strip(RenderOverview(sampleSnapshot(), 120))

	for _, want := range []string{
		"Learner ada",
		"intermediate",
		"improving",
		"healthy",
		"78.5",
		"70 · 80 · 90",
		"Great progress, moving up.",
		"Hands-on ★",
		"counting",
		"fractions",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("overview missing %q:\n%s", want, out)
		}
	}
}

func TestRenderOverview_NewLearner(t *testing.T) {
	out := ansi.Strip(RenderOverview(Snapshot{LearnerID: "newbie", History: performance.NewHistory()}, 100))

	if !strings.Contains(out, "no quizzes yet") {
		t.Errorf("expected empty-record hint:\n%s", out)
	}
	if !strings.Contains(out, performance.ReasonInsufficientLessons) {
		t.Errorf("expected default reason:\n%s", out)
	}
}

func TestRenderOverview_TentativeTrend(t *testing.T) {
	s := sampleSnapshot()
	s.History.TrendConfident = false
	out := ansi.Strip(RenderOverview(s, 120))
	if !strings.Contains(out, "improving (tentative)") {
		t.Errorf("expected tentative trend:\n%s", out)
	}
}

func TestRenderAdaptations(t *testing.T) {
	if out := ansi.Strip(RenderAdaptations(nil, 0, 80)); !strings.Contains(out, "No decisions") {
		t.Errorf("unexpected empty render: %q", out)
	}

	out := ansi.Strip(RenderAdaptations(sampleSnapshot().Adaptations, 1, 100))
	if !strings.Contains(out, "> ") || !strings.Contains(out, "Keep going.") {
		t.Errorf("selected row should show its reason:\n%s", out)
	}
	if strings.Contains(out, "Great progress") {
		t.Errorf("unselected row should not show its reason:\n%s", out)
	}
}

func press(m tea.Model, k tea.Key) (tea.Model, tea.Cmd) {
	return m.Update(tea.KeyPressMsg(k))
}

func TestModel_Navigation(t *testing.T) {
	snap := sampleSnapshot()
	m := New(func(context.Context) (Snapshot, error) { return snap, nil }, 0)

	var model tea.Model = m
	model, _ = model.Update(m.refresh()())
	model, _ = model.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	if view := ansi.Strip(model.(Model).content()); !strings.Contains(view, "Learner ada") {
		t.Errorf("expected overview after load:\n%s", view)
	}

	model, _ = press(model, tea.Key{Code: tea.KeyTab})
	if view := ansi.Strip(model.(Model).content()); !strings.Contains(view, "Recent decisions") {
		t.Errorf("tab should switch to decisions:\n%s", view)
	}
	model, _ = press(model, tea.Key{Code: tea.KeyDown})
	got := model.(Model)
	if got.tab != tabDecisions || got.selected != 1 {
		t.Fatalf("tab=%v selected=%d", got.tab, got.selected)
	}

	model, _ = press(model, tea.Key{Code: tea.KeyDown})
	if model.(Model).selected != 1 {
		t.Error("selection should stop at the last row")
	}

	_, cmd := press(model, tea.Key{Code: 'q', Text: "q"})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModel_LoadError(t *testing.T) {
	m := New(func(context.Context) (Snapshot, error) { return Snapshot{}, errors.New("db locked") }, 0)

	var model tea.Model = m
	model, _ = model.Update(m.refresh()())
	model, _ = model.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	if view := ansi.Strip(model.(Model).content()); !strings.Contains(view, "db locked") {
		t.Errorf("expected error in view:\n%s", view)
	}
}

func TestNewStoreLoader(t *testing.T) {
	s, err := store.Open("file:dashboard_loader?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()

	load := NewStoreLoader(s.RecordRepo(), s.EventRepo(), "ada", 10)
	snap, err := load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Exists || snap.History.CurrentDifficulty != performance.DifficultyBeginner {
		t.Errorf("missing learner should load the default record: %+v", snap)
	}

	engine := performance.New(performance.DefaultConfig())
	_, err = s.RecordRepo().Update(ctx, "ada", func(h performance.History) (performance.History, error) {
		return engine.Update(h, performance.Quiz{Score: 88}), nil
	})
	if err != nil {
		t.Fatal(err)
	}

	snap, err = load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !snap.Exists || snap.Version != 1 || snap.History.TotalLessonsCompleted != 1 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}
