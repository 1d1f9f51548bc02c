package rewards

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/abhisek/brightpath/internal/performance"
	"github.com/abhisek/brightpath/internal/store"
)

func TestNextStreakThreshold(t *testing.T) {
	tests := []struct {
		current int
		want    int
	}{
		{0, 5},
		{4, 5},
		{5, 10},
		{9, 10},
		{10, 15},
		{15, 20},
		{19, 20},
		{20, 25},
		{24, 25},
		{25, 30},
	}

	for _, tt := range tests {
		got := NextStreakThreshold(tt.current)
		if got != tt.want {
			t.Errorf("NextStreakThreshold(%d) = %d, want %d", tt.current, got, tt.want)
		}
	}
}

func TestReachedMilestone(t *testing.T) {
	tests := []struct {
		claimed, streak int
		want            int
	}{
		{0, 4, 0},
		{0, 5, 5},
		{0, 12, 10},
		{5, 5, 0},
		{5, 9, 0},
		{5, 10, 10},
		{20, 24, 0},
		{20, 31, 30},
		{20, 3, 0},
	}
	for _, tt := range tests {
		got := ReachedMilestone(tt.claimed, tt.streak)
		if got != tt.want {
			t.Errorf("ReachedMilestone(%d, %d) = %d, want %d", tt.claimed, tt.streak, got, tt.want)
		}
	}
}

func TestStreakRarity(t *testing.T) {
	tests := []struct {
		days int
		want Rarity
	}{
		{5, RarityCommon},
		{9, RarityCommon},
		{10, RarityRare},
		{15, RarityEpic},
		{19, RarityEpic},
		{20, RarityLegendary},
		{100, RarityLegendary},
	}

	for _, tt := range tests {
		got := StreakRarity(tt.days)
		if got != tt.want {
			t.Errorf("StreakRarity(%d) = %q, want %q", tt.days, got, tt.want)
		}
	}
}

func TestDifficultyMultiplier(t *testing.T) {
	tests := []struct {
		d    performance.Difficulty
		want float64
	}{
		{performance.DifficultyBeginner, 1.0},
		{performance.DifficultyIntermediate, 1.25},
		{performance.DifficultyAdvanced, 1.5},
		{performance.Difficulty("bogus"), 1.0},
	}
	for _, tt := range tests {
		if got := DifficultyMultiplier(tt.d); got != tt.want {
			t.Errorf("DifficultyMultiplier(%s) = %v, want %v", tt.d, got, tt.want)
		}
	}
}

func outcome(score float64, from, to performance.Difficulty, dir performance.Direction) performance.Outcome {
	return performance.Outcome{
		Score: score,
		Decision: performance.Decision{
			From:      from,
			To:        to,
			Direction: dir,
		},
		Tier: performance.TierChange{From: performance.TierBeginner, To: performance.TierBeginner},
	}
}

func TestCompute_XPUsesDifficultyTakenAt(t *testing.T) {
	o := outcome(80, performance.DifficultyIntermediate, performance.DifficultyAdvanced, performance.DirectionUp)
	award := Compute(Input{Outcome: o})
	if award.XP != 100 {
		t.Errorf("XP = %d, want 100", award.XP)
	}
	if len(award.Gems) != 1 || award.Gems[0].Type != GemClimb || award.Gems[0].Rarity != RarityRare {
		t.Errorf("gems = %+v, want one rare climb gem", award.Gems)
	}
}

func TestCompute_HoldEarnsOnlyXP(t *testing.T) {
	o := outcome(55, performance.DifficultyBeginner, performance.DifficultyBeginner, performance.DirectionStable)
	award := Compute(Input{Outcome: o, Streak: 2})
	if award.XP != 55 {
		t.Errorf("XP = %d, want 55", award.XP)
	}
	if len(award.Gems) != 0 {
		t.Errorf("gems = %+v, want none", award.Gems)
	}
}

func TestCompute_AllGems(t *testing.T) {
	o := outcome(100, performance.DifficultyBeginner, performance.DifficultyIntermediate, performance.DirectionUp)
	o.Tier = performance.TierChange{From: performance.TierBeginner, To: performance.TierIntermediate}

	award := Compute(Input{Outcome: o, Streak: 15, ClaimedMilestone: 5})

	want := []GemType{GemClimb, GemPromotion, GemStreak, GemPerfect}
	if len(award.Gems) != len(want) {
		t.Fatalf("gems = %+v, want %v", award.Gems, want)
	}
	for i, g := range award.Gems {
		if g.Type != want[i] {
			t.Errorf("gem[%d] = %s, want %s", i, g.Type, want[i])
		}
	}
	if award.Gems[1].Rarity != RarityEpic {
		t.Errorf("promotion rarity = %s, want epic", award.Gems[1].Rarity)
	}
	if award.Gems[2].Milestone != 15 || award.Gems[2].Rarity != RarityEpic {
		t.Errorf("streak gem = %+v, want epic 15", award.Gems[2])
	}
}

func TestCompute_DemotionEarnsNothingExtra(t *testing.T) {
	o := outcome(30, performance.DifficultyIntermediate, performance.DifficultyBeginner, performance.DirectionDown)
	o.Tier = performance.TierChange{From: performance.TierIntermediate, To: performance.TierBeginner}
	award := Compute(Input{Outcome: o})
	if len(award.Gems) != 0 {
		t.Errorf("gems = %+v, want none", award.Gems)
	}
}

type fakeLedger struct {
	totals    store.RewardTotals
	totalsErr error
	appendErr error
	appended  []store.RewardEvent
	claims    map[[2]int]bool
}

func (f *fakeLedger) ClaimStreakMilestone(_ context.Context, _ string, run, milestone int) (bool, error) {
	if f.claims == nil {
		f.claims = make(map[[2]int]bool)
	}
	key := [2]int{run, milestone}
	if f.claims[key] {
		return false, nil
	}
	f.claims[key] = true
	return true, nil
}

func (f *fakeLedger) AppendReward(_ context.Context, e store.RewardEvent) (int64, error) {
	if f.appendErr != nil {
		return 0, f.appendErr
	}
	f.appended = append(f.appended, e)
	return int64(len(f.appended)), nil
}

func (f *fakeLedger) RewardTotals(_ context.Context, _ string) (*store.RewardTotals, error) {
	if f.totalsErr != nil {
		return nil, f.totalsErr
	}
	return &f.totals, nil
}

func TestService_AwardPersists(t *testing.T) {
	ledger := &fakeLedger{totals: store.RewardTotals{StreakMilestone: 5}}
	svc := NewService(ledger, nil)

	o := outcome(100, performance.DifficultyAdvanced, performance.DifficultyAdvanced, performance.DirectionStable)
	award, err := svc.Award(context.Background(), "ada", "sub-1", o, 10)
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if award.XP != 150 {
		t.Errorf("XP = %d, want 150", award.XP)
	}

	// XP, streak gem, perfect gem.
	if len(ledger.appended) != 3 {
		t.Fatalf("appended %d events, want 3: %+v", len(ledger.appended), ledger.appended)
	}
	for _, e := range ledger.appended {
		if e.LearnerID != "ada" || e.SubmissionID != "sub-1" {
			t.Errorf("event not tagged with learner/submission: %+v", e)
		}
	}
	if ledger.appended[0].Kind != store.RewardKindXP || ledger.appended[0].XP != 150 {
		t.Errorf("first event = %+v, want 150 XP", ledger.appended[0])
	}
	if ledger.appended[1].Milestone != 10 {
		t.Errorf("streak milestone = %d, want 10", ledger.appended[1].Milestone)
	}
}

func TestService_StreakNotRewardedTwice(t *testing.T) {
	ledger := &fakeLedger{totals: store.RewardTotals{StreakMilestone: 10}}
	svc := NewService(ledger, nil)

	o := outcome(70, performance.DifficultyBeginner, performance.DifficultyBeginner, performance.DirectionStable)
	award, err := svc.Award(context.Background(), "ada", "sub-2", o, 12)
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if len(award.Gems) != 0 {
		t.Errorf("gems = %+v, want none", award.Gems)
	}
}

func TestService_AppendErrorReturned(t *testing.T) {
	boom := errors.New("disk full")
	ledger := &fakeLedger{appendErr: boom, totalsErr: errors.New("unavailable")}
	svc := NewService(ledger, nil)

	o := outcome(90, performance.DifficultyBeginner, performance.DifficultyBeginner, performance.DirectionStable)
	award, err := svc.Award(context.Background(), "ada", "sub-3", o, 0)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if award.XP != 90 {
		t.Errorf("XP = %d, want 90 even when persistence fails", award.XP)
	}
}

func openLedger(t *testing.T) store.EventRepo {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open("file:rewards_" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s.EventRepo()
}

func streakMilestones(award Award) []int {
	var out []int
	for _, g := range award.Gems {
		if g.Type == GemStreak {
			out = append(out, g.Milestone)
		}
	}
	return out
}

func TestService_StreakMilestonesRestartAfterBreak(t *testing.T) {
	ledger := openLedger(t)
	svc := NewService(ledger, nil)
	ctx := context.Background()

	streaks := []int{5, 5, 6, 0, 1, 2, 3, 4, 5, 10}
	want := map[int]int{0: 5, 8: 5, 9: 10}

	for i, streak := range streaks {
		o := outcome(70, performance.DifficultyBeginner, performance.DifficultyBeginner, performance.DirectionStable)
		award, err := svc.Award(ctx, "ada", fmt.Sprintf("sub-%d", i), o, streak)
		if err != nil {
			t.Fatalf("quiz %d: award: %v", i, err)
		}
		got := streakMilestones(award)
		if m, ok := want[i]; ok {
			if len(got) != 1 || got[0] != m {
				t.Errorf("quiz %d (streak %d): streak gems = %v, want [%d]", i, streak, got, m)
			}
		} else if len(got) != 0 {
			t.Errorf("quiz %d (streak %d): streak gems = %v, want none", i, streak, got)
		}
	}

	totals, err := ledger.RewardTotals(ctx, "ada")
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals.StreakRun != 1 || totals.StreakMilestone != 10 || totals.LastStreak != 10 {
		t.Errorf("totals = run %d, milestone %d, last streak %d; want 1, 10, 10",
			totals.StreakRun, totals.StreakMilestone, totals.LastStreak)
	}
}

// staleLedger serves a fixed totals snapshot, as a concurrent quiz that read
// the ledger before another one wrote to it would see.
type staleLedger struct {
	store.EventRepo
	totals store.RewardTotals
}

func (l staleLedger) RewardTotals(context.Context, string) (*store.RewardTotals, error) {
	t := l.totals
	return &t, nil
}

func TestService_StreakMilestoneClaimedOnce(t *testing.T) {
	ledger := staleLedger{EventRepo: openLedger(t)}
	svc := NewService(ledger, nil)
	ctx := context.Background()

	gems := 0
	for i := range 2 {
		o := outcome(70, performance.DifficultyBeginner, performance.DifficultyBeginner, performance.DirectionStable)
		award, err := svc.Award(ctx, "ada", fmt.Sprintf("sub-%d", i), o, 5)
		if err != nil {
			t.Fatalf("quiz %d: award: %v", i, err)
		}
		gems += len(streakMilestones(award))
	}
	if gems != 1 {
		t.Errorf("streak gems awarded = %d, want 1", gems)
	}

	totals, err := ledger.EventRepo.RewardTotals(ctx, "ada")
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals.Gems != 1 {
		t.Errorf("recorded gems = %d, want 1", totals.Gems)
	}
}
