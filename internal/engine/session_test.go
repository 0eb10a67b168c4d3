package engine

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/tatianab/strategy-shuffle/internal/catalog"
)

var (
	strongPlay = []catalog.ToolID{"Might", "Agency", "Ethos"} // 8 base + variety, always >= 7
	weakPlay   = []catalog.ToolID{"Ethos"}                    // 2, never a token
)

func newSession(t *testing.T) *Session {
	t.Helper()
	return New(catalog.Default(), WithSeed(7))
}

func mustStart(t *testing.T, s *Session, names []string, rounds int) State {
	t.Helper()
	st, err := s.Start(names, rounds)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return st
}

func mustPlay(t *testing.T, s *Session, ids []catalog.ToolID, reflection string) State {
	t.Helper()
	res, err := s.SubmitSelection(ids)
	if err != nil {
		t.Fatalf("SubmitSelection: %v", err)
	}
	if !res.Accepted {
		t.Fatalf("Expected selection %v to be accepted, got warning %q", ids, res.Warning)
	}
	st, err := s.SubmitReflection(reflection)
	if err != nil {
		t.Fatalf("SubmitReflection: %v", err)
	}
	return st
}

func TestStart(t *testing.T) {
	s := newSession(t)
	st := mustStart(t, s, []string{"Ada", "  ", "Lin"}, 3)

	if st.Phase != PhaseAwaitingSelection {
		t.Errorf("Expected AwaitingSelection, got %s", st.Phase)
	}
	if st.Round != 1 || st.PlayerIndex != 0 || st.MaxRounds != 3 {
		t.Errorf("Unexpected cursor: round %d, player %d, max %d", st.Round, st.PlayerIndex, st.MaxRounds)
	}
	if st.Players[1].Name != "Player 2" {
		t.Errorf("Expected blank name to default to Player 2, got %q", st.Players[1].Name)
	}
	if st.Scenario.Name == "" {
		t.Error("Expected a current scenario")
	}
	if st.ScenariosLeft != 8 {
		t.Errorf("Expected 8 scenarios left in the pool, got %d", st.ScenariosLeft)
	}
	if st.ActivePlayer != "Ada" {
		t.Errorf("Expected Ada to start, got %s", st.ActivePlayer)
	}
}

func TestStartValidation(t *testing.T) {
	s := newSession(t)
	if _, err := s.Start(nil, 3); !errors.Is(err, ErrInvalidSetup) {
		t.Errorf("Expected ErrInvalidSetup for no players, got %v", err)
	}
	if _, err := s.Start([]string{"Ada"}, 0); !errors.Is(err, ErrInvalidSetup) {
		t.Errorf("Expected ErrInvalidSetup for zero rounds, got %v", err)
	}
	if s.Phase() != PhaseSetup {
		t.Fatalf("Expected failed start to stay in setup, got %s", s.Phase())
	}

	mustStart(t, s, []string{"Ada"}, 1)
	if _, err := s.Start([]string{"Lin"}, 1); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("Expected ErrInvalidPhase for a second start, got %v", err)
	}
}

func TestEmptySelectionRejected(t *testing.T) {
	s := newSession(t)
	mustStart(t, s, []string{"Ada", "Lin"}, 2)

	res, err := s.SubmitSelection(nil)
	if err != nil {
		t.Fatalf("Expected a warning, not an error: %v", err)
	}
	if res.Accepted {
		t.Fatal("Expected empty selection to be rejected")
	}
	if res.Warning == "" {
		t.Error("Expected a warning message")
	}

	st := s.State()
	if st.Phase != PhaseAwaitingSelection || st.PlayerIndex != 0 || st.TurnComplete {
		t.Errorf("Expected state unchanged, got phase %s player %d", st.Phase, st.PlayerIndex)
	}
	if len(st.Players[0].RoundScores) != 0 {
		t.Errorf("Expected no score recorded, got %v", st.Players[0].RoundScores)
	}
}

func TestDuplicateSelectionRejected(t *testing.T) {
	s := newSession(t)
	mustStart(t, s, []string{"Ada"}, 1)

	res, err := s.SubmitSelection([]catalog.ToolID{"Might", "Might"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Accepted {
		t.Fatal("Expected duplicate selection to be rejected")
	}
	if res.Warning != "Might was selected more than once." {
		t.Errorf("Unexpected warning %q", res.Warning)
	}
}

func TestScoredTurn(t *testing.T) {
	s := newSession(t)
	st := mustStart(t, s, []string{"Ada", "Lin"}, 1)

	res, err := s.SubmitSelection(strongPlay)
	if err != nil || !res.Accepted {
		t.Fatalf("Expected acceptance, got %+v, %v", res, err)
	}

	b, err := s.Breakdown()
	if err != nil {
		t.Fatalf("Breakdown: %v", err)
	}
	if b.Base != 8 || b.Variety != 1 || b.Total != b.Base+b.Synergy+b.Variety {
		t.Errorf("Unexpected breakdown %+v", b.Breakdown)
	}
	if b.Token != st.Scenario.RewardToken {
		t.Errorf("Expected token %q, got %q", st.Scenario.RewardToken, b.Token)
	}
	if b.Prompt == "" {
		t.Error("Expected a reflection prompt")
	}
	if b.Player != "Ada" {
		t.Errorf("Expected Ada's breakdown, got %s", b.Player)
	}

	mid := s.State()
	if mid.Phase != PhaseScored || !mid.TurnComplete {
		t.Errorf("Expected scored phase with turn flag set, got %s/%v", mid.Phase, mid.TurnComplete)
	}
	if mid.Players[0].InfluencePoints != b.Total || mid.Players[0].TokenCount() != 1 {
		t.Errorf("Expected points %d and one token, got %+v", b.Total, mid.Players[0])
	}

	after, err := s.SubmitReflection("Authority first, then a pilot.")
	if err != nil {
		t.Fatal(err)
	}
	if after.TurnComplete {
		t.Error("Expected turn flag to be cleared")
	}
	if after.PlayerIndex != 1 || after.Round != 1 {
		t.Errorf("Expected Lin's turn in round 1, got player %d round %d", after.PlayerIndex, after.Round)
	}
	if after.Scenario.Name != st.Scenario.Name {
		t.Error("Expected the scenario to stay the same within a round")
	}
	if got := after.Players[0].Reflections; len(got) != 1 || got[0].Prompt != b.Prompt {
		t.Errorf("Expected reflection recorded with its prompt, got %+v", got)
	}
}

func TestTokenOnlyAtThreshold(t *testing.T) {
	s := newSession(t)
	mustStart(t, s, []string{"Ada"}, 1)

	if res, _ := s.SubmitSelection(weakPlay); !res.Accepted {
		t.Fatal("Expected acceptance")
	}
	b, _ := s.Breakdown()
	if b.Total >= 7 || b.Token != "" {
		t.Errorf("Expected no token for total %d, got %q", b.Total, b.Token)
	}
	if st := s.State(); st.Players[0].TokenCount() != 0 {
		t.Errorf("Expected no tokens, got %v", st.Players[0].Tokens)
	}
}

func TestBlankReflectionSkipped(t *testing.T) {
	s := newSession(t)
	mustStart(t, s, []string{"Ada"}, 2)

	st := mustPlay(t, s, weakPlay, "   ")
	if len(st.Players[0].Reflections) != 0 {
		t.Errorf("Expected blank reflection to be skipped, got %v", st.Players[0].Reflections)
	}
	if s.Turns()[0].Reflection != "" {
		t.Errorf("Expected no reflection in the turn log")
	}
}

func TestTurnCursor(t *testing.T) {
	s := newSession(t)
	mustStart(t, s, []string{"A", "B", "C"}, 2)

	want := []struct{ round, player int }{
		{1, 0}, {1, 1}, {1, 2},
		{2, 0}, {2, 1}, {2, 2},
	}
	scenarios := map[int]string{}
	for i, w := range want {
		st := s.State()
		if st.Round != w.round || st.PlayerIndex != w.player {
			t.Fatalf("Turn %d: expected round %d player %d, got round %d player %d",
				i, w.round, w.player, st.Round, st.PlayerIndex)
		}
		if prev, ok := scenarios[st.Round]; ok && prev != st.Scenario.Name {
			t.Fatalf("Scenario changed within round %d", st.Round)
		}
		scenarios[st.Round] = st.Scenario.Name
		mustPlay(t, s, weakPlay, "")
	}

	if s.Phase() != PhaseGameOver {
		t.Fatalf("Expected game over after the last player of the last round, got %s", s.Phase())
	}
	if scenarios[1] == scenarios[2] {
		t.Error("Expected a new scenario in round 2")
	}
	if got := s.State().Progress(); got != 1 {
		t.Errorf("Expected progress 1 at game over, got %v", got)
	}
}

func TestScenarioPoolExhaustion(t *testing.T) {
	s := newSession(t)
	mustStart(t, s, []string{"Solo"}, 20)

	seen := []string{s.State().Scenario.Name}
	for i := 0; i < 19; i++ {
		st := mustPlay(t, s, weakPlay, "")
		if st.Phase == PhaseGameOver {
			break
		}
		seen = append(seen, st.Scenario.Name)
	}
	if len(seen) != 20 {
		t.Fatalf("Expected 20 scenarios drawn, got %d", len(seen))
	}

	for _, window := range [][]string{seen[0:9], seen[9:18]} {
		distinct := map[string]bool{}
		for _, name := range window {
			distinct[name] = true
		}
		if len(distinct) != 9 {
			t.Errorf("Expected all 9 scenarios before a repeat, got %d distinct in %v", len(distinct), window)
		}
	}
}

func scenarioOrder(t *testing.T, s *Session) []string {
	t.Helper()
	mustStart(t, s, []string{"Solo"}, 9)
	names := []string{s.State().Scenario.Name}
	for s.Phase() != PhaseGameOver {
		st := mustPlay(t, s, weakPlay, "")
		if st.Phase != PhaseGameOver {
			names = append(names, st.Scenario.Name)
		}
	}
	return names
}

func TestInjectedRandReplays(t *testing.T) {
	a := scenarioOrder(t, New(catalog.Default(), WithRand(rand.New(rand.NewPCG(1, 2)))))
	b := scenarioOrder(t, New(catalog.Default(), WithRand(rand.New(rand.NewPCG(1, 2)))))
	if len(a) != 9 || len(b) != 9 {
		t.Fatalf("Expected 9 scenarios each, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Expected identical order for identical sources, differ at %d: %s != %s", i, a[i], b[i])
		}
	}
}

func TestSeededSessionsReplay(t *testing.T) {
	order := func(seed int64) []string {
		s := New(catalog.Default(), WithSeed(seed))
		mustStart(t, s, []string{"Solo"}, 9)
		names := []string{s.State().Scenario.Name}
		for s.Phase() != PhaseGameOver {
			st := mustPlay(t, s, weakPlay, "")
			if st.Phase != PhaseGameOver {
				names = append(names, st.Scenario.Name)
			}
		}
		return names
	}

	a, b := order(99), order(99)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Expected identical order for the same seed, differ at %d: %s != %s", i, a[i], b[i])
		}
	}
}

func TestPhaseErrors(t *testing.T) {
	s := newSession(t)

	if _, err := s.SubmitSelection(weakPlay); !errors.Is(err, ErrSessionNotStarted) {
		t.Errorf("Expected ErrSessionNotStarted, got %v", err)
	}
	if _, err := s.SubmitReflection("x"); !errors.Is(err, ErrSessionNotStarted) {
		t.Errorf("Expected ErrSessionNotStarted, got %v", err)
	}

	mustStart(t, s, []string{"Ada"}, 1)
	if _, err := s.SubmitReflection("too early"); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("Expected ErrInvalidPhase for reflection before scoring, got %v", err)
	}
	if _, err := s.Breakdown(); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("Expected ErrInvalidPhase for breakdown before scoring, got %v", err)
	}
	if _, err := s.Summary(); !IsTurnError(err) {
		t.Errorf("Expected a turn error for summary mid-game, got %v", err)
	}

	if res, _ := s.SubmitSelection(weakPlay); !res.Accepted {
		t.Fatal("Expected acceptance")
	}
	if _, err := s.SubmitSelection(weakPlay); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("Expected ErrInvalidPhase for a second selection, got %v", err)
	}
}

func TestSummary(t *testing.T) {
	s := newSession(t)
	mustStart(t, s, []string{"Ada", "Lin", "Sam"}, 1)

	mustPlay(t, s, weakPlay, "")
	mustPlay(t, s, strongPlay, "Went big.")
	mustPlay(t, s, []catalog.ToolID{"Logos"}, "")

	sum, err := s.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Winner != "Lin" {
		t.Errorf("Expected Lin to win, got %s", sum.Winner)
	}
	if len(sum.Tied) != 0 {
		t.Errorf("Expected no ties, got %v", sum.Tied)
	}

	wantOrder := []string{"Lin", "Ada", "Sam"}
	for i, row := range sum.Rows {
		if row.Player != wantOrder[i] {
			t.Errorf("Row %d: expected %s, got %s", i, wantOrder[i], row.Player)
		}
		if row.FinalScore != row.BasePoints+5*row.TokenCount || row.TokenBonus != 5*row.TokenCount {
			t.Errorf("Row %d has inconsistent totals: %+v", i, row)
		}
	}
	if sum.Rows[0].TokenCount != 1 || len(sum.Rows[0].Reflections) != 1 {
		t.Errorf("Expected winner's token and reflection in the summary, got %+v", sum.Rows[0])
	}
}

func TestSummaryTies(t *testing.T) {
	s := newSession(t)
	mustStart(t, s, []string{"Ada", "Lin"}, 1)
	mustPlay(t, s, weakPlay, "")
	mustPlay(t, s, weakPlay, "")

	sum, err := s.Summary()
	if err != nil {
		t.Fatal(err)
	}
	if sum.Winner != "Ada" {
		t.Errorf("Expected the first entered player to win a tie, got %s", sum.Winner)
	}
	if len(sum.Tied) != 1 || sum.Tied[0] != "Lin" {
		t.Errorf("Expected Lin reported as tied, got %v", sum.Tied)
	}
}

func TestReset(t *testing.T) {
	s := newSession(t)
	mustStart(t, s, []string{"Ada", "Lin"}, 2)
	mustPlay(t, s, strongPlay, "")

	s.Reset()
	st := s.State()
	if st.Phase != PhaseSetup || st.Round != 0 || len(st.Players) != 0 || st.Scenario.Name != "" {
		t.Errorf("Expected a clean setup state, got %+v", st)
	}
	if len(s.Turns()) != 0 {
		t.Error("Expected the turn log to be cleared")
	}

	st = mustStart(t, s, []string{"Sam"}, 1)
	if st.Players[0].InfluencePoints != 0 || st.ScenariosLeft != 8 {
		t.Errorf("Expected a fresh game after reset, got %+v", st)
	}
	mustPlay(t, s, weakPlay, "")
	s.Reset()
	if s.Phase() != PhaseSetup {
		t.Errorf("Expected reset from game over to return to setup")
	}
}

func TestJournal(t *testing.T) {
	finished := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	s := New(catalog.Default(), WithSeed(3), WithClock(func() time.Time { return finished }))

	if _, err := s.Journal(); err == nil {
		t.Fatal("Expected journal to require game over")
	}

	mustStart(t, s, []string{"Ada"}, 2)
	mustPlay(t, s, strongPlay, "Listened, then acted.")
	mustPlay(t, s, weakPlay, "")

	j, err := s.Journal()
	if err != nil {
		t.Fatalf("Journal: %v", err)
	}
	if j.Name != "game-20260504-100000" || j.Seed != 3 || j.Rounds != 2 {
		t.Errorf("Unexpected journal header %+v", j)
	}
	if len(j.Turns) != 2 || j.Turns[0].Reflection != "Listened, then acted." || j.Turns[0].Round != 1 {
		t.Errorf("Unexpected turn log %+v", j.Turns)
	}
}
