// Package bot provides automated seats for solo practice and simulations.
package bot

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/tatianab/strategy-shuffle/internal/catalog"
	"github.com/tatianab/strategy-shuffle/internal/coach"
	"github.com/tatianab/strategy-shuffle/internal/engine"
	"github.com/tatianab/strategy-shuffle/internal/scoring"
)

// Turn is what a strategy sees when it is asked to act.
type Turn struct {
	Player   string
	Round    int
	Scenario catalog.Scenario
	Tools    []catalog.Tool
}

// TurnFromState builds the view for the active player.
func TurnFromState(st engine.State, cat *catalog.Catalog) Turn {
	return Turn{
		Player:   st.ActivePlayer,
		Round:    st.Round,
		Scenario: st.Scenario,
		Tools:    cat.Tools(),
	}
}

type Strategy interface {
	Name() string
	Choose(ctx context.Context, turn Turn) ([]catalog.ToolID, error)
	Reflect(ctx context.Context, turn Turn, b engine.TurnBreakdown) (string, error)
}

const (
	KindRandom = "random"
	KindGreedy = "greedy"
	KindLLM    = "llm"
)

// Kinds lists the accepted strategy names.
var Kinds = []string{KindRandom, KindGreedy, KindLLM}

// New builds a strategy by name. The llm kind needs a coach.
func New(kind string, seed int64, c *coach.Coach, cat *catalog.Catalog) (Strategy, error) {
	switch strings.ToLower(kind) {
	case KindRandom:
		return NewRandom(seed), nil
	case KindGreedy:
		return Greedy{}, nil
	case KindLLM:
		if c == nil {
			return nil, fmt.Errorf("llm bots need GEMINI_API_KEY to be set")
		}
		return &LLM{coach: c, cat: cat}, nil
	}
	return nil, fmt.Errorf("unknown bot strategy %q (want one of %s)", kind, strings.Join(Kinds, ", "))
}

// ParseSeats reads "name=strategy" assignments.
func ParseSeats(specs []string) (map[string]string, error) {
	seats := make(map[string]string, len(specs))
	for _, spec := range specs {
		name, kind, ok := strings.Cut(spec, "=")
		name, kind = strings.TrimSpace(name), strings.TrimSpace(kind)
		if !ok || name == "" || kind == "" {
			return nil, fmt.Errorf("bot seat %q must look like name=strategy", spec)
		}
		seats[name] = strings.ToLower(kind)
	}
	return seats, nil
}

// Random plays one to three distinct tools at random.
type Random struct {
	rng *rand.Rand
}

func NewRandom(seed int64) *Random {
	// #nosec G404
	return &Random{rng: rand.New(rand.NewPCG(uint64(seed), 0x5eed))}
}

func (r *Random) Name() string { return KindRandom }

func (r *Random) Choose(_ context.Context, turn Turn) ([]catalog.ToolID, error) {
	n := 1 + r.rng.IntN(scoring.MaxSelection)
	perm := r.rng.Perm(len(turn.Tools))
	ids := make([]catalog.ToolID, n)
	for i := range ids {
		ids[i] = turn.Tools[perm[i]].ID
	}
	return ids, nil
}

func (r *Random) Reflect(_ context.Context, _ Turn, b engine.TurnBreakdown) (string, error) {
	return cannedReflection(b), nil
}

// Greedy plays the selection with the highest total. Ties go to fewer tools,
// then to catalog order.
type Greedy struct{}

func (Greedy) Name() string { return KindGreedy }

func (Greedy) Choose(_ context.Context, turn Turn) ([]catalog.ToolID, error) {
	best, _ := BestSelection(turn.Tools, turn.Scenario)
	return best, nil
}

func (Greedy) Reflect(_ context.Context, _ Turn, b engine.TurnBreakdown) (string, error) {
	return cannedReflection(b), nil
}

// BestSelection enumerates every selection of one to three tools.
func BestSelection(tools []catalog.Tool, scenario catalog.Scenario) ([]catalog.ToolID, scoring.Breakdown) {
	var (
		best      []catalog.Tool
		bestScore scoring.Breakdown
	)
	consider := func(sel ...catalog.Tool) {
		b := scoring.Score(sel, scenario)
		if best == nil || b.Total > bestScore.Total {
			best = append([]catalog.Tool(nil), sel...)
			bestScore = b
		}
	}

	n := len(tools)
	for i := 0; i < n; i++ {
		consider(tools[i])
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			consider(tools[i], tools[j])
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				consider(tools[i], tools[j], tools[k])
			}
		}
	}

	ids := make([]catalog.ToolID, len(best))
	for i, t := range best {
		ids[i] = t.ID
	}
	return ids, bestScore
}

func cannedReflection(b engine.TurnBreakdown) string {
	names := make([]string, len(b.Tools))
	for i, t := range b.Tools {
		names[i] = string(t.ID)
	}
	text := fmt.Sprintf("I leaned on %s and scored %d.", strings.Join(names, ", "), b.Total)
	if b.Token != "" {
		text += " Earning the " + b.Token + " tells me the approach fit."
	}
	return text
}

// LLM asks the coach for tools and falls back to Greedy when the answer is
// unusable.
type LLM struct {
	coach *coach.Coach
	cat   *catalog.Catalog
}

func (l *LLM) Name() string { return KindLLM }

func (l *LLM) Choose(ctx context.Context, turn Turn) ([]catalog.ToolID, error) {
	pick, err := l.coach.ChooseTools(ctx, turn.Scenario, turn.Tools)
	if err != nil {
		return Greedy{}.Choose(ctx, turn)
	}

	var ids []catalog.ToolID
	seen := map[catalog.ToolID]bool{}
	for _, name := range pick.Tools {
		t, err := l.cat.Resolve(name)
		if err != nil || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		ids = append(ids, t.ID)
		if len(ids) == scoring.MaxSelection {
			break
		}
	}
	if len(ids) == 0 {
		return Greedy{}.Choose(ctx, turn)
	}
	return ids, nil
}

func (l *LLM) Reflect(ctx context.Context, turn Turn, b engine.TurnBreakdown) (string, error) {
	text, err := l.coach.Reflect(ctx, turn.Scenario, b)
	if err != nil {
		return cannedReflection(b), nil
	}
	return text, nil
}
