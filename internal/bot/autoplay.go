package bot

import (
	"context"
	"fmt"

	"github.com/tatianab/strategy-shuffle/internal/engine"
	"github.com/tatianab/strategy-shuffle/internal/models"
)

// TurnReport is passed to the Autoplay observer after each turn.
type TurnReport struct {
	Round      int
	Scenario   string
	Strategy   string
	Breakdown  engine.TurnBreakdown
	Reflection string
}

// Autoplay drives a session that is waiting for a selection to game over, one strategy per seat.
// A rejected selection is replaced by the greedy choice so the game always
// advances.
func Autoplay(ctx context.Context, s *engine.Session, seats []Strategy, observe func(TurnReport)) (models.Summary, error) {
	st := s.State()
	switch st.Phase {
	case engine.PhaseAwaitingSelection:
	case engine.PhaseSetup:
		return models.Summary{}, fmt.Errorf("autoplay: %w", engine.ErrSessionNotStarted)
	default:
		return models.Summary{}, fmt.Errorf("autoplay during %s: %w", st.Phase, engine.ErrInvalidPhase)
	}
	if len(seats) != len(st.Players) {
		return models.Summary{}, fmt.Errorf("autoplay: %d strategies for %d players", len(seats), len(st.Players))
	}

	for st.Phase != engine.PhaseGameOver {
		if err := ctx.Err(); err != nil {
			return models.Summary{}, err
		}

		strategy := seats[st.PlayerIndex]
		turn := TurnFromState(st, s.Catalog())

		ids, err := strategy.Choose(ctx, turn)
		if err != nil {
			return models.Summary{}, fmt.Errorf("%s choose: %w", strategy.Name(), err)
		}
		res, err := s.SubmitSelection(ids)
		if err != nil {
			return models.Summary{}, err
		}
		if !res.Accepted {
			ids, _ = Greedy{}.Choose(ctx, turn)
			if res, err = s.SubmitSelection(ids); err != nil || !res.Accepted {
				return models.Summary{}, fmt.Errorf("fallback selection rejected: %v %s", err, res.Warning)
			}
		}

		b, err := s.Breakdown()
		if err != nil {
			return models.Summary{}, err
		}
		reflection, err := strategy.Reflect(ctx, turn, b)
		if err != nil {
			return models.Summary{}, fmt.Errorf("%s reflect: %w", strategy.Name(), err)
		}
		if observe != nil {
			observe(TurnReport{
				Round:      st.Round,
				Scenario:   st.Scenario.Name,
				Strategy:   strategy.Name(),
				Breakdown:  b,
				Reflection: reflection,
			})
		}

		if st, err = s.SubmitReflection(reflection); err != nil {
			return models.Summary{}, err
		}
	}
	return s.Summary()
}
