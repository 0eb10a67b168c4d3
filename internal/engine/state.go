package engine

import (
	"github.com/tatianab/strategy-shuffle/internal/catalog"
	"github.com/tatianab/strategy-shuffle/internal/models"
)

// State is a read-only snapshot of a session for renderers.
type State struct {
	Phase        Phase
	Round        int
	MaxRounds    int
	PlayerIndex  int
	ActivePlayer string
	Scenario     catalog.Scenario
	Players      []models.Player
	// TurnComplete is set between a scored selection and the reflection that follows it.
	TurnComplete  bool
	ScenariosLeft int
	Seed          int64
}

// Progress is the fraction of rounds already finished.
func (st State) Progress() float64 {
	if st.MaxRounds == 0 {
		return 0
	}
	if st.Phase == PhaseGameOver {
		return 1
	}
	return float64(st.Round-1) / float64(st.MaxRounds)
}

// LastPlayer reports whether the active player closes the round.
func (st State) LastPlayer() bool {
	return st.PlayerIndex == len(st.Players)-1
}

func (s *Session) State() State {
	st := State{
		Phase:         s.phase,
		Round:         s.round,
		MaxRounds:     s.maxRounds,
		PlayerIndex:   s.playerIdx,
		Scenario:      s.scenario,
		ScenariosLeft: len(s.pool),
		Seed:          s.seed,
	}
	if len(s.players) > 0 {
		st.Players = make([]models.Player, len(s.players))
		for i, p := range s.players {
			st.Players[i] = p.Clone()
		}
		st.ActivePlayer = s.players[s.playerIdx].Name
	}
	st.TurnComplete = s.turnDone[turnKey{s.round, s.playerIdx}]
	if s.scenario.Suggested != nil {
		st.Scenario.Suggested = append([]catalog.ToolID(nil), s.scenario.Suggested...)
	}
	return st
}
