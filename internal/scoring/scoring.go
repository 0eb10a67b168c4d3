// Package scoring computes the points a tool selection earns against a scenario.
package scoring

import (
	"errors"
	"fmt"

	"github.com/tatianab/strategy-shuffle/internal/catalog"
)

const (
	// MaxSelection is the most tools a player may play in one turn.
	MaxSelection = 3
	// TokenThreshold is the round total at which the scenario's reward token is earned.
	TokenThreshold = 7

	SynergyBonus    = 2
	SynergyMinimum  = 2
	VarietyBonus    = 1
	TokenPointValue = 5
)

// ErrInvalidSelection is returned for empty, oversized, duplicate or unknown selections.
var ErrInvalidSelection = errors.New("invalid selection")

// Breakdown is the itemised score of one turn.
type Breakdown struct {
	Base    int `yaml:"base"`
	Synergy int `yaml:"synergy"`
	Variety int `yaml:"variety"`
	Total   int `yaml:"total"`
}

// Score evaluates a selection. It assumes the selection was validated.
func Score(selection []catalog.Tool, scenario catalog.Scenario) Breakdown {
	var b Breakdown
	suggested := 0
	powers := make(map[catalog.PowerType]bool, len(catalog.PowerTypes))
	for _, t := range selection {
		b.Base += t.Points
		if scenario.Suggests(t.ID) {
			suggested++
		}
		powers[t.Power] = true
	}

	if suggested >= SynergyMinimum {
		b.Synergy = SynergyBonus
	}
	if len(powers) == len(catalog.PowerTypes) {
		b.Variety = VarietyBonus
	}

	b.Total = b.Base + b.Synergy + b.Variety
	return b
}

// Earned reports whether a round total wins the scenario token.
func Earned(total int) bool {
	return total >= TokenThreshold
}

// Matched returns the selected tools that the scenario suggests, in selection order.
func Matched(selection []catalog.Tool, scenario catalog.Scenario) []catalog.ToolID {
	var out []catalog.ToolID
	for _, t := range selection {
		if scenario.Suggests(t.ID) {
			out = append(out, t.ID)
		}
	}
	return out
}

// Validate resolves ids against the catalog and enforces selection rules.
// The returned error wraps ErrInvalidSelection and reads as a player-facing warning.
func Validate(cat *catalog.Catalog, ids []catalog.ToolID) ([]catalog.Tool, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: select at least one tool", ErrInvalidSelection)
	}
	if len(ids) > MaxSelection {
		return nil, fmt.Errorf("%w: select at most %d tools", ErrInvalidSelection, MaxSelection)
	}

	seen := make(map[catalog.ToolID]bool, len(ids))
	tools := make([]catalog.Tool, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, fmt.Errorf("%w: %s was selected more than once", ErrInvalidSelection, id)
		}
		seen[id] = true

		t, ok := cat.Tool(id)
		if !ok {
			return nil, fmt.Errorf("%w: unknown tool %q", ErrInvalidSelection, id)
		}
		tools = append(tools, t)
	}
	return tools, nil
}
