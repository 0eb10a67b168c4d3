package scoring

import (
	"errors"
	"strings"
	"testing"

	"github.com/tatianab/strategy-shuffle/internal/catalog"
)

func tools(t *testing.T, ids ...catalog.ToolID) []catalog.Tool {
	t.Helper()
	out, err := Validate(catalog.Default(), ids)
	if err != nil {
		t.Fatalf("Validate(%v): %v", ids, err)
	}
	return out
}

func scenario(t *testing.T, name string) catalog.Scenario {
	t.Helper()
	s, ok := catalog.Default().Scenario(name)
	if !ok {
		t.Fatalf("Scenario %q not found", name)
	}
	return s
}

func TestScoreExamples(t *testing.T) {
	regulatory := scenario(t, "Regulatory Approval — Evidence & Allies")
	deMello := scenario(t, "Sergio de Mello — Empowering Others")

	tests := []struct {
		name      string
		selection []catalog.ToolID
		scenario  catalog.Scenario
		want      Breakdown
	}{
		{
			name:      "variety without synergy",
			selection: []catalog.ToolID{"Ethos", "Logos", "Might"},
			scenario:  scenario(t, "Leading Change — Overcoming Resistance"),
			want:      Breakdown{Base: 7, Synergy: 0, Variety: 1, Total: 8},
		},
		{
			name:      "synergy at the token boundary",
			selection: []catalog.ToolID{"Allocentrism", "Agency"},
			scenario:  deMello,
			want:      Breakdown{Base: 5, Synergy: 2, Variety: 0, Total: 7},
		},
		{
			name:      "synergy and variety",
			selection: []catalog.ToolID{"Logos", "Ethos", "Exchange"},
			scenario:  regulatory,
			want:      Breakdown{Base: 6, Synergy: 2, Variety: 1, Total: 9},
		},
		{
			name:      "single suggested tool earns no synergy",
			selection: []catalog.ToolID{"Networks"},
			scenario:  regulatory,
			want:      Breakdown{Base: 3, Total: 3},
		},
		{
			name:      "three suggested tools still earn a flat synergy",
			selection: []catalog.ToolID{"Logos", "Ethos", "Networks"},
			scenario:  regulatory,
			want:      Breakdown{Base: 7, Synergy: 2, Total: 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tools(t, tt.selection...), tt.scenario)
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestScoreEmpty(t *testing.T) {
	got := Score(nil, catalog.Default().Scenarios()[0])
	if got != (Breakdown{}) {
		t.Errorf("Expected zero breakdown, got %+v", got)
	}
}

// Every selection of up to three distinct tools, against every scenario.
func TestScoreFormulaExhaustive(t *testing.T) {
	cat := catalog.Default()
	all := cat.Tools()

	var selections [][]catalog.Tool
	for i := range all {
		selections = append(selections, []catalog.Tool{all[i]})
		for j := i + 1; j < len(all); j++ {
			selections = append(selections, []catalog.Tool{all[i], all[j]})
			for k := j + 1; k < len(all); k++ {
				selections = append(selections, []catalog.Tool{all[i], all[j], all[k]})
			}
		}
	}

	for _, s := range cat.Scenarios() {
		for _, sel := range selections {
			got := Score(sel, s)

			base, overlap := 0, 0
			types := map[catalog.PowerType]bool{}
			for _, tool := range sel {
				base += tool.Points
				types[tool.Power] = true
				for _, id := range s.Suggested {
					if id == tool.ID {
						overlap++
					}
				}
			}
			wantSynergy := 0
			if overlap >= 2 {
				wantSynergy = 2
			}
			wantVariety := 0
			if len(sel) == 3 && len(types) == 3 {
				wantVariety = 1
			}

			if got.Base != base || got.Synergy != wantSynergy || got.Variety != wantVariety {
				t.Fatalf("%s with %v: got %+v", s.Name, sel, got)
			}
			if got.Total != got.Base+got.Synergy+got.Variety {
				t.Fatalf("Total %d does not equal its parts %+v", got.Total, got)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	cat := catalog.Default()
	tests := []struct {
		name string
		ids  []catalog.ToolID
		msg  string
	}{
		{"empty", nil, "at least one"},
		{"too many", []catalog.ToolID{"Ethos", "Logos", "Might", "Agency"}, "at most 3"},
		{"duplicate", []catalog.ToolID{"Ethos", "Ethos"}, "more than once"},
		{"unknown", []catalog.ToolID{"Charisma"}, "unknown tool"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(cat, tt.ids)
			if !errors.Is(err, ErrInvalidSelection) {
				t.Fatalf("Expected ErrInvalidSelection, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("Expected message containing %q, got %q", tt.msg, err.Error())
			}
		})
	}
}

func TestEarned(t *testing.T) {
	if Earned(6) {
		t.Error("Expected 6 to miss the token")
	}
	if !Earned(7) {
		t.Error("Expected 7 to earn the token")
	}
}

func TestMatched(t *testing.T) {
	s := scenario(t, "Sergio de Mello — Empowering Others")
	got := Matched(tools(t, "Might", "Agency", "Allocentrism"), s)
	if len(got) != 2 || got[0] != "Agency" || got[1] != "Allocentrism" {
		t.Errorf("Expected [Agency Allocentrism], got %v", got)
	}
}
