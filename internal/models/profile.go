package models

import (
	"fmt"
	"os"

	"github.com/tatianab/strategy-shuffle/internal/catalog"
	"gopkg.in/yaml.v3"
)

const (
	maxStrengths = 5
	maxGrowth    = 3
)

// Profile is the "My Influence Profile" panel shown beside the game.
type Profile struct {
	Strengths []catalog.ToolID `yaml:"strengths"`
	Growth    []catalog.ToolID `yaml:"growth"`
	Focus     string           `yaml:"focus"`
	Style     string           `yaml:"style"`
}

func DefaultProfile() Profile {
	return Profile{
		Strengths: []catalog.ToolID{"Allocentrism", "Agency", "Intentionality", "Situational Awareness", "Ethos"},
		Growth:    []catalog.ToolID{"Networks", "Might", "Exchange"},
		Focus: "Practice early influence, not reactive influence. Use my growth tools — especially Networks and " +
			"Might — in at least two scenarios to strengthen balance between empathy and assertiveness.",
		Style: "Smart Power Integrator — I combine structure, empathy, and foresight. I tend to lead through " +
			"understanding, preparation, and fairness, using both logic and emotional intelligence to align " +
			"others around shared goals.",
	}
}

func (p Profile) Validate(cat *catalog.Catalog) error {
	if len(p.Strengths) > maxStrengths {
		return fmt.Errorf("profile lists %d strengths, at most %d allowed", len(p.Strengths), maxStrengths)
	}
	if len(p.Growth) > maxGrowth {
		return fmt.Errorf("profile lists %d growth areas, at most %d allowed", len(p.Growth), maxGrowth)
	}
	for _, group := range [][]catalog.ToolID{p.Strengths, p.Growth} {
		seen := map[catalog.ToolID]bool{}
		for _, id := range group {
			if _, ok := cat.Tool(id); !ok {
				return fmt.Errorf("profile names unknown tool %q", id)
			}
			if seen[id] {
				return fmt.Errorf("profile lists %q twice", id)
			}
			seen[id] = true
		}
	}
	return nil
}

// IsGrowth reports whether id is one of the profile's growth tools.
func (p Profile) IsGrowth(id catalog.ToolID) bool {
	for _, g := range p.Growth {
		if g == id {
			return true
		}
	}
	return false
}

// GrowthTurns counts turns that played at least one growth tool.
func (p Profile) GrowthTurns(turns []TurnRecord) int {
	n := 0
	for _, turn := range turns {
		for _, id := range turn.Tools {
			if p.IsGrowth(id) {
				n++
				break
			}
		}
	}
	return n
}

// LoadProfile reads a profile file. Missing fields keep their defaults.
func LoadProfile(path string, cat *catalog.Catalog) (Profile, error) {
	p := DefaultProfile()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := p.Validate(cat); err != nil {
		return p, err
	}
	return p, nil
}
