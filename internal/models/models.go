package models

import (
	"strings"

	"github.com/tatianab/strategy-shuffle/internal/catalog"
	"github.com/tatianab/strategy-shuffle/internal/scoring"
)

// Reflection is a player's written answer to a round prompt.
type Reflection struct {
	Round  int    `yaml:"round"`
	Prompt string `yaml:"prompt,omitempty"`
	Text   string `yaml:"text"`
}

// Player is one seat's running record for a session.
type Player struct {
	Name            string       `yaml:"name"`
	InfluencePoints int          `yaml:"influence_points"`
	RoundScores     []int        `yaml:"round_scores"`
	Tokens          []string     `yaml:"tokens,omitempty"`
	Reflections     []Reflection `yaml:"reflections,omitempty"`
}

func NewPlayer(name string) *Player {
	return &Player{Name: name}
}

func (p *Player) AddRoundScore(points int) {
	p.RoundScores = append(p.RoundScores, points)
	p.InfluencePoints += points
}

// AddToken records an earned token. The same label may be earned more than once.
func (p *Player) AddToken(label string) {
	p.Tokens = append(p.Tokens, label)
}

// AddReflection records text if it is not blank and reports whether it did.
func (p *Player) AddReflection(round int, prompt, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	p.Reflections = append(p.Reflections, Reflection{Round: round, Prompt: prompt, Text: text})
	return true
}

func (p *Player) TokenCount() int {
	return len(p.Tokens)
}

func (p *Player) TokenBonus() int {
	return p.TokenCount() * scoring.TokenPointValue
}

// FinalScore is influence points plus a flat bonus per token.
func (p *Player) FinalScore() int {
	return p.InfluencePoints + p.TokenBonus()
}

// Clone returns a deep copy safe to hand to renderers.
func (p *Player) Clone() Player {
	c := *p
	c.RoundScores = append([]int(nil), p.RoundScores...)
	c.Tokens = append([]string(nil), p.Tokens...)
	c.Reflections = append([]Reflection(nil), p.Reflections...)
	return c
}

// TurnRecord is the log entry for one scored turn.
type TurnRecord struct {
	Round      int               `yaml:"round"`
	Player     string            `yaml:"player"`
	Scenario   string            `yaml:"scenario"`
	Tools      []catalog.ToolID  `yaml:"tools"`
	Score      scoring.Breakdown `yaml:"score"`
	Token      string            `yaml:"token,omitempty"`
	Reflection string            `yaml:"reflection,omitempty"`
}

// SummaryRow is one line of the game-over table.
type SummaryRow struct {
	Player      string       `yaml:"player"`
	BasePoints  int          `yaml:"base_points"`
	TokenCount  int          `yaml:"token_count"`
	TokenBonus  int          `yaml:"token_bonus"`
	FinalScore  int          `yaml:"final_score"`
	Tokens      []string     `yaml:"tokens,omitempty"`
	RoundScores []int        `yaml:"round_scores"`
	Reflections []Reflection `yaml:"reflections,omitempty"`
}

// Summary is the ranked result of a finished session.
type Summary struct {
	Rows   []SummaryRow `yaml:"rows"`
	Winner string       `yaml:"winner"`
	// Tied lists players other than Winner who share the top final score.
	Tied []string `yaml:"tied,omitempty"`
}
