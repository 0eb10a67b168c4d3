package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/tatianab/strategy-shuffle/internal/bot"
	"github.com/tatianab/strategy-shuffle/internal/catalog"
	"github.com/tatianab/strategy-shuffle/internal/coach"
	"github.com/tatianab/strategy-shuffle/internal/config"
	"github.com/tatianab/strategy-shuffle/internal/engine"
	"google.golang.org/api/option"
)

const rounds = 3

var personas = map[string]string{
	"Morgan": "a data-driven analyst who trusts evidence over emotion",
	"Riley":  "a warm people-first manager who builds relationships before anything else",
}

// persona is a Gemini-driven seat that plays in character.
type persona struct {
	name  string
	style string
	model *genai.GenerativeModel
	cat   *catalog.Catalog
}

func (p *persona) Name() string { return "gemini" }

func (p *persona) Choose(ctx context.Context, turn bot.Turn) ([]catalog.ToolID, error) {
	var tools strings.Builder
	for i, t := range turn.Tools {
		fmt.Fprintf(&tools, "%d. %s (%s, %d pts): %s\n", i+1, t.ID, t.Power, t.Points, t.Effect)
	}

	prompt := fmt.Sprintf(`You are %s, %s, playing a leadership card game.
Scenario: %s
%s

Available tools:
%s
Pick one to three different tools that you would use. Return ONLY their numbers, comma-separated.`,
		p.name, p.style, turn.Scenario.Name, turn.Scenario.Situation, tools.String())

	resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, err
	}
	ids, err := p.cat.ResolveList(responseText(resp))
	if err != nil || len(ids) == 0 {
		// Let the greedy seat cover for an unusable answer.
		return bot.Greedy{}.Choose(ctx, turn)
	}
	return ids, nil
}

func (p *persona) Reflect(ctx context.Context, turn bot.Turn, b engine.TurnBreakdown) (string, error) {
	prompt := fmt.Sprintf(`You are %s, %s. You just scored %d points in the scenario %q.
Answer this reflection question in one or two sentences, in character: %s`,
		p.name, p.style, b.Total, turn.Scenario.Name, b.Prompt)

	resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", nil
	}
	return responseText(resp), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
}

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if !cfg.CoachEnabled() {
		log.Fatal("GEMINI_API_KEY must be set")
	}

	// The coach comments on each reflection.
	c, err := coach.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, nil)
	if err != nil {
		log.Fatalf("Failed to create coach: %v", err)
	}
	defer c.Close()

	// The player LLM
	playerClient, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		log.Fatalf("Failed to create player client: %v", err)
	}
	defer playerClient.Close()
	playerModel := playerClient.GenerativeModel(cfg.GeminiModel)

	cat := catalog.Default()
	names := []string{"Morgan", "Riley"}
	seats := make([]bot.Strategy, len(names))
	for i, name := range names {
		seats[i] = &persona{name: name, style: personas[name], model: playerModel, cat: cat}
	}

	s := engine.New(cat)
	if _, err := s.Start(names, rounds); err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}
	fmt.Printf("--- %d rounds, seed %d ---\n", rounds, s.Seed())

	round := 0
	sum, err := bot.Autoplay(ctx, s, seats, func(r bot.TurnReport) {
		if r.Round != round {
			fmt.Printf("\n--- Round %d: %s ---\n", r.Round, r.Scenario)
			round = r.Round
		}
		b := r.Breakdown
		tools := make([]string, len(b.Tools))
		for i, t := range b.Tools {
			tools[i] = string(t.ID)
		}
		fmt.Printf("%s played %s for %d (base %d, synergy %d, variety %d)\n",
			b.Player, strings.Join(tools, ", "), b.Total, b.Base, b.Synergy, b.Variety)
		if b.Token != "" {
			fmt.Printf("EARNED: %s\n", b.Token)
		}
		fmt.Printf("Reflection: %s\n", r.Reflection)

		sc, _ := cat.Scenario(r.Scenario)
		if note, err := c.Feedback(ctx, sc, b, r.Reflection); err == nil {
			fmt.Printf("Coach: %s\n", note)
		}
	})
	if err != nil {
		log.Fatalf("Game failed: %v", err)
	}

	fmt.Println("\n--- Final standings ---")
	for _, row := range sum.Rows {
		fmt.Printf("%s: %d points + %d tokens x 5 = %d\n", row.Player, row.BasePoints, row.TokenCount, row.FinalScore)
	}
	fmt.Printf("Winner: %s\n", sum.Winner)
}
