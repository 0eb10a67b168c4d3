package coach

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/tatianab/strategy-shuffle/internal/catalog"
	"github.com/tatianab/strategy-shuffle/internal/engine"
	"github.com/tatianab/strategy-shuffle/internal/scoring"
)

type fakeModel struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeModel) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	for _, p := range parts {
		if text, ok := p.(genai.Text); ok {
			f.prompts = append(f.prompts, string(text))
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.reply == "" {
		return &genai.GenerateContentResponse{}, nil
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(f.reply)}},
		}},
	}, nil
}

func TestChooseTools(t *testing.T) {
	fake := &fakeModel{reply: "```yaml\ntools:\n  - Logos\n  - ethos\nrationale: Evidence from a trusted voice.\n```"}
	c := NewWithModel(fake, nil)
	cat := catalog.Default()
	s, _ := cat.Scenario("Regulatory Approval — Evidence & Allies")

	pick, err := c.ChooseTools(context.Background(), s, cat.Tools())
	if err != nil {
		t.Fatalf("ChooseTools: %v", err)
	}
	if len(pick.Tools) != 2 || pick.Tools[0] != "Logos" || pick.Tools[1] != "ethos" {
		t.Errorf("Unexpected tools %v", pick.Tools)
	}
	if pick.Rationale == "" {
		t.Error("Expected a rationale")
	}

	prompt := fake.prompts[0]
	for _, want := range []string{s.Name, "Situational Awareness (Smart Power, 3 pts)", "7 or more"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestChooseToolsBadYAML(t *testing.T) {
	c := NewWithModel(&fakeModel{reply: "tools: [unclosed"}, nil)
	s := catalog.Default().Scenarios()[0]
	if _, err := c.ChooseTools(context.Background(), s, catalog.Default().Tools()); err == nil {
		t.Fatal("Expected a parse error")
	}

	c = NewWithModel(&fakeModel{reply: "rationale: nothing fits"}, nil)
	if _, err := c.ChooseTools(context.Background(), s, catalog.Default().Tools()); err == nil {
		t.Fatal("Expected an error for an empty pick")
	}
}

func TestEmptyResponse(t *testing.T) {
	c := NewWithModel(&fakeModel{}, nil)
	_, err := c.Reflect(context.Background(), catalog.Default().Scenarios()[0], engine.TurnBreakdown{})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("Expected ErrEmptyResponse, got %v", err)
	}
}

func TestFeedbackPrompt(t *testing.T) {
	fake := &fakeModel{reply: "  Nice balance of logic and trust.  "}
	c := NewWithModel(fake, nil)
	cat := catalog.Default()
	s := cat.Scenarios()[0]
	logos, _ := cat.Tool("Logos")

	b := engine.TurnBreakdown{
		Breakdown: scoring.Breakdown{Base: 2, Total: 2},
		Player:    "Ada",
		Tools:     []catalog.Tool{logos},
	}
	note, err := c.Feedback(context.Background(), s, b, "")
	if err != nil {
		t.Fatalf("Feedback: %v", err)
	}
	if note != "Nice balance of logic and trust." {
		t.Errorf("Expected trimmed note, got %q", note)
	}
	prompt := fake.prompts[0]
	if !strings.Contains(prompt, "Logos (Smart Power)") || !strings.Contains(prompt, "did not write a reflection") {
		t.Errorf("Unexpected prompt:\n%s", prompt)
	}
}

func TestGenerateError(t *testing.T) {
	boom := errors.New("quota exceeded")
	c := NewWithModel(&fakeModel{err: boom}, nil)
	if _, err := c.Feedback(context.Background(), catalog.Scenario{}, engine.TurnBreakdown{}, "x"); !errors.Is(err, boom) {
		t.Errorf("Expected the model error, got %v", err)
	}
}
