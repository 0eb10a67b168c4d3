// Package coach talks to Gemini to pick tools for automated players and to
// give short coaching notes after a turn.
package coach

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"github.com/tatianab/strategy-shuffle/internal/catalog"
	"github.com/tatianab/strategy-shuffle/internal/engine"
	"github.com/tatianab/strategy-shuffle/internal/scoring"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/choose_tools.txt
var chooseToolsPrompt string

//go:embed prompts/reflect.txt
var reflectPrompt string

//go:embed prompts/feedback.txt
var feedbackPrompt string

var (
	chooseToolsTmpl = template.Must(template.New("choose_tools").Parse(chooseToolsPrompt))
	reflectTmpl     = template.Must(template.New("reflect").Parse(reflectPrompt))
	feedbackTmpl    = template.Must(template.New("feedback").Parse(feedbackPrompt))
)

// ErrEmptyResponse is returned when the model answers with no usable text.
var ErrEmptyResponse = errors.New("no content returned from Gemini")

// Model is the part of *genai.GenerativeModel the coach uses.
type Model interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type Coach struct {
	client *genai.Client
	model  Model
	logger *slog.Logger
}

func New(ctx context.Context, apiKey, modelName string, logger *slog.Logger) (*Coach, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Coach{
		client: client,
		model:  client.GenerativeModel(modelName),
		logger: orDiscard(logger),
	}, nil
}

// NewWithModel builds a coach around any Model, such as a stub in tests.
func NewWithModel(m Model, logger *slog.Logger) *Coach {
	return &Coach{model: m, logger: orDiscard(logger)}
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}

func (c *Coach) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Pick is the model's tool choice for a scenario.
type Pick struct {
	Tools     []string `yaml:"tools"`
	Rationale string   `yaml:"rationale"`
}

// ChooseTools asks the model which tools to play. Names are returned as the
// model wrote them; callers resolve them against the catalog.
func (c *Coach) ChooseTools(ctx context.Context, scenario catalog.Scenario, tools []catalog.Tool) (Pick, error) {
	data := struct {
		Scenario  catalog.Scenario
		Tools     []catalog.Tool
		Threshold int
	}{scenario, tools, scoring.TokenThreshold}

	text, err := c.generate(ctx, chooseToolsTmpl, data)
	if err != nil {
		return Pick{}, err
	}

	var pick Pick
	if err := yaml.Unmarshal([]byte(cleanYAML(text)), &pick); err != nil {
		return Pick{}, fmt.Errorf("failed to parse pick YAML: %v\nOutput was: %s", err, text)
	}
	if len(pick.Tools) == 0 {
		return Pick{}, fmt.Errorf("model picked no tools: %s", text)
	}
	c.logger.Debug("coach.pick", "scenario", scenario.Name, "tools", pick.Tools)
	return pick, nil
}

// Reflect writes a reflection in the voice of an automated player.
func (c *Coach) Reflect(ctx context.Context, scenario catalog.Scenario, b engine.TurnBreakdown) (string, error) {
	data := struct {
		Scenario catalog.Scenario
		Tools    []catalog.Tool
		Total    int
		Token    string
		Prompt   string
	}{scenario, b.Tools, b.Total, b.Token, b.Prompt}

	return c.generate(ctx, reflectTmpl, data)
}

// Feedback returns a short coaching note on a scored turn.
func (c *Coach) Feedback(ctx context.Context, scenario catalog.Scenario, b engine.TurnBreakdown, reflection string) (string, error) {
	data := struct {
		Scenario   catalog.Scenario
		Player     string
		Tools      []catalog.Tool
		Total      int
		Base       int
		Synergy    int
		Variety    int
		Reflection string
	}{scenario, b.Player, b.Tools, b.Total, b.Base, b.Synergy, b.Variety, strings.TrimSpace(reflection)}

	return c.generate(ctx, feedbackTmpl, data)
}

func (c *Coach) generate(ctx context.Context, tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	resp, err := c.model.GenerateContent(ctx, genai.Text(buf.String()))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type from Gemini")
	}
	out := strings.TrimSpace(string(text))
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

func cleanYAML(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```yaml")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
