package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

const (
	toolCount     = 12
	scenarioCount = 9
)

// PowerType classifies a tool for the variety bonus.
type PowerType int

const (
	Soft PowerType = iota
	Hard
	Smart
)

// PowerTypes lists every power type in display order.
var PowerTypes = []PowerType{Soft, Hard, Smart}

var powerNames = map[PowerType]string{
	Soft:  "Soft Power",
	Hard:  "Hard Power",
	Smart: "Smart Power",
}

func (p PowerType) String() string {
	if s, ok := powerNames[p]; ok {
		return s
	}
	return "Unknown"
}

func (p *PowerType) UnmarshalYAML(node *yaml.Node) error {
	switch node.Value {
	case "soft":
		*p = Soft
	case "hard":
		*p = Hard
	case "smart":
		*p = Smart
	default:
		return fmt.Errorf("unknown power type %q", node.Value)
	}
	return nil
}

func (p PowerType) MarshalYAML() (any, error) {
	switch p {
	case Soft:
		return "soft", nil
	case Hard:
		return "hard", nil
	case Smart:
		return "smart", nil
	}
	return nil, fmt.Errorf("unknown power type %d", int(p))
}

// ToolID is the identity of a tool card, e.g. "Team Building".
type ToolID string

// Tool represents a selectable influence tactic.
type Tool struct {
	ID          ToolID    `yaml:"id"`
	Power       PowerType `yaml:"power"`
	Points      int       `yaml:"points"`
	Effect      string    `yaml:"effect"`
	Description string    `yaml:"description"`
}

// Scenario represents a narrative prompt the players respond to.
type Scenario struct {
	Name        string   `yaml:"name"`
	Situation   string   `yaml:"situation"`
	Suggested   []ToolID `yaml:"suggested"`
	RewardToken string   `yaml:"reward_token"`
	Lesson      string   `yaml:"lesson"`
	Example     string   `yaml:"example"`
}

// Suggests reports whether id is one of the scenario's suggested tools.
func (s Scenario) Suggests(id ToolID) bool {
	for _, sug := range s.Suggested {
		if sug == id {
			return true
		}
	}
	return false
}

// Catalog is the immutable table of tools, scenarios and closing text.
type Catalog struct {
	tools     []Tool
	scenarios []Scenario
	prompts   []string
	lessons   []string
	byID      map[ToolID]int
}

type document struct {
	Tools             []Tool     `yaml:"tools"`
	Scenarios         []Scenario `yaml:"scenarios"`
	ReflectionPrompts []string   `yaml:"reflection_prompts"`
	KeyLessons        []string   `yaml:"key_lessons"`
}

var defaultCatalog = mustParse(catalogYAML)

// Default returns the compiled-in catalog.
func Default() *Catalog {
	return defaultCatalog
}

func mustParse(data []byte) *Catalog {
	c, err := Parse(data)
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return c
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	if len(doc.Tools) != toolCount {
		return nil, fmt.Errorf("expected %d tools, got %d", toolCount, len(doc.Tools))
	}
	if len(doc.Scenarios) != scenarioCount {
		return nil, fmt.Errorf("expected %d scenarios, got %d", scenarioCount, len(doc.Scenarios))
	}

	byID := make(map[ToolID]int, len(doc.Tools))
	for i, t := range doc.Tools {
		if t.ID == "" {
			return nil, fmt.Errorf("tool %d has no id", i)
		}
		if _, dup := byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate tool %q", t.ID)
		}
		if t.Points <= 0 {
			return nil, fmt.Errorf("tool %q has non-positive points", t.ID)
		}
		byID[t.ID] = i
	}

	for _, s := range doc.Scenarios {
		if len(s.Suggested) < 2 || len(s.Suggested) > 3 {
			return nil, fmt.Errorf("scenario %q suggests %d tools", s.Name, len(s.Suggested))
		}
		for _, id := range s.Suggested {
			if _, ok := byID[id]; !ok {
				return nil, fmt.Errorf("scenario %q suggests unknown tool %q", s.Name, id)
			}
		}
		if s.RewardToken == "" {
			return nil, fmt.Errorf("scenario %q has no reward token", s.Name)
		}
	}

	if len(doc.ReflectionPrompts) == 0 {
		return nil, fmt.Errorf("no reflection prompts")
	}

	return &Catalog{
		tools:     doc.Tools,
		scenarios: doc.Scenarios,
		prompts:   doc.ReflectionPrompts,
		lessons:   doc.KeyLessons,
		byID:      byID,
	}, nil
}

// Tools returns the tools in catalog order.
func (c *Catalog) Tools() []Tool {
	out := make([]Tool, len(c.tools))
	copy(out, c.tools)
	return out
}

// Scenarios returns the scenarios in catalog order.
func (c *Catalog) Scenarios() []Scenario {
	out := make([]Scenario, len(c.scenarios))
	for i, s := range c.scenarios {
		s.Suggested = append([]ToolID(nil), s.Suggested...)
		out[i] = s
	}
	return out
}

// Tool looks up a tool by id.
func (c *Catalog) Tool(id ToolID) (Tool, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Tool{}, false
	}
	return c.tools[i], true
}

// Index returns the catalog position of id, or -1.
func (c *Catalog) Index(id ToolID) int {
	if i, ok := c.byID[id]; ok {
		return i
	}
	return -1
}

// Scenario looks up a scenario by name.
func (c *Catalog) Scenario(name string) (Scenario, bool) {
	for _, s := range c.Scenarios() {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}

func (c *Catalog) ReflectionPrompts() []string {
	return append([]string(nil), c.prompts...)
}

func (c *Catalog) KeyLessons() []string {
	return append([]string(nil), c.lessons...)
}
