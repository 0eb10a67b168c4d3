package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
)

var (
	ErrNoMatch        = errors.New("no matching tool")
	ErrAmbiguousMatch = errors.New("ambiguous tool name")
)

// Resolve maps free text to a tool. It accepts a 1-based catalog index,
// an exact or prefix match on the name, or a near miss within an edit
// distance that scales with the name length.
func (c *Catalog) Resolve(text string) (Tool, error) {
	in := normalize(text)
	if in == "" {
		return Tool{}, ErrNoMatch
	}

	if n, err := strconv.Atoi(in); err == nil {
		if n < 1 || n > len(c.tools) {
			return Tool{}, fmt.Errorf("%w: index %d out of range", ErrNoMatch, n)
		}
		return c.tools[n-1], nil
	}

	type scored struct {
		idx   int
		score float64
	}
	var results []scored
	for i, t := range c.tools {
		cand := normalize(string(t.ID))
		var score float64
		switch {
		case in == cand:
			return t, nil
		case strings.HasPrefix(cand, in) && len(in) >= 2:
			score = 0.9
		case strings.HasPrefix(in, cand):
			score = 0.85
		default:
			dist := levenshtein.ComputeDistance(in, cand)
			if dist > distanceLimit(len(cand)) {
				continue
			}
			score = 0.72 - (0.08 * float64(dist))
		}
		results = append(results, scored{idx: i, score: score})
	}
	if len(results) == 0 {
		return Tool{}, fmt.Errorf("%w: %q", ErrNoMatch, text)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})
	if len(results) > 1 && results[0].score-results[1].score < 0.05 {
		return Tool{}, fmt.Errorf("%w: %q could be %s or %s", ErrAmbiguousMatch, text,
			c.tools[results[0].idx].ID, c.tools[results[1].idx].ID)
	}
	return c.tools[results[0].idx], nil
}

// ResolveList splits text on commas and resolves each entry.
func (c *Catalog) ResolveList(text string) ([]ToolID, error) {
	var ids []ToolID
	for _, part := range strings.Split(text, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		t, err := c.Resolve(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, t.ID)
	}
	return ids, nil
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(s), " ")
}

func distanceLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
