// Package classifier derives summary statistics from diagram source text.
package classifier

import (
	"strings"

	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/domain"
)

// Rule maps a set of marker keywords to a diagram type.
type Rule struct {
	Markers []string
	Type    domain.DiagramType
}

// Rules is evaluated in order; the first rule with a marker present in the text wins.
var Rules = []Rule{
	{Markers: []string{"flowchart", "graph"}, Type: domain.TypeFlowchart},
	{Markers: []string{"sequenceDiagram"}, Type: domain.TypeSequence},
	{Markers: []string{"classDiagram"}, Type: domain.TypeClass},
	{Markers: []string{"stateDiagram"}, Type: domain.TypeState},
	{Markers: []string{"erDiagram"}, Type: domain.TypeERDiagram},
	{Markers: []string{"gantt"}, Type: domain.TypeGantt},
	{Markers: []string{"pie"}, Type: domain.TypePie},
	{Markers: []string{"gitGraph"}, Type: domain.TypeGit},
}

const (
	mediumAbove = 5
	highAbove   = 10
)

// Classify computes stats for source text that rendered successfully.
func Classify(text string) domain.DiagramStats {
	lines := nonBlankLines(text)

	elements := 0
	for _, l := range lines {
		if strings.ContainsAny(l, "[(") {
			elements++
		}
	}

	return domain.DiagramStats{
		Type:         DetectType(text),
		Complexity:   complexityOf(len(lines)),
		ElementCount: elements,
	}
}

// Failed is the stats value for a render failure, regardless of the text.
func Failed() domain.DiagramStats {
	return domain.DiagramStats{
		Type:         domain.TypeError,
		Complexity:   domain.ComplexityNotApplicable,
		ElementCount: 0,
	}
}

// DetectType scans the rule table in priority order.
func DetectType(text string) domain.DiagramType {
	for _, r := range Rules {
		for _, m := range r.Markers {
			if strings.Contains(text, m) {
				return r.Type
			}
		}
	}
	return domain.TypeUnknown
}

func complexityOf(n int) domain.Complexity {
	switch {
	case n > highAbove:
		return domain.ComplexityHigh
	case n > mediumAbove:
		return domain.ComplexityMedium
	default:
		return domain.ComplexityLow
	}
}

func nonBlankLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}
