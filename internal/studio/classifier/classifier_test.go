package classifier

import (
	"strings"
	"testing"

	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Run("small flowchart", func(t *testing.T) {
		stats := Classify("flowchart TB\nA-->B")
		assert.Equal(t, domain.DiagramStats{
			Type:         domain.TypeFlowchart,
			Complexity:   domain.ComplexityLow,
			ElementCount: 0,
		}, stats)
	})

	t.Run("long sequence diagram is high complexity", func(t *testing.T) {
		lines := []string{"sequenceDiagram"}
		for i := 0; i < 11; i++ {
			lines = append(lines, "Alice->>Bob: hello")
		}
		stats := Classify(strings.Join(lines, "\n"))
		assert.Equal(t, domain.TypeSequence, stats.Type)
		assert.Equal(t, domain.ComplexityHigh, stats.Complexity)
	})

	t.Run("starter diagram", func(t *testing.T) {
		stats := Classify(domain.StarterDiagram)
		assert.Equal(t, domain.TypeFlowchart, stats.Type)
		assert.Equal(t, domain.ComplexityMedium, stats.Complexity)
		assert.Equal(t, 4, stats.ElementCount)
	})

	t.Run("blank lines are ignored", func(t *testing.T) {
		stats := Classify("pie\n\n   \n\"a\" : 1\n\t\n")
		assert.Equal(t, domain.TypePie, stats.Type)
		assert.Equal(t, domain.ComplexityLow, stats.Complexity)
	})

	t.Run("element count uses brackets and parens", func(t *testing.T) {
		stats := Classify("graph LR\nA[one]\nB(two)\nA-->B\n")
		assert.Equal(t, 2, stats.ElementCount)
	})

	t.Run("no marker is unknown", func(t *testing.T) {
		assert.Equal(t, domain.TypeUnknown, Classify("not a diagram").Type)
	})
}

func TestComplexityBoundaries(t *testing.T) {
	cases := []struct {
		lines int
		want  domain.Complexity
	}{
		{0, domain.ComplexityLow},
		{5, domain.ComplexityLow},
		{6, domain.ComplexityMedium},
		{10, domain.ComplexityMedium},
		{11, domain.ComplexityHigh},
	}
	for _, tc := range cases {
		text := strings.Repeat("x\n", tc.lines)
		assert.Equal(t, tc.want, Classify(text).Complexity, "lines=%d", tc.lines)
	}
}

func TestDetectTypePriority(t *testing.T) {
	// markers are case-sensitive, so gitGraph does not match graph
	assert.Equal(t, domain.TypeGit, DetectType("gitGraph\ncommit"))
	assert.Equal(t, domain.TypeFlowchart, DetectType("graph TD\nA-->B\ngitGraph"))
	assert.Equal(t, domain.TypeSequence, DetectType("sequenceDiagram\nnote over pie"))
	assert.Equal(t, domain.TypeClass, DetectType("classDiagram\nclass Animal"))
	assert.Equal(t, domain.TypeState, DetectType("stateDiagram-v2\n[*] --> Still"))
	assert.Equal(t, domain.TypeERDiagram, DetectType("erDiagram\nCUSTOMER ||--o{ ORDER : places"))
	assert.Equal(t, domain.TypeGantt, DetectType("gantt\ntitle Plan"))
}

func TestFailed(t *testing.T) {
	assert.Equal(t, domain.DiagramStats{
		Type:         domain.TypeError,
		Complexity:   domain.ComplexityNotApplicable,
		ElementCount: 0,
	}, Failed())
}
