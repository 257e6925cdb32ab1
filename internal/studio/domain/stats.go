package domain

type DiagramType string

const (
	TypeFlowchart DiagramType = "Flowchart"
	TypeSequence  DiagramType = "Sequence"
	TypeClass     DiagramType = "Class"
	TypeState     DiagramType = "State"
	TypeERDiagram DiagramType = "ERDiagram"
	TypeGantt     DiagramType = "Gantt"
	TypePie       DiagramType = "Pie"
	TypeGit       DiagramType = "Git"
	TypeUnknown   DiagramType = "Unknown"
	TypeError     DiagramType = "Error"
)

type Complexity string

const (
	ComplexityLow           Complexity = "Low"
	ComplexityMedium        Complexity = "Medium"
	ComplexityHigh          Complexity = "High"
	ComplexityNotApplicable Complexity = "N/A"
)

// DiagramStats summarises the last rendered source. Never persisted.
type DiagramStats struct {
	Type         DiagramType `json:"type"`
	Complexity   Complexity  `json:"complexity"`
	ElementCount int         `json:"element_count"`
}

// RenderState tracks a single render cycle.
type RenderState string

const (
	RenderIdle      RenderState = "idle"
	RenderRendering RenderState = "rendering"
	RenderRendered  RenderState = "rendered"
	RenderFailed    RenderState = "failed"
)
