package domain

import "time"

// Project is a named diagram document owned by the project store.
type Project struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SourceText string    `json:"source_text"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HistoryEntry is one snapshot of diagram source in the undo log.
type HistoryEntry struct {
	SourceText string    `json:"source_text"`
	Timestamp  time.Time `json:"timestamp"`
}

// Graphic is a rendered diagram as returned by the rendering engine.
type Graphic struct {
	RequestID string `json:"request_id"`
	SVG       string `json:"svg"`
}

// DefaultProjectName is used for synthesized projects.
const DefaultProjectName = "Untitled"

// StarterDiagram seeds every synthesized default project.
const StarterDiagram = `flowchart TB
A[Sensing Layer] --> B[Edge Layer]
B --> C[Communication Layer]
C --> D[Cloud Layer]
D --> E[Application Layer]
E --> B`
