package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/domain"
)

// DefaultStateKey names the single record holding the project list.
const DefaultStateKey = "studio:projects"

var (
	// ErrNoState means nothing has been persisted yet.
	ErrNoState = errors.New("no persisted state")
	// ErrMalformedState means the stored record could not be decoded at all.
	ErrMalformedState = errors.New("malformed persisted state")
)

// Persistence stores the whole ordered project list as one record.
// Save always replaces the full record.
type Persistence interface {
	Load(ctx context.Context) ([]domain.Project, error)
	Save(ctx context.Context, projects []domain.Project) error
}

// projectRecord is the wire shape. Pointers let the decoder tell a missing
// field apart from an empty one.
type projectRecord struct {
	ID         *string    `json:"id"`
	Name       *string    `json:"name"`
	SourceText *string    `json:"source_text"`
	CreatedAt  *time.Time `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

// EncodeProjects serializes the project list.
func EncodeProjects(projects []domain.Project) ([]byte, error) {
	if projects == nil {
		projects = []domain.Project{}
	}
	data, err := json.Marshal(projects)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal projects: %w", err)
	}
	return data, nil
}

// DecodeProjects parses a stored record. Individual records that are missing
// required fields, break the timestamp ordering or repeat an earlier ID are
// dropped and counted.
func DecodeProjects(data []byte) ([]domain.Project, int, error) {
	var records []projectRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}

	out := make([]domain.Project, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	dropped := 0
	for _, r := range records {
		p, ok := r.toProject()
		if !ok {
			dropped++
			continue
		}
		if _, dup := seen[p.ID]; dup {
			dropped++
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out, dropped, nil
}

func (r projectRecord) toProject() (domain.Project, bool) {
	if r.ID == nil || strings.TrimSpace(*r.ID) == "" {
		return domain.Project{}, false
	}
	if r.Name == nil || r.SourceText == nil {
		return domain.Project{}, false
	}
	if r.CreatedAt == nil || r.UpdatedAt == nil || r.CreatedAt.IsZero() {
		return domain.Project{}, false
	}
	if r.UpdatedAt.Before(*r.CreatedAt) {
		return domain.Project{}, false
	}
	return domain.Project{
		ID:         *r.ID,
		Name:       *r.Name,
		SourceText: *r.SourceText,
		CreatedAt:  *r.CreatedAt,
		UpdatedAt:  *r.UpdatedAt,
	}, true
}
