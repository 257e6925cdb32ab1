package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/diagram-studio/internal/logging"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/domain"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/repository"
	"github.com/google/uuid"
)

// ProjectStore owns the project set and the active project.
// Every mutation is flushed to persistence before it takes effect in memory.
type ProjectStore struct {
	mu sync.Mutex

	persistence repository.Persistence
	projects    []domain.Project
	activeID    string

	now   func() time.Time
	newID func() string
}

// ProjectStoreOption configures a ProjectStore.
type ProjectStoreOption func(*ProjectStore)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) ProjectStoreOption {
	return func(s *ProjectStore) { s.now = now }
}

// WithIDGenerator overrides project ID allocation.
func WithIDGenerator(newID func() string) ProjectStoreOption {
	return func(s *ProjectStore) { s.newID = newID }
}

// NewProjectStore rehydrates the store. Absent, malformed or empty persisted
// state is replaced by a single default project.
func NewProjectStore(ctx context.Context, p repository.Persistence, opts ...ProjectStoreOption) (*ProjectStore, error) {
	s := &ProjectStore{
		persistence: p,
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}

	logger := logging.NewLogger(ctx)
	projects, err := p.Load(ctx)
	switch {
	case errors.Is(err, repository.ErrNoState):
		logger.LogInfo("project_store.load", "no persisted projects, seeding default")
	case errors.Is(err, repository.ErrMalformedState):
		logger.LogWarnf("project_store.load", "discarding persisted state: %v", err)
		projects = nil
	case err != nil:
		return nil, fmt.Errorf("load projects: %w", err)
	}

	if len(projects) == 0 {
		def := s.defaultProject()
		if err := p.Save(ctx, []domain.Project{def}); err != nil {
			return nil, err
		}
		projects = []domain.Project{def}
	}

	s.projects = projects
	s.activeID = projects[0].ID
	return s, nil
}

// Create adds an empty project and makes it active.
func (s *ProjectStore) Create(ctx context.Context, name string) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.newProject(name, "")
	next := append(s.cloneLocked(), p)
	if err := s.persistence.Save(ctx, next); err != nil {
		return domain.Project{}, err
	}
	s.projects = next
	s.activeID = p.ID
	return p, nil
}

// Select makes the project with id active.
func (s *ProjectStore) Select(ctx context.Context, id string) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return domain.Project{}, domain.ErrNotFound
	}
	s.activeID = id
	return s.projects[i], nil
}

// Rename changes a project's name.
func (s *ProjectStore) Rename(ctx context.Context, id, name string) (domain.Project, error) {
	return s.update(ctx, id, func(p *domain.Project) {
		p.Name = strings.TrimSpace(name)
		if p.Name == "" {
			p.Name = domain.DefaultProjectName
		}
	})
}

// UpdateText replaces a project's source text. It neither records history
// nor renders; the session decides both.
func (s *ProjectStore) UpdateText(ctx context.Context, id, text string) (domain.Project, error) {
	return s.update(ctx, id, func(p *domain.Project) {
		p.SourceText = text
	})
}

// Delete removes a project. When the active project is removed the first
// remaining project becomes active; when none remain a default project is
// synthesized. The returned project is the active one after the delete, and
// changed reports whether the active project changed.
func (s *ProjectStore) Delete(ctx context.Context, id string) (active domain.Project, changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return domain.Project{}, false, domain.ErrNotFound
	}

	next := s.cloneLocked()
	next = append(next[:i], next[i+1:]...)
	if len(next) == 0 {
		logging.NewLogger(ctx).LogInfof("project_store.delete", "%v, seeding default", domain.ErrEmptyProjectSet)
		next = []domain.Project{s.defaultProject()}
	}

	if err := s.persistence.Save(ctx, next); err != nil {
		return domain.Project{}, false, err
	}
	s.projects = next

	if id == s.activeID {
		s.activeID = next[0].ID
		return next[0], true, nil
	}
	return s.projects[s.indexLocked(s.activeID)], false, nil
}

// Get returns a project by id.
func (s *ProjectStore) Get(id string) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return domain.Project{}, domain.ErrNotFound
	}
	return s.projects[i], nil
}

// Active returns the active project.
func (s *ProjectStore) Active() domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projects[s.indexLocked(s.activeID)]
}

// List returns the projects in stored order.
func (s *ProjectStore) List() []domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cloneLocked()
}

func (s *ProjectStore) update(ctx context.Context, id string, mutate func(*domain.Project)) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return domain.Project{}, domain.ErrNotFound
	}

	next := s.cloneLocked()
	p := &next[i]
	mutate(p)
	p.UpdatedAt = s.now()
	if p.UpdatedAt.Before(p.CreatedAt) {
		p.UpdatedAt = p.CreatedAt
	}

	if err := s.persistence.Save(ctx, next); err != nil {
		return domain.Project{}, err
	}
	s.projects = next
	return next[i], nil
}

func (s *ProjectStore) newProject(name, text string) domain.Project {
	name = strings.TrimSpace(name)
	if name == "" {
		name = domain.DefaultProjectName
	}
	now := s.now()
	return domain.Project{
		ID:         s.newID(),
		Name:       name,
		SourceText: text,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (s *ProjectStore) defaultProject() domain.Project {
	return s.newProject(domain.DefaultProjectName, domain.StarterDiagram)
}

func (s *ProjectStore) indexLocked(id string) int {
	for i := range s.projects {
		if s.projects[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *ProjectStore) cloneLocked() []domain.Project {
	return append([]domain.Project(nil), s.projects...)
}
