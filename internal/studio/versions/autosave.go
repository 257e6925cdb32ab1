package versions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/domain"
	"github.com/robfig/cron/v3"
)

// Source reports the document currently open in the session.
type Source interface {
	ActiveDocument() (domain.Project, domain.DiagramStats)
}

// Archive is the part of Repo the autosaver uses.
type Archive interface {
	Save(ctx context.Context, in SaveInput) (*Version, error)
	Latest(ctx context.Context, projectID string) (*Version, error)
}

// Autosaver snapshots the active project on a cron schedule when its text
// differs from the latest archived version.
type Autosaver struct {
	source  Source
	archive Archive

	mu   sync.Mutex
	cron *cron.Cron
}

func NewAutosaver(source Source, archive Archive) *Autosaver {
	return &Autosaver{source: source, archive: archive}
}

// Start schedules autosaves. The schedule uses six fields (with seconds).
func (a *Autosaver) Start(schedule string) error {
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(schedule, func() {
		if _, err := a.RunOnce(context.Background()); err != nil {
			log.Printf("[error] operation=versions.autosave error=%v", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid autosave schedule %q: %w", schedule, err)
	}

	a.mu.Lock()
	a.cron = c
	a.mu.Unlock()

	log.Printf("[info] operation=versions.autosave message=scheduler started (%s)", schedule)
	c.Start()
	return nil
}

// Stop halts the schedule and waits for a running snapshot to finish.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	c := a.cron
	a.cron = nil
	a.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

// RunOnce archives the active project if it changed. It returns the new
// version, or nil when nothing was saved.
func (a *Autosaver) RunOnce(ctx context.Context) (*Version, error) {
	p, _ := a.source.ActiveDocument()

	latest, err := a.archive.Latest(ctx, p.ID)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("latest version: %w", err)
	case latest.Hash == Hash(p.SourceText):
		return nil, nil
	}

	v, err := a.archive.Save(ctx, SaveInput{
		ProjectID:  p.ID,
		Name:       p.Name,
		SourceText: p.SourceText,
		Reason:     ReasonAutosave,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[info] operation=versions.autosave project_id=%s version=%d", v.ProjectID, v.VersionNumber)
	return v, nil
}
