package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/diagram-studio/internal/logging"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/classifier"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/domain"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/history"
)

// Editor is the text-editing widget bound to the active project.
type Editor interface {
	SetValue(text string) error
}

// Rasterizer turns an SVG document into a PNG image.
type Rasterizer interface {
	Rasterize(ctx context.Context, svg []byte) ([]byte, error)
}

// Export is a downloadable rendering of the current diagram.
type Export struct {
	Filename    string
	ContentType string
	ProjectID   string
	Data        []byte
}

const (
	VectorFilename = "diagram.svg"
	RasterFilename = "diagram.png"

	subscriberBuffer = 16
)

// Change is sent to subscribers after every state change.
type Change struct {
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// State is a point-in-time copy of everything observers display.
type State struct {
	Active     domain.Project        `json:"active"`
	Projects   []domain.Project      `json:"projects"`
	History    []domain.HistoryEntry `json:"history"`
	Cursor     int                   `json:"cursor"`
	CanUndo    bool                  `json:"can_undo"`
	CanRedo    bool                  `json:"can_redo"`
	LiveMode   bool                  `json:"live_mode"`
	View       View                  `json:"view"`
	Diagnostic string                `json:"diagnostic,omitempty"`
	Stats      domain.DiagramStats   `json:"stats"`
}

// Session composes the project store, history and renderer in response to
// user actions. All state changes are serialised behind one mutex.
type Session struct {
	mu sync.Mutex

	store      *ProjectStore
	history    *history.Stack
	renderer   *RenderOrchestrator
	editor     Editor
	rasterizer Rasterizer
	metrics    *Metrics

	live       bool
	stats      domain.DiagramStats
	diagnostic string

	subs    map[int]chan Change
	nextSub int
}

// SessionOption configures a Session.
type SessionOption func(*Session)

func WithEditor(e Editor) SessionOption {
	return func(s *Session) { s.editor = e }
}

func WithRasterizer(r Rasterizer) SessionOption {
	return func(s *Session) { s.rasterizer = r }
}

func WithLiveMode(live bool) SessionOption {
	return func(s *Session) { s.live = live }
}

func WithSessionMetrics(m *Metrics) SessionOption {
	return func(s *Session) { s.metrics = m }
}

// NewSession binds the components, seeds history from the active project and
// issues the initial render.
func NewSession(store *ProjectStore, hist *history.Stack, renderer *RenderOrchestrator, opts ...SessionOption) *Session {
	s := &Session{
		store:    store,
		history:  hist,
		renderer: renderer,
		stats:    classifier.Classify(""),
		subs:     make(map[int]chan Change),
	}
	for _, opt := range opts {
		opt(s)
	}
	renderer.serializeWith(&s.mu)
	renderer.OnComplete(s.handleRenderLocked)

	s.mu.Lock()
	s.activateLocked(store.Active())
	s.mu.Unlock()
	return s
}

// Edit applies new editor text to the active project. Identical text is ignored.
func (s *Session) Edit(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.store.Active()
	if active.SourceText == text {
		return nil
	}
	if _, err := s.store.UpdateText(ctx, active.ID, text); err != nil {
		return fmt.Errorf("update text: %w", err)
	}
	s.history.Push(text)
	s.metrics.recordHistoryPush()

	if s.live {
		s.renderer.Render(text)
	}
	s.notifyLocked("edit")
	return nil
}

// Render renders the active project's text on demand.
func (s *Session) Render(ctx context.Context) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.renderer.Render(s.store.Active().SourceText)
	s.notifyLocked("render_requested")
	return t
}

// Undo moves back one history entry. Returns domain.ErrNoOp at the oldest entry.
func (s *Session) Undo(ctx context.Context) error {
	return s.step(ctx, "undo", s.history.Undo)
}

// Redo moves forward one history entry. Returns domain.ErrNoOp at the newest entry.
func (s *Session) Redo(ctx context.Context) error {
	return s.step(ctx, "redo", s.history.Redo)
}

// RestoreVersion jumps to a history index.
func (s *Session) RestoreVersion(ctx context.Context, index int) error {
	return s.step(ctx, "restore", func() (domain.HistoryEntry, error) {
		return s.history.Restore(index)
	})
}

func (s *Session) step(ctx context.Context, reason string, move func() (domain.HistoryEntry, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.history.Cursor()
	entry, err := move()
	if err != nil {
		return err
	}

	active := s.store.Active()
	if _, err := s.store.UpdateText(ctx, active.ID, entry.SourceText); err != nil {
		_, _ = s.history.Restore(prev)
		return fmt.Errorf("%s: %w", reason, err)
	}
	s.setEditorLocked(ctx, entry.SourceText)

	if s.live {
		s.renderer.Render(entry.SourceText)
	}
	s.notifyLocked(reason)
	return nil
}

// CreateProject adds a project and switches to it.
func (s *Session) CreateProject(ctx context.Context, name string) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.store.Create(ctx, name)
	if err != nil {
		return domain.Project{}, err
	}
	s.activateLocked(p)
	s.setEditorLocked(ctx, p.SourceText)
	s.notifyLocked("project_created")
	return p, nil
}

// SelectProject switches the active project.
func (s *Session) SelectProject(ctx context.Context, id string) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.store.Select(ctx, id)
	if err != nil {
		return domain.Project{}, err
	}
	s.activateLocked(p)
	s.setEditorLocked(ctx, p.SourceText)
	s.notifyLocked("project_selected")
	return p, nil
}

// RenameProject renames a project without touching history or rendering.
func (s *Session) RenameProject(ctx context.Context, id, name string) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.store.Rename(ctx, id, name)
	if err != nil {
		return domain.Project{}, err
	}
	s.notifyLocked("project_renamed")
	return p, nil
}

// DeleteProject removes a project, activating a replacement if needed.
func (s *Session) DeleteProject(ctx context.Context, id string) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active, changed, err := s.store.Delete(ctx, id)
	if err != nil {
		return domain.Project{}, err
	}
	if changed {
		s.activateLocked(active)
		s.setEditorLocked(ctx, active.SourceText)
	}
	s.notifyLocked("project_deleted")
	return active, nil
}

// SetLiveMode toggles rendering on every edit.
func (s *Session) SetLiveMode(live bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live = live
	s.notifyLocked("live_mode")
}

// ZoomIn, ZoomOut, ResetZoom and SetZoom change the view transform only.
func (s *Session) ZoomIn() float64    { return s.zoom(s.renderer.ZoomIn) }
func (s *Session) ZoomOut() float64   { return s.zoom(s.renderer.ZoomOut) }
func (s *Session) ResetZoom() float64 { return s.zoom(s.renderer.ResetZoom) }

func (s *Session) SetZoom(z float64) float64 {
	return s.zoom(func() float64 { return s.renderer.SetZoom(z) })
}

func (s *Session) zoom(apply func() float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	z := apply()
	s.notifyLocked("zoom")
	return z
}

// ExportVector returns the last successful render as SVG.
func (s *Session) ExportVector() (Export, error) {
	g, projectID := s.lastGraphic()
	if g == nil {
		return Export{}, domain.ErrExportPrecondition
	}
	return Export{
		Filename:    VectorFilename,
		ContentType: "image/svg+xml",
		ProjectID:   projectID,
		Data:        []byte(g.SVG),
	}, nil
}

// ExportRaster rasterizes the last successful render to PNG.
func (s *Session) ExportRaster(ctx context.Context) (Export, error) {
	g, projectID := s.lastGraphic()
	if g == nil {
		return Export{}, domain.ErrExportPrecondition
	}
	if s.rasterizer == nil {
		return Export{}, errors.New("rasterizer not configured")
	}

	png, err := s.rasterizer.Rasterize(ctx, []byte(g.SVG))
	if err != nil {
		return Export{}, fmt.Errorf("rasterize: %w", err)
	}
	return Export{
		Filename:    RasterFilename,
		ContentType: "image/png",
		ProjectID:   projectID,
		Data:        png,
	}, nil
}

func (s *Session) lastGraphic() (*domain.Graphic, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderer.LastGraphic(), s.store.Active().ID
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		Active:     s.store.Active(),
		Projects:   s.store.List(),
		History:    s.history.Entries(),
		Cursor:     s.history.Cursor(),
		CanUndo:    s.history.CanUndo(),
		CanRedo:    s.history.CanRedo(),
		LiveMode:   s.live,
		View:       s.renderer.View(),
		Diagnostic: s.diagnostic,
		Stats:      s.stats,
	}
}

// ActiveDocument returns the active project and the stats of its last render.
func (s *Session) ActiveDocument() (domain.Project, domain.DiagramStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Active(), s.stats
}

// Projects lists every project.
func (s *Session) Projects() []domain.Project {
	return s.store.List()
}

// Subscribe registers for change notifications. Slow subscribers miss
// notifications rather than block the session; call cancel to unsubscribe.
func (s *Session) Subscribe() (<-chan Change, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Change, subscriberBuffer)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// handleRenderLocked runs with s.mu held by the renderer.
func (s *Session) handleRenderLocked(c Completion) {
	if c.Err != nil {
		s.stats = classifier.Failed()
		s.diagnostic = c.Err.Message
		logging.NewLogger(context.Background()).LogWarnf("render", "request_id=%s failed: %s", c.RequestID, c.Err.Message)
	} else {
		s.stats = classifier.Classify(c.Text)
		s.diagnostic = ""
	}
	s.notifyLocked("rendered")
}

// activateLocked binds p to history and the renderer. A new render supersedes
// any render still in flight for the previous project, and the previous
// project's graphic is dropped.
func (s *Session) activateLocked(p domain.Project) {
	s.history.Reset(p.SourceText)
	s.renderer.clearGraphic()
	s.stats = classifier.Classify("")
	s.diagnostic = ""
	s.renderer.Render(p.SourceText)
}

func (s *Session) setEditorLocked(ctx context.Context, text string) {
	if s.editor == nil {
		return
	}
	if err := s.editor.SetValue(text); err != nil {
		logging.NewLogger(ctx).LogWarnf("editor.set_value", "%v", err)
	}
}

func (s *Session) notifyLocked(reason string) {
	c := Change{Reason: reason, At: time.Now()}
	for _, ch := range s.subs {
		select {
		case ch <- c:
		default:
		}
	}
}
