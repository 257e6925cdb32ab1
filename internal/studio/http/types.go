package http

import (
	"context"
	"time"

	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/export"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/service"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/versions"
)

// VersionStore is the durable version archive. Optional.
type VersionStore interface {
	Save(ctx context.Context, in versions.SaveInput) (*versions.Version, error)
	List(ctx context.Context, projectID string, limit int) ([]versions.Version, error)
}

// Handler handles HTTP requests for the editing session
type Handler struct {
	session   *service.Session
	versions  VersionStore
	archiver  *export.Archiver
	keepAlive time.Duration
}

// Option configures a Handler.
type Option func(*Handler)

func WithVersions(v VersionStore) Option {
	return func(h *Handler) { h.versions = v }
}

func WithArchiver(a *export.Archiver) Option {
	return func(h *Handler) { h.archiver = a }
}

// WithKeepAlive sets the SSE keep-alive interval.
func WithKeepAlive(d time.Duration) Option {
	return func(h *Handler) { h.keepAlive = d }
}

// New creates a new Handler
func New(session *service.Session, opts ...Option) *Handler {
	h := &Handler{session: session, keepAlive: 15 * time.Second}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type editRequest struct {
	Text *string `json:"text" binding:"required"`
}

type projectRequest struct {
	Name string `json:"name"`
}

type shortcutRequest struct {
	Keys string `json:"keys" binding:"required"`
}

type liveRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type zoomRequest struct {
	Action string   `json:"action,omitempty"`
	Zoom   *float64 `json:"zoom,omitempty"`
}
