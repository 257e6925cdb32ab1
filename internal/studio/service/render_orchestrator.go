package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/diagram-studio/internal/logging"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/domain"
	"golang.org/x/time/rate"
)

// Engine is the external diagram renderer. Any returned error is treated as a
// render failure for the given source, never as a fatal condition.
type Engine interface {
	Render(ctx context.Context, requestID, text string) (*domain.Graphic, error)
}

const (
	MinZoom     = 0.5
	MaxZoom     = 2.0
	ZoomStep    = 0.1
	DefaultZoom = 1.0

	defaultRenderTimeout = 30 * time.Second
)

// Ticket identifies an issued render request.
type Ticket struct {
	Seq       uint64 `json:"seq"`
	RequestID string `json:"request_id"`
}

// Completion is delivered for the latest issued render only.
type Completion struct {
	Ticket
	Text    string
	Graphic *domain.Graphic
	Err     *domain.RenderFailure
}

// View is the last successful render with the zoom transform applied.
type View struct {
	State     domain.RenderState `json:"state"`
	Graphic   *domain.Graphic    `json:"graphic,omitempty"`
	Zoom      float64            `json:"zoom"`
	Transform string             `json:"transform"`
	LatestSeq uint64             `json:"latest_seq"`
}

// RenderOrchestrator issues asynchronous render requests and makes sure only
// the most recently issued one can update the visible diagram.
type RenderOrchestrator struct {
	engine  Engine
	limiter *rate.Limiter
	timeout time.Duration
	metrics *Metrics

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// deliverMu keeps completion callbacks in issue order.
	deliverMu sync.Mutex
	// owner, when set, is held across the stale check and the callback so
	// that its holder cannot issue a render in between.
	owner sync.Locker

	mu         sync.Mutex
	seq        uint64
	state      domain.RenderState
	last       *domain.Graphic
	zoom       float64
	onComplete func(Completion)
}

// RenderOption configures a RenderOrchestrator.
type RenderOption func(*RenderOrchestrator)

// WithRateLimit throttles engine calls to r per second with the given burst.
func WithRateLimit(r float64, burst int) RenderOption {
	return func(o *RenderOrchestrator) {
		if r <= 0 {
			o.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		o.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

// WithRenderTimeout bounds each engine call.
func WithRenderTimeout(d time.Duration) RenderOption {
	return func(o *RenderOrchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithMetrics attaches metrics.
func WithMetrics(m *Metrics) RenderOption {
	return func(o *RenderOrchestrator) { o.metrics = m }
}

func NewRenderOrchestrator(engine Engine, opts ...RenderOption) *RenderOrchestrator {
	ctx, cancel := context.WithCancel(context.Background())
	o := &RenderOrchestrator{
		engine:  engine,
		timeout: defaultRenderTimeout,
		ctx:     ctx,
		cancel:  cancel,
		state:   domain.RenderIdle,
		zoom:    DefaultZoom,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// OnComplete sets the callback receiving non-stale completions.
func (o *RenderOrchestrator) OnComplete(fn func(Completion)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onComplete = fn
}

func (o *RenderOrchestrator) serializeWith(l sync.Locker) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.owner = l
}

// Render issues a request and returns without waiting for the engine.
func (o *RenderOrchestrator) Render(text string) Ticket {
	o.mu.Lock()
	o.seq++
	t := Ticket{Seq: o.seq, RequestID: fmt.Sprintf("diagram_%d", o.seq)}
	o.state = domain.RenderRendering
	o.mu.Unlock()

	o.metrics.recordRequest()

	o.wg.Add(1)
	go o.run(t, text)
	return t
}

func (o *RenderOrchestrator) run(t Ticket, text string) {
	defer o.wg.Done()

	ctx, cancel := context.WithTimeout(o.ctx, o.timeout)
	defer cancel()

	start := time.Now()
	graphic, err := o.call(ctx, t, text)
	o.metrics.recordRender(time.Since(start), err)

	if o.ctx.Err() != nil {
		return
	}

	o.deliverMu.Lock()
	defer o.deliverMu.Unlock()

	o.mu.Lock()
	owner := o.owner
	o.mu.Unlock()
	if owner != nil {
		owner.Lock()
		defer owner.Unlock()
		if o.ctx.Err() != nil {
			return
		}
	}

	o.mu.Lock()
	if t.Seq != o.seq {
		o.mu.Unlock()
		o.metrics.recordStale()
		logging.NewLogger(ctx).LogInfof("render", "discarding stale result request_id=%s", t.RequestID)
		return
	}

	c := Completion{Ticket: t, Text: text}
	if err != nil {
		c.Err = toFailure(t, err)
		o.state = domain.RenderFailed
	} else {
		if graphic.RequestID == "" {
			graphic.RequestID = t.RequestID
		}
		c.Graphic = graphic
		o.last = graphic
		o.state = domain.RenderRendered
	}
	fn := o.onComplete
	o.mu.Unlock()

	if fn != nil {
		fn(c)
	}
}

func (o *RenderOrchestrator) call(ctx context.Context, t Ticket, text string) (*domain.Graphic, error) {
	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("render throttled: %w", err)
		}
	}
	g, err := o.engine.Render(ctx, t.RequestID, text)
	if err == nil && g == nil {
		err = errors.New("engine returned no graphic")
	}
	return g, err
}

func toFailure(t Ticket, err error) *domain.RenderFailure {
	var rf *domain.RenderFailure
	if errors.As(err, &rf) {
		if rf.RequestID == "" {
			return &domain.RenderFailure{RequestID: t.RequestID, Message: rf.Message}
		}
		return rf
	}
	return &domain.RenderFailure{RequestID: t.RequestID, Message: err.Error()}
}

// LastGraphic returns the last successful render, or nil.
func (o *RenderOrchestrator) LastGraphic() *domain.Graphic {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}

// clearGraphic forgets the last successful render. Used when the diagram
// source changes identity, so an old graphic cannot be shown or exported.
func (o *RenderOrchestrator) clearGraphic() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.last = nil
	o.state = domain.RenderIdle
}

// View returns the current view state.
func (o *RenderOrchestrator) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return View{
		State:     o.state,
		Graphic:   o.last,
		Zoom:      o.zoom,
		Transform: transformFor(o.zoom),
		LatestSeq: o.seq,
	}
}

// SetZoom clamps z into range and snaps it to the zoom step.
func (o *RenderOrchestrator) SetZoom(z float64) float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.zoom = clampZoom(z)
	return o.zoom
}

func (o *RenderOrchestrator) ZoomIn() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.zoom = clampZoom(o.zoom + ZoomStep)
	return o.zoom
}

func (o *RenderOrchestrator) ZoomOut() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.zoom = clampZoom(o.zoom - ZoomStep)
	return o.zoom
}

func (o *RenderOrchestrator) ResetZoom() float64 {
	return o.SetZoom(DefaultZoom)
}

// Wait blocks until every issued render has finished.
func (o *RenderOrchestrator) Wait() {
	o.wg.Wait()
}

// Close cancels in-flight renders and waits for them to exit.
func (o *RenderOrchestrator) Close() {
	o.cancel()
	o.wg.Wait()
}

func clampZoom(z float64) float64 {
	z = math.Round(z/ZoomStep) * ZoomStep
	z = math.Round(z*10) / 10
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

func transformFor(z float64) string {
	return fmt.Sprintf("scale(%.1f)", z)
}
