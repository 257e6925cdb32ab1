package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/classifier"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/domain"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/history"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/repository"
	"github.com/stretchr/testify/require"
)

// fakeEngine renders any text with a known diagram marker and rejects the rest.
// With hold set, every call blocks until released by request ID.
type fakeEngine struct {
	mu      sync.Mutex
	hold    bool
	gates   map[string]chan struct{}
	calls   []string
	started chan string
}

func newFakeEngine(hold bool) *fakeEngine {
	return &fakeEngine{
		hold:    hold,
		gates:   make(map[string]chan struct{}),
		started: make(chan string, 64),
	}
}

func (f *fakeEngine) Render(ctx context.Context, requestID, text string) (*domain.Graphic, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	var gate chan struct{}
	if f.hold {
		gate = make(chan struct{})
		f.gates[requestID] = gate
	}
	f.mu.Unlock()
	f.started <- requestID

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if classifier.DetectType(text) == domain.TypeUnknown {
		return nil, &domain.RenderFailure{Message: "Parse error on line 1"}
	}
	return &domain.Graphic{SVG: fmt.Sprintf("<svg><!-- %s --></svg>", text)}, nil
}

func (f *fakeEngine) release(requestID string) {
	f.mu.Lock()
	gate := f.gates[requestID]
	delete(f.gates, requestID)
	f.mu.Unlock()
	if gate != nil {
		close(gate)
	}
}

func (f *fakeEngine) awaitStart(t *testing.T) string {
	t.Helper()
	select {
	case rid := <-f.started:
		return rid
	case <-time.After(2 * time.Second):
		t.Fatal("render never reached the engine")
		return ""
	}
}

func (f *fakeEngine) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type failingPersistence struct {
	repository.Persistence
	fail bool
}

func (p *failingPersistence) Save(ctx context.Context, projects []domain.Project) error {
	if p.fail {
		return errors.New("storage unavailable")
	}
	return p.Persistence.Save(ctx, projects)
}

func testClock() func() time.Time {
	var mu sync.Mutex
	t0 := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return t0.Add(time.Duration(n) * time.Second)
	}
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("proj-%d", n)
	}
}

func newTestStore(t *testing.T, p repository.Persistence) *ProjectStore {
	t.Helper()
	if p == nil {
		p = repository.NewMemoryStore()
	}
	store, err := NewProjectStore(context.Background(), p, WithClock(testClock()), WithIDGenerator(sequentialIDs()))
	require.NoError(t, err)
	return store
}

type fixture struct {
	store    *ProjectStore
	engine   *fakeEngine
	renderer *RenderOrchestrator
	session  *Session
}

func newFixture(t *testing.T, hold bool, opts ...SessionOption) *fixture {
	t.Helper()
	store := newTestStore(t, nil)
	engine := newFakeEngine(hold)
	renderer := NewRenderOrchestrator(engine, WithMetrics(NewMetrics()))
	t.Cleanup(renderer.Close)

	session := NewSession(store, history.NewStack(0), renderer, opts...)
	f := &fixture{store: store, engine: engine, renderer: renderer, session: session}
	if !hold {
		renderer.Wait()
	}
	return f
}

func newMemory() *repository.MemoryStore { return repository.NewMemoryStore() }

func newHistory() *history.Stack { return history.NewStack(0) }
