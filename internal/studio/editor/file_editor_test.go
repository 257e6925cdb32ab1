package editor

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type changes struct {
	mu    sync.Mutex
	texts []string
}

func (c *changes) add(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.texts = append(c.texts, text)
}

func (c *changes) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.texts...)
}

func startEditor(t *testing.T, initial *string) (*FileEditor, *changes) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "diagram.mmd")
	if initial != nil {
		require.NoError(t, os.WriteFile(path, []byte(*initial), 0o644))
	}

	got := &changes{}
	e, err := NewFileEditor(path, got.add)
	require.NoError(t, err)
	e.SetDebounce(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, e.Start(ctx))
	t.Cleanup(func() {
		cancel()
		_ = e.Close()
	})
	return e, got
}

func TestFileEditor_ReportsExternalWrites(t *testing.T) {
	e, got := startEditor(t, nil)

	require.NoError(t, os.WriteFile(e.Path(), []byte("graph TD\nA-->B"), 0o644))

	require.Eventually(t, func() bool {
		texts := got.all()
		return len(texts) > 0 && texts[len(texts)-1] == "graph TD\nA-->B"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFileEditor_SetValueIsNotEchoed(t *testing.T) {
	initial := "pie"
	e, got := startEditor(t, &initial)

	v, err := e.GetValue()
	require.NoError(t, err)
	assert.Equal(t, "pie", v)

	require.NoError(t, e.SetValue("gantt"))
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, got.all())

	v, err = e.GetValue()
	require.NoError(t, err)
	assert.Equal(t, "gantt", v)
}

func TestFileEditor_IgnoresOtherFiles(t *testing.T) {
	e, got := startEditor(t, nil)

	other := filepath.Join(filepath.Dir(e.Path()), "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("hello"), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, got.all())
}

func TestNewFileEditor_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.mmd")
	e, err := NewFileEditor(path, nil)
	require.NoError(t, err)
	defer e.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
