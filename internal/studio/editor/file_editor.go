// Package editor binds the session to a text-editing widget. FileEditor uses a
// plain file on disk as the widget, so any external editor can drive the session.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Widget is the editor contract the session talks to.
type Widget interface {
	GetValue() (string, error)
	SetValue(text string) error
}

const defaultDebounce = 100 * time.Millisecond

// FileEditor watches one file and reports each content change with the full text.
// Writes made through SetValue are not reported back.
type FileEditor struct {
	path     string
	debounce time.Duration
	onChange func(text string)

	mu      sync.Mutex
	last    string
	watcher *fsnotify.Watcher
	timer   *time.Timer
}

// NewFileEditor creates the file if it does not exist yet.
func NewFileEditor(path string, onChange func(text string)) (*FileEditor, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve editor file: %w", err)
	}
	e := &FileEditor{path: abs, debounce: defaultDebounce, onChange: onChange}

	data, err := os.ReadFile(abs)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.WriteFile(abs, nil, 0o644); err != nil {
			return nil, fmt.Errorf("failed to create editor file: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read editor file: %w", err)
	default:
		e.last = string(data)
	}
	return e, nil
}

// SetDebounce changes how long a burst of writes is coalesced before reporting.
func (e *FileEditor) SetDebounce(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.debounce = d
}

// Path returns the watched file.
func (e *FileEditor) Path() string { return e.path }

func (e *FileEditor) GetValue() (string, error) {
	data, err := os.ReadFile(e.path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SetValue replaces the file contents. The resulting file event is suppressed.
func (e *FileEditor) SetValue(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := os.WriteFile(e.path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write editor file: %w", err)
	}
	e.last = text
	return nil
}

// Start begins watching. The parent directory is watched so that editors which
// save by rename are still seen.
func (e *FileEditor) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(e.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", e.path, err)
	}

	e.mu.Lock()
	e.watcher = watcher
	e.mu.Unlock()

	go e.watchLoop(ctx, watcher)
	return nil
}

// Close stops watching.
func (e *FileEditor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.timer != nil {
		e.timer.Stop()
	}
	if e.watcher == nil {
		return nil
	}
	err := e.watcher.Close()
	e.watcher = nil
	return err
}

func (e *FileEditor) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) != e.path {
				continue
			}
			if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				e.schedule()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[warn] operation=editor.watch error=%v", err)
		}
	}
}

func (e *FileEditor) schedule() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.debounce, e.emit)
}

func (e *FileEditor) emit() {
	data, err := os.ReadFile(e.path)
	if err != nil {
		// mid-rename; the following create event reschedules
		return
	}
	text := string(data)

	e.mu.Lock()
	if text == e.last {
		e.mu.Unlock()
		return
	}
	e.last = text
	e.mu.Unlock()

	if e.onChange != nil {
		e.onChange(text)
	}
}
