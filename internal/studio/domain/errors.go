package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("project not found")
	ErrNoOp               = errors.New("nothing to do")
	ErrOutOfRange         = errors.New("history index out of range")
	ErrExportPrecondition = errors.New("render diagram first")
	ErrEmptyProjectSet    = errors.New("project set is empty")
)

// RenderFailure is the engine's diagnostic for source it could not render.
// It is recovered locally and never treated as fatal.
type RenderFailure struct {
	RequestID string
	Message   string
}

func (e *RenderFailure) Error() string {
	return fmt.Sprintf("render %s failed: %s", e.RequestID, e.Message)
}
