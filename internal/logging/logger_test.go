package logging

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc123")
	assert.Equal(t, "abc123", RequestID(ctx))
	assert.Equal(t, "", RequestID(context.Background()))
}

func TestLogger(t *testing.T) {
	buf := captureLog(t)

	l := NewLogger(WithRequestID(context.Background(), "rid-1"))
	l.LogInfof("render", "seq=%d", 7)
	l.LogError("save", errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "[info] request_id=rid-1 operation=render seq=7")
	assert.Contains(t, out, "[error] request_id=rid-1 operation=save error=boom")
}

func TestLoggerWithoutRequestID(t *testing.T) {
	buf := captureLog(t)

	NewLogger(context.Background()).LogWarnf("load", "dropped %d records", 2)
	assert.Contains(t, buf.String(), "[warn] request_id=- operation=load dropped 2 records")
}
