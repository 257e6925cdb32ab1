package export

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	at := time.UnixMilli(1714550400123)
	assert.Equal(t, "exports/proj-1/1714550400123-diagram.svg", ObjectKey("proj-1", "diagram.svg", at))
}

func TestLocalStore_Put(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)

	loc, err := store.Put(context.Background(), "exports/p/1-diagram.svg", "image/svg+xml", []byte("<svg/>"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(loc, "file://"))

	data, err := os.ReadFile(filepath.Join(root, "exports", "p", "1-diagram.svg"))
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))

	t.Run("rejects keys outside the root", func(t *testing.T) {
		_, err := store.Put(context.Background(), "../escape.svg", "", []byte("x"))
		assert.Error(t, err)
	})
}

type recordedPut struct {
	path        string
	contentType string
	body        string
}

func TestS3Store_Put(t *testing.T) {
	var mu sync.Mutex
	var puts []recordedPut
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		puts = append(puts, recordedPut{path: r.URL.Path, contentType: r.Header.Get("Content-Type"), body: string(body)})
		mu.Unlock()
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store, err := NewS3Store(context.Background(), S3Config{
		Bucket:          "diagrams",
		Region:          "us-east-1",
		Endpoint:        server.URL,
		Prefix:          "/studio/",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		UsePathStyle:    true,
	})
	require.NoError(t, err)

	loc, err := store.Put(context.Background(), "exports/p/1-diagram.png", "image/png", []byte("PNG"))
	require.NoError(t, err)
	assert.Equal(t, "s3://diagrams/studio/exports/p/1-diagram.png", loc)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, puts, 1)
	assert.Equal(t, "/diagrams/studio/exports/p/1-diagram.png", puts[0].path)
	assert.Equal(t, "image/png", puts[0].contentType)
	assert.Contains(t, puts[0].body, "PNG")
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Config{Bucket: "  "})
	assert.Error(t, err)
}

type memStore struct {
	keys []string
	err  error
}

func (m *memStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.keys = append(m.keys, key)
	return "mem://" + key, nil
}

func TestArchiver(t *testing.T) {
	ctx := context.Background()

	t.Run("stores under the export key", func(t *testing.T) {
		store := &memStore{}
		a := NewArchiver(store)
		a.now = func() time.Time { return time.UnixMilli(42) }

		loc, err := a.Archive(ctx, "p1", "diagram.svg", "image/svg+xml", []byte("<svg/>"))
		require.NoError(t, err)
		assert.Equal(t, "mem://exports/p1/42-diagram.svg", loc)
	})

	t.Run("nil archiver is a no-op", func(t *testing.T) {
		var a *Archiver
		loc, err := a.Archive(ctx, "p1", "diagram.svg", "", nil)
		assert.NoError(t, err)
		assert.Empty(t, loc)
	})

	t.Run("store errors are returned", func(t *testing.T) {
		a := NewArchiver(&memStore{err: errors.New("disk full")})
		_, err := a.Archive(ctx, "p1", "diagram.svg", "", nil)
		assert.EqualError(t, err, "disk full")
	})
}

func TestPageURL(t *testing.T) {
	u := pageURL([]byte("<svg>x</svg>"))
	require.True(t, strings.HasPrefix(u, "data:text/html;base64,"))

	page, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(u, "data:text/html;base64,"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "<body><svg>x</svg></body>")
}

func TestChromeRasterizer_EmptySVG(t *testing.T) {
	_, err := NewChromeRasterizer("", time.Second).Rasterize(context.Background(), nil)
	assert.Error(t, err)
}
