// Package export rasterizes rendered diagrams and archives exported files.
package export

import (
	"context"
	"fmt"
	"path"
	"time"
)

// Store archives exported files.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) (location string, err error)
}

// ObjectKey lays exports out as exports/<project-id>/<unix-ms>-<filename>.
func ObjectKey(projectID, filename string, at time.Time) string {
	return path.Join("exports", projectID, fmt.Sprintf("%d-%s", at.UnixMilli(), filename))
}
