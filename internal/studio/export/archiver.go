package export

import (
	"context"
	"time"

	"github.com/GoSim-25-26J-441/diagram-studio/internal/logging"
)

// Archiver copies exports into a Store. A nil Archiver does nothing.
type Archiver struct {
	store Store
	now   func() time.Time
}

func NewArchiver(store Store) *Archiver {
	return &Archiver{store: store, now: time.Now}
}

// Archive stores data and returns where it went. Failures are logged and
// reported but never block the export itself.
func (a *Archiver) Archive(ctx context.Context, projectID, filename, contentType string, data []byte) (string, error) {
	if a == nil || a.store == nil {
		return "", nil
	}
	key := ObjectKey(projectID, filename, a.now())
	location, err := a.store.Put(ctx, key, contentType, data)
	if err != nil {
		logging.NewLogger(ctx).LogErrorf("export.archive", "key=%s: %v", key, err)
		return "", err
	}
	return location, nil
}
