package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/rotisserie/eris"

	"github.com/Kimsuncheol/voca-ingest/internal/model"
)

// slotLock is an advisory file lock keyed on (course, day). Cross-process
// ingestion of the same slot is otherwise unguarded: two simultaneous runs
// can interleave their clear/insert sequences. The lock is opt-in via the
// pipeline's lock directory.
type slotLock struct {
	fl *flock.Flock
}

// acquireSlotLock takes the advisory lock, or fails with ErrSlotLocked when
// another process holds it.
func acquireSlotLock(dir string, course model.Course, day int) (*slotLock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "ingest: create lock dir %s", dir)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-Day%d.lock", course.ID, day))
	fl := flock.New(path)

	locked, err := fl.TryLock()
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: lock %s", path)
	}
	if !locked {
		return nil, eris.Wrapf(ErrSlotLocked, "%s Day%d", course.ID, day)
	}
	return &slotLock{fl: fl}, nil
}

func (l *slotLock) release() {
	if l != nil && l.fl != nil {
		_ = l.fl.Unlock()
	}
}
