package ingest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Kimsuncheol/voca-ingest/internal/blobstore"
	"github.com/Kimsuncheol/voca-ingest/internal/docstore"
	"github.com/Kimsuncheol/voca-ingest/internal/model"
)

// Conflict reports whether a (course, day) slot already holds data in either
// store.
type Conflict struct {
	BlobExists     bool
	DocumentsExist bool
}

// Any reports whether either store holds conflicting data.
func (c Conflict) Any() bool {
	return c.BlobExists || c.DocumentsExist
}

// Describe renders a human-readable summary of which stores hold data, for
// the confirmation collaborator.
func (c Conflict) Describe(course model.Course, day int) string {
	switch {
	case c.BlobExists && c.DocumentsExist:
		return fmt.Sprintf("Day %d of %s already has a stored source file and existing records", day, course.Name)
	case c.BlobExists:
		return fmt.Sprintf("Day %d of %s already has a stored source file", day, course.Name)
	case c.DocumentsExist:
		return fmt.Sprintf("Day %d of %s already has existing records", day, course.Name)
	default:
		return fmt.Sprintf("Day %d of %s is empty", day, course.Name)
	}
}

// detectConflict probes both stores, one after the other like every other
// step in a slot's run. Both probes are fail-open: a probe error is logged
// and treated as "no conflict" so a transient read failure never blocks an
// upload.
func detectConflict(ctx context.Context, docs docstore.Store, blobs blobstore.Store, course model.Course, day int) Conflict {
	var c Conflict

	_, err := blobs.GetMetadata(ctx, course.BlobKey(day))
	switch {
	case err == nil:
		c.BlobExists = true
	case !errors.Is(err, blobstore.ErrNotFound):
		zap.L().Warn("ingest: blob conflict probe failed, assuming no conflict",
			zap.String("key", course.BlobKey(day)),
			zap.Error(err),
		)
	}

	existing, err := docs.ListDocuments(ctx, course.DayPath(day))
	if err != nil {
		zap.L().Warn("ingest: document conflict probe failed, assuming no conflict",
			zap.String("path", course.DayPath(day)),
			zap.Error(err),
		)
		return c
	}
	c.DocumentsExist = len(existing) > 0

	return c
}
