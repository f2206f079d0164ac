package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Kimsuncheol/voca-ingest/internal/docstore"
	"github.com/Kimsuncheol/voca-ingest/internal/model"
)

// updateMetadata maintains the per-course "highest day with data" counter.
// Max-wins: when a metadata document exists, totalDays is written only if
// day exceeds it; re-running an earlier day is a no-op with no write at all.
func updateMetadata(ctx context.Context, docs docstore.Store, reg *model.Registry, courseID string, day int, now time.Time) error {
	course, err := reg.Lookup(courseID)
	if err != nil {
		if errors.Is(err, model.ErrNoPath) {
			zap.L().Warn("ingest: metadata update for unknown course, skipping",
				zap.String("course", courseID),
			)
			return nil
		}
		return err
	}

	path := course.MetadataPath()

	doc, ok, err := docs.GetDocument(ctx, path)
	if err != nil {
		return eris.Wrapf(err, "ingest: read metadata %s", path)
	}

	meta := model.Metadata{CourseID: courseID, TotalDays: day, LastUpdated: now}
	if ok {
		var current model.Metadata
		if err := doc.Decode(&current); err != nil {
			return err
		}
		if day <= current.TotalDays {
			return nil // monotonic: never overwrite downward
		}
	}

	if err := docs.SetDocument(ctx, path, meta, true); err != nil {
		return eris.Wrapf(err, "ingest: write metadata %s", path)
	}
	return nil
}
