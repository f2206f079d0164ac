package ingest

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Kimsuncheol/voca-ingest/internal/blobstore"
	"github.com/Kimsuncheol/voca-ingest/internal/docstore"
	"github.com/Kimsuncheol/voca-ingest/internal/model"
)

// clearSlot lists and deletes every document in the slot. Any delete failure
// is fatal (ErrClearFailed in the chain) and must abort before inserts begin.
func clearSlot(ctx context.Context, docs docstore.Store, course model.Course, day int) (int, error) {
	path := course.DayPath(day)

	existing, err := docs.ListDocuments(ctx, path)
	if err != nil {
		return 0, eris.Wrapf(ErrClearFailed, "list %s: %v", path, err)
	}

	for _, doc := range existing {
		if err := docs.DeleteDocument(ctx, path, doc.ID); err != nil {
			return 0, eris.Wrapf(ErrClearFailed, "delete %s/%s: %v", path, doc.ID, err)
		}
	}
	return len(existing), nil
}

// insertRecord writes one canonical record as a new document in the slot.
func insertRecord(ctx context.Context, docs docstore.Store, course model.Course, day int, rec *model.Record) (string, error) {
	id, err := docs.AddDocument(ctx, course.DayPath(day), rec)
	if err != nil {
		return "", eris.Wrapf(err, "ingest: insert %q into %s", rec.Key(), course.DayPath(day))
	}
	return id, nil
}

// backupSource uploads the original source blob for audit. Attempted,
// failure logged, never fatal to the ingestion outcome.
func backupSource(ctx context.Context, blobs blobstore.Store, course model.Course, day int, blob []byte) {
	if len(blob) == 0 {
		return
	}
	if err := blobs.Upload(ctx, course.BlobKey(day), blob); err != nil {
		zap.L().Warn("ingest: source backup upload failed",
			zap.String("key", course.BlobKey(day)),
			zap.Error(err),
		)
	}
}
