package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kimsuncheol/voca-ingest/internal/model"
)

func testCourse(t *testing.T) model.Course {
	t.Helper()
	course, err := model.NewRegistry(model.DefaultCourses()).Lookup("TOEIC")
	require.NoError(t, err)
	return course
}

func TestDetectConflictEmptySlot(t *testing.T) {
	c := detectConflict(context.Background(), newTestDocs(t), newTestBlobs(t), testCourse(t), 1)
	assert.False(t, c.Any())
}

func TestDetectConflictExistingDocuments(t *testing.T) {
	docs := newTestDocs(t)
	course := testCourse(t)
	_, err := docs.AddDocument(context.Background(), course.DayPath(1), &model.Record{Headword: "old"})
	require.NoError(t, err)

	c := detectConflict(context.Background(), docs, newTestBlobs(t), course, 1)
	assert.True(t, c.DocumentsExist)
	assert.False(t, c.BlobExists)
	assert.True(t, c.Any())
}

func TestDetectConflictExistingBlob(t *testing.T) {
	blobs := newTestBlobs(t)
	course := testCourse(t)
	require.NoError(t, blobs.Upload(context.Background(), course.BlobKey(1), []byte("old csv")))

	c := detectConflict(context.Background(), newTestDocs(t), blobs, course, 1)
	assert.True(t, c.BlobExists)
	assert.False(t, c.DocumentsExist)
}

func TestDetectConflictFailOpen(t *testing.T) {
	// Probe errors must read as "no conflict", never block the upload.
	docs := &failingListStore{Store: newTestDocs(t), err: errors.New("store unavailable")}
	blobs := &failingBlobStore{Store: newTestBlobs(t), err: errors.New("probe timeout")}

	c := detectConflict(context.Background(), docs, blobs, testCourse(t), 1)
	assert.False(t, c.Any())
}

func TestConflictDescribe(t *testing.T) {
	course := testCourse(t)

	tests := []struct {
		name     string
		conflict Conflict
		want     string
	}{
		{"both", Conflict{BlobExists: true, DocumentsExist: true}, "Day 2 of TOEIC already has a stored source file and existing records"},
		{"blob only", Conflict{BlobExists: true}, "Day 2 of TOEIC already has a stored source file"},
		{"documents only", Conflict{DocumentsExist: true}, "Day 2 of TOEIC already has existing records"},
		{"none", Conflict{}, "Day 2 of TOEIC is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.conflict.Describe(course, 2))
		})
	}
}
