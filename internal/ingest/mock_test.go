package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/Kimsuncheol/voca-ingest/internal/blobstore"
	"github.com/Kimsuncheol/voca-ingest/internal/docstore"
	"github.com/Kimsuncheol/voca-ingest/internal/model"
	"github.com/Kimsuncheol/voca-ingest/internal/normalize"
	"github.com/Kimsuncheol/voca-ingest/pkg/lingen"
	"github.com/Kimsuncheol/voca-ingest/pkg/phonetics"
)

// --- Phonetics mock ---

type mockPhonetics struct {
	mock.Mock
}

func (m *mockPhonetics) Lookup(ctx context.Context, word string) (*phonetics.Result, error) {
	args := m.Called(ctx, word)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*phonetics.Result), args.Error(1)
}

// --- Lingen mock ---

type mockLingen struct {
	mock.Mock
}

func (m *mockLingen) Generate(ctx context.Context, req lingen.Request) (*lingen.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lingen.Result), args.Error(1)
}

// --- Failing docstore wrappers ---

// failingDeleteStore fails every DeleteDocument call.
type failingDeleteStore struct {
	docstore.Store
	err error
}

func (s *failingDeleteStore) DeleteDocument(ctx context.Context, collection, id string) error {
	return s.err
}

// failingAddStore fails AddDocument for selected collections.
type failingAddStore struct {
	docstore.Store
	failOn map[string]error
}

func (s *failingAddStore) AddDocument(ctx context.Context, collection string, v any) (string, error) {
	if err, ok := s.failOn[collection]; ok {
		return "", err
	}
	return s.Store.AddDocument(ctx, collection, v)
}

// failingListStore fails every ListDocuments call.
type failingListStore struct {
	docstore.Store
	err error
}

func (s *failingListStore) ListDocuments(ctx context.Context, collection string) ([]docstore.Document, error) {
	return nil, s.err
}

// failingBlobStore fails every probe.
type failingBlobStore struct {
	blobstore.Store
	err error
}

func (s *failingBlobStore) GetMetadata(ctx context.Context, key string) (*blobstore.ObjectInfo, error) {
	return nil, s.err
}

// --- Test fixtures ---

var testClock = func() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newTestDocs(t *testing.T) docstore.Store {
	t.Helper()
	s, err := docstore.NewSQLite(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func newTestBlobs(t *testing.T) blobstore.Store {
	t.Helper()
	s, err := blobstore.NewFS(t.TempDir())
	require.NoError(t, err)
	return s
}

func newTestPipeline(t *testing.T, docs docstore.Store, blobs blobstore.Store, phon phonetics.Client, gen lingen.Client, opts ...Option) *Pipeline {
	t.Helper()
	norm, err := normalize.New(normalize.WithClock(testClock))
	require.NoError(t, err)

	reg := model.NewRegistry(model.DefaultCourses())
	opts = append([]Option{
		WithRateLimit(rate.Inf, 1),
		WithClock(testClock),
	}, opts...)
	return New(docs, blobs, phon, gen, norm, reg, opts...)
}

func acceptAll(context.Context, Conflict, string) (bool, error) {
	return true, nil
}

func declineAll(context.Context, Conflict, string) (bool, error) {
	return false, nil
}

// phonNone stubs the phonetics mock to answer "none" for every word.
func phonNone(m *mockPhonetics) {
	m.On("Lookup", mock.Anything, mock.Anything).Return(&phonetics.Result{Source: phonetics.SourceNone}, nil)
}

// genEmpty stubs the lingen mock to answer empty data for every word.
func genEmpty(m *mockLingen) {
	m.On("Generate", mock.Anything, mock.Anything).Return(&lingen.Result{}, nil)
}
