package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/Kimsuncheol/voca-ingest/internal/blobstore"
	"github.com/Kimsuncheol/voca-ingest/internal/docstore"
	"github.com/Kimsuncheol/voca-ingest/internal/ingest"
	"github.com/Kimsuncheol/voca-ingest/internal/model"
	"github.com/Kimsuncheol/voca-ingest/internal/normalize"
	"github.com/Kimsuncheol/voca-ingest/pkg/lingen"
	"github.com/Kimsuncheol/voca-ingest/pkg/phonetics"
)

// stubPhonetics answers "none" for every word so handler tests stay offline.
type stubPhonetics struct{}

func (stubPhonetics) Lookup(context.Context, string) (*phonetics.Result, error) {
	return &phonetics.Result{Source: phonetics.SourceNone}, nil
}

type stubLingen struct{}

func (stubLingen) Generate(context.Context, lingen.Request) (*lingen.Result, error) {
	return &lingen.Result{}, nil
}

func newTestEnv(t *testing.T) *env {
	t.Helper()

	docs, err := docstore.NewSQLite(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = docs.Close() })
	require.NoError(t, docs.Migrate(context.Background()))

	blobs, err := blobstore.NewFS(t.TempDir())
	require.NoError(t, err)

	norm, err := normalize.New()
	require.NoError(t, err)

	reg := model.NewRegistry(model.DefaultCourses())
	p := ingest.New(docs, blobs, stubPhonetics{}, stubLingen{}, norm, reg,
		ingest.WithRateLimit(rate.Inf, 1))

	return &env{Docs: docs, Blobs: blobs, Registry: reg, Pipeline: p}
}

func doRequest(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestServeMuxHealth(t *testing.T) {
	mux := newServeMux(newTestEnv(t))

	rec := doRequest(t, mux, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServeMuxWebhookIngest(t *testing.T) {
	env := newTestEnv(t)
	mux := newServeMux(env)

	body := `{"course":"TOEIC","day":1,"grid":[["Word","Meaning"],["apple","a fruit"]]}`
	rec := doRequest(t, mux, http.MethodPost, "/webhook/ingest", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var outcome model.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	assert.Equal(t, 1, outcome.Success)
	assert.Equal(t, 0, outcome.Failed)

	stored, err := env.Docs.ListDocuments(context.Background(), "toeicVocabulary/Day1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestServeMuxWebhookCSVBody(t *testing.T) {
	env := newTestEnv(t)
	mux := newServeMux(env)

	body := `{"course":"TOEFL","day":2,"csv":"Word,Meaning\nbrief,short\n"}`
	rec := doRequest(t, mux, http.MethodPost, "/webhook/ingest", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err := env.Docs.ListDocuments(context.Background(), "toeflVocabulary/Day2")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestServeMuxWebhookValidation(t *testing.T) {
	mux := newServeMux(newTestEnv(t))

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"course":`},
		{"missing course", `{"day":1,"grid":[["Word"],["a"]]}`},
		{"day zero", `{"course":"TOEIC","grid":[["Word"],["a"]]}`},
		{"neither grid nor csv", `{"course":"TOEIC","day":1}`},
		{"header-only grid", `{"course":"TOEIC","day":1,"grid":[["Word","Meaning"]]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, mux, http.MethodPost, "/webhook/ingest", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestServeMuxWebhookOverwritePolicy(t *testing.T) {
	env := newTestEnv(t)
	mux := newServeMux(env)

	for i := 0; i < 5; i++ {
		_, err := env.Docs.AddDocument(context.Background(), "toeicVocabulary/Day3",
			&model.Record{Headword: fmt.Sprintf("old%d", i), Meaning: "stale"})
		require.NoError(t, err)
	}

	body := `{"course":"TOEIC","day":3,"grid":[["Word","Meaning"],["alpha","first"]]}`
	rec := doRequest(t, mux, http.MethodPost, "/webhook/ingest", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var outcome model.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	assert.Equal(t, model.Outcome{}, outcome, "without overwrite the slot is skipped")

	stored, err := env.Docs.ListDocuments(context.Background(), "toeicVocabulary/Day3")
	require.NoError(t, err)
	assert.Len(t, stored, 5)

	body = `{"course":"TOEIC","day":3,"overwrite":true,"grid":[["Word","Meaning"],["alpha","first"]]}`
	rec = doRequest(t, mux, http.MethodPost, "/webhook/ingest", body)
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err = env.Docs.ListDocuments(context.Background(), "toeicVocabulary/Day3")
	require.NoError(t, err)
	assert.Len(t, stored, 1, "with overwrite the old records are replaced")
}

func TestServeMuxWebhookUnknownCourse(t *testing.T) {
	mux := newServeMux(newTestEnv(t))

	body := `{"course":"GRE","day":1,"grid":[["Word","Meaning"],["a","b"]]}`
	rec := doRequest(t, mux, http.MethodPost, "/webhook/ingest", body)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "no storage path configured")
}

func TestServeMuxMethodRouting(t *testing.T) {
	mux := newServeMux(newTestEnv(t))

	rec := doRequest(t, mux, http.MethodGet, "/webhook/ingest", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
