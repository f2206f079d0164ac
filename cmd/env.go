package main

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/Kimsuncheol/voca-ingest/internal/blobstore"
	"github.com/Kimsuncheol/voca-ingest/internal/docstore"
	"github.com/Kimsuncheol/voca-ingest/internal/ingest"
	"github.com/Kimsuncheol/voca-ingest/internal/model"
	"github.com/Kimsuncheol/voca-ingest/internal/normalize"
	"github.com/Kimsuncheol/voca-ingest/pkg/lingen"
	"github.com/Kimsuncheol/voca-ingest/pkg/phonetics"
)

// env bundles the wired pipeline and its stores for command handlers.
type env struct {
	Docs     docstore.Store
	Blobs    blobstore.Store
	Registry *model.Registry
	Pipeline *ingest.Pipeline
}

func (e *env) Close() {
	_ = e.Docs.Close()
}

// initEnv builds the document store, blob store, enrichment clients, and
// pipeline from config. Extra options (e.g. a progress observer) are
// appended to the configured ones.
func initEnv(ctx context.Context, extra ...ingest.Option) (*env, error) {
	var docs docstore.Store
	var err error
	switch cfg.Store.Driver {
	case "postgres":
		docs, err = docstore.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		docs, err = docstore.NewSQLite(cfg.Store.SQLitePath)
	}
	if err != nil {
		return nil, err
	}
	if err := docs.Migrate(ctx); err != nil {
		_ = docs.Close()
		return nil, err
	}

	blobs, err := blobstore.NewFS(cfg.Blob.Dir)
	if err != nil {
		_ = docs.Close()
		return nil, err
	}

	norm, err := normalize.New()
	if err != nil {
		_ = docs.Close()
		return nil, err
	}

	if cfg.Anthropic.Key == "" {
		_ = docs.Close()
		return nil, eris.New("anthropic key is required (VOCA_ANTHROPIC_KEY)")
	}

	reg := model.NewRegistry(cfg.Courses)

	opts := []ingest.Option{
		ingest.WithRateLimit(rate.Limit(cfg.Ingest.EnrichRatePerSec), 1),
	}
	if cfg.Ingest.LockDir != "" {
		opts = append(opts, ingest.WithLockDir(cfg.Ingest.LockDir))
	}
	opts = append(opts, extra...)

	p := ingest.New(
		docs,
		blobs,
		phonetics.NewClient(phonetics.WithBaseURL(cfg.Phonetics.BaseURL)),
		lingen.NewClient(cfg.Anthropic.Key, lingen.WithModel(cfg.Anthropic.Model)),
		norm,
		reg,
		opts...,
	)

	return &env{Docs: docs, Blobs: blobs, Registry: reg, Pipeline: p}, nil
}
