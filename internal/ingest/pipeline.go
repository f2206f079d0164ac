// Package ingest implements the vocabulary batch ingestion pipeline: source
// rows are normalized into canonical records, checked for slot conflicts,
// enriched via external services, and written to the document store with
// replace-only day-slot semantics.
package ingest

import (
	"bytes"
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Kimsuncheol/voca-ingest/internal/blobstore"
	"github.com/Kimsuncheol/voca-ingest/internal/docstore"
	"github.com/Kimsuncheol/voca-ingest/internal/model"
	"github.com/Kimsuncheol/voca-ingest/internal/normalize"
	"github.com/Kimsuncheol/voca-ingest/internal/source"
	"github.com/Kimsuncheol/voca-ingest/pkg/lingen"
	"github.com/Kimsuncheol/voca-ingest/pkg/phonetics"
)

// ConfirmFunc decides whether an existing slot may be overwritten. The
// description names which store(s) hold conflicting data. Returning false
// skips the slot without clearing or writing anything.
type ConfirmFunc func(ctx context.Context, conflict Conflict, description string) (bool, error)

// ProgressFunc observes state transitions of a slot's run.
type ProgressFunc func(state model.RunState, detail string)

// Source carries one slot's parsed rows plus the original bytes for the
// audit backup upload.
type Source struct {
	Rows []source.Row
	Blob []byte
}

// SourceFromDelimited parses delimited text into a Source, keeping the raw
// bytes for backup.
func SourceFromDelimited(data []byte) (Source, error) {
	rows, err := source.FromDelimited(bytes.NewReader(data))
	if err != nil {
		return Source{}, err
	}
	return Source{Rows: rows, Blob: data}, nil
}

// SourceFromGrid converts a 2-D value grid into a Source. blob may be nil
// when no original file exists (e.g. a remote spreadsheet range).
func SourceFromGrid(grid [][]string, blob []byte) (Source, error) {
	rows, err := source.FromGrid(grid)
	if err != nil {
		return Source{}, err
	}
	return Source{Rows: rows, Blob: blob}, nil
}

// Pipeline orchestrates ingestion for day slots of a course.
type Pipeline struct {
	docs       docstore.Store
	blobs      blobstore.Store
	phonetics  phonetics.Client
	lingen     lingen.Client
	norm       *normalize.Normalizer
	reg        *model.Registry
	limiter    *rate.Limiter
	lockDir    string
	onProgress ProgressFunc
	now        func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRateLimit paces external enrichment calls.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(p *Pipeline) {
		p.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithLockDir enables advisory per-slot file locking under dir.
func WithLockDir(dir string) Option {
	return func(p *Pipeline) {
		p.lockDir = dir
	}
}

// WithProgress installs a progress observer.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) {
		p.onProgress = fn
	}
}

// WithClock overrides the time source (for testing).
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// New creates a Pipeline with all dependencies.
func New(
	docs docstore.Store,
	blobs blobstore.Store,
	phoneticsClient phonetics.Client,
	lingenClient lingen.Client,
	norm *normalize.Normalizer,
	reg *model.Registry,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		docs:      docs,
		blobs:     blobs,
		phonetics: phoneticsClient,
		lingen:    lingenClient,
		norm:      norm,
		reg:       reg,
		limiter:   rate.NewLimiter(2, 1),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) progress(state model.RunState, detail string) {
	if p.onProgress != nil {
		p.onProgress(state, detail)
	}
}

// Ingest processes one day slot: conflict check, overwrite gate, clear,
// per-record enrichment and insert, metadata update. Per-record failures are
// absorbed into the outcome; only an empty source or a failed clear is fatal.
func (p *Pipeline) Ingest(ctx context.Context, courseID string, day int, src Source, confirm ConfirmFunc) (*model.Outcome, error) {
	course, err := p.reg.Lookup(courseID)
	if err != nil {
		return nil, err
	}

	log := zap.L().With(zap.String("course", courseID), zap.Int("day", day))

	if p.lockDir != "" {
		lock, err := acquireSlotLock(p.lockDir, course, day)
		if err != nil {
			return nil, err
		}
		defer lock.release()
	}

	run := &model.IngestRun{
		ID:        uuid.New().String(),
		CourseID:  courseID,
		Day:       day,
		State:     model.RunPending,
		StartedAt: p.now().UTC(),
	}
	p.recordRun(ctx, run)

	if len(src.Rows) == 0 {
		p.failRun(ctx, run, source.ErrEmptySource)
		return nil, eris.Wrapf(source.ErrEmptySource, "%s Day%d", courseID, day)
	}

	p.transition(ctx, run, model.RunCheckingConflicts, "")
	conflict := detectConflict(ctx, p.docs, p.blobs, course, day)

	if conflict.Any() {
		desc := conflict.Describe(course, day)
		p.transition(ctx, run, model.RunAwaitingConfirmation, desc)

		ok, confirmErr := confirm(ctx, conflict, desc)
		if confirmErr != nil {
			log.Warn("ingest: overwrite confirmation failed, skipping slot", zap.Error(confirmErr))
			ok = false
		}
		if !ok {
			p.transition(ctx, run, model.RunSkipped, "declined by user")
			log.Info("ingest: slot skipped by user")
			return &model.Outcome{}, nil
		}
	}

	p.transition(ctx, run, model.RunClearing, "")
	cleared, err := clearSlot(ctx, p.docs, course, day)
	if err != nil {
		p.failRun(ctx, run, err)
		return nil, err
	}
	log.Info("ingest: slot cleared", zap.Int("deleted", cleared))

	backupSource(ctx, p.blobs, course, day, src.Blob)

	outcome := &model.Outcome{}
	p.transition(ctx, run, model.RunWriting, "")

	for _, row := range src.Rows {
		rec, ok := p.norm.Record(row, course.Kind)
		if !ok {
			continue // header echo or blank row, not a failure
		}

		enriched, miss := p.enrich(ctx, course, rec)

		if _, err := insertRecord(ctx, p.docs, course, day, rec); err != nil {
			outcome.Failed++
			log.Warn("ingest: insert failed", zap.String("key", rec.Key()), zap.Error(err))
			continue
		}
		outcome.Success++
		if enriched {
			outcome.Enriched++
		}
		if miss {
			outcome.EnrichFailed++
		}
	}

	p.transition(ctx, run, model.RunUpdatingMetadata, "")
	if outcome.Success > 0 {
		if err := updateMetadata(ctx, p.docs, p.reg, courseID, day, p.now().UTC()); err != nil {
			log.Warn("ingest: metadata update failed", zap.Error(err))
		}
	}

	run.Outcome = outcome
	p.transition(ctx, run, model.RunDone, "")
	log.Info("ingest: slot complete",
		zap.Int("success", outcome.Success),
		zap.Int("failed", outcome.Failed),
		zap.Int("enriched", outcome.Enriched),
		zap.Int("enrich_failed", outcome.EnrichFailed),
	)
	return outcome, nil
}

// enrich runs the phonetic lookup and linguistic generation for eligible
// records, strictly sequential and paced by the shared limiter. Neither call
// ever blocks persistence; failures degrade to empty enrichment fields.
// Returns whether generation succeeded and whether any enrichment call
// failed.
func (p *Pipeline) enrich(ctx context.Context, course model.Course, rec *model.Record) (enriched, miss bool) {
	if !rec.Enrichable() {
		return false, false
	}

	log := zap.L().With(zap.String("word", rec.Headword))

	if rec.Pronunciation == "" {
		if err := p.limiter.Wait(ctx); err != nil {
			return false, true
		}
		res, err := p.phonetics.Lookup(ctx, rec.Headword)
		switch {
		case err != nil:
			miss = true
			log.Warn("ingest: phonetic lookup failed", zap.Error(err))
		case res.Source == phonetics.SourceFound:
			rec.Pronunciation = res.Combined()
		}
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return false, true
	}
	gen, err := p.lingen.Generate(ctx, lingen.Request{
		Word:        rec.Headword,
		Meaning:     rec.Meaning,
		CourseLevel: course.Level,
	})
	if err != nil {
		log.Warn("ingest: linguistic generation failed", zap.Error(err))
		return false, true
	}

	if rec.PartOfSpeech == "" {
		rec.PartOfSpeech = gen.PartOfSpeech
	}
	rec.Synonyms = gen.Synonyms
	rec.Antonyms = gen.Antonyms
	rec.RelatedWords = gen.RelatedWords
	rec.WordForms = gen.WordForms
	return true, miss
}

// Slot is one day's source in a batch.
type Slot struct {
	Day    int
	Source Source
}

// SlotResult is the per-slot outcome of a batch run.
type SlotResult struct {
	Day     int
	Outcome model.Outcome
	Err     error
}

// Batch processes multiple day slots strictly one after another. A fatal
// error in one slot is recorded and the batch continues with the next.
func (p *Pipeline) Batch(ctx context.Context, courseID string, slots []Slot, confirm ConfirmFunc) ([]SlotResult, model.Outcome) {
	results := make([]SlotResult, 0, len(slots))
	var total model.Outcome

	for _, slot := range slots {
		res := SlotResult{Day: slot.Day}
		outcome, err := p.Ingest(ctx, courseID, slot.Day, slot.Source, confirm)
		if err != nil {
			res.Err = err
			zap.L().Error("ingest: batch slot failed",
				zap.String("course", courseID),
				zap.Int("day", slot.Day),
				zap.Error(err),
			)
		} else {
			res.Outcome = *outcome
			total.Add(*outcome)
		}
		results = append(results, res)
	}

	return results, total
}

// transition advances the run's state, notifies the observer, and refreshes
// the audit document.
func (p *Pipeline) transition(ctx context.Context, run *model.IngestRun, state model.RunState, detail string) {
	run.State = state
	run.UpdatedAt = p.now().UTC()
	p.progress(state, detail)
	p.recordRun(ctx, run)
}

func (p *Pipeline) failRun(ctx context.Context, run *model.IngestRun, err error) {
	run.Error = err.Error()
	p.transition(ctx, run, model.RunFailed, err.Error())
}

// recordRun persists the audit document under ingestRuns/. Attempted,
// failure logged, never propagated.
func (p *Pipeline) recordRun(ctx context.Context, run *model.IngestRun) {
	if err := p.docs.SetDocument(ctx, "ingestRuns/"+run.ID, run, true); err != nil {
		zap.L().Warn("ingest: audit run write failed",
			zap.String("run", run.ID),
			zap.Error(err),
		)
	}
}
