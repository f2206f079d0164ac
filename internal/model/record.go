// Package model defines the canonical record shapes and course registry used
// by the vocabulary ingestion pipeline.
package model

import (
	"strings"
	"time"
)

// Kind selects the canonical record variant for a course.
type Kind string

const (
	// KindWord courses hold single-headword entries eligible for enrichment.
	KindWord Kind = "word"
	// KindPhrase courses hold multi-word expressions; never enriched.
	KindPhrase Kind = "phrase"
)

// Record is the normalized shape written to the document store. Exactly one
// of Headword/Phrase is non-empty; a record with both empty is a header or
// blank row and is dropped before it reaches the writer.
type Record struct {
	Kind Kind `json:"kind"`

	// Word variant.
	Headword      string            `json:"headword,omitempty"`
	PartOfSpeech  string            `json:"partOfSpeech,omitempty"`
	Pronunciation string            `json:"pronunciation,omitempty"`
	Synonyms      []string          `json:"synonyms,omitempty"`
	Antonyms      []string          `json:"antonyms,omitempty"`
	RelatedWords  []string          `json:"relatedWords,omitempty"`
	WordForms     map[string]string `json:"wordForms,omitempty"`

	// Phrase variant.
	Phrase      string `json:"phrase,omitempty"`
	Explanation string `json:"explanation,omitempty"`

	// Shared.
	Meaning     string    `json:"meaning"`
	Translation string    `json:"translation,omitempty"`
	Example     string    `json:"example,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Key returns the headword or phrase, whichever the variant carries.
func (r *Record) Key() string {
	if r.Kind == KindPhrase {
		return r.Phrase
	}
	return r.Headword
}

// IsEmpty reports whether the record has neither a headword nor a phrase.
func (r *Record) IsEmpty() bool {
	return r.Headword == "" && r.Phrase == ""
}

// Enrichable reports whether the record should be sent to the external
// lookup and generation services: word-variant records whose headword is a
// single token. Multi-word headwords and phrase records are never looked up.
func (r *Record) Enrichable() bool {
	if r.Kind != KindWord || r.Headword == "" {
		return false
	}
	return !strings.ContainsAny(r.Headword, " \t")
}

// Outcome aggregates the result of one day-slot's ingestion run. Enrichment
// misses are tracked separately from hard persistence failures: a record
// missing AI enrichment is still successfully stored.
type Outcome struct {
	Success      int `json:"success"`
	Failed       int `json:"failed"`
	Enriched     int `json:"enriched"`
	EnrichFailed int `json:"enrichFailed"`
}

// Add folds another outcome into this one.
func (o *Outcome) Add(other Outcome) {
	o.Success += other.Success
	o.Failed += other.Failed
	o.Enriched += other.Enriched
	o.EnrichFailed += other.EnrichFailed
}

// Metadata is the per-course document tracking the highest day with data.
// TotalDays is monotonically non-decreasing: it equals the maximum day number
// ever successfully ingested for the course.
type Metadata struct {
	CourseID    string    `json:"courseId"`
	TotalDays   int       `json:"totalDays"`
	LastUpdated time.Time `json:"lastUpdated"`
}
