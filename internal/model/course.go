package model

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// ErrNoPath indicates a course identifier with no configured document-store
// path. Callers log it and degrade to a no-op rather than failing the run.
var ErrNoPath = eris.New("model: no storage path configured for course")

// Course describes one vocabulary course and where its day slots live.
type Course struct {
	ID    string `yaml:"id" mapstructure:"id"`
	Name  string `yaml:"name" mapstructure:"name"`
	Kind  Kind   `yaml:"kind" mapstructure:"kind"`
	Level string `yaml:"level" mapstructure:"level"`
	// Path is the root collection for the course's day slots.
	Path string `yaml:"path" mapstructure:"path"`
}

// DayPath returns the document collection holding one day slot's records.
func (c Course) DayPath(day int) string {
	return fmt.Sprintf("%s/Day%d", c.Path, day)
}

// BlobKey returns the blob-store key for the slot's source backup.
func (c Course) BlobKey(day int) string {
	return fmt.Sprintf("csv/%s/Day%d.csv", c.Name, day)
}

// MetadataPath returns the document path for the course's metadata.
func (c Course) MetadataPath() string {
	return "courseMetadata/" + c.ID
}

// Registry resolves course identifiers to their storage layout.
type Registry struct {
	courses map[string]Course
}

// NewRegistry builds a registry from configured courses. Courses without an
// explicit path default to "{id}Vocabulary".
func NewRegistry(courses []Course) *Registry {
	m := make(map[string]Course, len(courses))
	for _, c := range courses {
		if c.Path == "" {
			c.Path = c.ID + "Vocabulary"
		}
		if c.Name == "" {
			c.Name = c.ID
		}
		if c.Kind == "" {
			c.Kind = KindWord
		}
		m[c.ID] = c
	}
	return &Registry{courses: m}
}

// DefaultCourses lists the built-in course layouts.
func DefaultCourses() []Course {
	return []Course{
		{ID: "TOEIC", Name: "TOEIC", Kind: KindWord, Level: "intermediate", Path: "toeicVocabulary"},
		{ID: "TOEFL", Name: "TOEFL", Kind: KindWord, Level: "advanced", Path: "toeflVocabulary"},
		{ID: "SUNEUNG", Name: "Suneung", Kind: KindWord, Level: "intermediate", Path: "suneungVocabulary"},
		{ID: "COLLOCATION", Name: "Collocation", Kind: KindPhrase, Level: "intermediate", Path: "collocations"},
	}
}

// Lookup returns the course for id, or ErrNoPath when none is configured.
func (r *Registry) Lookup(id string) (Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return Course{}, eris.Wrapf(ErrNoPath, "course %q", id)
	}
	return c, nil
}
