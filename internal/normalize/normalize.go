// Package normalize maps arbitrary source column layouts onto the canonical
// record shape. Column aliases are data-driven: each logical field carries an
// ordered list of header names tried in turn, so a new layout is a config
// change rather than a code change.
package normalize

import (
	_ "embed"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/Kimsuncheol/voca-ingest/internal/model"
	"github.com/Kimsuncheol/voca-ingest/internal/source"
)

//go:embed aliases.yaml
var defaultAliases []byte

// AliasTable holds per-field ordered alias lists for one course kind.
type AliasTable map[string][]string

// Normalizer extracts canonical fields from raw rows.
type Normalizer struct {
	tables map[model.Kind]AliasTable
	now    func() time.Time
	err    error
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithClock overrides the CreatedAt timestamp source (for testing).
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		n.now = now
	}
}

// WithAliases replaces the embedded alias tables with caller-supplied YAML.
// A malformed table fails New rather than silently keeping the defaults.
func WithAliases(data []byte) Option {
	return func(n *Normalizer) {
		tables, err := parseAliases(data)
		if err != nil {
			n.err = err
			return
		}
		n.tables = tables
	}
}

// New creates a Normalizer with the embedded default alias tables.
func New(opts ...Option) (*Normalizer, error) {
	tables, err := parseAliases(defaultAliases)
	if err != nil {
		return nil, err
	}
	n := &Normalizer{tables: tables, now: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	if n.err != nil {
		return nil, n.err
	}
	return n, nil
}

func parseAliases(data []byte) (map[model.Kind]AliasTable, error) {
	var raw map[string]AliasTable
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "normalize: parse alias tables")
	}
	tables := make(map[model.Kind]AliasTable, len(raw))
	for kind, table := range raw {
		tables[model.Kind(kind)] = table
	}
	return tables, nil
}

// Record normalizes one raw row for the given course kind. The second return
// is false when the row should be skipped: an empty key, or a key equal to
// one of its own header labels (a mis-parsed header row travelling as data).
// Skipped rows are not failures.
func (n *Normalizer) Record(row source.Row, kind model.Kind) (*model.Record, bool) {
	table := n.tables[kind]

	rec := &model.Record{Kind: kind, CreatedAt: n.now().UTC()}
	if kind == model.KindPhrase {
		rec.Phrase = n.resolve(row, table, "phrase")
		rec.Explanation = n.resolve(row, table, "explanation")
	} else {
		rec.Headword = n.resolve(row, table, "headword")
		rec.Pronunciation = n.resolve(row, table, "pronunciation")
		rec.PartOfSpeech = n.resolve(row, table, "partOfSpeech")
	}
	rec.Meaning = n.resolve(row, table, "meaning")
	rec.Translation = n.resolve(row, table, "translation")
	rec.Example = n.resolve(row, table, "example")

	if rec.IsEmpty() {
		return nil, false
	}
	if n.isHeaderEcho(rec.Key(), kind) {
		return nil, false
	}
	return rec, true
}

// resolve returns the first non-empty value among the field's aliases.
func (n *Normalizer) resolve(row source.Row, table AliasTable, field string) string {
	for _, alias := range table[field] {
		if v := strings.TrimSpace(row[alias]); v != "" {
			return v
		}
	}
	return ""
}

// isHeaderEcho reports whether the resolved key is itself a header label for
// the key field, e.g. a row carrying the literal value "Word" or
// "Collocation".
func (n *Normalizer) isHeaderEcho(key string, kind model.Kind) bool {
	field := "headword"
	if kind == model.KindPhrase {
		field = "phrase"
	}
	for _, alias := range n.tables[kind][field] {
		if strings.HasPrefix(alias, "_") {
			continue // positional keys are not header labels
		}
		if key == alias {
			return true
		}
	}
	return false
}
