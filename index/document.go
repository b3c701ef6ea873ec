// Package index is the entity document store: a SQLite-backed index with a
// single writer, snapshot-isolated readers and a small query tree that
// compiles to SQL.
package index

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Reserved field names understood by Term and FieldExists.
const (
	KeyField  = "_key"
	TypeField = "_type"
)

// Field is one stored (name, value) pair. Names are "property" or
// "property@locale".
type Field struct {
	Name  string
	Value string
}

// DocumentLabel is one searchable label of a document.
type DocumentLabel struct {
	Locale string
	Text   string
}

// Document is the storage projection of an entity.
type Document struct {
	// ID is the natural document order, assigned by the store. Zero until the
	// document has been read back from a Reader.
	ID     int64
	Key    string
	Types  []string
	Rank   float64
	Fields []Field
	Labels []DocumentLabel
}

// Add appends a stored field.
func (d *Document) Add(name, value string) {
	d.Fields = append(d.Fields, Field{Name: name, Value: value})
}

// AddLabel appends a searchable label. Blank labels are ignored.
func (d *Document) AddLabel(locale, text string) {
	text = NormalizeLabel(text)
	if text == "" {
		return
	}
	for _, l := range d.Labels {
		if l.Locale == locale && l.Text == text {
			return
		}
	}
	d.Labels = append(d.Labels, DocumentLabel{Locale: locale, Text: text})
}

// Values returns the stored values of name in field order.
func (d *Document) Values(name string) []string {
	var out []string
	for _, f := range d.Fields {
		if f.Name == name {
			out = append(out, f.Value)
		}
	}
	return out
}

// Boost is the static popularity multiplier applied to every score.
func (d *Document) Boost() float64 {
	return BoostForRank(d.Rank)
}

// BoostForRank maps a rank to 1 + ln(1 + rank). Negative or NaN ranks give 1.
func BoostForRank(rank float64) float64 {
	if !(rank > 0) || math.IsInf(rank, 0) {
		return 1
	}
	return 1 + math.Log1p(rank)
}

// NormalizeLabel lower-cases s and collapses runs of whitespace.
func NormalizeLabel(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// labelTerms returns the rows indexed for one normalized label: the full
// label, plus each word when the label has more than one.
func labelTerms(text string) (full string, tokens []string) {
	words := strings.Fields(text)
	if len(words) < 2 {
		return text, nil
	}
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		if w == text {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		tokens = append(tokens, w)
	}
	return text, tokens
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
