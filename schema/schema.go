// Package schema is the read-only property metadata service. It is loaded
// once at startup and looked up by IRI by the codec, the triple source and
// the loader.
package schema

import (
	"sort"

	"github.com/teranos/entigraph/errors"
	"github.com/teranos/entigraph/model"
)

// Property describes one property of the ontology.
type Property struct {
	IRI        string
	Kind       model.Kind
	Functional bool
	Domains    []string
	// LabelSource marks properties whose localized values feed the
	// searchable label field (name and alternate names).
	LabelSource bool
}

// Schema is the lookup contract consumed by the rest of the module.
type Schema interface {
	// Property returns the metadata for iri, or false when unknown.
	Property(iri string) (Property, bool)
	// Properties lists every property sorted by IRI.
	Properties() []Property
}

// Registry is an immutable in-memory Schema.
type Registry struct {
	byIRI  map[string]Property
	sorted []Property
}

// NewRegistry validates props and indexes them by IRI.
func NewRegistry(props ...Property) (*Registry, error) {
	r := &Registry{byIRI: make(map[string]Property, len(props))}
	for _, p := range props {
		if p.IRI == "" {
			return nil, errors.New("property with empty IRI")
		}
		if p.Kind == model.KindUnknown {
			return nil, errors.Newf("property %s has no value kind", p.IRI)
		}
		if p.LabelSource && p.Kind != model.KindLocalizedString {
			return nil, errors.Newf("label property %s must be %s, got %s",
				p.IRI, model.KindLocalizedString, p.Kind)
		}
		if _, dup := r.byIRI[p.IRI]; dup {
			return nil, errors.Newf("duplicate property %s", p.IRI)
		}
		p.Domains = append([]string(nil), p.Domains...)
		r.byIRI[p.IRI] = p
		r.sorted = append(r.sorted, p)
	}
	sort.Slice(r.sorted, func(i, j int) bool { return r.sorted[i].IRI < r.sorted[j].IRI })
	return r, nil
}

// MustRegistry is NewRegistry for fixed tables; it panics on invalid input.
func MustRegistry(props ...Property) *Registry {
	r, err := NewRegistry(props...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Property(iri string) (Property, bool) {
	p, ok := r.byIRI[iri]
	return p, ok
}

func (r *Registry) Properties() []Property {
	return append([]Property(nil), r.sorted...)
}

// LabelProperties returns the label-source properties.
func (r *Registry) LabelProperties() []Property {
	var out []Property
	for _, p := range r.sorted {
		if p.LabelSource {
			out = append(out, p)
		}
	}
	return out
}

// Len returns the number of properties.
func (r *Registry) Len() int {
	return len(r.sorted)
}
