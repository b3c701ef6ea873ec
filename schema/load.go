package schema

import (
	_ "embed"
	"io"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/teranos/entigraph/errors"
	"github.com/teranos/entigraph/model"
)

// fileProperty is the TOML shape of one [[property]] table.
type fileProperty struct {
	IRI        string   `toml:"iri"`
	Kind       string   `toml:"kind"`
	Functional bool     `toml:"functional"`
	Label      bool     `toml:"label"`
	Domains    []string `toml:"domains"`
}

type file struct {
	Prefixes map[string]string `toml:"prefixes"`
	Property []fileProperty    `toml:"property"`
}

// LoadFile reads a property schema exported by the ontology tooling.
//
//	[prefixes]
//	schema = "http://schema.org/"
//
//	[[property]]
//	iri = "schema:name"
//	kind = "LOCALIZED_STRING"
//	functional = true
//	label = true
//	domains = ["schema:Thing"]
//
// Compact IRIs are expanded with the file's prefixes on top of
// model.DefaultNamespaces.
func LoadFile(path string) (*Registry, error) {
	var f file
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, errors.Wrapf(err, "failed to read schema file %s", path)
	}
	return fromFile(f)
}

// Load reads a property schema from r.
func Load(r io.Reader) (*Registry, error) {
	var f file
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(err, "failed to decode schema")
	}
	return fromFile(f)
}

func fromFile(f file) (*Registry, error) {
	ns := model.DefaultNamespaces()
	for prefix, base := range f.Prefixes {
		ns[prefix] = base
	}

	props := make([]Property, 0, len(f.Property))
	for i, fp := range f.Property {
		kind, err := model.ParseKind(fp.Kind)
		if err != nil {
			return nil, errors.Wrapf(err, "property #%d (%s)", i, fp.IRI)
		}
		domains := make([]string, 0, len(fp.Domains))
		for _, d := range fp.Domains {
			domains = append(domains, ns.Expand(d))
		}
		props = append(props, Property{
			IRI:         ns.Expand(fp.IRI),
			Kind:        kind,
			Functional:  fp.Functional,
			LabelSource: fp.Label,
			Domains:     domains,
		})
	}
	return NewRegistry(props...)
}

//go:embed default.toml
var defaultSchema string

// Default returns the built-in schema.org subset.
func Default() *Registry {
	r, err := Load(strings.NewReader(defaultSchema))
	if err != nil {
		panic(err)
	}
	return r
}
