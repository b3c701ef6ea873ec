package schema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/entigraph/model"
)

const testSchema = `
[prefixes]
ex = "http://example.org/prop/"

[[property]]
iri = "schema:name"
kind = "LOCALIZED_STRING"
functional = true
label = true
domains = ["schema:Thing"]

[[property]]
iri = "schema:alternateName"
kind = "localized_string"
label = true

[[property]]
iri = "ex:population"
kind = "INTEGER"
functional = true
domains = ["schema:Place"]
`

func TestLoad(t *testing.T) {
	r, err := Load(strings.NewReader(testSchema))
	require.NoError(t, err)
	require.Equal(t, 3, r.Len())

	name, ok := r.Property("http://schema.org/name")
	require.True(t, ok)
	assert.Equal(t, model.KindLocalizedString, name.Kind)
	assert.True(t, name.Functional)
	assert.True(t, name.LabelSource)
	assert.Equal(t, []string{"http://schema.org/Thing"}, name.Domains)

	pop, ok := r.Property("http://example.org/prop/population")
	require.True(t, ok)
	assert.Equal(t, model.KindInteger, pop.Kind)
	assert.Equal(t, []string{"http://schema.org/Place"}, pop.Domains)

	_, ok = r.Property("http://schema.org/unknown")
	assert.False(t, ok)

	assert.Len(t, r.LabelProperties(), 2)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.toml")
	require.NoError(t, os.WriteFile(path, []byte(testSchema), 0644))

	r, err := LoadFile(path)
	require.NoError(t, err)

	props := r.Properties()
	require.Len(t, props, 3)
	assert.Equal(t, "http://example.org/prop/population", props[0].IRI, "properties are sorted by IRI")
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestNewRegistryRejects(t *testing.T) {
	tests := []struct {
		name  string
		props []Property
	}{
		{"empty IRI", []Property{{Kind: model.KindString}}},
		{"no kind", []Property{{IRI: "p"}}},
		{"label not localized", []Property{{IRI: "p", Kind: model.KindString, LabelSource: true}}},
		{"duplicate", []Property{{IRI: "p", Kind: model.KindString}, {IRI: "p", Kind: model.KindInteger}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.props...)
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsUnknownKind(t *testing.T) {
	_, err := Load(strings.NewReader(`
[[property]]
iri = "p"
kind = "BLOB"
`))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	r := Default()

	name, ok := r.Property("http://schema.org/name")
	require.True(t, ok)
	assert.Equal(t, model.KindLocalizedString, name.Kind)
	assert.True(t, name.LabelSource)

	geo, ok := r.Property("http://schema.org/geo")
	require.True(t, ok)
	assert.Equal(t, model.KindGeo, geo.Kind)
	assert.Equal(t, []string{"http://schema.org/Place"}, geo.Domains)

	assert.Len(t, r.LabelProperties(), 2)
}
