package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityClaimsAreASet(t *testing.T) {
	e := NewEntity("http://www.wikidata.org/entity/Q90")

	assert.True(t, e.AddClaim("http://schema.org/name", LocaleStringValue{"Paris", "fr"}))
	assert.False(t, e.AddClaim("http://schema.org/name", LocaleStringValue{"Paris", "fr"}))
	assert.True(t, e.AddClaim("http://schema.org/name", LocaleStringValue{"Paris", "en"}))
	assert.False(t, e.AddClaim("http://schema.org/name", nil))

	assert.Len(t, e.Claims, 2)
	assert.Len(t, e.ClaimsFor("http://schema.org/name"), 2)
	assert.True(t, e.HasClaim(Claim{"http://schema.org/name", LocaleStringValue{"Paris", "en"}}))
}

func TestEntityLiteralClaimsAreIndexed(t *testing.T) {
	e := &Entity{
		IRI:    "x",
		Claims: []Claim{{Property: "p", Value: StringValue{"v"}}},
	}
	assert.False(t, e.AddClaim("p", StringValue{"v"}))
	assert.True(t, e.AddClaim("p", StringValue{"w"}))
}

func TestEntityTypes(t *testing.T) {
	e := NewEntity("x")
	assert.True(t, e.AddType("http://schema.org/Place"))
	assert.False(t, e.AddType("http://schema.org/Place"))
	assert.False(t, e.AddType(""))
	assert.True(t, e.AddType("http://schema.org/City"))

	assert.True(t, e.HasType("http://schema.org/City"))
	assert.Equal(t, []string{"http://schema.org/City", "http://schema.org/Place"}, e.SortedTypes())
}

func TestLocales(t *testing.T) {
	l := NewLocales("EN", " fr", "", "en", "de")
	assert.Equal(t, []string{"en", "fr", "de"}, l.List())
	assert.True(t, l.Contains("FR"))
	assert.False(t, l.Contains("ja"))
	assert.Equal(t, 3, l.Len())
}

func TestNamespaces(t *testing.T) {
	ns := DefaultNamespaces()
	assert.Equal(t, "http://www.wikidata.org/entity/Q42", ns.Expand("wd:Q42"))
	assert.Equal(t, "http://www.wikidata.org/entity/Q42", ns.Expand(" <http://www.wikidata.org/entity/Q42> "))
	assert.Equal(t, "urn:isbn:123", ns.Expand("urn:isbn:123"))
	assert.Equal(t, "wd:Q42", ns.Compact("http://www.wikidata.org/entity/Q42"))
	assert.Equal(t, "http://example.org/x", ns.Compact("http://example.org/x"))
}
