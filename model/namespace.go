package model

import "strings"

// Well-known IRIs.
const (
	RDFType     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	SchemaThing = "http://schema.org/Thing"
)

// Namespaces maps compact prefixes to base IRIs.
type Namespaces map[string]string

// DefaultNamespaces returns the prefixes used by the upstream dumps.
func DefaultNamespaces() Namespaces {
	return Namespaces{
		"rdf":    "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
		"rdfs":   "http://www.w3.org/2000/01/rdf-schema#",
		"xsd":    "http://www.w3.org/2001/XMLSchema#",
		"schema": "http://schema.org/",
		"wd":     "http://www.wikidata.org/entity/",
		"wdt":    "http://www.wikidata.org/prop/direct/",
	}
}

// Expand turns "prefix:local" into a full IRI when the prefix is known.
// Full IRIs and unknown prefixes are returned trimmed but otherwise unchanged.
func (ns Namespaces) Expand(iri string) string {
	iri = strings.TrimSpace(iri)
	iri = strings.TrimPrefix(iri, "<")
	iri = strings.TrimSuffix(iri, ">")

	i := strings.IndexByte(iri, ':')
	if i <= 0 || strings.HasPrefix(iri[i:], "://") {
		return iri
	}
	if base, ok := ns[iri[:i]]; ok {
		return base + iri[i+1:]
	}
	return iri
}

// Compact is the inverse of Expand, using the longest matching base.
func (ns Namespaces) Compact(iri string) string {
	best, bestBase := "", ""
	for prefix, base := range ns {
		if strings.HasPrefix(iri, base) && len(base) > len(bestBase) {
			best, bestBase = prefix, base
		}
	}
	if bestBase == "" {
		return iri
	}
	return best + ":" + iri[len(bestBase):]
}
