package model

import "sort"

// Claim is one (property, value) fact. Claims are equal when property and
// value are equal.
type Claim struct {
	Property string
	Value    Value
}

// Key identifies the claim for hashing.
func (c Claim) Key() string {
	return c.Property + "\x1e" + ValueKey(c.Value)
}

// Equal reports whether c and other state the same fact.
func (c Claim) Equal(other Claim) bool {
	if c.Property != other.Property {
		return false
	}
	if c.Value == nil || other.Value == nil {
		return c.Value == nil && other.Value == nil
	}
	return c.Value.Equal(other.Value)
}

// Entity is one knowledge-base subject. Types and claims behave as sets;
// use AddType and AddClaim to keep them unique.
type Entity struct {
	IRI    string
	Types  []string
	Claims []Claim
	// Rank is the static popularity used to boost search results.
	Rank float64

	claimKeys map[string]struct{}
}

// NewEntity returns an empty entity for iri.
func NewEntity(iri string) *Entity {
	return &Entity{IRI: iri}
}

// AddType adds t to the type set. Returns false if it was already present.
func (e *Entity) AddType(t string) bool {
	if t == "" {
		return false
	}
	for _, existing := range e.Types {
		if existing == t {
			return false
		}
	}
	e.Types = append(e.Types, t)
	return true
}

// HasType reports whether t is one of the entity's types.
func (e *Entity) HasType(t string) bool {
	for _, existing := range e.Types {
		if existing == t {
			return true
		}
	}
	return false
}

// AddClaim adds (property, v) unless an equal claim exists.
func (e *Entity) AddClaim(property string, v Value) bool {
	if v == nil {
		return false
	}
	e.indexClaims()
	c := Claim{Property: property, Value: v}
	key := c.Key()
	if _, ok := e.claimKeys[key]; ok {
		return false
	}
	e.claimKeys[key] = struct{}{}
	e.Claims = append(e.Claims, c)
	return true
}

// HasClaim reports whether an equal claim is present.
func (e *Entity) HasClaim(c Claim) bool {
	for _, existing := range e.Claims {
		if existing.Equal(c) {
			return true
		}
	}
	return false
}

// ClaimsFor returns the claims of one property in insertion order.
func (e *Entity) ClaimsFor(property string) []Claim {
	var out []Claim
	for _, c := range e.Claims {
		if c.Property == property {
			out = append(out, c)
		}
	}
	return out
}

// SortedTypes returns a sorted copy of the type set.
func (e *Entity) SortedTypes() []string {
	out := append([]string(nil), e.Types...)
	sort.Strings(out)
	return out
}

// indexClaims rebuilds the key set when the entity was built as a literal.
func (e *Entity) indexClaims() {
	if e.claimKeys != nil && len(e.claimKeys) == len(e.Claims) {
		return
	}
	e.claimKeys = make(map[string]struct{}, len(e.Claims))
	for _, c := range e.Claims {
		e.claimKeys[c.Key()] = struct{}{}
	}
}
