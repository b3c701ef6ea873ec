package model

import (
	"math/big"
	"strings"

	"github.com/teranos/entigraph/errors"
)

// Kind discriminates the Value tagged union. It doubles as the property
// value-kind declared by the schema.
type Kind int

const (
	KindUnknown Kind = iota
	KindString
	KindLocalizedString
	KindInteger
	KindCalendar
	KindGeo
	KindResource
	KindConstant
)

var kindNames = map[Kind]string{
	KindString:          "STRING",
	KindLocalizedString: "LOCALIZED_STRING",
	KindInteger:         "INTEGER",
	KindCalendar:        "CALENDAR",
	KindGeo:             "GEO",
	KindResource:        "RESOURCE",
	KindConstant:        "CONSTANT",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseKind parses the upper- or lower-case kind name used in schema files.
func ParseKind(s string) (Kind, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == upper {
			return k, nil
		}
	}
	return KindUnknown, errors.Newf("unknown value kind %q", s)
}

// Value is one typed claim value.
type Value interface {
	Kind() Kind
	// Lexical returns the canonical string form stored in the index.
	Lexical() string
	Equal(other Value) bool
}

// StringValue is a plain string or IRI-like literal.
type StringValue struct {
	Text string
}

func (v StringValue) Kind() Kind      { return KindString }
func (v StringValue) Lexical() string { return v.Text }
func (v StringValue) String() string  { return v.Text }

func (v StringValue) Equal(other Value) bool {
	o, ok := other.(StringValue)
	return ok && o.Text == v.Text
}

// LocaleStringValue is a language-tagged string. The locale takes part in
// equality, compared case-insensitively.
type LocaleStringValue struct {
	Text   string
	Locale string
}

func (v LocaleStringValue) Kind() Kind      { return KindLocalizedString }
func (v LocaleStringValue) Lexical() string { return v.Text }
func (v LocaleStringValue) String() string  { return v.Text + "@" + v.Locale }

func (v LocaleStringValue) Equal(other Value) bool {
	o, ok := other.(LocaleStringValue)
	return ok && o.Text == v.Text && NormalizeLocale(o.Locale) == NormalizeLocale(v.Locale)
}

// IntegerValue is an arbitrary-precision integer.
type IntegerValue struct {
	Int *big.Int
}

// NewInteger returns an IntegerValue holding i.
func NewInteger(i int64) IntegerValue {
	return IntegerValue{Int: big.NewInt(i)}
}

// ParseInteger parses a base-10 integer of any size.
func ParseInteger(s string) (IntegerValue, error) {
	i, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return IntegerValue{}, errors.Newf("invalid integer %q", s)
	}
	return IntegerValue{Int: i}, nil
}

func (v IntegerValue) Kind() Kind { return KindInteger }

func (v IntegerValue) Lexical() string {
	if v.Int == nil {
		return "0"
	}
	return v.Int.String()
}

func (v IntegerValue) String() string { return v.Lexical() }

func (v IntegerValue) Equal(other Value) bool {
	o, ok := other.(IntegerValue)
	if !ok {
		return false
	}
	a, b := v.Int, o.Int
	if a == nil {
		a = new(big.Int)
	}
	if b == nil {
		b = new(big.Int)
	}
	return a.Cmp(b) == 0
}

// ResourceValue references another entity by IRI.
type ResourceValue struct {
	IRI string
}

func (v ResourceValue) Kind() Kind      { return KindResource }
func (v ResourceValue) Lexical() string { return v.IRI }
func (v ResourceValue) String() string  { return "<" + v.IRI + ">" }

func (v ResourceValue) Equal(other Value) bool {
	o, ok := other.(ResourceValue)
	return ok && o.IRI == v.IRI
}

// ConstantValue is an opaque label from a fixed enumeration.
type ConstantValue struct {
	Label string
}

func (v ConstantValue) Kind() Kind      { return KindConstant }
func (v ConstantValue) Lexical() string { return v.Label }
func (v ConstantValue) String() string  { return v.Label }

func (v ConstantValue) Equal(other Value) bool {
	o, ok := other.(ConstantValue)
	return ok && o.Label == v.Label
}

// ValueKey returns a string that identifies v for hashing and set membership.
// Two values with equal keys are Equal.
func ValueKey(v Value) string {
	if v == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(v.Kind().String())
	b.WriteByte(0x1f)
	if ls, ok := v.(LocaleStringValue); ok {
		b.WriteString(NormalizeLocale(ls.Locale))
	}
	b.WriteByte(0x1f)
	b.WriteString(v.Lexical())
	return b.String()
}
