// Package codec maps entities to index documents and back, driven by the
// property schema.
//
// A claim is stored as one field named after its property, suffixed with
// "@locale" for localized strings, holding the value's canonical lexical
// form. Claims of label properties also feed the searchable per-locale
// label of the document.
package codec

import (
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/entigraph/errors"
	"github.com/teranos/entigraph/index"
	"github.com/teranos/entigraph/logger"
	"github.com/teranos/entigraph/metrics"
	"github.com/teranos/entigraph/model"
	"github.com/teranos/entigraph/schema"
)

// Reasons a claim or field is dropped, used as the metrics label.
const (
	ReasonUnknownProperty   = "unknown_property"
	ReasonKindMismatch      = "kind_mismatch"
	ReasonUnsupportedLocale = "unsupported_locale"
	ReasonUnparseable       = "unparseable"
)

// Codec encodes and decodes documents. It is immutable and safe for
// concurrent use.
type Codec struct {
	schema  schema.Schema
	locales model.Locales
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
}

// New creates a codec for the given schema and supported locales.
func New(s schema.Schema, locales model.Locales, log *zap.SugaredLogger) *Codec {
	return &Codec{
		schema:  s,
		locales: locales,
		logger:  logger.OrNop(log),
	}
}

// WithMetrics attaches Prometheus collectors.
func (c *Codec) WithMetrics(m *metrics.Metrics) *Codec {
	c.metrics = m
	return c
}

// Schema returns the property schema the codec was built with.
func (c *Codec) Schema() schema.Schema {
	return c.schema
}

// Locales returns the supported locales.
func (c *Codec) Locales() model.Locales {
	return c.locales
}

// FieldName builds the stored field name of a property.
func FieldName(property, locale string) string {
	if locale == "" {
		return property
	}
	return property + "@" + locale
}

// ParseFieldName splits a stored field name into property and locale. The
// locale is empty for non-localized fields.
func ParseFieldName(name string) (property, locale string) {
	i := strings.LastIndexByte(name, '@')
	if i <= 0 || i == len(name)-1 {
		return name, ""
	}
	suffix := name[i+1:]
	if strings.ContainsAny(suffix, "/:#") {
		return name, ""
	}
	return name[:i], suffix
}

// FieldNames returns every field name a property may be stored under: one
// per supported locale for localized properties, otherwise the property
// itself. Unknown properties have none.
func (c *Codec) FieldNames(property string) []string {
	p, ok := c.schema.Property(property)
	if !ok {
		return nil
	}
	if p.Kind != model.KindLocalizedString {
		return []string{p.IRI}
	}
	locales := c.locales.List()
	names := make([]string, len(locales))
	for i, l := range locales {
		names[i] = FieldName(p.IRI, l)
	}
	return names
}

// EncodeClaim returns the stored field for one claim, or a schema
// violation when the claim cannot be stored.
func (c *Codec) EncodeClaim(claim model.Claim) (index.Field, error) {
	p, ok := c.schema.Property(claim.Property)
	if !ok {
		return index.Field{}, errors.Mark(
			errors.NewSchemaViolation("unknown property %s", claim.Property), errUnknownProperty)
	}
	if claim.Value == nil || claim.Value.Kind() != p.Kind {
		got := model.KindUnknown
		if claim.Value != nil {
			got = claim.Value.Kind()
		}
		return index.Field{}, errors.Mark(
			errors.NewSchemaViolation("property %s expects %s, got %s", p.IRI, p.Kind, got), errKindMismatch)
	}

	locale := ""
	if ls, ok := NormalizeValue(claim.Value).(model.LocaleStringValue); ok {
		locale = ls.Locale
		if !c.locales.Contains(locale) {
			return index.Field{}, errors.Mark(
				errors.NewSchemaViolation("unsupported locale %q for %s", ls.Locale, p.IRI), errUnsupportedLocale)
		}
	}
	return index.Field{Name: FieldName(p.IRI, locale), Value: claim.Value.Lexical()}, nil
}

// NormalizeValue returns v in the form the index stores it: locale tags
// are lowercased. Other values are returned unchanged.
func NormalizeValue(v model.Value) model.Value {
	if ls, ok := v.(model.LocaleStringValue); ok {
		return model.LocaleStringValue{Text: ls.Text, Locale: model.NormalizeLocale(ls.Locale)}
	}
	return v
}

// Encode builds the document for e. Claims that violate the schema are
// dropped with a diagnostic; the rest of the entity is still encoded.
func (c *Codec) Encode(e *model.Entity) *index.Document {
	doc := &index.Document{
		Key:   e.IRI,
		Types: append([]string(nil), e.Types...),
		Rank:  e.Rank,
	}
	for _, claim := range e.Claims {
		f, err := c.EncodeClaim(claim)
		if err != nil {
			c.dropped(err)
			c.logger.Warnw("Dropped claim",
				logger.FieldIRI, e.IRI,
				logger.FieldProperty, claim.Property,
				logger.FieldError, err,
			)
			continue
		}
		doc.Add(f.Name, f.Value)

		p, _ := c.schema.Property(claim.Property)
		if p.LabelSource {
			ls := NormalizeValue(claim.Value).(model.LocaleStringValue)
			doc.AddLabel(ls.Locale, ls.Text)
		}
	}
	return doc
}

// DecodeField parses one stored field back into a claim.
func (c *Codec) DecodeField(f index.Field) (model.Claim, error) {
	property, locale := ParseFieldName(f.Name)
	p, ok := c.schema.Property(property)
	if !ok {
		// the whole name may be a property IRI containing '@'
		if p, ok = c.schema.Property(f.Name); !ok {
			return model.Claim{}, errors.Mark(
				errors.NewSchemaViolation("unknown field %s", f.Name), errUnknownProperty)
		}
		locale = ""
	}

	if (p.Kind == model.KindLocalizedString) != (locale != "") {
		return model.Claim{}, errors.Mark(
			errors.NewSchemaViolation("field %s does not match kind %s", f.Name, p.Kind), errKindMismatch)
	}
	if locale != "" && !c.locales.Contains(locale) {
		return model.Claim{}, errors.Mark(
			errors.NewSchemaViolation("unsupported locale in field %s", f.Name), errUnsupportedLocale)
	}

	v, err := ParseValue(p.Kind, f.Value, locale)
	if err != nil {
		return model.Claim{}, errors.Mark(
			errors.Mark(errors.Wrapf(err, "field %s", f.Name), errors.ErrSchemaViolation), errUnparseable)
	}
	return model.Claim{Property: p.IRI, Value: v}, nil
}

// DecodeFields decodes stored fields in order. Undecodable fields are
// skipped. For functional properties the first stored value of each field
// wins.
func (c *Codec) DecodeFields(iri string, fields []index.Field) []model.Claim {
	var claims []model.Claim
	seenFunctional := make(map[string]struct{})
	for _, f := range fields {
		if f.Name == index.KeyField || f.Name == index.TypeField {
			continue
		}
		claim, err := c.DecodeField(f)
		if err != nil {
			c.dropped(err)
			if errors.Is(err, errUnknownProperty) {
				c.logger.Debugw("Ignored unknown field", logger.FieldIRI, iri, logger.FieldField, f.Name)
			} else {
				c.logger.Warnw("Skipped undecodable field",
					logger.FieldIRI, iri,
					logger.FieldField, f.Name,
					logger.FieldError, err,
				)
			}
			continue
		}
		if p, _ := c.schema.Property(claim.Property); p.Functional {
			if _, seen := seenFunctional[f.Name]; seen {
				continue
			}
			seenFunctional[f.Name] = struct{}{}
		}
		claims = append(claims, claim)
	}
	return claims
}

// Decode rebuilds the entity stored in doc.
func (c *Codec) Decode(doc *index.Document) *model.Entity {
	e := model.NewEntity(doc.Key)
	e.Rank = doc.Rank
	for _, t := range doc.Types {
		e.AddType(t)
	}
	for _, claim := range c.DecodeFields(doc.Key, doc.Fields) {
		e.AddClaim(claim.Property, claim.Value)
	}
	return e
}

// ParseValue parses the lexical form of a value of the given kind. locale
// is only used for localized strings.
func ParseValue(kind model.Kind, lexical, locale string) (model.Value, error) {
	switch kind {
	case model.KindString:
		return model.StringValue{Text: lexical}, nil
	case model.KindLocalizedString:
		if locale == "" {
			return nil, errors.New("localized string without locale")
		}
		return model.LocaleStringValue{Text: lexical, Locale: locale}, nil
	case model.KindInteger:
		return model.ParseInteger(lexical)
	case model.KindCalendar:
		return model.ParseCalendar(lexical)
	case model.KindGeo:
		return model.ParseGeo(lexical)
	case model.KindResource:
		if strings.TrimSpace(lexical) == "" {
			return nil, errors.New("empty resource IRI")
		}
		return model.ResourceValue{IRI: lexical}, nil
	case model.KindConstant:
		return model.ConstantValue{Label: lexical}, nil
	default:
		return nil, errors.Newf("unsupported value kind %s", kind)
	}
}

var (
	errUnknownProperty   = errors.New(ReasonUnknownProperty)
	errKindMismatch      = errors.New(ReasonKindMismatch)
	errUnsupportedLocale = errors.New(ReasonUnsupportedLocale)
	errUnparseable       = errors.New(ReasonUnparseable)
)

// dropped counts a schema violation by reason.
func (c *Codec) dropped(err error) {
	switch {
	case errors.Is(err, errUnknownProperty):
		c.metrics.ClaimDropped(ReasonUnknownProperty)
	case errors.Is(err, errKindMismatch):
		c.metrics.ClaimDropped(ReasonKindMismatch)
	case errors.Is(err, errUnsupportedLocale):
		c.metrics.ClaimDropped(ReasonUnsupportedLocale)
	default:
		c.metrics.ClaimDropped(ReasonUnparseable)
	}
}
