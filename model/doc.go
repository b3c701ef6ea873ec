// Package model is the in-memory statement model: an Entity carries an IRI,
// a set of type IRIs and a set of (property, typed value) claims.
//
// Values are a closed tagged union. Every concrete value type reports its
// Kind and a canonical lexical form, which is exactly what the index stores:
//
//	StringValue        text as-is
//	LocaleStringValue  text as-is, the locale travels in the field name
//	IntegerValue       decimal string (arbitrary precision)
//	CalendarValue      partial ISO-8601: 2012, 2012-03, 2012-03-04, 2012-03-04T05Z ...
//	GeoValue           Well-Known-Text
//	ResourceValue      IRI
//	ConstantValue      enumeration label
//
// Adding a kind means adding its match arms in the codec and a Kind constant.
package model
