package model

import "strings"

// DefaultLocales is used when configuration does not name any locale.
var DefaultLocales = []string{"en", "fr", "de", "es", "it", "pt", "nl", "ru", "ja", "zh"}

// Locales is the immutable set of supported locales, created once at
// startup and passed to every component that needs it.
type Locales struct {
	tags []string
	set  map[string]struct{}
}

// NewLocales normalizes tags to lower case and drops blanks and duplicates.
// Order is preserved.
func NewLocales(tags ...string) Locales {
	l := Locales{set: make(map[string]struct{}, len(tags))}
	for _, tag := range tags {
		tag = NormalizeLocale(tag)
		if tag == "" {
			continue
		}
		if _, ok := l.set[tag]; ok {
			continue
		}
		l.set[tag] = struct{}{}
		l.tags = append(l.tags, tag)
	}
	return l
}

// NormalizeLocale lower-cases a locale tag and trims whitespace.
func NormalizeLocale(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// Contains reports whether tag is supported.
func (l Locales) Contains(tag string) bool {
	_, ok := l.set[NormalizeLocale(tag)]
	return ok
}

// List returns the supported locales in configuration order.
func (l Locales) List() []string {
	return append([]string(nil), l.tags...)
}

// Len returns the number of supported locales.
func (l Locales) Len() int {
	return len(l.tags)
}
