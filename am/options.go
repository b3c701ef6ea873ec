package am

import (
	"time"

	"github.com/teranos/entigraph/loader"
	"github.com/teranos/entigraph/model"
	"github.com/teranos/entigraph/search"
	"github.com/teranos/entigraph/triples"
)

// LocaleSet returns the supported locales, falling back to the defaults.
func (c *Config) LocaleSet() model.Locales {
	if len(c.Locales.Supported) == 0 {
		return model.NewLocales(model.DefaultLocales...)
	}
	return model.NewLocales(c.Locales.Supported...)
}

// SearchOptions maps the search section onto engine options.
func (c *Config) SearchOptions() search.Options {
	return search.Options{
		DefaultLimit: c.Search.DefaultLimit,
		MaxLimit:     c.Search.MaxLimit,
		MaxFuzziness: c.Search.MaxFuzziness,
	}
}

// TriplesOptions maps the triples and schema sections onto source options.
func (c *Config) TriplesOptions() triples.Options {
	return triples.Options{
		BatchSize: c.Triples.BatchSize,
		RootType:  c.Schema.RootType,
	}
}

// LoaderOptions maps the ingest section onto loader options.
func (c *Config) LoaderOptions() loader.Options {
	return loader.Options{
		RefreshEvery:    c.Ingest.RefreshEvery,
		RefreshInterval: time.Duration(c.Ingest.RefreshIntervalSeconds) * time.Second,
		TypeBlocklist:   c.Ingest.TypeBlocklist,
		TypeVocabulary:  c.Ingest.TypeVocabulary,
		Namespaces:      model.DefaultNamespaces(),
	}
}
