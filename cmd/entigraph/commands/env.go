package commands

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/teranos/entigraph/am"
	"github.com/teranos/entigraph/codec"
	"github.com/teranos/entigraph/errors"
	"github.com/teranos/entigraph/hierarchy"
	"github.com/teranos/entigraph/index"
	"github.com/teranos/entigraph/logger"
	"github.com/teranos/entigraph/metrics"
	"github.com/teranos/entigraph/model"
	"github.com/teranos/entigraph/schema"
)

// ConfigFile, when set by --config, replaces the layered config lookup.
var ConfigFile string

// loadConfig loads and validates the configuration.
func loadConfig() (*am.Config, error) {
	var (
		cfg *am.Config
		err error
	)
	if ConfigFile != "" {
		cfg, err = am.LoadFromFile(ConfigFile)
	} else {
		cfg, err = am.Load()
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// loadSchema reads the configured schema file, or the built-in one.
func loadSchema(cfg *am.Config) (*schema.Registry, error) {
	if cfg.Schema.Path == "" {
		return schema.Default(), nil
	}
	return schema.LoadFile(cfg.Schema.Path)
}

// env is the set of components a command works with.
type env struct {
	cfg       *am.Config
	schema    *schema.Registry
	codec     *codec.Codec
	store     *index.Store
	hierarchy *hierarchy.Resolver
	metrics   *metrics.Metrics
	registry  *prometheus.Registry
	ns        model.Namespaces
}

type envOptions struct {
	withHierarchy bool
}

// openEnv wires the configured components. Callers must Close it.
func openEnv(opts envOptions) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	reg, err := loadSchema(cfg)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, schema: reg, ns: model.DefaultNamespaces()}
	if cfg.Metrics.Enabled {
		e.metrics = metrics.New()
		e.registry = prometheus.NewRegistry()
		if err := e.metrics.Register(e.registry); err != nil {
			return nil, errors.Wrap(err, "failed to register metrics")
		}
	}

	e.codec = codec.New(reg, cfg.LocaleSet(), logger.ComponentLogger("codec")).WithMetrics(e.metrics)

	store, err := index.Open(cfg.GetDatabasePath(), logger.ComponentLogger("index"))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open index at %s", cfg.GetDatabasePath())
	}
	e.store = store.WithMetrics(e.metrics)

	if opts.withHierarchy {
		h, err := hierarchy.Open(hierarchy.Config{Path: cfg.GetHierarchyPath()}, logger.ComponentLogger("hierarchy"))
		if err != nil {
			e.store.Close()
			return nil, errors.Wrapf(err, "failed to open type hierarchy at %s", cfg.GetHierarchyPath())
		}
		e.hierarchy = h.WithMetrics(e.metrics)
	}
	return e, nil
}

// expand resolves a compact IRI such as wd:Q42.
func (e *env) expand(iri string) string {
	return e.ns.Expand(iri)
}

// compact shortens an IRI for display.
func (e *env) compact(iri string) string {
	return e.ns.Compact(iri)
}

func (e *env) Close() error {
	var err error
	if e.hierarchy != nil {
		err = e.hierarchy.Close()
	}
	if cerr := e.store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
