// Package loader is the ingestion entry point: it normalizes entities,
// filters and classifies them by type ancestry, and writes them to the
// index with periodic refreshes.
package loader

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/entigraph/codec"
	"github.com/teranos/entigraph/errors"
	"github.com/teranos/entigraph/hierarchy"
	"github.com/teranos/entigraph/index"
	"github.com/teranos/entigraph/logger"
	"github.com/teranos/entigraph/metrics"
	"github.com/teranos/entigraph/model"
)

// Defaults
const (
	DefaultRefreshEvery    = 10000
	DefaultRefreshInterval = 30 * time.Second
)

// Writer is the write side of the index. *index.Store implements it.
type Writer interface {
	Upsert(ctx context.Context, doc *index.Document) error
	Refresh(ctx context.Context) error
}

// Options tunes ingestion.
type Options struct {
	// RefreshEvery commits after this many upserts.
	RefreshEvery int
	// RefreshInterval is the period of Run's background refresh.
	RefreshInterval time.Duration
	// TypeBlocklist rejects entities with any of these types among the
	// ancestors of their types.
	TypeBlocklist []string
	// TypeVocabulary is the target type set; matching ancestors are added
	// to each entity's types.
	TypeVocabulary []string
	Namespaces     model.Namespaces
}

// Stats counts what ingestion did.
type Stats struct {
	Added     int64
	Rejected  int64
	Failed    int64
	Refreshes int64
	Types     int64
}

// Loader feeds entities into the index. Safe for concurrent use.
type Loader struct {
	writer    Writer
	codec     *codec.Codec
	hierarchy *hierarchy.Resolver
	opts      Options

	blocklist  map[string]struct{}
	vocabulary map[string]struct{}
	ingestID   string

	mu           sync.Mutex
	sinceRefresh int

	added, rejected, failed, refreshes, types atomic.Int64

	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
}

// New creates a loader. h may be nil, in which case the blocklist and
// vocabulary only match an entity's own types.
func New(w Writer, c *codec.Codec, h *hierarchy.Resolver, opts Options, log *zap.SugaredLogger) *Loader {
	if opts.RefreshEvery <= 0 {
		opts.RefreshEvery = DefaultRefreshEvery
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.Namespaces == nil {
		opts.Namespaces = model.DefaultNamespaces()
	}

	ingestID := uuid.NewString()
	l := &Loader{
		writer:    w,
		codec:     c,
		hierarchy: h,
		opts:      opts,
		ingestID:  ingestID,
		logger:    logger.ChildLogger(logger.OrNop(log), logger.FieldIngestID, ingestID),
	}
	l.blocklist = l.typeSet(opts.TypeBlocklist)
	l.vocabulary = l.typeSet(opts.TypeVocabulary)
	return l
}

// WithMetrics attaches Prometheus collectors.
func (l *Loader) WithMetrics(m *metrics.Metrics) *Loader {
	l.metrics = m
	return l
}

// IngestID identifies this loader's run in logs.
func (l *Loader) IngestID() string {
	return l.ingestID
}

func (l *Loader) typeSet(types []string) map[string]struct{} {
	expanded := make([]string, len(types))
	for i, t := range types {
		expanded[i] = l.opts.Namespaces.Expand(t)
	}
	return hierarchy.Set(expanded...)
}

// AddResource normalizes e and writes it to the index. Entities whose type
// ancestry hits the blocklist are skipped without error. A failed write
// drops only this entity; the error is returned for the caller to count.
func (l *Loader) AddResource(ctx context.Context, e *model.Entity) error {
	if e == nil || e.IRI == "" {
		return errors.NewInvalidRequestError("entity without IRI")
	}
	e = l.normalize(e)

	if l.blocked(e) {
		l.rejected.Add(1)
		l.metrics.EntityRejected()
		l.logger.Debugw("Rejected entity by type", logger.FieldIRI, e.IRI, logger.FieldType, e.Types)
		return nil
	}
	for _, t := range l.classify(e.Types) {
		e.AddType(t)
	}

	if err := l.writer.Upsert(ctx, l.codec.Encode(e)); err != nil {
		l.failed.Add(1)
		l.logger.Warnw("Failed to index entity", logger.FieldIRI, e.IRI, logger.FieldError, err)
		return err
	}
	l.added.Add(1)

	l.mu.Lock()
	l.sinceRefresh++
	due := l.sinceRefresh >= l.opts.RefreshEvery
	l.mu.Unlock()
	if due {
		return l.Refresh(ctx)
	}
	return nil
}

// RecordTypes stores the direct supertypes of one observed type.
func (l *Loader) RecordTypes(child string, parents []string) error {
	if l.hierarchy == nil {
		return errors.New("no type hierarchy configured")
	}
	expanded := make([]string, len(parents))
	for i, p := range parents {
		expanded[i] = l.opts.Namespaces.Expand(p)
	}
	if err := l.hierarchy.RecordParents(l.opts.Namespaces.Expand(child), expanded); err != nil {
		return err
	}
	l.types.Add(1)
	return nil
}

// Refresh commits pending documents.
func (l *Loader) Refresh(ctx context.Context) error {
	l.mu.Lock()
	pending := l.sinceRefresh
	l.sinceRefresh = 0
	l.mu.Unlock()

	if err := l.writer.Refresh(ctx); err != nil {
		return err
	}
	l.refreshes.Add(1)
	l.logger.Infow("Refreshed index", logger.FieldCount, pending, "added_total", l.added.Load())
	return nil
}

// Run refreshes on every interval until ctx ends, then refreshes once
// more so nothing stays pending.
func (l *Loader) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.opts.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return l.Refresh(context.Background())
		case <-ticker.C:
			l.mu.Lock()
			pending := l.sinceRefresh
			l.mu.Unlock()
			if pending == 0 {
				continue
			}
			if err := l.Refresh(ctx); err != nil {
				l.logger.Errorw("Periodic refresh failed", logger.FieldError, err)
			}
		}
	}
}

// Stats returns a snapshot of the counters.
func (l *Loader) Stats() Stats {
	return Stats{
		Added:     l.added.Load(),
		Rejected:  l.rejected.Load(),
		Failed:    l.failed.Load(),
		Refreshes: l.refreshes.Load(),
		Types:     l.types.Load(),
	}
}

// normalize returns a copy of e with expanded IRIs and lowercased locales.
func (l *Loader) normalize(e *model.Entity) *model.Entity {
	ns := l.opts.Namespaces
	out := model.NewEntity(ns.Expand(e.IRI))
	out.Rank = e.Rank
	for _, t := range e.Types {
		out.AddType(ns.Expand(t))
	}
	for _, c := range e.Claims {
		v := c.Value
		switch t := v.(type) {
		case model.ResourceValue:
			v = model.ResourceValue{IRI: ns.Expand(t.IRI)}
		case model.LocaleStringValue:
			v = model.LocaleStringValue{Text: t.Text, Locale: model.NormalizeLocale(t.Locale)}
		}
		out.AddClaim(ns.Expand(c.Property), v)
	}
	return out
}

func (l *Loader) blocked(e *model.Entity) bool {
	if len(l.blocklist) == 0 {
		return false
	}
	for _, t := range e.Types {
		if l.hierarchy != nil {
			if l.hierarchy.IntersectsAny(t, l.blocklist) {
				return true
			}
		} else if _, ok := l.blocklist[t]; ok {
			return true
		}
	}
	return false
}

func (l *Loader) classify(types []string) []string {
	if len(l.vocabulary) == 0 {
		return nil
	}
	if l.hierarchy != nil {
		return l.hierarchy.Classify(types, l.vocabulary)
	}
	var out []string
	for _, t := range types {
		if _, ok := l.vocabulary[t]; ok {
			out = append(out, t)
		}
	}
	return out
}
