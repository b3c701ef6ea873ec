// Package search resolves (label, type, locale) queries into ranked entity
// matches with a fuzziness ladder and cursor pagination.
package search

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/entigraph/codec"
	"github.com/teranos/entigraph/errors"
	"github.com/teranos/entigraph/index"
	"github.com/teranos/entigraph/logger"
	"github.com/teranos/entigraph/metrics"
	"github.com/teranos/entigraph/model"
)

// Defaults
const (
	DefaultLimit = 10
	MaxLimit     = 100
	MaxFuzziness = 2
)

// Options tunes the engine.
type Options struct {
	DefaultLimit int
	MaxLimit     int
	// MaxFuzziness is the last rung of the ladder, at most 2.
	MaxFuzziness int
}

// DefaultOptions returns the standard limits.
func DefaultOptions() Options {
	return Options{
		DefaultLimit: DefaultLimit,
		MaxLimit:     MaxLimit,
		MaxFuzziness: MaxFuzziness,
	}
}

// Request is one search. Label and Type are optional.
type Request struct {
	Label  string
	Type   string
	Locale string
	Cursor string
	Limit  int
	// Hydrate decodes the matched entities into Match.Entity.
	Hydrate bool
}

// Match is one ranked result.
type Match struct {
	IRI    string
	Score  float64
	Entity *model.Entity
}

// Result is one page of matches.
type Result struct {
	Matches []Match
	// NextCursor is set only when the page is full.
	NextCursor string
	// Fuzziness is the edit distance the page was matched at.
	Fuzziness int
	Limit     int
}

// Engine runs searches against a reader. It holds no per-request state.
type Engine struct {
	codec   *codec.Codec
	opts    Options
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
}

// NewEngine creates an engine. codec may be nil when hydration is never
// requested.
func NewEngine(c *codec.Codec, opts Options, log *zap.SugaredLogger) *Engine {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = MaxLimit
	}
	if opts.DefaultLimit > opts.MaxLimit {
		opts.DefaultLimit = opts.MaxLimit
	}
	if opts.MaxFuzziness < 0 || opts.MaxFuzziness > MaxFuzziness {
		opts.MaxFuzziness = MaxFuzziness
	}
	return &Engine{codec: c, opts: opts, logger: logger.OrNop(log)}
}

// WithMetrics attaches Prometheus collectors.
func (e *Engine) WithMetrics(m *metrics.Metrics) *Engine {
	e.metrics = m
	return e
}

// ClampLimit maps a client limit into [1, MaxLimit]; zero or negative
// selects the default.
func (e *Engine) ClampLimit(limit int) int {
	if limit <= 0 {
		return e.opts.DefaultLimit
	}
	if limit > e.opts.MaxLimit {
		return e.opts.MaxLimit
	}
	return limit
}

// buildQuery turns the bound inputs into a query tree. The type is a
// non-scoring filter when a label is also given.
func buildQuery(label, typ, locale string, fuzziness int) index.Query {
	var labelQ, typeQ index.Query
	if label != "" {
		labelQ = index.Label{Locale: locale, Text: label, Fuzziness: fuzziness}
	}
	if typ != "" {
		typeQ = index.Term{Field: index.TypeField, Value: typ}
	}
	switch {
	case labelQ != nil && typeQ != nil:
		return index.And{Must: []index.Query{labelQ}, Filter: []index.Query{typeQ}}
	case labelQ != nil:
		return labelQ
	case typeQ != nil:
		return typeQ
	default:
		return index.MatchAll{}
	}
}

// Search runs req against r. A fresh label query climbs the fuzziness
// ladder until a level has hits; a cursor pins the level it carries.
func (e *Engine) Search(ctx context.Context, r *index.Reader, req Request) (*Result, error) {
	started := time.Now()
	limit := e.ClampLimit(req.Limit)
	label := index.NormalizeLabel(req.Label)
	typ := strings.TrimSpace(req.Type)

	locale, err := e.locale(req.Locale)
	if err != nil {
		return nil, err
	}

	var after *index.ScoreDoc
	levels := []int{0}
	if req.Cursor != "" {
		c, err := ParseCursor(req.Cursor)
		if err != nil {
			return nil, err
		}
		if c.Fuzziness > e.opts.MaxFuzziness {
			return nil, errors.NewInvalidRequestError("cursor fuzziness %d above maximum %d", c.Fuzziness, e.opts.MaxFuzziness)
		}
		after = c.After()
		levels = []int{c.Fuzziness}
	} else if label != "" {
		levels = levels[:0]
		for k := 0; k <= e.opts.MaxFuzziness; k++ {
			levels = append(levels, k)
		}
	}

	var hits []index.ScoreDoc
	fuzziness := levels[0]
	for _, k := range levels {
		fuzziness = k
		hits, err = r.Search(ctx, buildQuery(label, typ, locale, k), after, limit)
		if err != nil {
			return nil, err
		}
		if len(hits) > 0 {
			break
		}
	}

	res := &Result{Fuzziness: fuzziness, Limit: limit, Matches: make([]Match, 0, len(hits))}
	for _, h := range hits {
		m := Match{IRI: h.Key, Score: h.Score}
		if req.Hydrate && e.codec != nil {
			doc, err := r.DocumentByID(ctx, h.ID)
			if err != nil {
				return nil, err
			}
			m.Entity = e.codec.Decode(doc)
		}
		res.Matches = append(res.Matches, m)
	}
	if len(hits) == limit {
		last := hits[len(hits)-1]
		res.NextCursor = Cursor{DocID: last.ID, Score: last.Score, Fuzziness: fuzziness}.String()
	}

	e.metrics.SearchServed(started, fuzziness)
	e.logger.Debugw("Search served",
		logger.FieldQuery, label,
		logger.FieldType, typ,
		logger.FieldLocale, locale,
		logger.FieldFuzziness, fuzziness,
		logger.FieldLimit, limit,
		logger.FieldCount, len(hits),
		logger.FieldDurationMS, time.Since(started).Milliseconds(),
	)
	return res, nil
}

// locale validates the request locale, defaulting to the first supported
// one.
func (e *Engine) locale(requested string) (string, error) {
	requested = model.NormalizeLocale(requested)
	if e.codec == nil {
		if requested == "" {
			return model.DefaultLocales[0], nil
		}
		return requested, nil
	}
	supported := e.codec.Locales()
	if requested == "" {
		if supported.Len() == 0 {
			return "", errors.NewInvalidRequestError("no locale requested and none configured")
		}
		return supported.List()[0], nil
	}
	if !supported.Contains(requested) {
		return "", errors.NewInvalidRequestError("unsupported locale %q", requested)
	}
	return requested, nil
}
