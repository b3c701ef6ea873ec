package triples

import (
	"context"

	"go.uber.org/zap"

	"github.com/teranos/entigraph/codec"
	"github.com/teranos/entigraph/errors"
	"github.com/teranos/entigraph/index"
	"github.com/teranos/entigraph/logger"
	"github.com/teranos/entigraph/metrics"
	"github.com/teranos/entigraph/model"
)

// DefaultBatchSize is the page size of store scans.
const DefaultBatchSize = 20000

// Opener hands out snapshot readers. *index.Store implements it.
type Opener interface {
	OpenReader(ctx context.Context) (*index.Reader, error)
}

// Options tunes the source.
type Options struct {
	BatchSize int
	// RootType is the type every stored subject is an instance of.
	// Empty disables the reflexive rdf:type statements.
	RootType string
}

// Source evaluates triple patterns. Each call to Statements works on its
// own reader snapshot.
type Source struct {
	opener  Opener
	codec   *codec.Codec
	opts    Options
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
}

// NewSource creates a source over opener.
func NewSource(opener Opener, c *codec.Codec, opts Options, log *zap.SugaredLogger) *Source {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Source{opener: opener, codec: c, opts: opts, logger: logger.OrNop(log)}
}

// WithMetrics attaches Prometheus collectors.
func (s *Source) WithMetrics(m *metrics.Metrics) *Source {
	s.metrics = m
	return s
}

// Plan returns the strategy for p, or an UnsupportedPattern error when
// only the object is bound.
func Plan(p Pattern) (Strategy, error) {
	switch {
	case p.Subject != "" && p.Predicate != "" && p.Object != nil:
		return StrategySubjectPredicateObject, nil
	case p.Subject != "" && p.Predicate != "":
		return StrategySubjectPredicate, nil
	case p.Subject != "" && p.Object != nil:
		return StrategySubjectObject, nil
	case p.Subject != "":
		return StrategySubject, nil
	case p.Predicate != "" && p.Object != nil:
		return StrategyPredicateObject, nil
	case p.Predicate != "":
		return StrategyPredicate, nil
	case p.Object != nil:
		return "", errors.NewUnsupportedPattern("object %v bound without subject or predicate", p.Object)
	default:
		return StrategyScan, nil
	}
}

// Statements returns a lazy iterator over the triples matching p. The
// iterator owns a reader; close it on every path.
func (s *Source) Statements(ctx context.Context, p Pattern) (*Iterator, error) {
	strategy, err := Plan(p)
	if err != nil {
		s.logger.Debugw("Rejected triple pattern", logger.FieldQuery, p.String(), logger.FieldError, err)
		return nil, err
	}
	s.metrics.PatternEvaluated(string(strategy))

	r, err := s.opener.OpenReader(ctx)
	if err != nil {
		return nil, err
	}

	it := &Iterator{ctx: ctx, reader: r, metrics: s.metrics}
	switch strategy {
	case StrategySubjectPredicateObject, StrategySubjectPredicate, StrategySubjectObject, StrategySubject:
		it.producer = &subjectProducer{source: s, pattern: p}
	case StrategyPredicateObject:
		it.producer = s.predicateObjectProducer(p)
	case StrategyPredicate:
		it.producer = s.scan(s.predicateQuery(p.Predicate), func(ctx context.Context, r *index.Reader, ref index.DocRef) ([]Triple, error) {
			return s.documentTriples(ctx, r, ref.ID, ref.Key, p.Predicate, nil)
		})
	default:
		it.producer = s.scan(index.MatchAll{}, func(ctx context.Context, r *index.Reader, ref index.DocRef) ([]Triple, error) {
			return s.documentTriples(ctx, r, ref.ID, ref.Key, "", nil)
		})
	}

	s.logger.Debugw("Evaluating triple pattern",
		logger.FieldQuery, p.String(),
		logger.FieldStrategy, strategy,
	)
	return it, nil
}

// predicateQuery selects documents that can hold predicate.
func (s *Source) predicateQuery(predicate string) index.Query {
	if predicate == model.RDFType {
		if s.opts.RootType != "" {
			return index.MatchAll{}
		}
		return index.FieldExists{Names: []string{index.TypeField}}
	}
	names := s.codec.FieldNames(predicate)
	if len(names) == 0 {
		s.logger.Debugw("Unknown predicate", logger.FieldPredicate, predicate)
	}
	return index.FieldExists{Names: names}
}

// predicateObjectProducer matches the encoded (field, value) pair exactly.
// Matching documents hold the statement, so nothing is decoded. Functional
// properties also check that the match is the value Decode would keep.
func (s *Source) predicateObjectProducer(p Pattern) producer {
	emit := func(ctx context.Context, r *index.Reader, ref index.DocRef) ([]Triple, error) {
		return []Triple{{Subject: ref.Key, Predicate: p.Predicate, Object: p.Object}}, nil
	}

	if p.Predicate == model.RDFType {
		res, ok := p.Object.(model.ResourceValue)
		if !ok {
			return emptyProducer{}
		}
		if s.opts.RootType != "" && res.IRI == s.opts.RootType {
			return s.scan(index.MatchAll{}, emit)
		}
		return s.scan(index.Term{Field: index.TypeField, Value: res.IRI}, emit)
	}

	f, err := s.codec.EncodeClaim(model.Claim{Property: p.Predicate, Value: p.Object})
	if err != nil {
		s.logger.Debugw("Pattern object cannot be stored", logger.FieldQuery, p.String(), logger.FieldError, err)
		return emptyProducer{}
	}
	if prop, _ := s.codec.Schema().Property(p.Predicate); prop.Functional {
		// A functional property reads back as its first stored value only.
		emit = func(ctx context.Context, r *index.Reader, ref index.DocRef) ([]Triple, error) {
			stored, err := r.Fields(ctx, ref.ID, f.Name)
			if err != nil {
				return nil, err
			}
			if len(stored) == 0 || stored[0].Value != f.Value {
				return nil, nil
			}
			return []Triple{{Subject: ref.Key, Predicate: p.Predicate, Object: p.Object}}, nil
		}
	}
	return s.scan(index.Term{Field: f.Name, Value: f.Value}, emit)
}

// documentTriples decodes one document into triples, restricted to
// predicate and object when they are bound.
func (s *Source) documentTriples(ctx context.Context, r *index.Reader, id int64, key, predicate string, object model.Value) ([]Triple, error) {
	var out []Triple
	keep := func(t Triple) {
		if object == nil || object.Equal(t.Object) {
			out = append(out, t)
		}
	}

	if predicate == "" || predicate == model.RDFType {
		types, err := r.Types(ctx, id)
		if err != nil {
			return nil, err
		}
		hasRoot := false
		for _, t := range types {
			hasRoot = hasRoot || t == s.opts.RootType
			keep(typeTriple(key, t))
		}
		if s.opts.RootType != "" && !hasRoot {
			keep(typeTriple(key, s.opts.RootType))
		}
		if predicate == model.RDFType {
			return out, nil
		}
	}

	var names []string
	if predicate != "" {
		names = s.codec.FieldNames(predicate)
		if len(names) == 0 {
			return out, nil
		}
	}
	fields, err := r.Fields(ctx, id, names...)
	if err != nil {
		return nil, err
	}
	for _, c := range s.codec.DecodeFields(key, fields) {
		keep(Triple{Subject: key, Predicate: c.Property, Object: c.Value})
	}
	return out, nil
}

func (s *Source) scan(q index.Query, emit emitFunc) producer {
	return &scanProducer{query: q, batchSize: s.opts.BatchSize, emit: emit, logger: s.logger}
}
