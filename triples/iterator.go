package triples

import (
	"context"

	"go.uber.org/zap"

	"github.com/teranos/entigraph/errors"
	"github.com/teranos/entigraph/index"
	"github.com/teranos/entigraph/logger"
	"github.com/teranos/entigraph/metrics"
)

// producer yields triples one at a time from a reader.
type producer interface {
	next(ctx context.Context, r *index.Reader) (Triple, bool, error)
}

// emitFunc turns one matched document into triples.
type emitFunc func(ctx context.Context, r *index.Reader, ref index.DocRef) ([]Triple, error)

// Iterator is a finite, lazy sequence of triples. It is not restartable
// and not safe for concurrent use. The reader it holds is released by
// Close, or as soon as the sequence ends or fails.
//
//	it, err := src.Statements(ctx, pattern)
//	if err != nil { ... }
//	defer it.Close()
//	for it.Next() {
//	    t := it.Triple()
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator struct {
	ctx      context.Context
	reader   *index.Reader
	producer producer
	metrics  *metrics.Metrics

	current Triple
	err     error
	done    bool
}

// Next advances to the next triple.
func (it *Iterator) Next() bool {
	if it.done {
		return false
	}
	if err := it.ctx.Err(); err != nil {
		it.err = err
		it.release()
		return false
	}
	t, ok, err := it.producer.next(it.ctx, it.reader)
	if err != nil {
		it.err = err
		it.release()
		return false
	}
	if !ok {
		it.release()
		return false
	}
	it.current = t
	it.metrics.TripleEmitted()
	return true
}

// Triple returns the current triple.
func (it *Iterator) Triple() Triple {
	return it.current
}

// Err returns the error that ended the sequence, if any.
func (it *Iterator) Err() error {
	return it.err
}

// Close releases the reader. Safe to call more than once.
func (it *Iterator) Close() error {
	return it.release()
}

func (it *Iterator) release() error {
	it.done = true
	if it.reader == nil {
		return nil
	}
	err := it.reader.Close()
	it.reader = nil
	return err
}

// Collect drains it into a slice, stopping after max triples when max > 0,
// and closes it.
func Collect(it *Iterator, max int) ([]Triple, error) {
	defer it.Close()
	var out []Triple
	for it.Next() {
		out = append(out, it.Triple())
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out, it.Err()
}

type emptyProducer struct{}

func (emptyProducer) next(context.Context, *index.Reader) (Triple, bool, error) {
	return Triple{}, false, nil
}

// subjectProducer loads the single bound subject on first use.
type subjectProducer struct {
	source  *Source
	pattern Pattern
	loaded  bool
	pending []Triple
}

func (sp *subjectProducer) next(ctx context.Context, r *index.Reader) (Triple, bool, error) {
	if !sp.loaded {
		sp.loaded = true
		id, err := r.Lookup(ctx, sp.pattern.Subject)
		if errors.IsNotFoundError(err) {
			return Triple{}, false, nil
		}
		if err != nil {
			return Triple{}, false, err
		}
		sp.pending, err = sp.source.documentTriples(ctx, r, id, sp.pattern.Subject, sp.pattern.Predicate, sp.pattern.Object)
		if err != nil {
			return Triple{}, false, err
		}
	}
	if len(sp.pending) == 0 {
		return Triple{}, false, nil
	}
	t := sp.pending[0]
	sp.pending = sp.pending[1:]
	return t, true, nil
}

// scanProducer walks the documents matching query in id order, one batch
// at a time. A document is only decoded when the caller reaches it, and a
// new batch is only fetched after a full one.
type scanProducer struct {
	query     index.Query
	batchSize int
	emit      emitFunc
	logger    *zap.SugaredLogger

	batch     []index.DocRef
	pos       int
	lastID    int64
	exhausted bool
	pending   []Triple
}

func (sp *scanProducer) next(ctx context.Context, r *index.Reader) (Triple, bool, error) {
	for {
		if len(sp.pending) > 0 {
			t := sp.pending[0]
			sp.pending = sp.pending[1:]
			return t, true, nil
		}

		if sp.pos == len(sp.batch) {
			if sp.exhausted {
				return Triple{}, false, nil
			}
			batch, err := r.Scan(ctx, sp.query, sp.lastID, sp.batchSize)
			if err != nil {
				return Triple{}, false, err
			}
			sp.batch, sp.pos = batch, 0
			sp.exhausted = len(batch) < sp.batchSize
			sp.logger.Debugw("Fetched triple batch",
				logger.FieldCount, len(batch),
				logger.FieldBatchSize, sp.batchSize,
			)
			if len(batch) == 0 {
				return Triple{}, false, nil
			}
			sp.lastID = batch[len(batch)-1].ID
		}

		ref := sp.batch[sp.pos]
		sp.pos++
		triples, err := sp.emit(ctx, r, ref)
		if err != nil {
			return Triple{}, false, err
		}
		sp.pending = triples
	}
}
