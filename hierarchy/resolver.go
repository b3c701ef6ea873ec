// Package hierarchy persists direct supertype edges between types and
// answers transitive ancestor queries over them.
package hierarchy

import (
	"encoding/json"
	"os"
	"sync"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/teranos/entigraph/errors"
	"github.com/teranos/entigraph/logger"
	"github.com/teranos/entigraph/metrics"
)

var parentsBucket = []byte("parents")

// Config configures the resolver's key-value file.
type Config struct {
	Path     string
	NoSync   bool
	ReadOnly bool
}

// Resolver maps a type to its direct parents. Reads are safe from any
// goroutine; concurrent writes to the same child are last-writer-wins.
type Resolver struct {
	db      *bolt.DB
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics

	mu    sync.RWMutex
	cache map[string][]string // resolved ancestor lists, dropped on any change
	gen   uint64              // bumped on every change
}

// Open opens or creates the hierarchy file.
func Open(cfg Config, log *zap.SugaredLogger) (*Resolver, error) {
	if cfg.Path == "" {
		return nil, errors.Wrap(os.ErrInvalid, "hierarchy path is required")
	}

	db, err := bolt.Open(cfg.Path, 0600, &bolt.Options{ReadOnly: cfg.ReadOnly})
	if err != nil {
		return nil, errors.WrapStoreIO(err, "open hierarchy "+cfg.Path)
	}
	db.NoSync = cfg.NoSync

	if !cfg.ReadOnly {
		err = db.Update(func(tx *bolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(parentsBucket)
			return err
		})
		if err != nil {
			db.Close()
			return nil, errors.WrapStoreIO(err, "create hierarchy bucket")
		}
	}

	return &Resolver{
		db:     db,
		logger: logger.OrNop(log),
		cache:  make(map[string][]string),
	}, nil
}

// WithMetrics attaches Prometheus collectors.
func (r *Resolver) WithMetrics(m *metrics.Metrics) *Resolver {
	r.metrics = m
	return r
}

// Close closes the file.
func (r *Resolver) Close() error {
	return r.db.Close()
}

// RecordParents stores the direct parents of child, replacing any earlier
// set. Recording the same parents again writes nothing.
func (r *Resolver) RecordParents(child string, parents []string) error {
	if child == "" {
		return errors.NewInvalidRequestError("empty child type")
	}
	parents = dedupe(child, parents)
	value, err := json.Marshal(parents)
	if err != nil {
		return errors.Wrap(err, "encode parents")
	}

	changed := false
	err = r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(parentsBucket)
		if b == nil {
			return errors.New("hierarchy bucket missing")
		}
		if existing := b.Get([]byte(child)); existing != nil && string(existing) == string(value) {
			return nil
		}
		changed = true
		return b.Put([]byte(child), value)
	})
	if err != nil {
		return errors.WrapStoreIO(err, "record parents of "+child)
	}

	if changed {
		r.mu.Lock()
		r.cache = make(map[string][]string)
		r.gen++
		r.mu.Unlock()
		r.metrics.EdgeRecorded()
		r.logger.Debugw("Recorded type parents", logger.FieldType, child, logger.FieldCount, len(parents))
	}
	return nil
}

// Parents returns the recorded direct parents of t.
func (r *Resolver) Parents(t string) ([]string, error) {
	var parents []string
	err := r.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(parentsBucket)
		if b == nil {
			return nil
		}
		v := b.Get([]byte(t))
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &parents)
	})
	if err != nil {
		return nil, errors.WrapStoreIO(err, "read parents of "+t)
	}
	return parents, nil
}

// Ancestors returns t followed by every type reachable over parent edges,
// in breadth-first order. It never fails: an unreadable edge is logged and
// treated as absent, so an unknown type yields just itself.
func (r *Resolver) Ancestors(t string) []string {
	r.mu.RLock()
	cached, ok := r.cache[t]
	gen := r.gen
	r.mu.RUnlock()
	if ok {
		return append([]string(nil), cached...)
	}

	visited := map[string]struct{}{t: {}}
	out := []string{t}
	queue := []string{t}

	err := r.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(parentsBucket)
		if b == nil {
			return nil
		}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]

			v := b.Get([]byte(current))
			if v == nil {
				continue
			}
			var parents []string
			if err := json.Unmarshal(v, &parents); err != nil {
				r.logger.Warnw("Skipping unreadable type edge", logger.FieldType, current, logger.FieldError, err)
				continue
			}
			for _, p := range parents {
				if _, seen := visited[p]; seen {
					continue
				}
				visited[p] = struct{}{}
				out = append(out, p)
				queue = append(queue, p)
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Warnw("Ancestor lookup failed", logger.FieldType, t, logger.FieldError, err)
		return out
	}

	r.mu.Lock()
	if r.gen == gen {
		r.cache[t] = out
	}
	r.mu.Unlock()
	return append([]string(nil), out...)
}

// IntersectsAny reports whether the ancestor set of t contains any type of
// set.
func (r *Resolver) IntersectsAny(t string, set map[string]struct{}) bool {
	if len(set) == 0 {
		return false
	}
	for _, a := range r.Ancestors(t) {
		if _, ok := set[a]; ok {
			return true
		}
	}
	return false
}

// Classify maps raw types into a target vocabulary: the result holds every
// vocabulary type that is an ancestor of one of types, in first-seen order.
func (r *Resolver) Classify(types []string, vocabulary map[string]struct{}) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, t := range types {
		for _, a := range r.Ancestors(t) {
			if _, ok := vocabulary[a]; !ok {
				continue
			}
			if _, dup := seen[a]; dup {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}

// Len returns the number of children with recorded parents.
func (r *Resolver) Len() (int, error) {
	n := 0
	err := r.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(parentsBucket); b != nil {
			n = b.Stats().KeyN
		}
		return nil
	})
	return n, errors.WrapStoreIO(err, "count type edges")
}

// Set builds a lookup set from a list of types.
func Set(types ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(types))
	for _, t := range types {
		if t != "" {
			s[t] = struct{}{}
		}
	}
	return s
}

// dedupe keeps the first occurrence of each parent and drops blanks and
// self edges.
func dedupe(child string, parents []string) []string {
	out := make([]string, 0, len(parents))
	seen := make(map[string]struct{}, len(parents))
	for _, p := range parents {
		if p == "" || p == child {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
