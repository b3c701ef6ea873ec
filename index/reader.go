package index

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/teranos/entigraph/errors"
	"github.com/teranos/entigraph/metrics"
)

// ScoreDoc is one scored hit. It doubles as the search continuation
// marker: results after (Score, ID) in score-descending, id-ascending order.
type ScoreDoc struct {
	ID    int64
	Key   string
	Score float64
}

// DocRef is one unscored hit.
type DocRef struct {
	ID  int64
	Key string
}

// Reader is an immutable point-in-time view of the index. It is not safe
// for concurrent use; open one reader per request.
type Reader struct {
	tx         *sql.Tx
	conn       *sql.Conn
	generation int64
	logger     *zap.SugaredLogger
	metrics    *metrics.Metrics

	closeOnce sync.Once
	closeErr  error
}

// Generation is the highest document id visible to the reader.
func (r *Reader) Generation() int64 {
	return r.generation
}

// Close releases the snapshot. Safe to call more than once.
func (r *Reader) Close() error {
	r.closeOnce.Do(func() {
		if err := r.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			r.closeErr = errors.WrapStoreIO(err, "release reader snapshot")
		}
		if err := r.conn.Close(); err != nil && r.closeErr == nil && !errors.Is(err, sql.ErrConnDone) {
			r.closeErr = errors.WrapStoreIO(err, "close reader connection")
		}
		r.metrics.ReaderClosed()
	})
	return r.closeErr
}

// Count returns the number of documents in the snapshot.
func (r *Reader) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		return 0, errors.WrapStoreIO(err, "count documents")
	}
	return n, nil
}

// Lookup returns the document id for key.
func (r *Reader) Lookup(ctx context.Context, key string) (int64, error) {
	var id int64
	err := r.tx.QueryRowContext(ctx, "SELECT id FROM documents WHERE iri = ?", key).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, errors.NewNotFoundError("no such entity %s", key)
	}
	if err != nil {
		return 0, errors.WrapStoreIO(err, "lookup "+key)
	}
	return id, nil
}

// Document loads the document stored under key.
func (r *Reader) Document(ctx context.Context, key string) (*Document, error) {
	id, err := r.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	return r.DocumentByID(ctx, id)
}

// DocumentByID loads a document with its types and every stored field.
// Labels are derived data and are not loaded.
func (r *Reader) DocumentByID(ctx context.Context, id int64) (*Document, error) {
	doc := &Document{ID: id}
	err := r.tx.QueryRowContext(ctx, "SELECT iri, rank FROM documents WHERE id = ?", id).Scan(&doc.Key, &doc.Rank)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("no document %d", id)
	}
	if err != nil {
		return nil, errors.WrapStoreIO(err, "load document")
	}

	types, err := r.Types(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.Types = types

	fields, err := r.Fields(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.Fields = fields
	return doc, nil
}

// Types returns the sorted types of a document.
func (r *Reader) Types(ctx context.Context, id int64) ([]string, error) {
	rows, err := r.tx.QueryContext(ctx, "SELECT type FROM document_types WHERE doc_id = ? ORDER BY type", id)
	if err != nil {
		return nil, errors.WrapStoreIO(err, "load types")
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, errors.WrapStoreIO(err, "scan type")
		}
		types = append(types, t)
	}
	return types, errors.WrapStoreIO(rows.Err(), "iterate types")
}

// Fields returns the stored fields of a document in write order. With
// names, only those fields are returned.
func (r *Reader) Fields(ctx context.Context, id int64, names ...string) ([]Field, error) {
	query := "SELECT name, value FROM document_fields WHERE doc_id = ?"
	args := []interface{}{id}
	if len(names) > 0 {
		query += " AND name IN (" + placeholders(len(names)) + ")"
		for _, n := range names {
			args = append(args, n)
		}
	}
	query += " ORDER BY ord"

	rows, err := r.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WrapStoreIO(err, "load fields")
	}
	defer rows.Close()

	var fields []Field
	for rows.Next() {
		var f Field
		if err := rows.Scan(&f.Name, &f.Value); err != nil {
			return nil, errors.WrapStoreIO(err, "scan field")
		}
		fields = append(fields, f)
	}
	return fields, errors.WrapStoreIO(rows.Err(), "iterate fields")
}

// Search returns up to n hits of q ordered by score descending, then
// document id. With after, only hits ranked strictly after it are returned.
func (r *Reader) Search(ctx context.Context, q Query, after *ScoreDoc, n int) ([]ScoreDoc, error) {
	if n <= 0 {
		return nil, errors.NewInvalidRequestError("search page size must be positive, got %d", n)
	}
	qb := compile(q)
	relevance, args := qb.relevance()

	var sb strings.Builder
	sb.WriteString("SELECT id, iri, score FROM (SELECT d.id AS id, d.iri AS iri, ")
	sb.WriteString(relevance)
	sb.WriteString(" * d.boost AS score FROM documents d WHERE ")
	sb.WriteString(qb.where())
	sb.WriteString(")")
	args = append(args, qb.args...)
	if after != nil {
		sb.WriteString(" WHERE score < ? OR (score = ? AND id > ?)")
		args = append(args, after.Score, after.Score, after.ID)
	}
	sb.WriteString(" ORDER BY score DESC, id ASC LIMIT ?")
	args = append(args, n)

	rows, err := r.tx.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, errors.WrapStoreIO(err, "search")
	}
	defer rows.Close()

	var hits []ScoreDoc
	for rows.Next() {
		var h ScoreDoc
		if err := rows.Scan(&h.ID, &h.Key, &h.Score); err != nil {
			return nil, errors.WrapStoreIO(err, "scan hit")
		}
		hits = append(hits, h)
	}
	return hits, errors.WrapStoreIO(rows.Err(), "iterate hits")
}

// Scan returns up to n documents matching q with id greater than afterID,
// in id order. Scores are not computed.
func (r *Reader) Scan(ctx context.Context, q Query, afterID int64, n int) ([]DocRef, error) {
	if n <= 0 {
		return nil, errors.NewInvalidRequestError("scan page size must be positive, got %d", n)
	}
	qb := compile(q)
	query := "SELECT d.id, d.iri FROM documents d WHERE " + qb.where() +
		" AND d.id > ? ORDER BY d.id LIMIT ?"
	args := append(qb.args, afterID, n)

	rows, err := r.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WrapStoreIO(err, "scan")
	}
	defer rows.Close()

	var refs []DocRef
	for rows.Next() {
		var ref DocRef
		if err := rows.Scan(&ref.ID, &ref.Key); err != nil {
			return nil, errors.WrapStoreIO(err, "scan document")
		}
		refs = append(refs, ref)
	}
	return refs, errors.WrapStoreIO(rows.Err(), "iterate documents")
}
