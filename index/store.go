package index

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/entigraph/db"
	"github.com/teranos/entigraph/errors"
	"github.com/teranos/entigraph/logger"
	"github.com/teranos/entigraph/metrics"
)

// Write statements
const (
	deleteDocumentQuery = `DELETE FROM documents WHERE iri = ?`

	deleteChildrenQuery = `
		DELETE FROM %s WHERE doc_id IN (SELECT id FROM documents WHERE iri = ?)`

	insertDocumentQuery = `INSERT INTO documents (iri, rank, boost) VALUES (?, ?, ?)`

	insertTypeQuery = `INSERT OR IGNORE INTO document_types (doc_id, type) VALUES (?, ?)`

	insertFieldQuery = `INSERT INTO document_fields (doc_id, ord, name, value) VALUES (?, ?, ?, ?)`

	insertLabelQuery = `
		INSERT INTO document_labels (doc_id, locale, label, label_len, token)
		VALUES (?, ?, ?, ?, ?)`
)

var childTables = []string{"document_types", "document_fields", "document_labels"}

// Store owns the index database. It has exactly one writer: upserts go into
// a long-lived transaction on a dedicated connection and become visible to
// new readers on Refresh. Readers are independent connections holding a
// read transaction, so a commit never changes what an open reader sees.
type Store struct {
	db      *sql.DB
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics

	mu      sync.Mutex // guards the writer state below
	conn    *sql.Conn
	tx      *sql.Tx
	pending int
	closed  bool
}

// Stats summarizes the committed index.
type Stats struct {
	Documents int
	Types     int
	Fields    int
	Labels    int
	Pending   int
}

// Open opens (creating and migrating when needed) the index at path.
func Open(path string, log *zap.SugaredLogger) (*Store, error) {
	conn, err := db.OpenWithMigrations(path, log)
	if err != nil {
		return nil, errors.WrapStoreIO(err, "open index")
	}
	return NewStore(conn, log), nil
}

// NewStore wraps an already migrated database.
func NewStore(database *sql.DB, log *zap.SugaredLogger) *Store {
	return &Store{
		db:     database,
		logger: logger.OrNop(log),
	}
}

// WithMetrics attaches Prometheus collectors.
func (s *Store) WithMetrics(m *metrics.Metrics) *Store {
	s.metrics = m
	return s
}

// DB exposes the underlying handle for maintenance commands.
func (s *Store) DB() *sql.DB {
	return s.db
}

// writeTx returns the open write transaction, beginning one if needed.
// Caller holds s.mu.
func (s *Store) writeTx(ctx context.Context) (*sql.Tx, error) {
	if s.tx != nil {
		return s.tx, nil
	}
	if s.conn == nil {
		conn, err := s.db.Conn(ctx)
		if err != nil {
			return nil, errors.WrapStoreIO(err, "acquire writer connection")
		}
		s.conn = conn
	}
	// The write transaction spans many calls, so it is not bound to ctx.
	tx, err := s.conn.BeginTx(context.Background(), nil)
	if err != nil {
		return nil, errors.WrapStoreIO(err, "begin write transaction")
	}
	s.tx = tx
	return tx, nil
}

// Upsert adds doc or replaces the document with the same key. The change is
// pending until the next Refresh. If writing fails, only this document is
// rolled back; earlier pending documents stay in the batch. If the rollback
// itself fails the whole pending batch is discarded, since the transaction
// can no longer be trusted.
//
// ctx is checked before the write starts. Once started, a document is
// written and its savepoint settled regardless of cancellation: an
// interrupted statement inside the write transaction would leave a
// half-replaced document in the batch.
func (s *Store) Upsert(ctx context.Context, doc *Document) error {
	if doc == nil || doc.Key == "" {
		return errors.NewInvalidRequestError("document without key")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return db.ErrDatabaseClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	wctx := context.WithoutCancel(ctx)

	tx, err := s.writeTx(wctx)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(wctx, "SAVEPOINT upsert"); err != nil {
		s.metrics.DocumentFailed()
		return s.abortLocked(errors.WrapStoreIO(err, "savepoint"))
	}

	if err := writeDocument(wctx, tx, doc); err != nil {
		s.metrics.DocumentFailed()
		if rbErr := settleSavepoint(wctx, tx, true); rbErr != nil {
			return s.abortLocked(errors.WrapStoreIO(rbErr, "roll back "+doc.Key))
		}
		s.logger.Warnw("Dropped document after write failure",
			logger.FieldIRI, doc.Key,
			logger.FieldError, err,
		)
		return errors.WrapStoreIO(err, "upsert "+doc.Key)
	}

	if err := settleSavepoint(wctx, tx, false); err != nil {
		s.metrics.DocumentFailed()
		// The document may be half visible inside the transaction.
		if rbErr := settleSavepoint(wctx, tx, true); rbErr != nil {
			return s.abortLocked(errors.WrapStoreIO(rbErr, "roll back "+doc.Key))
		}
		return errors.WrapStoreIO(err, "release savepoint for "+doc.Key)
	}
	s.pending++
	s.metrics.DocumentUpserted()
	return nil
}

// settleSavepoint releases the upsert savepoint, rolling back to it first
// when rollback is set.
func settleSavepoint(ctx context.Context, tx *sql.Tx, rollback bool) error {
	if rollback {
		if _, err := tx.ExecContext(ctx, "ROLLBACK TO upsert"); err != nil {
			return errors.Wrap(err, "rollback to savepoint")
		}
	}
	if _, err := tx.ExecContext(ctx, "RELEASE upsert"); err != nil {
		return errors.Wrap(err, "release savepoint")
	}
	return nil
}

// abortLocked rolls back the write transaction and every pending document
// with it. Caller holds s.mu.
func (s *Store) abortLocked(cause error) error {
	lost := s.pending
	if s.tx != nil {
		if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			s.logger.Errorw("Failed to roll back write transaction", logger.FieldError, err)
		}
	}
	s.tx = nil
	s.pending = 0
	s.logger.Errorw("Discarded pending documents",
		logger.FieldCount, lost,
		logger.FieldError, cause,
	)
	return errors.WithDetailf(cause, "%d pending documents discarded", lost)
}

func writeDocument(ctx context.Context, tx *sql.Tx, doc *Document) error {
	for _, table := range childTables {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(deleteChildrenQuery, table), doc.Key); err != nil {
			return errors.Wrapf(err, "delete %s", table)
		}
	}
	if _, err := tx.ExecContext(ctx, deleteDocumentQuery, doc.Key); err != nil {
		return errors.Wrap(err, "delete document")
	}

	res, err := tx.ExecContext(ctx, insertDocumentQuery, doc.Key, doc.Rank, doc.Boost())
	if err != nil {
		return errors.Wrap(err, "insert document")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "document id")
	}

	for _, t := range doc.Types {
		if _, err := tx.ExecContext(ctx, insertTypeQuery, id, t); err != nil {
			return errors.Wrapf(err, "insert type %s", t)
		}
	}
	for i, f := range doc.Fields {
		if _, err := tx.ExecContext(ctx, insertFieldQuery, id, i, f.Name, f.Value); err != nil {
			return errors.Wrapf(err, "insert field %s", f.Name)
		}
	}
	for _, l := range doc.Labels {
		full, tokens := labelTerms(NormalizeLabel(l.Text))
		if full == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, insertLabelQuery, id, l.Locale, full, runeLen(full), 0); err != nil {
			return errors.Wrap(err, "insert label")
		}
		for _, tok := range tokens {
			if _, err := tx.ExecContext(ctx, insertLabelQuery, id, l.Locale, tok, runeLen(tok), 1); err != nil {
				return errors.Wrap(err, "insert label token")
			}
		}
	}
	return nil
}

// Refresh commits pending writes. Readers opened afterwards see them;
// readers already open keep their snapshot.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return db.ErrDatabaseClosed
	}
	return s.commitLocked()
}

func (s *Store) commitLocked() error {
	if s.tx == nil {
		return nil
	}
	start := time.Now()
	count := s.pending
	err := s.tx.Commit()
	s.tx = nil
	s.pending = 0
	if err != nil {
		s.logger.Errorw("Index refresh failed", logger.FieldCount, count, logger.FieldError, err)
		return errors.WrapStoreIO(err, "commit pending documents")
	}
	s.metrics.Refreshed()
	s.logger.Debugw("Index refreshed",
		logger.FieldCount, count,
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return nil
}

// Pending returns the number of upserts not yet refreshed.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// OpenReader acquires a point-in-time view of the committed index. The
// reader must be closed on every path.
func (s *Store) OpenReader(ctx context.Context) (*Reader, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, db.ErrDatabaseClosed
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, errors.WrapStoreIO(err, "acquire reader connection")
	}
	tx, err := conn.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		conn.Close()
		return nil, errors.WrapStoreIO(err, "begin read transaction")
	}

	// SQLite starts the snapshot at the first read, so read once now.
	var generation int64
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(id), 0) FROM documents").Scan(&generation); err != nil {
		tx.Rollback()
		conn.Close()
		return nil, errors.WrapStoreIO(err, "pin reader snapshot")
	}

	s.metrics.ReaderOpened()
	return &Reader{
		tx:         tx,
		conn:       conn,
		generation: generation,
		logger:     s.logger,
		metrics:    s.metrics,
	}, nil
}

// Stats counts the committed index.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	r, err := s.OpenReader(ctx)
	if err != nil {
		return Stats{}, err
	}
	defer r.Close()

	var st Stats
	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM documents", &st.Documents},
		{"SELECT COUNT(DISTINCT type) FROM document_types", &st.Types},
		{"SELECT COUNT(*) FROM document_fields", &st.Fields},
		{"SELECT COUNT(*) FROM document_labels", &st.Labels},
	}
	for _, c := range counts {
		if err := r.tx.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return Stats{}, errors.WrapStoreIO(err, "index stats")
		}
	}
	st.Pending = s.Pending()
	return st, nil
}

// Close commits pending writes and closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.commitLocked()
	if s.conn != nil {
		if cerr := s.conn.Close(); cerr != nil && err == nil {
			err = errors.WrapStoreIO(cerr, "close writer connection")
		}
		s.conn = nil
	}
	if cerr := s.db.Close(); cerr != nil && err == nil {
		err = errors.WrapStoreIO(cerr, "close index")
	}
	return err
}
