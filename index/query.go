package index

import (
	"strings"
)

// Query is a node of the query tree. Nodes that contribute a relevance score
// also restrict the candidate set, so an unscored Scan can ignore scores.
type Query interface {
	apply(qb *queryBuilder)
}

// MatchAll matches every document with relevance 1.
type MatchAll struct{}

// Term matches documents holding an exact field value. KeyField matches the
// document key and TypeField one of its types. Term does not score.
type Term struct {
	Field string
	Value string
}

// FieldExists matches documents holding at least one of the named fields.
type FieldExists struct {
	Names []string
}

// Label matches the searchable label of a locale within Fuzziness edits.
// A token hit (one word of a longer label) scores half of a full-label hit,
// and every edit divides the score further.
type Label struct {
	Locale    string
	Text      string
	Fuzziness int
}

// And requires every clause. Must clauses score, Filter clauses only
// restrict.
type And struct {
	Must   []Query
	Filter []Query
}

// scoreClause is one relevance expression with its bind arguments.
type scoreClause struct {
	expr string
	args []interface{}
}

// queryBuilder accumulates WHERE clauses and relevance expressions over the
// documents table aliased as d.
type queryBuilder struct {
	whereClauses []string
	args         []interface{}
	scores       []scoreClause
}

// addClause appends a WHERE clause with its arguments
func (qb *queryBuilder) addClause(clause string, args ...interface{}) {
	qb.whereClauses = append(qb.whereClauses, clause)
	qb.args = append(qb.args, args...)
}

func (qb *queryBuilder) addScore(expr string, args ...interface{}) {
	qb.scores = append(qb.scores, scoreClause{expr: expr, args: args})
}

// where returns the WHERE clauses joined with AND, or "1" when empty.
func (qb *queryBuilder) where() string {
	if len(qb.whereClauses) == 0 {
		return "1"
	}
	return strings.Join(qb.whereClauses, " AND ")
}

// relevance returns the summed relevance expression and its arguments.
func (qb *queryBuilder) relevance() (string, []interface{}) {
	if len(qb.scores) == 0 {
		return "1.0", nil
	}
	exprs := make([]string, len(qb.scores))
	var args []interface{}
	for i, s := range qb.scores {
		exprs[i] = "COALESCE(" + s.expr + ", 0)"
		args = append(args, s.args...)
	}
	return "(" + strings.Join(exprs, " + ") + ")", args
}

func compile(q Query) *queryBuilder {
	qb := &queryBuilder{}
	if q == nil {
		q = MatchAll{}
	}
	q.apply(qb)
	return qb
}

func (MatchAll) apply(qb *queryBuilder) {}

func (t Term) apply(qb *queryBuilder) {
	switch t.Field {
	case KeyField:
		qb.addClause("d.iri = ?", t.Value)
	case TypeField:
		qb.addClause("d.id IN (SELECT doc_id FROM document_types WHERE type = ?)", t.Value)
	default:
		qb.addClause("d.id IN (SELECT doc_id FROM document_fields WHERE name = ? AND value = ?)", t.Field, t.Value)
	}
}

func (f FieldExists) apply(qb *queryBuilder) {
	var stored []interface{}
	hasType, hasKey := false, false
	for _, name := range f.Names {
		switch name {
		case TypeField:
			hasType = true
		case KeyField:
			hasKey = true
		default:
			stored = append(stored, name)
		}
	}
	if hasKey {
		// every document has a key
		return
	}

	var alts []string
	if hasType {
		alts = append(alts, "d.id IN (SELECT doc_id FROM document_types)")
	}
	if len(stored) > 0 {
		alts = append(alts, "d.id IN (SELECT doc_id FROM document_fields WHERE name IN ("+placeholders(len(stored))+"))")
	}
	if len(alts) == 0 {
		qb.addClause("0")
		return
	}
	qb.addClause("("+strings.Join(alts, " OR ")+")", stored...)
}

func (l Label) apply(qb *queryBuilder) {
	text := NormalizeLabel(l.Text)
	if text == "" {
		qb.addClause("0")
		return
	}
	k := l.Fuzziness
	if k <= 0 {
		qb.addClause(`d.id IN (SELECT doc_id FROM document_labels
			WHERE locale = ? AND label = ?)`, l.Locale, text)
		qb.addScore(`(SELECT MAX(CASE WHEN lb.token = 1 THEN 0.5 ELSE 1.0 END)
			FROM document_labels lb
			WHERE lb.doc_id = d.id AND lb.locale = ? AND lb.label = ?)`, l.Locale, text)
		return
	}

	n := runeLen(text)
	qb.addClause(`d.id IN (SELECT doc_id FROM document_labels
		WHERE locale = ? AND label_len BETWEEN ? AND ?
		AND edit_distance(label, ?, ?) <= ?)`,
		l.Locale, n-k, n+k, text, k, k)
	qb.addScore(`(SELECT MAX((CASE WHEN lb.token = 1 THEN 0.5 ELSE 1.0 END)
			/ (1 + edit_distance(lb.label, ?, ?)))
		FROM document_labels lb
		WHERE lb.doc_id = d.id AND lb.locale = ? AND lb.label_len BETWEEN ? AND ?
		AND edit_distance(lb.label, ?, ?) <= ?)`,
		text, k, l.Locale, n-k, n+k, text, k, k)
}

func (a And) apply(qb *queryBuilder) {
	for _, q := range a.Must {
		if q != nil {
			q.apply(qb)
		}
	}
	for _, q := range a.Filter {
		if q == nil {
			continue
		}
		sub := &queryBuilder{}
		q.apply(sub)
		qb.whereClauses = append(qb.whereClauses, sub.whereClauses...)
		qb.args = append(qb.args, sub.args...)
	}
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
