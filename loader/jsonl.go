package loader

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/teranos/entigraph/codec"
	"github.com/teranos/entigraph/db"
	"github.com/teranos/entigraph/errors"
	"github.com/teranos/entigraph/logger"
	"github.com/teranos/entigraph/model"
)

// Record is one line of the JSON-lines input. A line with an IRI is an
// entity; a line with a Type and Parents records type edges. A line may
// carry both.
//
//	{"iri":"wd:Q90","types":["wd:Q515"],"rank":312,
//	 "claims":[{"property":"schema:name","value":"Paris","locale":"fr"}]}
//	{"type":"wd:Q515","parents":["wd:Q486972"]}
type Record struct {
	IRI     string        `json:"iri,omitempty"`
	Types   []string      `json:"types,omitempty"`
	Rank    float64       `json:"rank,omitempty"`
	Claims  []RecordClaim `json:"claims,omitempty"`
	Type    string        `json:"type,omitempty"`
	Parents []string      `json:"parents,omitempty"`
}

// RecordClaim is a claim in lexical form. The value is parsed according
// to the property's kind.
type RecordClaim struct {
	Property string `json:"property"`
	Value    string `json:"value"`
	Locale   string `json:"locale,omitempty"`
}

// Entity builds the typed entity for r. Claims on unknown properties are
// kept as plain strings so the codec reports and drops them; values that
// do not parse are dropped here.
func (l *Loader) Entity(r Record) *model.Entity {
	ns := l.opts.Namespaces
	e := model.NewEntity(r.IRI)
	e.Rank = r.Rank
	for _, t := range r.Types {
		e.AddType(t)
	}
	for _, c := range r.Claims {
		property := ns.Expand(c.Property)
		p, ok := l.codec.Schema().Property(property)
		if !ok {
			e.AddClaim(property, model.StringValue{Text: c.Value})
			continue
		}
		v, err := codec.ParseValue(p.Kind, c.Value, model.NormalizeLocale(c.Locale))
		if err != nil {
			l.metrics.ClaimDropped(codec.ReasonUnparseable)
			l.logger.Warnw("Dropped unparseable claim",
				logger.FieldIRI, r.IRI,
				logger.FieldProperty, property,
				logger.FieldValue, c.Value,
				logger.FieldError, err,
			)
			continue
		}
		e.AddClaim(property, v)
	}
	return e
}

// LoadJSONLines ingests every record of r and refreshes at the end. Bad
// lines and failed documents are counted and skipped; a closed store, a
// cancelled context or unreadable input stops the load.
func (l *Loader) LoadJSONLines(ctx context.Context, r io.Reader) (Stats, error) {
	start := time.Now()
	dec := json.NewDecoder(r)
	line := 0
	for {
		if err := ctx.Err(); err != nil {
			return l.Stats(), err
		}
		var rec Record
		err := dec.Decode(&rec)
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				return l.Stats(), errors.Wrapf(err, "record %d", line)
			}
			l.failed.Add(1)
			l.logger.Warnw("Skipping malformed record", "line", line, logger.FieldError, err)
			continue
		}

		if rec.Type != "" && len(rec.Parents) > 0 && l.hierarchy != nil {
			if err := l.RecordTypes(rec.Type, rec.Parents); err != nil {
				l.logger.Warnw("Failed to record type parents", logger.FieldType, rec.Type, logger.FieldError, err)
			}
		}
		if rec.IRI == "" {
			continue
		}
		if err := l.AddResource(ctx, l.Entity(rec)); err != nil {
			if db.IsDatabaseClosed(err) || errors.Is(err, context.Canceled) {
				return l.Stats(), err
			}
			// already counted and logged
			continue
		}
	}

	if err := l.Refresh(ctx); err != nil {
		return l.Stats(), err
	}
	stats := l.Stats()
	l.logger.Infow("Load complete",
		"added", stats.Added,
		"rejected", stats.Rejected,
		"failed", stats.Failed,
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return stats, nil
}
