// Package triples presents the entity index as a source of
// subject-predicate-object statements for a graph query evaluator.
package triples

import (
	"fmt"

	"github.com/teranos/entigraph/model"
)

// Triple is one statement. Objects of rdf:type statements are resources.
type Triple struct {
	Subject   string
	Predicate string
	Object    model.Value
}

func (t Triple) String() string {
	return fmt.Sprintf("<%s> <%s> %v", t.Subject, t.Predicate, t.Object)
}

// Pattern is a triple with optional components. An empty Subject or
// Predicate, or a nil Object, is unbound.
type Pattern struct {
	Subject   string
	Predicate string
	Object    model.Value
}

func (p Pattern) String() string {
	s, pr, o := "?s", "?p", "?o"
	if p.Subject != "" {
		s = "<" + p.Subject + ">"
	}
	if p.Predicate != "" {
		pr = "<" + p.Predicate + ">"
	}
	if p.Object != nil {
		o = fmt.Sprint(p.Object)
	}
	return s + " " + pr + " " + o
}

// Strategy names the evaluation path chosen for a pattern.
type Strategy string

const (
	StrategySubjectPredicateObject Strategy = "subject_predicate_object"
	StrategySubjectPredicate       Strategy = "subject_predicate"
	StrategySubjectObject          Strategy = "subject_object"
	StrategySubject                Strategy = "subject"
	StrategyPredicateObject        Strategy = "predicate_object"
	StrategyPredicate              Strategy = "predicate"
	StrategyScan                   Strategy = "scan"
)

func typeTriple(subject, typ string) Triple {
	return Triple{Subject: subject, Predicate: model.RDFType, Object: model.ResourceValue{IRI: typ}}
}
