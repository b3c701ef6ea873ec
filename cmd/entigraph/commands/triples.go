package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/entigraph/codec"
	"github.com/teranos/entigraph/errors"
	"github.com/teranos/entigraph/logger"
	"github.com/teranos/entigraph/model"
	"github.com/teranos/entigraph/triples"
)

// TriplesCmd evaluates one triple pattern
var TriplesCmd = &cobra.Command{
	Use:   "triples",
	Short: "Evaluate a triple pattern",
	Long: `Evaluate a subject-predicate-object pattern against the index.
Unset components are variables. An object without a predicate is not
supported. Objects are parsed according to the predicate's kind.

Examples:
  entigraph triples --subject wd:Q42
  entigraph triples --predicate rdf:type --object wd:Q5 --max 100
  entigraph triples --predicate schema:name --object Paris --locale fr`,
	RunE: runTriples,
}

var (
	triplesSubject   string
	triplesPredicate string
	triplesObject    string
	triplesLocale    string
	triplesMax       int
)

func init() {
	TriplesCmd.Flags().StringVarP(&triplesSubject, "subject", "s", "", "Bound subject IRI")
	TriplesCmd.Flags().StringVarP(&triplesPredicate, "predicate", "p", "", "Bound predicate IRI")
	TriplesCmd.Flags().StringVarP(&triplesObject, "object", "o", "", "Bound object (lexical form)")
	TriplesCmd.Flags().StringVarP(&triplesLocale, "locale", "l", "", "Locale of a localized string object")
	TriplesCmd.Flags().IntVarP(&triplesMax, "max", "n", 50, "Stop after this many triples (0 = all)")
}

func runTriples(cmd *cobra.Command, args []string) error {
	e, err := openEnv(envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	pattern := triples.Pattern{}
	if triplesSubject != "" {
		pattern.Subject = e.expand(triplesSubject)
	}
	if triplesPredicate != "" {
		pattern.Predicate = e.expand(triplesPredicate)
	}
	if triplesObject != "" {
		obj, err := parseObject(e, pattern.Predicate, triplesObject, triplesLocale)
		if err != nil {
			return err
		}
		pattern.Object = obj
	}

	strategy, err := triples.Plan(pattern)
	if err != nil {
		return err
	}
	logger.Logger.Debugw("Evaluating pattern", logger.FieldStrategy, strategy, "pattern", pattern.String())

	source := triples.NewSource(e.store, e.codec, e.cfg.TriplesOptions(), logger.ComponentLogger("triples")).
		WithMetrics(e.metrics)
	it, err := source.Statements(cmd.Context(), pattern)
	if err != nil {
		return err
	}
	defer it.Close()

	data := pterm.TableData{{"Subject", "Predicate", "Object"}}
	n := 0
	for it.Next() {
		t := it.Triple()
		data = append(data, []string{e.compact(t.Subject), e.compact(t.Predicate), displayValue(e, t.Object)})
		n++
		if triplesMax > 0 && n >= triplesMax {
			break
		}
	}
	if err := it.Err(); err != nil {
		return err
	}

	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	pterm.Printfln("%d triples (%s)", n, strategy)
	return nil
}

// parseObject types a lexical object by the predicate. Without a predicate
// the object stays a plain string and the pattern is rejected by Plan.
func parseObject(e *env, predicate, lexical, locale string) (model.Value, error) {
	switch predicate {
	case "":
		return model.StringValue{Text: lexical}, nil
	case model.RDFType:
		return model.ResourceValue{IRI: e.expand(lexical)}, nil
	}
	prop, ok := e.schema.Property(predicate)
	if !ok {
		return nil, errors.NewInvalidRequestError("unknown property %s", predicate)
	}
	if prop.Kind == model.KindResource {
		lexical = e.expand(lexical)
	}
	if prop.Kind == model.KindLocalizedString && locale == "" {
		locale = e.codec.Locales().List()[0]
	}
	v, err := codec.ParseValue(prop.Kind, lexical, locale)
	if err != nil {
		return nil, errors.NewInvalidRequestError("object %q is not a valid %s: %v", lexical, prop.Kind, err)
	}
	return v, nil
}
