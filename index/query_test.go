package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keys(hits []ScoreDoc) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Key
	}
	return out
}

func refKeys(refs []DocRef) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.Key
	}
	return out
}

func TestSearchExactLabel(t *testing.T) {
	s := newTestStore(t)
	upsertAll(t, s,
		testDoc("e:london", 0, "London"),
		testDoc("e:greater", 0, "Greater London"),
		testDoc("e:paris", 0, "Paris"),
	)
	r := openReader(t, s)

	hits, err := r.Search(context.Background(), Label{Locale: "en", Text: "  LONDON "}, nil, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"e:london", "e:greater"}, keys(hits))
	assert.Equal(t, 1.0, hits[0].Score)
	assert.Equal(t, 0.5, hits[1].Score, "token hits weigh half")
}

func TestSearchLabelIsLocaleSpecific(t *testing.T) {
	s := newTestStore(t)
	d := &Document{Key: "e:1"}
	d.AddLabel("fr", "Londres")
	upsertAll(t, s, d)
	r := openReader(t, s)

	hits, err := r.Search(context.Background(), Label{Locale: "en", Text: "londres"}, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = r.Search(context.Background(), Label{Locale: "fr", Text: "londres"}, nil, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestSearchFuzzy(t *testing.T) {
	s := newTestStore(t)
	upsertAll(t, s, testDoc("e:london", 0, "london"), testDoc("e:lisbon", 0, "lisbon"))
	r := openReader(t, s)
	ctx := context.Background()

	hits, err := r.Search(ctx, Label{Locale: "en", Text: "lonxon"}, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = r.Search(ctx, Label{Locale: "en", Text: "lonxon", Fuzziness: 1}, nil, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"e:london"}, keys(hits))
	assert.Equal(t, 0.5, hits[0].Score)

	hits, err = r.Search(ctx, Label{Locale: "en", Text: "lonxxn", Fuzziness: 1}, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = r.Search(ctx, Label{Locale: "en", Text: "lonxxn", Fuzziness: 2}, nil, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"e:london"}, keys(hits))
}

func TestSearchMatchesWholeLabelOrSingleToken(t *testing.T) {
	s := newTestStore(t)
	upsertAll(t, s, testDoc("e:obama", 0, "Barack Hussein Obama"))
	r := openReader(t, s)
	ctx := context.Background()

	for _, text := range []string{"barack hussein obama", "obama", "hussein"} {
		hits, err := r.Search(ctx, Label{Locale: "en", Text: text}, nil, 10)
		require.NoError(t, err)
		assert.Len(t, hits, 1, text)
	}

	// several words only ever match the whole label
	hits, err := r.Search(ctx, Label{Locale: "en", Text: "barack obama", Fuzziness: 2}, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchBoostAndTieOrder(t *testing.T) {
	s := newTestStore(t)
	upsertAll(t, s,
		testDoc("e:a", 0, "springfield"),
		testDoc("e:b", 100, "springfield"),
		testDoc("e:c", 0, "springfield"),
	)
	r := openReader(t, s)

	hits, err := r.Search(context.Background(), Label{Locale: "en", Text: "springfield"}, nil, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"e:b", "e:a", "e:c"}, keys(hits))
	assert.InDelta(t, BoostForRank(100), hits[0].Score, 1e-12)
}

func TestSearchContinuesAfterMarker(t *testing.T) {
	s := newTestStore(t)
	upsertAll(t, s,
		testDoc("e:1", 0, "oak"),
		testDoc("e:2", 3, "oak"),
		testDoc("e:3", 0, "oak"),
		testDoc("e:4", 0, "oak tree"),
	)
	r := openReader(t, s)
	ctx := context.Background()
	q := Label{Locale: "en", Text: "oak"}

	var all []string
	var after *ScoreDoc
	for {
		page, err := r.Search(ctx, q, after, 2)
		require.NoError(t, err)
		all = append(all, keys(page)...)
		if len(page) < 2 {
			break
		}
		last := page[len(page)-1]
		after = &last
	}
	assert.Equal(t, []string{"e:2", "e:1", "e:3", "e:4"}, all)
}

func TestSearchMatchAllAndFilters(t *testing.T) {
	s := newTestStore(t)
	person := &Document{Key: "e:ada", Types: []string{"t:Person"}, Rank: 1}
	person.AddLabel("en", "Ada Lovelace")
	person.Add("p:born", "1815")
	place := &Document{Key: "e:ada-ok", Types: []string{"t:Place"}}
	place.AddLabel("en", "Ada")
	upsertAll(t, s, person, place)
	r := openReader(t, s)
	ctx := context.Background()

	hits, err := r.Search(ctx, MatchAll{}, nil, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"e:ada", "e:ada-ok"}, keys(hits), "rank boost orders match-all")

	hits, err = r.Search(ctx, Term{Field: TypeField, Value: "t:Place"}, nil, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"e:ada-ok"}, keys(hits))

	q := And{
		Must:   []Query{Label{Locale: "en", Text: "ada"}},
		Filter: []Query{Term{Field: TypeField, Value: "t:Person"}},
	}
	hits, err = r.Search(ctx, q, nil, 10)
	require.NoError(t, err)
	require.Equal(t, []string{"e:ada"}, keys(hits))
	assert.InDelta(t, 0.5*BoostForRank(1), hits[0].Score, 1e-12, "filters do not score")

	hits, err = r.Search(ctx, Term{Field: KeyField, Value: "e:ada-ok"}, nil, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"e:ada-ok"}, keys(hits))

	hits, err = r.Search(ctx, Term{Field: "p:born", Value: "1815"}, nil, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"e:ada"}, keys(hits))
}

func TestScan(t *testing.T) {
	s := newTestStore(t)
	var docs []*Document
	for _, k := range []string{"e:1", "e:2", "e:3", "e:4", "e:5"} {
		d := &Document{Key: k}
		if k != "e:3" {
			d.Add("p:x@en", "v")
		}
		docs = append(docs, d)
	}
	upsertAll(t, s, docs...)
	r := openReader(t, s)
	ctx := context.Background()

	page, err := r.Scan(ctx, FieldExists{Names: []string{"p:x@en", "p:x@fr"}}, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"e:1", "e:2"}, refKeys(page))

	page, err = r.Scan(ctx, FieldExists{Names: []string{"p:x@en"}}, page[1].ID, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"e:4", "e:5"}, refKeys(page))

	page, err = r.Scan(ctx, FieldExists{}, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, page)

	page, err = r.Scan(ctx, nil, 0, 10)
	require.NoError(t, err)
	assert.Len(t, page, 5)

	_, err = r.Scan(ctx, nil, 0, 0)
	assert.Error(t, err)
}

func TestLabelTerms(t *testing.T) {
	full, tokens := labelTerms("new york new")
	assert.Equal(t, "new york new", full)
	assert.Equal(t, []string{"new", "york"}, tokens)

	full, tokens = labelTerms("rome")
	assert.Equal(t, "rome", full)
	assert.Nil(t, tokens)
}

func TestBoostForRank(t *testing.T) {
	assert.Equal(t, 1.0, BoostForRank(0))
	assert.Equal(t, 1.0, BoostForRank(-3))
	assert.Greater(t, BoostForRank(10), BoostForRank(1))
}
