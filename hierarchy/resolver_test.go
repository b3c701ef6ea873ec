package hierarchy

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/entigraph/metrics"
)

func openTestResolver(t *testing.T, path string) *Resolver {
	t.Helper()
	if path == "" {
		path = filepath.Join(t.TempDir(), "hierarchy.db")
	}
	r, err := Open(Config{Path: path, NoSync: true}, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	return r
}

func TestAncestorsChain(t *testing.T) {
	r := openTestResolver(t, "")
	defer r.Close()

	require.NoError(t, r.RecordParents("A", []string{"B"}))
	require.NoError(t, r.RecordParents("B", []string{"C"}))

	assert.ElementsMatch(t, []string{"A", "B", "C"}, r.Ancestors("A"))
	assert.Equal(t, []string{"A", "B", "C"}, r.Ancestors("A"), "breadth-first from the type itself")
	assert.Equal(t, []string{"C"}, r.Ancestors("C"))
}

func TestAncestorsCycle(t *testing.T) {
	r := openTestResolver(t, "")
	defer r.Close()

	require.NoError(t, r.RecordParents("A", []string{"B"}))
	require.NoError(t, r.RecordParents("B", []string{"A"}))

	assert.ElementsMatch(t, []string{"A", "B"}, r.Ancestors("A"))
	assert.ElementsMatch(t, []string{"A", "B"}, r.Ancestors("B"))
}

func TestUnknownTypeIsItsOwnAncestor(t *testing.T) {
	r := openTestResolver(t, "")
	defer r.Close()
	assert.Equal(t, []string{"Z"}, r.Ancestors("Z"))
}

func TestRecordParentsOverwritesAndInvalidatesCache(t *testing.T) {
	m := metrics.New()
	r := openTestResolver(t, "").WithMetrics(m)
	defer r.Close()

	require.NoError(t, r.RecordParents("A", []string{"B", "B", "", "A"}))
	parents, err := r.Parents("A")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, parents)
	assert.Equal(t, []string{"A", "B"}, r.Ancestors("A"))

	// idempotent
	require.NoError(t, r.RecordParents("A", []string{"B"}))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HierarchyEdges))

	require.NoError(t, r.RecordParents("A", []string{"D"}))
	assert.Equal(t, []string{"A", "D"}, r.Ancestors("A"))

	// a new edge higher up changes cached descendants too
	require.NoError(t, r.RecordParents("D", []string{"E"}))
	assert.Equal(t, []string{"A", "D", "E"}, r.Ancestors("A"))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.HierarchyEdges))
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hierarchy.db")
	r := openTestResolver(t, path)
	require.NoError(t, r.RecordParents("City", []string{"Place"}))
	require.NoError(t, r.Close())

	r = openTestResolver(t, path)
	defer r.Close()
	assert.Equal(t, []string{"City", "Place"}, r.Ancestors("City"))
	n, err := r.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIntersectsAnyAndClassify(t *testing.T) {
	r := openTestResolver(t, "")
	defer r.Close()

	require.NoError(t, r.RecordParents("wd:Q515", []string{"wd:Q486972"}))       // city -> human settlement
	require.NoError(t, r.RecordParents("wd:Q486972", []string{"schema:Place"}))  // settlement -> place
	require.NoError(t, r.RecordParents("wd:Q13442814", []string{"wd:Q191067"})) // scholarly article -> article

	blocklist := Set("wd:Q191067")
	assert.True(t, r.IntersectsAny("wd:Q13442814", blocklist))
	assert.False(t, r.IntersectsAny("wd:Q515", blocklist))
	assert.False(t, r.IntersectsAny("wd:Q515", nil))

	vocab := Set("schema:Place", "wd:Q486972", "schema:Person")
	assert.Equal(t, []string{"wd:Q486972", "schema:Place"}, r.Classify([]string{"wd:Q515", "wd:Q486972"}, vocab))
	assert.Empty(t, r.Classify([]string{"wd:Q13442814"}, vocab))
}

func TestConcurrentReadsAndWrites(t *testing.T) {
	r := openTestResolver(t, "")
	defer r.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			child := string(rune('a' + i))
			assert.NoError(t, r.RecordParents(child, []string{"root"}))
			assert.Contains(t, r.Ancestors(child), child)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		assert.Contains(t, r.Ancestors(string(rune('a'+i))), "root")
	}
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{}, nil)
	assert.Error(t, err)
}

func TestRecordParentsRejectsEmptyChild(t *testing.T) {
	r := openTestResolver(t, "")
	defer r.Close()
	assert.Error(t, r.RecordParents("", []string{"x"}))
}
