// Package testing provides fixtures shared by package tests.
package testing

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/teranos/entigraph/hierarchy"
	"github.com/teranos/entigraph/index"
)

// CreateTestStore opens a file-backed index under t.TempDir().
// A file is required: snapshot readers use separate WAL connections.
// Automatically registers cleanup via t.Cleanup().
func CreateTestStore(t *testing.T) *index.Store {
	t.Helper()

	store, err := index.Open(filepath.Join(t.TempDir(), "index.db"), zaptest.NewLogger(t).Sugar())
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// CreateTestHierarchy opens a type hierarchy file without fsync.
func CreateTestHierarchy(t *testing.T) *hierarchy.Resolver {
	t.Helper()

	h, err := hierarchy.Open(hierarchy.Config{
		Path:   filepath.Join(t.TempDir(), "types.db"),
		NoSync: true,
	}, zaptest.NewLogger(t).Sugar())
	if err != nil {
		t.Fatalf("Failed to create test hierarchy: %v", err)
	}

	t.Cleanup(func() {
		h.Close()
	})

	return h
}
