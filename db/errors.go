package db

import (
	"strings"

	"github.com/teranos/entigraph/errors"
)

// ErrDatabaseClosed is returned by stores used after Close.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed reports whether err means the handle is gone, either
// ErrDatabaseClosed or the database/sql message for a closed *sql.DB.
// Loaders stop on it instead of counting every remaining record as failed.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDatabaseClosed) {
		return true
	}
	return strings.Contains(err.Error(), "database is closed")
}
