package testutil

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"soundboard/pkg/store"
)

// NewSQLiteStore returns a migrated GormStore backed by a private in-memory SQLite database.
func NewSQLiteStore(t *testing.T) *store.GormStore {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	st, err := store.NewGormStoreWithDialector(sqlite.Open(dsn))
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("failed to close database: %v", err)
		}
	})
	return st
}
