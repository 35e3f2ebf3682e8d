package helpers

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/xiaot623/gogo/companion/internal/repository"
)

func NewTestSQLiteStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()

	s, err := repository.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

// NewTestRepository returns a repository over an in-memory SQLite store.
func NewTestRepository(t *testing.T, opts ...repository.Option) *repository.Repository {
	t.Helper()
	return repository.New(NewTestSQLiteStore(t), zaptest.NewLogger(t), opts...)
}
