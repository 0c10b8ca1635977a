package store

import (
	"context"
	"os"
	"testing"
)

// Integration test against a real MySQL server.
//
// Prerequisites:
//   - MySQL running (local, Docker, or cloud)
//   - TEST_MYSQL_DSN set, e.g.
//     export TEST_MYSQL_DSN="user:pass@tcp(localhost:3306)/dialtree_test?parseTime=true"
func TestMySQLIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("skipping MySQL integration test: set TEST_MYSQL_DSN to run")
	}

	s, err := NewMySQLStore(dsn)
	if err != nil {
		t.Fatalf("NewMySQLStore() error = %v", err)
	}
	defer s.Close()

	// leave no rows behind regardless of outcome
	defer func() { _ = s.Delete(context.Background(), "call-001") }()

	runStoreContract(t, s)
}
