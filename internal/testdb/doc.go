//go:build integration

// Package testdb provides utilities for Postgres-backed integration tests.
//
// Each test runs in its own transaction, which is rolled back when the test
// completes, so tests can share one database without cleanup:
//
//	func TestMyFeature(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        users := postgres.NewPostgresUserStore(tx, nil)
//	        ...
//	    })
//	}
//
// Tests are skipped when DATABASE_URL (or TASKTRACKER_TEST_DB_URL) is unset.
package testdb
