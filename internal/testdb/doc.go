// Package testdb provides utilities specifically for database testing.
//
// PostgreSQL helpers only run when DATABASE_URL (or CROSSPLAY_TEST_DB_URL)
// points at a reachable server; tests call ShouldSkipDatabaseTest or
// IsIntegrationTestEnvironment and skip otherwise. SQLite helpers always
// work because the database lives in a per-test temp directory.
package testdb
