package database

import (
	"path/filepath"
	"testing"

	"chorequest/migrations"
)

// TestDatabaseIntegration runs the real migrations against SQLite and
// checks the schema and transaction wiring end to end.
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := Initialize(filepath.Join(t.TempDir(), "integration.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(migrations.FS); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	tables := []string{
		"users", "families", "family_members", "kids", "tasks",
		"point_logs", "streaks", "reward_requests", "redemptions", "invitations",
	}
	for _, table := range tables {
		var name string
		query := "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
		if err := db.QueryRow(query, table).Scan(&name); err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	// Rerunning migrations must be a no-op.
	if err := db.RunMigrations(migrations.FS); err != nil {
		t.Fatalf("Rerunning migrations failed: %v", err)
	}
}

func TestTransactionRollback(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := Initialize(filepath.Join(t.TempDir(), "rollback.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(migrations.FS); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if _, err := tx.ExecReturningID(
		"INSERT INTO kids (name, avatar_color, pin_hash, access_token) VALUES (?, ?, ?, ?)",
		"Ghost", "red", "", "tok",
	); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM kids").Scan(&count); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("rolled back insert should not persist, count = %d", count)
	}
}

func TestExecReturningID(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := Initialize(filepath.Join(t.TempDir(), "ids.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(migrations.FS); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	first, err := db.ExecReturningID(
		"INSERT INTO families (name, join_code) VALUES (?, ?)", "One", "code0001")
	if err != nil {
		t.Fatalf("ExecReturningID failed: %v", err)
	}
	second, err := db.ExecReturningID(
		"INSERT INTO families (name, join_code) VALUES (?, ?)", "Two", "code0002")
	if err != nil {
		t.Fatalf("ExecReturningID failed: %v", err)
	}
	if first <= 0 || second != first+1 {
		t.Errorf("ids = %d, %d; want consecutive positive ids", first, second)
	}
}
