package shared

import (
	"path/filepath"
	"testing"
)

func TestNewDatabase(t *testing.T) {
	t.Run("opens an in-memory database", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("NewDatabase() error = %v", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			t.Errorf("Ping() error = %v", err)
		}
	})

	t.Run("creates a file-backed database", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.db")
		db, err := NewDatabase(path)
		if err != nil {
			t.Fatalf("NewDatabase() error = %v", err)
		}
		defer db.Close()

		ConfigureDatabase(db, 5, 2)
		if _, err := db.Exec("CREATE TABLE t (id INTEGER)"); err != nil {
			t.Errorf("Exec() error = %v", err)
		}
	})
}

func TestRunMigrations(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}

	t.Run("creates the run history tables", func(t *testing.T) {
		for _, table := range []string{"schema_migrations", "transfer_runs", "transfer_failures"} {
			var name string
			err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
			if err != nil {
				t.Errorf("table %s missing: %v", table, err)
			}
		}
	})

	t.Run("records applied versions", func(t *testing.T) {
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("querying schema_migrations: %v", err)
		}
		if count == 0 {
			t.Error("no migrations recorded")
		}
	})

	t.Run("rerun is a no-op", func(t *testing.T) {
		var before int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&before); err != nil {
			t.Fatalf("querying schema_migrations: %v", err)
		}

		if err := RunMigrations(db); err != nil {
			t.Fatalf("second RunMigrations() error = %v", err)
		}

		var after int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&after); err != nil {
			t.Fatalf("querying schema_migrations: %v", err)
		}
		if before != after {
			t.Errorf("migration count changed from %d to %d", before, after)
		}
	})
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations()
	if err != nil {
		t.Fatalf("loadMigrations() error = %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("no embedded migrations found")
	}

	for i, m := range migrations {
		if m.Up == "" {
			t.Errorf("migration %d has no up SQL", m.Version)
		}
		if m.Down == "" {
			t.Errorf("migration %d has no down SQL", m.Version)
		}
		if i > 0 && migrations[i-1].Version >= m.Version {
			t.Error("migrations not sorted by version")
		}
	}
}
