package repository

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/pressly/goose/v3"

	"github.com/recipebox/recipebox-go/internal/repository/migrations"
)

func TestNewDB_InvalidDSN(t *testing.T) {
	if _, err := NewDB(context.Background(), "not a dsn"); err == nil {
		t.Fatal("NewDB() with an invalid DSN should fail")
	}
}

func TestMigrate_UsesEmbeddedMigrations(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	if err := Migrate(context.Background(), nil); err != nil {
		t.Fatalf("Migrate() unexpected error: %v", err)
	}
	if gotDir != "." {
		t.Errorf("migration dir = %q, want %q", gotDir, ".")
	}
}

func TestMigrate_WrapsError(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	boom := errors.New("boom")
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return boom
	}

	err := Migrate(context.Background(), nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Migrate() error = %v, want wrapped %v", err, boom)
	}
}

func TestMigrationFiles(t *testing.T) {
	files, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		t.Fatalf("Glob() unexpected error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d migration files, want 2: %v", len(files), files)
	}
}
