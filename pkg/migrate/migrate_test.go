package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateDirShippedMigrations(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("shipped migrations invalid: %v", err)
	}
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	write("bad-name.sql", "-- +goose Up\n-- +goose Down\n")
	if err := ValidateDir(dir); err == nil || !strings.Contains(err.Error(), "invalid migration filename") {
		t.Fatalf("expected filename error, got %v", err)
	}
	os.Remove(filepath.Join(dir, "bad-name.sql"))

	write("20250101000000_missing_down.sql", "-- +goose Up\n")
	if err := ValidateDir(dir); err == nil || !strings.Contains(err.Error(), "goose Down") {
		t.Fatalf("expected missing down error, got %v", err)
	}
	os.Remove(filepath.Join(dir, "20250101000000_missing_down.sql"))

	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected empty dir to fail")
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Product Sort!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_product_sort.sql") {
		t.Fatalf("unexpected filename %s", path)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
	if _, err := CreateSQLMigration(dir, "!!!"); err == nil {
		t.Fatal("expected sanitized-empty name to fail")
	}
}

func TestCreateSQLMigrationSortsAfterExisting(t *testing.T) {
	dir := t.TempDir()
	future := "29990101000000_future_change.sql"
	if err := os.WriteFile(filepath.Join(dir, future), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	path, err := CreateSQLMigration(dir, "after future")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if filepath.Base(path) != "29990101000001_after_future.sql" {
		t.Fatalf("expected version after existing file, got %s", filepath.Base(path))
	}
}

func TestValidateDirRejectsUnbalancedStatements(t *testing.T) {
	dir := t.TempDir()
	body := "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n"
	if err := os.WriteFile(filepath.Join(dir, "20250101000000_unbalanced.sql"), []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ValidateDir(dir); err == nil || !strings.Contains(err.Error(), "StatementBegin") {
		t.Fatalf("expected statement balance error, got %v", err)
	}
}

func TestEmbeddedMigrationsMatchShippedDir(t *testing.T) {
	entries, err := embedded.ReadDir(embeddedDir)
	if err != nil {
		t.Fatalf("read embedded: %v", err)
	}
	onDisk, err := os.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != len(onDisk) {
		t.Fatalf("embedded %d files, on disk %d", len(entries), len(onDisk))
	}
}
