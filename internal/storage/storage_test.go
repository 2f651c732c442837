package storage

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ecoscan/internal/smells"
)

func setupTestDB(t *testing.T) (*DB, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), ".ecoscan", "ecoscan.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close database: %v", err)
		}
	})
	return db, dbPath
}

func TestDatabaseInitialization(t *testing.T) {
	db, dbPath := setupTestDB(t)

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatalf("Database file was not created at %s", dbPath)
	}
	version, err := db.getSchemaVersion()
	if err != nil {
		t.Fatalf("Failed to get schema version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("Expected schema version %d, got %d", currentSchemaVersion, version)
	}
}

func TestReopenExistingDatabase(t *testing.T) {
	db, dbPath := setupTestDB(t)
	if err := db.MarkFetched(context.Background(), "kept"); err != nil {
		t.Fatal(err)
	}

	again, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer again.Close()

	names, err := again.FetchedRepos(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !names["kept"] {
		t.Error("expected data to survive reopen")
	}
}

func TestMigrationFromV1(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "old.db")
	raw, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, stmt := range []string{
		"CREATE TABLE schema_version (version INTEGER NOT NULL)",
		"INSERT INTO schema_version (version) VALUES (1)",
		"CREATE TABLE analysis_runs (id TEXT PRIMARY KEY, source_name TEXT NOT NULL, created_at TEXT NOT NULL, issue_count INTEGER NOT NULL, original_emissions REAL NOT NULL, optimized_emissions REAL NOT NULL, reduction REAL NOT NULL, source_bytes INTEGER NOT NULL, source_blob BLOB NOT NULL, optimized_blob BLOB NOT NULL)",
	} {
		if _, err := raw.Exec(stmt); err != nil {
			t.Fatalf("setup %q: %v", stmt, err)
		}
	}
	raw.Close()

	db, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	version, err := db.getSchemaVersion()
	if err != nil {
		t.Fatal(err)
	}
	if version != currentSchemaVersion {
		t.Errorf("Expected migrated version %d, got %d", currentSchemaVersion, version)
	}
	if err := db.MarkFetched(context.Background(), "repo"); err != nil {
		t.Errorf("fetched_repos should exist after migration: %v", err)
	}
	if err := NewCache(db, time.Minute).Set(context.Background(), "k", "{}"); err != nil {
		t.Errorf("analysis_cache should exist after migration: %v", err)
	}
}

func TestMemoryDatabase(t *testing.T) {
	db, err := Open(MemoryPath, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if _, err := db.RecordRun(context.Background(), RunInput{SourceName: "mem.py"}); err != nil {
		t.Errorf("RecordRun on memory database failed: %v", err)
	}
}

func sampleRun() RunInput {
	return RunInput{
		SourceName: "app.py",
		Source:     strings.Repeat("items.append(1)\n", 50),
		Optimized:  "items.extend([1, 1, 1])\n",
		Issues: []smells.Issue{
			{Line: 1, Kind: smells.KindRepeatedAppend, Message: "Multiple list append operations", Recommendation: "Use list.extend()", Suggestion: "items.extend([1, 1, 1])"},
			{Line: 4, Kind: smells.KindUnusedVariable, Message: "Unused variable", Recommendation: "Remove unused variable 'x'", Suggestion: "# Remove declaration of 'x'"},
		},
		OriginalEmissions:  0.02,
		OptimizedEmissions: 0.01,
		Reduction:          50,
	}
}

func TestRecordAndGetRun(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()
	in := sampleRun()

	id, err := db.RecordRun(ctx, in)
	if err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected a run id")
	}

	got, err := db.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Source != in.Source || got.Optimized != in.Optimized {
		t.Error("texts did not survive compression")
	}
	if got.SourceBytes != int64(len(in.Source)) {
		t.Errorf("SourceBytes = %d, want %d", got.SourceBytes, len(in.Source))
	}
	if got.IssueCount != 2 || len(got.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %d/%d", got.IssueCount, len(got.Issues))
	}
	if got.Issues[0] != in.Issues[0] || got.Issues[1] != in.Issues[1] {
		t.Errorf("issues differ: %+v", got.Issues)
	}
	if got.Reduction != 50 {
		t.Errorf("Reduction = %v, want 50", got.Reduction)
	}
}

func TestGetRunNotFound(t *testing.T) {
	db, _ := setupTestDB(t)
	if _, err := db.GetRun(context.Background(), "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestListRuns(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"a.py", "b.py", "c.py"} {
		in := sampleRun()
		in.SourceName = name
		id, err := db.RecordRun(ctx, in)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}

	runs, err := db.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if runs[0].SourceName != "c.py" {
		t.Errorf("expected newest run first, got %s", runs[0].SourceName)
	}

	limited, err := db.ListRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 runs with limit, got %d", len(limited))
	}
}

func TestFetchedRepos(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"alpha", "beta", "alpha"} {
		if err := db.MarkFetched(ctx, name); err != nil {
			t.Fatalf("MarkFetched(%s) failed: %v", name, err)
		}
	}
	names, err := db.FetchedRepos(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || !names["alpha"] || !names["beta"] {
		t.Errorf("unexpected fetched set %v", names)
	}
}

func TestBlobRoundTrip(t *testing.T) {
	text := strings.Repeat("for i in range(len(x)):\n    pass\n", 100)
	blob := compressText(text)
	if len(blob) >= len(text) {
		t.Errorf("expected compression, got %d >= %d bytes", len(blob), len(text))
	}
	got, err := decompressText(blob)
	if err != nil {
		t.Fatal(err)
	}
	if got != text {
		t.Error("round trip changed the text")
	}
	if _, err := decompressText([]byte("not zstd")); err == nil {
		t.Error("expected an error for garbage input")
	}
}

func TestBlobEmptyText(t *testing.T) {
	blob := compressText("")
	if len(blob) == 0 {
		t.Fatal("empty text must still produce a frame")
	}
	got, err := decompressText(blob)
	if err != nil || got != "" {
		t.Errorf("decompressText = %q, %v", got, err)
	}
}
