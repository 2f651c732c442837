package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ecoscan/internal/config"
	ecoerrors "ecoscan/internal/errors"
	"ecoscan/internal/storage"
)

func testDatasetConfig(t *testing.T, apiURL string) config.DatasetConfig {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig().Dataset
	cfg.APIBaseURL = apiURL
	cfg.RawDir = filepath.Join(dir, "raw")
	cfg.CSVPath = filepath.Join(dir, "labels.csv")
	cfg.FetchedLog = filepath.Join(dir, "fetched.log")
	cfg.MaxRepos = 10
	return cfg
}

func TestLogStore(t *testing.T) {
	ctx := context.Background()
	store := NewLogStore(filepath.Join(t.TempDir(), "nested", "fetched.log"))

	names, err := store.FetchedRepos(ctx)
	if err != nil || len(names) != 0 {
		t.Fatalf("FetchedRepos() on missing log = %v, %v", names, err)
	}

	for _, name := range []string{"alpha", "beta"} {
		if err := store.MarkFetched(ctx, name); err != nil {
			t.Fatalf("MarkFetched(%s) error = %v", name, err)
		}
	}
	names, err = store.FetchedRepos(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !names["alpha"] || !names["beta"] || len(names) != 2 {
		t.Errorf("FetchedRepos() = %v", names)
	}
}

func TestFetch(t *testing.T) {
	gh := newFakeGitHub(t, []string{"alpha", "beta", "gamma", "delta"}, map[string]map[string]string{
		"alpha": {"a.py": "x = 1\n"},
		"beta":  {"b.py": "y = 2\n"},
		"gamma": {"notes.txt": "none"},
	})
	cfg := testDatasetConfig(t, gh.URL)
	store := NewLogStore(cfg.FetchedLog)
	if err := store.MarkFetched(context.Background(), "beta"); err != nil {
		t.Fatal(err)
	}

	stats, err := NewPipeline(cfg, store, nil).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	want := FetchStats{Found: 4, Skipped: 1, Downloaded: 1, NoSample: 1, Failed: 1}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}

	data, err := os.ReadFile(filepath.Join(cfg.RawDir, "alpha.py"))
	if err != nil || string(data) != "x = 1\n" {
		t.Errorf("alpha.py = %q, %v", data, err)
	}
	if _, err := os.Stat(filepath.Join(cfg.RawDir, "beta.py")); !os.IsNotExist(err) {
		t.Error("beta was already fetched and should be skipped")
	}

	names, _ := store.FetchedRepos(context.Background())
	if !names["alpha"] {
		t.Error("alpha should be recorded as fetched")
	}
}

func TestFetch_SQLiteStore(t *testing.T) {
	gh := newFakeGitHub(t, []string{"alpha"}, map[string]map[string]string{
		"alpha": {"a.py": "x = 1\n"},
	})
	cfg := testDatasetConfig(t, gh.URL)

	db, err := storage.Open(storage.MemoryPath, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	p := NewPipeline(cfg, db, nil)
	if _, err := p.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	stats, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("second Fetch() error = %v", err)
	}
	if stats.Skipped != 1 || stats.Downloaded != 0 {
		t.Errorf("second pass stats = %+v, want alpha skipped", *stats)
	}
}

func TestFetch_SearchFailure(t *testing.T) {
	gh := newFakeGitHub(t, nil, nil)
	gh.searchStatus = 401
	cfg := testDatasetConfig(t, gh.URL)

	_, err := NewPipeline(cfg, nil, nil).Fetch(context.Background())
	if !ecoerrors.HasCode(err, ecoerrors.FetchFailed) {
		t.Errorf("expected FETCH_FAILED, got %v", err)
	}
}
