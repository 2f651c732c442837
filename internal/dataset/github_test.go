package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// fakeGitHub serves a search result with the given repositories, a contents
// listing per repository and the raw files behind it.
type fakeGitHub struct {
	*httptest.Server
	files        map[string]map[string]string // repo -> file name -> content
	repos        []string
	searchStatus int
	authHeader   atomic.Value
	searchQuery  atomic.Value
}

func newFakeGitHub(t *testing.T, repos []string, files map[string]map[string]string) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{files: files, repos: repos, searchStatus: http.StatusOK}
	mux := http.NewServeMux()

	mux.HandleFunc("/search/repositories", func(w http.ResponseWriter, r *http.Request) {
		f.authHeader.Store(r.Header.Get("Authorization"))
		f.searchQuery.Store(r.URL.RawQuery)
		if f.searchStatus != http.StatusOK {
			w.WriteHeader(f.searchStatus)
			return
		}
		items := make([]map[string]string, 0, len(f.repos))
		for _, name := range f.repos {
			items = append(items, map[string]string{
				"name":         name,
				"full_name":    "owner/" + name,
				"contents_url": f.URL + "/repos/owner/" + name + "/contents/{+path}",
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"total_count": len(items), "items": items})
	})

	mux.HandleFunc("/repos/owner/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/repos/owner/"), "/contents/")
		repoFiles, ok := f.files[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		entries := []map[string]string{{"name": "docs", "type": "dir"}}
		for fileName := range repoFiles {
			entries = append(entries, map[string]string{
				"name":         fileName,
				"type":         "file",
				"download_url": fmt.Sprintf("%s/raw/%s/%s", f.URL, name, fileName),
			})
		}
		_ = json.NewEncoder(w).Encode(entries)
	})

	mux.HandleFunc("/raw/", func(w http.ResponseWriter, r *http.Request) {
		parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/raw/"), "/", 2)
		content, ok := f.files[parts[0]][parts[1]]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(content))
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func TestSearchRepositories(t *testing.T) {
	gh := newFakeGitHub(t, []string{"alpha", "beta"}, nil)
	client := NewClient(gh.URL, "secret", nil)

	repos, err := client.SearchRepositories(context.Background(), "language:python", 250)
	if err != nil {
		t.Fatalf("SearchRepositories() error = %v", err)
	}
	if len(repos) != 2 || repos[0].Name != "alpha" || repos[1].FullName != "owner/beta" {
		t.Errorf("SearchRepositories() = %+v", repos)
	}

	if got := gh.authHeader.Load(); got != "token secret" {
		t.Errorf("Authorization = %v, want %q", got, "token secret")
	}
	query := gh.searchQuery.Load().(string)
	for _, want := range []string{"per_page=100", "sort=stars", "q=language%3Apython"} {
		if !strings.Contains(query, want) {
			t.Errorf("query %q missing %q", query, want)
		}
	}
}

func TestSearchRepositories_NoToken(t *testing.T) {
	gh := newFakeGitHub(t, nil, nil)
	if _, err := NewClient(gh.URL, "", nil).SearchRepositories(context.Background(), "q", 5); err != nil {
		t.Fatalf("SearchRepositories() error = %v", err)
	}
	if got := gh.authHeader.Load(); got != "" {
		t.Errorf("Authorization = %v, want empty", got)
	}
}

func TestSearchRepositories_ClientError(t *testing.T) {
	gh := newFakeGitHub(t, nil, nil)
	gh.searchStatus = http.StatusForbidden

	_, err := NewClient(gh.URL, "", nil).SearchRepositories(context.Background(), "q", 5)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected a 403 StatusError, got %v", err)
	}
}

func TestDownloadSample(t *testing.T) {
	gh := newFakeGitHub(t, []string{"alpha"}, map[string]map[string]string{
		"alpha": {"main.py": "print('hi')\n"},
	})
	client := NewClient(gh.URL, "", nil)

	sample, ok, err := client.DownloadSample(context.Background(), gh.URL+"/repos/owner/alpha/contents/{+path}")
	if err != nil || !ok {
		t.Fatalf("DownloadSample() = ok %v, err %v", ok, err)
	}
	if string(sample) != "print('hi')\n" {
		t.Errorf("sample = %q", sample)
	}
}

func TestDownloadSample_NoPythonFile(t *testing.T) {
	gh := newFakeGitHub(t, []string{"alpha"}, map[string]map[string]string{
		"alpha": {"README.md": "# alpha"},
	})

	_, ok, err := NewClient(gh.URL, "", nil).DownloadSample(context.Background(), gh.URL+"/repos/owner/alpha/contents/{+path}")
	if err != nil {
		t.Fatalf("DownloadSample() error = %v", err)
	}
	if ok {
		t.Error("expected ok=false for a repository without Python files")
	}
}
