// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ghrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docship/internal/httputil"
	"github.com/pdiddy/docship/internal/upload"
	"github.com/pdiddy/docship/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

// putBody is the JSON body of a contents PUT.
type putBody struct {
	Message string `json:"message"`
	Content []byte `json:"content"`
	SHA     string `json:"sha"`
	Branch  string `json:"branch"`
}

// fakeGitHub emulates the subset of the contents API used by Repository.
type fakeGitHub struct {
	mu       sync.Mutex
	files    map[string]string // path -> sha
	dirs     map[string]bool
	failGet  map[string]int // path -> status code returned on GET
	puts     map[string]putBody
	auth     []string
	getRefs  []string
	failRepo int
}

func newFakeGitHub(t *testing.T) (*fakeGitHub, *httptest.Server) {
	t.Helper()
	f := &fakeGitHub{
		files:   map[string]string{},
		dirs:    map[string]bool{},
		failGet: map[string]int{},
		puts:    map[string]putBody{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/docs", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if f.failRepo != 0 {
			w.WriteHeader(f.failRepo)
			fmt.Fprint(w, `{"message":"Bad credentials"}`)
			return
		}
		fmt.Fprint(w, `{"full_name":"octo/docs","name":"docs"}`)
	})
	mux.HandleFunc("/repos/octo/docs/contents/", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		path := r.URL.Path[len("/repos/octo/docs/contents/"):]

		f.mu.Lock()
		defer f.mu.Unlock()

		switch r.Method {
		case http.MethodGet:
			f.getRefs = append(f.getRefs, r.URL.Query().Get("ref"))
			if code := f.failGet[path]; code != 0 {
				w.WriteHeader(code)
				fmt.Fprint(w, `{"message":"boom"}`)
				return
			}
			if f.dirs[path] {
				fmt.Fprintf(w, `[{"type":"file","path":"%s/a.txt","sha":"1"}]`, path)
				return
			}
			sha, ok := f.files[path]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"message":"Not Found"}`)
				return
			}
			fmt.Fprintf(w, `{"type":"file","path":"%s","sha":"%s"}`, path, sha)
		case http.MethodPut:
			var body putBody
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			f.puts[path] = body
			if _, exists := f.files[path]; exists && body.SHA == "" {
				w.WriteHeader(http.StatusUnprocessableEntity)
				fmt.Fprint(w, `{"message":"\"sha\" wasn't supplied."}`)
				return
			}
			status := http.StatusCreated
			if body.SHA != "" {
				status = http.StatusOK
			}
			w.WriteHeader(status)
			fmt.Fprintf(w, `{"content":{"path":"%s","sha":"new"}}`, path)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeGitHub) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auth = append(f.auth, r.Header.Get("Authorization"))
}

func (f *fakeGitHub) put(path string) putBody {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts[path]
}

func (f *fakeGitHub) snapshot() (auth, refs []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.auth...), append([]string(nil), f.getRefs...)
}

func connect(t *testing.T, srv *httptest.Server, branch string) *Repository {
	t.Helper()
	c, err := Connect(Options{Token: "ghp_test", BaseURL: srv.URL, Branch: branch, MaxRetries: 1})
	require.NoError(t, err)
	repo, err := c.Repository(context.Background(), "octo/docs")
	require.NoError(t, err)
	return repo
}

func TestParseRepoName(t *testing.T) {
	owner, name, err := ParseRepoName("octo/docs")
	require.NoError(t, err)
	assert.Equal(t, "octo", owner)
	assert.Equal(t, "docs", name)

	for _, bad := range []string{"", "docs", "/docs", "octo/", "a/b/c"} {
		_, _, err := ParseRepoName(bad)
		assert.True(t, errors.Is(err, ErrInvalidRepoName), "%q", bad)
	}
}

func TestRepository_Connects(t *testing.T) {
	f, srv := newFakeGitHub(t)
	repo := connect(t, srv, "")

	assert.Equal(t, "octo/docs", repo.FullName())
	auth, _ := f.snapshot()
	require.NotEmpty(t, auth)
	assert.Equal(t, "Bearer ghp_test", auth[0])
}

func TestRepository_ConnectFailures(t *testing.T) {
	f, srv := newFakeGitHub(t)
	f.failRepo = http.StatusUnauthorized

	c, err := Connect(Options{Token: "bad", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = c.Repository(context.Background(), "octo/docs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "getting repository octo/docs")
	assert.NotEmpty(t, errors.GetAllHints(err))

	_, err = c.Repository(context.Background(), "not-a-repo")
	assert.True(t, errors.Is(err, ErrInvalidRepoName))
}

func TestRepository_GetFile(t *testing.T) {
	f, srv := newFakeGitHub(t)
	f.files["texts/readme.txt"] = "abc123"
	f.dirs["texts"] = true
	f.failGet["texts/flaky.txt"] = http.StatusInternalServerError
	repo := connect(t, srv, "")

	tests := []struct {
		path      string
		wantState upload.LookupState
		wantSHA   string
	}{
		{path: "texts/readme.txt", wantState: upload.Found, wantSHA: "abc123"},
		{path: "texts/missing.txt", wantState: upload.NotFound},
		{path: "texts/flaky.txt", wantState: upload.LookupFailed},
		{path: "texts", wantState: upload.LookupFailed},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := repo.GetFile(context.Background(), tt.path)
			assert.Equal(t, tt.wantState, got.State)
			assert.Equal(t, tt.wantSHA, got.Handle.SHA)
			if tt.wantState == upload.LookupFailed {
				assert.Error(t, got.Err)
			} else {
				assert.NoError(t, got.Err)
			}
		})
	}
}

func TestRepository_CreateAndUpdate(t *testing.T) {
	f, srv := newFakeGitHub(t)
	f.files["texts/old.txt"] = "abc123"
	repo := connect(t, srv, "")

	require.NoError(t, repo.CreateFile(context.Background(), "texts/new.txt", "Add new.txt", []byte("fresh")))
	require.NoError(t, repo.UpdateFile(context.Background(), "texts/old.txt", "Update old.txt", []byte("changed"), "abc123"))

	created := f.put("texts/new.txt")
	assert.Equal(t, "Add new.txt", created.Message)
	assert.Equal(t, "fresh", string(created.Content))
	assert.Empty(t, created.SHA)

	updated := f.put("texts/old.txt")
	assert.Equal(t, "Update old.txt", updated.Message)
	assert.Equal(t, "changed", string(updated.Content))
	assert.Equal(t, "abc123", updated.SHA)
}

func TestRepository_CreateConflict(t *testing.T) {
	f, srv := newFakeGitHub(t)
	f.files["texts/old.txt"] = "abc123"
	repo := connect(t, srv, "")

	err := repo.CreateFile(context.Background(), "texts/old.txt", "Add old.txt", []byte("dup"))
	assert.Error(t, err)
}

func TestRepository_Branch(t *testing.T) {
	f, srv := newFakeGitHub(t)
	repo := connect(t, srv, "texts")

	_ = repo.GetFile(context.Background(), "a.txt")
	require.NoError(t, repo.CreateFile(context.Background(), "a.txt", "Add a.txt", []byte("x")))

	_, refs := f.snapshot()
	assert.Equal(t, []string{"texts"}, refs)
	assert.Equal(t, "texts", f.put("a.txt").Branch)
}

func TestUploadDirAgainstFakeGitHub(t *testing.T) {
	f, srv := newFakeGitHub(t)
	f.files["texts/readme.txt"] = "abc123"
	repo := connect(t, srv, "")

	local := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(local, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(local, "readme.txt"), []byte("top"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(local, "sub", "guide.txt"), []byte("nested"), 0o644))

	report, err := upload.UploadDir(context.Background(), upload.New(repo), types.UploadConfig{
		LocalDir:  local,
		RemoteDir: "texts",
	}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 2, report.Succeeded())

	assert.Equal(t, putBody{Message: "Update readme.txt", Content: []byte("top"), SHA: "abc123"}, f.put("texts/readme.txt"))
	assert.Equal(t, putBody{Message: "Add guide.txt", Content: []byte("nested")}, f.put("texts/sub/guide.txt"))
}
