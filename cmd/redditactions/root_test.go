package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"redditactions/pkg/auth"
	"redditactions/pkg/config"
	"redditactions/pkg/models"
	"redditactions/pkg/processor"
)

// fakeServices stands in for both Reddit and Instapaper
type fakeServices struct {
	mu      sync.Mutex
	hits    atomic.Int32
	saved   []models.Thing
	added   []string
	unsaved []string
	failAdd map[string]bool
}

func newFakeServices(n int) *fakeServices {
	f := &fakeServices{failAdd: map[string]bool{}}
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("p%d", i)
		f.saved = append(f.saved, models.Thing{Kind: models.KindLink, Data: models.ThingData{
			ID:        id,
			Name:      "t3_" + id,
			Title:     "Post " + id,
			URL:       "https://blog.example/" + id,
			Subreddit: "golang",
			Domain:    "blog.example",
		}})
	}
	return f
}

func (f *fakeServices) reddit() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		writeJSON(w, map[string]interface{}{"access_token": "tok", "token_type": "bearer", "expires_in": 3600})
	})
	mux.HandleFunc("/api/v1/me", func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		writeJSON(w, models.Identity{Name: "spez"})
	})
	mux.HandleFunc("/user/spez/saved", func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, models.ListingResponse{Kind: "Listing", Data: models.ListingData{Children: f.saved}})
	})
	mux.HandleFunc("/api/unsave", func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		_ = r.ParseForm()
		f.mu.Lock()
		f.unsaved = append(f.unsaved, r.PostForm.Get("id"))
		f.mu.Unlock()
		writeJSON(w, map[string]interface{}{})
	})
	return mux
}

func (f *fakeServices) instapaper() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/authenticate", func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/add", func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		u := r.URL.Query().Get("url")
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failAdd[u] {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.added = append(f.added, u)
		w.WriteHeader(http.StatusCreated)
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// setup starts both fake services, writes a config file pointing at them and
// sets a complete credential environment
func setup(t *testing.T, fake *fakeServices) string {
	t.Helper()

	redditServer := httptest.NewServer(fake.reddit())
	t.Cleanup(redditServer.Close)
	instapaperServer := httptest.NewServer(fake.instapaper())
	t.Cleanup(instapaperServer.Close)

	dir := t.TempDir()
	t.Setenv("HOME", dir)

	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`reddit:
  auth_url: %q
  api_url: %q
instapaper:
  api_url: %q
rate_limit:
  requests_per_minute: 6000
  burst_size: 100
logging:
  level: error
  format: json
`, redditServer.URL, redditServer.URL, instapaperServer.URL)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv(auth.EnvRedditClientID, "cid")
	t.Setenv(auth.EnvRedditClientSecret, "csecret")
	t.Setenv(auth.EnvRedditUsername, "spez")
	t.Setenv(auth.EnvRedditPassword, "hunter2")
	t.Setenv(auth.EnvInstapaperUser, "reader@example.com")
	t.Setenv(auth.EnvInstapaperPass, "pa55word")

	return path
}

func run(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var out bytes.Buffer
	code := -1
	cmd := newRootCmd(&out, &code)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return code, out.String()
}

func TestRunForwardsAllItems(t *testing.T) {
	fake := newFakeServices(3)
	path := setup(t, fake)

	code, out := run(t, "--config", path)

	assert.Equal(t, processor.ExitOK, code, out)
	assert.Len(t, fake.added, 3)
	assert.Equal(t, []string{"t3_p1", "t3_p2", "t3_p3"}, fake.unsaved)
	assert.Contains(t, out, "Done")
}

func TestRunForwardFailureIsLenientByDefault(t *testing.T) {
	fake := newFakeServices(3)
	fake.failAdd["https://blog.example/p2"] = true
	path := setup(t, fake)

	code, out := run(t, "--config", path)

	assert.Equal(t, processor.ExitOK, code)
	assert.Equal(t, []string{"t3_p1", "t3_p3"}, fake.unsaved)
	assert.Contains(t, out, "p2 https://blog.example/p2")
}

func TestRunStrictExitsWithPartialCode(t *testing.T) {
	fake := newFakeServices(3)
	fake.failAdd["https://blog.example/p2"] = true
	path := setup(t, fake)

	code, _ := run(t, "--config", path, "--strict")
	assert.Equal(t, processor.ExitPartial, code)
}

func TestRunDryRunChangesNothing(t *testing.T) {
	fake := newFakeServices(2)
	path := setup(t, fake)

	code, out := run(t, "--config", path, "--dry-run")

	assert.Equal(t, processor.ExitOK, code)
	assert.Empty(t, fake.added)
	assert.Empty(t, fake.unsaved)
	assert.Contains(t, out, "Dry run")
}

func TestMissingInstapaperCredentialsMakesNoCalls(t *testing.T) {
	fake := newFakeServices(3)
	path := setup(t, fake)
	t.Setenv(auth.EnvInstapaperUser, "")
	t.Setenv(auth.EnvInstapaperPass, "")

	code, out := run(t, "--config", path)

	assert.Equal(t, processor.ExitFatal, code)
	assert.Zero(t, fake.hits.Load(), "no API call before credentials are complete")
	assert.Contains(t, out, auth.EnvInstapaperUser)
	assert.Contains(t, out, auth.EnvInstapaperPass)
}

func TestInvalidConfigIsFatal(t *testing.T) {
	fake := newFakeServices(1)
	setup(t, fake)

	code, _ := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, processor.ExitFatal, code)
	assert.Zero(t, fake.hits.Load())
}

func TestConfigInitAndShow(t *testing.T) {
	fake := newFakeServices(0)
	setup(t, fake)
	path := filepath.Join(t.TempDir(), "new.yaml")

	code, out := run(t, "config", "init", "--config", path)
	require.Equal(t, processor.ExitOK, code, out)
	assert.FileExists(t, path)

	written, err := config.Load(path, nil)
	require.NoError(t, err)
	defaults := config.DefaultConfig()
	assert.Equal(t, defaults.Processing.Filter.ExcludeDomains, written.Processing.Filter.ExcludeDomains, "init writes the built-in defaults")
	assert.Equal(t, defaults.Processing.Filter.SelfPost, written.Processing.Filter.SelfPost)
	assert.Equal(t, defaults.Reddit, written.Reddit)
	assert.Equal(t, defaults.RateLimit, written.RateLimit)
	assert.Equal(t, defaults.HTTP.Timeout, written.HTTP.Timeout)

	code, _ = run(t, "config", "init", "--config", path)
	assert.Equal(t, processor.ExitFatal, code, "refuses to overwrite")

	code, out = run(t, "config", "show", "--config", path)
	require.Equal(t, processor.ExitOK, code, out)
	assert.Contains(t, out, "user_agent: RedditActions/0.1")
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "pa55word")
}

func TestFlagOverridesOnlyChangedFlags(t *testing.T) {
	code := 0
	cmd := newRootCmd(&bytes.Buffer{}, &code)
	require.NoError(t, cmd.ParseFlags([]string{"--limit", "5", "--subreddit", "golang,rust"}))

	opts := &options{limit: 5, subreddits: []string{"golang", "rust"}}
	flags := flagOverrides(cmd, opts)

	assert.Equal(t, 5, flags["limit"])
	assert.Equal(t, []string{"golang", "rust"}, flags["subreddits"])
	_, hasDryRun := flags["dry-run"]
	assert.False(t, hasDryRun)
}
