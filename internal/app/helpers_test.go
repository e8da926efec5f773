package app

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tailindex/internal/config"
)

func stubDeps(t *testing.T) {
	t.Helper()
	resetDeps()
	t.Cleanup(resetDeps)
}

type listingServer struct {
	*httptest.Server
	hits atomic.Int32
}

// newListingServer serves an autoindex page for names under /logs/.
// Credentials, when given, are required as user:password.
func newListingServer(t *testing.T, creds string, names ...string) *listingServer {
	t.Helper()
	ls := &listingServer{}
	r := chi.NewRouter()
	if user, pass, ok := strings.Cut(creds, ":"); ok {
		r.Use(middleware.BasicAuth("logs", map[string]string{user: pass}))
	}
	r.Get("/logs/", func(w http.ResponseWriter, _ *http.Request) {
		ls.hits.Add(1)
		var b strings.Builder
		b.WriteString(`<html><body><h1>Index of /logs</h1><pre><a href="?C=N;O=D">Name</a>` + "\n")
		b.WriteString(`<a href="/">Parent Directory</a>` + "\n")
		for _, n := range names {
			fmt.Fprintf(&b, "<a href=%q>%s</a>  2024-03-01 10:00  1.2K\n", n, n)
		}
		b.WriteString("</pre></body></html>")
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, b.String())
	})
	ls.Server = httptest.NewServer(r)
	t.Cleanup(ls.Close)
	return ls
}

func (ls *listingServer) listingURL() string {
	return ls.URL + "/logs/"
}

func writeWorker(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tailurl.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write worker: %v", err)
	}
	return path
}

func testConfig(worker string) config.Config {
	cfg := config.Default()
	cfg.Worker = worker
	cfg.FetchTimeout = 2 * time.Second
	return cfg
}

func mustTarget(t *testing.T, pattern, rawURL string) Target {
	t.Helper()
	target, err := ParseTarget(pattern, rawURL)
	if err != nil {
		t.Fatalf("ParseTarget failed: %v", err)
	}
	return target
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

type safeBuffer struct {
	mu sync.Mutex
	sb strings.Builder
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.String()
}
