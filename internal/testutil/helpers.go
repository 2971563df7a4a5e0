// Package testutil provides test helper functions.
package testutil

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WriteTestFile writes data to path on fsys with the given permissions,
// creating parent directories as needed.
func WriteTestFile(t *testing.T, fsys billy.Filesystem, path string, data []byte, perm os.FileMode) {
	t.Helper()

	if err := util.WriteFile(fsys, path, data, perm); err != nil {
		t.Fatalf("Failed to write test file %s: %v", path, err)
	}
}

// MkdirTest creates dir on fsys.
func MkdirTest(t *testing.T, fsys billy.Filesystem, dir string) {
	t.Helper()

	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create test directory %s: %v", dir, err)
	}
}

// CountingTransport is an http.RoundTripper that records the requests it
// forwards to the default transport.
type CountingTransport struct {
	mu       sync.Mutex
	Requests []string
}

// RoundTrip records "METHOD /path" and forwards req.
func (c *CountingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	c.Requests = append(c.Requests, req.Method+" "+req.URL.Path)
	c.mu.Unlock()
	return http.DefaultTransport.RoundTrip(req)
}

// NewOKServer starts an HTTP server answering 200 with an empty body to
// every request. It is closed when the test ends.
func NewOKServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server
}
