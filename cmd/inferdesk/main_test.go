package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inferdesk/internal/usecase"
)

// writeConfig writes a quiet config into a temp dir and returns its path.
func writeConfig(t *testing.T, exportDir string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "inferdesk.yaml")
	content := fmt.Sprintf(`export:
  dir: %q
logger:
  level: error
  output: %q
`, exportDir, filepath.Join(dir, "inferdesk.log"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func textServer(t *testing.T, reply string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"response": reply})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHumanizeOnce(t *testing.T) {
	srv := textServer(t, "  Natural text.\n", nil)
	cfg := writeConfig(t, t.TempDir())

	out, err := execute(t, "--config", cfg, "--base-url", srv.URL, "humanize", "--once", "--text", "Stiff text.")
	require.NoError(t, err)
	assert.Equal(t, "Natural text.\n", out)
}

func TestHumanizeOnce_WordLimit(t *testing.T) {
	var hits atomic.Int32
	srv := textServer(t, "never", &hits)
	cfg := writeConfig(t, t.TempDir())

	_, err := execute(t, "--config", cfg, "--base-url", srv.URL, "humanize", "--once", "--text", strings.Repeat("word ", 251))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "word limit")
	assert.Zero(t, hits.Load(), "validation never reaches the network")
}

func TestReviewOnce_CollapsedAndFull(t *testing.T) {
	long := strings.Repeat("r", 900)
	srv := textServer(t, long, nil)
	cfg := writeConfig(t, t.TempDir())

	out, err := execute(t, "--config", cfg, "--base-url", srv.URL, "review", "--once", "--text", "graph learning")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("r", 800)+"...\n", out)

	out, err = execute(t, "--config", cfg, "--base-url", srv.URL, "review", "--once", "--full", "--text", "graph learning")
	require.NoError(t, err)
	assert.Equal(t, long+"\n", out)
}

func TestReviewOnce_Export(t *testing.T) {
	srv := textServer(t, "A review of graph learning.", nil)
	exportDir := t.TempDir()
	cfg := writeConfig(t, exportDir)

	out, err := execute(t, "--config", cfg, "--base-url", srv.URL, "review", "--once", "--export", "--text", "graph learning")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved ")

	matches, err := filepath.Glob(filepath.Join(exportDir, "literature_review_*.pdf"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestReviewOnce_FailureShowsBanner(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()
	cfg := writeConfig(t, t.TempDir())

	_, err := execute(t, "--config", cfg, "--base-url", srv.URL, "review", "--once", "--text", "topic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), usecase.LitReviewFallback)
}

func TestSummarizeOnce(t *testing.T) {
	var gotQuery, gotFile string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		gotQuery = r.FormValue("query")
		if f, h, err := r.FormFile("file"); assert.NoError(t, err) {
			gotFile = h.Filename
			f.Close()
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "Short summary."})
	}))
	defer srv.Close()
	cfg := writeConfig(t, t.TempDir())

	_, err := execute(t, "--config", cfg, "--base-url", srv.URL, "summarize", "--once")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Please upload a PDF first.")

	pdf := filepath.Join(t.TempDir(), "paper.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.4 test"), 0o600))

	out, err := execute(t, "--config", cfg, "--base-url", srv.URL, "summarize", "--once", "--file", pdf, "--query", "methods")
	require.NoError(t, err)
	assert.Equal(t, "Short summary.\n", out)
	assert.Equal(t, "methods", gotQuery)
	assert.Equal(t, "paper.pdf", gotFile)
}

func TestGenerateOnce(t *testing.T) {
	srv := textServer(t, "Hi!", nil)
	cfg := writeConfig(t, t.TempDir())

	out, err := execute(t, "--config", cfg, "--base-url", srv.URL, "generate", "--once", "--text", "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hi!\n", out)
}

func TestCodeOnce_ModeSent(t *testing.T) {
	var mode string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Mode string `json:"mode"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		mode = body.Mode
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "explained"})
	}))
	defer srv.Close()
	cfg := writeConfig(t, t.TempDir())

	out, err := execute(t, "--config", cfg, "--base-url", srv.URL, "code", "--once", "--mode", "explain", "--text", "x := 1")
	require.NoError(t, err)
	assert.Equal(t, "explained\n", out)
	assert.Equal(t, "explain", mode)

	_, err = execute(t, "--config", cfg, "--base-url", srv.URL, "code", "--once", "--mode", "refactor", "--text", "x")
	assert.Error(t, err)
}

func TestSearchOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "transformers", r.URL.Query().Get("query"))
		_, _ = w.Write([]byte(`{"papers":[{"title":"Attention Is All You Need","link":"https://arxiv.org/abs/1706.03762","year":2017,"authors":["Vaswani"]},{"title":"BERT","link":null,"year":null,"authors":[]}]}`))
	}))
	defer srv.Close()
	cfg := writeConfig(t, t.TempDir())

	out, err := execute(t, "--config", cfg, "--base-url", srv.URL, "search", "--once", "transformers")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Attention Is All You Need\n   Vaswani (2017)\n   https://arxiv.org/abs/1706.03762")
	assert.Contains(t, out, "2. BERT\n   Unknown (n.d.)")
}

func TestBadBaseURL(t *testing.T) {
	cfg := writeConfig(t, t.TempDir())
	_, err := execute(t, "--config", cfg, "--base-url", "ftp://nowhere", "generate", "--once", "--text", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_url")
}
