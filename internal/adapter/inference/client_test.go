package inference

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inferdesk/internal/domain"
	"inferdesk/internal/infra/config"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	c := NewClient(config.ServiceConfig{BaseURL: srv.URL + "/"}, discardLogger())
	t.Cleanup(func() {
		c.Close()
		srv.Close()
	})
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClientTextOperations(t *testing.T) {
	tests := []struct {
		name string
		path string
		call func(*Client) (string, error)
		want map[string]any
	}{
		{"generate", "/generate_text/", func(c *Client) (string, error) {
			return c.Generate(context.Background(), "hello")
		}, map[string]any{"query": "hello"}},
		{"humanize", "/humanize-text/", func(c *Client) (string, error) {
			return c.Humanize(context.Background(), "stiff prose")
		}, map[string]any{"query": "stiff prose"}},
		{"code", "/codex/", func(c *Client) (string, error) {
			return c.Code(context.Background(), "x := 1", domain.CodeModeExplain)
		}, map[string]any{"query": "x := 1", "mode": "explain"}},
		{"review", "/auto-lit-review/", func(c *Client) (string, error) {
			return c.LitReview(context.Background(), "graph networks")
		}, map[string]any{"query": "graph networks"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, tt.path, r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				_, err := uuid.Parse(r.Header.Get("X-Request-ID"))
				assert.NoError(t, err, "request id should be a UUID")

				var got map[string]any
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				assert.Equal(t, tt.want, got)
				writeJSON(w, http.StatusOK, map[string]string{"response": "  answer \n"})
			})

			text, err := tt.call(c)
			require.NoError(t, err)
			assert.Equal(t, "  answer \n", text, "client returns the raw text; sessions trim")
		})
	}
}

func TestClientSummarizeMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/summarize-pdf/", r.URL.Path)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}

		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "paper.pdf", hdr.Filename)
		assert.Equal(t, "application/pdf", hdr.Header.Get("Content-Type"))
		assert.Equal(t, "%PDF-1.4 body", string(data))

		_, hasQuery := r.MultipartForm.Value["query"]
		assert.True(t, hasQuery, "query field is always sent")
		assert.Equal(t, "", r.FormValue("query"))
		writeJSON(w, http.StatusOK, map[string]string{"response": "summary"})
	})

	text, err := c.SummarizePDF(context.Background(),
		domain.Attachment{Name: "paper.pdf", Data: []byte("%PDF-1.4 body")}, "")
	require.NoError(t, err)
	assert.Equal(t, "summary", text)
}

func TestClientSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/semantic-search/", r.URL.Path)
		assert.Equal(t, "deep learning & graphs", r.URL.Query().Get("query"))
		_, _ = io.WriteString(w, `{"papers":[
			{"title":"A","authors":["X","Y"],"year":2021,"link":"https://openalex.org/W1"},
			{"title":null,"authors":[null],"year":null,"link":null}
		]}`)
	})

	papers, err := c.Search(context.Background(), "deep learning & graphs")
	require.NoError(t, err)
	require.Len(t, papers, 2)
	assert.Equal(t, domain.Paper{Title: "A", Authors: []string{"X", "Y"}, Year: 2021, Link: "https://openalex.org/W1"}, papers[0])
	assert.Equal(t, domain.Paper{}, papers[1])
}

func TestClientErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
		detail string
	}{
		{"server error", http.StatusInternalServerError, `{"detail":"Summarization failed: boom"}`, domain.ErrProviderError, "Summarization failed: boom"},
		{"unprocessable", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","query"]}]}`, domain.ErrProviderError, "loc"},
		{"throttled", http.StatusTooManyRequests, `slow down`, domain.ErrRateLimit, "slow down"},
		{"not found", http.StatusNotFound, ``, domain.ErrProviderError, "404"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.Generate(context.Background(), "q")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.detail)
		})
	}
}

func TestClientMalformedBodies(t *testing.T) {
	bodies := []string{
		`not json`,
		`{}`,
		`{"response": 42}`,
		`{"answer": "wrong key"}`,
	}
	for _, body := range bodies {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, body)
		})
		_, err := c.Generate(context.Background(), "q")
		assert.ErrorIs(t, err, domain.ErrMalformedResponse, "body %q", body)
	}

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"papers":"none"}`)
	})
	_, err := c.Search(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(config.ServiceConfig{BaseURL: url}, discardLogger())
	defer c.Close()
	_, err := c.Generate(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrProviderError)
}

func TestClientContextDeadline(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := c.Generate(ctx, "q")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestClientRateLimitNeverReachesServer(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusOK, map[string]string{"response": "ok"})
	}))
	defer srv.Close()

	c := NewClient(config.ServiceConfig{BaseURL: srv.URL, RequestsPerMinute: 1, Burst: 1}, discardLogger())
	defer c.Close()

	_, err := c.Generate(context.Background(), "first")
	require.NoError(t, err)
	_, err = c.Generate(context.Background(), "second")
	assert.ErrorIs(t, err, domain.ErrRateLimit)
	assert.Equal(t, domain.CodeRateLimit, domain.ErrorCodeOf(err))
	assert.Equal(t, int32(1), hits.Load())
}

func TestClientBearerAuth(t *testing.T) {
	var auth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]string{"response": "ok"})
	}))
	defer srv.Close()

	c := NewClient(config.ServiceConfig{BaseURL: srv.URL, APIKey: "secret"}, discardLogger())
	defer c.Close()
	_, err := c.Humanize(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", auth.Load())
}
