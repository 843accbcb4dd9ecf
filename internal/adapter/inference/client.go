package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"inferdesk/internal/domain"
	"inferdesk/internal/infra/config"
	"inferdesk/internal/infra/middleware"
	"inferdesk/internal/infra/tracer"
)

// Endpoint paths on the inference service.
const (
	pathGenerate  = "/generate_text/"
	pathHumanize  = "/humanize-text/"
	pathCode      = "/codex/"
	pathSummarize = "/summarize-pdf/"
	pathLitReview = "/auto-lit-review/"
	pathSearch    = "/semantic-search/"
)

// Client talks to the academic inference service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a Client from service config.
func NewClient(cfg config.ServiceConfig, logger *slog.Logger) *Client {
	return NewClientWithHTTP(cfg.BaseURL, NewHTTPClient(cfg), logger)
}

// NewClientWithHTTP creates a Client using hc for transport.
func NewClientWithHTTP(baseURL string, hc *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		logger:  logger.With("component", "inference"),
	}
}

// Close releases idle pooled connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

type queryRequest struct {
	Query string `json:"query"`
}

type codeRequest struct {
	Query string          `json:"query"`
	Mode  domain.CodeMode `json:"mode"`
}

// Generate implements domain.InferenceService.
func (c *Client) Generate(ctx context.Context, query string) (string, error) {
	return c.postText(ctx, domain.OpGenerate, pathGenerate, queryRequest{Query: query})
}

// Humanize implements domain.InferenceService.
func (c *Client) Humanize(ctx context.Context, query string) (string, error) {
	return c.postText(ctx, domain.OpHumanize, pathHumanize, queryRequest{Query: query})
}

// Code implements domain.InferenceService.
func (c *Client) Code(ctx context.Context, query string, mode domain.CodeMode) (string, error) {
	return c.postText(ctx, domain.OpCode, pathCode, codeRequest{Query: query, Mode: mode})
}

// LitReview implements domain.InferenceService.
func (c *Client) LitReview(ctx context.Context, query string) (string, error) {
	return c.postText(ctx, domain.OpLitReview, pathLitReview, queryRequest{Query: query})
}

// SummarizePDF implements domain.InferenceService. The file travels as the
// multipart field "file" and the query as "query", empty when absent.
func (c *Client) SummarizePDF(ctx context.Context, file domain.Attachment, query string) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName(file.Name)))
	h.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return "", fmt.Errorf("write file part: %w", err)
	}
	if err := mw.WriteField("query", query); err != nil {
		return "", fmt.Errorf("write query field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, pathSummarize, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	body, err := c.do(ctx, domain.OpSummarizePDF, req)
	if err != nil {
		return "", err
	}
	return decodeText(body)
}

// Search implements domain.InferenceService.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Paper, error) {
	req, err := c.newRequest(ctx, http.MethodGet, pathSearch+"?"+url.Values{"query": {query}}.Encode(), nil)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, domain.OpSearch, req)
	if err != nil {
		return nil, err
	}
	return decodePapers(body)
}

func (c *Client) postText(ctx context.Context, op domain.Operation, path string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(ctx, op, req)
	if err != nil {
		return "", err
	}
	return decodeText(body)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(middleware.RequestIDHeader, uuid.NewString())
	return req, nil
}

// do executes req inside a client span and returns the body of a 2xx
// response. Everything else is mapped to a domain error.
func (c *Client) do(ctx context.Context, op domain.Operation, req *http.Request) ([]byte, error) {
	reqID := req.Header.Get(middleware.RequestIDHeader)
	ctx, span := tracer.StartClientSpan(ctx, "inference."+string(op),
		tracer.StringAttr("http.method", req.Method),
		tracer.StringAttr("http.route", req.URL.Path),
		tracer.StringAttr("request.id", reqID),
	)
	defer span.End()
	req = req.WithContext(ctx)

	start := time.Now()
	body, status, err := c.send(req)
	span.SetAttributes(tracer.IntAttr("http.status_code", status))

	logAttrs := []any{"op", op, "request_id", reqID, "status", status, "duration", time.Since(start)}
	if err != nil {
		tracer.RecordError(span, err)
		c.logger.Warn("inference call failed", append(logAttrs, "error", err)...)
		return nil, err
	}
	tracer.SetOK(span)
	c.logger.Debug("inference call completed", append(logAttrs, "bytes", len(body))...)
	return body, nil
}

func (c *Client) send(req *http.Request) ([]byte, int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: http request: %w", domain.ErrProviderError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response: %w", domain.ErrProviderError, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, mapHTTPError(resp.StatusCode, body)
	}
	return body, resp.StatusCode, nil
}

func fileName(name string) string {
	if name == "" {
		return "document.pdf"
	}
	return name
}

var _ domain.InferenceService = (*Client)(nil)
