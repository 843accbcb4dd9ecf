package domain

import "context"

// Operation names one logical call against the inference service.
type Operation string

// Inference service operations.
const (
	OpGenerate     Operation = "generate"
	OpHumanize     Operation = "humanize"
	OpCode         Operation = "code"
	OpSummarizePDF Operation = "summarize_pdf"
	OpLitReview    Operation = "lit_review"
	OpSearch       Operation = "search"
)

// Paper is one semantic search hit.
type Paper struct {
	Title   string   `json:"title"`
	Link    string   `json:"link"`
	Authors []string `json:"authors"`
	Year    int      `json:"year"`
}

// InferenceService is the remote service contract. Every text operation
// returns the raw response text; callers trim it.
type InferenceService interface {
	Generate(ctx context.Context, query string) (string, error)
	Humanize(ctx context.Context, query string) (string, error)
	Code(ctx context.Context, query string, mode CodeMode) (string, error)
	SummarizePDF(ctx context.Context, file Attachment, query string) (string, error)
	LitReview(ctx context.Context, query string) (string, error)
	Search(ctx context.Context, query string) ([]Paper, error)
}
