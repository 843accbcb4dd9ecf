package usecase

import (
	"context"

	"inferdesk/internal/domain"
)

// Fallback and welcome texts shown by the built-in variants.
const (
	ChatFallback        = "Something went wrong. Please try again."
	GenerateWelcome     = "Hi there! Ask me anything academic, research-based, or curious!"
	CodeWelcome         = "Welcome to CodeVue. Select a mode and paste your code to get started."
	HumanizeFallback    = "Error processing request."
	SummarizeFallback   = "Summarization failed. Please try again or check the backend logs."
	LitReviewFallback   = "Failed to generate literature review. Please try again."
	SearchFallback      = "Search failed. Please try again."
	summarizeNoFileHint = "Please upload a PDF first."
	litReviewEmptyHint  = "Please enter a topic for the literature review."
)

// CallFunc performs the single outbound call for a validated draft.
type CallFunc func(ctx context.Context, draft domain.Draft) (string, error)

// Variant describes one screen's flavour of the session engine.
type Variant struct {
	Name      string
	Operation domain.Operation
	// Welcome is seeded into a chat log at mount. Unused by single-shot sessions.
	Welcome string
	// Fallback is the assistant text (chat) or error banner (single-shot)
	// shown when a request fails.
	Fallback string
	// EmptyHint is the alert shown for an empty draft or missing file.
	EmptyHint   string
	WordLimit   int // 0 = unlimited
	RequireFile bool
	RequireMode bool
	Call        CallFunc
}

// Validate applies the local, synchronous checks. It never touches the network.
func (v Variant) Validate(d domain.Draft) error {
	if v.RequireFile {
		if d.File.Empty() {
			return domain.ErrNoFile
		}
		return nil
	}
	if d.Normalized() == "" {
		return domain.ErrEmptyDraft
	}
	if v.RequireMode && d.Mode != "" && !d.Mode.Valid() {
		return domain.ErrInvalidMode
	}
	if v.OverLimit(d.Text) {
		return domain.ErrWordLimit
	}
	return nil
}

// OverLimit reports whether text exceeds the variant's word limit.
func (v Variant) OverLimit(text string) bool {
	return v.WordLimit > 0 && domain.WordCount(text) > v.WordLimit
}

// GenerateVariant is the multi-turn text generator.
func GenerateVariant(svc domain.InferenceService) Variant {
	return Variant{
		Name:      "generate",
		Operation: domain.OpGenerate,
		Welcome:   GenerateWelcome,
		Fallback:  ChatFallback,
		Call: func(ctx context.Context, d domain.Draft) (string, error) {
			return svc.Generate(ctx, d.Text)
		},
	}
}

// CodeVariant is the multi-turn code assistant. The mode travels with each
// send; an empty mode means debug.
func CodeVariant(svc domain.InferenceService) Variant {
	return Variant{
		Name:        "code",
		Operation:   domain.OpCode,
		Welcome:     CodeWelcome,
		Fallback:    ChatFallback,
		RequireMode: true,
		Call: func(ctx context.Context, d domain.Draft) (string, error) {
			mode := d.Mode
			if mode == "" {
				mode = domain.CodeModeDebug
			}
			return svc.Code(ctx, d.Text, mode)
		},
	}
}

// HumanizeVariant is the single-shot humanizer with a word cap.
func HumanizeVariant(svc domain.InferenceService, wordLimit int) Variant {
	if wordLimit <= 0 {
		wordLimit = domain.DefaultWordLimit
	}
	return Variant{
		Name:      "humanize",
		Operation: domain.OpHumanize,
		Fallback:  HumanizeFallback,
		WordLimit: wordLimit,
		Call: func(ctx context.Context, d domain.Draft) (string, error) {
			return svc.Humanize(ctx, d.Text)
		},
	}
}

// SummarizeVariant is the single-shot PDF summarizer.
func SummarizeVariant(svc domain.InferenceService) Variant {
	return Variant{
		Name:        "summarize",
		Operation:   domain.OpSummarizePDF,
		Fallback:    SummarizeFallback,
		EmptyHint:   summarizeNoFileHint,
		RequireFile: true,
		Call: func(ctx context.Context, d domain.Draft) (string, error) {
			return svc.SummarizePDF(ctx, *d.File, d.Query)
		},
	}
}

// LitReviewVariant is the single-shot literature review generator.
func LitReviewVariant(svc domain.InferenceService) Variant {
	return Variant{
		Name:      "review",
		Operation: domain.OpLitReview,
		Fallback:  LitReviewFallback,
		EmptyHint: litReviewEmptyHint,
		Call: func(ctx context.Context, d domain.Draft) (string, error) {
			return svc.LitReview(ctx, d.Text)
		},
	}
}
