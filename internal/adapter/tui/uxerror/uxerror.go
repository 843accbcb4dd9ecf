// Package uxerror translates raw errors into user-friendly messages with
// recovery hints for the TUI.
package uxerror

import (
	"errors"
	"fmt"
	"strings"

	"inferdesk/internal/adapter/tui/theme"
	"inferdesk/internal/domain"
)

// FriendlyError is a user-facing error with suggestions for recovery.
type FriendlyError struct {
	Title   string   // short heading, e.g. "Connection Failed"
	Message string   // one-liner explanation
	Hints   []string // actionable recovery suggestions
	Raw     string   // original error text (for debug)
}

// Render formats the FriendlyError for display in the TUI message list.
func (fe FriendlyError) Render() string {
	var sb strings.Builder
	sb.WriteString(fe.Title)
	if fe.Message != "" {
		sb.WriteString("\n  ")
		sb.WriteString(fe.Message)
	}
	if len(fe.Hints) > 0 {
		sb.WriteString("\n  Suggestions:")
		for _, h := range fe.Hints {
			sb.WriteString(fmt.Sprintf("\n    %s %s", theme.SymbolBullet, h))
		}
	}
	return sb.String()
}

// Short returns the one-line form used in status bars.
func (fe FriendlyError) Short() string {
	if fe.Message == "" {
		return fe.Title
	}
	return fe.Title + ": " + fe.Message
}

type errorPattern struct {
	match   func(err error) bool
	produce func(err error) FriendlyError
}

var patterns = []errorPattern{
	// Sentinels first so errors.Is works through wrapping.
	{
		match:   is(domain.ErrEmptyDraft),
		produce: constantError("Nothing to Send", "Type something before submitting.", nil),
	},
	{
		match:   is(domain.ErrNoFile),
		produce: constantError("No File Selected", "Please upload a PDF first.", []string{"Pass --file path/to/paper.pdf"}),
	},
	{
		match:   is(domain.ErrWordLimit),
		produce: constantError("Word Limit Exceeded", "The text is longer than the allowed number of words.", []string{"Shorten the text", "Raise session.word_limit in config"}),
	},
	{
		match:   is(domain.ErrInvalidMode),
		produce: constantError("Unknown Mode", "The code assistant mode is not recognised.", []string{"Use debug, complete or explain"}),
	},
	{
		match:   is(domain.ErrBusy),
		produce: constantError("Request In Progress", "Wait for the current response before sending again.", nil),
	},
	{
		match:   is(domain.ErrTimeout),
		produce: constantError("Request Timed Out", "The inference service did not answer in time.", []string{"Try a shorter input", "Increase service.request_timeout in config"}),
	},
	{
		match:   is(domain.ErrCircuitOpen),
		produce: constantError("Service Unavailable", "Recent requests kept failing, so new ones are paused briefly.", []string{"Wait a few seconds and retry", "Check the inference service logs"}),
	},
	{
		match:   is(domain.ErrRateLimit),
		produce: constantError("Rate Limited", "Too many requests were sent.", []string{"Wait a moment before retrying", "Adjust service.requests_per_minute"}),
	},
	{
		match:   is(domain.ErrMalformedResponse),
		produce: constantError("Unexpected Response", "The inference service answered with an unexpected shape.", []string{"Check that service.base_url points at the right backend"}),
	},
	{
		match:   is(domain.ErrExport),
		produce: constantError("Export Failed", "The document could not be written.", []string{"Check export.dir exists and is writable"}),
	},

	// Transport patterns (string matching for wrapped net errors).
	{
		match:   containsAny("connection refused", "dial tcp", "no such host"),
		produce: constantError("Connection Failed", "Could not reach the inference service.", []string{"Check that the backend is running", "Verify service.base_url in config"}),
	},
	{
		match:   containsAny("401", "403", "unauthorized", "forbidden"),
		produce: constantError("Authentication Failed", "The service rejected the credentials.", []string{"Check service.api_key or INFERDESK_SERVICE_API_KEY"}),
	},
	{
		match: is(domain.ErrProviderError),
		produce: func(err error) FriendlyError {
			return FriendlyError{
				Title:   "Service Error",
				Message: "The inference service failed to process the request.",
				Hints:   []string{"Try again", "Check the backend logs"},
				Raw:     err.Error(),
			}
		},
	},
}

// Humanize converts a raw error into a FriendlyError with recovery hints.
func Humanize(err error) FriendlyError {
	if err == nil {
		return FriendlyError{Title: "Unknown Error", Raw: "nil"}
	}

	for _, p := range patterns {
		if p.match(err) {
			return p.produce(err)
		}
	}

	return FriendlyError{
		Title:   "Unexpected Error",
		Message: err.Error(),
		Hints:   []string{"Try again", "Run with --log-level debug for more details"},
		Raw:     err.Error(),
	}
}

func is(target error) func(error) bool {
	return func(err error) bool { return errors.Is(err, target) }
}

// containsAny returns a match func that checks if the error string contains
// any of the given substrings (case-insensitive).
func containsAny(substrs ...string) func(error) bool {
	return func(err error) bool {
		lower := strings.ToLower(err.Error())
		for _, s := range substrs {
			if strings.Contains(lower, s) {
				return true
			}
		}
		return false
	}
}

// constantError returns a produce func that always returns the same FriendlyError.
func constantError(title, message string, hints []string) func(error) FriendlyError {
	return func(err error) FriendlyError {
		return FriendlyError{
			Title:   title,
			Message: message,
			Hints:   hints,
			Raw:     err.Error(),
		}
	}
}
