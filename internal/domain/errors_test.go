package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorFormat(t *testing.T) {
	err := NewDomainError("ChatSession.Submit", ErrEmptyDraft, "whitespace only")
	want := "ChatSession.Submit: whitespace only: draft is empty"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestDomainErrorFormatNoDetail(t *testing.T) {
	err := NewDomainError("RequestGuard.Begin", ErrBusy, "")
	want := "RequestGuard.Begin: a request is already in flight"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	err := NewDomainError("Client.Generate", ErrMalformedResponse, "missing response")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Error("errors.Is should match ErrMalformedResponse")
	}
}

func TestWrapOpNil(t *testing.T) {
	assert.NoError(t, WrapOp("op", nil))
	assert.EqualError(t, WrapOp("op", ErrTimeout), "op: request timed out")
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(ErrEmptyDraft))
	assert.True(t, IsValidationError(fmt.Errorf("wrap: %w", ErrNoFile)))
	assert.True(t, IsValidationError(NewDomainError("x", ErrWordLimit, "")))
	assert.False(t, IsValidationError(ErrProviderError))
	assert.False(t, IsValidationError(ErrBusy))
}

func TestErrorCodeOf(t *testing.T) {
	assert.Equal(t, CodeUnknown, ErrorCodeOf(nil))
	assert.Equal(t, CodeUnknown, ErrorCodeOf(errors.New("boom")))
	assert.Equal(t, CodeEmptyDraft, ErrorCodeOf(ErrEmptyDraft))
	assert.Equal(t, CodeTimeout, ErrorCodeOf(fmt.Errorf("dispatch: %w", ErrTimeout)))
	assert.Equal(t, CodeMalformedResponse, ErrorCodeOf(NewDomainError("c", ErrMalformedResponse, "d")))
	assert.Equal(t, CodeCircuitOpen, ErrorCodeOf(ErrCircuitOpen))
}
