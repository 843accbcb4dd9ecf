// Package single implements the Bubble Tea view for single-shot sessions:
// one draft in, one replaceable result out.
package single

import "inferdesk/internal/usecase"

// SettledMsg carries the outcome of one dispatched request.
type SettledMsg struct {
	Outcome usecase.Outcome
}

// CopiedMsg reports the result of a clipboard copy.
type CopiedMsg struct {
	Chars int
	Err   error
}

// ExportedMsg reports where an exported document was written.
type ExportedMsg struct {
	Path string
	Err  error
}
