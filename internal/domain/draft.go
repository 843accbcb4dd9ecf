package domain

import (
	"fmt"
	"strings"
)

// DefaultWordLimit caps the humanizer draft.
const DefaultWordLimit = 250

// CodeMode selects what the code assistant does with the submitted code.
type CodeMode string

// Code assistant modes.
const (
	CodeModeDebug    CodeMode = "debug"
	CodeModeComplete CodeMode = "complete"
	CodeModeExplain  CodeMode = "explain"
)

// CodeModes lists the modes in selector order.
var CodeModes = []CodeMode{CodeModeDebug, CodeModeComplete, CodeModeExplain}

// Label returns the action label shown on the send control.
func (m CodeMode) Label() string {
	switch m {
	case CodeModeDebug:
		return "Debug Code"
	case CodeModeComplete:
		return "Complete Code"
	case CodeModeExplain:
		return "Explain Code"
	default:
		return string(m)
	}
}

// Valid reports whether m is one of the known modes.
func (m CodeMode) Valid() bool {
	switch m {
	case CodeModeDebug, CodeModeComplete, CodeModeExplain:
		return true
	}
	return false
}

// Next cycles debug → complete → explain → debug.
func (m CodeMode) Next() CodeMode {
	for i, mode := range CodeModes {
		if mode == m {
			return CodeModes[(i+1)%len(CodeModes)]
		}
	}
	return CodeModeDebug
}

// ParseCodeMode converts a user-supplied string into a CodeMode.
func ParseCodeMode(s string) (CodeMode, error) {
	m := CodeMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", NewDomainError("ParseCodeMode", ErrInvalidMode, fmt.Sprintf("%q", s))
	}
	return m, nil
}

// Attachment is a binary file reference carried by a draft.
type Attachment struct {
	Name string
	Data []byte
}

// Empty reports whether the attachment carries no bytes.
func (a *Attachment) Empty() bool {
	return a == nil || len(a.Data) == 0
}

// Draft is the user-edited input between keystrokes and submission.
type Draft struct {
	Text  string
	Mode  CodeMode    // code assistant only
	File  *Attachment // summarizer only
	Query string      // summarizer optional auxiliary query
}

// Normalized returns the draft text with surrounding whitespace trimmed.
func (d Draft) Normalized() string {
	return strings.TrimSpace(d.Text)
}

// WordCount counts whitespace-delimited tokens, discarding empty ones.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
