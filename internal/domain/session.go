package domain

// Status is the request lifecycle state of a session.
type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
)

// String returns a human-readable label for the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// SessionState is the view-observable state of a session controller.
type SessionState struct {
	Status    Status
	LastError string
}

// Busy reports whether a request is in flight.
func (s SessionState) Busy() bool {
	return s.Status == StatusSubmitting
}
