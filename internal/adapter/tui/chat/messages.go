// Package chat implements the Bubble Tea view for multi-turn chat sessions.
package chat

import "inferdesk/internal/usecase"

// SettledMsg carries the outcome of one dispatched request. Gen identifies
// the session generation so results for a replaced session are discarded.
type SettledMsg struct {
	Outcome usecase.Outcome
	Gen     uint64
}

// StreamTickMsg drives simulated streaming (progressive rendering).
type StreamTickMsg struct{}
