package chat

import (
	"fmt"
	"strings"
	"time"
)

// StreamSpeed controls how fast assistant replies are progressively rendered.
type StreamSpeed int

const (
	StreamInstant StreamSpeed = iota // show everything immediately
	StreamFast                       // 32 runes per tick
	StreamNormal                     // 8 runes per tick (default)
)

// String returns the config name of the speed.
func (s StreamSpeed) String() string {
	switch s {
	case StreamInstant:
		return "instant"
	case StreamFast:
		return "fast"
	case StreamNormal:
		return "normal"
	default:
		return "unknown"
	}
}

// ParseStreamSpeed converts a config value into a StreamSpeed.
func ParseStreamSpeed(s string) (StreamSpeed, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "instant":
		return StreamInstant, nil
	case "fast":
		return StreamFast, nil
	case "", "normal":
		return StreamNormal, nil
	}
	return StreamNormal, fmt.Errorf("unknown stream speed %q", s)
}

// StreamConfig holds streaming parameters.
type StreamConfig struct {
	Speed     StreamSpeed
	ChunkSize int           // runes per tick (0 means instant)
	TickRate  time.Duration // delay between ticks
}

// DefaultStreamConfig returns the default (normal) streaming config.
func DefaultStreamConfig() StreamConfig {
	return StreamConfigForSpeed(StreamNormal)
}

// StreamConfigForSpeed returns a config for the given speed preset.
func StreamConfigForSpeed(s StreamSpeed) StreamConfig {
	switch s {
	case StreamInstant:
		return StreamConfig{Speed: StreamInstant}
	case StreamFast:
		return StreamConfig{Speed: StreamFast, ChunkSize: 32, TickRate: 16 * time.Millisecond}
	default:
		return StreamConfig{Speed: StreamNormal, ChunkSize: 8, TickRate: 16 * time.Millisecond}
	}
}

// CycleStreamSpeed cycles normal, fast, instant and back to normal.
func CycleStreamSpeed(current StreamSpeed) StreamSpeed {
	switch current {
	case StreamNormal:
		return StreamFast
	case StreamFast:
		return StreamInstant
	default:
		return StreamNormal
	}
}
