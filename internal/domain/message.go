package domain

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Sender identifies who produced a message.
type Sender string

// Sender constants.
const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is a single exchanged turn. It is immutable once appended to a log.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message stamped with a fresh ULID.
func NewMessage(sender Sender, text string) Message {
	now := time.Now()
	return Message{
		ID:        newMessageID(now),
		Text:      text,
		Sender:    sender,
		Timestamp: now,
	}
}

// Origin records what caused an append.
type Origin int

const (
	OriginMount      Origin = iota // seeded when the view is created
	OriginLocal                    // produced by the local user's own submit
	OriginSettlement               // produced when an in-flight request settled
)

// String returns a human-readable label for the origin.
func (o Origin) String() string {
	switch o {
	case OriginMount:
		return "mount"
	case OriginLocal:
		return "local"
	case OriginSettlement:
		return "settlement"
	default:
		return "unknown"
	}
}

// AppendEvent is delivered to log observers after every append.
type AppendEvent struct {
	Message Message
	Index   int
	Origin  Origin
}

// AppendObserver is notified synchronously after each append.
type AppendObserver func(AppendEvent)

// MessageLog is an ordered, append-only record of messages. Insertion order
// is chronological order is display order. Safe for concurrent use.
type MessageLog struct {
	mu        sync.RWMutex
	messages  []Message
	observers []AppendObserver
}

// NewMessageLog creates an empty log.
func NewMessageLog() *MessageLog {
	return &MessageLog{}
}

// Observe registers fn to be called after every subsequent append.
func (l *MessageLog) Observe(fn AppendObserver) {
	l.mu.Lock()
	l.observers = append(l.observers, fn)
	l.mu.Unlock()
}

// Append adds msg to the end of the log and notifies observers.
// Observers run after the lock is released so they may read the log.
func (l *MessageLog) Append(msg Message, origin Origin) AppendEvent {
	l.mu.Lock()
	l.messages = append(l.messages, msg)
	ev := AppendEvent{Message: msg, Index: len(l.messages) - 1, Origin: origin}
	observers := make([]AppendObserver, len(l.observers))
	copy(observers, l.observers)
	l.mu.Unlock()

	for _, fn := range observers {
		fn(ev)
	}
	return ev
}

// Len returns the number of messages.
func (l *MessageLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Snapshot returns a copy of the messages in display order.
func (l *MessageLog) Snapshot() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Last returns the most recent message, or false if the log is empty.
func (l *MessageLog) Last() (Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.messages) == 0 {
		return Message{}, false
	}
	return l.messages[len(l.messages)-1], true
}

var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

func newMessageID(t time.Time) string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), idEntropy).String()
}
