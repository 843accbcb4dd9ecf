package domain

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessageAssignsID(t *testing.T) {
	a := NewMessage(SenderUser, "hello")
	b := NewMessage(SenderUser, "hello")

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Less(t, a.ID, b.ID, "ULIDs should sort in creation order")
	assert.False(t, a.Timestamp.IsZero())
}

func TestMessageLogAppendOrder(t *testing.T) {
	log := NewMessageLog()
	log.Append(NewMessage(SenderAssistant, "welcome"), OriginMount)
	log.Append(NewMessage(SenderUser, "hello"), OriginLocal)
	log.Append(NewMessage(SenderAssistant, "Hi!"), OriginSettlement)

	type row struct {
		Sender Sender
		Text   string
	}
	var got []row
	for _, m := range log.Snapshot() {
		got = append(got, row{m.Sender, m.Text})
	}
	want := []row{
		{SenderAssistant, "welcome"},
		{SenderUser, "hello"},
		{SenderAssistant, "Hi!"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("log mismatch (-want +got):\n%s", diff)
	}
}

func TestMessageLogSnapshotIsCopy(t *testing.T) {
	log := NewMessageLog()
	log.Append(NewMessage(SenderUser, "original"), OriginLocal)

	snap := log.Snapshot()
	snap[0].Text = "mutated"

	last, ok := log.Last()
	require.True(t, ok)
	assert.Equal(t, "original", last.Text)
}

func TestMessageLogObserverSeesOrigin(t *testing.T) {
	log := NewMessageLog()
	var events []AppendEvent
	log.Observe(func(ev AppendEvent) { events = append(events, ev) })

	log.Append(NewMessage(SenderAssistant, "welcome"), OriginMount)
	log.Append(NewMessage(SenderUser, "q"), OriginLocal)

	require.Len(t, events, 2)
	assert.Equal(t, OriginMount, events[0].Origin)
	assert.Equal(t, 0, events[0].Index)
	assert.Equal(t, OriginLocal, events[1].Origin)
	assert.Equal(t, 1, events[1].Index)
}

func TestMessageLogObserverCanReadLog(t *testing.T) {
	log := NewMessageLog()
	var seenLen int
	log.Observe(func(AppendEvent) { seenLen = log.Len() })

	log.Append(NewMessage(SenderUser, "q"), OriginLocal)
	assert.Equal(t, 1, seenLen)
}

func TestMessageLogConcurrentAppend(t *testing.T) {
	log := NewMessageLog()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Append(NewMessage(SenderUser, "x"), OriginLocal)
		}()
	}
	wg.Wait()

	snap := log.Snapshot()
	assert.Len(t, snap, 50)
	ids := make(map[string]bool)
	for _, m := range snap {
		ids[m.ID] = true
	}
	assert.Len(t, ids, 50)
}

func TestMessageLogLastEmpty(t *testing.T) {
	_, ok := NewMessageLog().Last()
	assert.False(t, ok)
}

func TestOriginString(t *testing.T) {
	assert.Equal(t, "mount", OriginMount.String())
	assert.Equal(t, "local", OriginLocal.String())
	assert.Equal(t, "settlement", OriginSettlement.String())
	assert.Equal(t, "unknown", Origin(42).String())
}

var ignoreVolatile = cmpopts.IgnoreFields(Message{}, "ID", "Timestamp")

func TestNewMessageFields(t *testing.T) {
	got := NewMessage(SenderAssistant, "hi")
	want := Message{Sender: SenderAssistant, Text: "hi"}
	if diff := cmp.Diff(want, got, ignoreVolatile); diff != "" {
		t.Errorf("message mismatch (-want +got):\n%s", diff)
	}
}
