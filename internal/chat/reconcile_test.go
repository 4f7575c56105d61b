package chat_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homezy/internal/chat"
	"homezy/internal/domain"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func confirmed(id, localID, sender, text string, at time.Time) chat.Message {
	return chat.FromStored(domain.StoredMessage{ID: id, LocalID: localID, SenderID: sender, Text: text, SentAt: at})
}

func TestReconcile_ByCorrelationID(t *testing.T) {
	local := []chat.Message{chat.NewPending("L1", "guest", "hi", t0)}
	server := []chat.Message{confirmed("S1", "L1", "guest", "hi (edited)", t0.Add(time.Minute))}

	got := chat.Reconcile(local, server)
	require.Len(t, got, 1)
	assert.Equal(t, chat.Confirmed, got[0].State)
	assert.Equal(t, "S1", got[0].ServerID)
}

func TestReconcile_BySenderTextAndTime(t *testing.T) {
	local := []chat.Message{chat.NewPending("L1", "guest", "is it free?", t0)}
	server := []chat.Message{confirmed("S1", "", "guest", "is it free?", t0.Add(2*time.Second))}

	got := chat.Reconcile(local, server)
	require.Len(t, got, 1)
	assert.Equal(t, "S1", got[0].ServerID)
}

func TestReconcile_KeepsUnconfirmedPending(t *testing.T) {
	local := []chat.Message{
		chat.NewPending("L1", "guest", "first", t0),
		chat.NewPending("L2", "guest", "second", t0.Add(10*time.Second)),
	}
	server := []chat.Message{
		confirmed("S1", "L1", "guest", "first", t0.Add(time.Second)),
		confirmed("S0", "", "host", "welcome", t0.Add(-time.Minute)),
	}

	got := chat.Reconcile(local, server)
	require.Len(t, got, 3)
	assert.Equal(t, "S0", got[0].ServerID)
	assert.Equal(t, "S1", got[1].ServerID)
	assert.Equal(t, chat.Pending, got[2].State)
	assert.Equal(t, "L2", got[2].LocalID)
}

func TestReconcile_OutsideWindowNotMatched(t *testing.T) {
	local := []chat.Message{chat.NewPending("L1", "guest", "ok", t0)}
	server := []chat.Message{confirmed("S1", "", "guest", "ok", t0.Add(time.Minute))}

	got := chat.Reconcile(local, server)
	assert.Len(t, got, 2)
}

func TestReconcile_EachServerMessageAbsorbsOnePending(t *testing.T) {
	local := []chat.Message{
		chat.NewPending("L1", "guest", "ok", t0),
		chat.NewPending("L2", "guest", "ok", t0.Add(time.Second)),
	}
	server := []chat.Message{confirmed("S1", "", "guest", "ok", t0.Add(time.Second))}

	got := chat.Reconcile(local, server)
	require.Len(t, got, 2)
	assert.Equal(t, "S1", got[0].ServerID)
	assert.Equal(t, chat.Pending, got[1].State)
	assert.Equal(t, "L2", got[1].LocalID)
}

func TestReconcile_DeduplicatesServerAndConfirmedLocal(t *testing.T) {
	stale := confirmed("S1", "L1", "guest", "old text", t0)
	fresh := confirmed("S1", "L1", "guest", "new text", t0)
	older := confirmed("S9", "", "host", "from earlier page", t0.Add(-time.Hour))

	got := chat.Reconcile([]chat.Message{stale, older}, []chat.Message{fresh, fresh})
	require.Len(t, got, 2)
	assert.Equal(t, "S9", got[0].ServerID)
	assert.Equal(t, "new text", got[1].Text)
}
