// Package chat merges a client's optimistic chat timeline with the
// server-confirmed copy of the same thread.
package chat

import (
	"sort"
	"time"

	"homezy/internal/domain"
)

type State string

const (
	Pending   State = "pending"
	Confirmed State = "confirmed"
)

// matchWindow is how far apart a pending echo and its confirmed copy may be
// when no correlation id is available.
const matchWindow = 5 * time.Second

// Message is either Pending (identified by LocalID) or Confirmed (identified
// by ServerID). A confirmed message keeps the LocalID the sender supplied.
type Message struct {
	State    State     `json:"state"`
	LocalID  string    `json:"local_id,omitempty"`
	ServerID string    `json:"server_id,omitempty"`
	SenderID string    `json:"sender_id"`
	Text     string    `json:"text"`
	SentAt   time.Time `json:"sent_at"`
}

func NewPending(localID, senderID, text string, at time.Time) Message {
	return Message{State: Pending, LocalID: localID, SenderID: senderID, Text: text, SentAt: at}
}

func FromStored(m domain.StoredMessage) Message {
	return Message{
		State:    Confirmed,
		LocalID:  m.LocalID,
		ServerID: m.ID,
		SenderID: m.SenderID,
		Text:     m.Text,
		SentAt:   m.SentAt,
	}
}

// Reconcile returns the merged timeline. Every server message appears once.
// A pending local message is dropped when a server message carries its
// LocalID or, failing that, has the same sender and text within matchWindow.
// Each server message absorbs at most one pending message. Local messages
// already confirmed are replaced by the server copy with the same ServerID.
func Reconcile(local, server []Message) []Message {
	out := make([]Message, 0, len(local)+len(server))
	byServerID := make(map[string]int, len(server))
	for _, m := range server {
		if m.ServerID == "" {
			continue
		}
		if _, dup := byServerID[m.ServerID]; dup {
			continue
		}
		m.State = Confirmed
		byServerID[m.ServerID] = len(out)
		out = append(out, m)
	}
	absorbed := make([]bool, len(out))

	var unmatched []Message
	for _, m := range local {
		if m.State == Confirmed {
			if _, ok := byServerID[m.ServerID]; !ok && m.ServerID != "" {
				byServerID[m.ServerID] = len(out)
				out = append(out, m)
				absorbed = append(absorbed, true)
			}
			continue
		}
		if i, ok := byCorrelation(out, absorbed, m); ok {
			absorbed[i] = true
			continue
		}
		unmatched = append(unmatched, m)
	}

	for _, m := range unmatched {
		if i, ok := byContent(out, absorbed, m); ok {
			absorbed[i] = true
			continue
		}
		out = append(out, m)
		absorbed = append(absorbed, true)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.SentAt.Equal(b.SentAt) {
			return a.SentAt.Before(b.SentAt)
		}
		if a.State != b.State {
			return a.State == Confirmed
		}
		return a.id() < b.id()
	})
	return out
}

func byCorrelation(out []Message, absorbed []bool, p Message) (int, bool) {
	if p.LocalID == "" {
		return 0, false
	}
	for i, m := range out {
		if !absorbed[i] && m.State == Confirmed && m.LocalID == p.LocalID {
			return i, true
		}
	}
	return 0, false
}

func byContent(out []Message, absorbed []bool, p Message) (int, bool) {
	for i, m := range out {
		if absorbed[i] || m.State != Confirmed || m.SenderID != p.SenderID || m.Text != p.Text {
			continue
		}
		d := m.SentAt.Sub(p.SentAt)
		if d < 0 {
			d = -d
		}
		if d <= matchWindow {
			return i, true
		}
	}
	return 0, false
}

func (m Message) id() string {
	if m.ServerID != "" {
		return m.ServerID
	}
	return m.LocalID
}
