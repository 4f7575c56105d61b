package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"homezy/internal/chat"
	"homezy/internal/domain"
)

// MessageService stores guest/host conversations.
type MessageService struct {
	repo domain.MessageRepository
	now  func() time.Time
}

func NewMessageService(r domain.MessageRepository) *MessageService {
	return &MessageService{repo: r, now: time.Now}
}

func (s *MessageService) OpenThread(ctx context.Context, guestID, hostID, listingID string) (domain.Thread, error) {
	if guestID == "" || hostID == "" || listingID == "" {
		return domain.Thread{}, domain.Invalid("guest_id, host_id and listing_id are required")
	}
	t := domain.Thread{ID: uuid.NewString(), GuestID: guestID, HostID: hostID, ListingID: listingID, CreatedAt: s.now().UTC()}
	err := s.repo.CreateThread(ctx, t)
	if errors.Is(err, domain.ErrConflict) {
		// one thread per guest, host and listing
		return s.repo.FindThread(ctx, guestID, hostID, listingID)
	}
	if err != nil {
		return domain.Thread{}, err
	}
	return t, nil
}

// Send confirms a message. Resending the same local id returns the copy
// stored the first time.
func (s *MessageService) Send(ctx context.Context, threadID, senderID, localID, text string) (domain.StoredMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.StoredMessage{}, domain.Invalid("text is required")
	}
	t, err := s.repo.GetThread(ctx, threadID)
	if err != nil {
		return domain.StoredMessage{}, err
	}
	if senderID != t.GuestID && senderID != t.HostID {
		return domain.StoredMessage{}, domain.Invalid("sender is not part of this thread")
	}

	m := domain.StoredMessage{
		ID:       uuid.NewString(),
		ThreadID: threadID,
		SenderID: senderID,
		LocalID:  localID,
		Text:     text,
		SentAt:   s.now().UTC().Truncate(time.Millisecond),
	}
	err = s.repo.InsertMessage(ctx, m)
	if errors.Is(err, domain.ErrConflict) && localID != "" {
		msgs, lerr := s.repo.ListMessages(ctx, threadID)
		if lerr != nil {
			return domain.StoredMessage{}, lerr
		}
		for _, prev := range msgs {
			if prev.LocalID == localID {
				return prev, nil
			}
		}
	}
	if err != nil {
		return domain.StoredMessage{}, err
	}
	return m, nil
}

func (s *MessageService) List(ctx context.Context, threadID string) ([]domain.StoredMessage, error) {
	if _, err := s.repo.GetThread(ctx, threadID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, threadID)
}

// Sync merges the client's timeline with the stored thread.
func (s *MessageService) Sync(ctx context.Context, threadID string, local []chat.Message) ([]chat.Message, error) {
	stored, err := s.List(ctx, threadID)
	if err != nil {
		return nil, err
	}
	server := make([]chat.Message, 0, len(stored))
	for _, m := range stored {
		server = append(server, chat.FromStored(m))
	}
	return chat.Reconcile(local, server), nil
}
