package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/collegebuddy/backend/internal/model/chat"
)

// Messages are keyed "msg:{paddedUnixNano}:{uuid}" so a plain prefix scan
// yields chronological order; the uuid breaks ties when two messages land on
// the same nanosecond.
const messageKeyPrefix = "msg:"

func messageKey(m chat.Message) string {
	return fmt.Sprintf("%s%019d:%s", messageKeyPrefix, m.CreatedAt.UnixNano(), m.ID)
}

// CreateMessage materialises a draft into a durable message, assigning id,
// unread flag and creation time. Drafts arriving over both write paths are
// stored as-is; reconciliation is a read-side concern.
func (s *Store) CreateMessage(_ context.Context, d chat.Draft) (chat.Message, error) {
	msg := chat.Message{
		ID:         uuid.NewString(),
		SenderID:   d.SenderID,
		ReceiverID: d.ReceiverID,
		Content:    d.Content,
		ItemID:     d.ItemID,
		NoteID:     d.NoteID,
		Read:       false,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.put(messageKey(msg), msg); err != nil {
		return chat.Message{}, err
	}
	return msg, nil
}

// GetMessages returns messages involving userID ordered by creation time
// ascending. When otherUserID is set, only the conversation between the two
// users (in either direction) is returned.
func (s *Store) GetMessages(_ context.Context, userID, otherUserID string) ([]chat.Message, error) {
	var all []chat.Message
	err := s.scanPrefix(messageKeyPrefix, func(val []byte) error {
		var m chat.Message
		if err := json.Unmarshal(val, &m); err != nil {
			return err
		}
		all = append(all, m)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if otherUserID != "" {
		return lo.Filter(all, func(m chat.Message, _ int) bool {
			return (m.SenderID == userID && m.ReceiverID == otherUserID) ||
				(m.SenderID == otherUserID && m.ReceiverID == userID)
		}), nil
	}
	return lo.Filter(all, func(m chat.Message, _ int) bool {
		return m.SenderID == userID || m.ReceiverID == userID
	}), nil
}
