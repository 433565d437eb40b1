// Package timeline merges the two message sources a client sees, the
// conversation fetched over REST and the events pushed on the live channel,
// into one ordered, duplicate-free view. The server deliberately writes each
// composed message through both paths, so collapsing the twins here is part
// of the protocol, not a workaround.
package timeline

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/collegebuddy/backend/internal/model/chat"
)

// DefaultWindow is the dedup tolerance matching the server's default. Two
// entries with equal content closer together than this are treated as one
// logical message. The value is a heuristic: identical texts sent inside the
// window merge falsely, and clock skew beyond it keeps real twins apart.
const DefaultWindow = 1000 * time.Millisecond

// Merge filters both sources to the (userID, otherUserID) conversation in
// either direction, sorts ascending by creation time, and drops entries that
// duplicate an earlier one within window. Passing a window of zero disables
// deduplication. Merge is idempotent: merging its own output changes nothing.
func Merge(userID, otherUserID string, fetched, live []chat.Message, window time.Duration) []chat.Message {
	combined := make([]chat.Message, 0, len(fetched)+len(live))
	combined = append(combined, fetched...)
	combined = append(combined, live...)

	pair := lo.Filter(combined, func(m chat.Message, _ int) bool {
		return (m.SenderID == userID && m.ReceiverID == otherUserID) ||
			(m.SenderID == otherUserID && m.ReceiverID == userID)
	})

	sort.SliceStable(pair, func(i, j int) bool {
		return pair[i].CreatedAt.Before(pair[j].CreatedAt)
	})

	merged := make([]chat.Message, 0, len(pair))
	for _, m := range pair {
		if !duplicatesKept(merged, m, window) {
			merged = append(merged, m)
		}
	}
	return merged
}

// duplicatesKept walks kept entries newest-first. The slice is sorted, so
// once an entry falls outside the window nothing older can match either.
func duplicatesKept(kept []chat.Message, m chat.Message, window time.Duration) bool {
	for i := len(kept) - 1; i >= 0; i-- {
		if m.CreatedAt.Sub(kept[i].CreatedAt) >= window {
			return false
		}
		if kept[i].Content == m.Content {
			return true
		}
	}
	return false
}
