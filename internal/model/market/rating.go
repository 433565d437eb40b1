package market

import "time"

// Rating scores a seller or a note, optionally tied to the item that
// prompted it.
type Rating struct {
	ID          string    `json:"id"`
	RaterID     string    `json:"raterId"`
	RatedUserID string    `json:"ratedUserId,omitempty"`
	ItemID      string    `json:"itemId,omitempty"`
	NoteID      string    `json:"noteId,omitempty"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
