// Package messages exposes the request/response side of the messaging core:
// the conversation fetch used for reconciliation and the redundant
// durable-write endpoint that backs up the live channel.
package messages

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/collegebuddy/backend/internal/middleware"
	"github.com/collegebuddy/backend/internal/model/chat"
	"github.com/collegebuddy/backend/internal/model/user"
	"github.com/collegebuddy/backend/internal/store"
	"github.com/collegebuddy/backend/pkg/utils"
)

var validate = validator.New()

// Handler implements the message endpoints. All of them require auth.
type Handler struct {
	st *store.Store
}

// New creates the messages handler.
func New(st *store.Store) *Handler {
	return &Handler{st: st}
}

// RegisterRoutes mounts the message endpoints on an authenticated router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/messages", h.handleList)
	r.Post("/messages", h.handleCreate)
}

type messageWithUsers struct {
	chat.Message
	Sender   *user.User `json:"sender"`
	Receiver *user.User `json:"receiver"`
}

func (h *Handler) embedUsers(r *http.Request, m chat.Message) messageWithUsers {
	out := messageWithUsers{Message: m}
	if sender, err := h.st.GetUser(r.Context(), m.SenderID); err == nil {
		public := sender.Public()
		out.Sender = &public
	}
	if receiver, err := h.st.GetUser(r.Context(), m.ReceiverID); err == nil {
		public := receiver.Public()
		out.Receiver = &public
	}
	return out
}

// handleList returns the caller's messages ascending by creation time,
// narrowed to one conversation when otherUserId is given. This is the fetch
// side the client reconciler merges against its live events.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "access token required")
		return
	}

	msgs, err := h.st.GetMessages(r.Context(), u.ID, r.URL.Query().Get("otherUserId"))
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}

	utils.RespondJSON(w, http.StatusOK, lo.Map(msgs, func(m chat.Message, _ int) messageWithUsers {
		return h.embedUsers(r, m)
	}))
}

type createMessageRequest struct {
	ReceiverID string `json:"receiverId" validate:"required"`
	Content    string `json:"content" validate:"required"`
	ItemID     string `json:"itemId"`
	NoteID     string `json:"noteId"`
}

// handleCreate is the durable-write path. Every compose action hits it in
// addition to the live sendMessage event, and the two copies are not
// deduplicated here; the client reconciler collapses them on read.
func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "access token required")
		return
	}

	var payload createMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.st.CreateMessage(r.Context(), chat.Draft{
		SenderID:   u.ID,
		ReceiverID: payload.ReceiverID,
		Content:    payload.Content,
		ItemID:     payload.ItemID,
		NoteID:     payload.NoteID,
	})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to save message")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, msg)
}
