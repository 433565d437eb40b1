// Package ratings exposes rating submission and keeps the denormalised
// averages on users and notes up to date.
package ratings

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/collegebuddy/backend/internal/middleware"
	"github.com/collegebuddy/backend/internal/model/market"
	"github.com/collegebuddy/backend/internal/model/user"
	"github.com/collegebuddy/backend/internal/store"
	"github.com/collegebuddy/backend/pkg/utils"
)

var validate = validator.New()

// Handler implements the ratings endpoints.
type Handler struct {
	st *store.Store
}

// New creates the ratings handler.
func New(st *store.Store) *Handler {
	return &Handler{st: st}
}

// RegisterRoutes mounts the rating endpoints on an authenticated router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/ratings", h.handleCreate)
}

type createRatingRequest struct {
	RatedUserID string `json:"ratedUserId"`
	ItemID      string `json:"itemId"`
	NoteID      string `json:"noteId"`
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
	Comment     string `json:"comment"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "access token required")
		return
	}

	var payload createRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.RatedUserID == "" && payload.NoteID == "" {
		utils.RespondError(w, http.StatusBadRequest, "ratedUserId or noteId is required")
		return
	}

	created, err := h.st.CreateRating(r.Context(), market.Rating{
		RaterID:     u.ID,
		RatedUserID: payload.RatedUserID,
		ItemID:      payload.ItemID,
		NoteID:      payload.NoteID,
		Rating:      payload.Rating,
		Comment:     payload.Comment,
	})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to save rating")
		return
	}

	if payload.RatedUserID != "" {
		h.refreshUserRating(r, payload.RatedUserID)
	}
	if payload.NoteID != "" {
		h.refreshNoteRating(r, payload.NoteID)
	}

	utils.RespondJSON(w, http.StatusCreated, created)
}

func (h *Handler) refreshUserRating(r *http.Request, ratedUserID string) {
	ratings, err := h.st.ListRatings(r.Context(), store.RatingFilter{RatedUserID: ratedUserID})
	if err != nil || len(ratings) == 0 {
		return
	}
	avg := average(ratings)
	if _, err := h.st.UpdateUser(r.Context(), ratedUserID, func(u *user.User) {
		u.Rating = avg
		u.RatingCount = len(ratings)
	}); err != nil {
		log.Printf("[ratings] failed to refresh user %s rating: %v", ratedUserID, err)
	}
}

func (h *Handler) refreshNoteRating(r *http.Request, noteID string) {
	ratings, err := h.st.ListRatings(r.Context(), store.RatingFilter{NoteID: noteID})
	if err != nil || len(ratings) == 0 {
		return
	}
	avg := average(ratings)
	if _, err := h.st.UpdateNote(r.Context(), noteID, func(n *market.Note) {
		n.Rating = avg
		n.RatingCount = len(ratings)
	}); err != nil {
		log.Printf("[ratings] failed to refresh note %s rating: %v", noteID, err)
	}
}

func average(ratings []market.Rating) float64 {
	sum := lo.SumBy(ratings, func(r market.Rating) int { return r.Rating })
	return float64(sum) / float64(len(ratings))
}
