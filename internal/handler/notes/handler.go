// Package notes exposes study-notes upload, browsing and download endpoints.
package notes

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/collegebuddy/backend/internal/middleware"
	"github.com/collegebuddy/backend/internal/model/market"
	"github.com/collegebuddy/backend/internal/model/user"
	"github.com/collegebuddy/backend/internal/service/uploads"
	"github.com/collegebuddy/backend/internal/store"
	"github.com/collegebuddy/backend/pkg/utils"
)

var validate = validator.New()

// Handler implements the notes endpoints.
type Handler struct {
	st      *store.Store
	uploads *uploads.Service
}

// New creates the notes handler.
func New(st *store.Store, up *uploads.Service) *Handler {
	return &Handler{st: st, uploads: up}
}

// RegisterRoutes mounts the public read endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/notes", h.handleList)
	r.Get("/notes/{id}", h.handleGet)
}

// RegisterProtectedRoutes mounts upload and download.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/notes", h.handleCreate)
	r.Get("/notes/{id}/download", h.handleDownload)
}

type noteWithUploader struct {
	market.Note
	Uploader *user.User `json:"uploader"`
}

func (h *Handler) withUploader(r *http.Request, n market.Note) noteWithUploader {
	out := noteWithUploader{Note: n}
	if uploader, err := h.st.GetUser(r.Context(), n.UploaderID); err == nil {
		public := uploader.Public()
		out.Uploader = &public
	}
	return out
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	notes, err := h.st.ListNotes(r.Context(), store.NoteFilter{
		Subject:    r.URL.Query().Get("subject"),
		Search:     r.URL.Query().Get("search"),
		UploaderID: r.URL.Query().Get("uploaderId"),
	})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list notes")
		return
	}

	utils.RespondJSON(w, http.StatusOK, lo.Map(notes, func(n market.Note, _ int) noteWithUploader {
		return h.withUploader(r, n)
	}))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	n, err := h.st.GetNote(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		utils.RespondError(w, http.StatusNotFound, "Note not found")
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load note")
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.withUploader(r, n))
}

type createNoteRequest struct {
	Title       string `validate:"required"`
	Description string `validate:"required"`
	Subject     string `validate:"required"`
}

// handleCreate accepts a multipart form with the note fields and a single
// PDF under the "note" field.
func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "access token required")
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	files := r.MultipartForm.File["note"]
	if len(files) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "PDF file is required")
		return
	}

	payload := createNoteRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Subject:     r.FormValue("subject"),
	}
	if err := validate.Struct(payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	filePath, size, err := h.uploads.SavePDF(files[0])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var tags []string
	if raw := strings.TrimSpace(r.FormValue("tags")); raw != "" {
		tags = lo.Map(strings.Split(raw, ","), func(t string, _ int) string {
			return strings.TrimSpace(t)
		})
	}

	created, err := h.st.CreateNote(r.Context(), market.Note{
		Title:       payload.Title,
		Description: payload.Description,
		Subject:     payload.Subject,
		Unit:        r.FormValue("unit"),
		Tags:        tags,
		FilePath:    filePath,
		FileSize:    size,
		UploaderID:  u.ID,
	})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to create note")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, created)
}

// handleDownload bumps the download counter and streams the PDF.
func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	n, err := h.st.GetNote(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		utils.RespondError(w, http.StatusNotFound, "Note not found")
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load note")
		return
	}

	if _, err := h.st.UpdateNote(r.Context(), id, func(note *market.Note) {
		note.DownloadCount++
	}); err != nil {
		log.Printf("[notes] failed to bump download count for %s: %v", id, err)
	}

	path, err := h.uploads.Resolve(n.FilePath)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "stored file path is invalid")
		return
	}

	w.Header().Set("Content-Disposition", "attachment")
	http.ServeFile(w, r, path)
}
