// Package items exposes marketplace listing endpoints.
package items

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

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

const maxImagesPerItem = 5

var validate = validator.New()

// Handler implements the listing endpoints.
type Handler struct {
	st      *store.Store
	uploads *uploads.Service
}

// New creates the items handler.
func New(st *store.Store, up *uploads.Service) *Handler {
	return &Handler{st: st, uploads: up}
}

// RegisterRoutes mounts the public read endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/items", h.handleList)
	r.Get("/items/{id}", h.handleGet)
}

// RegisterProtectedRoutes mounts the write endpoints.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/items", h.handleCreate)
	r.Patch("/items/{id}", h.handlePatch)
}

type itemWithSeller struct {
	market.Item
	Seller *user.User `json:"seller"`
}

func (h *Handler) withSeller(r *http.Request, it market.Item) itemWithSeller {
	out := itemWithSeller{Item: it}
	if seller, err := h.st.GetUser(r.Context(), it.SellerID); err == nil {
		public := seller.Public()
		out.Seller = &public
	}
	return out
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.st.ListItems(r.Context(), store.ItemFilter{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
		SellerID: r.URL.Query().Get("sellerId"),
	})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	utils.RespondJSON(w, http.StatusOK, lo.Map(items, func(it market.Item, _ int) itemWithSeller {
		return h.withSeller(r, it)
	}))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	it, err := h.st.GetItem(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		utils.RespondError(w, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load item")
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.withSeller(r, it))
}

type createItemRequest struct {
	Title       string  `validate:"required"`
	Description string  `validate:"required"`
	Price       float64 `validate:"required,gt=0"`
	Condition   string  `validate:"required"`
	Category    string  `validate:"required"`
}

// handleCreate accepts a multipart form with the listing fields plus up to
// five images.
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

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid price")
		return
	}

	payload := createItemRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Price:       price,
		Condition:   r.FormValue("condition"),
		Category:    r.FormValue("category"),
	}
	if err := validate.Struct(payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) > maxImagesPerItem {
		files = files[:maxImagesPerItem]
	}
	images := make([]string, 0, len(files))
	for _, fh := range files {
		path, err := h.uploads.SaveImage(fh)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		images = append(images, path)
	}

	created, err := h.st.CreateItem(r.Context(), market.Item{
		Title:       payload.Title,
		Description: payload.Description,
		Price:       payload.Price,
		Condition:   payload.Condition,
		Category:    payload.Category,
		Images:      images,
		SellerID:    u.ID,
	})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, created)
}

type patchItemRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Condition   *string  `json:"condition"`
	Category    *string  `json:"category"`
	Sold        *bool    `json:"sold"`
}

func (h *Handler) handlePatch(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "access token required")
		return
	}

	id := chi.URLParam(r, "id")
	existing, err := h.st.GetItem(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		utils.RespondError(w, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load item")
		return
	}
	if existing.SellerID != u.ID {
		utils.RespondError(w, http.StatusForbidden, "Not authorized")
		return
	}

	var patch patchItemRequest
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.st.UpdateItem(r.Context(), id, func(it *market.Item) {
		if patch.Title != nil {
			it.Title = *patch.Title
		}
		if patch.Description != nil {
			it.Description = *patch.Description
		}
		if patch.Price != nil {
			it.Price = *patch.Price
		}
		if patch.Condition != nil {
			it.Condition = *patch.Condition
		}
		if patch.Category != nil {
			it.Category = *patch.Category
		}
		if patch.Sold != nil {
			it.Sold = *patch.Sold
		}
	})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	utils.RespondJSON(w, http.StatusOK, updated)
}
