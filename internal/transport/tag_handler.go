package transport

import (
	"net/http"

	"clothing-store/internal/middleware"
	"clothing-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateTagRequest struct {
	Name  string `json:"name" validate:"required"`
	Group string `json:"group" validate:"required"`
}

type RemoveTagRequest struct {
	ID uuid.UUID `json:"id" validate:"required"`
}

type TagHandler struct {
	tagService service.TagService
	logger     *zap.Logger
}

func NewTagHandler(tagService service.TagService, logger *zap.Logger) *TagHandler {
	return &TagHandler{tagService: tagService, logger: logger}
}

func (h *TagHandler) RegisterRoutes(r chi.Router, auth, admin Guard) {
	r.Route("/api/tag", func(r chi.Router) {
		r.Get("/tag-by-group", h.ListByGroup)

		r.Group(func(r chi.Router) {
			r.Use(auth, admin)
			r.Post("/add", h.Create)
			r.Post("/remove", h.Remove)
		})
	})
}

func (h *TagHandler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	groups, err := h.tagService.ListByGroup(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list tags")
		return
	}
	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{"tags": groups})
}

func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTagRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	tag, err := h.tagService.Create(r.Context(), req.Name, req.Group)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to create tag")
		return
	}
	middleware.RespondWithSuccess(w, http.StatusCreated, map[string]interface{}{
		"message": "Tag added",
		"tag":     tag,
	})
}

// Remove deletes the tag and detaches it from every product.
func (h *TagHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req RemoveTagRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	if err := h.tagService.Delete(r.Context(), req.ID); err != nil {
		respondServiceError(w, h.logger, err, "failed to remove tag")
		return
	}
	respondMessage(w, http.StatusOK, "Tag removed")
}
