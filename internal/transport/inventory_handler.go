package transport

import (
	"net/http"

	"clothing-store/internal/middleware"
	"clothing-store/internal/repository"
	"clothing-store/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	inventoryService service.InventoryService
	logger           *zap.Logger
}

func NewInventoryHandler(inventoryService service.InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService, logger: logger}
}

func (h *InventoryHandler) RegisterRoutes(r chi.Router, auth, admin Guard) {
	r.Route("/api/inventory-log", func(r chi.Router) {
		r.Use(auth, admin)
		r.Post("/create", h.Create)
		r.Get("/list", h.List)
	})
}

// Create records an IMPORT or EXPORT and moves stock by it.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateInventoryLogInput
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	log, err := h.inventoryService.Create(r.Context(), req)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to create inventory log")
		return
	}

	h.logger.Info("Inventory log created",
		zap.String("log_id", log.ID.String()),
		zap.String("type", log.Type),
		zap.Int("items", len(log.Items)),
	)
	middleware.RespondWithSuccess(w, http.StatusCreated, map[string]interface{}{
		"message": "Inventory log created",
		"log":     log,
	})
}

func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.InventoryLogFilter{
		Page:      queryPage(r),
		Type:      q.Get("type"),
		CreatedBy: q.Get("createdBy"),
	}

	var err error
	if filter.StartDate, err = queryDate(r, "startDate"); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "startDate must be YYYY-MM-DD")
		return
	}
	if filter.EndDate, err = queryEndDate(r, "endDate"); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "endDate must be YYYY-MM-DD")
		return
	}

	logs, total, err := h.inventoryService.List(r.Context(), filter)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list inventory logs")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, pageBody("logs", logs, filter.Page, total))
}
