package transport

import (
	"net/http"

	"clothing-store/internal/middleware"
	"clothing-store/internal/repository"
	"clothing-store/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, logger: logger}
}

func (h *DashboardHandler) RegisterRoutes(r chi.Router, auth, admin Guard) {
	r.Route("/api/dashboard", func(r chi.Router) {
		r.Use(auth, admin)
		r.Get("/stats", h.Stats)
	})
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var (
		q   service.StatsQuery
		err error
	)
	if q.StartDate, err = queryDate(r, "startDate"); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "startDate must be YYYY-MM-DD")
		return
	}
	if q.EndDate, err = queryDate(r, "endDate"); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "endDate must be YYYY-MM-DD")
		return
	}
	q.ProductSort = repository.ParseSortOrder(r.URL.Query().Get("productSort"), repository.SortOrderDesc)

	stats, err := h.dashboardService.Stats(r.Context(), q)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to load dashboard stats")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{
		"data":         stats.Daily,
		"productStats": stats.Products,
	})
}
