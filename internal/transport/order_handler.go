package transport

import (
	"net/http"
	"strconv"

	"clothing-store/internal/middleware"
	"clothing-store/internal/repository"
	"clothing-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UpdateOrderStatusRequest struct {
	OrderID uuid.UUID `json:"orderId" validate:"required"`
	Status  string    `json:"status" validate:"required"`
}

type UpdatePaymentRequest struct {
	OrderID uuid.UUID `json:"orderId" validate:"required"`
	Payment *bool     `json:"payment" validate:"required"`
}

type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orderService: orderService, logger: logger}
}

func (h *OrderHandler) RegisterRoutes(r chi.Router, auth, admin Guard) {
	r.Route("/api/order", func(r chi.Router) {
		r.Use(auth)
		r.Post("/place-cod", h.PlaceCOD)
		r.Get("/userOrders", h.UserOrders)

		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Get("/list", h.List)
			r.Put("/status", h.UpdateStatus)
			r.Put("/payment", h.UpdatePayment)
		})
	})
}

// PlaceCOD places a cash-on-delivery order and empties the caller's cart.
func (h *OrderHandler) PlaceCOD(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req service.PlaceOrderInput
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	order, err := h.orderService.PlaceCOD(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to place order")
		return
	}

	h.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("amount", order.Amount.String()),
	)
	middleware.RespondWithSuccess(w, http.StatusCreated, map[string]interface{}{
		"message": "Order placed with Cash on Delivery",
		"order":   order,
	})
}

func (h *OrderHandler) UserOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	orders, err := h.orderService.ListUserOrders(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list orders")
		return
	}
	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repository.OrderFilter{
		Page:      queryPage(r),
		Status:    q.Get("status"),
		SortBy:    q.Get("sortBy"),
		SortOrder: repository.ParseSortOrder(q.Get("sortOrder"), repository.SortOrderDesc),
	}
	if filter.Status == "all" {
		filter.Status = ""
	}

	if raw := q.Get("payment"); raw != "" && raw != "all" {
		payment, err := strconv.ParseBool(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "payment must be true or false")
			return
		}
		filter.Payment = &payment
	}

	if raw := q.Get("userId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid userId")
			return
		}
		filter.UserID = &id
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

	orders, total, err := h.orderService.ListOrders(r.Context(), filter)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list orders")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, pageBody("orders", orders, filter.Page, total))
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrderStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), req.OrderID, req.Status)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update order status")
		return
	}
	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{
		"message": "Order status updated",
		"order":   order,
	})
}

func (h *OrderHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req UpdatePaymentRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	order, err := h.orderService.UpdatePayment(r.Context(), req.OrderID, *req.Payment)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update payment")
		return
	}
	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{
		"message": "Payment updated",
		"order":   order,
	})
}
