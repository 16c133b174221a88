package transport

import (
	"net/http"

	"clothing-store/internal/middleware"
	"clothing-store/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AddToCartRequest struct {
	ItemID string `json:"itemId" validate:"required"`
	Size   string `json:"size" validate:"required"`
}

type UpdateCartRequest struct {
	ItemID   string `json:"itemId" validate:"required"`
	Size     string `json:"size" validate:"required"`
	Quantity *int   `json:"quantity" validate:"required,gte=0"`
}

type CartHandler struct {
	cartService service.CartService
	logger      *zap.Logger
}

func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{cartService: cartService, logger: logger}
}

func (h *CartHandler) RegisterRoutes(r chi.Router, auth Guard) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(auth)
		r.Post("/add", h.Add)
		r.Put("/update", h.Update)
		r.Get("/get", h.Get)
	})
}

// Add bumps the (item, size) count by one.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	if err := h.cartService.AddToCart(r.Context(), userID, req.ItemID, req.Size); err != nil {
		respondServiceError(w, h.logger, err, "failed to add to cart")
		return
	}
	respondMessage(w, http.StatusOK, "Added to cart")
}

// Update sets the (item, size) count. Zero removes the entry.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req UpdateCartRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	if err := h.cartService.UpdateCart(r.Context(), userID, req.ItemID, req.Size, *req.Quantity); err != nil {
		respondServiceError(w, h.logger, err, "failed to update cart")
		return
	}
	respondMessage(w, http.StatusOK, "Cart updated")
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	cart, err := h.cartService.GetCart(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to load cart")
		return
	}
	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{"cartData": cart})
}
