package transport

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"clothing-store/internal/middleware"
	"clothing-store/internal/repository"
	"clothing-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// productImageFields are the multipart keys for product photos, in display
// order.
var productImageFields = []string{"image1", "image2", "image3", "image4"}

type BulkDiscountRequest struct {
	ProductIDs []uuid.UUID `json:"productIds" validate:"required,min=1"`
	Discount   *int        `json:"discount" validate:"required"`
}

type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{productService: productService, logger: logger}
}

func (h *ProductHandler) RegisterRoutes(r chi.Router, auth, admin Guard) {
	r.Route("/api/product", func(r chi.Router) {
		r.Get("/list", h.ListStorefront)
		r.Get("/single/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(auth, admin)
			r.Post("/add", h.Create)
			r.Get("/admin-list", h.ListAdmin)
			r.Delete("/remove/{id}", h.Remove)
			r.Post("/bulk-discount", h.BulkDiscount)
		})
	})
}

// decodeStringList accepts a JSON array or, failing that, a comma list.
func decodeStringList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		list = strings.Split(raw, ",")
	}

	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Create reads a multipart product form with up to four image parts.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseMultipart(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	price, err := decimal.NewFromString(strings.TrimSpace(r.FormValue("price")))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "price must be a number")
		return
	}
	discount, err := formInt(r, "discount", 0)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "discount must be a whole number")
		return
	}
	quantity, err := formInt(r, "quantity", 0)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "quantity must be a whole number")
		return
	}

	images, closeImages, err := formFiles(r.MultipartForm, productImageFields...)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer closeImages()

	product, err := h.productService.Create(r.Context(), service.CreateProductInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       price,
		Discount:    discount,
		Quantity:    quantity,
		Status:      strings.TrimSpace(r.FormValue("status")),
		Sizes:       decodeStringList(r.FormValue("sizes")),
		Tags:        decodeStringList(r.FormValue("tags")),
		Images:      images,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to add product")
		return
	}

	h.logger.Info("Product added", zap.String("product_id", product.ID.String()))
	middleware.RespondWithSuccess(w, http.StatusCreated, map[string]interface{}{
		"message": "Product added",
		"product": product,
	})
}

func formInt(r *http.Request, key string, def int) (int, error) {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// ListStorefront serves the public catalog newest first, paged by lastId.
func (h *ProductHandler) ListStorefront(w http.ResponseWriter, r *http.Request) {
	var cursor *uuid.UUID
	if raw := r.URL.Query().Get("lastId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid lastId")
			return
		}
		cursor = &id
	}

	page, err := h.productService.ListStorefront(r.Context(), cursor, queryInt(r, "limit", service.DefaultListLimit))
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list products")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{
		"products":   page.Products,
		"nextCursor": page.NextCursor,
		"hasMore":    page.HasMore,
	})
}

func (h *ProductHandler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status := q.Get("status")
	if status == "all" {
		status = ""
	}

	filter := repository.ProductFilter{
		Page:      queryPage(r),
		Search:    q.Get("search"),
		Status:    status,
		TagIDs:    decodeStringList(q.Get("tag")),
		SortBy:    q.Get("sort"),
		SortOrder: repository.ParseSortOrder(q.Get("order"), repository.SortOrderDesc),
	}

	products, total, err := h.productService.ListAdmin(r.Context(), filter)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list products")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, pageBody("products", products, filter.Page, total))
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to fetch product")
		return
	}
	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{"product": product})
}

func (h *ProductHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "failed to remove product")
		return
	}

	h.logger.Info("Product removed", zap.String("product_id", id.String()))
	respondMessage(w, http.StatusOK, "Product removed")
}

func (h *ProductHandler) BulkDiscount(w http.ResponseWriter, r *http.Request) {
	var req BulkDiscountRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	updated, err := h.productService.BulkDiscount(r.Context(), req.ProductIDs, *req.Discount)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to apply discount")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{
		"message": "Discount applied",
		"updated": updated,
	})
}
