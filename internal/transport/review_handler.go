package transport

import (
	"net/http"
	"strconv"
	"strings"

	"clothing-store/internal/middleware"
	"clothing-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const reviewImageField = "images"

type ReplyRequest struct {
	ReviewID uuid.UUID `json:"reviewId" validate:"required"`
	Comment  string    `json:"comment" validate:"required"`
}

type ReviewIDRequest struct {
	ReviewID uuid.UUID `json:"reviewId" validate:"required"`
}

type ReviewHandler struct {
	reviewService service.ReviewService
	logger        *zap.Logger
}

func NewReviewHandler(reviewService service.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, logger: logger}
}

func (h *ReviewHandler) RegisterRoutes(r chi.Router, auth, admin Guard) {
	r.Route("/api/review", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/add", h.Add)
			r.Put("/update", h.Update)
			r.Get("/user-review", h.UserReview)

			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Get("/admin/{productId}", h.ListAll)
				r.Put("/reply", h.Reply)
				r.Put("/reply/remove", h.RemoveReply)
				r.Put("/hide", h.ToggleHidden)
			})
		})

		r.Get("/{productId}", h.ListVisible)
	})
}

func formUUID(r *http.Request, key string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(r.FormValue(key)))
	return id, err == nil
}

func formRating(r *http.Request) (int, bool) {
	rating, err := strconv.Atoi(strings.TrimSpace(r.FormValue("rating")))
	return rating, err == nil
}

// Add reads a multipart review with up to four "images" parts.
func (h *ReviewHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	if !parseMultipart(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	productID, okProduct := formUUID(r, "productId")
	orderID, okOrder := formUUID(r, "orderId")
	if !okProduct || !okOrder {
		middleware.RespondWithError(w, http.StatusBadRequest, "productId and orderId are required")
		return
	}
	rating, ok := formRating(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "rating must be a number between 1 and 5")
		return
	}

	images, closeImages, err := formFiles(r.MultipartForm, reviewImageField)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer closeImages()

	review, err := h.reviewService.Add(r.Context(), userID, service.AddReviewInput{
		ProductID: productID,
		OrderID:   orderID,
		Rating:    rating,
		Comment:   r.FormValue("comment"),
		Images:    images,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to add review")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusCreated, map[string]interface{}{
		"message": "Review added",
		"review":  review,
	})
}

// Update rewrites the caller's review. keptImages is a JSON array of the
// public ids to keep.
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	if !parseMultipart(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	reviewID, ok := formUUID(r, "reviewId")
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "reviewId is required")
		return
	}
	rating, ok := formRating(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "rating must be a number between 1 and 5")
		return
	}

	images, closeImages, err := formFiles(r.MultipartForm, reviewImageField)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer closeImages()

	review, err := h.reviewService.Update(r.Context(), userID, service.UpdateReviewInput{
		ReviewID:   reviewID,
		Rating:     rating,
		Comment:    r.FormValue("comment"),
		KeptImages: decodeStringList(r.FormValue("keptImages")),
		Images:     images,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update review")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{
		"message": "Review updated",
		"review":  review,
	})
}

func (h *ReviewHandler) UserReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	productID, errProduct := uuid.Parse(r.URL.Query().Get("productId"))
	orderID, errOrder := uuid.Parse(r.URL.Query().Get("orderId"))
	if errProduct != nil || errOrder != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "productId and orderId are required")
		return
	}

	review, err := h.reviewService.GetUserReview(r.Context(), userID, productID, orderID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get review")
		return
	}
	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{"review": review})
}

func (h *ReviewHandler) ListVisible(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

func (h *ReviewHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *ReviewHandler) list(w http.ResponseWriter, r *http.Request, includeHidden bool) {
	productID, ok := pathUUID(w, r, "productId")
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListForProduct(r.Context(), productID, includeHidden)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list reviews")
		return
	}
	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{"reviews": reviews})
}

func (h *ReviewHandler) Reply(w http.ResponseWriter, r *http.Request) {
	var req ReplyRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	review, err := h.reviewService.Reply(r.Context(), req.ReviewID, req.Comment)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to reply to review")
		return
	}
	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{
		"message": "Reply saved",
		"review":  review,
	})
}

func (h *ReviewHandler) RemoveReply(w http.ResponseWriter, r *http.Request) {
	var req ReviewIDRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	review, err := h.reviewService.RemoveReply(r.Context(), req.ReviewID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to remove reply")
		return
	}
	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{
		"message": "Reply removed",
		"review":  review,
	})
}

func (h *ReviewHandler) ToggleHidden(w http.ResponseWriter, r *http.Request) {
	var req ReviewIDRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	review, err := h.reviewService.ToggleHidden(r.Context(), req.ReviewID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update review visibility")
		return
	}
	middleware.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{
		"message": "Review visibility updated",
		"review":  review,
	})
}
