package domain

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

const MaxReviewImages = 4

// Reply is the single admin answer to a review.
type Reply struct {
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r *Reply) Scan(src interface{}) error {
	return scanJSON(src, r)
}

func (r Reply) Value() (driver.Value, error) {
	return valueJSON(r)
}

// Review is unique per (UserID, ProductID, OrderID).
type Review struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"productId"`
	UserID    uuid.UUID `json:"userId"`
	OrderID   uuid.UUID `json:"orderId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Hidden    bool      `json:"hidden"`
	Reply     *Reply    `json:"reply,omitempty"`
	Images    Images    `json:"images"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	UserName string `json:"userName,omitempty"`
}

// RatingSummary is the product-level aggregate over all reviews.
type RatingSummary struct {
	Average float64 `json:"ratingsAverage"`
	Count   int     `json:"ratingsQuantity"`
}
