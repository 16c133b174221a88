package domain

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

const (
	OrderStatusPending    = "Pending"
	OrderStatusProcessing = "Processing"
	OrderStatusShipped    = "Shipped"
	OrderStatusDelivered  = "Delivered"
	OrderStatusCancelled  = "Cancelled"

	PaymentMethodCOD    = "CashOnDelivery"
	PaymentMethodStripe = "Stripe"
)

// OrderStatuses is the allowed status set. No transition order is enforced.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func IsValidOrderStatus(status string) bool {
	for _, s := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// OrderItem is a line item frozen at checkout.
type OrderItem struct {
	ProductID  uuid.UUID `json:"productId"`
	Name       string    `json:"name"`
	Size       string    `json:"size"`
	Quantity   int       `json:"quantity"`
	Price      Money     `json:"price"`
	IsReviewed bool      `json:"isReviewed"`
}

type OrderItems []OrderItem

func (o *OrderItems) Scan(src interface{}) error {
	*o = OrderItems{}
	return scanJSON(src, o)
}

func (o OrderItems) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	return valueJSON(o)
}

// TotalQuantity sums the units over all line items.
func (o OrderItems) TotalQuantity() int {
	total := 0
	for _, item := range o {
		total += item.Quantity
	}
	return total
}

// Contains reports whether any line item references productID.
func (o OrderItems) Contains(productID uuid.UUID) bool {
	for _, item := range o {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

type Address struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Zip     string `json:"zip" validate:"required"`
	Country string `json:"country" validate:"required"`
}

func (a *Address) Scan(src interface{}) error {
	return scanJSON(src, a)
}

func (a Address) Value() (driver.Value, error) {
	return valueJSON(a)
}

// Order is immutable after placement except for Status, Payment and the
// per-item review marker.
type Order struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"userId"`
	Phone         string     `json:"phone"`
	Items         OrderItems `json:"items"`
	Amount        Money      `json:"amount"`
	Address       Address    `json:"address"`
	Status        string     `json:"status"`
	PaymentMethod string     `json:"paymentMethod"`
	Payment       bool       `json:"payment"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	// Populated on admin listings.
	UserName  string `json:"userName,omitempty"`
	UserEmail string `json:"userEmail,omitempty"`
}
