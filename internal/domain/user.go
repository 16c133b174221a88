package domain

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a storefront customer or a back-office admin.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CartData     Cart      `json:"cartData"`
	CanComment   bool      `json:"canComment"`
	CanChat      bool      `json:"canChat"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Cart maps product id -> size -> quantity. A size whose quantity drops to
// zero is removed, and an item with no sizes left is removed with it.
type Cart map[string]map[string]int

func (c *Cart) Scan(src interface{}) error {
	*c = Cart{}
	return scanJSON(src, c)
}

func (c Cart) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	return valueJSON(c)
}

// Quantity returns the stored quantity for (itemID, size), zero when absent.
func (c Cart) Quantity(itemID, size string) int {
	return c[itemID][size]
}

// UserStats is a row of the admin customer overview. Totals only count
// delivered orders.
type UserStats struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	CanComment    bool      `json:"canComment"`
	CanChat       bool      `json:"canChat"`
	TotalOrders   int       `json:"totalOrders"`
	TotalSpent    Money     `json:"totalSpent"`
	TotalProducts int       `json:"totalProducts"`
	CreatedAt     time.Time `json:"createdAt"`
}
