package domain

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

const (
	InventoryImport = "IMPORT"
	InventoryExport = "EXPORT"
)

type InventoryItem struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`

	ProductName string `json:"productName,omitempty"`
}

type InventoryItems []InventoryItem

func (i *InventoryItems) Scan(src interface{}) error {
	*i = InventoryItems{}
	return scanJSON(src, i)
}

func (i InventoryItems) Value() (driver.Value, error) {
	if i == nil {
		return "[]", nil
	}
	return valueJSON(i)
}

// InventoryLog is an append-only ledger entry. Quantities are always
// positive; Type decides the direction.
type InventoryLog struct {
	ID        uuid.UUID      `json:"id"`
	Type      string         `json:"type"`
	Items     InventoryItems `json:"items"`
	CreatedBy string         `json:"createdBy"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Delta is the signed stock change for a quantity under this entry's type.
func (l *InventoryLog) Delta(quantity int) int {
	if l.Type == InventoryExport {
		return -quantity
	}
	return quantity
}
