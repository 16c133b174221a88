package domain

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// Image is an object stored in the image bucket.
type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

type Images []Image

func (i *Images) Scan(src interface{}) error {
	*i = Images{}
	return scanJSON(src, i)
}

func (i Images) Value() (driver.Value, error) {
	if i == nil {
		return "[]", nil
	}
	return valueJSON(i)
}

// PublicIDs lists the storage ids of the images.
func (i Images) PublicIDs() []string {
	ids := make([]string, 0, len(i))
	for _, img := range i {
		ids = append(ids, img.PublicID)
	}
	return ids
}

// Product is a catalog entry.
type Product struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         Money     `json:"price"`
	Discount      int       `json:"discount"`
	Quantity      int       `json:"quantity"`
	Sold          int       `json:"sold"`
	Status        string    `json:"status"`
	Sizes         []string  `json:"sizes"`
	Images        Images    `json:"image"`
	Tags          []string  `json:"tags"`
	RatingAverage float64   `json:"ratingsAverage"`
	RatingCount   int       `json:"ratingsQuantity"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// HasSize reports whether size is one of the sizes the product is sold in.
func (p *Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// FinalPrice is the unit price after discount.
func (p *Product) FinalPrice() Money {
	return DiscountedPrice(p.Price, p.Discount)
}

// Tag groups products for filtering, e.g. group "Season" / name "Summer".
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Group     string    `json:"group"`
	CreatedAt time.Time `json:"createdAt"`
}

type TagGroup struct {
	Group string `json:"group"`
	Tags  []Tag  `json:"tags"`
}
