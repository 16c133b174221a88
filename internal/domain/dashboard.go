package domain

import "github.com/google/uuid"

// DailyStat is one day of sales over paid, non-cancelled orders.
type DailyStat struct {
	Date          string `json:"date"`
	TotalSales    Money  `json:"totalSales"`
	TotalOrders   int    `json:"totalOrders"`
	TotalProducts int    `json:"totalProducts"`
}

// ProductStat ranks a product by units sold in the range.
type ProductStat struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
}

type DashboardStats struct {
	Daily    []DailyStat   `json:"data"`
	Products []ProductStat `json:"productStats"`
}
