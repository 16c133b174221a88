package service

import (
	"context"
	"fmt"
	"time"

	"clothing-store/internal/domain"
	"clothing-store/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	dateLayout = "2006-01-02"

	// MaxDashboardDays bounds the zero-filled series.
	MaxDashboardDays = 366
)

// StatsQuery selects the reporting range. Nil dates take the defaults:
// the first day of the current month through today.
type StatsQuery struct {
	StartDate   *time.Time
	EndDate     *time.Time
	ProductSort repository.SortOrder
}

type DashboardService interface {
	Stats(ctx context.Context, q StatsQuery) (*domain.DashboardStats, error)
}

type dashboardService struct {
	repo repository.DashboardRepository
	now  func() time.Time
}

func NewDashboardService(repo repository.DashboardRepository) DashboardService {
	return &dashboardService{repo: repo, now: time.Now}
}

// Stats reports daily sales and a product ranking over paid orders that
// were not cancelled. Days are UTC calendar days and the end day is
// included in full.
func (s *dashboardService) Stats(ctx context.Context, q StatsQuery) (*domain.DashboardStats, error) {
	start, end := s.resolveRange(q)
	if end.Before(start) {
		return nil, invalidf("startDate must not be after endDate")
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > MaxDashboardDays {
		return nil, invalidf("date range must not exceed %d days", MaxDashboardDays)
	}

	daily, err := s.repo.DailyTotals(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily totals: %w", err)
	}

	sortOrder := q.ProductSort
	if sortOrder != repository.SortOrderAsc {
		sortOrder = repository.SortOrderDesc
	}
	products, err := s.repo.TopProducts(ctx, start, end, sortOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to load product ranking: %w", err)
	}
	if products == nil {
		products = []domain.ProductStat{}
	}

	return &domain.DashboardStats{
		Daily:    FillDailySeries(start, end, daily),
		Products: products,
	}, nil
}

func (s *dashboardService) resolveRange(q StatsQuery) (time.Time, time.Time) {
	now := s.now().UTC()

	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if q.StartDate != nil {
		start = startOfDay(*q.StartDate)
	}

	end := startOfDay(now)
	if q.EndDate != nil {
		end = startOfDay(*q.EndDate)
	}
	end = end.Add(24*time.Hour - time.Nanosecond)

	return start, end
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FillDailySeries returns one entry per UTC day from start to end
// inclusive, taking totals from rows and zero elsewhere.
func FillDailySeries(start, end time.Time, rows []domain.DailyStat) []domain.DailyStat {
	byDate := make(map[string]domain.DailyStat, len(rows))
	for _, row := range rows {
		byDate[row.Date] = row
	}

	series := []domain.DailyStat{}
	for day := startOfDay(start); !day.After(end); day = day.AddDate(0, 0, 1) {
		date := day.Format(dateLayout)
		if row, ok := byDate[date]; ok {
			series = append(series, row)
			continue
		}
		series = append(series, domain.DailyStat{Date: date, TotalSales: decimal.Zero})
	}
	return series
}
