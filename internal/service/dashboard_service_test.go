package service

import (
	"context"
	"testing"
	"time"

	"clothing-store/internal/domain"
	"clothing-store/internal/repository"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestFillDailySeries_ZeroFillsGaps(t *testing.T) {
	start := day("2024-01-01")
	end := day("2024-01-03").Add(24*time.Hour - time.Nanosecond)
	rows := []domain.DailyStat{
		{Date: "2024-01-02", TotalSales: decimal.NewFromInt(50), TotalOrders: 1, TotalProducts: 2},
	}

	series := FillDailySeries(start, end, rows)

	require.Len(t, series, 3)
	assert.Equal(t, "2024-01-01", series[0].Date)
	assert.True(t, series[0].TotalSales.IsZero())
	assert.Equal(t, 0, series[0].TotalOrders)
	assert.Equal(t, rows[0], series[1])
	assert.Equal(t, "2024-01-03", series[2].Date)
	assert.Equal(t, 0, series[2].TotalProducts)
}

func TestProperty_DailySeriesLengthMatchesRange(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("series has one entry per inclusive day in ascending order", prop.ForAll(
		func(offset int, span int) bool {
			start := day("2023-01-01").AddDate(0, 0, offset)
			end := start.AddDate(0, 0, span).Add(24*time.Hour - time.Nanosecond)

			series := FillDailySeries(start, end, nil)
			if len(series) != span+1 {
				return false
			}
			for i := 1; i < len(series); i++ {
				if series[i-1].Date >= series[i].Date {
					return false
				}
			}
			return series[0].Date == start.Format(dateLayout)
		},
		gen.IntRange(0, 800),
		gen.IntRange(0, 120),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestDashboardService_Defaults(t *testing.T) {
	repo := &mockDashboardRepository{}
	service := &dashboardService{repo: repo, now: func() time.Time {
		return time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	}}

	stats, err := service.Stats(context.Background(), StatsQuery{})
	require.NoError(t, err)

	assert.Equal(t, day("2024-03-01"), repo.start)
	assert.Equal(t, day("2024-03-16").Add(-time.Nanosecond), repo.end)
	assert.Equal(t, repository.SortOrderDesc, repo.order)
	assert.Len(t, stats.Daily, 15)
	assert.NotNil(t, stats.Products)
}

func TestDashboardService_RangeAndSort(t *testing.T) {
	repo := &mockDashboardRepository{products: []domain.ProductStat{}}
	service := NewDashboardService(repo)
	ctx := context.Background()

	start, end := day("2024-01-01"), day("2024-01-03")
	stats, err := service.Stats(ctx, StatsQuery{StartDate: &start, EndDate: &end, ProductSort: repository.SortOrderAsc})
	require.NoError(t, err)
	assert.Len(t, stats.Daily, 3)
	assert.Equal(t, repository.SortOrderAsc, repo.order)

	_, err = service.Stats(ctx, StatsQuery{StartDate: &end, EndDate: &start})
	assert.ErrorIs(t, err, ErrValidation)

	far := day("2026-01-01")
	_, err = service.Stats(ctx, StatsQuery{StartDate: &start, EndDate: &far})
	assert.ErrorIs(t, err, ErrValidation)
}
