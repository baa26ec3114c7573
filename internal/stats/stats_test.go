package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/train-tools/bestprice-api/internal/models"
)

func TestDeriveEmptyRun(t *testing.T) {
	stats := Derive(map[string]models.DayResult{}, 10)
	require.NotNil(t, stats)
	assert.Zero(t, stats.TotalDays)
	assert.Zero(t, stats.PricedDays)
	assert.Empty(t, stats.CheapestDays)
}

func TestDeriveSkipsZeroPriceSentinels(t *testing.T) {
	byDate := map[string]models.DayResult{
		"2025-07-26": {Date: "2025-07-26", BestPrice: 80},
		"2025-07-27": {Date: "2025-07-27", BestPrice: 0, Info: "no best price available"},
		"2025-07-28": {Date: "2025-07-28", BestPrice: 95.5},
	}

	stats := Derive(byDate, 10)

	assert.Equal(t, 3, stats.TotalDays)
	assert.Equal(t, 2, stats.PricedDays)
	assert.Equal(t, 80.0, stats.LowestPrice)
	assert.Equal(t, 95.5, stats.HighestPrice)
	assert.Equal(t, 87.75, stats.AveragePrice)
	assert.Equal(t, []string{"2025-07-26"}, stats.CheapestDays)
	assert.Greater(t, stats.StandardDeviation, 0.0)
}

func TestDeriveAllZeroPriceDays(t *testing.T) {
	byDate := map[string]models.DayResult{
		"2025-07-26": {Date: "2025-07-26", Info: "no valid prices found"},
		"2025-07-27": {Date: "2025-07-27", Info: "parse error"},
	}

	stats := Derive(byDate, 10)

	assert.Equal(t, 2, stats.TotalDays)
	assert.Zero(t, stats.PricedDays)
	assert.Zero(t, stats.LowestPrice)
	assert.Nil(t, stats.PriceDistribution)
}

func TestDeriveCheapestDayTieSortedChronologically(t *testing.T) {
	byDate := map[string]models.DayResult{
		"2025-07-28": {Date: "2025-07-28", BestPrice: 50},
		"2025-07-26": {Date: "2025-07-26", BestPrice: 50},
		"2025-07-27": {Date: "2025-07-27", BestPrice: 70},
	}

	stats := Derive(byDate, 10)

	assert.Equal(t, []string{"2025-07-26", "2025-07-28"}, stats.CheapestDays)
}

func TestDerivePriceDistributionBuckets(t *testing.T) {
	byDate := map[string]models.DayResult{
		"2025-07-26": {Date: "2025-07-26", BestPrice: 42},
		"2025-07-27": {Date: "2025-07-27", BestPrice: 47.9},
		"2025-07-28": {Date: "2025-07-28", BestPrice: 95},
	}

	stats := Derive(byDate, 10)

	assert.Equal(t, 2, stats.PriceDistribution["40-49"])
	assert.Equal(t, 1, stats.PriceDistribution["90-99"])
}
