package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/train-tools/bestprice-api/internal/models"
)

// Derive computes summary statistics over the priced days of a completed run.
// Zero-price sentinel days count towards TotalDays only.
func Derive(byDate map[string]models.DayResult, bucketSize int) *models.SearchStatistics {
	if bucketSize <= 0 {
		bucketSize = 10
	}
	stats := &models.SearchStatistics{
		TotalDays: len(byDate),
	}

	var prices []float64
	priceDays := make(map[float64][]string)
	for date, result := range byDate {
		if result.BestPrice <= 0 {
			continue
		}
		prices = append(prices, result.BestPrice)
		priceDays[result.BestPrice] = append(priceDays[result.BestPrice], date)
	}
	stats.PricedDays = len(prices)
	if len(prices) == 0 {
		return stats
	}

	lowest := prices[0]
	highest := prices[0]
	sum := 0.0
	for _, p := range prices {
		if p < lowest {
			lowest = p
		}
		if p > highest {
			highest = p
		}
		sum += p
	}
	stats.LowestPrice = lowest
	stats.HighestPrice = highest

	avg := sum / float64(len(prices))
	stats.AveragePrice = math.Round(avg*100) / 100

	if len(prices) > 1 {
		variance := 0.0
		for _, p := range prices {
			variance += math.Pow(p-avg, 2)
		}
		variance /= float64(len(prices))
		stats.StandardDeviation = math.Sqrt(variance)
	}

	stats.CheapestDays = priceDays[lowest]
	sort.Strings(stats.CheapestDays)

	stats.PriceDistribution = make(map[string]int)
	for _, p := range prices {
		price := int(p)
		bucketStart := (price / bucketSize) * bucketSize
		bucketEnd := bucketStart + bucketSize - 1
		bucketKey := fmt.Sprintf("%d-%d", bucketStart, bucketEnd)
		stats.PriceDistribution[bucketKey]++
	}

	return stats
}
