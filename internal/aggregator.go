package internal

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/train-tools/bestprice-api/internal/models"
)

const (
	MinDays = 1
	MaxDays = 30

	// DefaultPacing is the delay between successive day queries. The
	// upstream rate limit is undocumented; one second per request keeps
	// multi-day runs reliably under it.
	DefaultPacing = time.Second
)

// ResolutionError aborts a run before any day query is issued: one or both
// station queries matched nothing.
type ResolutionError struct {
	StartQuery       string
	DestinationQuery string
	StartFound       bool
	DestinationFound bool
}

func (e *ResolutionError) Error() string {
	var failed []string
	if !e.StartFound {
		failed = append(failed, fmt.Sprintf("start station %q", e.StartQuery))
	}
	if !e.DestinationFound {
		failed = append(failed, fmt.Sprintf("destination station %q", e.DestinationQuery))
	}
	return "station not found: " + strings.Join(failed, ", ")
}

// Aggregator runs a multi-day best-price search: resolve both endpoints once,
// then one day query per calendar day across the requested window.
type Aggregator interface {
	Aggregate(ctx context.Context, startQuery, destinationQuery string, options models.SearchOptions) (*models.AggregationResult, error)
}

type aggregationDriver struct {
	client TrainPricesClient
	pacing time.Duration
}

func NewAggregator(client TrainPricesClient, pacing time.Duration) Aggregator {
	return &aggregationDriver{
		client: client,
		pacing: pacing,
	}
}

// ClampDays forces a requested day count into [MinDays, MaxDays].
func ClampDays(days int) int {
	if days < MinDays {
		return MinDays
	}
	if days > MaxDays {
		return MaxDays
	}
	return days
}

// Aggregate resolves both station queries and then issues one best-price
// query per day, sequentially, pacing successive requests. Per-day failures
// are recorded as zero-price entries and never abort the run; a run where
// every day came back priceless is still a successful run.
func (a *aggregationDriver) Aggregate(ctx context.Context, startQuery, destinationQuery string, options models.SearchOptions) (*models.AggregationResult, error) {
	origin, originFound := a.client.ResolveStation(ctx, startQuery)
	destination, destinationFound := a.client.ResolveStation(ctx, destinationQuery)

	if !originFound || !destinationFound {
		return nil, &ResolutionError{
			StartQuery:       startQuery,
			DestinationQuery: destinationQuery,
			StartFound:       originFound,
			DestinationFound: destinationFound,
		}
	}

	options.DayCount = ClampDays(options.DayCount)

	log.Printf("searching best prices %s -> %s for %d day(s) from %s",
		origin.Name, destination.Name, options.DayCount, options.WindowStart.Format("2006-01-02"))

	byDate := make(map[string]models.DayResult, options.DayCount)
	day := options.WindowStart

	for i := 0; i < options.DayCount; i++ {
		if i > 0 {
			// Unconditional, even after a failed day query.
			time.Sleep(a.pacing)
		}

		result := a.client.BestPriceForDay(ctx, origin, destination, day, options)
		byDate[result.Date] = result

		day = day.AddDate(0, 0, 1)
	}

	return &models.AggregationResult{
		ByDate: byDate,
		Meta: models.Meta{
			Start:       origin,
			Destination: destination,
			Options:     options,
		},
	}, nil
}
