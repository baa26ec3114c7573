package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/train-tools/bestprice-api/internal"
	"github.com/train-tools/bestprice-api/internal/models"
	"github.com/train-tools/bestprice-api/internal/stats"
)

type SearchParams struct {
	From         string
	To           string
	Date         string
	Days         int
	MaxTransfers int
	FirstClass   bool
	Fast         bool
	DTicket      bool
}

// Search runs a single aggregation from the command line and prints the
// price calendar to stdout.
func Search(params SearchParams) error {

	_, aggregator, err := bootstrap()
	if err != nil {
		return err
	}

	windowStart := time.Now().UTC().Truncate(24 * time.Hour)
	if params.Date != "" {
		windowStart, err = time.Parse("2006-01-02", params.Date)
		if err != nil {
			return errors.Wrapf(err, "invalid date %q", params.Date)
		}
	}

	class := models.TravelClassSecond
	if params.FirstClass {
		class = models.TravelClassFirst
	}

	options := models.SearchOptions{
		TravelClass:           class,
		MaxTransfers:          params.MaxTransfers,
		PreferFastConnections: params.Fast,
		GermanyTicketOnly:     params.DTicket,
		WindowStart:           windowStart,
		DayCount:              params.Days,
	}

	result, err := aggregator.Aggregate(context.Background(), params.From, params.To, options)
	if err != nil {
		return err
	}

	meta := result.Meta
	fmt.Printf("%s (%s) -> %s (%s)\n\n", meta.Start.Name, meta.Start.ID, meta.Destination.Name, meta.Destination.ID)

	dates := make([]string, 0, len(result.ByDate))
	for date := range result.ByDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		day := result.ByDate[date]
		if day.BestPrice <= 0 {
			fmt.Printf("%s       --    %s\n", date, day.Info)
			continue
		}
		fmt.Printf("%s  %7.2f €  %s\n", date, day.BestPrice, day.Info)
		link := internal.BuildBookingLink(day.BestDeparture, meta.Start.ID, meta.Destination.ID, options.TravelClass, options.MaxTransfers)
		if link != "" {
			fmt.Printf("            book: %s\n", link)
		}
	}

	summary := stats.Derive(result.ByDate, 10)
	if summary.PricedDays == 0 {
		fmt.Println("\nno prices available for this period")
		return nil
	}

	fmt.Printf("\n%d of %d day(s) priced: lowest %.2f €, average %.2f €, highest %.2f € (cheapest on %v)\n",
		summary.PricedDays, summary.TotalDays, summary.LowestPrice, summary.AveragePrice, summary.HighestPrice, summary.CheapestDays)

	return nil
}
