package models

import (
	"time"

	"github.com/cockroachdb/errors"
)

// TravelClass mirrors the upstream class enum.
type TravelClass string

const (
	TravelClassFirst  TravelClass = "KLASSE_1"
	TravelClassSecond TravelClass = "KLASSE_2"
)

// Digit returns the single-character class code used by the booking flow.
func (c TravelClass) Digit() string {
	if c == TravelClassFirst {
		return "1"
	}
	return "2"
}

// SearchOptions describes one aggregation run. Immutable once the run starts.
type SearchOptions struct {
	TravelClass           TravelClass `json:"travel_class"`
	MaxTransfers          int         `json:"max_transfers"`
	PreferFastConnections bool        `json:"prefer_fast_connections"`
	GermanyTicketOnly     bool        `json:"germany_ticket_only"`
	WindowStart           time.Time   `json:"window_start"`
	DayCount              int         `json:"day_count"`
}

// ConnectionLeg is one priced itinerary returned for a single day.
type ConnectionLeg struct {
	Price            float64 `json:"price"`
	Departure        string  `json:"departure"`
	Arrival          string  `json:"arrival"`
	DepartureStation string  `json:"departure_station"`
	ArrivalStation   string  `json:"arrival_station"`
	Description      string  `json:"description"`
	BookingLink      string  `json:"booking_link,omitempty"`
}

// DayResult is the reduced outcome for one calendar date. A BestPrice of 0 is
// the sentinel for "no usable price"; Info then carries the reason.
type DayResult struct {
	Date          string          `json:"date"`
	BestPrice     float64         `json:"best_price"`
	Info          string          `json:"info"`
	BestDeparture string          `json:"best_departure,omitempty"`
	BestArrival   string          `json:"best_arrival,omitempty"`
	Connections   []ConnectionLeg `json:"connections,omitempty"`
}

// Meta echoes the resolved endpoints and the (clamped) options of a run.
type Meta struct {
	Start       StationRef    `json:"start"`
	Destination StationRef    `json:"destination"`
	Options     SearchOptions `json:"options"`
}

// AggregationResult is the merged outcome of one multi-day run. ByDate keys
// are ISO dates, so lexicographic key order is chronological order.
type AggregationResult struct {
	ByDate map[string]DayResult `json:"results"`
	Meta   Meta                 `json:"meta"`
}

// SearchStatistics summarises the priced days of a completed run.
type SearchStatistics struct {
	LowestPrice       float64        `json:"lowest_price"`
	AveragePrice      float64        `json:"average_price"`
	HighestPrice      float64        `json:"highest_price"`
	StandardDeviation float64        `json:"standard_deviation,omitempty"`
	CheapestDays      []string       `json:"cheapest_days,omitempty"`
	PricedDays        int            `json:"priced_days"`
	TotalDays         int            `json:"total_days"`
	PriceDistribution map[string]int `json:"price_distribution,omitempty"`
}

// SearchRequest is the request surface accepted by the search endpoint. The
// German field names match the upstream booking flow's own parameter names.
type SearchRequest struct {
	Start                            string `json:"start" binding:"required"`
	Ziel                             string `json:"ziel" binding:"required"`
	AbfahrtAb                        string `json:"abfahrtab"`
	Klasse                           string `json:"klasse"`
	SchnelleVerbindungen             bool   `json:"schnelleVerbindungen"`
	NurDeutschlandTicketVerbindungen bool   `json:"nurDeutschlandTicketVerbindungen"`
	MaximaleUmstiege                 int    `json:"maximaleUmstiege"`
	DayLimit                         int    `json:"dayLimit"`
}

// Options converts the request surface into run options, applying defaults:
// window starts today, second class, three days. Day-count clamping is the
// driver's job, not done here.
func (req *SearchRequest) Options() (SearchOptions, error) {
	windowStart := time.Now().UTC().Truncate(24 * time.Hour)
	if req.AbfahrtAb != "" {
		parsed, err := time.Parse("2006-01-02", req.AbfahrtAb)
		if err != nil {
			return SearchOptions{}, errors.Wrapf(err, "invalid abfahrtab date %q", req.AbfahrtAb)
		}
		windowStart = parsed
	}

	class := TravelClassSecond
	switch req.Klasse {
	case "", string(TravelClassSecond):
	case string(TravelClassFirst):
		class = TravelClassFirst
	default:
		return SearchOptions{}, errors.Newf("invalid klasse %q", req.Klasse)
	}

	if req.MaximaleUmstiege < 0 {
		return SearchOptions{}, errors.Newf("invalid maximaleUmstiege %d", req.MaximaleUmstiege)
	}

	dayCount := req.DayLimit
	if dayCount == 0 {
		dayCount = 3
	}

	return SearchOptions{
		TravelClass:           class,
		MaxTransfers:          req.MaximaleUmstiege,
		PreferFastConnections: req.SchnelleVerbindungen,
		GermanyTicketOnly:     req.NurDeutschlandTicketVerbindungen,
		WindowStart:           windowStart,
		DayCount:              dayCount,
	}, nil
}

// SearchResponse is the envelope returned to the presentation layer.
type SearchResponse struct {
	Results     map[string]DayResult `json:"results"`
	Meta        Meta                 `json:"meta"`
	Statistics  *SearchStatistics    `json:"statistics,omitempty"`
	Attribution []string             `json:"attribution"`
	LastUpdated *time.Time           `json:"last_updated,omitempty"`
}
