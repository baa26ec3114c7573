package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tavsec/gin-healthcheck/checks"

	"github.com/train-tools/bestprice-api/internal"
	"github.com/train-tools/bestprice-api/internal/models"
)

type stubAggregator struct {
	result     *models.AggregationResult
	err        error
	gotStart   string
	gotZiel    string
	gotOptions models.SearchOptions
	calls      int
}

func (s *stubAggregator) Aggregate(_ context.Context, start, ziel string, options models.SearchOptions) (*models.AggregationResult, error) {
	s.calls++
	s.gotStart = start
	s.gotZiel = ziel
	s.gotOptions = options
	return s.result, s.err
}

type stubClient struct {
	lastUpdated *time.Time
}

func (s *stubClient) ResolveStation(context.Context, string) (models.StationRef, bool) {
	return models.StationRef{}, false
}

func (s *stubClient) BestPriceForDay(_ context.Context, _, _ models.StationRef, _ time.Time, _ models.SearchOptions) models.DayResult {
	return models.DayResult{}
}

func (s *stubClient) LastUpdated() *time.Time { return s.lastUpdated }
func (s *stubClient) Check() checks.Check     { return nil }

func perform(aggregator internal.Aggregator, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/search", Search(aggregator, &stubClient{}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestSearchRejectsMissingStations(t *testing.T) {
	aggregator := &stubAggregator{}

	for _, body := range []string{
		`{}`,
		`{"start": "München"}`,
		`{"ziel": "Berlin"}`,
	} {
		w := perform(aggregator, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
	}
	assert.Zero(t, aggregator.calls, "validation failures must not trigger a run")
}

func TestSearchRejectsInvalidOptions(t *testing.T) {
	aggregator := &stubAggregator{}

	w := perform(aggregator, `{"start": "München", "ziel": "Berlin", "klasse": "KLASSE_3"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(aggregator, `{"start": "München", "ziel": "Berlin", "abfahrtab": "tomorrow"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Zero(t, aggregator.calls)
}

func TestSearchResolutionFailureIs404(t *testing.T) {
	aggregator := &stubAggregator{
		err: &internal.ResolutionError{StartQuery: "Nowhere", DestinationQuery: "Berlin", StartFound: false, DestinationFound: true},
	}

	w := perform(aggregator, `{"start": "Nowhere", "ziel": "Berlin"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `start station \"Nowhere\"`)
}

func TestSearchReturnsEnvelopeWithBookingLinks(t *testing.T) {
	aggregator := &stubAggregator{
		result: &models.AggregationResult{
			ByDate: map[string]models.DayResult{
				"2025-07-26": {
					Date:          "2025-07-26",
					BestPrice:     80,
					Info:          "26.07.2025, 05:54:00 München Hbf -> 26.07.2025, 10:30:00 Berlin Hbf",
					BestDeparture: "2025-07-26T05:54:00",
					BestArrival:   "2025-07-26T10:30:00",
					Connections: []models.ConnectionLeg{
						{Price: 80, Departure: "2025-07-26T05:54:00", Arrival: "2025-07-26T10:30:00"},
						{Price: 95.9, Departure: "2025-07-26T10:28:00", Arrival: "2025-07-26T15:02:00"},
					},
				},
				"2025-07-27": {Date: "2025-07-27", BestPrice: 0, Info: "no best price available"},
			},
			Meta: models.Meta{
				Start:       models.StationRef{ID: "id-muc@", Name: "München Hbf"},
				Destination: models.StationRef{ID: "id-ber@", Name: "Berlin Hbf"},
				Options: models.SearchOptions{
					TravelClass: models.TravelClassSecond,
					DayCount:    2,
				},
			},
		},
	}

	w := perform(aggregator, `{"start": "München", "ziel": "Berlin", "dayLimit": 2, "maximaleUmstiege": 0}`)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "München", aggregator.gotStart)
	assert.Equal(t, "Berlin", aggregator.gotZiel)
	assert.Equal(t, 2, aggregator.gotOptions.DayCount)
	assert.Equal(t, models.TravelClassSecond, aggregator.gotOptions.TravelClass)

	var response models.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	require.Len(t, response.Results, 2)
	assert.Equal(t, "München Hbf", response.Meta.Start.Name)
	assert.NotEmpty(t, response.Attribution)

	priced := response.Results["2025-07-26"]
	require.Len(t, priced.Connections, 2)
	for _, leg := range priced.Connections {
		assert.Contains(t, leg.BookingLink, "https://www.bahn.de/buchung/fahrplan/suche#sts=true")
		assert.Contains(t, leg.BookingLink, "&kl=2")
		assert.Contains(t, leg.BookingLink, "&d=true")
	}

	require.NotNil(t, response.Statistics)
	assert.Equal(t, 80.0, response.Statistics.LowestPrice)
	assert.Equal(t, 1, response.Statistics.PricedDays)
	assert.Equal(t, 2, response.Statistics.TotalDays)

	sentinel := response.Results["2025-07-27"]
	assert.Zero(t, sentinel.BestPrice)
	assert.Empty(t, sentinel.Connections)
}
