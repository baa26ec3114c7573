package internal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	neturl "net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/tavsec/gin-healthcheck/checks"

	"github.com/train-tools/bestprice-api/internal/metrics"
	"github.com/train-tools/bestprice-api/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const DefaultBaseURL = "https://www.bahn.de/web/api"

var ATTRIBUTION = []string{
	"Connection and price data from bahn.de (Deutsche Bahn AG)",
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:137.0) Gecko/20100101 Firefox/137.0"

// noPriceMarker is the literal the upstream embeds in otherwise-successful
// responses when no best price can be quoted for the requested day.
const noPriceMarker = "Preisauskunft nicht möglich"

// anchorTime is the fixed time-of-day the day query is anchored at.
const anchorTime = "T08:00:00"

// productCategories is the full upstream allowlist; day queries always
// request every transport product.
var productCategories = []string{
	"ICE", "EC_IC", "IR", "REGIONAL", "SBAHN", "BUS", "SCHIFF", "UBAHN", "TRAM", "ANRUFPFLICHTIG",
}

// HTTPStatusError is returned when the remote server responds with a non-2xx status.
type HTTPStatusError struct {
	URL        string
	Status     string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http status response from %s: %s", e.URL, e.Status)
}

// TrainPricesClient talks to the two bahn.de endpoints the aggregation engine
// depends on: place search and best-price-of-day.
type TrainPricesClient interface {
	// ResolveStation maps a free-text query to the first matching station.
	// Transport failures, non-2xx responses and empty candidate lists all
	// collapse to not-found.
	ResolveStation(ctx context.Context, query string) (models.StationRef, bool)

	// BestPriceForDay issues one best-price query for a single calendar day
	// and reduces the response. It never fails: upstream errors come back as
	// a zero-price DayResult whose Info names the reason.
	BestPriceForDay(ctx context.Context, origin, destination models.StationRef, day time.Time, options models.SearchOptions) models.DayResult

	LastUpdated() *time.Time
	Check() checks.Check
}

type bahnManager struct {
	baseUrl string
	client  *http.Client

	mu        sync.Mutex
	lastFetch time.Time
}

func NewTrainPricesClient(baseUrl string) TrainPricesClient {
	if baseUrl == "" {
		baseUrl = DefaultBaseURL
	}
	return &bahnManager{
		baseUrl: strings.TrimSuffix(baseUrl, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (mgr *bahnManager) ResolveStation(ctx context.Context, query string) (models.StationRef, bool) {
	if strings.TrimSpace(query) == "" {
		return models.StationRef{}, false
	}

	url := fmt.Sprintf("%s/reiseloesung/orte?suchbegriff=%s&typ=ALL&limit=10",
		mgr.baseUrl, neturl.QueryEscape(query))
	body, err := mgr.get(ctx, "orte", url)
	if err != nil {
		log.Printf("station lookup for %q failed: %v", query, err)
		return models.StationRef{}, false
	}

	var places []models.Place
	if err := json.Unmarshal(body, &places); err != nil {
		log.Printf("station lookup for %q returned unparseable body: %v", query, err)
		return models.StationRef{}, false
	}
	if len(places) == 0 {
		return models.StationRef{}, false
	}

	// First candidate in upstream ranking order wins. The id is opaque and
	// round-tripped verbatim.
	return models.StationRef{ID: places[0].ID, Name: places[0].Name}, true
}

func (mgr *bahnManager) BestPriceForDay(ctx context.Context, origin, destination models.StationRef, day time.Time, options models.SearchOptions) models.DayResult {
	date := day.Format("2006-01-02")

	request := models.DayPriceRequest{
		AbfahrtsHalt:     origin.ID,
		AnfrageZeitpunkt: date + anchorTime,
		AnkunftsHalt:     destination.ID,
		AnkunftSuche:     "ABFAHRT",
		Klasse:           string(options.TravelClass),
		MaxUmstiege:      options.MaxTransfers,
		Produktgattungen: productCategories,
		Reisende: []models.Traveller{{
			Typ:            "ERWACHSENER",
			Ermaessigungen: []models.Reduction{{Art: "KEINE_ERMAESSIGUNG", Klasse: "KLASSENLOS"}},
			Alter:          []string{},
			Anzahl:         1,
		}},
		SchnelleVerbindungen:             options.PreferFastConnections,
		NurDeutschlandTicketVerbindungen: options.GermanyTicketOnly,
	}

	body, err := mgr.post(ctx, "tagesbestpreis", mgr.baseUrl+"/angebote/tagesbestpreis", request)
	if err != nil {
		var stErr *HTTPStatusError
		if errors.As(err, &stErr) {
			return zeroDay(date, fmt.Sprintf("API error %d: %s", stErr.StatusCode, truncate(string(body), 100)), "api_error")
		}
		return zeroDay(date, fmt.Sprintf("request failed: %v", err), "request_failed")
	}

	if bytes.Contains(body, []byte(noPriceMarker)) {
		return zeroDay(date, "no best price available", "no_best_price")
	}

	var resp models.DayPriceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		log.Printf("failed to parse best-price response for %s: %v", date, err)
		return zeroDay(date, "parse error", "parse_error")
	}
	if len(resp.Intervalle) == 0 {
		return zeroDay(date, "no intervals found", "no_intervals")
	}

	return reduce(date, resp.Intervalle)
}

// legKey identifies a connection for dedup and tie-breaking; near-duplicate
// upstream intervals with the same description and price collapse to one.
type legKey struct {
	description string
	price       float64
}

func reduce(date string, intervals []models.Interval) models.DayResult {
	seen := make(map[legKey]struct{}, len(intervals))
	legs := make([]models.ConnectionLeg, 0, len(intervals))
	best := -1

	for i := range intervals {
		iv := &intervals[i]
		if iv.Preis == nil || iv.Preis.Betrag <= 0 {
			continue
		}
		abschnitt := iv.FirstLeg()
		if abschnitt == nil {
			continue
		}

		leg := models.ConnectionLeg{
			Price:            iv.Preis.Betrag,
			Departure:        abschnitt.AbfahrtsZeitpunkt,
			Arrival:          abschnitt.AnkunftsZeitpunkt,
			DepartureStation: abschnitt.AbfahrtsOrt,
			ArrivalStation:   abschnitt.AnkunftsOrt,
			Description:      describe(abschnitt),
		}

		key := legKey{leg.Description, leg.Price}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		legs = append(legs, leg)

		// Strict less-than: first-seen wins on exact ties.
		if best < 0 || leg.Price < legs[best].Price {
			best = len(legs) - 1
		}
	}

	if best < 0 {
		return zeroDay(date, "no valid prices found", "no_valid_prices")
	}

	winner := legs[best]
	sort.SliceStable(legs, func(i, j int) bool {
		return legs[i].Price < legs[j].Price
	})

	return models.DayResult{
		Date:          date,
		BestPrice:     winner.Price,
		Info:          winner.Description,
		BestDeparture: winner.Departure,
		BestArrival:   winner.Arrival,
		Connections:   legs,
	}
}

func describe(leg *models.Abschnitt) string {
	return fmt.Sprintf("%s %s -> %s %s",
		formatTimestamp(leg.AbfahrtsZeitpunkt), leg.AbfahrtsOrt,
		formatTimestamp(leg.AnkunftsZeitpunkt), leg.AnkunftsOrt)
}

// formatTimestamp renders an upstream timestamp in the de-DE style shown to
// users. The upstream sends local times, with or without a zone offset.
func formatTimestamp(ts string) string {
	for _, layout := range []string{"2006-01-02T15:04:05Z07:00", "2006-01-02T15:04:05"} {
		if parsed, err := time.Parse(layout, ts); err == nil {
			return parsed.Format("02.01.2006, 15:04:05")
		}
	}
	return ts
}

func zeroDay(date, info, reason string) models.DayResult {
	metrics.ZeroPriceDaysTotal.WithLabelValues(reason).Inc()
	return models.DayResult{Date: date, BestPrice: 0, Info: info}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func (mgr *bahnManager) LastUpdated() *time.Time {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	if mgr.lastFetch.IsZero() {
		return nil
	}
	t := mgr.lastFetch
	return &t
}

func (mgr *bahnManager) markFetched() {
	mgr.mu.Lock()
	mgr.lastFetch = time.Now()
	mgr.mu.Unlock()
}

func (mgr *bahnManager) get(ctx context.Context, endpoint, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9,en;q=0.8")
	req.Header.Set("Referer", "https://www.bahn.de/")

	return mgr.do(endpoint, req)
}

func (mgr *bahnManager) post(ctx context.Context, endpoint, url string, data any) ([]byte, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Origin", "https://www.bahn.de")
	req.Header.Set("Referer", "https://www.bahn.de/buchung/fahrplan/suche")

	return mgr.do(endpoint, req)
}

// do performs the request and reads the full body. On a non-2xx status the
// body read so far is still returned alongside an *HTTPStatusError so callers
// can surface a truncated excerpt.
func (mgr *bahnManager) do(endpoint string, req *http.Request) ([]byte, error) {
	started := time.Now()
	resp, err := mgr.client.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("failed to fetch from %s: %w", req.URL, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("failed to close body: %v", err)
		}
	}()

	metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	metrics.UpstreamRequestDuration.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode > 299 {
		return body, &HTTPStatusError{URL: req.URL.String(), Status: resp.Status, StatusCode: resp.StatusCode}
	}

	mgr.markFetched()
	return body, nil
}

// upstreamCheck reports the upstream API as healthy while its host answers
// HTTP at all; a 4xx from the bare base URL still means reachable.
type upstreamCheck struct {
	baseUrl string
}

func (c upstreamCheck) Name() string { return "bahn-api" }

func (c upstreamCheck) Pass() bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(c.baseUrl)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode < 500
}

func (mgr *bahnManager) Check() checks.Check {
	return upstreamCheck{baseUrl: mgr.baseUrl}
}
