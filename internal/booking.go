package internal

import (
	neturl "net/url"

	"github.com/train-tools/bestprice-api/internal/models"
)

const bookingBaseURL = "https://www.bahn.de/buchung/fahrplan/suche"

// BuildBookingLink maps a chosen connection onto a deep link into the bahn.de
// booking flow. Returns "" when the departure timestamp or either station id
// is missing. Pure function, no network access.
func BuildBookingLink(departureTimestamp, originID, destinationID string, class models.TravelClass, maxTransfers int) string {
	if departureTimestamp == "" || originID == "" || destinationID == "" {
		return ""
	}

	directOnly := "false"
	if maxTransfers == 0 {
		directOnly = "true"
	}

	return bookingBaseURL +
		"#sts=true" +
		"&kl=" + class.Digit() +
		"&hd=" + neturl.QueryEscape(departureTimestamp) +
		"&soid=" + neturl.QueryEscape(originID) +
		"&zoid=" + neturl.QueryEscape(destinationID) +
		"&bp=true" +
		"&d=" + directOnly
}
