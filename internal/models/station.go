package models

// Place is one candidate returned from the bahn.de place-search endpoint.
// The id is an opaque token (an "@"-separated key/value string) that must be
// round-tripped verbatim into price queries and booking links.
type Place struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     string   `json:"type,omitempty"`
	Lat      float64  `json:"lat,omitempty"`
	Lon      float64  `json:"lon,omitempty"`
	Products []string `json:"products,omitempty"`
}

// StationRef is a resolved station: canonical identifier plus display name.
// Immutable once resolved.
type StationRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
