package models

// Request/response shapes for the bahn.de "tagesbestpreis" (best price of day)
// endpoint. Field names mirror the upstream JSON payload, which is German.

type Reduction struct {
	Art    string `json:"art"`
	Klasse string `json:"klasse"`
}

type Traveller struct {
	Typ            string      `json:"typ"`
	Ermaessigungen []Reduction `json:"ermaessigungen"`
	Alter          []string    `json:"alter"`
	Anzahl         int         `json:"anzahl"`
}

type DayPriceRequest struct {
	AbfahrtsHalt                      string      `json:"abfahrtsHalt"`
	AnfrageZeitpunkt                  string      `json:"anfrageZeitpunkt"`
	AnkunftsHalt                      string      `json:"ankunftsHalt"`
	AnkunftSuche                      string      `json:"ankunftSuche"`
	Klasse                            string      `json:"klasse"`
	MaxUmstiege                       int         `json:"maxUmstiege"`
	Produktgattungen                  []string    `json:"produktgattungen"`
	Reisende                          []Traveller `json:"reisende"`
	SchnelleVerbindungen              bool        `json:"schnelleVerbindungen"`
	SitzplatzOnly                     bool        `json:"sitzplatzOnly"`
	BikeCarriage                      bool        `json:"bikeCarriage"`
	ReservierungsKontingenteVorhanden bool        `json:"reservierungsKontingenteVorhanden"`
	NurDeutschlandTicketVerbindungen  bool        `json:"nurDeutschlandTicketVerbindungen"`
	DeutschlandTicketVorhanden        bool        `json:"deutschlandTicketVorhanden"`
}

type Preis struct {
	Betrag   float64 `json:"betrag"`
	Waehrung string  `json:"waehrung,omitempty"`
}

// Abschnitt is a single leg of a connection: departure and arrival timestamps
// (local time, no zone suffix) plus the station names at either end.
type Abschnitt struct {
	AbfahrtsZeitpunkt string `json:"abfahrtsZeitpunkt"`
	AnkunftsZeitpunkt string `json:"ankunftsZeitpunkt"`
	AbfahrtsOrt       string `json:"abfahrtsOrt"`
	AnkunftsOrt       string `json:"ankunftsOrt"`
}

type Verbindung struct {
	VerbindungsAbschnitte []Abschnitt `json:"verbindungsAbschnitte"`
}

type VerbindungRef struct {
	Verbindung *Verbindung `json:"verbindung"`
}

// Interval is one upstream price quote: an optional structured price and the
// connections it applies to. Quotes without a price carry no usable data.
type Interval struct {
	Preis        *Preis          `json:"preis"`
	Verbindungen []VerbindungRef `json:"verbindungen"`
}

type DayPriceResponse struct {
	Intervalle []Interval `json:"intervalle"`
}

// FirstLeg returns the first leg of the interval's first connection, or nil
// if the interval carries no itinerary detail.
func (iv *Interval) FirstLeg() *Abschnitt {
	if len(iv.Verbindungen) == 0 || iv.Verbindungen[0].Verbindung == nil {
		return nil
	}
	legs := iv.Verbindungen[0].Verbindung.VerbindungsAbschnitte
	if len(legs) == 0 {
		return nil
	}
	return &legs[0]
}
