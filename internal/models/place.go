package models

type PlaceType string

const (
	PlaceAirport PlaceType = "airport"
	PlaceCity    PlaceType = "city"
	PlaceCountry PlaceType = "country"
)

func (t PlaceType) Valid() bool {
	switch t {
	case PlaceAirport, PlaceCity, PlaceCountry:
		return true
	}
	return false
}

// PlaceSelection is a resolved origin or destination: the code the pricing
// API understands plus the label the user picked.
type PlaceSelection struct {
	Code  string    `json:"code"`
	Type  PlaceType `json:"type"`
	Label string    `json:"label"`
}

func (p PlaceSelection) Resolved() bool {
	return p.Code != ""
}
