package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Offer is a single priced flight option as returned by the pricing API.
// Fields are kept verbatim; DepartureAt stays a string so that ranking decides
// how to treat values it cannot parse.
type Offer struct {
	Origin       string  `json:"origin"`
	Destination  string  `json:"destination"`
	DepartureAt  string  `json:"departure_at"`
	Price        float64 `json:"price"`
	Currency     string  `json:"currency,omitempty"`
	Airline      string  `json:"airline,omitempty"`
	FlightNumber string  `json:"flight_number,omitempty"`
}

func (o *Offer) UnmarshalJSON(data []byte) error {
	var raw struct {
		Origin       string       `json:"origin"`
		Destination  string       `json:"destination"`
		DepartureAt  string       `json:"departure_at"`
		Price        *flexibleNum `json:"price"`
		Value        *flexibleNum `json:"value"`
		Currency     string       `json:"currency"`
		Airline      string       `json:"airline"`
		FlightNumber flexibleStr  `json:"flight_number"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*o = Offer{
		Origin:       raw.Origin,
		Destination:  raw.Destination,
		DepartureAt:  raw.DepartureAt,
		Currency:     raw.Currency,
		Airline:      raw.Airline,
		FlightNumber: string(raw.FlightNumber),
	}
	switch {
	case raw.Price != nil:
		o.Price = float64(*raw.Price)
	case raw.Value != nil:
		o.Price = float64(*raw.Value)
	}
	return nil
}

// flexibleStr accepts either a JSON string or a JSON number.
type flexibleStr string

func (s *flexibleStr) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexibleStr(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return err
	}
	*s = flexibleStr(n.String())
	return nil
}

// flexibleNum accepts a JSON number or a string holding one.
type flexibleNum float64

func (n *flexibleNum) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(v))
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid amount %s: %w", data, err)
	}
	*n = flexibleNum(f)
	return nil
}

// Envelope is the body shape the proxy relays from the pricing API.
// Data is kept raw so that a non-array payload can be told apart from a
// decode failure. Error is raw because upstreams send both strings and
// objects there.
type Envelope struct {
	Success  *bool           `json:"success,omitempty"`
	Error    json.RawMessage `json:"error,omitempty"`
	Currency string          `json:"currency,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// ErrorMessage returns the reported failure, or "" when the envelope carries
// none. false, 0, "" and null count as none. Non-string values are returned
// as compact JSON.
func (e Envelope) ErrorMessage() string {
	raw := bytes.TrimSpace(e.Error)
	switch string(raw) {
	case "", "null", "false", "0", `""`:
		return ""
	}
	if raw[0] == '"' {
		var msg string
		if err := json.Unmarshal(raw, &msg); err == nil {
			return msg
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// Offers decodes Data when it is a JSON array. ok is false when Data is
// absent or holds anything other than an array. Entries are decoded one by
// one: those that fail are skipped and reported through err, which is
// non-nil whenever any entry was skipped.
func (e Envelope) Offers() (offers []Offer, ok bool, err error) {
	data := bytes.TrimSpace(e.Data)
	if len(data) == 0 || data[0] != '[' {
		return nil, false, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, true, err
	}

	offers = make([]Offer, 0, len(entries))
	var errs []error
	for i, entry := range entries {
		var o Offer
		if err := json.Unmarshal(entry, &o); err != nil {
			errs = append(errs, fmt.Errorf("offer %d: %w", i, err))
			continue
		}
		if o.Currency == "" {
			o.Currency = e.Currency
		}
		offers = append(offers, o)
	}
	return offers, true, errors.Join(errs...)
}
