// Package places resolves free text into origin and destination selections
// using the public Travelpayouts autocomplete API.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dharmasatrya/flightfinder/internal/models"
)

const (
	DefaultBaseURL = "https://autocomplete.travelpayouts.com/places2"
	DefaultLocale  = "en"
	// MinTermLength is the shortest term worth looking up.
	MinTermLength = 2
)

var (
	ErrNoMatch    = errors.New("no matching place")
	ErrSuperseded = errors.New("suggestions superseded by a newer term")
)

// Place is one autocomplete suggestion.
type Place struct {
	Name        string           `json:"name"`
	Code        string           `json:"code"`
	Type        models.PlaceType `json:"type"`
	CityName    string           `json:"city_name"`
	CountryName string           `json:"country_name"`
}

// Label renders the suggestion the way it is offered to the user, e.g.
// "Heathrow (LHR) - London, United Kingdom".
func (p Place) Label() string {
	switch p.Type {
	case models.PlaceAirport:
		return fmt.Sprintf("%s (%s) - %s, %s", p.Name, p.Code, p.CityName, p.CountryName)
	case models.PlaceCity:
		return fmt.Sprintf("%s (%s) - %s", p.Name, p.Code, p.CountryName)
	case models.PlaceCountry:
		return fmt.Sprintf("%s (%s)", p.Name, p.Code)
	}
	return p.Name
}

// Selectable reports whether the place can be searched: it needs a code and
// one of the known types.
func (p Place) Selectable() bool {
	return p.Code != "" && p.Type.Valid()
}

func (p Place) Selection() models.PlaceSelection {
	return models.PlaceSelection{Code: p.Code, Type: p.Type, Label: p.Label()}
}

type Config struct {
	BaseURL string
	Locale  string
	// Timeout bounds one lookup. Zero means no timeout.
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	baseURL string
	locale  string
	client  *http.Client
}

func NewClient(cfg Config) *Client {
	c := &Client{
		baseURL: cfg.BaseURL,
		locale:  cfg.Locale,
		client:  cfg.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.locale == "" {
		c.locale = DefaultLocale
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: cfg.Timeout}
	}
	return c
}

// Search returns suggestions for term. Terms shorter than MinTermLength
// return nothing without a request.
func (c *Client) Search(ctx context.Context, term string) ([]Place, error) {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < MinTermLength {
		return nil, nil
	}

	params := url.Values{}
	params.Set("term", term)
	params.Set("locale", c.locale)
	params["types[]"] = []string{string(models.PlaceCountry), string(models.PlaceCity), string(models.PlaceAirport)}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("autocomplete request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("autocomplete: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var found []Place
	if err := json.NewDecoder(resp.Body).Decode(&found); err != nil {
		return nil, fmt.Errorf("autocomplete response: %w", err)
	}
	return found, nil
}

// Pick selects the suggestion at index (0-based) among the selectable ones.
// term is only used in the error.
func Pick(found []Place, index int, term string) (models.PlaceSelection, error) {
	n := 0
	for _, p := range found {
		if !p.Selectable() {
			continue
		}
		if n == index {
			return p.Selection(), nil
		}
		n++
	}
	return models.PlaceSelection{}, fmt.Errorf("%w for %q", ErrNoMatch, term)
}

type searcher interface {
	Search(ctx context.Context, term string) ([]Place, error)
}

// Suggester serves as-you-type lookups. Only the newest term's answer is
// delivered; an older lookup that completes later gets ErrSuperseded.
type Suggester struct {
	source searcher

	mu     sync.Mutex
	latest uint64
}

func NewSuggester(source searcher) *Suggester {
	return &Suggester{source: source}
}

func (s *Suggester) Suggest(ctx context.Context, term string) ([]Place, error) {
	s.mu.Lock()
	s.latest++
	ticket := s.latest
	s.mu.Unlock()

	found, err := s.source.Search(ctx, term)

	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket != s.latest {
		return nil, ErrSuperseded
	}
	return found, err
}
