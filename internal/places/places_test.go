package places

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightfinder/internal/models"
)

const londonJSON = `[
	{"name":"London","code":"LON","type":"city","country_name":"United Kingdom"},
	{"name":"Heathrow","code":"LHR","type":"airport","city_name":"London","country_name":"United Kingdom"},
	{"name":"United Kingdom","code":"GB","type":"country"}
]`

func TestPlaceLabel(t *testing.T) {
	tests := []struct {
		place Place
		want  string
	}{
		{
			place: Place{Name: "Heathrow", Code: "LHR", Type: models.PlaceAirport, CityName: "London", CountryName: "United Kingdom"},
			want:  "Heathrow (LHR) - London, United Kingdom",
		},
		{
			place: Place{Name: "London", Code: "LON", Type: models.PlaceCity, CountryName: "United Kingdom"},
			want:  "London (LON) - United Kingdom",
		},
		{
			place: Place{Name: "United Kingdom", Code: "GB", Type: models.PlaceCountry},
			want:  "United Kingdom (GB)",
		},
		{
			place: Place{Name: "Somewhere", Code: "XXX", Type: "hub"},
			want:  "Somewhere",
		},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.place.Label())
		})
	}
}

func TestClientSearch(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		fmt.Fprint(w, londonJSON)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	found, err := client.Search(context.Background(), "  lon ")

	require.NoError(t, err)
	require.Len(t, found, 3)
	assert.Equal(t, "LHR", found[1].Code)
	assert.Equal(t, models.PlaceAirport, found[1].Type)
	assert.Equal(t, []string{"lon"}, gotQuery["term"])
	assert.Equal(t, []string{"en"}, gotQuery["locale"])
	assert.Equal(t, []string{"country", "city", "airport"}, gotQuery["types[]"])
}

func TestClientSearch_ShortTermSkipsRequest(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, "[]")
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	found, err := client.Search(context.Background(), " L ")

	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestClientSearch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).Search(context.Background(), "paris")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}

func TestPick(t *testing.T) {
	found := []Place{
		{Name: "Nowhere"},
		{Name: "London", Code: "LON", Type: models.PlaceCity, CountryName: "United Kingdom"},
		{Name: "Heathrow", Code: "LHR", Type: models.PlaceAirport, CityName: "London", CountryName: "United Kingdom"},
	}

	sel, err := Pick(found, 0, "lon")
	require.NoError(t, err)
	assert.Equal(t, models.PlaceSelection{Code: "LON", Type: models.PlaceCity, Label: "London (LON) - United Kingdom"}, sel)

	sel, err = Pick(found, 1, "lon")
	require.NoError(t, err)
	assert.Equal(t, "LHR", sel.Code)

	_, err = Pick(found, 2, "lon")
	assert.ErrorIs(t, err, ErrNoMatch)

	_, err = Pick(nil, 0, "zz")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestPick_SkipsUnknownTypes(t *testing.T) {
	found := []Place{
		{Name: "London Bus Station", Code: "XLB", Type: "bus_station"},
		{Name: "London", Code: "LON", Type: models.PlaceCity, CountryName: "United Kingdom"},
	}

	sel, err := Pick(found, 0, "lon")

	require.NoError(t, err)
	assert.Equal(t, "LON", sel.Code)
	assert.False(t, found[0].Selectable())
	assert.True(t, found[1].Selectable())
}

func TestSearch_TimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}).Search(context.Background(), "paris")

	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

type gatedSearcher struct {
	gates map[string]chan struct{}
}

func (g *gatedSearcher) Search(ctx context.Context, term string) ([]Place, error) {
	<-g.gates[term]
	return []Place{{Name: term, Code: term}}, nil
}

func TestSuggester_DiscardsStaleLookup(t *testing.T) {
	src := &gatedSearcher{gates: map[string]chan struct{}{
		"lo":  make(chan struct{}),
		"lon": make(chan struct{}),
	}}
	s := NewSuggester(src)

	staleErr := make(chan error, 1)
	started := make(chan struct{})
	go func() {
		close(started)
		_, err := s.Suggest(context.Background(), "lo")
		staleErr <- err
	}()
	<-started
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.latest == 1
	}, time.Second, time.Millisecond)

	freshDone := make(chan []Place, 1)
	go func() {
		found, _ := s.Suggest(context.Background(), "lon")
		freshDone <- found
	}()
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.latest == 2
	}, time.Second, time.Millisecond)

	close(src.gates["lo"])
	assert.ErrorIs(t, <-staleErr, ErrSuperseded)

	close(src.gates["lon"])
	found := <-freshDone
	require.Len(t, found, 1)
	assert.Equal(t, "lon", found[0].Code)
}
