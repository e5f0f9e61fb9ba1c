package maps

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/placechat/internal/infrastructure/config"
	"github.com/GriffinCanCode/placechat/internal/shared/types"
)

const pizzaResults = `{
  "status": "OK",
  "results": [
    {"place_id": "a", "name": "Luigi's", "formatted_address": "1 Main St",
     "geometry": {"location": {"lat": 40.0, "lng": -74.0}}, "rating": 4.6},
    {"place_id": "b", "name": "Mario's", "formatted_address": "2 Main St",
     "geometry": {"location": {"lat": 40.2, "lng": -74.2}}},
    {"place_id": "c", "name": "No Geo"}
  ]
}`

type fakeGoogle struct {
	t        *testing.T
	server   *httptest.Server
	lastPath string
	lastQ    url.Values
	routes   map[string]func(w http.ResponseWriter, r *http.Request)
}

func newFakeGoogle(t *testing.T) *fakeGoogle {
	f := &fakeGoogle{t: t, routes: map[string]func(http.ResponseWriter, *http.Request){}}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.lastPath = r.URL.Path
		f.lastQ = r.URL.Query()
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		if h, ok := f.routes[r.URL.Path]; ok {
			h(w, r)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeGoogle) json(path string, status int, body string) {
	f.routes[path] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func (f *fakeGoogle) gateway() *Gateway {
	cfg := config.Default().Maps
	cfg.APIKey = "test-key"
	cfg.BaseURL = f.server.URL
	cfg.MaxResults = 2
	return New(cfg, nil, nil)
}

func TestSearchFreeTextLocation(t *testing.T) {
	fake := newFakeGoogle(t)
	fake.json(textSearchPath, http.StatusOK, pizzaResults)

	out := fake.gateway().Search(context.Background(), "pizza", SearchOptions{Location: "Brooklyn"})

	require.True(t, out.IsOK(), out.Reason)
	assert.Equal(t, "pizza in Brooklyn", fake.lastQ.Get("query"))
	assert.Empty(t, fake.lastQ.Get("location"))
	assert.Equal(t, "en", fake.lastQ.Get("language"))

	require.Len(t, out.Value.Results, 2, "capped at MaxResults")
	assert.Equal(t, "Luigi's", out.Value.Results[0].Name)
	assert.Nil(t, out.Value.Results[0].DistanceKm)

	require.NotNil(t, out.Value.SearchCenter)
	assert.InDelta(t, 40.1, out.Value.SearchCenter.Lat, 1e-9)
	assert.InDelta(t, -74.1, out.Value.SearchCenter.Lng, 1e-9)
}

func TestSearchNeverExceedsResultCap(t *testing.T) {
	fake := newFakeGoogle(t)
	var body strings.Builder
	body.WriteString(`{"status":"OK","results":[`)
	for i := 0; i < 25; i++ {
		if i > 0 {
			body.WriteString(",")
		}
		fmt.Fprintf(&body, `{"place_id":"p%d","name":"Place %d"}`, i, i)
	}
	body.WriteString(`]}`)
	fake.json(textSearchPath, http.StatusOK, body.String())

	cfg := config.Default().Maps
	cfg.APIKey = "test-key"
	cfg.BaseURL = fake.server.URL
	cfg.MaxResults = 100

	out := New(cfg, nil, nil).Search(context.Background(), "anything", SearchOptions{})

	require.True(t, out.IsOK(), out.Reason)
	assert.Len(t, out.Value.Results, config.MaxSearchResults)
}

func TestSearchNearMeAddsNothing(t *testing.T) {
	fake := newFakeGoogle(t)
	fake.json(textSearchPath, http.StatusOK, pizzaResults)

	out := fake.gateway().Search(context.Background(), "pizza", SearchOptions{Location: types.NearMe})

	require.True(t, out.IsOK())
	assert.Equal(t, "pizza", fake.lastQ.Get("query"))
}

func TestSearchCoordinateBiasAndDistance(t *testing.T) {
	fake := newFakeGoogle(t)
	fake.json(textSearchPath, http.StatusOK, pizzaResults)
	origin := &types.LatLng{Lat: 40.0, Lng: -74.0}

	out := fake.gateway().Search(context.Background(), "pizza", SearchOptions{
		Location: "40,-74",
		Radius:   1500,
		Origin:   origin,
	})

	require.True(t, out.IsOK())
	assert.Equal(t, "pizza", fake.lastQ.Get("query"))
	assert.Equal(t, "40,-74", fake.lastQ.Get("location"))
	assert.Equal(t, "1500", fake.lastQ.Get("radius"))

	first := out.Value.Results[0]
	require.NotNil(t, first.DistanceKm)
	assert.Equal(t, "0m", first.DistanceText)
	assert.Equal(t, origin, out.Value.SearchCenter)
}

func TestSearchDefaultRadius(t *testing.T) {
	fake := newFakeGoogle(t)
	fake.json(textSearchPath, http.StatusOK, `{"status":"ZERO_RESULTS","results":[]}`)

	out := fake.gateway().Search(context.Background(), "pizza", SearchOptions{Location: "51.5,-0.12"})

	require.True(t, out.IsOK())
	assert.Empty(t, out.Value.Results)
	assert.Equal(t, "5000", fake.lastQ.Get("radius"))
	assert.Equal(t, &types.LatLng{Lat: 51.5, Lng: -0.12}, out.Value.SearchCenter)
}

func TestSearchStatusPolicy(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		kind     types.OutcomeKind
		sentinel error
	}{
		{"request denied", http.StatusOK, `{"status":"REQUEST_DENIED","error_message":"API key invalid"}`, types.OutcomeDegraded, nil},
		{"http forbidden", http.StatusForbidden, `forbidden`, types.OutcomeDegraded, nil},
		{"over query limit", http.StatusOK, `{"status":"OVER_QUERY_LIMIT"}`, types.OutcomeFatal, nil},
		{"invalid request", http.StatusOK, `{"status":"INVALID_REQUEST"}`, types.OutcomeFatal, nil},
		{"server error", http.StatusInternalServerError, `{}`, types.OutcomeFatal, nil},
		{"garbage", http.StatusOK, `<html>`, types.OutcomeFatal, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeGoogle(t)
			fake.json(textSearchPath, tt.status, tt.body)

			out := fake.gateway().Search(context.Background(), "pizza", SearchOptions{})

			assert.Equal(t, tt.kind, out.Kind, out.Reason)
			if tt.kind == types.OutcomeDegraded {
				assert.NotNil(t, out.Value.Results)
				assert.Empty(t, out.Value.Results)
				assert.Contains(t, out.Reason, "unavailable")
			} else {
				var pe *ProviderError
				if tt.name != "garbage" {
					assert.True(t, errors.As(out.Err, &pe))
				}
			}
		})
	}
}

func TestMissingAPIKeyDegrades(t *testing.T) {
	fake := newFakeGoogle(t)
	g := fake.gateway()
	g.apiKey = ""

	out := g.Search(context.Background(), "pizza", SearchOptions{})
	assert.True(t, out.IsDegraded())
	assert.Contains(t, out.Reason, "not configured")
	assert.Empty(t, fake.lastPath, "no request sent")
	assert.False(t, g.Configured())
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	fake := newFakeGoogle(t)

	out := fake.gateway().Search(context.Background(), "  ", SearchOptions{})
	assert.True(t, out.IsFatal())
	assert.ErrorIs(t, out.Err, ErrInvalidArgument)
}

func TestDetails(t *testing.T) {
	fake := newFakeGoogle(t)
	fake.json(detailsPath, http.StatusOK, `{"status":"OK","result":{
		"place_id":"a","name":"Luigi's","geometry":{"location":{"lat":1,"lng":2}},
		"formatted_phone_number":"555-0100","dine_in":true,
		"opening_hours":{"open_now":false,"weekday_text":["Monday: Closed"]}}}`)

	out := fake.gateway().Details(context.Background(), "a", &types.LatLng{Lat: 1, Lng: 2})

	require.True(t, out.IsOK(), out.Reason)
	assert.Equal(t, "a", fake.lastQ.Get("place_id"))
	assert.Contains(t, fake.lastQ.Get("fields"), "wheelchair_accessible_entrance")
	assert.Equal(t, "555-0100", out.Value.Phone)
	assert.True(t, *out.Value.ServiceOptions.DineIn)
	assert.Equal(t, "0m", out.Value.DistanceText)
}

func TestDetailsNotFoundAndDenied(t *testing.T) {
	fake := newFakeGoogle(t)
	fake.json(detailsPath, http.StatusOK, `{"status":"NOT_FOUND"}`)

	out := fake.gateway().Details(context.Background(), "missing", nil)
	assert.True(t, out.IsFatal())
	assert.ErrorIs(t, out.Err, ErrNotFound)

	fake.json(detailsPath, http.StatusOK, `{"status":"REQUEST_DENIED"}`)
	out = fake.gateway().Details(context.Background(), "a", nil)
	assert.True(t, out.IsDegraded())
	assert.Nil(t, out.Value)
}

func TestGeocode(t *testing.T) {
	fake := newFakeGoogle(t)
	g := fake.gateway()

	fake.json(geocodePath, http.StatusOK, `{"status":"OK","results":[{"formatted_address":"Paris","geometry":{"location":{"lat":48.85,"lng":2.35}}}]}`)
	p, err := g.Geocode(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, &types.LatLng{Lat: 48.85, Lng: 2.35}, p)
	assert.Equal(t, "Paris", fake.lastQ.Get("address"))

	fake.json(geocodePath, http.StatusOK, `{"status":"ZERO_RESULTS","results":[]}`)
	p, err = g.Geocode(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.Nil(t, p)

	fake.json(geocodePath, http.StatusOK, `{"status":"UNKNOWN_ERROR"}`)
	p, err = g.Geocode(context.Background(), "Paris")
	assert.NoError(t, err, "provider errors are swallowed")
	assert.Nil(t, p)

	_, err = g.Geocode(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestReverseGeocode(t *testing.T) {
	fake := newFakeGoogle(t)
	g := fake.gateway()

	fake.json(geocodePath, http.StatusOK, `{"status":"OK","results":[{"formatted_address":"10 Downing St"}]}`)
	addr, err := g.ReverseGeocode(context.Background(), 51.5034, -0.1276)
	require.NoError(t, err)
	assert.Equal(t, "10 Downing St", addr)
	assert.Equal(t, "51.5034,-0.1276", fake.lastQ.Get("latlng"))

	fake.json(geocodePath, http.StatusOK, `{"status":"REQUEST_DENIED"}`)
	addr, err = g.ReverseGeocode(context.Background(), 51.5, -0.12)
	assert.NoError(t, err)
	assert.Empty(t, addr)

	_, err = g.ReverseGeocode(context.Background(), 91, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
