package http

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/placechat/internal/domain/chat"
	"github.com/GriffinCanCode/placechat/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/placechat/internal/providers/maps"
	"github.com/GriffinCanCode/placechat/internal/shared/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// turnFunc adapts a function to TurnRunner
type turnFunc func(ctx context.Context, turn chat.Turn, emit chat.Emitter) (chat.Summary, error)

func (f turnFunc) Run(ctx context.Context, turn chat.Turn, emit chat.Emitter) (chat.Summary, error) {
	return f(ctx, turn, emit)
}

type mockMaps struct {
	mock.Mock
}

func (m *mockMaps) Configured() bool { return m.Called().Bool(0) }

func (m *mockMaps) Search(ctx context.Context, query string, opts maps.SearchOptions) types.Outcome[maps.SearchResult] {
	return m.Called(query, opts).Get(0).(types.Outcome[maps.SearchResult])
}

func (m *mockMaps) Details(ctx context.Context, placeID string, origin *types.LatLng) types.Outcome[*types.PlaceRecord] {
	return m.Called(placeID, origin).Get(0).(types.Outcome[*types.PlaceRecord])
}

func (m *mockMaps) Geocode(ctx context.Context, address string) (*types.LatLng, error) {
	args := m.Called(address)
	loc, _ := args.Get(0).(*types.LatLng)
	return loc, args.Error(1)
}

func (m *mockMaps) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	args := m.Called(lat, lng)
	return args.String(0), args.Error(1)
}

func (m *mockMaps) Photo(ctx context.Context, ref string, maxWidth int) (*maps.Photo, error) {
	args := m.Called(ref, maxWidth)
	p, _ := args.Get(0).(*maps.Photo)
	return p, args.Error(1)
}

func (m *mockMaps) Directions(ctx context.Context, origin, destination string, mode types.TravelMode) types.Outcome[*types.DirectionsResult] {
	return m.Called(origin, destination, mode).Get(0).(types.Outcome[*types.DirectionsResult])
}

func newRouter(runner TurnRunner, m MapsService, breakers ...*resilience.Breaker) *gin.Engine {
	r := gin.New()
	NewHandlers(Deps{Chat: runner, Maps: m, Model: "llama3.2:1b", Breakers: breakers}).Register(r)
	return r
}

func serve(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// sseFrames returns the data payloads of an event stream body
func sseFrames(t *testing.T, body string) []string {
	t.Helper()
	var frames []string
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		if data, ok := strings.CutPrefix(sc.Text(), "data: "); ok {
			frames = append(frames, data)
		}
	}
	return frames
}

const chatBody = `{"messages":[{"role":"user","content":"coffee near me"}],"origin":{"lat":40.7,"lng":-74}}`

func TestChatStreamsEvents(t *testing.T) {
	var got chat.Turn
	runner := turnFunc(func(ctx context.Context, turn chat.Turn, emit chat.Emitter) (chat.Summary, error) {
		got = turn
		require.NoError(t, emit.Emit(chat.Places([]types.PlaceRecord{{ID: "p1", Name: "Joe's"}})))
		require.NoError(t, emit.Emit(chat.Content("Joe's is close.")))
		require.NoError(t, emit.Emit(chat.End()))
		return chat.Summary{Outcome: chat.OutcomeCompleted}, nil
	})

	w := serve(newRouter(runner, &mockMaps{}), http.MethodPost, "/api/chat", chatBody)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, []string{
		`{"type":"places","data":[{"id":"p1","name":"Joe's"}]}`,
		`{"content":"Joe's is close."}`,
		`{"content":""}`,
	}, sseFrames(t, w.Body.String()))
	require.NotNil(t, got.Origin)
	assert.Equal(t, 40.7, got.Origin.Lat)
}

func TestChatRejectsBadRequests(t *testing.T) {
	called := false
	runner := turnFunc(func(context.Context, chat.Turn, chat.Emitter) (chat.Summary, error) {
		called = true
		return chat.Summary{}, nil
	})
	r := newRouter(runner, &mockMaps{})

	for name, body := range map[string]string{
		"not json":     `{"messages":`,
		"empty":        `{"messages":[]}`,
		"unknown role": `{"messages":[{"role":"robot","content":"hi"}]}`,
		"bad origin":   `{"messages":[{"role":"user","content":"hi"}],"origin":{"lat":123,"lng":0}}`,
		"blank user":   `{"messages":[{"role":"user","content":"   "}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			w := serve(r, http.MethodPost, "/api/chat", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, decode(t, w)["error"])
		})
	}
	assert.False(t, called)
}

func TestChatNoUserMessageIsBadRequest(t *testing.T) {
	runner := turnFunc(func(context.Context, chat.Turn, chat.Emitter) (chat.Summary, error) {
		return chat.Summary{Outcome: chat.OutcomeInvalid}, chat.ErrNoUserMessage
	})

	w := serve(newRouter(runner, &mockMaps{}), http.MethodPost, "/api/chat", `{"messages":[{"role":"assistant","content":"hello"}]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, chat.ErrNoUserMessage.Error(), decode(t, w)["error"])
}

func TestChatSearchFailureStreamsSingleError(t *testing.T) {
	runner := turnFunc(func(ctx context.Context, turn chat.Turn, emit chat.Emitter) (chat.Summary, error) {
		return chat.Summary{Outcome: chat.OutcomeSearchDegraded}, emit.Emit(chat.ErrorNotice("Maps lookups are unavailable"))
	})

	w := serve(newRouter(runner, &mockMaps{}), http.MethodPost, "/api/chat", chatBody)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{`{"error":"Maps lookups are unavailable"}`}, sseFrames(t, w.Body.String()))
}

func TestSearchPlaces(t *testing.T) {
	m := &mockMaps{}
	origin := &types.LatLng{Lat: 48.85, Lng: 2.35}
	m.On("Search", "bakery", maps.SearchOptions{Location: "48.85,2.35", Radius: 800, Origin: origin}).
		Return(types.Ok(maps.SearchResult{Results: []types.PlaceRecord{{ID: "b1", Name: "Du Pain"}}, SearchCenter: origin}))

	w := serve(newRouter(nil, m), http.MethodGet, "/api/places/search?query=bakery&lat=48.85&lng=2.35&radius=800", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["results"], 1)
	assert.Equal(t, map[string]any{"lat": 48.85, "lng": 2.35}, body["search_center"])
	assert.NotContains(t, body, "error")
	m.AssertExpectations(t)
}

func TestSearchPlacesDegraded(t *testing.T) {
	m := &mockMaps{}
	m.On("Search", "bakery", mock.Anything).
		Return(types.Degraded(maps.SearchResult{}, "Maps lookups are unavailable: key rejected"))

	w := serve(newRouter(nil, m), http.MethodGet, "/api/places/search?query=bakery&location=Lyon", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, []any{}, body["results"])
	assert.Equal(t, "Maps lookups are unavailable: key rejected", body["error"])
}

func TestSearchPlacesValidation(t *testing.T) {
	r := newRouter(nil, &mockMaps{})
	for _, target := range []string{
		"/api/places/search",
		"/api/places/search?query=tea&lat=10",
		"/api/places/search?query=tea&lat=abc&lng=1",
		"/api/places/search?query=tea&radius=-5",
	} {
		w := serve(r, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestSearchPlacesFatalIsBadGateway(t *testing.T) {
	m := &mockMaps{}
	m.On("Search", "tea", mock.Anything).
		Return(types.Fatal[maps.SearchResult](&maps.ProviderError{Operation: "textsearch", Status: "OVER_QUERY_LIMIT"}))

	w := serve(newRouter(nil, m), http.MethodGet, "/api/places/search?query=tea", "")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Bad Gateway", decode(t, w)["error"])
}

func TestPlaceDetails(t *testing.T) {
	m := &mockMaps{}
	m.On("Details", "ChIJabc", (*types.LatLng)(nil)).Return(types.Ok(&types.PlaceRecord{ID: "ChIJabc", Name: "Museum"}))
	m.On("Details", "ChIJgone", (*types.LatLng)(nil)).Return(types.Fatal[*types.PlaceRecord](maps.ErrNotFound))
	r := newRouter(nil, m)

	w := serve(r, http.MethodGet, "/api/places/ChIJabc", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Museum", decode(t, w)["result"].(map[string]any)["name"])

	w = serve(r, http.MethodGet, "/api/places/ChIJgone", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(r, http.MethodGet, "/api/places/bad%20id", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlacePhoto(t *testing.T) {
	m := &mockMaps{}
	m.On("Photo", "Aap_ref", 800).Return(&maps.Photo{Data: []byte("\xff\xd8\xff"), ContentType: "image/jpeg"}, nil)
	m.On("Photo", "Aap_nokey", 0).Return(nil, maps.ErrMissingAPIKey)
	r := newRouter(nil, m)

	w := serve(r, http.MethodGet, "/api/places/photo?ref=Aap_ref&maxwidth=800", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, "\xff\xd8\xff", w.Body.String())

	w = serve(r, http.MethodGet, "/api/places/photo?ref=Aap_nokey", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGeocodeEndpoints(t *testing.T) {
	m := &mockMaps{}
	m.On("Geocode", "Eiffel Tower").Return(&types.LatLng{Lat: 48.858, Lng: 2.294}, nil)
	m.On("Geocode", "Atlantis").Return(nil, nil)
	m.On("ReverseGeocode", 48.858, 2.294).Return("Champ de Mars, Paris", nil)
	m.On("ReverseGeocode", 0.0, 0.0).Return("", nil)
	r := newRouter(nil, m)

	w := serve(r, http.MethodGet, "/api/geocode?address=Eiffel+Tower", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 48.858, decode(t, w)["location"].(map[string]any)["lat"])

	w = serve(r, http.MethodGet, "/api/geocode?address=Atlantis", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode(t, w)["location"])

	w = serve(r, http.MethodGet, "/api/geocode", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodGet, "/api/reverse-geocode?lat=48.858&lng=2.294", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Champ de Mars, Paris", decode(t, w)["address"])

	w = serve(r, http.MethodGet, "/api/reverse-geocode?lat=0&lng=0", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode(t, w)["address"])

	w = serve(r, http.MethodGet, "/api/reverse-geocode", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDirections(t *testing.T) {
	m := &mockMaps{}
	m.On("Directions", "Louvre", "Orsay", types.ModeWalking).
		Return(types.Ok(&types.DirectionsResult{DistanceText: "1.1 km", DurationText: "14 mins"}))
	m.On("Directions", "Paris", "New York", types.ModeDriving).
		Return(types.Degraded[*types.DirectionsResult](nil, "no route found"))
	r := newRouter(nil, m)

	w := serve(r, http.MethodGet, "/api/directions?origin=Louvre&destination=Orsay&mode=walking", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "walking", body["mode"])
	assert.Equal(t, "14 mins", body["directions"].(map[string]any)["duration_text"])

	w = serve(r, http.MethodGet, "/api/directions?origin=Paris&destination=New+York", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Nil(t, body["directions"])
	assert.Equal(t, "no route found", body["error"])

	w = serve(r, http.MethodGet, "/api/directions?origin=Louvre&destination=Orsay&mode=teleport", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	m.AssertNotCalled(t, "Directions", "Louvre", "Orsay", types.TravelMode("teleport"))
}

func TestDistance(t *testing.T) {
	r := newRouter(nil, &mockMaps{})

	w := serve(r, http.MethodGet, "/api/distance?lat1=1&lng1=2&lat2=1&lng2=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, 0.0, body["distance_km"])
	assert.Equal(t, "0m", body["distance_text"])

	w = serve(r, http.MethodGet, "/api/distance?lat1=1&lng1=2", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	m := &mockMaps{}
	m.On("Configured").Return(true)
	b := resilience.New("google-maps", resilience.Settings{})

	w := serve(newRouter(nil, m, b), http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "closed", body["breakers"].(map[string]any)["google-maps"])
	assert.Equal(t, "llama3.2:1b", body["llm"].(map[string]any)["model"])
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(resilience.ErrCircuitOpen))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(&maps.ProviderError{HTTPStatus: http.StatusForbidden}))
	assert.Equal(t, http.StatusBadGateway, statusFor(&maps.ProviderError{Status: "UNKNOWN_ERROR"}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}
