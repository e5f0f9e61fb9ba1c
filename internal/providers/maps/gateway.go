package maps

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/placechat/internal/infrastructure/config"
	"github.com/GriffinCanCode/placechat/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/placechat/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/placechat/internal/providers/http/client"
	"github.com/GriffinCanCode/placechat/internal/shared/geo"
	"github.com/GriffinCanCode/placechat/internal/shared/types"
)

const (
	textSearchPath = "/place/textsearch/json"
	detailsPath    = "/place/details/json"
	photoPath      = "/place/photo"
	geocodePath    = "/geocode/json"
	directionsPath = "/directions/json"

	detailsFields = "place_id,name,formatted_address,vicinity,geometry/location,rating," +
		"user_ratings_total,price_level,formatted_phone_number,international_phone_number," +
		"website,url,business_status,opening_hours,types,photos,reviews,editorial_summary," +
		"delivery,dine_in,takeout,reservable,serves_breakfast,serves_lunch,serves_dinner," +
		"serves_vegetarian_food,curbside_pickup,wheelchair_accessible_entrance"
)

// SearchOptions tunes a text search. Zero values take the gateway defaults.
type SearchOptions struct {
	// Location is either "lat,lng" (proximity bias) or free text appended to
	// the query as "<query> in <location>". "near me" and "" add nothing.
	Location string
	Radius   int
	Origin   *types.LatLng
	Language string
}

// SearchResult is a normalised search answer
type SearchResult struct {
	Results      []types.PlaceRecord `json:"results"`
	SearchCenter *types.LatLng       `json:"search_center,omitempty"`
}

// Gateway wraps the Google Maps web services
type Gateway struct {
	http       *client.Client
	apiKey     string
	language   string
	radius     int
	maxResults int
	logger     *zap.Logger
	metrics    *monitoring.Metrics
}

// New creates a gateway from the maps configuration
func New(cfg config.MapsConfig, logger *zap.Logger, metrics *monitoring.Metrics) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 || maxResults > config.MaxSearchResults {
		maxResults = config.MaxSearchResults
	}
	return &Gateway{
		http: client.New(client.Options{
			Name:              "google-maps",
			BaseURL:           strings.TrimRight(cfg.BaseURL, "/"),
			Timeout:           10 * time.Second,
			RetryMax:          2,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Breaker: resilience.Settings{
				ReadyToTrip: func(c resilience.Counts) bool {
					return c.ConsecutiveFailures >= 5
				},
			},
			Logger:  logger,
			Metrics: metrics,
		}),
		apiKey:     cfg.APIKey,
		language:   cfg.Language,
		radius:     cfg.Radius,
		maxResults: maxResults,
		logger:     logger.Named("maps"),
		metrics:    metrics,
	}
}

// Configured reports whether an API key is present
func (g *Gateway) Configured() bool {
	return g.apiKey != ""
}

// Breaker exposes the upstream circuit breaker
func (g *Gateway) Breaker() *resilience.Breaker {
	return g.http.Breaker()
}

// Search runs a text search. Authorization failures degrade to an empty
// result with a reason; every other failure is fatal.
func (g *Gateway) Search(ctx context.Context, query string, opts SearchOptions) types.Outcome[SearchResult] {
	timer := monitoring.NewTimer(g.metrics, "google", "textsearch")
	outcome := g.search(ctx, query, opts)
	timer.Stop(outcome.Kind.String())
	return outcome
}

func (g *Gateway) search(ctx context.Context, query string, opts SearchOptions) types.Outcome[SearchResult] {
	query = strings.TrimSpace(query)
	if query == "" {
		return types.Fatal[SearchResult](fmt.Errorf("%w: empty search query", ErrInvalidArgument))
	}

	params := map[string]string{
		"query":    query,
		"language": firstNonEmpty(opts.Language, g.language),
	}

	var center *types.LatLng
	if opts.Origin != nil {
		o := *opts.Origin
		center = &o
	}

	location := strings.TrimSpace(opts.Location)
	if point, ok := geo.ParseLatLng(location); ok {
		radius := opts.Radius
		if radius <= 0 {
			radius = g.radius
		}
		params["location"] = geo.FormatLatLng(point)
		params["radius"] = strconv.Itoa(radius)
		if center == nil {
			center = &point
		}
	} else if location != "" && !strings.EqualFold(location, types.NearMe) {
		params["query"] = query + " in " + location
	}

	var body textSearchResponse
	if err := g.get(ctx, "textsearch", textSearchPath, params, &body); err != nil {
		if isDegradable(err) {
			g.logger.Warn("place search degraded", zap.Error(err))
			return types.Degraded(SearchResult{Results: []types.PlaceRecord{}, SearchCenter: center}, denialReason(err))
		}
		return types.Fatal[SearchResult](err)
	}

	raw := body.Results
	if g.maxResults > 0 && len(raw) > g.maxResults {
		raw = raw[:g.maxResults]
	}

	results := make([]types.PlaceRecord, 0, len(raw))
	points := make([]types.LatLng, 0, len(raw))
	for _, p := range raw {
		rec := toPlaceRecord(p, opts.Origin)
		if rec.Location != nil {
			points = append(points, *rec.Location)
		}
		results = append(results, rec)
	}

	if center == nil {
		if c, ok := geo.Centroid(points); ok {
			center = &c
		}
	}

	return types.Ok(SearchResult{Results: results, SearchCenter: center})
}

// Details fetches the extended field set for one place
func (g *Gateway) Details(ctx context.Context, placeID string, origin *types.LatLng) types.Outcome[*types.PlaceRecord] {
	timer := monitoring.NewTimer(g.metrics, "google", "details")
	outcome := g.details(ctx, placeID, origin)
	timer.Stop(outcome.Kind.String())
	return outcome
}

func (g *Gateway) details(ctx context.Context, placeID string, origin *types.LatLng) types.Outcome[*types.PlaceRecord] {
	if strings.TrimSpace(placeID) == "" {
		return types.Fatal[*types.PlaceRecord](fmt.Errorf("%w: empty place id", ErrInvalidArgument))
	}

	var body detailsResponse
	err := g.get(ctx, "details", detailsPath, map[string]string{
		"place_id": placeID,
		"fields":   detailsFields,
		"language": g.language,
	}, &body)
	if err != nil {
		if isDegradable(err) {
			g.logger.Warn("place details degraded", zap.String("place_id", placeID), zap.Error(err))
			return types.Degraded[*types.PlaceRecord](nil, denialReason(err))
		}
		return types.Fatal[*types.PlaceRecord](err)
	}
	if body.Result == nil || body.Status == statusZeroResults {
		return types.Fatal[*types.PlaceRecord](fmt.Errorf("%w: %s", ErrNotFound, placeID))
	}

	rec := toPlaceRecord(*body.Result, origin)
	return types.Ok(&rec)
}

// Geocode resolves an address to coordinates. Zero results and provider
// failures both yield nil; only empty input is an error.
func (g *Gateway) Geocode(ctx context.Context, address string) (*types.LatLng, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("%w: empty address", ErrInvalidArgument)
	}

	timer := monitoring.NewTimer(g.metrics, "google", "geocode")
	var body geocodeResponse
	if err := g.get(ctx, "geocode", geocodePath, map[string]string{"address": address}, &body); err != nil {
		timer.Stop(types.OutcomeDegraded.String())
		g.logger.Warn("geocode failed", zap.String("address", address), zap.Error(err))
		return nil, nil
	}
	timer.Stop(types.OutcomeOK.String())

	for _, r := range body.Results {
		if r.Geometry.Location != nil {
			return &types.LatLng{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng}, nil
		}
	}
	return nil, nil
}

// ReverseGeocode resolves coordinates to a formatted address, "" when unknown
func (g *Gateway) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	point := types.LatLng{Lat: lat, Lng: lng}
	if !geo.Valid(point) {
		return "", fmt.Errorf("%w: coordinates out of range", ErrInvalidArgument)
	}

	timer := monitoring.NewTimer(g.metrics, "google", "reverse_geocode")
	var body geocodeResponse
	if err := g.get(ctx, "reverse geocode", geocodePath, map[string]string{"latlng": geo.FormatLatLng(point)}, &body); err != nil {
		timer.Stop(types.OutcomeDegraded.String())
		g.logger.Warn("reverse geocode failed", zap.String("latlng", geo.FormatLatLng(point)), zap.Error(err))
		return "", nil
	}
	timer.Stop(types.OutcomeOK.String())

	if len(body.Results) == 0 {
		return "", nil
	}
	return body.Results[0].FormattedAddress, nil
}

// get issues a keyed GET and decodes the JSON answer into out, returning the
// status policy error if the call did not succeed.
func (g *Gateway) get(ctx context.Context, op, path string, params map[string]string, out interface{ providerStatus() googleStatus }) error {
	if g.apiKey == "" {
		return ErrMissingAPIKey
	}

	resp, err := g.http.Execute(ctx, http.MethodGet, path, func(r *resty.Request) {
		r.SetQueryParams(params).SetQueryParam("key", g.apiKey)
	})
	if err != nil {
		return fmt.Errorf("google maps %s: %w", op, err)
	}

	decodeErr := sonic.Unmarshal(resp.Body(), out)
	if decodeErr != nil && resp.StatusCode() == http.StatusOK {
		return fmt.Errorf("google maps %s: decode response: %w", op, decodeErr)
	}
	return checkStatus(op, resp.StatusCode(), out.providerStatus())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
