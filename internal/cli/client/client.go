package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/GriffinCanCode/placechat/internal/domain/chat"
	"github.com/GriffinCanCode/placechat/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/placechat/internal/shared/types"
)

// maxFrameSize bounds one SSE line; a places event with 20 records fits easily
const maxFrameSize = 1 << 20

// ErrStreamTruncated is returned when the chat stream ends without an end
// marker or an error event
var ErrStreamTruncated = errors.New("chat stream ended unexpectedly")

// APIClient talks to a placechat server
type APIClient struct {
	http      *resty.Client
	server    string
	sessionID string
}

// NewAPIClient creates a client for server ("host:port" or a URL). Every
// request carries the session ID as its trace ID so the server groups a
// CLI session's turns under one trace.
func NewAPIClient(server string) (*APIClient, error) {
	normalized, err := normalizeServerURL(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	sessionID := uuid.NewString()
	rc := resty.New().
		SetBaseURL(normalized).
		SetTimeout(30*time.Second).
		SetHeader("User-Agent", "placectl").
		SetHeader(tracing.HeaderTraceID, "cli_"+sessionID).
		SetError(&apiError{}).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	return &APIClient{http: rc, server: normalized, sessionID: sessionID}, nil
}

// normalizeServerURL ensures a scheme and strips any path or trailing slash
func normalizeServerURL(server string) (string, error) {
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}
	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server URL %q", server)
	}
	return fmt.Sprintf("%s://%s", u.Scheme, u.Host), nil
}

// Server returns the normalized server URL
func (c *APIClient) Server() string { return c.server }

// SessionID identifies this client session
func (c *APIClient) SessionID() string { return c.sessionID }

// ChatStream posts one turn and calls onEvent for every event in order. It
// returns after the end marker or an error event; a stream that stops before
// either yields ErrStreamTruncated.
func (c *APIClient) ChatStream(ctx context.Context, req types.ChatRequest, onEvent func(chat.Event) error) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "text/event-stream").
		SetBody(req).
		SetDoNotParseResponse(true).
		Post(endpointChat)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		var apiErr apiError
		raw, _ := io.ReadAll(io.LimitReader(body, maxFrameSize))
		if derr := sonic.Unmarshal(raw, &apiErr); derr == nil && apiErr.Error != "" {
			return fmt.Errorf("chat failed (HTTP %d): %s", resp.StatusCode(), apiErr.Error)
		}
		return fmt.Errorf("chat failed with HTTP status: %d", resp.StatusCode())
	}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)
	for scanner.Scan() {
		data, ok := strings.CutPrefix(scanner.Text(), "data: ")
		if !ok {
			continue
		}
		ev, err := chat.DecodeEvent([]byte(data))
		if err != nil {
			continue
		}
		if err := onEvent(ev); err != nil {
			return err
		}
		if ev.Kind == chat.KindEnd || ev.Kind == chat.KindError {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read chat stream: %w", err)
	}
	return ErrStreamTruncated
}

// SearchPlaces runs a text search. origin may be nil.
func (c *APIClient) SearchPlaces(ctx context.Context, query, location string, origin *types.LatLng) (*SearchResponse, error) {
	params := map[string]string{"query": query}
	if location != "" {
		params["location"] = location
	}
	setLatLng(params, "lat", "lng", origin)

	var out SearchResponse
	if err := c.get(ctx, endpointPlacesSearch, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PlaceDetails fetches one place
func (c *APIClient) PlaceDetails(ctx context.Context, placeID string, origin *types.LatLng) (*DetailsResponse, error) {
	params := map[string]string{}
	setLatLng(params, "lat", "lng", origin)

	var out DetailsResponse
	if err := c.get(ctx, fmt.Sprintf(endpointPlaceDetails, url.PathEscape(placeID)), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Geocode resolves an address
func (c *APIClient) Geocode(ctx context.Context, address string) (*GeocodeResponse, error) {
	var out GeocodeResponse
	if err := c.get(ctx, endpointGeocode, map[string]string{"address": address}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReverseGeocode resolves coordinates to an address
func (c *APIClient) ReverseGeocode(ctx context.Context, p types.LatLng) (*ReverseGeocodeResponse, error) {
	params := map[string]string{}
	setLatLng(params, "lat", "lng", &p)

	var out ReverseGeocodeResponse
	if err := c.get(ctx, endpointReverseGeocode, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Directions asks for a route; mode may be empty for driving
func (c *APIClient) Directions(ctx context.Context, origin, destination string, mode types.TravelMode) (*DirectionsResponse, error) {
	params := map[string]string{"origin": origin, "destination": destination}
	if mode != "" {
		params["mode"] = string(mode)
	}

	var out DirectionsResponse
	if err := c.get(ctx, endpointDirections, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Distance computes the great-circle distance between two points
func (c *APIClient) Distance(ctx context.Context, from, to types.LatLng) (*DistanceResponse, error) {
	params := map[string]string{}
	setLatLng(params, "lat1", "lng1", &from)
	setLatLng(params, "lat2", "lng2", &to)

	var out DistanceResponse
	if err := c.get(ctx, endpointDistance, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health fetches the server health report
func (c *APIClient) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.get(ctx, endpointHealth, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) get(ctx context.Context, path string, params map[string]string, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(out).
		Get(path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		if apiErr, ok := resp.Error().(*apiError); ok && apiErr.Error != "" {
			return fmt.Errorf("%s (HTTP %d)", apiErr.Error, resp.StatusCode())
		}
		return fmt.Errorf("request failed with HTTP status: %d", resp.StatusCode())
	}
	return nil
}

func setLatLng(params map[string]string, latKey, lngKey string, p *types.LatLng) {
	if p == nil {
		return
	}
	params[latKey] = strconv.FormatFloat(p.Lat, 'f', -1, 64)
	params[lngKey] = strconv.FormatFloat(p.Lng, 'f', -1, 64)
}
