package client

import "github.com/GriffinCanCode/placechat/internal/shared/types"

// SearchResponse is the body of GET /api/places/search
type SearchResponse struct {
	Results      []types.PlaceRecord `json:"results"`
	SearchCenter *types.LatLng       `json:"search_center"`
	Error        string              `json:"error"`
}

// DetailsResponse is the body of GET /api/places/:id
type DetailsResponse struct {
	Result *types.PlaceRecord `json:"result"`
	Error  string             `json:"error"`
}

// GeocodeResponse is the body of GET /api/geocode
type GeocodeResponse struct {
	Address  string        `json:"address"`
	Location *types.LatLng `json:"location"`
}

// ReverseGeocodeResponse is the body of GET /api/reverse-geocode
type ReverseGeocodeResponse struct {
	Location *types.LatLng `json:"location"`
	Address  *string       `json:"address"`
}

// DirectionsResponse is the body of GET /api/directions
type DirectionsResponse struct {
	Mode       types.TravelMode        `json:"mode"`
	Directions *types.DirectionsResult `json:"directions"`
	Error      string                  `json:"error"`
}

// DistanceResponse is the body of GET /api/distance
type DistanceResponse struct {
	DistanceKm   float64 `json:"distance_km"`
	DistanceText string  `json:"distance_text"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string            `json:"status"`
	Uptime   string            `json:"uptime"`
	Breakers map[string]string `json:"breakers"`
	LLM      struct {
		Model string `json:"model"`
	} `json:"llm"`
	Maps struct {
		Configured bool `json:"configured"`
	} `json:"maps"`
}

type apiError struct {
	Error string `json:"error"`
}
