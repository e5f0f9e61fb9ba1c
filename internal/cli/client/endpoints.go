package client

const (
	apiPrefix = "/api"

	endpointChat           = apiPrefix + "/chat"
	endpointPlacesSearch   = apiPrefix + "/places/search"
	endpointPlaceDetails   = apiPrefix + "/places/%s"
	endpointGeocode        = apiPrefix + "/geocode"
	endpointReverseGeocode = apiPrefix + "/reverse-geocode"
	endpointDirections     = apiPrefix + "/directions"
	endpointDistance       = apiPrefix + "/distance"
	endpointHealth         = "/health"
)
