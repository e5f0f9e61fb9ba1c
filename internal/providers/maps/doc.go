// Package maps is the Google Maps web services gateway: text search, place
// details, geocoding, reverse geocoding, directions and photo proxying.
//
// Provider answers are normalised into types.PlaceRecord and
// types.DirectionsResult. Status policy:
//
//	OK, ZERO_RESULTS         success (possibly empty)
//	REQUEST_DENIED, HTTP 403 degraded, with a reason for the user
//	missing API key          degraded
//	NOT_FOUND                ErrNotFound (details), no route (directions)
//	anything else            fatal *ProviderError
//
// Geocode and ReverseGeocode are advisory: provider failures are logged and
// reported as "no result".
package maps
