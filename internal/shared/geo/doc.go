// Package geo provides the coordinate math used by the maps gateway and the
// chat orchestrator: haversine distance, display formatting of distances,
// detection of coordinate-like location strings and result centroids.
//
// Example Usage:
//
//	km := geo.Distance(origin, place)
//	label := geo.FormatDistance(km) // "850m", "3.2km", "42km"
package geo
