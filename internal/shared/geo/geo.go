package geo

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/GriffinCanCode/placechat/internal/shared/types"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distance
const EarthRadiusKm = 6371.0

var latLngPattern = regexp.MustCompile(`^\s*(-?\d{1,3}(?:\.\d+)?)\s*,\s*(-?\d{1,3}(?:\.\d+)?)\s*$`)

// Distance returns the haversine distance between two points in kilometers
func Distance(origin, target types.LatLng) float64 {
	lat1 := toRadians(origin.Lat)
	lat2 := toRadians(target.Lat)
	dLat := toRadians(target.Lat - origin.Lat)
	dLng := toRadians(target.Lng - origin.Lng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// FormatDistance renders a distance for display.
// Below 1 km it uses whole meters, up to 10 km one decimal, above that whole km.
func FormatDistance(km float64) string {
	switch {
	case km < 1:
		return fmt.Sprintf("%dm", int(math.Round(km*1000)))
	case km <= 10:
		return strconv.FormatFloat(km, 'f', 1, 64) + "km"
	default:
		return fmt.Sprintf("%dkm", int(math.Round(km)))
	}
}

// ParseLatLng recognises "lat,lng" strings
func ParseLatLng(s string) (types.LatLng, bool) {
	m := latLngPattern.FindStringSubmatch(s)
	if m == nil {
		return types.LatLng{}, false
	}

	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return types.LatLng{}, false
	}
	lng, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return types.LatLng{}, false
	}

	p := types.LatLng{Lat: lat, Lng: lng}
	if !Valid(p) {
		return types.LatLng{}, false
	}
	return p, true
}

// FormatLatLng renders a point the way the maps provider expects it
func FormatLatLng(p types.LatLng) string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}

// Valid reports whether p lies within WGS84 bounds
func Valid(p types.LatLng) bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Centroid returns the arithmetic mean of the given points
func Centroid(points []types.LatLng) (types.LatLng, bool) {
	if len(points) == 0 {
		return types.LatLng{}, false
	}

	lats := make([]float64, len(points))
	lngs := make([]float64, len(points))
	for i, p := range points {
		lats[i] = p.Lat
		lngs[i] = p.Lng
	}

	return types.LatLng{
		Lat: stat.Mean(lats, nil),
		Lng: stat.Mean(lngs, nil),
	}, true
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
