package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/placechat/internal/providers/maps"
	"github.com/GriffinCanCode/placechat/internal/shared/geo"
	"github.com/GriffinCanCode/placechat/internal/shared/types"
	"github.com/GriffinCanCode/placechat/internal/shared/utils"
)

// SearchPlaces handles GET /api/places/search
func (h *Handlers) SearchPlaces(c *gin.Context) {
	query := c.Query("query")
	if err := utils.ValidateQuery(query); err != nil {
		h.respondError(c, err)
		return
	}
	location := strings.TrimSpace(c.Query("location"))
	if err := utils.ValidateString(location, "location", utils.MaxAddressLength, false); err != nil {
		h.respondError(c, err)
		return
	}
	origin, err := latLngQuery(c, "lat", "lng")
	if err != nil {
		h.respondError(c, err)
		return
	}
	radius, err := intQuery(c, "radius")
	if err != nil {
		h.respondError(c, err)
		return
	}

	if location == "" && origin != nil {
		location = geo.FormatLatLng(*origin)
	}

	out := h.maps.Search(c.Request.Context(), query, maps.SearchOptions{
		Location: location,
		Radius:   radius,
		Origin:   origin,
		Language: c.Query("language"),
	})
	respondOutcome(h, c, out, func(r maps.SearchResult) gin.H {
		results := r.Results
		if results == nil {
			results = []types.PlaceRecord{}
		}
		return gin.H{"results": results, "search_center": r.SearchCenter}
	})
}

// PlaceDetails handles GET /api/places/:id
func (h *Handlers) PlaceDetails(c *gin.Context) {
	placeID := c.Param("id")
	if err := utils.ValidatePlaceID(placeID); err != nil {
		h.respondError(c, err)
		return
	}
	origin, err := latLngQuery(c, "lat", "lng")
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := h.maps.Details(c.Request.Context(), placeID, origin)
	respondOutcome(h, c, out, func(p *types.PlaceRecord) gin.H {
		return gin.H{"result": p}
	})
}

// PlacePhoto handles GET /api/places/photo and proxies the image bytes
func (h *Handlers) PlacePhoto(c *gin.Context) {
	ref := c.Query("ref")
	if err := utils.ValidatePhotoRef(ref); err != nil {
		h.respondError(c, err)
		return
	}
	width, err := intQuery(c, "maxwidth")
	if err != nil {
		h.respondError(c, err)
		return
	}

	photo, err := h.maps.Photo(c.Request.Context(), ref, width)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, photo.ContentType, photo.Data)
}

// Geocode handles GET /api/geocode
func (h *Handlers) Geocode(c *gin.Context) {
	address := c.Query("address")
	if err := utils.ValidateAddress(address, "address"); err != nil {
		h.respondError(c, err)
		return
	}

	location, err := h.maps.Geocode(c.Request.Context(), address)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": address, "location": location})
}

// ReverseGeocode handles GET /api/reverse-geocode
func (h *Handlers) ReverseGeocode(c *gin.Context) {
	point, err := latLngQuery(c, "lat", "lng")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if point == nil {
		h.respondError(c, fmt.Errorf("%w: lat and lng are required", utils.ErrValidation))
		return
	}

	address, err := h.maps.ReverseGeocode(c.Request.Context(), point.Lat, point.Lng)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var body any
	if address != "" {
		body = address
	}
	c.JSON(http.StatusOK, gin.H{"location": point, "address": body})
}

// Directions handles GET /api/directions
func (h *Handlers) Directions(c *gin.Context) {
	origin, destination := c.Query("origin"), c.Query("destination")
	if err := utils.ValidateAddress(origin, "origin"); err != nil {
		h.respondError(c, err)
		return
	}
	if err := utils.ValidateAddress(destination, "destination"); err != nil {
		h.respondError(c, err)
		return
	}
	mode, err := utils.ValidateTravelMode(c.Query("mode"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := h.maps.Directions(c.Request.Context(), origin, destination, mode)
	respondOutcome(h, c, out, func(d *types.DirectionsResult) gin.H {
		return gin.H{"mode": mode, "directions": d}
	})
}

// Distance handles GET /api/distance
func (h *Handlers) Distance(c *gin.Context) {
	from, err := latLngQuery(c, "lat1", "lng1")
	if err != nil {
		h.respondError(c, err)
		return
	}
	to, err := latLngQuery(c, "lat2", "lng2")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if from == nil || to == nil {
		h.respondError(c, fmt.Errorf("%w: lat1, lng1, lat2 and lng2 are required", utils.ErrValidation))
		return
	}

	km := geo.Distance(*from, *to)
	c.JSON(http.StatusOK, gin.H{
		"distance_km":   km,
		"distance_text": geo.FormatDistance(km),
	})
}

// latLngQuery reads a coordinate pair. Both absent yields nil; one absent,
// unparsable or out of range is a validation error.
func latLngQuery(c *gin.Context, latKey, lngKey string) (*types.LatLng, error) {
	latRaw, lngRaw := c.Query(latKey), c.Query(lngKey)
	if latRaw == "" && lngRaw == "" {
		return nil, nil
	}
	if latRaw == "" || lngRaw == "" {
		return nil, fmt.Errorf("%w: %s and %s must be given together", utils.ErrValidation, latKey, lngKey)
	}

	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a number", utils.ErrValidation, latKey)
	}
	lng, err := strconv.ParseFloat(lngRaw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a number", utils.ErrValidation, lngKey)
	}

	p := types.LatLng{Lat: lat, Lng: lng}
	if err := utils.ValidateLatLng(p); err != nil {
		return nil, err
	}
	return &p, nil
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", utils.ErrValidation, key)
	}
	return n, nil
}
