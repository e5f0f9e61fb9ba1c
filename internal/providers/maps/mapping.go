package maps

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/GriffinCanCode/placechat/internal/shared/geo"
	"github.com/GriffinCanCode/placechat/internal/shared/types"
)

// textPolicy strips all markup from provider text
var textPolicy = bluemonday.StrictPolicy()

// plainText removes tags and decodes entities, collapsing whitespace
func plainText(s string) string {
	if s == "" {
		return ""
	}
	// tags that separate words in directions ("<div>", "<b>") must not glue them together
	s = strings.NewReplacer("<div", " <div", "<br", " <br").Replace(s)
	s = html.UnescapeString(textPolicy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

// toPlaceRecord maps a provider place. Distance fields are set only when the
// place has coordinates and origin is non-nil.
func toPlaceRecord(p googlePlace, origin *types.LatLng) types.PlaceRecord {
	rec := types.PlaceRecord{
		ID:                 p.PlaceID,
		Name:               p.Name,
		Address:            p.FormattedAddress,
		Vicinity:           p.Vicinity,
		Rating:             p.Rating,
		UserRatingsTotal:   p.UserRatingsTotal,
		PriceLevel:         p.PriceLevel,
		Phone:              p.FormattedPhoneNumber,
		InternationalPhone: p.InternationalPhoneNumber,
		Website:            p.Website,
		URL:                p.URL,
		BusinessStatus:     p.BusinessStatus,
		Types:              p.Types,

		WheelchairAccessibleEntrance: p.WheelchairAccessible,
	}
	if rec.Address == "" {
		rec.Address = p.Vicinity
	}

	if p.Geometry != nil && p.Geometry.Location != nil {
		rec.Location = &types.LatLng{Lat: p.Geometry.Location.Lat, Lng: p.Geometry.Location.Lng}
	}
	if rec.Location != nil && origin != nil {
		km := geo.Distance(*origin, *rec.Location)
		rec.DistanceKm = &km
		rec.DistanceText = geo.FormatDistance(km)
	}

	if p.OpeningHours != nil {
		rec.OpeningHours = &types.OpeningHours{
			OpenNow:     p.OpeningHours.OpenNow,
			WeekdayText: p.OpeningHours.WeekdayText,
		}
	}

	for i, photo := range p.Photos {
		if i == types.MaxPhotosPerPlace {
			break
		}
		rec.Photos = append(rec.Photos, types.PhotoRef{
			Reference: photo.PhotoReference,
			Width:     photo.Width,
			Height:    photo.Height,
		})
	}

	for _, r := range p.Reviews {
		rec.Reviews = append(rec.Reviews, types.Review{
			Author:       r.AuthorName,
			Rating:       r.Rating,
			Text:         plainText(r.Text),
			RelativeTime: r.RelativeTimeDescription,
		})
	}
	if p.EditorialSummary != nil {
		rec.EditorialSummary = plainText(p.EditorialSummary.Overview)
	}

	opts := types.ServiceOptions{
		Delivery:         p.Delivery,
		DineIn:           p.DineIn,
		Takeout:          p.Takeout,
		Reservable:       p.Reservable,
		ServesBreakfast:  p.ServesBreakfast,
		ServesLunch:      p.ServesLunch,
		ServesDinner:     p.ServesDinner,
		ServesVegetarian: p.ServesVegetarianFood,
		CurbsidePickup:   p.CurbsidePickup,
	}
	if opts != (types.ServiceOptions{}) {
		rec.ServiceOptions = &opts
	}

	return rec
}

func toDirectionsResult(leg googleLeg) *types.DirectionsResult {
	out := &types.DirectionsResult{
		DistanceText: leg.Distance.Text,
		DurationText: leg.Duration.Text,
		StartAddress: leg.StartAddress,
		EndAddress:   leg.EndAddress,
	}
	for _, s := range leg.Steps {
		out.Steps = append(out.Steps, types.DirectionsStep{
			Instruction:  plainText(s.HTMLInstructions),
			DistanceText: s.Distance.Text,
			DurationText: s.Duration.Text,
			TravelMode:   strings.ToLower(s.TravelMode),
		})
	}
	return out
}
