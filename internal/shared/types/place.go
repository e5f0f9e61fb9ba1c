package types

// LatLng is a WGS84 coordinate pair
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// MaxPhotosPerPlace bounds the photo references kept on a PlaceRecord
const MaxPhotosPerPlace = 5

// PlaceRecord is the provider-independent view of a place
type PlaceRecord struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	Address            string        `json:"address,omitempty"`
	Vicinity           string        `json:"vicinity,omitempty"`
	Location           *LatLng       `json:"location,omitempty"`
	Rating             *float64      `json:"rating,omitempty"`
	UserRatingsTotal   *int          `json:"user_ratings_total,omitempty"`
	PriceLevel         *int          `json:"price_level,omitempty"`
	Phone              string        `json:"phone,omitempty"`
	InternationalPhone string        `json:"international_phone,omitempty"`
	Website            string        `json:"website,omitempty"`
	URL                string        `json:"url,omitempty"`
	BusinessStatus     string        `json:"business_status,omitempty"`
	OpeningHours       *OpeningHours `json:"opening_hours,omitempty"`
	Types              []string      `json:"types,omitempty"`
	Photos             []PhotoRef    `json:"photos,omitempty"`

	// Only set by details lookups
	Reviews                      []Review        `json:"reviews,omitempty"`
	EditorialSummary             string          `json:"editorial_summary,omitempty"`
	ServiceOptions               *ServiceOptions `json:"service_options,omitempty"`
	WheelchairAccessibleEntrance *bool           `json:"wheelchair_accessible_entrance,omitempty"`

	// Present iff Location is set and the caller supplied an origin
	DistanceKm   *float64 `json:"distance_km,omitempty"`
	DistanceText string   `json:"distance_text,omitempty"`
}

// HasDistance reports whether distance fields were computed
func (p PlaceRecord) HasDistance() bool {
	return p.DistanceKm != nil
}

// OpeningHours describes when a place is open
type OpeningHours struct {
	OpenNow     *bool    `json:"open_now,omitempty"`
	WeekdayText []string `json:"weekday_text,omitempty"`
}

// PhotoRef is an opaque provider photo reference
type PhotoRef struct {
	Reference string `json:"reference"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Review is a single user review
type Review struct {
	Author       string  `json:"author"`
	Rating       float64 `json:"rating"`
	Text         string  `json:"text"`
	RelativeTime string  `json:"relative_time,omitempty"`
}

// ServiceOptions lists the service flags a place advertises
type ServiceOptions struct {
	Delivery         *bool `json:"delivery,omitempty"`
	DineIn           *bool `json:"dine_in,omitempty"`
	Takeout          *bool `json:"takeout,omitempty"`
	Reservable       *bool `json:"reservable,omitempty"`
	ServesBreakfast  *bool `json:"serves_breakfast,omitempty"`
	ServesLunch      *bool `json:"serves_lunch,omitempty"`
	ServesDinner     *bool `json:"serves_dinner,omitempty"`
	ServesVegetarian *bool `json:"serves_vegetarian_food,omitempty"`
	CurbsidePickup   *bool `json:"curbside_pickup,omitempty"`
}

// DirectionsResult is the first leg of the first route returned
type DirectionsResult struct {
	DistanceText string           `json:"distance_text"`
	DurationText string           `json:"duration_text"`
	StartAddress string           `json:"start_address,omitempty"`
	EndAddress   string           `json:"end_address,omitempty"`
	Steps        []DirectionsStep `json:"steps,omitempty"`
}

// DirectionsStep is one maneuver within a leg
type DirectionsStep struct {
	Instruction  string `json:"instruction"`
	DistanceText string `json:"distance_text"`
	DurationText string `json:"duration_text"`
	TravelMode   string `json:"travel_mode,omitempty"`
}

// TravelMode selects the directions routing profile
type TravelMode string

const (
	ModeDriving   TravelMode = "driving"
	ModeWalking   TravelMode = "walking"
	ModeBicycling TravelMode = "bicycling"
	ModeTransit   TravelMode = "transit"
)

// TravelModes lists every supported mode
var TravelModes = []TravelMode{ModeDriving, ModeWalking, ModeBicycling, ModeTransit}

// IsValid reports whether m is a supported travel mode
func (m TravelMode) IsValid() bool {
	for _, known := range TravelModes {
		if m == known {
			return true
		}
	}
	return false
}
