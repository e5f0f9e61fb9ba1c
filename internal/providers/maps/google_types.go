package maps

// Raw Google Maps web service response shapes. Only the fields the gateway
// maps are declared.

type googleStatus struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func (s googleStatus) providerStatus() googleStatus { return s }

type textSearchResponse struct {
	googleStatus
	Results       []googlePlace `json:"results"`
	NextPageToken string        `json:"next_page_token,omitempty"`
}

type detailsResponse struct {
	googleStatus
	Result *googlePlace `json:"result"`
}

type googlePlace struct {
	PlaceID                  string              `json:"place_id"`
	Name                     string              `json:"name"`
	FormattedAddress         string              `json:"formatted_address"`
	Vicinity                 string              `json:"vicinity"`
	Geometry                 *googleGeometry     `json:"geometry"`
	Rating                   *float64            `json:"rating"`
	UserRatingsTotal         *int                `json:"user_ratings_total"`
	PriceLevel               *int                `json:"price_level"`
	FormattedPhoneNumber     string              `json:"formatted_phone_number"`
	InternationalPhoneNumber string              `json:"international_phone_number"`
	Website                  string              `json:"website"`
	URL                      string              `json:"url"`
	BusinessStatus           string              `json:"business_status"`
	OpeningHours             *googleOpeningHours `json:"opening_hours"`
	Types                    []string            `json:"types"`
	Photos                   []googlePhoto       `json:"photos"`
	Reviews                  []googleReview      `json:"reviews"`
	EditorialSummary         *googleEditorial    `json:"editorial_summary"`
	Delivery                 *bool               `json:"delivery"`
	DineIn                   *bool               `json:"dine_in"`
	Takeout                  *bool               `json:"takeout"`
	Reservable               *bool               `json:"reservable"`
	ServesBreakfast          *bool               `json:"serves_breakfast"`
	ServesLunch              *bool               `json:"serves_lunch"`
	ServesDinner             *bool               `json:"serves_dinner"`
	ServesVegetarianFood     *bool               `json:"serves_vegetarian_food"`
	CurbsidePickup           *bool               `json:"curbside_pickup"`
	WheelchairAccessible     *bool               `json:"wheelchair_accessible_entrance"`
}

type googleGeometry struct {
	Location *googleLatLng `json:"location"`
}

type googleLatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type googleOpeningHours struct {
	OpenNow     *bool    `json:"open_now"`
	WeekdayText []string `json:"weekday_text"`
}

type googlePhoto struct {
	PhotoReference string `json:"photo_reference"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
}

type googleReview struct {
	AuthorName              string  `json:"author_name"`
	Rating                  float64 `json:"rating"`
	Text                    string  `json:"text"`
	RelativeTimeDescription string  `json:"relative_time_description"`
}

type googleEditorial struct {
	Overview string `json:"overview"`
}

type geocodeResponse struct {
	googleStatus
	Results []struct {
		FormattedAddress string         `json:"formatted_address"`
		Geometry         googleGeometry `json:"geometry"`
	} `json:"results"`
}

type directionsResponse struct {
	googleStatus
	Routes []struct {
		Legs []googleLeg `json:"legs"`
	} `json:"routes"`
}

type googleLeg struct {
	Distance     googleText   `json:"distance"`
	Duration     googleText   `json:"duration"`
	StartAddress string       `json:"start_address"`
	EndAddress   string       `json:"end_address"`
	Steps        []googleStep `json:"steps"`
}

type googleStep struct {
	HTMLInstructions string     `json:"html_instructions"`
	Distance         googleText `json:"distance"`
	Duration         googleText `json:"duration"`
	TravelMode       string     `json:"travel_mode"`
}

type googleText struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}
