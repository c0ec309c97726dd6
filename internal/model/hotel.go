package model

// HotelOffer is one vendor's priced availability for a hotel, in provider-agnostic form.
// Pointer fields are nil when the provider did not supply a usable value.
type HotelOffer struct {
	VendorName   *string        `json:"vendor_name,omitempty"`
	HotelID      string         `json:"hotel_id,omitempty"`
	Name         string         `json:"name,omitempty"`
	Price        *float64       `json:"price,omitempty"`
	Rating       *float64       `json:"rating,omitempty"` // provider scale, usually 0-5
	RatingCount  int            `json:"rating_count"`
	Location     *string        `json:"location,omitempty"`
	Amenities    []string       `json:"amenities"`
	AffiliateURL *string        `json:"affiliate_url,omitempty"`
	Raw          map[string]any `json:"-"`
}

// DisplayName picks the best label for an offer
func (o HotelOffer) DisplayName() string {
	switch {
	case o.Name != "":
		return o.Name
	case o.VendorName != nil && *o.VendorName != "":
		return *o.VendorName
	case o.HotelID != "":
		return o.HotelID
	default:
		return "—"
	}
}

// ScoreBreakdown holds the contribution of each ranking factor
type ScoreBreakdown struct {
	Price     float64 `json:"price"`
	Rating    float64 `json:"rating"`
	Amenities float64 `json:"amenities"`
	Reviews   float64 `json:"reviews"`
	Quality   float64 `json:"quality"`
}

// Total sums all factors
func (b ScoreBreakdown) Total() float64 {
	return b.Price + b.Rating + b.Amenities + b.Reviews + b.Quality
}

// ScoredOffer is a copy of an offer annotated by the ranker
type ScoredOffer struct {
	HotelOffer
	Score          float64        `json:"score"`
	Breakdown      ScoreBreakdown `json:"breakdown"`
	MatchedReasons []string       `json:"matched_reasons"`
}

// SearchQuery is what the provider adapter needs to look up offers
type SearchQuery struct {
	Location  string
	CheckIn   string
	CheckOut  string
	Guests    int
	MaxPrice  *float64
	Amenities []string
}

// Location kinds a name can resolve to at the provider
const (
	LocationCity  = "city"
	LocationHotel = "hotel"
	LocationSlug  = "slug"
)

// LocationRef is a resolved provider identifier for a free-text location
type LocationRef struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}
