package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"hotelix/internal/model"
	"hotelix/internal/utils"
)

// maxVendorSlots is how many priceN/vendorN pairs a comparison record may carry
const maxVendorSlots = 20

// Field variants, in priority order. A dotted name looks into a nested object.
var (
	priceFields       = withIndexed([]string{"price", "price_per_night"}, "price")
	vendorFields      = withIndexed([]string{"vendor_name", "vendor"}, "vendor")
	nameFields        = []string{"name", "hotel_name", "title"}
	ratingFields      = []string{"rating", "reviews.rating"}
	ratingCountFields = []string{"rating_count", "total_rating_count", "reviews.count"}
	locationFields    = []string{"location", "parent_name", "address", "city"}
	hotelIDFields     = []string{"hotel_id", "hotelId", "hotelid", "value", "document_id", "id"}
	urlFields         = []string{"affiliate_url", "url", "booking_url"}
	amenityFields     = []string{"amenities", "facilities"}
)

func withIndexed(base []string, prefix string) []string {
	out := append([]string{}, base...)
	for i := 1; i <= maxVendorSlots; i++ {
		out = append(out, prefix+strconv.Itoa(i))
	}
	return out
}

// Normalize converts one vendor record into a canonical offer. Missing or unusable
// fields stay absent; a canonical record normalizes to itself.
func Normalize(raw map[string]interface{}) model.HotelOffer {
	offer := model.HotelOffer{
		Amenities: []string{},
		Raw:       raw,
	}

	if v, ok := firstPresent(raw, priceFields); ok {
		offer.Price = parsePrice(v)
	}
	offer.VendorName = vendorName(raw)

	if v, ok := firstPresent(raw, nameFields); ok {
		offer.Name = strings.TrimSpace(cast.ToString(v))
	}
	if v, ok := firstPresent(raw, hotelIDFields); ok {
		offer.HotelID = cast.ToString(v)
	}
	if v, ok := firstPresent(raw, ratingFields); ok {
		if f, err := cast.ToFloat64E(v); err == nil {
			offer.Rating = &f
		}
	}
	if v, ok := firstPresent(raw, ratingCountFields); ok {
		if n, err := cast.ToIntE(v); err == nil && n > 0 {
			offer.RatingCount = n
		}
	}
	offer.Location = firstString(raw, locationFields)
	offer.AffiliateURL = firstString(raw, urlFields)

	if v, ok := firstPresent(raw, amenityFields); ok {
		offer.Amenities = utils.NormalizeAmenities(amenityList(v))
	}

	return offer
}

// NormalizeList normalizes a provider result list. Entries that are not records
// (pagination metadata, strings, nested lists) are skipped, and so is any record
// whose normalization panics.
func NormalizeList(items []interface{}) []model.HotelOffer {
	offers := make([]model.HotelOffer, 0, len(items))
	for _, item := range items {
		raw, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if offer, err := safeNormalize(raw); err == nil {
			offers = append(offers, offer)
		}
	}
	return offers
}

func safeNormalize(raw map[string]interface{}) (offer model.HotelOffer, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("normalize panic: %v", r)
		}
	}()
	return Normalize(raw), nil
}

// vendorName prefers the vendor paired with the first filled priceN slot
func vendorName(raw map[string]interface{}) *string {
	for i := 1; i <= maxVendorSlots; i++ {
		if _, ok := present(raw, "price"+strconv.Itoa(i)); !ok {
			continue
		}
		if s := firstString(raw, []string{"vendor" + strconv.Itoa(i)}); s != nil {
			return s
		}
		break
	}
	return firstString(raw, vendorFields)
}

// parsePrice keeps only digits, '.' and ','; ',' is then read as a decimal point.
// Negative prices are absent.
func parsePrice(v interface{}) *float64 {
	switch n := v.(type) {
	case float64:
		return nonNegative(n)
	case int:
		return nonNegative(float64(n))
	}

	s := cast.ToString(v)
	var b strings.Builder
	for _, r := range s {
		if r == '-' && b.Len() == 0 {
			// a minus before any digit, as in "-50" or "€ -12"
			return nil
		}
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.ReplaceAll(b.String(), ",", ".")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return nonNegative(f)
}

func nonNegative(f float64) *float64 {
	if f < 0 {
		return nil
	}
	return &f
}

func amenityList(v interface{}) []string {
	switch val := v.(type) {
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return val
	case string:
		return strings.Split(val, ",")
	default:
		return nil
	}
}

func firstString(raw map[string]interface{}, fields []string) *string {
	for _, field := range fields {
		v, ok := present(raw, field)
		if !ok {
			continue
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			return &s
		}
	}
	return nil
}

func firstPresent(raw map[string]interface{}, fields []string) (interface{}, bool) {
	for _, field := range fields {
		if v, ok := present(raw, field); ok {
			return v, true
		}
	}
	return nil, false
}

// present looks a field up and treats nil and blank strings as missing
func present(raw map[string]interface{}, field string) (interface{}, bool) {
	var cur interface{} = raw
	for _, key := range strings.Split(field, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	switch v := cur.(type) {
	case nil:
		return nil, false
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, false
		}
	}
	return cur, true
}
