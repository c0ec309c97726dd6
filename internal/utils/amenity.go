package utils

import (
	"strings"
)

// amenityAliases maps the ways users and vendors spell an amenity to one canonical tag
var amenityAliases = map[string]string{
	"wifi":               "wifi",
	"wi-fi":              "wifi",
	"free wifi":          "wifi",
	"internet":           "wifi",
	"wireless internet":  "wifi",
	"pool":               "pool",
	"swimming pool":      "pool",
	"piscine":            "pool",
	"outdoor pool":       "pool",
	"indoor pool":        "pool",
	"parking":            "parking",
	"free parking":       "parking",
	"car park":           "parking",
	"breakfast":          "breakfast",
	"free breakfast":     "breakfast",
	"breakfast included": "breakfast",
	"petit-déjeuner":     "breakfast",
	"spa":                "spa",
	"wellness":           "spa",
	"gym":                "gym",
	"fitness":            "gym",
	"fitness center":     "gym",
	"fitness centre":     "gym",
	"aircon":             "air conditioning",
	"a/c":                "air conditioning",
	"ac":                 "air conditioning",
	"air conditioner":    "air conditioning",
	"air conditioning":   "air conditioning",
	"climatisation":      "air conditioning",
	"restaurant":         "restaurant",
	"bar":                "bar",
	"pets":               "pets allowed",
	"pet friendly":       "pets allowed",
	"pets allowed":       "pets allowed",
	"animaux":            "pets allowed",
	"airport shuttle":    "airport shuttle",
	"shuttle":            "airport shuttle",
	"room service":       "room service",
	"balcony":            "balcony",
	"terrace":            "balcony",
	"sea view":           "sea view",
	"vue mer":            "sea view",
	"kitchen":            "kitchen",
	"kitchenette":        "kitchen",
}

// NormalizeAmenity lowercases an amenity and maps known aliases to a canonical tag
func NormalizeAmenity(amenity string) string {
	lower := strings.ToLower(strings.TrimSpace(amenity))
	if canonical, ok := amenityAliases[lower]; ok {
		return canonical
	}
	return lower
}

// NormalizeAmenities canonicalizes a list, dropping blanks and duplicates.
// The first occurrence order is kept. The result is never nil.
func NormalizeAmenities(amenities []string) []string {
	out := make([]string, 0, len(amenities))
	seen := make(map[string]struct{}, len(amenities))
	for _, a := range amenities {
		n := NormalizeAmenity(a)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
