package service

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNormalize_EmptyRecord(t *testing.T) {
	got := Normalize(map[string]interface{}{})

	if got.Price != nil || got.Rating != nil || got.VendorName != nil || got.Location != nil || got.AffiliateURL != nil {
		t.Errorf("expected all optional fields absent, got %+v", got)
	}
	if got.RatingCount != 0 || got.HotelID != "" || got.Name != "" {
		t.Errorf("expected zero values, got %+v", got)
	}
	if got.Amenities == nil || len(got.Amenities) != 0 {
		t.Errorf("Amenities = %#v, want empty non-nil", got.Amenities)
	}
}

func TestNormalize_MakcorpsCityRecord(t *testing.T) {
	raw := map[string]interface{}{
		"name":        "Hotel Lutetia",
		"hotelId":     "12345",
		"parent_name": "Paris",
		"reviews":     map[string]interface{}{"rating": 4.5, "count": float64(1200)},
		"vendor1":     "Booking.com",
		"price1":      "€250",
		"vendor2":     "Expedia",
		"price2":      "€260",
	}

	got := Normalize(raw)

	if got.Name != "Hotel Lutetia" || got.HotelID != "12345" {
		t.Errorf("identity = %q/%q", got.Name, got.HotelID)
	}
	if got.Price == nil || *got.Price != 250 {
		t.Errorf("Price = %v, want 250", got.Price)
	}
	if got.VendorName == nil || *got.VendorName != "Booking.com" {
		t.Errorf("VendorName = %v, want Booking.com", got.VendorName)
	}
	if got.Rating == nil || *got.Rating != 4.5 {
		t.Errorf("Rating = %v, want 4.5", got.Rating)
	}
	if got.RatingCount != 1200 {
		t.Errorf("RatingCount = %d, want 1200", got.RatingCount)
	}
	if got.Location == nil || *got.Location != "Paris" {
		t.Errorf("Location = %v, want Paris", got.Location)
	}
	if !reflect.DeepEqual(got.Raw, raw) {
		t.Error("Raw should keep the source record")
	}
}

func TestNormalize_VendorPairedWithFirstFilledPrice(t *testing.T) {
	raw := map[string]interface{}{
		"vendor1": "Agoda",
		"price1":  "",
		"vendor2": "Expedia",
		"price2":  "€99",
	}

	got := Normalize(raw)

	if got.Price == nil || *got.Price != 99 {
		t.Errorf("Price = %v, want 99", got.Price)
	}
	if got.VendorName == nil || *got.VendorName != "Expedia" {
		t.Errorf("VendorName = %v, want Expedia", got.VendorName)
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  *float64
	}{
		{"number", 120.0, floatPtr(120)},
		{"currency symbol", "$120", floatPtr(120)},
		{"euro suffix with decimal comma", "12,50 €", floatPtr(12.5)},
		{"thousand separator comma", "€1,234", floatPtr(1.234)},
		{"comma and dot", "1,234.56", nil},
		{"no digits", "N/A", nil},
		{"zero", 0, floatPtr(0)},
		{"negative float", -50.0, nil},
		{"negative int", -50, nil},
		{"negative string", "-50", nil},
		{"negative after currency", "€ -12,50", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parsePrice(tt.input)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("parsePrice(%v) = %v, want %v", tt.input, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("parsePrice(%v) = %v, want %v", tt.input, *got, *tt.want)
			}
		})
	}
}

func TestNormalize_UnparseablePriceIsAbsent(t *testing.T) {
	got := Normalize(map[string]interface{}{"price": "on request", "price1": "€80"})
	if got.Price != nil {
		t.Errorf("Price = %v, want absent", *got.Price)
	}
}

func TestNormalizeList_SkipsNonRecords(t *testing.T) {
	items := []interface{}{
		map[string]interface{}{"name": "Valid Hotel", "price1": "€100"},
		"trailing_meta_string",
		[]interface{}{map[string]interface{}{"page": 1}},
		nil,
	}

	got := NormalizeList(items)

	if len(got) != 1 {
		t.Fatalf("NormalizeList() returned %d offers, want 1", len(got))
	}
	if got[0].Name != "Valid Hotel" {
		t.Errorf("Name = %q, want Valid Hotel", got[0].Name)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	raw := map[string]interface{}{
		"name":          "Le Meurice",
		"hotel_id":      float64(987),
		"price":         "€450",
		"vendor_name":   "Hotels.com",
		"rating":        "4.8",
		"rating_count":  float64(321),
		"address":       "228 Rue de Rivoli",
		"amenities":     []interface{}{"Free WiFi", "Spa", "spa"},
		"affiliate_url": "https://example.com/book/987",
	}

	first := Normalize(raw)

	encoded, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var canonical map[string]interface{}
	if err := json.Unmarshal(encoded, &canonical); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	second := Normalize(canonical)

	first.Raw, second.Raw = nil, nil
	if !reflect.DeepEqual(first, second) {
		t.Errorf("normalizing a canonical record changed it:\nfirst  %+v\nsecond %+v", first, second)
	}
	if !reflect.DeepEqual(first.Amenities, []string{"wifi", "spa"}) {
		t.Errorf("Amenities = %v, want [wifi spa]", first.Amenities)
	}
	if first.HotelID != "987" {
		t.Errorf("HotelID = %q, want 987", first.HotelID)
	}
}

func floatPtr(f float64) *float64 { return &f }
