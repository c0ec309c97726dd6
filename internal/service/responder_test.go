package service

import (
	"fmt"
	"strings"
	"testing"

	"hotelix/internal/config"
	"hotelix/internal/model"
)

func scored(name string, price, rating float64, location, url string) model.ScoredOffer {
	o := model.ScoredOffer{HotelOffer: model.HotelOffer{Name: name, Price: &price, Rating: &rating}}
	if location != "" {
		o.Location = &location
	}
	if url != "" {
		o.AffiliateURL = &url
	}
	return o
}

func TestResponder_FixedMessages(t *testing.T) {
	r := NewResponder("€")

	tests := []struct {
		intent model.Intent
		offers []model.ScoredOffer
		want   string
	}{
		{model.IntentSearch, nil, MsgNoResults},
		{model.IntentHelp, nil, MsgHelp},
		{model.IntentRefine, nil, MsgRefine},
		{model.IntentInfo, nil, MsgCapabilities},
		{model.Intent("other"), nil, MsgCapabilities},
		{model.IntentHelp, []model.ScoredOffer{scored("X", 1, 1, "", "")}, MsgHelp},
	}

	for _, tt := range tests {
		t.Run(string(tt.intent), func(t *testing.T) {
			if got := r.Render(tt.intent, tt.offers); got != tt.want {
				t.Errorf("Render(%s) = %q, want %q", tt.intent, got, tt.want)
			}
		})
	}
}

func TestResponder_SearchListsTopFiveAndTotal(t *testing.T) {
	r := NewResponder("€")
	var offers []model.ScoredOffer
	for i := 1; i <= 7; i++ {
		offers = append(offers, scored(fmt.Sprintf("Hotel %d", i), float64(100+i), 4, "Paris", ""))
	}
	offers[0].AffiliateURL = nil
	url := "https://example.com/book/2"
	offers[1].AffiliateURL = &url

	got := r.Render(model.IntentSearch, offers)

	if !strings.HasPrefix(got, "I found 7 great hotels!") {
		t.Errorf("reply should state the total count, got %q", got)
	}
	if !strings.Contains(got, "5. Hotel 5") || strings.Contains(got, "Hotel 6") {
		t.Errorf("reply should list exactly five hotels:\n%s", got)
	}
	if !strings.Contains(got, "⭐ 8.0/10") || !strings.Contains(got, "102.00€/night | Paris") {
		t.Errorf("missing rating or price line:\n%s", got)
	}
	if strings.Count(got, "Book: ") != 1 || !strings.Contains(got, "Book: "+url) {
		t.Errorf("booking link should only appear when present:\n%s", got)
	}
}

func TestResponder_MissingFields(t *testing.T) {
	r := NewResponder("€")
	offer := model.ScoredOffer{HotelOffer: model.HotelOffer{HotelID: "42"}}

	got := r.Render(model.IntentSearch, []model.ScoredOffer{offer})

	for _, want := range []string{"I found 1 great hotel!", "1. 42 | ⭐ N/A", "N/A/night | —"} {
		if !strings.Contains(got, want) {
			t.Errorf("reply missing %q:\n%s", want, got)
		}
	}
}

func TestResponder_ShowsAffiliateLink(t *testing.T) {
	offers := []model.HotelOffer{{Name: "Hotel One", HotelID: "1"}}
	NewAffiliateLinker(config.MakcorpsConfig{AffiliateBaseURL: "https://book.example.com", PartnerID: "hotel_chatbot"}).Apply(offers)

	got := NewResponder("€").Render(model.IntentSearch, []model.ScoredOffer{{HotelOffer: offers[0]}})

	if want := "    Book: https://book.example.com/hotel/1?partner=hotel_chatbot\n"; !strings.Contains(got, want) {
		t.Errorf("reply missing affiliate line %q:\n%s", want, got)
	}
}
