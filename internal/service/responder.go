package service

import (
	"fmt"
	"strings"

	"hotelix/internal/model"
)

// Fixed replies
const (
	MsgWelcome = "Welcome! I'm your hotel recommendation assistant. Let me help you find the best hotels for you!\n\n" +
		"Tell me: where do you want to go, when, and what is your budget?"
	MsgNoResults     = "I couldn't find any results. Please check your dates and destination."
	MsgHelp          = "I can help you find the best hotels! Tell me your destination and your dates."
	MsgRefine        = "Tell me how to refine your search: budget, amenities, or room type."
	MsgCapabilities  = "I specialise in hotel recommendations. How can I help you?"
	MsgSearchFailed  = "Sorry, something went wrong while searching for hotels. Please try again in a moment."
	MsgInvalidDates  = "Your check-out date must be after your check-in date. Which dates would you like?"
	maxRenderedHotel = 5
)

// Responder renders replies for the user. It has no side effects.
type Responder struct {
	currency string
}

// NewResponder creates a responder that prints prices with the given currency symbol
func NewResponder(currency string) *Responder {
	return &Responder{currency: currency}
}

// Render builds the reply for an intent. For searches, offers is the full ranked
// list: the count covers all of them, the list shows the first five.
func (r *Responder) Render(intent model.Intent, offers []model.ScoredOffer) string {
	switch intent {
	case model.IntentSearch:
		if len(offers) == 0 {
			return MsgNoResults
		}
		return r.renderOffers(offers)
	case model.IntentHelp:
		return MsgHelp
	case model.IntentRefine:
		return MsgRefine
	default:
		return MsgCapabilities
	}
}

func (r *Responder) renderOffers(offers []model.ScoredOffer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I found %d great %s! Here are the best:\n", len(offers), plural(len(offers), "hotel", "hotels"))

	for i, o := range offers {
		if i == maxRenderedHotel {
			break
		}
		fmt.Fprintf(&b, "%d. %s | ⭐ %s\n", i+1, o.DisplayName(), r.formatRating(o.Rating))
		fmt.Fprintf(&b, "    %s/night | %s\n", r.formatPrice(o.Price), valueOr(o.Location, "—"))
		if o.AffiliateURL != nil && *o.AffiliateURL != "" {
			fmt.Fprintf(&b, "    Book: %s\n", *o.AffiliateURL)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (r *Responder) formatRating(rating *float64) string {
	if rating == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f/10", rating10(rating))
}

func (r *Responder) formatPrice(price *float64) string {
	if price == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%s", *price, r.currency)
}

func valueOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
