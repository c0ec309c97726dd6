package service

import (
	"net/url"
	"strings"

	"hotelix/internal/config"
	"hotelix/internal/model"
)

// AffiliateLinker builds tracked booking links of the form {base}/hotel/{id}?partner={partner}
type AffiliateLinker struct {
	baseURL   string
	partnerID string
}

// NewAffiliateLinker returns nil when no base URL is configured
func NewAffiliateLinker(cfg config.MakcorpsConfig) *AffiliateLinker {
	base := strings.TrimRight(strings.TrimSpace(cfg.AffiliateBaseURL), "/")
	if base == "" {
		return nil
	}
	return &AffiliateLinker{baseURL: base, partnerID: cfg.PartnerID}
}

// Link returns the tracked link for a hotel, or "" without an id
func (l *AffiliateLinker) Link(hotelID string) string {
	hotelID = strings.TrimSpace(hotelID)
	if l == nil || hotelID == "" {
		return ""
	}
	link := l.baseURL + "/hotel/" + url.PathEscape(hotelID)
	if l.partnerID != "" {
		link += "?" + url.Values{"partner": {l.partnerID}}.Encode()
	}
	return link
}

// Apply fills AffiliateURL on offers the vendor gave no link for
func (l *AffiliateLinker) Apply(offers []model.HotelOffer) {
	if l == nil {
		return
	}
	for i := range offers {
		if offers[i].AffiliateURL != nil && *offers[i].AffiliateURL != "" {
			continue
		}
		if link := l.Link(offers[i].HotelID); link != "" {
			offers[i].AffiliateURL = &link
		}
	}
}
