package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"hotelix/internal/model"
)

// HotelProvider fetches canonical offers for a query. Provider outages and
// incomplete queries yield an empty list, not an error.
type HotelProvider interface {
	Search(ctx context.Context, q model.SearchQuery) ([]model.HotelOffer, error)
}

// LocationCache remembers how free-text locations resolved
type LocationCache interface {
	GetLocation(ctx context.Context, name string) (*model.LocationRef, error)
	SetLocation(ctx context.Context, name string, ref model.LocationRef) error
}

// makcorpsAPI is the subset of MakcorpsClient the provider needs
type makcorpsAPI interface {
	Mapping(ctx context.Context, name string) ([]MappingEntry, error)
	SearchCity(ctx context.Context, cityID string, q model.SearchQuery) ([]interface{}, error)
	SearchHotel(ctx context.Context, hotelID string, q model.SearchQuery) ([]interface{}, error)
	Booking(ctx context.Context, hotelID string, q model.SearchQuery) (*BookingResult, error)
}

// resolveStrategy turns a location into a provider reference, or reports no match
type resolveStrategy struct {
	name    string
	resolve func(ctx context.Context, location string) (model.LocationRef, bool)
}

// MakcorpsProvider resolves locations and searches offers on Makcorps
type MakcorpsProvider struct {
	api        makcorpsAPI
	cache      LocationCache
	affiliate  *AffiliateLinker
	logger     *zap.Logger
	strategies []resolveStrategy
}

// NewMakcorpsProvider wires the resolution strategies in priority order.
// cache may be nil.
func NewMakcorpsProvider(api makcorpsAPI, cache LocationCache, logger *zap.Logger) *MakcorpsProvider {
	p := &MakcorpsProvider{
		api:    api,
		cache:  cache,
		logger: logger,
	}
	p.strategies = []resolveStrategy{
		{name: "numeric", resolve: resolveNumeric},
		{name: "cache", resolve: p.resolveCached},
		{name: "mapping", resolve: p.resolveMapping},
		{name: "slug", resolve: resolveSlug},
	}
	return p
}

// WithAffiliateLinks makes Search fill missing booking links with tracked ones
func (p *MakcorpsProvider) WithAffiliateLinks(linker *AffiliateLinker) *MakcorpsProvider {
	p.affiliate = linker
	return p
}

// Search resolves q.Location and returns normalized offers
func (p *MakcorpsProvider) Search(ctx context.Context, q model.SearchQuery) ([]model.HotelOffer, error) {
	if strings.TrimSpace(q.Location) == "" || q.CheckIn == "" || q.CheckOut == "" {
		p.logger.Warn("Search needs a location and both dates",
			zap.String("location", q.Location), zap.String("check_in", q.CheckIn), zap.String("check_out", q.CheckOut))
		return []model.HotelOffer{}, nil
	}
	if q.Guests <= 0 {
		q.Guests = 1
	}
	if q.MaxPrice != nil || len(q.Amenities) > 0 {
		// Makcorps has no server-side filter for these, the ranker scores them instead
		p.logger.Debug("Search filters passed to ranking",
			zap.Any("max_price", q.MaxPrice), zap.Strings("amenities", q.Amenities))
	}

	ref, strategy, ok := p.resolve(ctx, q.Location)
	if !ok {
		p.logger.Warn("Could not resolve location", zap.String("location", q.Location))
		return []model.HotelOffer{}, nil
	}
	p.logger.Info("Location resolved",
		zap.String("location", q.Location),
		zap.String("strategy", strategy),
		zap.String("kind", ref.Kind),
		zap.String("id", ref.ID))

	var (
		offers []model.HotelOffer
		err    error
	)
	switch ref.Kind {
	case model.LocationHotel:
		offers, err = p.searchHotel(ctx, ref.ID, q)
	case model.LocationSlug:
		offers, err = p.searchBooking(ctx, ref.ID, q)
	default:
		offers, err = p.searchCity(ctx, ref.ID, q)
	}
	if err != nil {
		p.logger.Error("Hotel search failed, returning no results",
			zap.String("location", q.Location), zap.String("kind", ref.Kind), zap.Error(err))
		return []model.HotelOffer{}, nil
	}

	p.affiliate.Apply(offers)

	p.logger.Info("Hotel search completed", zap.String("location", q.Location), zap.Int("offers", len(offers)))
	return offers, nil
}

// resolve runs the strategies in order; the first match wins
func (p *MakcorpsProvider) resolve(ctx context.Context, location string) (model.LocationRef, string, bool) {
	location = strings.TrimSpace(location)
	for _, s := range p.strategies {
		if ref, ok := s.resolve(ctx, location); ok {
			return ref, s.name, true
		}
	}
	return model.LocationRef{}, "", false
}

func resolveNumeric(_ context.Context, location string) (model.LocationRef, bool) {
	if _, err := strconv.Atoi(location); err != nil {
		return model.LocationRef{}, false
	}
	return model.LocationRef{Kind: model.LocationCity, ID: location}, true
}

func (p *MakcorpsProvider) resolveCached(ctx context.Context, location string) (model.LocationRef, bool) {
	if p.cache == nil {
		return model.LocationRef{}, false
	}
	ref, err := p.cache.GetLocation(ctx, location)
	if err != nil {
		p.logger.Warn("Location cache read failed", zap.String("location", location), zap.Error(err))
		return model.LocationRef{}, false
	}
	if ref == nil || ref.ID == "" {
		return model.LocationRef{}, false
	}
	return *ref, true
}

// resolveMapping prefers a city match, then a hotel match, then whatever came first
func (p *MakcorpsProvider) resolveMapping(ctx context.Context, location string) (model.LocationRef, bool) {
	entries, err := p.api.Mapping(ctx, location)
	if err != nil {
		p.logger.Warn("Mapping lookup failed", zap.String("location", location), zap.Error(err))
		return model.LocationRef{}, false
	}

	ref, ok := chooseMapping(entries)
	if !ok {
		return model.LocationRef{}, false
	}
	if p.cache != nil {
		if err := p.cache.SetLocation(ctx, location, ref); err != nil {
			p.logger.Warn("Location cache write failed", zap.String("location", location), zap.Error(err))
		}
	}
	return ref, true
}

func chooseMapping(entries []MappingEntry) (model.LocationRef, bool) {
	for _, e := range entries {
		if e.IsGeo() && e.ID != "" {
			return model.LocationRef{Kind: model.LocationCity, ID: e.ID}, true
		}
	}
	for _, e := range entries {
		if e.Type == "HOTEL" && e.ID != "" {
			return model.LocationRef{Kind: model.LocationHotel, ID: e.ID}, true
		}
	}
	if len(entries) > 0 && entries[0].ID != "" {
		return model.LocationRef{Kind: model.LocationCity, ID: entries[0].ID}, true
	}
	return model.LocationRef{}, false
}

func resolveSlug(_ context.Context, location string) (model.LocationRef, bool) {
	if location == "" {
		return model.LocationRef{}, false
	}
	return model.LocationRef{Kind: model.LocationSlug, ID: location}, true
}

func (p *MakcorpsProvider) searchCity(ctx context.Context, cityID string, q model.SearchQuery) ([]model.HotelOffer, error) {
	items, err := p.api.SearchCity(ctx, cityID, q)
	if err != nil {
		return nil, err
	}
	return NormalizeList(items), nil
}

// searchHotel compares vendor prices for one hotel
func (p *MakcorpsProvider) searchHotel(ctx context.Context, hotelID string, q model.SearchQuery) ([]model.HotelOffer, error) {
	vendors, err := p.api.SearchHotel(ctx, hotelID, q)
	if err != nil {
		return nil, err
	}
	offers := NormalizeList(vendors)
	for i := range offers {
		if offers[i].HotelID == "" {
			offers[i].HotelID = hotelID
		}
	}
	return offers, nil
}

// searchBooking maps the booking endpoint's room list to one offer per room
func (p *MakcorpsProvider) searchBooking(ctx context.Context, slug string, q model.SearchQuery) ([]model.HotelOffer, error) {
	result, err := p.api.Booking(ctx, slug, q)
	if err != nil {
		return nil, err
	}

	name := cast.ToString(result.Hotel["name"])
	if name == "" {
		name = slug
	}
	offers := make([]model.HotelOffer, 0, len(result.Rooms))
	for _, item := range result.Rooms {
		room, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		offer := Normalize(map[string]interface{}{
			"name":     name,
			"hotel_id": result.Hotel["hotelid"],
			"price":    room["price"],
			"location": result.Hotel["address"],
		})
		offer.Raw = room
		offers = append(offers, offer)
	}
	return offers, nil
}
