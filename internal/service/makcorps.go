package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"hotelix/internal/config"
	"hotelix/internal/model"
)

// ErrMalformedResponse is returned when a Makcorps payload does not have the expected shape
var ErrMalformedResponse = errors.New("malformed makcorps response")

// MappingEntry is one candidate returned by the name lookup
type MappingEntry struct {
	Type     string // GEO or HOTEL
	DataType string // LOCATION on some GEO entries
	ID       string
	Name     string
}

// IsGeo reports whether the entry names a city or region
func (e MappingEntry) IsGeo() bool {
	return e.Type == "GEO" || e.DataType == "LOCATION"
}

// MakcorpsClient is a thin client for the Makcorps hotel price API
type MakcorpsClient struct {
	cfg        config.MakcorpsConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewMakcorpsClient creates a client. Requests are throttled to cfg.RatePerSecond.
func NewMakcorpsClient(cfg config.MakcorpsConfig, logger *zap.Logger) *MakcorpsClient {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	return &MakcorpsClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// Mapping resolves a city or hotel name to Makcorps identifiers
func (c *MakcorpsClient) Mapping(ctx context.Context, name string) ([]MappingEntry, error) {
	data, err := c.get(ctx, "/mapping", url.Values{"name": {name}})
	if err != nil {
		return nil, err
	}
	items, ok := data.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: mapping is %T", ErrMalformedResponse, data)
	}

	entries := make([]MappingEntry, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		entry := MappingEntry{
			Type:     cast.ToString(m["type"]),
			DataType: cast.ToString(m["data_type"]),
			Name:     cast.ToString(m["name"]),
		}
		if id, ok := firstPresent(m, []string{"value", "document_id"}); ok {
			entry.ID = cast.ToString(id)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// SearchCity returns the raw hotel list for a city id
func (c *MakcorpsClient) SearchCity(ctx context.Context, cityID string, q model.SearchQuery) ([]interface{}, error) {
	params := url.Values{
		"cityid":     {cityID},
		"checkin":    {q.CheckIn},
		"checkout":   {q.CheckOut},
		"adults":     {strconv.Itoa(q.Guests)},
		"rooms":      {strconv.Itoa(c.cfg.Rooms)},
		"cur":        {c.cfg.Currency},
		"pagination": {"0"},
	}
	data, err := c.get(ctx, "/city", params)
	if err != nil {
		return nil, err
	}
	items, ok := data.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: city search is %T", ErrMalformedResponse, data)
	}
	return items, nil
}

// SearchHotel returns the vendor price comparison for a single hotel
func (c *MakcorpsClient) SearchHotel(ctx context.Context, hotelID string, q model.SearchQuery) ([]interface{}, error) {
	params := url.Values{
		"hotelid":  {hotelID},
		"checkin":  {q.CheckIn},
		"checkout": {q.CheckOut},
		"adults":   {strconv.Itoa(q.Guests)},
		"rooms":    {strconv.Itoa(c.cfg.Rooms)},
		"currency": {c.cfg.Currency},
	}
	data, err := c.get(ctx, "/hotel", params)
	if err != nil {
		return nil, err
	}

	body, ok := data.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: hotel search is %T", ErrMalformedResponse, data)
	}
	comparison, _ := body["comparison"].([]interface{})
	if len(comparison) == 0 {
		return []interface{}{}, nil
	}
	vendors, ok := comparison[0].([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: comparison[0] is %T", ErrMalformedResponse, comparison[0])
	}
	return vendors, nil
}

// BookingResult is the room list and hotel metadata returned by the booking endpoint
type BookingResult struct {
	Rooms []interface{}
	Hotel map[string]interface{}
}

// Booking looks a hotel up directly by slug-style id
func (c *MakcorpsClient) Booking(ctx context.Context, hotelID string, q model.SearchQuery) (*BookingResult, error) {
	params := url.Values{
		"country":  {""},
		"hotelid":  {hotelID},
		"checkin":  {q.CheckIn},
		"checkout": {q.CheckOut},
		"currency": {c.cfg.Currency},
		"kids":     {"0"},
		"adults":   {strconv.Itoa(q.Guests)},
		"rooms":    {strconv.Itoa(c.cfg.Rooms)},
	}
	data, err := c.get(ctx, "/booking", params)
	if err != nil {
		return nil, err
	}

	items, ok := data.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: booking is %T", ErrMalformedResponse, data)
	}
	result := &BookingResult{Rooms: []interface{}{}, Hotel: map[string]interface{}{}}
	if len(items) > 0 {
		if rooms, ok := items[0].([]interface{}); ok {
			result.Rooms = rooms
		}
	}
	if len(items) > 1 {
		if meta, ok := items[1].(map[string]interface{}); ok {
			result.Hotel = meta
		}
	}
	return result, nil
}

// get performs an authenticated GET and decodes the JSON body
func (c *MakcorpsClient) get(ctx context.Context, path string, params url.Values) (interface{}, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params.Set("api_key", c.cfg.APIKey)
	endpoint := fmt.Sprintf("%s/%s?%s", c.cfg.BaseURL, strings.TrimLeft(path, "/"), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("makcorps %s request failed: %w", path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Makcorps request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("makcorps %s returned status %d: %s", path, resp.StatusCode, string(body))
	}

	var data interface{}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, path, err)
	}
	return data, nil
}
