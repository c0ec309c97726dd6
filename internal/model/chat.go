package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Message senders
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Session is one conversation
type Session struct {
	SessionID string    `json:"session_id" db:"session_id"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Message is one persisted turn of a conversation
type Message struct {
	ID        int64     `json:"id" db:"id"`
	SessionID string    `json:"session_id" db:"session_id"`
	Sender    string    `json:"sender" db:"sender"`
	Text      string    `json:"text" db:"text"`
	Intent    *string   `json:"intent,omitempty" db:"intent"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Recommendation is a scored offer that was shown (or kept) for a session
type Recommendation struct {
	ID           int64     `json:"id" db:"id"`
	SessionID    string    `json:"session_id" db:"session_id"`
	HotelID      string    `json:"hotel_id" db:"hotel_id"`
	Name         string    `json:"name" db:"name"`
	VendorName   *string   `json:"vendor_name,omitempty" db:"vendor_name"`
	Location     *string   `json:"location,omitempty" db:"location"`
	Price        float64   `json:"price" db:"price"`
	Rating       *float64  `json:"rating,omitempty" db:"rating"`
	RatingCount  int       `json:"rating_count" db:"rating_count"`
	AffiliateURL string    `json:"affiliate_url" db:"affiliate_url"`
	Amenities    JSONArray `json:"amenities" db:"amenities"`
	Score        float64   `json:"score" db:"score"`
	SentAt       time.Time `json:"sent_at" db:"sent_at"`
}

// NewRecommendation converts a ranked offer into its stored form
func NewRecommendation(sessionID string, s ScoredOffer) Recommendation {
	r := Recommendation{
		SessionID:   sessionID,
		HotelID:     s.HotelID,
		Name:        s.DisplayName(),
		VendorName:  s.VendorName,
		Location:    s.Location,
		Rating:      s.Rating,
		RatingCount: s.RatingCount,
		Amenities:   JSONArray(s.Amenities),
		Score:       s.Score,
	}
	if s.Price != nil {
		r.Price = *s.Price
	}
	if s.AffiliateURL != nil {
		r.AffiliateURL = *s.AffiliateURL
	}
	return r
}

// StartSessionRequest opens a conversation
type StartSessionRequest struct {
	Email string `json:"email"`
}

// StartSessionResponse carries the new session id and the welcome text
type StartSessionResponse struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// SendMessageRequest is one user turn
type SendMessageRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message"`
}

// OfferPayload is the client-facing view of a recommended offer
type OfferPayload struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	VendorName   *string  `json:"vendor_name,omitempty"`
	Location     *string  `json:"location"`
	Price        float64  `json:"price"`
	Rating       *float64 `json:"rating"`
	Amenities    []string `json:"amenities"`
	AffiliateURL string   `json:"affiliate_url"`
	Score        float64  `json:"score"`
}

// NewOfferPayload flattens a ranked offer for the API
func NewOfferPayload(s ScoredOffer) OfferPayload {
	p := OfferPayload{
		ID:         s.HotelID,
		Name:       s.DisplayName(),
		VendorName: s.VendorName,
		Location:   s.Location,
		Rating:     s.Rating,
		Amenities:  s.Amenities,
		Score:      s.Score,
	}
	if p.Amenities == nil {
		p.Amenities = []string{}
	}
	if s.Price != nil {
		p.Price = *s.Price
	}
	if s.AffiliateURL != nil {
		p.AffiliateURL = *s.AffiliateURL
	}
	return p
}

// ChatReply is the outcome of one turn
type ChatReply struct {
	BotResponse     string         `json:"bot_response"`
	Intent          Intent         `json:"intent"`
	Recommendations []OfferPayload `json:"recommendations"`
}

// JSONArray represents a JSON array column
type JSONArray []string

// Value implements driver.Valuer interface
func (j JSONArray) Value() (driver.Value, error) {
	if j == nil {
		return "[]", nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface
func (j *JSONArray) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("unsupported JSONArray source %T", value)
	}
}

// Turn is everything one exchange leaves behind, saved together
type Turn struct {
	SessionID       string
	UserMessage     Message
	BotMessage      Message
	Preferences     Preferences
	Recommendations []Recommendation
}
