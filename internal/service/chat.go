package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hotelix/internal/config"
	"hotelix/internal/model"
)

var (
	// ErrSessionNotFound is returned for an unknown session id
	ErrSessionNotFound = errors.New("session not found")
	// ErrEmptyMessage is returned when the user sent only whitespace
	ErrEmptyMessage = errors.New("message cannot be empty")
)

// ConversationStore persists sessions, turns and the preferences they accumulate.
// GetSession returns nil without error when the session does not exist.
type ConversationStore interface {
	CreateSession(ctx context.Context, session model.Session, welcome model.Message) error
	GetSession(ctx context.Context, sessionID string) (*model.Session, error)
	LoadPreferences(ctx context.Context, sessionID string) (model.Preferences, error)
	SaveTurn(ctx context.Context, turn model.Turn) error
	ListMessages(ctx context.Context, sessionID string) ([]model.Message, error)
	ListRecommendations(ctx context.Context, sessionID string) ([]model.Recommendation, error)
}

// IntentExtractor is satisfied by *IntentParser
type IntentExtractor interface {
	Extract(ctx context.Context, text string) model.IntentRecord
}

var (
	_ IntentExtractor = (*IntentParser)(nil)
	_ HotelProvider   = (*MakcorpsProvider)(nil)
	_ makcorpsAPI     = (*MakcorpsClient)(nil)
)

// ChatService runs one conversational turn: intent, search, ranking, reply
type ChatService struct {
	store     ConversationStore
	intent    IntentExtractor
	provider  HotelProvider
	ranker    *Ranker
	responder *Responder
	cfg       config.ChatConfig
	logger    *zap.Logger
}

// NewChatService creates a new chat service
func NewChatService(
	store ConversationStore,
	intentParser IntentExtractor,
	provider HotelProvider,
	ranker *Ranker,
	responder *Responder,
	cfg config.ChatConfig,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		store:     store,
		intent:    intentParser,
		provider:  provider,
		ranker:    ranker,
		responder: responder,
		cfg:       cfg,
		logger:    logger,
	}
}

// StartSession opens a conversation and returns its welcome message
func (s *ChatService) StartSession(ctx context.Context, email string) (*model.StartSessionResponse, error) {
	now := time.Now().UTC()
	session := model.Session{
		SessionID: uuid.NewString(),
		Email:     strings.TrimSpace(email),
		CreatedAt: now,
	}
	welcome := model.Message{
		SessionID: session.SessionID,
		Sender:    model.SenderBot,
		Text:      MsgWelcome,
		CreatedAt: now,
	}

	if err := s.store.CreateSession(ctx, session, welcome); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("New session created", zap.String("session_id", session.SessionID))
	return &model.StartSessionResponse{SessionID: session.SessionID, Message: welcome.Text}, nil
}

// SendMessage handles one user message. Preferences, messages and recommendations
// are saved together after every external call has returned, and only if ctx is still live.
func (s *ChatService) SendMessage(ctx context.Context, sessionID, text string) (*model.ChatReply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if err := s.requireSession(ctx, sessionID); err != nil {
		return nil, err
	}

	received := time.Now().UTC()
	logger := s.logger.With(zap.String("session_id", sessionID))

	stored, err := s.store.LoadPreferences(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	record := s.intent.Extract(ctx, text)
	if record.Error != "" {
		logger.Warn("Intent degraded to help", zap.String("diagnostic", record.Error))
	}

	prefs := stored.Merge(record)
	prefs.SessionID = sessionID

	var (
		ranked []model.ScoredOffer
		reply  string
	)
	if record.Intent == model.IntentSearch && prefs.ReadyForSearch() {
		if !datesOrdered(prefs) {
			reply = MsgInvalidDates
		} else if ranked, err = s.searchAndRank(ctx, prefs); err != nil {
			logger.Error("Hotel search failed", zap.Error(err))
			ranked = nil
			reply = MsgSearchFailed
		}
	}
	if reply == "" {
		reply = s.responder.Render(record.Intent, ranked)
	}

	if err := ctx.Err(); err != nil {
		logger.Warn("Request canceled, turn not saved", zap.Error(err))
		return nil, err
	}

	intent := string(record.Intent)
	turn := model.Turn{
		SessionID:   sessionID,
		UserMessage: model.Message{SessionID: sessionID, Sender: model.SenderUser, Text: text, CreatedAt: received},
		BotMessage: model.Message{
			SessionID: sessionID,
			Sender:    model.SenderBot,
			Text:      reply,
			Intent:    &intent,
			CreatedAt: time.Now().UTC(),
		},
		Preferences: prefs,
	}
	persisted := head(ranked, s.cfg.PersistTopN)
	turn.Recommendations = make([]model.Recommendation, 0, len(persisted))
	for _, offer := range persisted {
		turn.Recommendations = append(turn.Recommendations, model.NewRecommendation(sessionID, offer))
	}
	if err := s.store.SaveTurn(ctx, turn); err != nil {
		return nil, fmt.Errorf("failed to save turn: %w", err)
	}

	returned := head(ranked, s.cfg.ResponseTopN)
	payload := make([]model.OfferPayload, 0, len(returned))
	for _, offer := range returned {
		payload = append(payload, model.NewOfferPayload(offer))
	}

	logger.Info("Message processed",
		zap.String("intent", intent),
		zap.Int("offers", len(ranked)),
		zap.Int("returned", len(payload)))

	return &model.ChatReply{
		BotResponse:     reply,
		Intent:          record.Intent,
		Recommendations: payload,
	}, nil
}

// Conversation returns the session's messages in order
func (s *ChatService) Conversation(ctx context.Context, sessionID string) ([]model.Message, error) {
	if err := s.requireSession(ctx, sessionID); err != nil {
		return nil, err
	}
	messages, err := s.store.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// Recommendations returns the offers saved for the session, newest first
func (s *ChatService) Recommendations(ctx context.Context, sessionID string) ([]model.Recommendation, error) {
	if err := s.requireSession(ctx, sessionID); err != nil {
		return nil, err
	}
	recs, err := s.store.ListRecommendations(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	return recs, nil
}

func (s *ChatService) requireSession(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrSessionNotFound
	}
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return ErrSessionNotFound
	}
	return nil
}

// searchAndRank turns any failure of the search branch, panics included, into an error
func (s *ChatService) searchAndRank(ctx context.Context, prefs model.Preferences) (ranked []model.ScoredOffer, err error) {
	defer func() {
		if r := recover(); r != nil {
			ranked = nil
			err = fmt.Errorf("search panic: %v", r)
		}
	}()

	offers, err := s.provider.Search(ctx, prefs.Query(s.cfg.DefaultGuests))
	if err != nil {
		return nil, err
	}
	return s.ranker.Rank(offers, prefs), nil
}

// datesOrdered reports whether check-out falls strictly after check-in
func datesOrdered(p model.Preferences) bool {
	in, err := time.Parse(isoDate, *p.CheckIn)
	if err != nil {
		return false
	}
	out, err := time.Parse(isoDate, *p.CheckOut)
	if err != nil {
		return false
	}
	return out.After(in)
}

// head returns the first n items; a negative n means all of them
func head[T any](items []T, n int) []T {
	if n < 0 || len(items) <= n {
		return items
	}
	return items[:n]
}
