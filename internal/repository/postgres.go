package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"hotelix/internal/model"
)

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Ping checks the database connection
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		email TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS preferences (
		session_id TEXT PRIMARY KEY REFERENCES sessions(session_id) ON DELETE CASCADE,
		location TEXT,
		check_in TEXT,
		check_out TEXT,
		guests INT,
		budget_max DOUBLE PRECISION,
		preferences JSONB NOT NULL DEFAULT '[]'::jsonb,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS messages (
		id BIGSERIAL PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions(session_id) ON DELETE CASCADE,
		sender TEXT NOT NULL,
		text TEXT NOT NULL,
		intent TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_messages_session_created ON messages(session_id, created_at, id);`,
	`CREATE TABLE IF NOT EXISTS recommendations (
		id BIGSERIAL PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions(session_id) ON DELETE CASCADE,
		hotel_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		vendor_name TEXT,
		location TEXT,
		price DOUBLE PRECISION NOT NULL DEFAULT 0,
		rating DOUBLE PRECISION,
		rating_count INT NOT NULL DEFAULT 0,
		affiliate_url TEXT NOT NULL DEFAULT '',
		amenities JSONB NOT NULL DEFAULT '[]'::jsonb,
		score DOUBLE PRECISION NOT NULL,
		sent_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_recommendations_session_sent ON recommendations(session_id, sent_at DESC);`,
}

// Migrate creates the tables if they do not exist yet
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	for _, q := range schema {
		if _, err := r.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}

const (
	insertSessionQuery = `
		INSERT INTO sessions (session_id, email, created_at)
		VALUES (:session_id, :email, :created_at)`

	insertMessageQuery = `
		INSERT INTO messages (session_id, sender, text, intent, created_at)
		VALUES (:session_id, :sender, :text, :intent, :created_at)`

	upsertPreferencesQuery = `
		INSERT INTO preferences (session_id, location, check_in, check_out, guests, budget_max, preferences, updated_at)
		VALUES (:session_id, :location, :check_in, :check_out, :guests, :budget_max, :preferences, NOW())
		ON CONFLICT (session_id) DO UPDATE SET
			location = EXCLUDED.location,
			check_in = EXCLUDED.check_in,
			check_out = EXCLUDED.check_out,
			guests = EXCLUDED.guests,
			budget_max = EXCLUDED.budget_max,
			preferences = EXCLUDED.preferences,
			updated_at = NOW()`

	insertRecommendationQuery = `
		INSERT INTO recommendations (
			session_id, hotel_id, name, vendor_name, location, price, rating,
			rating_count, affiliate_url, amenities, score, sent_at
		) VALUES (
			:session_id, :hotel_id, :name, :vendor_name, :location, :price, :rating,
			:rating_count, :affiliate_url, :amenities, :score, NOW()
		)`
)

// CreateSession stores a session with empty preferences and its welcome message
func (r *PostgresRepository) CreateSession(ctx context.Context, session model.Session, welcome model.Message) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, insertSessionQuery, session); err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}
		empty := model.Preferences{SessionID: session.SessionID, Preferences: model.JSONArray{}}
		if _, err := tx.NamedExecContext(ctx, upsertPreferencesQuery, empty); err != nil {
			return fmt.Errorf("failed to insert preferences: %w", err)
		}
		if _, err := tx.NamedExecContext(ctx, insertMessageQuery, welcome); err != nil {
			return fmt.Errorf("failed to insert welcome message: %w", err)
		}
		return nil
	})
}

// GetSession retrieves a session, or nil if it does not exist
func (r *PostgresRepository) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	var session model.Session
	query := `SELECT session_id, email, created_at FROM sessions WHERE session_id = $1`
	err := r.db.GetContext(ctx, &session, query, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// LoadPreferences returns the stored preferences, empty if none were saved yet
func (r *PostgresRepository) LoadPreferences(ctx context.Context, sessionID string) (model.Preferences, error) {
	var prefs model.Preferences
	query := `
		SELECT session_id, location, check_in, check_out, guests, budget_max, preferences, updated_at
		FROM preferences
		WHERE session_id = $1`
	err := r.db.GetContext(ctx, &prefs, query, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Preferences{SessionID: sessionID}, nil
		}
		return model.Preferences{}, fmt.Errorf("failed to load preferences: %w", err)
	}
	return prefs, nil
}

// SaveTurn writes preferences, both messages and the recommendations in one transaction
func (r *PostgresRepository) SaveTurn(ctx context.Context, turn model.Turn) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		prefs := turn.Preferences
		prefs.SessionID = turn.SessionID
		if _, err := tx.NamedExecContext(ctx, upsertPreferencesQuery, prefs); err != nil {
			return fmt.Errorf("failed to save preferences: %w", err)
		}

		for _, msg := range []model.Message{turn.UserMessage, turn.BotMessage} {
			if _, err := tx.NamedExecContext(ctx, insertMessageQuery, msg); err != nil {
				return fmt.Errorf("failed to save message: %w", err)
			}
		}

		if len(turn.Recommendations) > 0 {
			if _, err := tx.NamedExecContext(ctx, insertRecommendationQuery, turn.Recommendations); err != nil {
				return fmt.Errorf("failed to save recommendations: %w", err)
			}
		}
		return nil
	})
}

// ListMessages returns the conversation in the order it happened
func (r *PostgresRepository) ListMessages(ctx context.Context, sessionID string) ([]model.Message, error) {
	messages := []model.Message{}
	query := `
		SELECT id, session_id, sender, text, intent, created_at
		FROM messages
		WHERE session_id = $1
		ORDER BY created_at, id`
	if err := r.db.SelectContext(ctx, &messages, query, sessionID); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// ListRecommendations returns saved recommendations, newest first
func (r *PostgresRepository) ListRecommendations(ctx context.Context, sessionID string) ([]model.Recommendation, error) {
	recs := []model.Recommendation{}
	query := `
		SELECT id, session_id, hotel_id, name, vendor_name, location, price, rating,
			rating_count, affiliate_url, amenities, score, sent_at
		FROM recommendations
		WHERE session_id = $1
		ORDER BY sent_at DESC, score DESC, id`
	if err := r.db.SelectContext(ctx, &recs, query, sessionID); err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	return recs, nil
}

func (r *PostgresRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
