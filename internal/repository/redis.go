package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"hotelix/internal/config"
	"hotelix/internal/model"
	"hotelix/internal/service"
)

const (
	preferencesPrefix = "hotelix:prefs:"
	locationPrefix    = "hotelix:location:"
)

// NewRedisClient connects to redis and checks the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// RedisCache keeps session preferences and resolved locations
type RedisCache struct {
	client        *redis.Client
	preferenceTTL time.Duration
	locationTTL   time.Duration
}

// NewRedisCache creates a cache with the configured TTLs
func NewRedisCache(client *redis.Client, cfg config.RedisConfig) *RedisCache {
	return &RedisCache{
		client:        client,
		preferenceTTL: time.Duration(cfg.PreferenceTTLMin) * time.Minute,
		locationTTL:   time.Duration(cfg.LocationTTLMin) * time.Minute,
	}
}

var _ service.LocationCache = (*RedisCache)(nil)

func preferencesKey(sessionID string) string {
	return preferencesPrefix + sessionID
}

// locationKey folds case and spacing so "Paris" and " paris " share an entry
func locationKey(name string) string {
	return locationPrefix + strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// GetPreferences returns the cached preferences, or nil on a miss
func (c *RedisCache) GetPreferences(ctx context.Context, sessionID string) (*model.Preferences, error) {
	var prefs model.Preferences
	ok, err := c.getJSON(ctx, preferencesKey(sessionID), &prefs)
	if err != nil || !ok {
		return nil, err
	}
	return &prefs, nil
}

// SetPreferences caches preferences for the session
func (c *RedisCache) SetPreferences(ctx context.Context, prefs model.Preferences) error {
	return c.setJSON(ctx, preferencesKey(prefs.SessionID), prefs, c.preferenceTTL)
}

// DeletePreferences drops the cached preferences for the session
func (c *RedisCache) DeletePreferences(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, preferencesKey(sessionID)).Err()
}

// GetLocation returns the cached location reference, or nil on a miss
func (c *RedisCache) GetLocation(ctx context.Context, name string) (*model.LocationRef, error) {
	var ref model.LocationRef
	ok, err := c.getJSON(ctx, locationKey(name), &ref)
	if err != nil || !ok {
		return nil, err
	}
	return &ref, nil
}

// SetLocation caches a resolved location reference
func (c *RedisCache) SetLocation(ctx context.Context, name string, ref model.LocationRef) error {
	return c.setJSON(ctx, locationKey(name), ref, c.locationTTL)
}

func (c *RedisCache) getJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, b, ttl).Err()
}

// preferenceCache is the part of RedisCache the store decorator needs
type preferenceCache interface {
	GetPreferences(ctx context.Context, sessionID string) (*model.Preferences, error)
	SetPreferences(ctx context.Context, prefs model.Preferences) error
	DeletePreferences(ctx context.Context, sessionID string) error
}

// CachedConversationStore serves preferences from the cache and keeps it in step
// with the underlying store. Cache errors are logged, never returned.
type CachedConversationStore struct {
	service.ConversationStore
	cache  preferenceCache
	logger *zap.Logger
}

// NewCachedConversationStore wraps store with a preference cache
func NewCachedConversationStore(store service.ConversationStore, cache preferenceCache, logger *zap.Logger) *CachedConversationStore {
	return &CachedConversationStore{ConversationStore: store, cache: cache, logger: logger}
}

// LoadPreferences reads through the cache
func (s *CachedConversationStore) LoadPreferences(ctx context.Context, sessionID string) (model.Preferences, error) {
	cached, err := s.cache.GetPreferences(ctx, sessionID)
	if err != nil {
		s.logger.Warn("Preference cache read failed", zap.String("session_id", sessionID), zap.Error(err))
	}
	if cached != nil {
		return *cached, nil
	}

	prefs, err := s.ConversationStore.LoadPreferences(ctx, sessionID)
	if err != nil {
		return prefs, err
	}
	if err := s.cache.SetPreferences(ctx, prefs); err != nil {
		s.logger.Warn("Preference cache write failed", zap.String("session_id", sessionID), zap.Error(err))
	}
	return prefs, nil
}

// SaveTurn saves through to the store, then refreshes the cached preferences
func (s *CachedConversationStore) SaveTurn(ctx context.Context, turn model.Turn) error {
	if err := s.ConversationStore.SaveTurn(ctx, turn); err != nil {
		if delErr := s.cache.DeletePreferences(ctx, turn.SessionID); delErr != nil {
			s.logger.Warn("Preference cache invalidation failed", zap.String("session_id", turn.SessionID), zap.Error(delErr))
		}
		return err
	}

	prefs := turn.Preferences
	prefs.SessionID = turn.SessionID
	if err := s.cache.SetPreferences(ctx, prefs); err != nil {
		s.logger.Warn("Preference cache write failed", zap.String("session_id", turn.SessionID), zap.Error(err))
	}
	return nil
}
