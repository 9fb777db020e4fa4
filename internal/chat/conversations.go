package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/banking/retirement-service/internal/config"
	"github.com/banking/retirement-service/internal/domain"
)

// ErrConversationNotFound indicates an unknown conversation ID
var ErrConversationNotFound = errors.New("conversation not found")

// ConversationStore persists chat transcripts between turns
type ConversationStore interface {
	Get(ctx context.Context, id string) (*domain.Conversation, error)
	Save(ctx context.Context, conv *domain.Conversation) error
}

// MemoryConversationStore keeps conversations in memory; the default when
// Redis is not configured, and the store used by tests.
type MemoryConversationStore struct {
	mu            sync.RWMutex
	conversations map[string]*domain.Conversation
}

// NewMemoryConversationStore creates an empty in-memory store
func NewMemoryConversationStore() *MemoryConversationStore {
	return &MemoryConversationStore{
		conversations: make(map[string]*domain.Conversation),
	}
}

// Get returns the conversation with the given ID
func (s *MemoryConversationStore) Get(ctx context.Context, id string) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, ErrConversationNotFound
	}
	return conv, nil
}

// Save stores the conversation
func (s *MemoryConversationStore) Save(ctx context.Context, conv *domain.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations[conv.ID] = conv
	return nil
}

// RedisConversationStore persists conversations as JSON documents with a TTL
type RedisConversationStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisConversationStore connects to Redis and verifies the connection
func NewRedisConversationStore(ctx context.Context, cfg *config.RedisConfig) (*RedisConversationStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &RedisConversationStore{
		client: client,
		ttl:    cfg.ConversationTTL,
	}, nil
}

// Close releases the redis client
func (s *RedisConversationStore) Close() error {
	return s.client.Close()
}

// Get returns the conversation with the given ID
func (s *RedisConversationStore) Get(ctx context.Context, id string) (*domain.Conversation, error) {
	raw, err := s.client.Get(ctx, conversationKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching conversation: %w", err)
	}

	var conv domain.Conversation
	if err := json.Unmarshal(raw, &conv); err != nil {
		return nil, fmt.Errorf("decoding conversation %s: %w", id, err)
	}
	return &conv, nil
}

// Save stores the conversation, refreshing its TTL
func (s *RedisConversationStore) Save(ctx context.Context, conv *domain.Conversation) error {
	raw, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("encoding conversation: %w", err)
	}
	if err := s.client.Set(ctx, conversationKey(conv.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("storing conversation: %w", err)
	}
	return nil
}

func conversationKey(id string) string {
	return "conversation:" + id
}
