// Package chat orchestrates one assistant turn: transcript persistence,
// model dispatch, intent extraction and the optional agent hand-off.
package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/banking/retirement-service/internal/config"
	"github.com/banking/retirement-service/internal/domain"
	"github.com/banking/retirement-service/internal/events"
	"github.com/banking/retirement-service/internal/llm"
	"github.com/banking/retirement-service/internal/pkg/logger"
)

// ErrNotAuthorized indicates a user reading a conversation they do not own
var ErrNotAuthorized = errors.New("not authorized to view this conversation")

// fallbackReply is returned to the user when the model call fails; the turn
// still completes and the transcript records the apology.
const fallbackReply = "I'm sorry, I encountered an error processing your request. Please try again later."

// Generator produces an assistant reply for one conversation turn
type Generator interface {
	Generate(ctx context.Context, cfg domain.LLMConfig, history []domain.Message, message string) (string, error)
}

// IntentAgent forwards a detected intent to the external agent service and
// waits for its result
type IntentAgent interface {
	Process(ctx context.Context, userID string, intent *domain.Intent) (string, error)
}

// Result is the outcome of one handled chat turn
type Result struct {
	ConversationID     string
	MessageID          string
	Response           string
	SuggestedQuestions []domain.SuggestedQuestion
	Intent             *domain.Intent
	AgentResult        string
}

// Service handles chat turns against the configured model provider
type Service struct {
	generator Generator
	store     ConversationStore
	agent     IntentAgent
	events    *events.Publisher
	log       *logger.Logger

	mu        sync.RWMutex
	llmConfig domain.LLMConfig
}

// NewService creates a chat service. agent may be nil when the external
// agent integration is disabled.
func NewService(generator Generator, store ConversationStore, agent IntentAgent, publisher *events.Publisher, cfg *config.LLMConfig, log *logger.Logger) *Service {
	return &Service{
		generator: generator,
		store:     store,
		agent:     agent,
		events:    publisher,
		log:       log.Named("chat"),
		llmConfig: domain.LLMConfig{
			Provider:    cfg.Provider,
			ModelName:   cfg.ModelName,
			Temperature: cfg.Temperature,
		},
	}
}

// LLMConfig returns the current runtime model configuration
func (s *Service) LLMConfig() domain.LLMConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.llmConfig
}

// UpdateLLMConfig applies the non-nil fields of the patch and returns the
// resulting configuration
func (s *Service) UpdateLLMConfig(provider, modelName *string, temperature *float64) domain.LLMConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	if provider != nil {
		s.llmConfig.Provider = *provider
	}
	if modelName != nil {
		s.llmConfig.ModelName = *modelName
	}
	if temperature != nil {
		s.llmConfig.Temperature = *temperature
	}
	return s.llmConfig
}

// HandleMessage runs one chat turn for the user. An unknown or empty
// conversation ID starts a fresh conversation.
func (s *Service) HandleMessage(ctx context.Context, user *domain.CustomerProfile, conversationID, message string) (*Result, error) {
	start := time.Now()

	conv, err := s.getOrCreate(ctx, user.ID, conversationID)
	if err != nil {
		return nil, err
	}

	history := make([]domain.Message, len(conv.Messages))
	copy(history, conv.Messages)

	conv.Append(domain.NewMessage(domain.MessageTypeUser, message))

	runtime := s.LLMConfig()
	reply, err := s.generator.Generate(ctx, runtime, history, message)
	if err != nil {
		s.log.Warn("model call failed", logger.ErrorField(err),
			logger.StringField("provider", runtime.Provider))
		reply = fallbackReply
	}

	botMsg := domain.NewMessage(domain.MessageTypeBot, reply)
	conv.Append(botMsg)

	if err := s.store.Save(ctx, conv); err != nil {
		return nil, err
	}

	result := &Result{
		ConversationID:     conv.ID,
		MessageID:          botMsg.ID,
		Response:           reply,
		SuggestedQuestions: SuggestedQuestions(),
	}

	if intent, ok := llm.ExtractIntent(reply); ok {
		result.Intent = intent
		s.log.IntentDetected(conv.ID, intent.Intent, intent.SubIntent)

		if s.agent != nil {
			agentResult, err := s.agent.Process(ctx, user.ID, intent)
			if err != nil {
				s.log.Warn("agent processing failed", logger.ErrorField(err))
			} else {
				result.AgentResult = agentResult
			}
		}
	}

	s.events.PublishChatMessage(conv.ID, user.ID, runtime.Provider, result.Intent)
	s.log.ChatCompleted(conv.ID, runtime.Provider, time.Since(start).Milliseconds())

	return result, nil
}

// History returns a conversation transcript, enforcing ownership
func (s *Service) History(ctx context.Context, userID, conversationID string) (*domain.Conversation, error) {
	conv, err := s.store.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.UserID != userID {
		return nil, ErrNotAuthorized
	}
	return conv, nil
}

func (s *Service) getOrCreate(ctx context.Context, userID, conversationID string) (*domain.Conversation, error) {
	if conversationID != "" {
		conv, err := s.store.Get(ctx, conversationID)
		if err == nil && conv.UserID == userID {
			return conv, nil
		}
		if err != nil && !errors.Is(err, ErrConversationNotFound) {
			return nil, err
		}
	}
	return domain.NewConversation(userID), nil
}
