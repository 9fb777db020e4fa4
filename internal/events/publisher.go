// Package events publishes service events to Kafka. Publishing is
// fire-and-forget: delivery failures are logged, never surfaced to the
// request path.
package events

import (
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/banking/retirement-service/internal/config"
	"github.com/banking/retirement-service/internal/domain"
	"github.com/banking/retirement-service/internal/pkg/logger"
)

// Event types emitted by the service
const (
	EventRecommendationGenerated = "recommendation.generated"
	EventChatMessageProcessed    = "chat.message.processed"
	EventProfileUpdated          = "profile.updated"
)

// Envelope wraps every published event
type Envelope struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// Publisher sends events through a sarama async producer. A nil Publisher
// is valid and drops everything, which is how the disabled configuration is
// represented.
type Publisher struct {
	producer sarama.AsyncProducer
	cfg      *config.KafkaConfig
	log      *logger.Logger
}

// NewPublisher creates a Kafka publisher, or nil when disabled in config
func NewPublisher(cfg *config.KafkaConfig, log *logger.Logger) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.Return.Successes = false
	saramaCfg.Producer.Return.Errors = true
	saramaCfg.Producer.RequiredAcks = sarama.WaitForLocal

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, err
	}

	p := &Publisher{
		producer: producer,
		cfg:      cfg,
		log:      log.Named("events"),
	}

	go p.drainErrors()
	return p, nil
}

// Close shuts down the producer
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.producer.Close()
}

// PublishRecommendation emits a recommendation.generated event
func (p *Publisher) PublishRecommendation(userID string, threshold, recommended int) {
	if p == nil {
		return
	}
	p.publish(p.cfg.RecommendationTopic, userID, EventRecommendationGenerated, map[string]any{
		"user_id":     userID,
		"threshold":   threshold,
		"recommended": recommended,
	})
}

// PublishChatMessage emits a chat.message.processed event
func (p *Publisher) PublishChatMessage(conversationID, userID, provider string, intent *domain.Intent) {
	if p == nil {
		return
	}
	payload := map[string]any{
		"conversation_id": conversationID,
		"user_id":         userID,
		"provider":        provider,
	}
	if intent != nil {
		payload["intent"] = intent
	}
	p.publish(p.cfg.ChatTopic, userID, EventChatMessageProcessed, payload)
}

// PublishProfileUpdated emits a profile.updated audit event
func (p *Publisher) PublishProfileUpdated(userID string, sections []string) {
	if p == nil {
		return
	}
	p.publish(p.cfg.AuditTopic, userID, EventProfileUpdated, map[string]any{
		"user_id":  userID,
		"sections": sections,
	})
}

func (p *Publisher) publish(topic, key, eventType string, payload any) {
	envelope := Envelope{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}

	raw, err := json.Marshal(envelope)
	if err != nil {
		p.log.Warn("failed to encode event", logger.ErrorField(err),
			logger.StringField("event_type", eventType))
		return
	}

	p.producer.Input() <- &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(raw),
	}
}

func (p *Publisher) drainErrors() {
	for err := range p.producer.Errors() {
		p.log.Warn("event delivery failed", logger.ErrorField(err.Err),
			logger.StringField("topic", err.Msg.Topic))
	}
}
