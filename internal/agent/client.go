// Package agent integrates with the external agent service: detected intents
// are forwarded as events, and the result endpoint is polled until the agent
// finishes processing.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/banking/retirement-service/internal/config"
	"github.com/banking/retirement-service/internal/domain"
	"github.com/banking/retirement-service/internal/pkg/logger"
)

var (
	// ErrAgentUnavailable indicates the forward call failed or the breaker
	// is open
	ErrAgentUnavailable = errors.New("agent service unavailable")

	// ErrPollTimeout indicates the agent did not finish within the poll
	// budget
	ErrPollTimeout = errors.New("timed out waiting for agent result")

	// ErrAgentFailed indicates the agent reported terminal failure for the
	// event
	ErrAgentFailed = errors.New("agent processing failed")
)

// Result statuses reported by the agent's result endpoint
const (
	statusCompleted = "completed"
	statusFailed    = "failed"
)

// Client forwards intents to the agent service and polls for results.
// Forward calls run through a circuit breaker so a dead agent fails fast
// instead of stalling every chat turn.
type Client struct {
	cfg     *config.AgentConfig
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *logger.Logger
}

type forwardRequest struct {
	UserID    string `json:"user_id"`
	Intent    string `json:"intent"`
	SubIntent string `json:"sub_intent"`
	Summary   string `json:"summary"`
}

type forwardResponse struct {
	EventID string `json:"event_id"`
}

type resultResponse struct {
	Status string `json:"status"`
	Result string `json:"result"`
	Error  string `json:"error,omitempty"`
}

// NewClient creates an agent client, or nil when no base URL is configured
func NewClient(cfg *config.AgentConfig, log *logger.Logger) *Client {
	if cfg.BaseURL == "" {
		return nil
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "agent-forward",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: 10 * time.Second},
		breaker: breaker,
		log:     log.Named("agent"),
	}
}

// Process forwards the intent and polls until the agent reports a result
func (c *Client) Process(ctx context.Context, userID string, intent *domain.Intent) (string, error) {
	start := time.Now()

	eventID, err := c.forward(ctx, userID, intent)
	if err != nil {
		return "", err
	}

	result, err := c.poll(ctx, eventID)
	if err != nil {
		return "", err
	}

	c.log.AgentResultReceived(eventID, time.Since(start).Milliseconds())
	return result, nil
}

// forward posts the intent to the agent's event endpoint
func (c *Client) forward(ctx context.Context, userID string, intent *domain.Intent) (string, error) {
	body, err := json.Marshal(forwardRequest{
		UserID:    userID,
		Intent:    intent.Intent,
		SubIntent: intent.SubIntent,
		Summary:   intent.Summary,
	})
	if err != nil {
		return "", err
	}

	resp, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+c.cfg.ForwardPath, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		res, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusAccepted {
			return nil, fmt.Errorf("agent returned status %d", res.StatusCode)
		}

		var fwd forwardResponse
		if err := json.NewDecoder(res.Body).Decode(&fwd); err != nil {
			return nil, err
		}
		if fwd.EventID == "" {
			return nil, errors.New("agent returned no event id")
		}
		return fwd.EventID, nil
	})
	if err != nil {
		c.log.Warn("agent forward failed", logger.ErrorField(err))
		return "", fmt.Errorf("%w: %v", ErrAgentUnavailable, err)
	}

	return resp.(string), nil
}

// poll queries the result endpoint at a fixed interval until the agent
// completes, fails, or the poll budget runs out
func (c *Client) poll(ctx context.Context, eventID string) (string, error) {
	pollCtx, cancel := context.WithTimeout(ctx, c.cfg.PollTimeout)
	defer cancel()

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-pollCtx.Done():
			if errors.Is(pollCtx.Err(), context.DeadlineExceeded) {
				return "", ErrPollTimeout
			}
			return "", pollCtx.Err()
		case <-ticker.C:
			result, done, err := c.fetchResult(pollCtx, eventID)
			if errors.Is(err, ErrAgentFailed) {
				return "", err
			}
			if err != nil {
				c.log.Debug("agent poll attempt failed", logger.ErrorField(err))
				continue
			}
			if done {
				return result, nil
			}
		}
	}
}

func (c *Client) fetchResult(ctx context.Context, eventID string) (string, bool, error) {
	url := fmt.Sprintf("%s%s/%s", c.cfg.BaseURL, c.cfg.ResultPath, eventID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false, err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return "", false, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		// Result not ready yet
		return "", false, nil
	}
	if res.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("agent result endpoint returned status %d", res.StatusCode)
	}

	var result resultResponse
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return "", false, err
	}

	switch result.Status {
	case statusCompleted:
		return result.Result, true, nil
	case statusFailed:
		return "", false, fmt.Errorf("%w: %s", ErrAgentFailed, result.Error)
	default:
		return "", false, nil
	}
}
