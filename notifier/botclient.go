package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/leaguehq/matchops/breaker"
	"github.com/leaguehq/matchops/config"
)

const (
	panicString = "parameters null"

	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"
	headerUserAgent     = "User-Agent"

	contentTypeJSON = "application/json"
	userAgent       = "MatchOps Notifier"
)

// BotUpdate is the payload posted to the bot service when a fixture task fires
type BotUpdate struct {
	EntityID   string          `json:"entity_id"`
	UpdateType string          `json:"update_type"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// BotClient posts fixture updates to the chat bot service behind the shared circuit
// breaker so a flapping bot cannot absorb every worker in retry loops
type BotClient interface {
	PostUpdate(ctx context.Context, update *BotUpdate) error
	// Breaker exposes the protecting circuit breaker for status reporting
	Breaker() *breaker.CircuitBreaker
}

// BotClientImpl is the HTTP implementation of the bot client
type BotClientImpl struct {
	httpClient     *http.Client
	endpoint       string
	token          string
	circuitBreaker *breaker.CircuitBreaker
	retryPolicy    *breaker.RetryPolicy
}

// NewBotClient creates a bot client guarded by its own circuit breaker
func NewBotClient(botConfig config.BotServiceConfig, breakerConfig config.BreakerConfig) BotClient {
	if botConfig == nil || breakerConfig == nil {
		panic(panicString)
	}
	return &BotClientImpl{
		httpClient:     &http.Client{Timeout: botConfig.GetBotConnectionTimeout()},
		endpoint:       botConfig.GetBotUpdateEndpoint(),
		token:          botConfig.GetBotToken(),
		circuitBreaker: breaker.NewCircuitBreaker("bot-service", breakerConfig),
		retryPolicy:    breaker.NewRetryPolicy(breakerConfig),
	}
}

// Breaker exposes the protecting circuit breaker
func (client *BotClientImpl) Breaker() *breaker.CircuitBreaker {
	return client.circuitBreaker
}

// PostUpdate delivers the update with retry and breaker protection. A 4xx response is
// treated as permanent and fails fast without tripping the breaker; 5xx responses and
// transport errors count as transient failures.
func (client *BotClientImpl) PostUpdate(ctx context.Context, update *BotUpdate) error {
	body, err := json.Marshal(update)
	if err != nil {
		return breaker.Permanent(err)
	}
	return client.retryPolicy.Call(ctx, client.circuitBreaker, func() error {
		return client.postOnce(ctx, body, update)
	})
}

func (client *BotClientImpl) postOnce(ctx context.Context, body []byte, update *BotUpdate) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, client.endpoint, bytes.NewReader(body))
	if err != nil {
		return breaker.Permanent(err)
	}
	req.Header.Set(headerContentType, contentTypeJSON)
	req.Header.Set(headerUserAgent, userAgent)
	if len(client.token) > 0 {
		req.Header.Set(headerAuthorization, "Bearer "+client.token)
	}
	resp, err := client.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Str("entityId", update.EntityID).Str("updateType", update.UpdateType).
			Msg("bot service request failed")
		return err
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		log.Info().Str("entityId", update.EntityID).Str("updateType", update.UpdateType).
			Int("status", resp.StatusCode).Msg("bot update delivered")
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		log.Error().Str("entityId", update.EntityID).Str("updateType", update.UpdateType).
			Int("status", resp.StatusCode).Msg("bot service rejected update")
		return breaker.Permanent(fmt.Errorf("bot service rejected update with status %d", resp.StatusCode))
	}
	log.Error().Str("entityId", update.EntityID).Str("updateType", update.UpdateType).
		Int("status", resp.StatusCode).Msg("bot service returned server error")
	return fmt.Errorf("bot service returned status %d", resp.StatusCode)
}
