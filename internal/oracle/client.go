// Package oracle adapts an OpenAI-compatible chat model into a trade
// decision confirmer. Failures never propagate: every error path degrades to
// a hold decision with zero confidence.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"ai-trading-bot/internal/strategy"
)

const systemPrompt = "You are an expert crypto trading algorithm. Analyze and reply in valid JSON."

// ChatModel is the narrow slice of eino's chat model the client needs.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Config holds oracle connection settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client requests confirming decisions from a chat model.
type Client struct {
	model ChatModel
}

// NewClient builds a client backed by an OpenAI-compatible endpoint.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	temperature := float32(0.2)
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("init chat model: %w", err)
	}
	return &Client{model: cm}, nil
}

// NewClientWithModel wires an existing chat model; used by tests.
func NewClientWithModel(cm ChatModel) *Client {
	return &Client{model: cm}
}

// Decide asks the model to confirm or veto the classifier's signal. Any
// failure of the underlying call returns SafeHold and logs the cause; the
// caller never sees an error.
func (c *Client) Decide(ctx context.Context, req Request) Decision {
	msg, err := c.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(buildPrompt(req)),
	})
	if err != nil {
		log.Printf("oracle: model call failed for %s: %v", req.Symbol, err)
		return SafeHold("AI service unavailable.")
	}

	decision, err := parseDecision(msg.Content)
	if err != nil {
		log.Printf("oracle: malformed decision for %s: %v", req.Symbol, err)
		return SafeHold("AI returned malformed decision.")
	}
	log.Printf("oracle: %s -> %s (confidence %.0f, risk %s)", req.Symbol, decision.Action, decision.Confidence, decision.RiskLevel)
	return decision
}

// parseDecision extracts and validates the decision JSON. Models sometimes
// wrap the payload in a markdown fence; strip it before decoding.
func parseDecision(content string) (Decision, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
		content = strings.TrimSpace(content)
	}

	var raw struct {
		Action     string  `json:"action"`
		Confidence float64 `json:"confidence"`
		Reasoning  string  `json:"reasoning"`
		RiskLevel  string  `json:"riskLevel"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return Decision{}, fmt.Errorf("decode decision: %w", err)
	}

	action := strategy.Signal(strings.ToUpper(strings.TrimSpace(raw.Action)))
	switch action {
	case strategy.SignalLong, strategy.SignalShort, strategy.SignalHold:
	default:
		return Decision{}, fmt.Errorf("unknown action %q", raw.Action)
	}

	confidence := raw.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	risk := RiskLevel(strings.ToUpper(strings.TrimSpace(raw.RiskLevel)))
	switch risk {
	case RiskLow, RiskMedium, RiskHigh:
	default:
		risk = RiskHigh
	}

	return Decision{
		Action:     action,
		Confidence: confidence,
		Reasoning:  raw.Reasoning,
		RiskLevel:  risk,
	}, nil
}
