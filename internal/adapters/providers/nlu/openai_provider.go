package nlu

import (
	"context"
	"encoding/json"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/velora/vehicle-discovery/internal/domain/providers"
	"github.com/velora/vehicle-discovery/internal/evaluation"
	"github.com/velora/vehicle-discovery/pkg/config"
	apperrors "github.com/velora/vehicle-discovery/pkg/errors"
)

const extractionPrompt = `You extract structured search entities from vehicle shopping queries.
Respond with JSON only: {"intent": one of ["browse","filter","refine","lookup","unknown"],
"confidence": 0..1, "entities": [{"type": one of ["make","model","price_max","price_min",
"year_min","mileage_max","fuel_type","body_type","transmission","color","quality"],
"value": string}]}. Numeric values are plain digits without separators or currency signs.`

// OpenAIProvider extracts entities through a hosted chat model. Used when an
// API key is configured; the rule provider remains the fallback.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

var _ providers.NLUProvider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a provider for the configured model.
func NewOpenAIProvider(cfg *config.OpenAIConfig) (*OpenAIProvider, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, apperrors.NewValidationError("openai api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIProvider{
		client: openai.NewClient(cfg.APIKey),
		model:  model,
	}, nil
}

type extractionResponse struct {
	Intent     string             `json:"intent"`
	Confidence float64            `json:"confidence"`
	Entities   []providers.Entity `json:"entities"`
}

// Understand sends the query to the chat model and parses the JSON reply.
func (p *OpenAIProvider) Understand(ctx context.Context, text string) (*providers.NLUResult, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractionPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return nil, apperrors.NewNLUError("chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return nil, apperrors.NewNLUError("empty completion", nil)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	var parsed extractionResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, apperrors.NewNLUError("malformed extraction payload", err)
	}

	intent := evaluation.Intent(parsed.Intent)
	if !intent.IsValid() {
		intent = evaluation.IntentUnknown
	}

	return &providers.NLUResult{
		Intent:     intent,
		Confidence: parsed.Confidence,
		Entities:   parsed.Entities,
	}, nil
}
