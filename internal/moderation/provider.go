package moderation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// Provider produces per-category scores for a piece of text. The raw
// response is returned alongside the flattened scores so pipelines can
// attach it to the submission record for auditing.
type Provider interface {
	Moderate(ctx context.Context, text string) (map[string]float64, json.RawMessage, error)
}

type openAIProvider struct {
	client *openai.Client
	model  string
	logger zerolog.Logger
}

// NewOpenAIProvider builds a Provider backed by the OpenAI moderation API.
func NewOpenAIProvider(apiKey, model string, logger zerolog.Logger) Provider {
	if model == "" {
		model = openai.ModerationTextLatest
	}
	return &openAIProvider{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger.With().Str("component", "moderation_provider").Logger(),
	}
}

func (p *openAIProvider) Moderate(ctx context.Context, text string) (map[string]float64, json.RawMessage, error) {
	response, err := p.client.Moderations(ctx, openai.ModerationRequest{
		Input: text,
		Model: p.model,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("moderation request: %w", err)
	}
	if len(response.Results) == 0 {
		return nil, nil, errors.New("moderation response contained no results")
	}

	raw, err := json.Marshal(response)
	if err != nil {
		return nil, nil, fmt.Errorf("encode moderation response: %w", err)
	}

	scores := response.Results[0].CategoryScores
	flattened := map[string]float64{
		CategoryHarassment:            float64(scores.Harassment),
		CategoryHarassmentThreatening: float64(scores.HarassmentThreatening),
		CategoryHate:                  float64(scores.Hate),
		CategoryHateThreatening:       float64(scores.HateThreatening),
		CategorySelfHarm:              float64(scores.SelfHarm),
		CategorySelfHarmIntent:        float64(scores.SelfHarmIntent),
		CategorySelfHarmInstructions:  float64(scores.SelfHarmInstructions),
		CategorySexual:                float64(scores.Sexual),
		CategorySexualMinors:          float64(scores.SexualMinors),
		CategoryViolence:              float64(scores.Violence),
		CategoryViolenceGraphic:       float64(scores.ViolenceGraphic),
	}

	p.logger.Debug().Int("categories", len(flattened)).Msg("moderation scores received")

	return flattened, raw, nil
}
