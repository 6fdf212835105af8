package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/iammorganparry/companion/internal/models"
)

// OpenAIConfig configures OpenAIClient.
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	EmbeddingModel string
	Temperature    float64
	MaxTokens      int
	Backoff        Backoff
}

// OpenAIClient talks to the OpenAI Responses and Embeddings APIs.
type OpenAIClient struct {
	client   *openai.Client
	model    string
	embModel string
	temp     float64
	maxOut   int
	backoff  Backoff
}

func NewOpenAIClient(cfg OpenAIConfig, opts ...option.RequestOption) *OpenAIClient {
	// Retries are owned by callWithRetry.
	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	reqOpts = append(reqOpts, opts...)
	client := openai.NewClient(reqOpts...)

	backoff := cfg.Backoff
	if backoff.RateLimit == nil && backoff.ServerError == nil {
		backoff = DefaultBackoff
	}
	return &OpenAIClient{
		client:   &client,
		model:    cfg.Model,
		embModel: cfg.EmbeddingModel,
		temp:     cfg.Temperature,
		maxOut:   cfg.MaxTokens,
		backoff:  backoff,
	}
}

// Complete sends the messages as one Responses request. System messages
// become the request instructions.
func (c *OpenAIClient) Complete(ctx context.Context, messages []models.ChatMessage, opts Options) (string, error) {
	model := c.model
	if opts.Model != "" {
		model = opts.Model
	}
	temp := c.temp
	if opts.Temperature != nil {
		temp = *opts.Temperature
	}
	maxOut := c.maxOut
	if opts.MaxTokens > 0 {
		maxOut = opts.MaxTokens
	}

	var instructions []string
	var input []responses.ResponseInputItemUnionParam
	for _, m := range messages {
		switch m.Role {
		case models.RoleSystem:
			instructions = append(instructions, m.Content)
		case models.RoleAssistant:
			input = append(input, responses.ResponseInputItemParamOfMessage(m.Content, responses.EasyInputMessageRoleAssistant))
		default:
			input = append(input, responses.ResponseInputItemParamOfMessage(m.Content, responses.EasyInputMessageRoleUser))
		}
	}
	if len(input) == 0 {
		return "", fmt.Errorf("completion needs at least one user or assistant message")
	}

	params := responses.ResponseNewParams{
		Model:           model,
		MaxOutputTokens: openai.Int(int64(maxOut)),
		Temperature:     openai.Float(temp),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: input,
		},
	}
	if len(instructions) > 0 {
		params.Instructions = openai.String(strings.Join(instructions, "\n\n"))
	}

	backoff := c.backoff
	if opts.Backoff != nil {
		backoff = *opts.Backoff
	}
	resp, err := callWithRetry(ctx, backoff, func() (*responses.Response, error) {
		return c.client.Responses.New(ctx, params)
	})
	if err != nil {
		return "", fmt.Errorf("openai responses: %w", err)
	}
	return strings.TrimSpace(resp.OutputText()), nil
}

// Embed returns the embedding of text as float32.
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := callWithRetry(ctx, c.backoff, func() (*openai.CreateEmbeddingResponse, error) {
		return c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
			Model: openai.EmbeddingModel(c.embModel),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai returned no embeddings")
	}

	src := resp.Data[0].Embedding
	vec := make([]float32, len(src))
	for i, v := range src {
		vec[i] = float32(v)
	}
	return vec, nil
}

// HealthCheck lists models, which needs only a valid key.
func (c *OpenAIClient) HealthCheck(ctx context.Context) error {
	if _, err := c.client.Models.List(ctx); err != nil {
		return fmt.Errorf("openai health check: %w", err)
	}
	return nil
}
