package llm

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider against any OpenAI-compatible chat
// completions endpoint (OpenAI, OpenRouter, DeepSeek, ...).
type OpenAIProvider struct {
	client *openai.Client
	name   string
	model  string
}

// NewOpenAIProvider creates a provider for one API key. name identifies the
// credential in logs and responses; baseURL is optional and defaults to the
// OpenAI endpoint.
func NewOpenAIProvider(name, apiKey, baseURL, model string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		name:   name,
		model:  model,
	}
}

func (p *OpenAIProvider) Name() string {
	return p.name
}

func (p *OpenAIProvider) Complete(ctx context.Context, req Request) Result {
	model := req.Model
	if model == "" {
		model = p.model
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	var messages []openai.ChatCompletionMessage
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	apiReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: float32(req.Temperature),
	}

	if req.JSONMode {
		apiReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return classifyError(err)
	}

	var content string
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}
	if content == "" {
		return Transient(errors.New("provider returned an empty completion"))
	}

	return Success(content, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
}

// classifyError maps a go-openai error to a Result state.
func classifyError(err error) Result {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Timeout(err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode, reqErr.Error(), err)
	}

	// DNS failures, connection resets, TLS errors and the like.
	return Transient(err)
}

func classifyStatus(status int, message string, err error) Result {
	switch {
	case status == 401 || status == 403:
		return AuthFailure(err)
	case status == 429:
		return RateLimited(parseRetryAfter(message), err)
	default:
		return Transient(err)
	}
}

// retryAfterPattern matches backoff hints embedded in rate-limit error
// messages, e.g. "Please try again in 20s" or "try again in 1.5s".
var retryAfterPattern = regexp.MustCompile(`try again in (\d+(?:\.\d+)?)(ms|s|m)`)

// parseRetryAfter extracts a backoff hint from a rate-limit message. The
// OpenAI-compatible APIs put the hint in the message body rather than a
// header the client library exposes. Returns 0 when no hint is present.
func parseRetryAfter(message string) time.Duration {
	m := retryAfterPattern.FindStringSubmatch(message)
	if m == nil {
		return 0
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	switch m[2] {
	case "ms":
		return time.Duration(value * float64(time.Millisecond))
	case "m":
		return time.Duration(value * float64(time.Minute))
	default:
		return time.Duration(value * float64(time.Second))
	}
}
