package costreview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"os"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are a financial reviewer for very small businesses. You evaluate fixed cost structures conservatively and never invent numbers the input does not support. Respond with strict JSON only."

// Per-stage reasoning timeouts.
const (
	ValidateTimeout = 10 * time.Second
	AnalyzeTimeout  = 15 * time.Second
	FinalizeTimeout = 12 * time.Second
)

const defaultMaxAttempts = 2

// LLMCaller is the minimal surface the gateway needs from a text-generation
// backend.
type LLMCaller interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

type AnthropicCaller struct {
	messages AnthropicMessager
	model    anthropic.Model
}

type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

func NewAnthropicCallerFromEnv(model string) (*AnthropicCaller, error) {
	apiKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not configured")
	}
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	m := anthropic.Model(model)
	if model == "" {
		m = anthropic.ModelClaudeSonnet4_20250514
	}
	return &AnthropicCaller{messages: &c.Messages, model: m}, nil
}

func (a *AnthropicCaller) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       a.model,
		MaxTokens:   4096,
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}

// OpenAICaller targets OpenAI-compatible chat completion endpoints.
type OpenAICaller struct {
	client *openai.Client
	model  string
}

func NewOpenAICallerFromEnv(model string) (*OpenAICaller, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY not configured")
	}
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAICaller{client: openai.NewClient(apiKey), model: model}, nil
}

func (o *OpenAICaller) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.model,
		MaxTokens: 4096,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Gateway bounds every reasoning call with a stage timeout and retries
// timeouts (only timeouts) with jittered backoff.
type Gateway struct {
	caller      LLMCaller
	maxAttempts int
}

func NewGateway(caller LLMCaller, maxAttempts int) *Gateway {
	if maxAttempts < 1 {
		maxAttempts = defaultMaxAttempts
	}
	return &Gateway{caller: caller, maxAttempts: maxAttempts}
}

// Invoke runs one reasoning call for a stage and reports how many attempts
// it took. The returned error is a *TimeoutError when the stage timeout
// elapsed on every attempt, or the backend error otherwise.
func (g *Gateway) Invoke(ctx context.Context, stage, prompt string, timeout time.Duration) (string, int, error) {
	var lastErr error
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		raw, err := g.invokeOnce(ctx, prompt, timeout)
		if err == nil {
			return raw, attempt, nil
		}
		if !isTimeout(err) {
			return "", attempt, fmt.Errorf("%s: reasoning call failed: %w", stage, err)
		}
		lastErr = err
		if attempt < g.maxAttempts {
			select {
			case <-time.After(backoffDelay(attempt)):
			case <-ctx.Done():
				return "", attempt, &TimeoutError{Stage: stage, Timeout: timeout, Err: ctx.Err()}
			}
		}
	}
	return "", g.maxAttempts, &TimeoutError{Stage: stage, Timeout: timeout, Err: lastErr}
}

func (g *Gateway) invokeOnce(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return g.caller.GenerateJSON(callCtx, prompt)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func backoffDelay(attempt int) time.Duration {
	base := time.Duration(attempt) * 500 * time.Millisecond
	jitter := time.Duration(rand.Int63n(int64(250 * time.Millisecond)))
	return base + jitter
}

// ExtractJSON decodes reasoning output into out. It prefers the first fenced
// json block; absent a fence, it parses the raw text directly. Parse failure
// yields an *InvalidResponseError carrying the raw text.
func ExtractJSON(stage, raw string, out any) error {
	candidate := fencedJSON(raw)
	if candidate == "" {
		candidate = strings.TrimSpace(raw)
	}
	if err := json.Unmarshal([]byte(candidate), out); err != nil {
		return &InvalidResponseError{Stage: stage, Raw: raw, Err: err}
	}
	return nil
}

// fencedJSON returns the contents of the first ```json fence, or the first
// bare ``` fence as a fallback, or "" when no fence is present.
func fencedJSON(s string) string {
	for _, marker := range []string{"```json", "```"} {
		start := strings.Index(s, marker)
		if start < 0 {
			continue
		}
		rest := s[start+len(marker):]
		end := strings.Index(rest, "```")
		if end < 0 {
			continue
		}
		return strings.TrimSpace(rest[:end])
	}
	return ""
}
