package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"studymate/app/config"

	"github.com/samber/lo"
	"github.com/sashabaranov/go-openai"
)

const (
	maxReasonDuration   = 30 * time.Second
	maxCompletionTokens = 2000
)

// ErrGeneration indicates the hosted model call failed permanently.
var ErrGeneration = errors.New("generation failed")

// ParseError reports a model response that could not be decoded into the
// structured shape. Raw carries the undecoded text so callers can degrade
// to a plain answer instead of failing the request.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse structured response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// structuredSchema constrains model output on the schema-mode retry.
var structuredSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"answer": {"type": "string"},
		"key_points": {"type": "array", "items": {"type": "string"}},
		"suggested_questions": {"type": "array", "items": {"type": "string"}},
		"references": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["answer", "key_points", "suggested_questions", "references"],
	"additionalProperties": false
}`)

// Generator produces model completions for composed prompts.
type Generator interface {
	Structured(ctx context.Context, prompt string) (*StructuredResponse, error)
}

// OpenAIGenerator calls an OpenAI-compatible chat completion endpoint.
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
}

func NewGenerator(cfg config.LLM) *OpenAIGenerator {
	return &OpenAIGenerator{
		client:      createClient(cfg),
		model:       cfg.Model,
		temperature: lo.FromPtr(cfg.Temperature),
	}
}

// Complete sends the prompt and returns the raw model text.
func (g *OpenAIGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	return g.complete(ctx, prompt, nil)
}

// Structured requests JSON output and decodes it into a StructuredResponse.
// When JSON mode produces undecodable output, or the provider rejects the
// model's output as invalid JSON (Groq reports this as a 400 on the json-mode
// request itself), it retries once with a strict JSON schema response format
// before giving up.
func (g *OpenAIGenerator) Structured(ctx context.Context, prompt string) (*StructuredResponse, error) {
	raw, err := g.complete(ctx, prompt, &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	})
	if err != nil && !isRejectedOutput(err) {
		return nil, err
	}

	var parseErr error
	if err == nil {
		var response *StructuredResponse
		response, parseErr = decodeStructured(raw)
		if parseErr == nil {
			return response, nil
		}
	}

	schemaRaw, schemaErr := g.complete(ctx, prompt, &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   "study_assistant_response",
			Schema: structuredSchema,
			Strict: true,
		},
	})
	if schemaErr != nil {
		if parseErr != nil {
			return nil, &ParseError{Raw: raw, Err: parseErr}
		}
		return nil, schemaErr
	}

	response, schemaParseErr := decodeStructured(schemaRaw)
	if schemaParseErr != nil {
		return nil, &ParseError{Raw: schemaRaw, Err: schemaParseErr}
	}

	return response, nil
}

func (g *OpenAIGenerator) complete(ctx context.Context, prompt string, format *openai.ChatCompletionResponseFormat) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, maxReasonDuration)
	defer cancel()

	request := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature:         g.temperature,
		MaxCompletionTokens: maxCompletionTokens,
		ResponseFormat:      format,
	}

	aiResponse, err := g.client.CreateChatCompletion(ctx, request)
	if err != nil && isTransient(err) {
		// single transparent retry, permanent failures propagate
		aiResponse, err = g.client.CreateChatCompletion(ctx, request)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	if len(aiResponse.Choices) == 0 {
		return "", fmt.Errorf("%w: no chat completion found", ErrGeneration)
	}

	return aiResponse.Choices[0].Message.Content, nil
}

func decodeStructured(raw string) (*StructuredResponse, error) {
	result := strings.Trim(raw, "`")
	result = strings.TrimSpace(result)
	result = strings.TrimPrefix(result, "json")
	result = strings.TrimSpace(result)

	var response StructuredResponse
	if err := json.Unmarshal([]byte(result), &response); err != nil {
		return nil, err
	}

	response.Answer = strings.TrimSpace(response.Answer)
	response.normalize()

	return &response, nil
}

// isRejectedOutput detects json-mode requests the provider refused because
// the model's output failed JSON validation (json_validate_failed).
func isRejectedOutput(err error) bool {
	var apiErr *openai.APIError
	return errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 400
}

func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}

	// transport-level failures without an API status are worth one retry
	return true
}
