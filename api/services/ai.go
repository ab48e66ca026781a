package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
)

// AIProvider is the interface for AI model providers.
type AIProvider interface {
	GenerateText(prompt string, systemPrompt string) (string, error)
	GenerateJSON(prompt string, systemPrompt string, temperature float64, maxTokens int) (string, error)
	GetProviderName() string
}

// AnthropicProvider implements Claude AI
type AnthropicProvider struct {
	APIKey string
	Model  string
}

// OpenAIProvider implements OpenAI
type OpenAIProvider struct {
	APIKey string
	Model  string
}

func NewAIProvider(provider, apiKey, model string) AIProvider {
	switch strings.ToLower(provider) {
	case "openai":
		return &OpenAIProvider{
			APIKey: apiKey,
			Model:  model,
		}
	default:
		return &AnthropicProvider{
			APIKey: apiKey,
			Model:  model,
		}
	}
}

func (a *AnthropicProvider) GetProviderName() string {
	return "anthropic"
}

func (a *AnthropicProvider) GenerateText(prompt string, systemPrompt string) (string, error) {
	return a.generate(prompt, systemPrompt, 0.7, 4096)
}

// GenerateJSON is the same call as GenerateText for Anthropic (no special
// JSON mode); the system prompt carries the JSON-only instruction.
func (a *AnthropicProvider) GenerateJSON(prompt string, systemPrompt string, temperature float64, maxTokens int) (string, error) {
	return a.generate(prompt, systemPrompt, temperature, maxTokens)
}

func (a *AnthropicProvider) generate(prompt, systemPrompt string, temperature float64, maxTokens int) (string, error) {
	url := "https://api.anthropic.com/v1/messages"

	reqBody := map[string]interface{}{
		"model":       a.Model,
		"max_tokens":  maxTokens,
		"temperature": temperature,
		"system":      systemPrompt,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(result.Content) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	return result.Content[0].Text, nil
}

func (o *OpenAIProvider) GetProviderName() string {
	return "openai"
}

// GenerateText is for non-JSON responses.
func (o *OpenAIProvider) GenerateText(prompt string, systemPrompt string) (string, error) {
	return o.generate(prompt, systemPrompt, 0.7, 4096, false)
}

// GenerateJSON requests JSON-formatted output via response_format.
func (o *OpenAIProvider) GenerateJSON(prompt string, systemPrompt string, temperature float64, maxTokens int) (string, error) {
	return o.generate(prompt, systemPrompt, temperature, maxTokens, true)
}

func (o *OpenAIProvider) generate(prompt, systemPrompt string, temperature float64, maxTokens int, jsonMode bool) (string, error) {
	url := "https://api.openai.com/v1/chat/completions"

	reqBody := map[string]interface{}{
		"model": o.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"temperature": temperature,
		"max_tokens":  maxTokens,
	}
	if jsonMode {
		reqBody["response_format"] = map[string]string{
			"type": "json_object",
		}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", o.APIKey))

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return result.Choices[0].Message.Content, nil
}

// ResponseParseError reports a model response that could not be decoded even
// after cleaning and span extraction.
type ResponseParseError struct {
	Err error
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("failed to parse model response as JSON: %v", e.Err)
}

func (e *ResponseParseError) Unwrap() error {
	return e.Err
}

var jsonSpan = regexp.MustCompile(`(?s)(\{.*\}|\[.*\])`)

// CleanJSONResponse strips markdown code fences around a model response and,
// when the remainder still is not a JSON object or array, extracts the first
// {...} or [...] span.
func CleanJSONResponse(response string) string {
	text := strings.TrimSpace(response)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "[") {
		if m := jsonSpan.FindString(text); m != "" {
			text = m
		}
	}

	return text
}

// DecodeModelJSON cleans a raw model response and unmarshals it into v.
func DecodeModelJSON(response string, v interface{}) error {
	if err := json.Unmarshal([]byte(CleanJSONResponse(response)), v); err != nil {
		return &ResponseParseError{Err: err}
	}
	return nil
}
