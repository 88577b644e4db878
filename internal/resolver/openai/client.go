package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"

	"github.com/svgreve/tussnorm/internal/resolver"
)

// Client resolves exam names through the OpenAI chat completions API.
type Client struct {
	httpClient       *resty.Client
	model            string
	maxRetryAttempts uint
}

func NewClient(apiKey, model string, retryAttempts uint) *Client {
	client := resty.New()
	client.SetBaseURL("https://api.openai.com/v1")
	client.SetHeader("Authorization", "Bearer "+apiKey)
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient:       client,
		model:            model,
		maxRetryAttempts: retryAttempts,
	}
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (client *Client) SetBaseURL(baseURL string) {
	client.httpClient.SetBaseURL(baseURL)
}

type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
}

type Choice struct {
	Index        int           `json:"index"`
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type ChoiceMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	if strings.Contains(errStr, "json.Unmarshal") || strings.Contains(errStr, "unexpected end of JSON input") {
		return true
	}
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") {
		return true
	}
	if strings.Contains(errStr, "response error 5") {
		return true
	}
	if strings.Contains(errStr, "response error 429") {
		return true
	}

	return false
}

const systemPrompt = `You normalize Brazilian medical exam names to the TUSS standard
(Terminologia Unificada da Saúde Suplementar da ANS).

The input is an exam name harvested from a hospital portal that automatic
matching could not resolve. Return ONLY a JSON object:
{"canonical_name": "<standardized exam name>", "code": "<TUSS code or empty string>"}

Leave "code" empty when you are not certain of the exact TUSS code. No text
outside the JSON.

Examples:
- "HMG COMPLETO" -> {"canonical_name": "Hemograma completo", "code": ""}
- "RX TORAX PA" -> {"canonical_name": "Radiografia de tórax (PA e perfil)", "code": ""}
- "USG ABD TOTAL" -> {"canonical_name": "Ultrassonografia de abdome total", "code": "40901122"}
- "ECG REPOUSO" -> {"canonical_name": "Eletrocardiograma em repouso", "code": ""}
- "T4 LIVRE" -> {"canonical_name": "Tiroxina livre (T4 livre)", "code": ""}
- "GAMA GT" -> {"canonical_name": "Gama-glutamil transferase (GGT)", "code": ""}`

// ResolveName implements the resolver.Client interface
func (client *Client) ResolveName(
	ctx context.Context,
	params resolver.ResolveNameRequest,
) (resolver.ResolveNameResponse, error) {
	var result resolver.ResolveNameResponse
	if err := retry.Do(
		func() error {
			response, err := client.resolveName(ctx, params)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			result = response
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetryAttempts+1),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	); err != nil {
		return resolver.ResolveNameResponse{}, err
	}
	return result, nil
}

func (client *Client) resolveName(
	ctx context.Context,
	params resolver.ResolveNameRequest,
) (resolver.ResolveNameResponse, error) {
	userMessage := fmt.Sprintf(`Exam name: %q
Best automatic match score: %.1f%% (below the %.0f%% acceptance threshold)

Normalize this exam name.`, params.RawName, params.BestScore, params.Threshold)

	requestBody := ChatCompletionRequest{
		Model:       client.model,
		Temperature: 0.1,
		Messages: []Message{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: userMessage},
		},
	}

	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&ChatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return resolver.ResolveNameResponse{}, fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return resolver.ResolveNameResponse{}, fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	responseBody := response.Result().(*ChatCompletionResponse)
	if responseBody == nil || len(responseBody.Choices) == 0 {
		return resolver.ResolveNameResponse{}, fmt.Errorf("empty response body or choices: %s", response.String())
	}

	content := responseBody.Choices[0].Message.Content
	if content == "" {
		return resolver.ResolveNameResponse{}, fmt.Errorf("empty response content: %s", response.String())
	}
	slog.Default().Debug("openai response content",
		"raw_name", params.RawName,
		"response", content,
	)

	var decoded resolver.ResolveNameResponse
	if err := json.NewDecoder(strings.NewReader(content)).Decode(&decoded); err != nil {
		return resolver.ResolveNameResponse{}, fmt.Errorf("json.Unmarshal(%s) > %w", content, err)
	}
	if strings.TrimSpace(decoded.CanonicalName) == "" {
		return resolver.ResolveNameResponse{}, fmt.Errorf("model returned an empty canonical name: %s", content)
	}
	return decoded, nil
}
