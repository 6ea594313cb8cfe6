package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIGenerator talks to any OpenAI-compatible chat completions endpoint
// and forces a call of the Structure function.
type OpenAIGenerator struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewOpenAIGenerator(apiKey, baseURL, model string) *OpenAIGenerator {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	return &OpenAIGenerator{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		// No client timeout: a generation call is bounded only by ctx.
		client: &http.Client{},
	}
}

func (g *OpenAIGenerator) Name() string {
	return "openai"
}

func (g *OpenAIGenerator) Model() string {
	return g.model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	if g.apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key required")
	}

	system, user := req.Prompt.Render(req.Language, req.Content)

	body := map[string]any{
		"model": g.model,
		"messages": []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		"tools": []map[string]any{{
			"type": "function",
			"function": map[string]any{
				"name":        StructureName,
				"description": "Structured analysis of a paper abstract",
				"parameters":  structureSchema(),
			},
		}},
		"tool_choice": map[string]any{
			"type":     "function",
			"function": map[string]string{"name": StructureName},
		},
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/chat/completions", g.baseURL), bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", g.apiKey))

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp map[string]any
		json.NewDecoder(resp.Body).Decode(&errResp)
		return nil, fmt.Errorf("API returned status %d: %v", resp.StatusCode, errResp)
	}

	var out openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, ErrNoChoices
	}

	msg := out.Choices[0].Message
	arguments := msg.Content
	if len(msg.ToolCalls) > 0 {
		arguments = msg.ToolCalls[0].Function.Arguments
	}

	structured, err := decodeArguments(arguments)
	if err != nil {
		return nil, err
	}

	return &Result{
		Structured:       structured,
		Model:            g.model,
		Latency:          time.Since(start),
		PromptTokens:     out.Usage.PromptTokens,
		CompletionTokens: out.Usage.CompletionTokens,
	}, nil
}
