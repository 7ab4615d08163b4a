// Copyright (c) 2026 Vitrine. All rights reserved.

// Package translate localizes submitted app descriptions via an
// OpenAI-compatible chat completions API, off the request path.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const requestTimeout = 30 * time.Second

// Client calls a chat completions endpoint to translate text.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient creates a translation client. baseURL is the API root, e.g.
// "https://api.openai.com/v1".
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Translate returns text rendered in targetLanguage. Text already in the
// target language comes back unchanged per the prompt contract.
func (c *Client) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{
				Role: "system",
				Content: fmt.Sprintf(
					"You translate product descriptions into %s. "+
						"Reply with the translation only, no commentary. "+
						"If the text is already in %s, reply with it unchanged.",
					targetLanguage, targetLanguage),
			},
			{Role: "user", Content: text},
		},
		Temperature: 0.2,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("translate: encoding request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("translate: building request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+c.apiKey)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("translate: calling API: %w", err)
	}
	defer response.Body.Close()

	var result chatResponse
	if err := json.NewDecoder(response.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("translate: decoding response: %w", err)
	}
	if response.StatusCode != http.StatusOK {
		message := "unknown error"
		if result.Error != nil {
			message = result.Error.Message
		}
		return "", fmt.Errorf("translate: API status %d: %s", response.StatusCode, message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("translate: API returned no choices")
	}

	translated := strings.TrimSpace(result.Choices[0].Message.Content)
	if translated == "" {
		return "", fmt.Errorf("translate: API returned empty translation")
	}
	return translated, nil
}
