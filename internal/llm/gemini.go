/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash-lite"

// ErrNoAPIKey is returned by GeminiClient when no key is configured.
var ErrNoAPIKey = errors.New("no API key")

// GeminiClient calls the Gemini API through the genai SDK. The SDK client is
// built on first use.
type GeminiClient struct {
	baseURL string
	apiKey  string
	model   string

	once   sync.Once
	client *genai.Client
	err    error
}

// NewGeminiClient builds a client. An empty baseURL or model selects the
// public endpoint and default model.
func NewGeminiClient(baseURL, apiKey, model string) *GeminiClient {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

func (g *GeminiClient) sdk(ctx context.Context) (*genai.Client, error) {
	g.once.Do(func() {
		g.client, g.err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:      g.apiKey,
			Backend:     genai.BackendGeminiAPI,
			HTTPClient:  &http.Client{Timeout: 30 * time.Second},
			HTTPOptions: genai.HTTPOptions{BaseURL: g.baseURL},
		})
	})
	return g.client, g.err
}

func (g *GeminiClient) Generate(ctx context.Context, r Request) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("gemini: %w", ErrNoAPIKey)
	}
	client, err := g.sdk(ctx)
	if err != nil {
		return "", fmt.Errorf("gemini: client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(r.MaxTokens),
		Temperature:     genai.Ptr(float32(r.Temperature)),
	}
	if r.System != "" {
		config.SystemInstruction = genai.NewContentFromText(r.System, genai.RoleUser)
	}
	if r.JSON {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(r.User), config)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}
	return text, nil
}
