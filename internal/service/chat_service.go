package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go-commerce-service/internal/apperror"
)

// ChatService forwards a single prompt to the upstream AI API and returns
// the reply text. No retries, no streaming, no conversation state.
type ChatService interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type HTTPChatService struct {
	client   *http.Client
	endpoint string
	apiKey   string
	model    string
}

func NewChatService(client *http.Client, endpoint, apiKey, model string) *HTTPChatService {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPChatService{client: client, endpoint: endpoint, apiKey: apiKey, model: model}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (s *HTTPChatService) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", apperror.BadRequest("prompt is required")
	}
	if s.endpoint == "" || s.apiKey == "" {
		return "", apperror.Internal("chat upstream is not configured", nil)
	}

	payload, err := json.Marshal(chatRequest{
		Model:    s.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call chat upstream: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", apperror.Internal(fmt.Sprintf("chat upstream returned %d", resp.StatusCode), nil)
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", apperror.Internal("chat upstream returned no choices", nil)
	}
	return out.Choices[0].Message.Content, nil
}
