// Package client is a small client for the companion HTTP API, shared by
// the terminal client and the MCP bridge.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iammorganparry/companion/internal/models"
)

// Client calls the API as one user.
type Client struct {
	baseURL    string
	apiKey     string
	userID     string
	httpClient *http.Client
}

// New creates a client for the server at baseURL acting as userID.
func New(baseURL, apiKey, userID string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		userID:  userID,
		httpClient: &http.Client{
			Timeout: 90 * time.Second, // a turn waits on the completion provider
		},
	}
}

// Chat sends one message. An empty conversationID starts a new conversation.
func (c *Client) Chat(ctx context.Context, conversationID, characterID, message string) (*models.ChatResponse, error) {
	var out models.ChatResponse
	req := models.ChatRequest{ConversationID: conversationID, CharacterID: characterID, Message: message}
	if err := c.do(ctx, http.MethodPost, "/v1/chat", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Opening fetches the next greeting for a client session.
func (c *Client) Opening(ctx context.Context, sessionID string) (string, error) {
	var out models.OpeningResponse
	if err := c.do(ctx, http.MethodGet, "/v1/sessions/"+url.PathEscape(sessionID)+"/opening", nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Conversations lists the user's conversations, most recent first.
func (c *Client) Conversations(ctx context.Context) ([]models.ConversationOverview, error) {
	var out []models.ConversationOverview
	if err := c.do(ctx, http.MethodGet, "/v1/conversations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Messages loads the last limit messages of a conversation, oldest first.
func (c *Client) Messages(ctx context.Context, conversationID string, limit int) ([]models.Message, error) {
	var out []models.Message
	path := fmt.Sprintf("/v1/conversations/%s/messages?limit=%d", url.PathEscape(conversationID), limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Profile returns the user's stored personality profile.
func (c *Client) Profile(ctx context.Context) (*models.UserProfile, error) {
	var out models.UserProfile
	if err := c.do(ctx, http.MethodGet, "/v1/users/me/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Summary returns the stored summary of a conversation.
func (c *Client) Summary(ctx context.Context, conversationID string) (*models.ConversationSummary, error) {
	var out models.ConversationSummary
	if err := c.do(ctx, http.MethodGet, "/v1/conversations/"+url.PathEscape(conversationID)+"/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeEmotion runs the emotion detector on a message.
func (c *Client) AnalyzeEmotion(ctx context.Context, message string) (*models.EmotionDetectionResult, error) {
	var out models.EmotionDetectionResult
	if err := c.do(ctx, http.MethodPost, "/v1/analyze/emotion", models.AnalyzeEmotionRequest{Message: message}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", c.userID)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
