package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/ethanbaker/api/pkg/api_types"
	"github.com/google/uuid"
)

// Signup registers a new account and returns the issued session. When the
// email is already registered and the password matches, the existing
// account is signed in instead.
func (c *Client) Signup(ctx context.Context, req *SignupRequest) (*Session, error) {
	var out ApiResponse[Session]
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/signup", req, &out); err != nil {
		return nil, err
	}

	if out.Status != api_types.StatusSuccess {
		return nil, fmt.Errorf("signup failed: %s", out.Message)
	}

	c.SetAccessToken(out.Data.AccessToken)
	return &out.Data, nil
}

// Login signs an account in and retains its session token for subsequent
// calls
func (c *Client) Login(ctx context.Context, req *LoginRequest) (*Session, error) {
	var out ApiResponse[Session]
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", req, &out); err != nil {
		return nil, err
	}

	if out.Status != api_types.StatusSuccess {
		return nil, fmt.Errorf("login failed: %s", out.Message)
	}

	c.SetAccessToken(out.Data.AccessToken)
	return &out.Data, nil
}

// Logout drops the retained session token
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return err
	}
	c.SetAccessToken("")
	return nil
}

/** Primary chat */

// GetChatState returns the current transcript and chat list
func (c *Client) GetChatState(ctx context.Context) (*ChatState, error) {
	var out ApiResponse[ChatState]
	if err := c.doJSON(ctx, http.MethodGet, "/api/chat", nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// PostMessage submits a chat message and returns the updated state
func (c *Client) PostMessage(ctx context.Context, content string) (*ChatState, error) {
	var out ApiResponse[ChatState]
	req := &PostMessageRequest{Content: content}
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat/messages", req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// PostAdvice issues a canned advice topic and returns the updated state
func (c *Client) PostAdvice(ctx context.Context, topic string) (*ChatState, error) {
	var out ApiResponse[ChatState]
	req := &AdviceRequest{Topic: topic}
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat/advice", req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// CancelPending cancels the in-flight query, if any
func (c *Client) CancelPending(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/chat/cancel", nil, nil)
}

// NewChat clears the working transcript and starts an unsaved chat
func (c *Client) NewChat(ctx context.Context) (*ChatState, error) {
	var out ApiResponse[ChatState]
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat/new", nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// SelectChat opens a saved chat
func (c *Client) SelectChat(ctx context.Context, chatID uuid.UUID) (*ChatState, error) {
	var out ApiResponse[ChatState]
	req := &SelectChatRequest{ChatID: chatID}
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat/select", req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// DeleteChat removes a saved chat
func (c *Client) DeleteChat(ctx context.Context, chatID uuid.UUID) (*ChatState, error) {
	var out ApiResponse[ChatState]
	path := fmt.Sprintf("/api/chat/%s", chatID)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// ExportTranscript downloads the working transcript as plain text
func (c *Client) ExportTranscript(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/chat/export", nil)
	if err != nil {
		return "", err
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("[SDK]: export failed: %d: %s", resp.StatusCode, string(b))
	}

	return string(b), nil
}

/** Customization */

// GetCustomState returns the per-user custom transcript and prompt template
func (c *Client) GetCustomState(ctx context.Context) (*CustomState, error) {
	var out ApiResponse[CustomState]
	if err := c.doJSON(ctx, http.MethodGet, "/api/custom", nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// PostCustomMessage submits a message against the custom prompt endpoint
func (c *Client) PostCustomMessage(ctx context.Context, content string) (*CustomState, error) {
	var out ApiResponse[CustomState]
	req := &PostMessageRequest{Content: content}
	if err := c.doJSON(ctx, http.MethodPost, "/api/custom/messages", req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// PutTemplate saves the prompt template, last write wins
func (c *Client) PutTemplate(ctx context.Context, template string) error {
	req := &TemplateRequest{Template: template}
	return c.doJSON(ctx, http.MethodPut, "/api/custom/template", req, nil)
}

// ResetCustomHistory deletes the per-user custom transcript
func (c *Client) ResetCustomHistory(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/custom/reset", nil, nil)
}

// UploadDocument uploads a PDF with its index scope. The service saves the
// current prompt template before attempting the ingestion.
func (c *Client) UploadDocument(ctx context.Context, filename string, file io.Reader, scope, privateName string) (*CustomState, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	if err := writer.WriteField("indexType", scope); err != nil {
		return nil, err
	}
	if err := writer.WriteField("privateName", privateName); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/custom/upload", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("[SDK]: upload failed: %d: %s", resp.StatusCode, string(b))
	}

	var out ApiResponse[CustomState]
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

/** Comparison */

// GetCompareState returns both comparison transcripts
func (c *Client) GetCompareState(ctx context.Context) (*CompareState, error) {
	var out ApiResponse[CompareState]
	if err := c.doJSON(ctx, http.MethodGet, "/api/compare", nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// PostCompareMessage submits a message to both sides of the comparison view
func (c *Client) PostCompareMessage(ctx context.Context, content string) (*CompareState, error) {
	var out ApiResponse[CompareState]
	req := &PostMessageRequest{Content: content}
	if err := c.doJSON(ctx, http.MethodPost, "/api/compare/messages", req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// CancelCompare cancels the in-flight comparison query pair
func (c *Client) CancelCompare(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/compare/cancel", nil, nil)
}
