// Package calls talks to the Graph cloud communications API: joining a
// meeting as the bot, controlling recording, and hanging up. Call lifecycle
// is tracked elsewhere; this package only issues commands and parses the
// notifications the provider sends back.
package calls

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://graph.microsoft.com/v1.0"

// TokenSource yields a bearer token for communications requests. The Graph
// client-credentials source satisfies it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client issues call-control commands.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client

	// BotIdentity is the application identity the call is placed as.
	BotIdentity string
}

func NewClient(tokens TokenSource, botIdentity string) *Client {
	return &Client{
		baseURL:     defaultBaseURL,
		tokens:      tokens,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		BotIdentity: botIdentity,
	}
}

// NewClientWithBaseURL is used by tests to point the client at a fake server.
func NewClientWithBaseURL(tokens TokenSource, botIdentity, baseURL string) *Client {
	c := NewClient(tokens, botIdentity)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshalling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("acquiring token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("communications API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// CreateCall asks the provider to place a call into the meeting behind
// joinURL, with lifecycle notifications delivered to callbackURL. Returns the
// provider's connection id. The call is not yet established when this
// returns; a Connected notification confirms it.
func (c *Client) CreateCall(ctx context.Context, joinURL, callbackURL string) (string, error) {
	body := map[string]any{
		"callbackUri":        callbackURL,
		"requestedModalities": []string{"audio"},
		"source": map[string]any{
			"identity": map[string]any{
				"application": map[string]string{"id": c.BotIdentity},
			},
		},
		"meetingInfo": map[string]any{
			"joinUrl": joinURL,
		},
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/communications/calls", body, &created); err != nil {
		return "", fmt.Errorf("creating call: %w", err)
	}
	if created.ID == "" {
		return "", errors.New("creating call: provider returned no call id")
	}
	return created.ID, nil
}

// StartRecording asks the provider to begin recording the call. Returns the
// recording operation id; a RecordingStateChanged notification confirms the
// recording is active.
func (c *Client) StartRecording(ctx context.Context, connectionID, callbackURL string) (string, error) {
	body := map[string]any{
		"status":      "recording",
		"callbackUri": callbackURL,
	}

	var op struct {
		ID string `json:"id"`
	}
	path := fmt.Sprintf("/communications/calls/%s/updateRecordingStatus", connectionID)
	if err := c.post(ctx, path, body, &op); err != nil {
		return "", fmt.Errorf("starting recording on call %s: %w", connectionID, err)
	}
	if op.ID == "" {
		return "", errors.New("starting recording: provider returned no operation id")
	}
	return op.ID, nil
}

// StopRecording asks the provider to stop the active recording.
func (c *Client) StopRecording(ctx context.Context, connectionID, recordingID string) error {
	body := map[string]any{
		"status":        "notRecording",
		"clientContext": recordingID,
	}
	path := fmt.Sprintf("/communications/calls/%s/updateRecordingStatus", connectionID)
	if err := c.post(ctx, path, body, nil); err != nil {
		return fmt.Errorf("stopping recording on call %s: %w", connectionID, err)
	}
	return nil
}

// HangUp terminates the call.
func (c *Client) HangUp(ctx context.Context, connectionID string) error {
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("acquiring token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/communications/calls/%s", c.baseURL, connectionID), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("hanging up call %s: %w", connectionID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("hanging up call %s: provider returned %d: %s",
			connectionID, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}
