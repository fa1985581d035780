package relayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/neochat/relay/internal/handlers"
	"github.com/neochat/relay/internal/models"
)

// APIError is a non-2xx relay response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("relay: %d %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the relay.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type Client struct {
	Base string
	HTTP *http.Client
}

func New(base string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{Base: strings.TrimRight(base, "/"), HTTP: httpClient}
}

// ProfileUpdate is the profile a client publishes about itself.
type ProfileUpdate struct {
	ID        string
	Username  string
	Status    models.UserStatus
	AvatarURL *string
}

func (c *Client) Status(ctx context.Context) (handlers.StatusResponse, error) {
	var out handlers.StatusResponse
	err := c.do(ctx, http.MethodGet, "/status", nil, &out)
	return out, err
}

func (c *Client) UpsertProfile(ctx context.Context, p ProfileUpdate) (models.Profile, error) {
	var out handlers.UpsertProfileResponse
	err := c.do(ctx, http.MethodPost, "/profile", handlers.UpsertProfileRequest{
		ID:        p.ID,
		Username:  p.Username,
		Status:    p.Status,
		AvatarURL: p.AvatarURL,
	}, &out)
	return out.Profile, err
}

func (c *Client) GetProfile(ctx context.Context, id string) (models.Profile, error) {
	var out models.Profile
	err := c.do(ctx, http.MethodGet, "/profile/"+url.PathEscape(id), nil, &out)
	return out, err
}

// Send submits an already-encrypted payload. An empty from is recorded as
// anonymous by the relay.
func (c *Client) Send(ctx context.Context, from, to, payload, messageID string) error {
	return c.do(ctx, http.MethodPost, "/send", handlers.SendRequest{
		From:      from,
		To:        to,
		Payload:   payload,
		MessageID: messageID,
	}, nil)
}

func (c *Client) Poll(ctx context.Context, recipient string) ([]models.Envelope, error) {
	var out handlers.PollResponse
	if err := c.do(ctx, http.MethodGet, "/poll/"+url.PathEscape(recipient), nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (c *Client) Ack(ctx context.Context, recipient, messageID string) error {
	return c.do(ctx, http.MethodDelete, "/ack/"+url.PathEscape(recipient)+"/"+url.PathEscape(messageID), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return err
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return decodeAPIError(resp)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// decodeAPIError reads {"error": ...} bodies and falls back to plain text.
func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}

	var body handlers.ErrorResponse
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
