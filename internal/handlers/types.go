package handlers

import "github.com/neochat/relay/internal/models"

// UpsertProfileRequest is the body of POST /profile
type UpsertProfileRequest struct {
	ID        string            `json:"id"`
	Username  string            `json:"username"`
	Status    models.UserStatus `json:"status,omitempty"`
	AvatarURL *string           `json:"avatar_url,omitempty"`
}

// UpsertProfileResponse is returned by POST /profile
type UpsertProfileResponse struct {
	OK      bool           `json:"ok"`
	Profile models.Profile `json:"profile"`
}

// SendRequest is the body of POST /send
type SendRequest struct {
	From      string `json:"from,omitempty"`
	To        string `json:"to"`
	Payload   string `json:"payload"`
	MessageID string `json:"message_id"`
}

// SendResponse is returned by POST /send
type SendResponse struct {
	OK        bool   `json:"ok"`
	MessageID string `json:"message_id"`
}

// PollResponse is returned by GET /poll/{recipient}
type PollResponse struct {
	Messages []models.Envelope `json:"messages"`
}

// AckResponse is returned by DELETE /ack/{recipient}/{message_id}
type AckResponse struct {
	OK bool `json:"ok"`
}

// StatusResponse is returned by GET /status
type StatusResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Timestamp int64  `json:"timestamp"`
}

// ErrorResponse is the body of every 4xx/5xx JSON response
type ErrorResponse struct {
	Error string `json:"error"`
}
