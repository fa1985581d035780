package models

// AnonymousSender is recorded as From when the sender declines to identify itself
const AnonymousSender = "anonymous"

// Envelope is an end-to-end encrypted message buffered for an offline
// recipient. Payload is opaque ciphertext (base64 from the clients) and is
// never inspected or logged.
type Envelope struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Payload   string `json:"payload"`
	MessageID string `json:"message_id"`
	Timestamp int64  `json:"timestamp"` // Unix millis, reassigned on every send
}
