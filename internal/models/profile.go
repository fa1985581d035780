package models

// UserStatus is the client-reported presence state. The relay never
// verifies it.
type UserStatus string

const (
	StatusOnline  UserStatus = "online"
	StatusOffline UserStatus = "offline"
	StatusTyping  UserStatus = "typing"
)

// Profile is a public directory record, stored as JSON under profile:{id}.
// Writes replace the whole record.
type Profile struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Status    UserStatus `json:"status"`
	AvatarURL *string    `json:"avatar_url"`
	LastSeen  int64      `json:"last_seen"` // Unix millis of the last profile update
}
