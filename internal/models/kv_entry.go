package models

import (
	"time"

	"gorm.io/datatypes"
)

// KVEntry is one row of the PostgreSQL-backed key-value store.
// Value is a json column, not jsonb: json keeps the document text as
// written, including \u0000 escapes that jsonb rejects.
type KVEntry struct {
	Key       string         `gorm:"primaryKey;type:text" json:"key"`
	Value     datatypes.JSON `gorm:"type:json;not null" json:"value"`
	ExpiresAt *time.Time     `gorm:"index" json:"expires_at,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name
func (KVEntry) TableName() string {
	return "kv_entries"
}
