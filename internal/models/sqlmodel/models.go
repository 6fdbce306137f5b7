// Package sqlmodel defines the database tables backing consoles and their API keys. The
// verification core never touches these rows directly; it goes through the narrow query
// layer in internal/db.
package sqlmodel

import (
	"database/sql"

	"gorm.io/gorm"
)

// Console defines the `consoles` table. A console groups the API keys one operator
// manages; the operator identity is the subject of the identity provider token.
type Console struct {
	gorm.Model
	ID       int64
	Label    string   `gorm:"type:VARCHAR(255) NOT NULL"`
	Operator string   `gorm:"type:VARCHAR(255) NOT NULL;index"`
	APIKeys  []APIKey `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// APIKey defines the `api_keys` table: the three credentials of one relying site. The
// key columns store the validated encoded form; they are generated once at provisioning
// and never updated.
type APIKey struct {
	gorm.Model
	ID          int64
	ConsoleID   int64          `gorm:"not null;index"`
	SiteKey     string         `gorm:"type:VARCHAR(64) NOT NULL;uniqueIndex"`
	EncodingKey string         `gorm:"type:VARCHAR(64) NOT NULL"`
	Secret      string         `gorm:"type:VARCHAR(64) NOT NULL;uniqueIndex"`
	Label       sql.NullString `gorm:"type:VARCHAR(255)"`
}

// TableName overrides the table name of Console.
func (Console) TableName() string {
	return "consoles"
}

// TableName overrides the table name of APIKey.
func (APIKey) TableName() string {
	return "api_keys"
}
