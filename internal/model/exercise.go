package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Aliases is a list of alternative names for a catalog exercise,
// stored as a JSONB array.
type Aliases []string

// Value implements driver.Valuer for JSONB serialization
func (a Aliases) Value() (driver.Value, error) {
	if a == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for JSONB deserialization
func (a *Aliases) Scan(value interface{}) error {
	if value == nil {
		*a = []string{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return errors.New("failed to unmarshal Aliases: unsupported source type")
	}
}

// Exercise is a row in the global, de-duplicated exercise catalog.
// Catalog rows are shared by all users; Name is the de-duplication key.
type Exercise struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null;size:255;uniqueIndex:idx_exercises_name" json:"name"`
	Aliases   Aliases   `gorm:"type:jsonb;not null;default:'[]'" json:"aliases"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Exercise) TableName() string {
	return "exercises"
}

func (e *Exercise) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
