package models

import (
	"time"

	"gorm.io/datatypes"
)

// RegistrationRevision is a snapshot of a registration taken on every create
// and update.
type RegistrationRevision struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	RegistrationID uint           `json:"registration_id"`
	AuthorID       *uint          `json:"author_id"`
	Comment        string         `json:"comment"`
	Snapshot       datatypes.JSON `json:"snapshot"`
	CreatedAt      time.Time      `json:"created_at"`
}
