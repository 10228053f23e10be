package migrations

import "time"

// LedgerEntry records one applied step.
type LedgerEntry struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

func (LedgerEntry) TableName() string {
	return "schema_migrations"
}
