package notifications

import (
	"time"

	"gorm.io/datatypes"
)

type Notification struct {
	ID        string         `gorm:"type:uuid;primaryKey"`
	UserID    string         `gorm:"not null;index"`
	Title     string         `gorm:"not null"`
	Message   string         `gorm:"not null"`
	Data      datatypes.JSON `gorm:"type:jsonb"`
	IsRead    bool           `gorm:"not null;default:false"`
	ReadAt    *time.Time
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Result reports the outcome of a fan-out. Warning is advisory: the ledger
// mutation that triggered the fan-out has already committed, so push
// delivery problems must never surface as the operation's failure.
type Result struct {
	Notified []string
	Warning  string
}
