package access

import "time"

// Grant levels, lowest to highest reach. An "owner" grant makes the member a
// co-owner: full read/write plus inclusion in notification audiences.
const (
	LevelRead  = "read"
	LevelWrite = "write"
	LevelOwner = "owner"
)

type Grant struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	OwnerID   string    `gorm:"not null;uniqueIndex:idx_grants_owner_member;index"`
	MemberID  string    `gorm:"not null;uniqueIndex:idx_grants_owner_member;index"`
	Level     string    `gorm:"type:varchar(16);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func ValidLevel(level string) bool {
	switch level {
	case LevelRead, LevelWrite, LevelOwner:
		return true
	}
	return false
}
