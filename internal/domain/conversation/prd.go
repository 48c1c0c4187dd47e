package conversation

import (
	"time"

	"github.com/google/uuid"
)

// PRD is one revision of a session's generated product document.
type PRD struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SessionID      int64     `gorm:"column:session_id;not null;uniqueIndex:idx_prd_session_version,priority:1" json:"session_id"`
	ConversationID uuid.UUID `gorm:"column:conversation_id;type:uuid;not null;index" json:"conversation_id"`
	Version        int       `gorm:"column:prd_version;not null;uniqueIndex:idx_prd_session_version,priority:2" json:"prd_version"`
	Content        string    `gorm:"column:prd_content;type:text;not null" json:"prd_content"`
	CreatedBy      int64     `gorm:"column:created_by;index" json:"created_by"`
	Latest         bool      `gorm:"column:latest;not null" json:"latest"`
	RestoreVersion *int      `gorm:"column:restore_version" json:"restore_version"`
	CreatedAt      time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (PRD) TableName() string { return "prd" }
