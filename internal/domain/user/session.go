package user

import "time"

// SessionNameLayout formats the default session name from its start time.
const SessionNameLayout = "20060102150405"

// Session groups a user's conversations and PRD revisions.
type Session struct {
	ID        int64      `gorm:"column:session_id;primaryKey;autoIncrement" json:"session_id"`
	UserID    int64      `gorm:"column:user_id;not null;index" json:"user_id"`
	Name      string     `gorm:"column:session_name" json:"session_name"`
	StartTime time.Time  `gorm:"column:start_time;not null;index" json:"start_time"`
	EndTime   *time.Time `gorm:"column:end_time;index" json:"end_time"`
}

func (Session) TableName() string { return "sessions" }

// DefaultSessionName renders t in the compact timestamp layout.
func DefaultSessionName(t time.Time) string {
	return t.Format(SessionNameLayout)
}
