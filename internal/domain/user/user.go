package user

import "time"

type User struct {
	ID          int64     `gorm:"column:user_id;primaryKey;autoIncrement" json:"user_id"`
	Username    string    `gorm:"column:user_name;uniqueIndex;not null" json:"username"`
	Email       string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"column:password;not null" json:"-"`
	PhoneNumber *string   `gorm:"column:phone_number;uniqueIndex" json:"phone_number"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Patch carries the fields a caller explicitly supplied; nil means untouched.
type Patch struct {
	Username    *string
	Email       *string
	PhoneNumber *string
}

func (p Patch) Empty() bool {
	return p.Username == nil && p.Email == nil && p.PhoneNumber == nil
}
