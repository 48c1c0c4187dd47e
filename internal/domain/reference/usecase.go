package reference

import (
	"fmt"

	"github.com/google/uuid"
)

// UseCase groups user stories and is linked to requirements through RequirementUseCase.
type UseCase struct {
	ID          int64       `gorm:"column:uc_id;primaryKey;autoIncrement"`
	UUID        uuid.UUID   `gorm:"column:uuid;type:uuid;not null;uniqueIndex"`
	Name        string      `gorm:"column:name;not null"`
	Description string      `gorm:"column:description;type:text"`
	UserStories []UserStory `gorm:"foreignKey:UseCaseID;references:ID"`
}

func (UseCase) TableName() string { return "usecase" }

// UserStory carries its use case both by row id and by uuid; the graph links on the uuid.
type UserStory struct {
	ID          int64      `gorm:"column:us_id;primaryKey;autoIncrement"`
	UUID        uuid.UUID  `gorm:"column:uuid;type:uuid;not null;uniqueIndex"`
	UseCaseID   *int64     `gorm:"column:uc_id;index"`
	UseCaseUUID *uuid.UUID `gorm:"column:uuid_uc;type:uuid"`
	Description string     `gorm:"column:description;type:text"`
}

func (UserStory) TableName() string { return "userstory" }

type Requirement struct {
	ID          int64     `gorm:"column:requirement_id;primaryKey;autoIncrement"`
	UUID        uuid.UUID `gorm:"column:uuid;type:uuid;not null;uniqueIndex"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description;type:text"`
}

func (Requirement) TableName() string { return "requirement" }

type RequirementUseCase struct {
	RequirementID int64 `gorm:"column:requirement_id;primaryKey"`
	UseCaseID     int64 `gorm:"column:uc_id;primaryKey"`
}

func (RequirementUseCase) TableName() string { return "req_uc_relations" }

// RequirementLink is one requirement joined with one of its use cases, or with none.
type RequirementLink struct {
	Requirement
	UseCaseUUID *uuid.UUID `gorm:"column:uuid_uc"`
}

func UseCaseCode(id int64) string     { return fmt.Sprintf("UC-%06d", id) }
func UserStoryCode(id int64) string   { return fmt.Sprintf("US-%06d", id) }
func RequirementCode(id int64) string { return fmt.Sprintf("REQ-%06d", id) }
