package domain

import (
	"time"

	"github.com/harryc904/Studio/internal/domain/conversation"
	"github.com/harryc904/Studio/internal/domain/reference"
	"github.com/harryc904/Studio/internal/domain/user"
)

type User = user.User
type UserPatch = user.Patch
type Session = user.Session

type Conversation = conversation.Conversation
type ConversationType = conversation.Type
type ChildVersionIndex = conversation.ChildVersionIndex
type AuxFields = conversation.AuxFields
type PRD = conversation.PRD

type Standard = reference.Standard
type Term = reference.Term
type Note = reference.Note

type UseCase = reference.UseCase
type UserStory = reference.UserStory
type Requirement = reference.Requirement
type RequirementUseCase = reference.RequirementUseCase
type RequirementLink = reference.RequirementLink

const (
	ConversationTypeUserMessage   = conversation.TypeUserMessage
	ConversationTypeModelResponse = conversation.TypeModelResponse
)

func DefaultSessionName(t time.Time) string { return user.DefaultSessionName(t) }

func CanonicalStandardID(id string) string { return reference.CanonicalStandardID(id) }

func UseCaseCode(id int64) string     { return reference.UseCaseCode(id) }
func UserStoryCode(id int64) string   { return reference.UserStoryCode(id) }
func RequirementCode(id int64) string { return reference.RequirementCode(id) }

// PrimaryModels are migrated on the primary database.
func PrimaryModels() []interface{} {
	return []interface{}{
		&User{},
		&Session{},
		&Conversation{},
		&PRD{},
	}
}

// BusinessModels are migrated on the business (reference data) database.
func BusinessModels() []interface{} {
	return []interface{}{
		&Standard{},
		&Term{},
		&UseCase{},
		&UserStory{},
		&Requirement{},
		&RequirementUseCase{},
	}
}
