package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/harryc904/Studio/internal/domain/conversation"
)

var LineageAggregateContract = Contract{
	Name:             "Conversation.LineageAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns parent child-version index, node insertion and session activity time as one atomic write.",
}

// LineageAggregate owns the conversation tree invariants.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeForbidden, CodeConflict, CodeInvariantViolation,
// CodePreconditionFailed, CodeRetryable, CodeInternal.
type LineageAggregate interface {
	Aggregate

	// AppendConversation inserts a node, assigns its sibling version under the parent's row lock,
	// and optionally appends a PRD revision in the same transaction.
	AppendConversation(ctx context.Context, in AppendConversationInput) (AppendConversationResult, error)

	// UpdateConversation patches only the supplied auxiliary fields and optionally appends a
	// PRD revision, atomically and under the session owner's row lock.
	UpdateConversation(ctx context.Context, in UpdateConversationInput) (UpdateConversationResult, error)
}

// RevisionInput requests a PRD revision alongside a lineage write.
// Content must not be empty.
type RevisionInput struct {
	Content        string
	RestoreVersion *int
}

type AppendConversationInput struct {
	UserID    int64
	SessionID int64
	// ConversationID is generated when zero.
	ConversationID uuid.UUID
	ParentID       *uuid.UUID
	Type           conversation.Type
	Content        string // required
	Aux            conversation.AuxFields
	Revision       *RevisionInput
}

type AppendConversationResult struct {
	Conversation *conversation.Conversation
	// Parent is the parent row after its index was updated; nil for roots.
	Parent   *conversation.Conversation
	Revision *conversation.PRD
}

type UpdateConversationInput struct {
	UserID         int64
	SessionID      int64
	ConversationID uuid.UUID
	Aux            conversation.AuxFields
	Revision       *RevisionInput
}

type UpdateConversationResult struct {
	Conversation *conversation.Conversation
	Revision     *conversation.PRD
}
