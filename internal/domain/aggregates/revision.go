package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/harryc904/Studio/internal/domain/conversation"
)

var RevisionAggregateContract = Contract{
	Name:             "Conversation.RevisionAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns the per-session PRD version sequence and the single latest marker.",
}

// RevisionAggregate appends PRD revisions.
//
// Exactly one revision per session carries latest=true once any exist, and
// versions per session are strictly increasing from 1.
type RevisionAggregate interface {
	Aggregate

	AppendRevision(ctx context.Context, in AppendRevisionInput) (*conversation.PRD, error)
}

type AppendRevisionInput struct {
	UserID         int64
	SessionID      int64
	ConversationID uuid.UUID
	Content        string
	RestoreVersion *int
}
