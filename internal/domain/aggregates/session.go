package aggregates

import "context"

var SessionAggregateContract = Contract{
	Name:             "User.SessionAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "A session exclusively owns its conversations and PRD revisions; deletion removes all of them together.",
}

type SessionAggregate interface {
	Aggregate

	DeleteSession(ctx context.Context, in DeleteSessionInput) (DeleteSessionResult, error)
}

type DeleteSessionInput struct {
	UserID    int64
	SessionID int64
}

type DeleteSessionResult struct {
	SessionID     int64
	Conversations int64
	Revisions     int64
}
