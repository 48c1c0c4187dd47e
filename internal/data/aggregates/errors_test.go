package aggregates

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/harryc904/Studio/internal/domain/aggregates"
)

func TestMapError_Validation(t *testing.T) {
	err := MapError("op", ValidationError("bad input"))
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_Conflict(t *testing.T) {
	err := MapError("op", fmt.Errorf("%w: stale", ErrConflict))
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_NotFound(t *testing.T) {
	err := MapError("op", gorm.ErrRecordNotFound)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeRetryable, "op", "retry", errors.New("boom"))
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
}

func TestMapError_PostgresCodes(t *testing.T) {
	cases := map[string]domainagg.ErrorCode{
		"23505": domainagg.CodeConflict,
		"23503": domainagg.CodePreconditionFailed,
		"40001": domainagg.CodeRetryable,
		"40P01": domainagg.CodeRetryable,
		"55P03": domainagg.CodeRetryable,
		"22001": domainagg.CodeInternal,
	}
	for code, want := range cases {
		err := MapError("op", &pgconn.PgError{Code: code, Message: "pg"})
		if got := domainagg.CodeOf(err); got != want {
			t.Fatalf("pg code %s: want=%s got=%s", code, want, got)
		}
	}
}

func TestMapError_SQLiteMessages(t *testing.T) {
	if got := domainagg.CodeOf(MapError("op", errors.New("UNIQUE constraint failed: users.email"))); got != domainagg.CodeConflict {
		t.Fatalf("unique: got=%s", got)
	}
	if got := domainagg.CodeOf(MapError("op", errors.New("database is locked"))); got != domainagg.CodeRetryable {
		t.Fatalf("locked: got=%s", got)
	}
	if got := domainagg.CodeOf(MapError("op", context.Canceled)); got != domainagg.CodeRetryable {
		t.Fatalf("canceled: got=%s", got)
	}
}

func TestIsUniqueViolationOn(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_conversation_parent_version"}
	if !isUniqueViolationOn(pgErr, "idx_conversation_parent_version", "conversation_parent_id") {
		t.Fatalf("expected pg match")
	}
	other := &pgconn.PgError{Code: "23505", ConstraintName: "conversations_pkey"}
	if isUniqueViolationOn(other, "idx_conversation_parent_version", "conversation_parent_id") {
		t.Fatalf("unexpected pg match on other constraint")
	}
	sqliteErr := errors.New("UNIQUE constraint failed: conversations.conversation_parent_id, conversations.version")
	if !isUniqueViolationOn(sqliteErr, "idx_conversation_parent_version", "conversation_parent_id") {
		t.Fatalf("expected sqlite match")
	}
	if isUniqueViolationOn(nil, "x", "y") {
		t.Fatalf("nil must not match")
	}
}
