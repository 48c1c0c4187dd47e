package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/harryc904/Studio/internal/platform/dbctx"
)

func TestInjectedTxRunner_CommitsOnSuccess(t *testing.T) {
	r := &InjectedTxRunner{}
	called := false
	err := r.InTx(context.Background(), func(_ dbctx.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !called {
		t.Fatalf("expected callback to run")
	}
	if r.Attempts != 1 || r.Commits != 1 || r.Rollbacks != 0 {
		t.Fatalf("unexpected counters attempts=%d commits=%d rollbacks=%d", r.Attempts, r.Commits, r.Rollbacks)
	}
}

func TestInjectedTxRunner_FailBeginSkipsBodyForLimitedAttempts(t *testing.T) {
	busy := errors.New("database is locked")
	r := &InjectedTxRunner{FailBegin: busy, FailBeginTimes: 2}
	calls := 0
	body := func(_ dbctx.Context) error {
		calls++
		return nil
	}
	for i := 0; i < 2; i++ {
		if err := r.InTx(context.Background(), body); !errors.Is(err, busy) {
			t.Fatalf("attempt %d: expected begin err, got %v", i+1, err)
		}
	}
	if err := r.InTx(context.Background(), body); err != nil {
		t.Fatalf("third attempt: %v", err)
	}
	if calls != 1 || r.Attempts != 3 || r.Commits != 1 {
		t.Fatalf("unexpected counters calls=%d attempts=%d commits=%d", calls, r.Attempts, r.Commits)
	}
}

type recordingRunner struct{ err error }

func (rr *recordingRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	rr.err = fn(dbctx.Context{Ctx: ctx})
	return rr.err
}

func TestInjectedTxRunner_FailCommitReachesWrappedRunner(t *testing.T) {
	commitErr := errors.New("commit failed")
	next := &recordingRunner{}
	r := &InjectedTxRunner{Next: next, FailCommit: commitErr}
	err := r.InTx(context.Background(), func(_ dbctx.Context) error {
		return nil
	})
	if !errors.Is(err, commitErr) || !errors.Is(next.err, commitErr) {
		t.Fatalf("expected commit err inside and out, got %v / %v", err, next.err)
	}
	if r.Attempts != 1 || r.Commits != 0 || r.Rollbacks != 1 {
		t.Fatalf("unexpected counters attempts=%d commits=%d rollbacks=%d", r.Attempts, r.Commits, r.Rollbacks)
	}
}
