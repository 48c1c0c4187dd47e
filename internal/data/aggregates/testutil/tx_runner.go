package testutil

import (
	"context"
	"sync"

	"github.com/harryc904/Studio/internal/data/aggregates"
	"github.com/harryc904/Studio/internal/platform/dbctx"
)

// InjectedTxRunner wraps Next and injects failures around each attempt. Without Next the
// body runs with no transaction at all.
type InjectedTxRunner struct {
	Next aggregates.TxRunner

	mu sync.Mutex

	// FailBegin is returned before the body for the first FailBeginTimes attempts,
	// or for every attempt when FailBeginTimes is zero.
	FailBegin      error
	FailBeginTimes int
	// FailCommit is returned after a successful body. With Next set the transaction
	// rolls back, so nothing the body wrote survives.
	FailCommit error

	Attempts  int
	Commits   int
	Rollbacks int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.Attempts++
	failBegin := r.FailBegin
	if r.FailBeginTimes > 0 && r.Attempts > r.FailBeginTimes {
		failBegin = nil
	}
	failCommit := r.FailCommit
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	body := func(dbc dbctx.Context) error {
		if fn != nil {
			if err := fn(dbc); err != nil {
				return err
			}
		}
		return failCommit
	}
	var err error
	if r.Next != nil {
		err = r.Next.InTx(ctx, body)
	} else {
		err = body(dbctx.Context{Ctx: ctx})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.Rollbacks++
	} else {
		r.Commits++
	}
	return err
}
