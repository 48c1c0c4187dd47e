package aggregates

import (
	"context"
	"errors"
	"testing"
	"time"

	domainagg "github.com/harryc904/Studio/internal/domain/aggregates"
	"github.com/harryc904/Studio/internal/platform/dbctx"
)

func TestExecuteWriteObservesSuccessStatus(t *testing.T) {
	hooks := &spyHooks{}
	runner := spyTxRunner{}

	err := executeWrite(context.Background(), BaseDeps{
		Runner: runner,
		Hooks:  hooks,
	}, "aggregate.test.success", func(_ dbctx.Context) error { return nil })
	if err != nil {
		t.Fatalf("executeWrite success: %v", err)
	}
	if len(hooks.Operations) != 1 {
		t.Fatalf("operations count: want=1 got=%d", len(hooks.Operations))
	}
	if hooks.Operations[0].Status != "success" {
		t.Fatalf("operation status: want=success got=%s", hooks.Operations[0].Status)
	}
}

func TestExecuteWriteObservesInvariantViolationStatus(t *testing.T) {
	hooks := &spyHooks{}
	calls := 0

	err := executeWrite(context.Background(), BaseDeps{
		Runner: spyTxRunner{},
		Hooks:  hooks,
	}, "aggregate.test.invariant", func(_ dbctx.Context) error {
		calls++
		return InvariantError("invariant broken")
	})
	if !domainagg.IsCode(err, domainagg.CodeInvariantViolation) {
		t.Fatalf("expected invariant violation code, got=%v", err)
	}
	if calls != 1 {
		t.Fatalf("non-retryable failures must not be re-run, calls=%d", calls)
	}
	if len(hooks.Operations) != 1 || hooks.Operations[0].Status != string(domainagg.CodeInvariantViolation) {
		t.Fatalf("unexpected op status: %+v", hooks.Operations)
	}
}

func TestExecuteWriteConflictIsNotRetried(t *testing.T) {
	hooks := &spyHooks{}
	calls := 0
	err := executeWrite(context.Background(), BaseDeps{
		Runner: spyTxRunner{},
		Hooks:  hooks,
	}, "aggregate.test.conflict", func(_ dbctx.Context) error {
		calls++
		return errors.Join(ErrConflict, errors.New("duplicate id"))
	})
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict code, got=%v", err)
	}
	if calls != 1 {
		t.Fatalf("calls: want=1 got=%d", calls)
	}
	if len(hooks.Conflicts) != 1 || hooks.Conflicts[0] != "aggregate.test.conflict" {
		t.Fatalf("conflict hooks: %+v", hooks.Conflicts)
	}
	if len(hooks.Retries) != 0 {
		t.Fatalf("retry hooks should be empty, got=%+v", hooks.Retries)
	}
}

func TestExecuteWriteRetriesUntilSuccess(t *testing.T) {
	hooks := &spyHooks{}
	calls := 0
	err := executeWrite(context.Background(), BaseDeps{
		Runner: spyTxRunner{},
		Hooks:  hooks,
		Retry:  RetryPolicy{MaxAttempts: 4, MinBackoff: time.Microsecond, MaxBackoff: time.Microsecond},
	}, "aggregate.test.retry", func(_ dbctx.Context) error {
		calls++
		if calls < 3 {
			return RetryableError("serialization failure")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retries, got=%v", err)
	}
	if calls != 3 {
		t.Fatalf("calls: want=3 got=%d", calls)
	}
	if len(hooks.Retries) != 2 {
		t.Fatalf("retry hooks: want=2 got=%+v", hooks.Retries)
	}
	if len(hooks.Operations) != 1 || hooks.Operations[0].Status != "success" {
		t.Fatalf("unexpected op status: %+v", hooks.Operations)
	}
}

func TestExecuteWriteSurfacesRetryableAfterExhaustion(t *testing.T) {
	hooks := &spyHooks{}
	calls := 0
	err := executeWrite(context.Background(), BaseDeps{
		Runner: spyTxRunner{},
		Hooks:  hooks,
		Retry:  RetryPolicy{MaxAttempts: 3, MinBackoff: time.Microsecond, MaxBackoff: time.Microsecond},
	}, "aggregate.test.exhausted", func(_ dbctx.Context) error {
		calls++
		return RetryableError("temporary lock timeout")
	})
	if !domainagg.IsCode(err, domainagg.CodeRetryable) {
		t.Fatalf("expected retryable code, got=%v", err)
	}
	if calls != 3 {
		t.Fatalf("calls: want=3 got=%d", calls)
	}
	if len(hooks.Operations) != 1 || hooks.Operations[0].Status != string(domainagg.CodeRetryable) {
		t.Fatalf("unexpected op status: %+v", hooks.Operations)
	}
}

func TestExecuteWriteStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := executeWrite(ctx, BaseDeps{
		Runner: spyTxRunner{},
		Retry:  RetryPolicy{MaxAttempts: 5},
	}, "aggregate.test.canceled", func(_ dbctx.Context) error {
		calls++
		return RetryableError("lock timeout")
	})
	if err == nil || calls != 1 {
		t.Fatalf("expected single failed attempt, calls=%d err=%v", calls, err)
	}
}

func TestAggregateErrorStatus(t *testing.T) {
	if got := aggregateErrorStatus(nil); got != "success" {
		t.Fatalf("nil status: want=success got=%s", got)
	}
	if got := aggregateErrorStatus(InvariantError("x")); got != string(domainagg.CodeInvariantViolation) {
		t.Fatalf("invariant status: got=%s", got)
	}
	if got := aggregateErrorStatus(errors.Join(ErrConflict, errors.New("x"))); got != string(domainagg.CodeConflict) {
		t.Fatalf("conflict status: got=%s", got)
	}
	if got := aggregateErrorStatus(RetryableError("x")); got != string(domainagg.CodeRetryable) {
		t.Fatalf("retry status: got=%s", got)
	}
	if got := aggregateErrorStatus(context.DeadlineExceeded); got != string(domainagg.CodeRetryable) {
		t.Fatalf("deadline status: got=%s", got)
	}
}

func TestRetryPolicyBackoffIsBounded(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, MinBackoff: 10 * time.Millisecond, MaxBackoff: 40 * time.Millisecond, JitterFrac: 0.5}
	for attempt := 1; attempt <= 6; attempt++ {
		d := p.backoff(attempt)
		if d < 0 || d > 60*time.Millisecond {
			t.Fatalf("attempt %d: backoff out of range: %s", attempt, d)
		}
	}
	if (RetryPolicy{}).attempts() != 1 {
		t.Fatalf("zero policy must run exactly once")
	}
}

type spyTxRunner struct{}

func (spyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(dbctx.Context{Ctx: ctx})
}

type spyHooks struct {
	Operations []spyOperation
	Conflicts  []string
	Retries    []string
}

type spyOperation struct {
	Name   string
	Status string
}

func (h *spyHooks) ObserveOperation(name, status string, _ time.Duration) {
	h.Operations = append(h.Operations, spyOperation{Name: name, Status: status})
}

func (h *spyHooks) IncConflict(name string) {
	h.Conflicts = append(h.Conflicts, name)
}

func (h *spyHooks) IncRetry(name string) {
	h.Retries = append(h.Retries, name)
}
