package aggregates

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	domainagg "github.com/harryc904/Studio/internal/domain/aggregates"
	"github.com/harryc904/Studio/internal/platform/dbctx"
	"github.com/harryc904/Studio/internal/platform/logger"
)

type BaseDeps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Runner   TxRunner
	Hooks    Hooks
	Retry    RetryPolicy
	CASGuard CASGuard
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.Retry.MaxAttempts == 0 {
		d.Retry = DefaultRetryPolicy
	}
	if d.CASGuard.db == nil {
		d.CASGuard = NewCASGuard(d.DB)
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return d
}

// executeWrite runs fn in a fresh transaction per attempt. Only failures mapped to
// CodeRetryable are re-run; the final error is always an *aggregates.Error.
func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}

	var mapped error
	attempts := deps.Retry.attempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		err := deps.Runner.InTx(ctx, fn)
		mapped = MapError(op, err)
		if mapped == nil || !domainagg.IsCode(mapped, domainagg.CodeRetryable) {
			break
		}
		if ctx.Err() != nil || attempt == attempts {
			break
		}
		deps.Hooks.IncRetry(op)
		deps.Log.Debug("retrying aggregate write", "op", op, "attempt", attempt, "error", err)
		if sleepErr := sleep(ctx, deps.Retry.backoff(attempt)); sleepErr != nil {
			break
		}
	}

	status := "success"
	if mapped != nil {
		status = aggregateErrorStatus(mapped)
		if domainagg.IsCode(mapped, domainagg.CodeConflict) {
			deps.Hooks.IncConflict(op)
		}
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(domainagg.CodeOf(MapError("aggregate.status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}
