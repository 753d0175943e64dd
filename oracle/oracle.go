// Package oracle defines the boundary to the external scoring model and
// validates what comes back across it.
package oracle

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/use-agent/aeoaudit/models"
)

// Prompts is one oracle request.
type Prompts struct {
	System string
	User   string
}

// Oracle returns the raw completion text for a pair of prompts.
// Implementations may return *models.AuditError to classify failures.
type Oracle interface {
	Complete(ctx context.Context, p Prompts) (string, error)
}

// Func adapts a plain function to the Oracle interface.
type Func func(ctx context.Context, p Prompts) (string, error)

func (f Func) Complete(ctx context.Context, p Prompts) (string, error) {
	return f(ctx, p)
}

// Call invokes o once under timeout. Deadline and cancellation surface as
// ORACLE_TIMEOUT, unclassified failures as ORACLE_CALL_FAILED. Errors that
// are already *models.AuditError pass through. Call never retries.
func Call(ctx context.Context, o Oracle, p Prompts, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := o.Complete(ctx, p)
	if err == nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			// A late answer after the deadline is still a timeout.
			err = ctxErr
		}
	}
	if err == nil {
		slog.Debug("oracle: completion received",
			"elapsed", time.Since(start), "bytes", len(raw),
		)
		return raw, nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || ctx.Err() != nil {
		slog.Warn("oracle: call timed out", "elapsed", time.Since(start), "error", err)
		return "", models.NewAuditError(models.ErrCodeOracleTimeout, "oracle call timed out or was cancelled", err)
	}

	var ae *models.AuditError
	if errors.As(err, &ae) {
		slog.Warn("oracle: call failed", "code", ae.Code, "error", err)
		return "", ae
	}

	slog.Warn("oracle: call failed", "error", err)
	return "", models.NewAuditError(models.ErrCodeOracleCall, "oracle call failed", err)
}
