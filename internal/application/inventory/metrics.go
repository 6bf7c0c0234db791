package inventory

import (
	"context"
	"time"
)

// Metrics receives ledger and alert measurements.
// telemetry.StockMetrics implements it.
type Metrics interface {
	RecordMutation(ctx context.Context, op string, elapsed time.Duration, err error)
	RecordLockRetry(ctx context.Context, op string)
	RecordAlertRaised(ctx context.Context)
	RecordAlertResolved(ctx context.Context)
}

type noopMetrics struct{}

func (noopMetrics) RecordMutation(context.Context, string, time.Duration, error) {}
func (noopMetrics) RecordLockRetry(context.Context, string)                     {}
func (noopMetrics) RecordAlertRaised(context.Context)                           {}
func (noopMetrics) RecordAlertResolved(context.Context)                         {}
