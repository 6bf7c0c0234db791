package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/erp/stockledger/internal/domain/shared"
)

// StockMetrics instruments the stock ledger and the alert monitor.
type StockMetrics struct {
	mutations      *Counter
	duration       *Histogram
	lockRetries    *Counter
	alertsRaised   *Counter
	alertsResolved *Counter
}

// NewStockMetrics registers the stock instruments on meter.
func NewStockMetrics(meter metric.Meter) (*StockMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var (
		m   StockMetrics
		err error
	)
	if m.mutations, err = NewCounter(meter, "stock_mutations_total", "Stock mutations by operation and outcome", "{mutation}"); err != nil {
		return nil, err
	}
	if m.duration, err = NewHistogram(meter, HistogramOpts{
		Name:        "stock_mutation_duration_seconds",
		Description: "Time spent inside a stock unit of work, retries included",
		Unit:        "s",
		Boundaries:  LatencyBuckets,
	}); err != nil {
		return nil, err
	}
	if m.lockRetries, err = NewCounter(meter, "stock_lock_retries_total", "Optimistic lock conflicts that were retried", "{retry}"); err != nil {
		return nil, err
	}
	if m.alertsRaised, err = NewCounter(meter, "stock_alerts_raised_total", "Low stock alerts opened", "{alert}"); err != nil {
		return nil, err
	}
	if m.alertsResolved, err = NewCounter(meter, "stock_alerts_resolved_total", "Low stock alerts closed", "{alert}"); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordMutation counts one finished operation and its latency.
func (m *StockMetrics) RecordMutation(ctx context.Context, op string, elapsed time.Duration, err error) {
	attrs := []attribute.KeyValue{AttrOperation.String(op)}
	if err != nil {
		attrs = append(attrs, AttrOutcome.String("error"), AttrErrorCode.String(errorCode(err)))
	} else {
		attrs = append(attrs, AttrOutcome.String("ok"))
	}
	m.mutations.Inc(ctx, attrs...)
	m.duration.RecordDuration(ctx, elapsed, AttrOperation.String(op))
}

// RecordLockRetry counts a retried version conflict.
func (m *StockMetrics) RecordLockRetry(ctx context.Context, op string) {
	m.lockRetries.Inc(ctx, AttrOperation.String(op))
}

// RecordAlertRaised counts a newly opened alert.
func (m *StockMetrics) RecordAlertRaised(ctx context.Context) {
	m.alertsRaised.Inc(ctx)
}

// RecordAlertResolved counts a closed alert.
func (m *StockMetrics) RecordAlertResolved(ctx context.Context) {
	m.alertsResolved.Inc(ctx)
}

func errorCode(err error) string {
	if code := shared.ErrorCode(err); code != "" {
		return code
	}
	return "INTERNAL"
}
