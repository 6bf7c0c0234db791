package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// AlertSweeper re-evaluates open low stock alerts against current stock
type AlertSweeper interface {
	Reconcile(ctx context.Context) (int, error)
}

// AlertReconcilerConfig holds configuration for the alert reconciler
type AlertReconcilerConfig struct {
	Enabled bool
	// Interval between sweeps
	Interval time.Duration
	// RunTimeout bounds a single sweep
	RunTimeout time.Duration
}

// DefaultAlertReconcilerConfig returns default configuration
func DefaultAlertReconcilerConfig() AlertReconcilerConfig {
	return AlertReconcilerConfig{
		Enabled:    true,
		Interval:   5 * time.Minute,
		RunTimeout: time.Minute,
	}
}

// Validate checks the configuration
func (c AlertReconcilerConfig) Validate() error {
	if c.Interval < time.Second {
		return fmt.Errorf("%w: interval must be at least 1s", ErrInvalidConfig)
	}
	if c.RunTimeout <= 0 {
		return fmt.Errorf("%w: run timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// AlertReconciler periodically resolves alerts whose stock has recovered
// outside the normal mutation path.
type AlertReconciler struct {
	sweeper   AlertSweeper
	logger    *zap.Logger
	config    AlertReconcilerConfig
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	runs      int
}

// NewAlertReconciler creates a new alert reconciler
func NewAlertReconciler(sweeper AlertSweeper, logger *zap.Logger, config AlertReconcilerConfig) *AlertReconciler {
	return &AlertReconciler{
		sweeper: sweeper,
		logger:  logger,
		config:  config,
	}
}

// Start launches the sweep loop. It is a no-op when disabled or already running.
func (r *AlertReconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.isRunning {
		r.mu.Unlock()
		return nil
	}
	if !r.config.Enabled {
		r.mu.Unlock()
		r.logger.Info("Alert reconciler is disabled")
		return nil
	}
	if err := r.config.Validate(); err != nil {
		r.mu.Unlock()
		return err
	}
	r.isRunning = true
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mu.Unlock()

	r.wg.Add(1)
	go r.loop(ctx)

	r.logger.Info("Alert reconciler started", zap.Duration("interval", r.config.Interval))
	return nil
}

// Stop cancels the loop and waits for an in-flight sweep, bounded by ctx
func (r *AlertReconciler) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.isRunning {
		r.mu.Unlock()
		return nil
	}
	r.isRunning = false
	cancel := r.cancel
	r.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("Alert reconciler stopped gracefully")
		return nil
	case <-ctx.Done():
		r.logger.Warn("Alert reconciler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active
func (r *AlertReconciler) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isRunning
}

// Runs returns the number of completed sweeps
func (r *AlertReconciler) Runs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs
}

// RunOnce performs a single sweep immediately
func (r *AlertReconciler) RunOnce(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.RunTimeout)
	defer cancel()

	start := time.Now()
	resolved, err := r.sweeper.Reconcile(ctx)

	r.mu.Lock()
	r.runs++
	r.mu.Unlock()

	if err != nil {
		r.logger.Error("Alert reconciliation failed",
			zap.Int("resolved", resolved),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return resolved, err
	}
	r.logger.Info("Alert reconciliation completed",
		zap.Int("resolved", resolved),
		zap.Duration("duration", time.Since(start)),
	)
	return resolved, nil
}

func (r *AlertReconciler) loop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("Alert reconciler loop stopping")
			return
		case <-ticker.C:
			_, _ = r.RunOnce(ctx)
		}
	}
}
