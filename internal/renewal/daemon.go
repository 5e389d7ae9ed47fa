// Package renewal keeps the reverse proxy's TLS material valid: a periodic,
// cancellable loop that attempts renewal and signals the proxy to reload
// when new material lands. It runs forever, independent of the release
// pipeline, and a failed attempt never stops the loop.
package renewal

import (
	"context"
	"time"

	"log/slog"
)

// Renewer performs one renewal attempt. Attempts are idempotent: when the
// certificate is not yet near expiry the renewer reports renewed=false
// without touching any files.
type Renewer interface {
	Renew(ctx context.Context) (renewed bool, err error)
}

// Reloader signals the reverse proxy to pick up new TLS material.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Daemon is the periodic renewal loop.
type Daemon struct {
	renewer        Renewer
	reloader       Reloader
	logger         *slog.Logger
	period         time.Duration
	attemptTimeout time.Duration
	metrics        *Metrics
}

// New creates a renewal daemon ticking at the given period.
func New(renewer Renewer, reloader Reloader, logger *slog.Logger, period, attemptTimeout time.Duration, metrics *Metrics) *Daemon {
	if period <= 0 {
		period = 12 * time.Hour
	}
	return &Daemon{
		renewer:        renewer,
		reloader:       reloader,
		logger:         logger,
		period:         period,
		attemptTimeout: attemptTimeout,
		metrics:        metrics,
	}
}

// Run attempts a renewal immediately, then once per period until the context
// is cancelled. It always returns nil after a clean shutdown.
func (d *Daemon) Run(ctx context.Context) error {
	d.tick(ctx)
	ticker := time.NewTicker(d.period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("renewal daemon stopping")
			return nil
		case <-ticker.C:
			d.tick(ctx)
		}
	}
}

func (d *Daemon) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	attemptCtx := ctx
	if d.attemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, d.attemptTimeout)
		defer cancel()
	}

	renewed, err := d.renewer.Renew(attemptCtx)
	if err != nil {
		d.logger.Error("renewal attempt failed", "error", err)
		d.metrics.recordTick("failure")
		return
	}
	if !renewed {
		d.logger.Info("certificates not due for renewal")
		d.metrics.recordTick("not_due")
		return
	}
	d.logger.Info("certificates renewed, reloading proxy")
	if err := d.reloader.Reload(attemptCtx); err != nil {
		d.logger.Error("proxy reload failed", "error", err)
		d.metrics.recordTick("reload_failure")
		return
	}
	d.metrics.recordTick("renewed")
	d.metrics.recordReload()
}
