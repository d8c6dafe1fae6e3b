package maintenance

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hindusthan/agriserve/internal/services"
	"github.com/hindusthan/agriserve/pkg/logger"
)

const defaultPurgeSpec = "@hourly"

// Cleaner runs background housekeeping, currently the periodic purge of
// expired one-time verification codes.
type Cleaner struct {
	otps *services.OTPService
	cron *cron.Cron
	now  func() time.Time
	log  *zap.Logger

	purgeSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for purge comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithPurgeSchedule overrides the cron specification for the code purge.
func WithPurgeSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.purgeSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner.
func NewCleaner(otps *services.OTPService, opts ...Option) (*Cleaner, error) {
	if otps == nil {
		return nil, errors.New("maintenance: otp service is required")
	}

	cleaner := &Cleaner{
		otps:          otps,
		now:           time.Now,
		purgeSchedule: defaultPurgeSpec,
		log:           logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner, nil
}

// Start registers the purge job with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if _, err := c.cron.AddFunc(c.purgeSchedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("otp purge failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes the purge immediately. Used by the scheduler, in tests,
// and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	purged, err := c.otps.PurgeExpired(ctx, c.now())
	if err != nil {
		errs = multierr.Append(errs, err)
	} else if purged > 0 {
		c.log.Info("purged expired verification codes", zap.Int64("count", purged))
	}

	return errs
}
