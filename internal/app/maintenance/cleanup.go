package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/docsentry/docsentry/internal/cache"
	"github.com/docsentry/docsentry/pkg/logger"
	"github.com/docsentry/docsentry/pkg/metrics"
)

const defaultPurgeSpec = "@every 10m"

// Cleaner purges expired rows from the database-backed cache store. Redis
// expires its own keys; the cache_entries table only sheds rows lazily on
// read, so a periodic sweep keeps it from accumulating dead entries.
type Cleaner struct {
	store *cache.DatabaseStore
	cron  *cron.Cron
	now   func() time.Time
	log   *zap.Logger

	schedule string
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

// WithNow overrides the clock used for expiry comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithSchedule overrides the cron specification for the purge job.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner. A nil store disables the purge job.
func NewCleaner(store *cache.DatabaseStore, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		store:    store,
		now:      time.Now,
		schedule: defaultPurgeSpec,
		log:      logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers the purge job and launches the scheduler.
func (c *Cleaner) Start() error {
	if c.store == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("cache entry purge failed", zap.Error(err))
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

// RunOnce executes the purge synchronously. Used by the scheduler, tests, and
// graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	if c.store != nil {
		purged, err := c.store.PurgeExpired(ctx, c.now())
		if err != nil {
			errs = multierr.Append(errs, err)
		} else if purged > 0 {
			metrics.CacheEvictions.WithLabelValues("expired").Add(float64(purged))
			c.log.Info("purged expired cache entries", zap.Int64("count", purged))
		}
	}
	return errs
}
