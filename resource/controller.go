// Package resource bounds the throughput and concurrency of blob transfers.
package resource

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds transfer limits. Zero values disable a limit.
type Config struct {
	// BytesPerSec caps the combined read and write throughput.
	BytesPerSec int64 `yaml:"bytes_per_sec"`

	// MaxConcurrent caps the number of transfers in flight.
	MaxConcurrent int64 `yaml:"max_concurrent"`
}

// Controller enforces a Config. A nil Controller imposes no limits.
type Controller struct {
	cfg     Config
	sem     *semaphore.Weighted // nil if unlimited
	limiter *rate.Limiter       // nil if unlimited
}

// NewController creates a controller for cfg.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}
	if cfg.MaxConcurrent > 0 {
		c.sem = semaphore.NewWeighted(cfg.MaxConcurrent)
	}
	if cfg.BytesPerSec > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.BytesPerSec), int(cfg.BytesPerSec))
	}
	return c
}

// Config returns the limits in effect.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// Acquire reserves a transfer slot, blocking until one is free or ctx is done.
func (c *Controller) Acquire(ctx context.Context) error {
	if c == nil || c.sem == nil {
		return nil
	}
	return c.sem.Acquire(ctx, 1)
}

// TryAcquire reserves a transfer slot without blocking.
func (c *Controller) TryAcquire() bool {
	if c == nil || c.sem == nil {
		return true
	}
	return c.sem.TryAcquire(1)
}

// Release returns a slot taken by Acquire or TryAcquire.
func (c *Controller) Release() {
	if c == nil || c.sem == nil {
		return
	}
	c.sem.Release(1)
}

// WaitIO blocks until n bytes may be transferred. Requests larger than one
// second of budget are split so they never exceed the limiter burst.
func (c *Controller) WaitIO(ctx context.Context, n int) error {
	if c == nil || c.limiter == nil {
		return nil
	}
	burst := c.limiter.Burst()
	for n > 0 {
		chunk := min(n, burst)
		if err := c.limiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}
