// Package politeness inserts jittered delays between requests. lrytas.lt
// publishes no rate limits, so randomized multi-second pauses are the only
// protection against throttling and blocking.
package politeness

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Range bounds one uniform delay draw.
type Range struct {
	Min time.Duration
	Max time.Duration
}

// Config holds the two delay classes. Short runs before every page fetch;
// Long runs after unproductive queries and after large batches.
type Config struct {
	Short Range
	Long  Range
	// Seed fixes the jitter for tests. Zero seeds from the clock.
	Seed int64
}

// Jittered draws uniformly from the configured ranges and sleeps,
// context-aware. Debug runs swap in much shorter ranges via config without
// touching any code path.
type Jittered struct {
	cfg    Config
	rng    *rand.Rand
	logger *zap.Logger
}

// New validates the ranges and builds a Jittered delayer.
func New(cfg Config, logger *zap.Logger) (*Jittered, error) {
	for name, r := range map[string]Range{"short": cfg.Short, "long": cfg.Long} {
		if r.Min <= 0 || r.Max < r.Min {
			return nil, fmt.Errorf("invalid %s delay range [%s, %s]", name, r.Min, r.Max)
		}
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Jittered{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger,
	}, nil
}

// Short pauses before a page fetch.
func (j *Jittered) Short(ctx context.Context) error {
	return j.pause(ctx, j.draw(j.cfg.Short))
}

// Long pauses after an unproductive query or a full batch.
func (j *Jittered) Long(ctx context.Context) error {
	d := j.draw(j.cfg.Long)
	j.logger.Debug("long delay", zap.Duration("duration", d))
	return j.pause(ctx, d)
}

func (j *Jittered) draw(r Range) time.Duration {
	if r.Max == r.Min {
		return r.Min
	}
	return r.Min + time.Duration(j.rng.Int63n(int64(r.Max-r.Min)))
}

func (j *Jittered) pause(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("delay interrupted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
