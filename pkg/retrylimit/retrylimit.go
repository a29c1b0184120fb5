// Package retrylimit wraps calls to a rate-limited remote API with an
// adaptive token bucket and bounded retries.
//
//	lim := retrylimit.NewAdaptiveLimiter(5, 1, 20)
//	err := retrylimit.Do(ctx, lim, retrylimit.Config{Classify: classify}, func(ctx context.Context) error {
//	    return fetch(ctx)
//	})
package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// AdaptiveLimiter halves its rate when the remote side pushes back and
// creeps back up after a quiet period.
type AdaptiveLimiter struct {
	mu        sync.Mutex
	limiter   *rate.Limiter
	min, max  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	cooldown  time.Duration
	lastError time.Time
	now       func() time.Time
}

// NewAdaptiveLimiter starts at initial requests per second, clamped to
// [min, max].
func NewAdaptiveLimiter(initial, min, max float64) *AdaptiveLimiter {
	if min < 0.1 {
		min = 0.1
	}
	if max < min {
		max = min
	}
	initial = clamp(initial, min, max)
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(rate.Limit(initial), burstFor(rate.Limit(initial))),
		min:      rate.Limit(min),
		max:      rate.Limit(max),
		stepUp:   1,
		stepDown: 0.5,
		cooldown: 10 * time.Second,
		now:      time.Now,
	}
}

// Wait blocks until a request may be made or ctx is done.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success raises the rate by one step unless the limiter was throttled within
// the cooldown.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.now().Sub(a.lastError) > a.cooldown {
		a.set(a.limiter.Limit() + a.stepUp)
	}
}

// Throttle lowers the rate after the remote side reported overload.
func (a *AdaptiveLimiter) Throttle() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = a.now()
	a.set(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// Limit returns the current rate in requests per second.
func (a *AdaptiveLimiter) Limit() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return float64(a.limiter.Limit())
}

func (a *AdaptiveLimiter) set(l rate.Limit) {
	l = rate.Limit(clamp(float64(l), float64(a.min), float64(a.max)))
	if l != a.limiter.Limit() {
		a.limiter.SetLimit(l)
		a.limiter.SetBurst(burstFor(l))
	}
}

func burstFor(l rate.Limit) int {
	return max(1, int(l))
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}

// Decision says what Do should do with a failed attempt.
type Decision int

const (
	// Stop returns the error to the caller.
	Stop Decision = iota
	// Retry backs off and tries again.
	Retry
	// Throttle slows the limiter down, then retries.
	Throttle
)

// Classifier maps an attempt's error to a Decision.
type Classifier func(error) Decision

// Config bounds the retry loop. Zero fields take the defaults of
// DefaultConfig.
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Classify     Classifier
}

// DefaultConfig suits interactive lookups: a few quick attempts.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     2 * time.Second,
	}
}

// ErrExhausted wraps the last error once MaxAttempts is reached.
var ErrExhausted = errors.New("retrylimit: attempts exhausted")

// Do calls fn until it succeeds, the classifier says Stop, ctx is done or the
// attempts run out. lim may be nil.
func Do(ctx context.Context, lim *AdaptiveLimiter, cfg Config, fn func(ctx context.Context) error) error {
	def := DefaultConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = def.InitialDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	if cfg.Classify == nil {
		cfg.Classify = func(error) Decision { return Stop }
	}

	delay := cfg.InitialDelay
	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if lim != nil {
			if werr := lim.Wait(ctx); werr != nil {
				return werr
			}
		}

		err = fn(ctx)
		if err == nil {
			if lim != nil {
				lim.Success()
			}
			return nil
		}

		switch cfg.Classify(err) {
		case Stop:
			return err
		case Throttle:
			if lim != nil {
				lim.Throttle()
			}
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		event := log.Debug().Err(err).Int("attempt", attempt).Dur("delay", delay)
		if lim != nil {
			event = event.Float64("limit", lim.Limit())
		}
		event.Msg("Retrying request")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(jitter(delay)):
		}
		delay = min(time.Duration(float64(delay)*2), cfg.MaxDelay)
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, cfg.MaxAttempts, err)
}

// jitter adds up to 25% to d.
func jitter(d time.Duration) time.Duration {
	if d < 4 {
		return d
	}
	return d + rand.N(d/4)
}
