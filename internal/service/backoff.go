package service

import (
	"context"
	"time"

	"gotriage/internal/config"
)

// RetryPolicy bounds how often one page is retried after a transient fault.
// MaxAttempts counts every request for the page, the first one included.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      float64
}

func RetryPolicyFromConfig(cfg config.FetchConfig) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: cfg.GetMaxAttempts(),
		BaseDelay:   cfg.GetRetryDelay(),
		MaxDelay:    cfg.GetMaxRetryDelay(),
		Jitter:      cfg.GetJitter(),
	}
}

// Delay returns the pause before retry number attempt (1-indexed): BaseDelay
// doubled per attempt, capped at MaxDelay, then spread by ±Jitter. rnd must
// return values in [0,1).
func (p RetryPolicy) Delay(attempt int, rnd func() float64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			break
		}
		d *= 2
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if p.Jitter > 0 && rnd != nil {
		spread := float64(d) * p.Jitter
		d = time.Duration(float64(d) - spread + 2*spread*rnd())
	}
	if d < 0 {
		return 0
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
