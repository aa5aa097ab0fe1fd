package payment

import (
	"context"
	"time"

	"taicc-readiness/utilities"
)

// Poller checks an order for a captured payment a bounded number of times.
type Poller struct {
	Attempts int
	Interval time.Duration

	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewPoller(attempts int, interval time.Duration) *Poller {
	if attempts <= 0 {
		attempts = 1
	}
	return &Poller{Attempts: attempts, Interval: interval, sleep: sleepCtx}
}

// PollResult reports how a capture wait ended.
type PollResult struct {
	Captured bool
	Attempts int
}

// AwaitCapture polls until a payment on orderID is captured, the attempts
// run out, or ctx is done. Status-check errors count as not captured. The
// only error returned is ctx's.
func (p *Poller) AwaitCapture(ctx context.Context, gw Gateway, orderID string) (PollResult, error) {
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var res PollResult
	for i := 0; i < p.Attempts; i++ {
		if i > 0 {
			if err := sleep(ctx, p.Interval); err != nil {
				return res, err
			}
		}
		res.Attempts++

		statuses, err := gw.PaymentStatuses(ctx, orderID)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			utilities.Warn("Payment status check %d/%d for order %s failed: %v", res.Attempts, p.Attempts, orderID, err)
			continue
		}
		for _, s := range statuses {
			if s == StatusCaptured {
				res.Captured = true
				return res, nil
			}
		}
	}
	return res, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
