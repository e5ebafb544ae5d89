package engine

import (
	"context"
	"math"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// limiter throttles every request sent to the platform, process-wide.
var limiter atomic.Pointer[rate.Limiter]

func initLimiter(rps float64, burst int) {
	if rps <= 0 {
		limiter.Store(rate.NewLimiter(rate.Inf, 0))
		return
	}
	if burst < 1 {
		burst = int(math.Ceil(rps))
	}
	limiter.Store(rate.NewLimiter(rate.Limit(rps), burst))
}

func waitLimiter(ctx context.Context) error {
	l := limiter.Load()
	if l == nil {
		return nil
	}
	return l.Wait(ctx)
}

func init() {
	initLimiter(cfg.RateLimit, cfg.RateBurst)
}
