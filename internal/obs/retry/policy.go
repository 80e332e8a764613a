package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// SendPolicy is the in-cycle policy for outbound deliveries: a few
// quick attempts with jittered backoff. Anything still failing after
// that is left for the next scan cycle.
func SendPolicy(name string, attempts int, retryable func(error) bool, log *zap.Logger) Policy {
	if attempts <= 0 {
		attempts = 3
	}
	return Policy{
		Name:      name,
		Attempts:  attempts,
		Backoff:   ExpoJitter{Base: 500 * time.Millisecond, Max: 10 * time.Second, Jitter: 0.2},
		Retryable: retryable,
		OnAttempt: func(i int, err error) {
			if log != nil {
				log.Warn("send retry", zap.Int("attempt", i+1), zap.Error(err))
			}
		},
		OnExhaust: func(err error) {
			if log != nil && !errors.Is(err, context.Canceled) {
				log.Warn("send retries exhausted", zap.Error(err))
			}
		},
	}
}
