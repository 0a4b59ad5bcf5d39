package ledger

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy reintentos ante conflicto de numeración: espera aleatoria uniforme en [MinDelay, MaxDelay].
type RetryPolicy struct {
	MaxAttempts int
	MinDelay    time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy 3 intentos con espera de 50 a 150 ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, MinDelay: 50 * time.Millisecond, MaxDelay: 150 * time.Millisecond}
}

// backOff intervalo constante (Multiplier 1) con jitter simétrico alrededor del punto medio.
func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = (p.MinDelay + p.MaxDelay) / 2
	b.MaxInterval = p.MaxDelay
	b.Multiplier = 1
	b.RandomizationFactor = 0
	if sum := p.MinDelay + p.MaxDelay; sum > 0 {
		b.RandomizationFactor = float64(p.MaxDelay-p.MinDelay) / float64(sum)
	}
	b.MaxElapsedTime = 0
	b.Reset()

	retries := p.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}
