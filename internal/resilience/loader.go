package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/tour-inventory/internal/catalog"
)

// Loader retries a catalog.Loader with backoff behind a Breaker so an
// unreachable database fails refreshes fast instead of piling up.
type Loader struct {
	Next        catalog.Loader
	Breaker     *Breaker
	Attempts    int
	BaseBackoff time.Duration
	Jitter      float64
	Log         zerolog.Logger
}

// LoadCatalog implements catalog.Loader.
func (l Loader) LoadCatalog(ctx context.Context) (catalog.Data, error) {
	if l.Next == nil {
		return catalog.Data{}, errors.New("resilience: loader not configured")
	}
	attempts := max(l.Attempts, 1)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if l.Breaker != nil && !l.Breaker.Allow(ctx) {
			LoaderAttempts.WithLabelValues("rejected").Inc()
			if lastErr != nil {
				return catalog.Data{}, fmt.Errorf("%w: %w", ErrOpenCircuit, lastErr)
			}
			return catalog.Data{}, ErrOpenCircuit
		}
		data, err := l.Next.LoadCatalog(ctx)
		if l.Breaker != nil {
			l.Breaker.Report(ctx, err == nil)
		}
		if err == nil {
			LoaderAttempts.WithLabelValues("ok").Inc()
			return data, nil
		}
		LoaderAttempts.WithLabelValues("error").Inc()
		lastErr = err
		if attempt == attempts || ctx.Err() != nil {
			break
		}
		wait := Backoff(l.BaseBackoff, attempt, l.Jitter)
		l.Log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("catalog load failed")
		select {
		case <-ctx.Done():
			return catalog.Data{}, errors.Join(lastErr, ctx.Err())
		case <-time.After(wait):
		}
	}
	return catalog.Data{}, lastErr
}
