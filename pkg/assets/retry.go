package assets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-trackdrive/pkg/config"
	"github.com/opd-ai/go-trackdrive/pkg/logging"
)

// RetryLoader wraps a Loader with retries and a circuit breaker. Once the
// wrapped loader fails MaxConsecutiveFails times in a row, loads fail fast
// until the breaker timeout has passed.
type RetryLoader struct {
	next    Loader
	breaker *gobreaker.CircuitBreaker
	retries int
	delay   time.Duration
	logger  *logging.Logger
}

// NewRetryLoader wraps next using the retry settings in cfg.
func NewRetryLoader(next Loader, cfg config.LoadingConfig, logger *logging.Logger) *RetryLoader {
	if logger == nil {
		logger = logging.NewLogger()
	}
	maxFails := cfg.MaxConsecutiveFails
	if maxFails <= 0 {
		maxFails = 1
	}

	settings := gobreaker.Settings{
		Name:    "asset-loader",
		Timeout: time.Duration(cfg.BreakerTimeout * float64(time.Second)),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(maxFails)
		},
		IsSuccessful: func(err error) bool {
			// A missing asset says nothing about the loader's health.
			return err == nil || errors.Is(err, ErrUnknownAsset) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info(context.Background(), "Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &RetryLoader{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker(settings),
		retries: max(cfg.Retries, 0),
		delay:   time.Duration(cfg.RetryDelay * float64(time.Second)),
		logger:  logger,
	}
}

// Load implements Loader. Unknown assets and cancellations are not retried.
func (l *RetryLoader) Load(ctx context.Context, path string) (*Model, error) {
	var lastErr error
	for attempt := 0; attempt <= l.retries; attempt++ {
		m, err := l.load(ctx, path)
		if err == nil {
			return m, nil
		}
		lastErr = err

		if errors.Is(err, ErrUnknownAsset) || ctx.Err() != nil {
			return nil, err
		}
		if errors.Is(err, gobreaker.ErrOpenState) {
			l.logger.Warn(ctx, "Asset loader circuit is open, skipping retries",
				"path", path,
				"attempt", attempt+1,
			)
			return nil, err
		}
		if attempt == l.retries {
			break
		}

		delay := time.Duration(attempt+1) * l.delay
		l.logger.Warn(ctx, "Asset load failed, retrying",
			"path", path,
			"attempt", attempt+1,
			"max_attempts", l.retries+1,
			"delay", delay.String(),
			"error", err.Error(),
		)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("retry cancelled: %w", ctx.Err())
		}
	}

	if l.retries == 0 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("load %q failed after %d attempts: %w", path, l.retries+1, lastErr)
}

func (l *RetryLoader) load(ctx context.Context, path string) (*Model, error) {
	v, err := l.breaker.Execute(func() (interface{}, error) {
		return l.next.Load(ctx, path)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Model), nil
}

// State returns the circuit breaker state.
func (l *RetryLoader) State() gobreaker.State {
	return l.breaker.State()
}
