package remote

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
)

// BreakerConfig holds circuit breaker configuration for the backend client.
type BreakerConfig struct {
	// Name identifies this breaker in metrics and logs.
	Name string

	// MaxRequests is the number of requests allowed in the half-open state.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state for clearing counts.
	Interval time.Duration

	// Timeout is how long the breaker stays open before moving to half-open.
	Timeout time.Duration

	// FailureRatio trips the breaker once reached (0.5 = 50% failures).
	FailureRatio float64

	// MinRequests is the minimum sample before the ratio is evaluated.
	MinRequests uint32
}

// DefaultBreakerConfig returns sensible defaults for the backend breaker.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

var breakerState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "backend_circuit_breaker_state",
		Help: "Current state of the backend circuit breaker (0=closed, 1=half-open, 2=open)",
	},
	[]string{"name"},
)

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// BreakerDoer wraps a Doer with circuit breaker protection. 5xx responses
// count as failures for trip accounting but still reach the caller intact,
// so status mapping stays with the client. A rejected request surfaces as a
// transport error and therefore as a NetworkError.
type BreakerDoer struct {
	inner   Doer
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

// serverStatusError carries a 5xx response through gobreaker's failure
// accounting without consuming it.
type serverStatusError struct {
	resp *http.Response
}

func (e *serverStatusError) Error() string {
	return fmt.Sprintf("server error %d", e.resp.StatusCode)
}

// NewBreakerDoer wraps an existing transport with a circuit breaker.
func NewBreakerDoer(inner Doer, cfg BreakerConfig, logger *slog.Logger) *BreakerDoer {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			breakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	}

	breakerState.WithLabelValues(cfg.Name).Set(0)

	return &BreakerDoer{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[*http.Response](settings),
	}
}

// Do executes the request through the breaker.
func (b *BreakerDoer) Do(req *http.Request) (*http.Response, error) {
	resp, err := b.breaker.Execute(func() (*http.Response, error) {
		resp, err := b.inner.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 && resp.StatusCode != http.StatusNotImplemented {
			return nil, &serverStatusError{resp: resp}
		}
		return resp, nil
	})

	var sse *serverStatusError
	if errors.As(err, &sse) {
		return sse.resp, nil
	}
	return resp, err
}

// State returns the breaker's current state.
func (b *BreakerDoer) State() gobreaker.State {
	return b.breaker.State()
}
