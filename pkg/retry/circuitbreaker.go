package retry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CircuitBreakerState represents the state of the circuit breaker
type CircuitBreakerState int

const (
	// StateClosed - requests are allowed
	StateClosed CircuitBreakerState = iota
	// StateOpen - requests are rejected
	StateOpen
	// StateHalfOpen - limited requests are allowed to probe recovery
	StateHalfOpen
)

func (s CircuitBreakerState) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// CircuitBreakerConfig holds circuit breaker configuration
type CircuitBreakerConfig struct {
	Name             string        // Name for logging
	MaxFailures      int           // Consecutive failures before opening
	ResetTimeout     time.Duration // Time to wait before transitioning to half-open
	SuccessThreshold int           // Successes needed to close from half-open
	Logger           *zap.Logger
}

// DefaultCircuitBreakerConfig returns a default circuit breaker configuration
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxFailures:      5,
		ResetTimeout:     60 * time.Second,
		SuccessThreshold: 3,
		Logger:           zap.NewNop(),
	}
}

// CircuitBreaker implements the circuit breaker pattern
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mutex                sync.Mutex
	state                CircuitBreakerState
	consecutiveFailures  int
	consecutiveSuccesses int
	openedAt             time.Time
}

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
	}
}

// Execute runs fn with circuit breaker protection.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	if !cb.allowRequest() {
		return fmt.Errorf("circuit breaker %s is OPEN", cb.config.Name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := fn()
	cb.recordResult(err == nil)
	return err
}

// State returns the current state.
func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) allowRequest() bool {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Since(cb.openedAt) >= cb.config.ResetTimeout {
			cb.transition(StateHalfOpen)
			return true
		}
		return false
	case StateHalfOpen:
		return true
	default:
		return false
	}
}

func (cb *CircuitBreaker) recordResult(success bool) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if success {
		cb.consecutiveFailures = 0
		cb.consecutiveSuccesses++
		if cb.state == StateHalfOpen && cb.consecutiveSuccesses >= cb.config.SuccessThreshold {
			cb.transition(StateClosed)
		}
		return
	}

	cb.consecutiveSuccesses = 0
	cb.consecutiveFailures++
	if cb.state == StateHalfOpen || cb.consecutiveFailures >= cb.config.MaxFailures {
		cb.openedAt = time.Now()
		cb.transition(StateOpen)
	}
}

func (cb *CircuitBreaker) transition(to CircuitBreakerState) {
	if cb.state == to {
		return
	}
	cb.config.Logger.Info("Circuit breaker state change",
		zap.String("name", cb.config.Name),
		zap.String("from", cb.state.String()),
		zap.String("to", to.String()))
	cb.state = to
	cb.consecutiveFailures = 0
	cb.consecutiveSuccesses = 0
}
