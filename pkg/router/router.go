package router

import (
	"sync"
	"time"
)

type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

const (
	DefaultFailureThreshold = 3
	DefaultRecoveryTimeout  = 5 * time.Minute
)

// Circuit tracks the health of a single backend. After a run of consecutive
// failures it opens and the backend is skipped until the recovery timeout
// has passed; the next request then decides whether it closes again.
type Circuit struct {
	mu sync.Mutex

	state               CircuitState
	consecutiveFailures int
	lastFailure         time.Time

	totalRequests int64
	totalFailures int64

	now func() time.Time
}

func NewCircuit() *Circuit {
	return &Circuit{
		state: CircuitClosed,
		now:   time.Now,
	}
}

// IsAvailable reports whether a request may be sent. An open circuit whose
// recovery timeout has passed moves to half-open.
func (c *Circuit) IsAvailable(recoveryTimeout time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != CircuitOpen {
		return true
	}

	if c.now().Sub(c.lastFailure) < recoveryTimeout {
		return false
	}

	c.state = CircuitHalfOpen
	return true
}

func (c *Circuit) RecordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalRequests++
	c.consecutiveFailures = 0

	c.state = CircuitClosed
}

func (c *Circuit) RecordFailure(failureThreshold int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalRequests++
	c.totalFailures++
	c.consecutiveFailures++
	c.lastFailure = c.now()

	if c.state == CircuitHalfOpen || c.consecutiveFailures >= failureThreshold {
		c.state = CircuitOpen
	}
}

func (c *Circuit) State() CircuitState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

func (c *Circuit) Stats() (requests, failures int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.totalRequests, c.totalFailures
}
