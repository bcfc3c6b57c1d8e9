package requests

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Submitter hands a validated draft to whatever processes HR requests.
// It always resolves; a returned error is reported as a failed outcome.
type Submitter interface {
	Submit(ctx context.Context, draft Draft) (Outcome, error)
}

const (
	SubmittedMessage = "Your request has been submitted successfully and is now pending approval."
	FailedMessage    = "We couldn't submit your request right now. Please try again in a few moments."
)

// SimulatedSubmitter stands in for the request-processing service: after
// a pacing delay it fails with probability failureRate.
type SimulatedSubmitter struct {
	delay       time.Duration
	failureRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedSubmitter seeds its draws from seed; a zero seed picks a
// random one.
func NewSimulatedSubmitter(delay time.Duration, failureRate float64, seed uint64) *SimulatedSubmitter {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &SimulatedSubmitter{
		delay:       delay,
		failureRate: failureRate,
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (s *SimulatedSubmitter) Submit(ctx context.Context, draft Draft) (Outcome, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.fail() {
		return Outcome{Status: OutcomeFailed, Message: FailedMessage}, nil
	}
	return Outcome{Status: OutcomeSubmitted, Message: SubmittedMessage}, nil
}

func (s *SimulatedSubmitter) fail() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < s.failureRate
}
