package registry

import (
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"
)

// breakerPool hands out one circuit breaker per registry host. A host that
// fails five times in a row is declared down and skipped until its backoff
// window elapses, so a dead registry costs one timeout instead of one per
// package.
type breakerPool struct {
	mu       sync.RWMutex
	breakers map[string]*circuit.Breaker
}

func newBreakerPool() *breakerPool {
	return &breakerPool{breakers: make(map[string]*circuit.Breaker)}
}

func (p *breakerPool) get(host string) *circuit.Breaker {
	p.mu.RLock()
	cb, ok := p.breakers[host]
	p.mu.RUnlock()
	if ok {
		return cb
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if cb, ok := p.breakers[host]; ok {
		return cb
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 30 * time.Second
	bo.MaxInterval = 5 * time.Minute
	bo.Multiplier = 2.0
	bo.Reset()

	cb = circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    bo,
		ShouldTrip: circuit.ThresholdTripFunc(5),
	})
	p.breakers[host] = cb
	return cb
}

// states reports each host's breaker as "open" or "closed".
func (p *breakerPool) states() map[string]string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[string]string, len(p.breakers))
	for host, cb := range p.breakers {
		if cb.Tripped() {
			out[host] = "open"
		} else {
			out[host] = "closed"
		}
	}
	return out
}
