package service

import (
	"sync"
	"time"
)

// Clock drives the attempt countdown. The engine never touches time.Ticker
// directly so its transitions can be exercised tick by tick in tests.
type Clock interface {
	Now() time.Time
	Start(interval time.Duration, tick func())
	Stop()
}

// TickerClock is the production Clock, one goroutine per live attempt.
type TickerClock struct {
	mu   sync.Mutex
	done chan struct{}
}

func NewTickerClock() *TickerClock {
	return &TickerClock{}
}

func (c *TickerClock) Now() time.Time {
	return time.Now()
}

func (c *TickerClock) Start(interval time.Duration, tick func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done != nil {
		return
	}
	done := make(chan struct{})
	c.done = done

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				tick()
			case <-done:
				return
			}
		}
	}()
}

func (c *TickerClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done == nil {
		return
	}
	close(c.done)
	c.done = nil
}
