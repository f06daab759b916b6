package db

import (
	"sync"
	"time"
)

// IDGenerator hands out millisecond timestamps, bumped by one whenever the
// clock has not advanced past the last id, so ids are strictly increasing
// within a process.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator returns a generator driven by the wall clock.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// Next returns a fresh id.
func (g *IDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// Observe makes sure later ids are greater than id. Used at startup so a clock
// that moved backwards cannot reissue an id already on disk.
func (g *IDGenerator) Observe(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id > g.last {
		g.last = id
	}
}
