package clock

import (
	"sync"
	"time"
)

// Clock supplies wall time to writers so tests can pin created_at values.
type Clock interface {
	Now() time.Time
}

type system struct{}

// System returns a Clock reading the UTC wall clock.
func System() Clock { return system{} }

func (system) Now() time.Time { return time.Now().UTC() }

// Manual is a Clock that only moves when told to.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start.UTC()}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d and returns the new time.
func (m *Manual) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	return m.now
}

// Tick returns the current time and then advances by d, giving each caller a distinct instant.
func (m *Manual) Tick(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.now
	m.now = m.now.Add(d)
	return t
}
