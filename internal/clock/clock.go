// Package clock abstracts wall-clock time so the lifecycle engine and
// the sweeper can be tested against a frozen instant.  All times are
// UTC; the database stores UTC as well (see database.Open).
package clock

import "time"

// Clock supplies the current time to components that compare deadlines.
type Clock interface {
    Now() time.Time
}

// System returns a Clock backed by time.Now in UTC.
func System() Clock { return systemClock{} }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Fixed returns a Clock frozen at t.  Intended for tests.
func Fixed(t time.Time) *FixedClock { return &FixedClock{now: t.UTC()} }

// FixedClock is a settable frozen clock.  Advance moves it forward,
// which lets tests walk a reservation past its deadline.
type FixedClock struct {
    now time.Time
}

func (f *FixedClock) Now() time.Time { return f.now }

// Advance moves the frozen instant forward by d.
func (f *FixedClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

// Set pins the frozen instant to t.
func (f *FixedClock) Set(t time.Time) { f.now = t.UTC() }
