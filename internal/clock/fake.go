package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually advanced Clock. Callbacks run synchronously on the
// goroutine calling Advance, in due-time order.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	fake    *Fake
	when    time.Time
	seq     int
	fn      func()
	stopped bool
}

// NewFake returns a Fake clock set to start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the fake current time.
func (fake *Fake) Now() time.Time {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return fake.now
}

// AfterFunc registers f to run once the clock has advanced by d.
func (fake *Fake) AfterFunc(d time.Duration, f func()) Timer {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.seq++
	timer := &fakeTimer{fake: fake, when: fake.now.Add(d), seq: fake.seq, fn: f}
	fake.timers = append(fake.timers, timer)
	return timer
}

// Advance moves the clock forward by d, firing every callback that falls due.
// Callbacks scheduled while advancing fire too when they are due before the
// target time.
func (fake *Fake) Advance(d time.Duration) {
	fake.mu.Lock()
	target := fake.now.Add(d)
	fake.mu.Unlock()

	for {
		timer := fake.popDue(target)
		if timer == nil {
			break
		}
		timer.fn()
	}

	fake.mu.Lock()
	if target.After(fake.now) {
		fake.now = target
	}
	fake.mu.Unlock()
}

// Set jumps the clock to t without firing callbacks. Moving backwards
// simulates a wall clock correction.
func (fake *Fake) Set(t time.Time) {
	fake.mu.Lock()
	fake.now = t
	fake.mu.Unlock()
}

// Pending reports how many callbacks are scheduled and not stopped.
func (fake *Fake) Pending() int {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	count := 0
	for _, timer := range fake.timers {
		if !timer.stopped {
			count++
		}
	}
	return count
}

func (fake *Fake) popDue(target time.Time) *fakeTimer {
	fake.mu.Lock()
	defer fake.mu.Unlock()

	live := fake.timers[:0]
	for _, timer := range fake.timers {
		if !timer.stopped {
			live = append(live, timer)
		}
	}
	fake.timers = live
	if len(fake.timers) == 0 {
		return nil
	}

	sort.SliceStable(fake.timers, func(i, j int) bool {
		if fake.timers[i].when.Equal(fake.timers[j].when) {
			return fake.timers[i].seq < fake.timers[j].seq
		}
		return fake.timers[i].when.Before(fake.timers[j].when)
	})

	next := fake.timers[0]
	if next.when.After(target) {
		return nil
	}
	fake.timers = fake.timers[1:]
	next.stopped = true
	if next.when.After(fake.now) {
		fake.now = next.when
	}
	return next
}

func (timer *fakeTimer) Stop() bool {
	timer.fake.mu.Lock()
	defer timer.fake.mu.Unlock()
	if timer.stopped {
		return false
	}
	timer.stopped = true
	return true
}
