package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFake_AdvanceFiresInOrder(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	fake := NewFake(start)

	var fired []string
	fake.AfterFunc(2*time.Second, func() { fired = append(fired, "b") })
	fake.AfterFunc(time.Second, func() { fired = append(fired, "a") })
	fake.AfterFunc(5*time.Second, func() { fired = append(fired, "c") })

	fake.Advance(3 * time.Second)

	assert.Equal(t, []string{"a", "b"}, fired)
	assert.Equal(t, start.Add(3*time.Second), fake.Now())
	assert.Equal(t, 1, fake.Pending())
}

func TestFake_CallbackCanReschedule(t *testing.T) {
	fake := NewFake(time.Unix(0, 0))

	count := 0
	var tick func()
	tick = func() {
		count++
		fake.AfterFunc(time.Second, tick)
	}
	fake.AfterFunc(time.Second, tick)

	fake.Advance(10 * time.Second)

	assert.Equal(t, 10, count)
}

func TestFake_StoppedTimerDoesNotFire(t *testing.T) {
	fake := NewFake(time.Unix(0, 0))

	fired := false
	timer := fake.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	fake.Advance(time.Minute)
	assert.False(t, fired)
	assert.Equal(t, 0, fake.Pending())
}
