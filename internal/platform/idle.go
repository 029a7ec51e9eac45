package platform

import (
	"time"

	"pomodoro/internal/core/timekeeper"
)

// IdleProvider returns the duration since last user input.
type IdleProvider interface {
	IdleDuration() (time.Duration, error)
}

var _ timekeeper.IdleChecker = IdleProvider(nil)

// NewIdleProvider returns a platform-specific idle provider. Systems without
// a usable source report timekeeper.ErrIdleUnsupported, which turns the idle
// pause off for the session.
func NewIdleProvider() IdleProvider {
	return newIdleProvider()
}

type unsupportedIdleProvider struct{}

func (unsupportedIdleProvider) IdleDuration() (time.Duration, error) {
	return 0, timekeeper.ErrIdleUnsupported
}
