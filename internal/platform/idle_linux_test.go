//go:build linux

package platform

import (
	"testing"
	"time"

	"pomodoro/internal/core/timekeeper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIdleMillis(t *testing.T) {
	tests := []struct {
		output string
		want   time.Duration
	}{
		{"1500\n", 1500 * time.Millisecond},
		{"(uint64 300000,)\n", 5 * time.Minute},
		{"-4", 0},
	}
	for _, tt := range tests {
		got, err := parseIdleMillis(tt.output)
		require.NoError(t, err, tt.output)
		assert.Equal(t, tt.want, got)
	}

	_, err := parseIdleMillis("Error: no such name")
	assert.Error(t, err)
}

func TestNewIdleProvider(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := NewIdleProvider().IdleDuration()
	assert.ErrorIs(t, err, timekeeper.ErrIdleUnsupported)
}
