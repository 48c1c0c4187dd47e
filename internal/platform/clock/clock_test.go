package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManualClock(t *testing.T) {
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	m := NewManual(start)
	require.Equal(t, start, m.Now())
	require.Equal(t, start, m.Tick(time.Second))
	require.Equal(t, start.Add(time.Second), m.Now())
	require.Equal(t, start.Add(3*time.Second), m.Advance(2*time.Second))
}

func TestSystemClockIsUTC(t *testing.T) {
	require.Equal(t, time.UTC, System().Now().Location())
}
