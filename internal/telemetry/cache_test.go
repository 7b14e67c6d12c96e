package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCache_EmptyIsUnknown(t *testing.T) {
	s := NewCache(0).Snapshot()

	_, err := s.ActionPriority()
	require.ErrorIs(t, err, ErrSignalUnavailable)
	_, err = s.AffectState()
	require.ErrorIs(t, err, ErrSignalUnavailable)
	_, err = s.MotivationDrives()
	require.ErrorIs(t, err, ErrSignalUnavailable)
	_, err = s.TimeOfDay()
	require.ErrorIs(t, err, ErrSignalUnavailable)
	_, err = s.Frame(CameraLeft)
	require.ErrorIs(t, err, ErrSignalUnavailable)
}

func TestCache_SnapshotIsACopy(t *testing.T) {
	c := NewCache(0)
	in := []float64{0.1, 0.2}
	c.SetDrives(in)
	in[0] = 9

	s := c.Snapshot()
	d, err := s.MotivationDrives()
	require.NoError(t, err)
	require.Equal(t, []float64{0.1, 0.2}, d)

	d[1] = 7
	d2, _ := c.Snapshot().MotivationDrives()
	require.Equal(t, []float64{0.1, 0.2}, d2)
}

func TestCache_TTLExpiresValues(t *testing.T) {
	now := time.Unix(1000, 0)
	c := NewCache(time.Second).WithClock(func() time.Time { return now })
	c.SetHour(7)
	c.SetAffect(Affect{Mood: &Pair{X: 0.5, Y: 0.5}})

	h, err := c.Snapshot().TimeOfDay()
	require.NoError(t, err)
	require.Equal(t, 7, h)

	now = now.Add(2 * time.Second)
	_, err = c.Snapshot().TimeOfDay()
	require.ErrorIs(t, err, ErrSignalUnavailable)
	_, err = c.Snapshot().AffectState()
	require.ErrorIs(t, err, ErrSignalUnavailable)
}

func TestSimSource_ProducesEveryChannel(t *testing.T) {
	now := time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)
	s := NewSimSource(8, 2, func() time.Time { return now }).Snapshot()

	p, err := s.ActionPriority()
	require.NoError(t, err)
	require.Len(t, p, 8)
	d, err := s.MotivationDrives()
	require.NoError(t, err)
	require.Len(t, d, 2)
	h, err := s.TimeOfDay()
	require.NoError(t, err)
	require.Equal(t, 13, h)
	for _, id := range FrameIDs {
		_, err := s.Frame(id)
		require.NoError(t, err, id)
	}
}
