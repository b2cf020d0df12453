package service

import (
	"sync/atomic"
	"testing"
	"time"

	"shortplay-scraper/app/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronScheduler_RejectsNonPositiveInterval(t *testing.T) {
	s := NewCronScheduler(logger.NewNop())
	defer s.Stop()

	assert.Error(t, s.Register(0, func() {}))
	assert.True(t, s.Next().IsZero())
}

func TestCronScheduler_FiresAndUnregisters(t *testing.T) {
	s := NewCronScheduler(logger.NewNop())
	defer s.Stop()

	var fired atomic.Int32
	require.NoError(t, s.Register(time.Second, func() { fired.Add(1) }))
	require.Eventually(t, func() bool { return fired.Load() > 0 }, 3*time.Second, 20*time.Millisecond)

	s.Unregister()
	assert.True(t, s.Next().IsZero())
}

func TestCronScheduler_RegisterReplaces(t *testing.T) {
	s := NewCronScheduler(logger.NewNop())
	defer s.Stop()

	require.NoError(t, s.Register(time.Hour, func() {}))
	require.NoError(t, s.Register(2*time.Hour, func() {}))
	require.Eventually(t, func() bool { return !s.Next().IsZero() }, time.Second, 10*time.Millisecond)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), s.Next(), time.Minute)
}
