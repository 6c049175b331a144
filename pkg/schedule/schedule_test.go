package schedule_test

import (
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/WMTcore/egg/pkg/schedule"
)

func TestAdd(t *testing.T) {
	t.Parallel()

	t.Run("invalid spec", func(t *testing.T) {
		t.Parallel()
		s := schedule.New(slog.Default())
		_, err := s.Add("not a spec", "broken", func() {})
		require.Error(t, err)
	})

	t.Run("task runs on schedule", func(t *testing.T) {
		t.Parallel()
		s := schedule.New(slog.Default())
		var runs atomic.Int64
		_, err := s.Add("@every 10ms", "ticker", func() {
			runs.Add(1)
		})
		require.NoError(t, err)

		s.Start()
		defer func() { <-s.Stop().Done() }()

		require.Eventually(t, func() bool {
			return runs.Load() >= 2
		}, 2*time.Second, 5*time.Millisecond)
	})

	t.Run("panicking task does not stop the scheduler", func(t *testing.T) {
		t.Parallel()
		s := schedule.New(slog.Default())
		var runs atomic.Int64
		_, err := s.Add("@every 10ms", "panicky", func() {
			if runs.Add(1) == 1 {
				panic("boom")
			}
		})
		require.NoError(t, err)

		s.Start()
		defer func() { <-s.Stop().Done() }()

		// A second run proves the recover chain swallowed the panic.
		require.Eventually(t, func() bool {
			return runs.Load() >= 2
		}, 2*time.Second, 5*time.Millisecond)
	})
}
