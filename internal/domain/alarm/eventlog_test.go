package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestEventLog_EvictsOldest fills the log past capacity and checks FIFO order.
func TestEventLog_EvictsOldest(t *testing.T) {
	t.Parallel()

	var (
		log  = NewEventLog(DefaultEventLogCapacity)
		base = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
		want []time.Time
	)

	for i := range DefaultEventLogCapacity {
		ts := base.Add(time.Duration(i) * time.Second)
		log.Record(ts)
		want = append(want, ts)
	}

	require.Equal(t, want, log.Entries())

	newest := base.Add(time.Hour)
	log.Record(newest)

	entries := log.Entries()
	require.Len(t, entries, DefaultEventLogCapacity)
	require.Equal(t, append(want[1:], newest), entries)
	require.Equal(t, DefaultEventLogCapacity, log.Len())
}

// TestEventLog_DefaultCapacity checks the fallback for invalid capacities.
func TestEventLog_DefaultCapacity(t *testing.T) {
	t.Parallel()

	require.Equal(t, DefaultEventLogCapacity, NewEventLog(0).Cap())
	require.Equal(t, 2, NewEventLog(2).Cap())
	require.Empty(t, NewEventLog(3).Entries())
}
