package availability

import (
	"time"
)

// SnapshotRefreshed is raised when a forced refetch replaced the cached sheet data.
type SnapshotRefreshed struct {
	Periods    int
	Properties int
	At         time.Time
}

func (e SnapshotRefreshed) EventName() string     { return "availability.refreshed" }
func (e SnapshotRefreshed) AggregateID() string   { return "availability" }
func (e SnapshotRefreshed) OccurredAt() time.Time { return e.At }

func SnapshotRefreshedEvent(s Snapshot, at time.Time) SnapshotRefreshed {
	return SnapshotRefreshed{
		Periods:    len(s.RentPeriods),
		Properties: len(s.ByProperty),
		At:         at,
	}
}
