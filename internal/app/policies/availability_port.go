package policies

import (
	"context"

	"rentdom/internal/domain/availability"
)

// AvailabilitySource owns the cached spreadsheet snapshot. Returned snapshots are copies.
type AvailabilitySource interface {
	Get(ctx context.Context) (availability.Snapshot, error)
	Refetch(ctx context.Context) (availability.Snapshot, error)
}
