package pricing

import (
	"github.com/noah-isme/tour-inventory/internal/catalog"
)

// Availability is the raw allocated view of a pool: the sum of allocation
// quantities, with no bookings subtracted.
type Availability struct {
	PoolID       string `json:"poolId,omitempty"`
	Allocated    int    `json:"allocated"`
	Available    int    `json:"available"`
	RequestedQty int    `json:"requestedQty"`
	CanBook      bool   `json:"canBook"`
}

// NetCapacity is the booked view of a pool taken from its capacity rollup.
type NetCapacity struct {
	PoolID          string `json:"poolId"`
	TotalCapacity   int    `json:"totalCapacity"`
	CurrentBookings int    `json:"currentBookings"`
	Available       int    `json:"available"`
}

// CheckAvailability sums the allocations sharing poolID and compares the total
// with requestedQty. A rate without a pool has nothing allocated and is
// therefore not bookable.
func CheckAvailability(poolID *string, allocations []catalog.Allocation, requestedQty int) Availability {
	out := Availability{RequestedQty: requestedQty}
	if poolID != nil {
		out.PoolID = *poolID
		for _, a := range allocations {
			if a.InPool(*poolID) {
				out.Allocated += a.Quantity
			}
		}
	}
	out.Available = max(out.Allocated, 0)
	out.CanBook = out.Available >= requestedQty
	return out
}

// NetAvailability derives remaining capacity from a pool rollup, clamped at zero.
func NetAvailability(c catalog.AllocationPoolCapacity) NetCapacity {
	return NetCapacity{
		PoolID:          c.PoolID,
		TotalCapacity:   c.TotalCapacity,
		CurrentBookings: c.CurrentBookings,
		Available:       max(c.TotalCapacity-c.CurrentBookings, 0),
	}
}
