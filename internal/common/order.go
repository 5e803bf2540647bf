package common

import (
	"fmt"
	"math/big"
	"time"
)

// Order is the fundamental record tracked by the order store. Id is dense
// and 1-based; the zero value (Id == 0) represents "no such order" and is
// returned verbatim by lookups of unknown ids.
type Order struct {
	Id        uint64
	Maker     string
	Price     *big.Int
	Amount    *big.Int
	Remaining *big.Int
	Side      Side
	Status    Status
	CreatedAt time.Time
	ClosedAt  time.Time
}

// IsZero reports whether this is the well-defined zero record returned for
// an unknown or never-assigned order id.
func (o Order) IsZero() bool {
	return o.Id == 0 && o.Maker == ""
}

func (o Order) String() string {
	return fmt.Sprintf(
		`Order #%d
Maker:     %s
Side:      %v
Status:    %v
Price:     %s
Amount:    %s
Remaining: %s
Created:   %v
Closed:    %v`,
		o.Id,
		o.Maker,
		o.Side,
		o.Status,
		o.Price,
		o.Amount,
		o.Remaining,
		o.CreatedAt.Format(time.RFC3339),
		o.ClosedAt.Format(time.RFC3339),
	)
}

// MatchRecord is one fill entry in an order's append-only audit trail.
// Across the lifetime of an order, the sum of BookAmount over its match
// records equals Amount - Remaining.
type MatchRecord struct {
	BookAmount *big.Int
	Timestamp  time.Time
}
