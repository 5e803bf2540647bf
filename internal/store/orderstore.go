// Package store implements the OrderStore: a dense OrderId -> Order map
// with a monotonic id counter, per-user order history, and a per-order
// append-only match log. It mirrors the teacher's map-based order
// bookkeeping (internal/engine.Engine.Books) generalized to a single fixed
// trading pair.
package store

import (
	"errors"
	"math/big"
	"time"

	"github.com/saiputravu/ledgerbook/internal/common"
)

var (
	// ErrUnknownOrder is returned by writes against an id that was never
	// assigned. Reads never fail this way; they return the zero Order.
	ErrUnknownOrder = errors.New("order store: unknown order id")
	// ErrFillExceedsRemaining guards against a caller decrementing more
	// book units than are actually outstanding on the order.
	ErrFillExceedsRemaining = errors.New("order store: fill exceeds remaining")
	// ErrNotOpen is returned by Cancel against an order that has already
	// reached a terminal state.
	ErrNotOpen = errors.New("order store: order not open")
	// ErrIndexOutOfRange backs the positional user-order accessor.
	ErrIndexOutOfRange = errors.New("order store: index out of range")
)

// OrderStore is the dense OrderId -> Order mapping described in the spec,
// plus the per-user order list and per-order match history that ride
// alongside it. It performs no internal locking: callers (the matching
// engine) are expected to serialize access, exactly as the teacher's
// single-threaded per-call processing model assumes.
type OrderStore struct {
	nextID     uint64
	orders     map[uint64]*common.Order
	userOrders map[string][]uint64
	matchLog   map[uint64][]common.MatchRecord
}

// New returns an empty OrderStore with the id counter primed to issue 1
// for the first created order.
func New() *OrderStore {
	return &OrderStore{
		orders:     make(map[uint64]*common.Order),
		userOrders: make(map[string][]uint64),
		matchLog:   make(map[uint64][]common.MatchRecord),
	}
}

// Create mints the next OrderId, stores an Open record with
// remaining == amount, and appends it to the maker's order history.
func (s *OrderStore) Create(maker string, price, amount *big.Int, side common.Side, now time.Time) uint64 {
	s.nextID++
	id := s.nextID

	s.orders[id] = &common.Order{
		Id:        id,
		Maker:     maker,
		Price:     new(big.Int).Set(price),
		Amount:    new(big.Int).Set(amount),
		Remaining: new(big.Int).Set(amount),
		Side:      side,
		Status:    common.Open,
		CreatedAt: now,
	}
	s.userOrders[maker] = append(s.userOrders[maker], id)
	return id
}

// Get returns the full order record by value. Unknown or unassigned ids
// (including id == 0) return the well-defined zero Order, never an error;
// callers rely on this to iterate and probe freely.
func (s *OrderStore) Get(id uint64) common.Order {
	o, ok := s.orders[id]
	if !ok {
		return common.Order{}
	}
	return *o
}

// RecordFill decrements remaining by bookFilled and appends a match
// record. If remaining reaches zero the order transitions to Filled and
// closedAt is stamped.
func (s *OrderStore) RecordFill(id uint64, bookFilled *big.Int, now time.Time) error {
	o, ok := s.orders[id]
	if !ok {
		return ErrUnknownOrder
	}
	if bookFilled.Cmp(o.Remaining) > 0 {
		return ErrFillExceedsRemaining
	}

	o.Remaining = new(big.Int).Sub(o.Remaining, bookFilled)
	s.matchLog[id] = append(s.matchLog[id], common.MatchRecord{
		BookAmount: new(big.Int).Set(bookFilled),
		Timestamp:  now,
	})

	if o.Remaining.Sign() == 0 {
		o.Status = common.Filled
		o.ClosedAt = now
	}
	return nil
}

// Cancel transitions an Open order to Cancelled, stamping closedAt. The
// order's remaining is left untouched: callers use it to compute the
// escrow refund before calling Cancel.
func (s *OrderStore) Cancel(id uint64, now time.Time) error {
	o, ok := s.orders[id]
	if !ok {
		return ErrUnknownOrder
	}
	if o.Status != common.Open {
		return ErrNotOpen
	}
	o.Status = common.Cancelled
	o.ClosedAt = now
	return nil
}

// UserOrderAt returns the index'th order id ever created by maker, in
// insertion order, regardless of status. Out-of-range indexing is an
// observable error per the spec's read-only surface.
func (s *OrderStore) UserOrderAt(maker string, index int) (uint64, error) {
	ids := s.userOrders[maker]
	if index < 0 || index >= len(ids) {
		return 0, ErrIndexOutOfRange
	}
	return ids[index], nil
}

// UserOrders returns a copy of maker's full order history.
func (s *OrderStore) UserOrders(maker string) []uint64 {
	ids := s.userOrders[maker]
	out := make([]uint64, len(ids))
	copy(out, ids)
	return out
}

// MatchHistory returns a copy of id's append-only fill log.
func (s *OrderStore) MatchHistory(id uint64) []common.MatchRecord {
	log := s.matchLog[id]
	out := make([]common.MatchRecord, len(log))
	copy(out, log)
	return out
}
