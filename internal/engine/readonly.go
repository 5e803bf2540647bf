package engine

import (
	"math/big"

	"github.com/saiputravu/ledgerbook/internal/common"
)

// Order is the orderID_order accessor of spec.md §4.4: returns the zero
// Order for an unknown id, never an error, matching OrderStore.Get.
func (e *Engine) Order(id uint64) common.Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Get(id)
}

// UserOrderAt is the user_ordersId positional accessor.
func (e *Engine) UserOrderAt(maker string, index int) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.UserOrderAt(maker, index)
}

// UserOrders returns maker's complete order history, newest last.
func (e *Engine) UserOrders(maker string) []uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.UserOrders(maker)
}

// MatchHistory returns id's append-only fill log.
func (e *Engine) MatchHistory(id uint64) []common.MatchRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.MatchHistory(id)
}

// QueueAt backs price_openBids/price_openAsks: the resting order ids at
// price on side, in FIFO order.
func (e *Engine) QueueAt(side common.Side, price *big.Int) []uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index.QueueAt(side, price)
}

// QueueIndexAt is the positional variant of QueueAt.
func (e *Engine) QueueIndexAt(side common.Side, price *big.Int, index int) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index.QueueIndexAt(side, price, index)
}

// Stack backs openBidsStack/openAsksStack: the ordered price sequence on
// side, last element always the best price.
func (e *Engine) Stack(side common.Side) []*big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index.Stack(side)
}

// StackAt is the positional variant of Stack.
func (e *Engine) StackAt(side common.Side, index int) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index.StackAt(side, index)
}
