// Package book implements the PriceLevelIndex: the two ordered structures
// (openBids, openAsks) mapping a price to a FIFO queue of resting order
// ids, together with the per-side price stack used for best-price lookups
// and positional reads. Grounded on the teacher's
// internal/engine/orderbook.go, which already reaches for
// github.com/tidwall/btree to back its PriceLevels rather than the spec's
// illustrative flat array - we keep that choice and generalize it from a
// per-asset map of books down to the single fixed trading pair this spec
// describes.
package book

import (
	"errors"
	"math/big"

	"github.com/saiputravu/ledgerbook/internal/common"
	"github.com/tidwall/btree"
)

// ErrIndexOutOfRange backs the positional stack/queue accessors required
// by the spec's read-only surface.
var ErrIndexOutOfRange = errors.New("price level index: index out of range")

// PriceLevelIndex holds both sides of the book. Bids are ordered so that
// the tree's Max() is the highest (best) bid; asks are ordered so that the
// tree's Max() is the lowest (best) ask. Scanning each tree ascending
// (Scan) therefore reproduces exactly the stack order the spec requires:
// bids ascending, asks descending, with the last element always the best
// price on that side.
type PriceLevelIndex struct {
	bids *btree.BTreeG[*priceLevel]
	asks *btree.BTreeG[*priceLevel]
}

// New constructs an empty index for both sides of the book.
func New() *PriceLevelIndex {
	bids := btree.NewBTreeG(func(a, b *priceLevel) bool {
		return a.price.Cmp(b.price) < 0 // ascending: Max() == best bid
	})
	asks := btree.NewBTreeG(func(a, b *priceLevel) bool {
		return a.price.Cmp(b.price) > 0 // descending: Max() == best (lowest) ask
	})
	return &PriceLevelIndex{bids: bids, asks: asks}
}

func (idx *PriceLevelIndex) treeFor(side common.Side) *btree.BTreeG[*priceLevel] {
	if side == common.Bid {
		return idx.bids
	}
	return idx.asks
}

// BestPrice returns the top of stack(S): the highest resting bid, or the
// lowest resting ask. The empty-side sentinels are 0 for bids and
// MaxUint256 for asks.
func (idx *PriceLevelIndex) BestPrice(side common.Side) *big.Int {
	tree := idx.treeFor(side)
	top, ok := tree.Max()
	if !ok {
		if side == common.Bid {
			return new(big.Int).SetInt64(0)
		}
		return new(big.Int).Set(common.MaxUint256)
	}
	return new(big.Int).Set(top.price)
}

// Enqueue appends orderId to the FIFO queue at price on side S, pushing
// price onto the stack if the level did not already exist.
func (idx *PriceLevelIndex) Enqueue(side common.Side, price *big.Int, orderID uint64) {
	tree := idx.treeFor(side)
	key := &priceLevel{price: price}
	if lvl, ok := tree.Get(key); ok {
		lvl.orders = append(lvl.orders, orderID)
		return
	}
	tree.Set(&priceLevel{price: new(big.Int).Set(price), orders: []uint64{orderID}})
}

// FrontOrderID returns the order id at the head of the queue at price on
// side S, without removing it.
func (idx *PriceLevelIndex) FrontOrderID(side common.Side, price *big.Int) (uint64, bool) {
	tree := idx.treeFor(side)
	lvl, ok := tree.Get(&priceLevel{price: price})
	if !ok || len(lvl.orders) == 0 {
		return 0, false
	}
	return lvl.orders[0], true
}

// DequeueHead removes the head of the queue at price on side S. If the
// queue becomes empty, price is spliced out of the stack entirely.
func (idx *PriceLevelIndex) DequeueHead(side common.Side, price *big.Int) (uint64, bool) {
	tree := idx.treeFor(side)
	lvl, ok := tree.Get(&priceLevel{price: price})
	if !ok || len(lvl.orders) == 0 {
		return 0, false
	}
	head := lvl.orders[0]
	lvl.orders = lvl.orders[1:]
	if len(lvl.orders) == 0 {
		tree.Delete(&priceLevel{price: price})
	}
	return head, true
}

// RemoveByID removes a specific order from an arbitrary position in the
// queue at price on side S, used only by cancellation. If the queue
// becomes empty, price is spliced out of the stack.
func (idx *PriceLevelIndex) RemoveByID(side common.Side, price *big.Int, orderID uint64) bool {
	tree := idx.treeFor(side)
	lvl, ok := tree.Get(&priceLevel{price: price})
	if !ok {
		return false
	}
	for i, id := range lvl.orders {
		if id == orderID {
			lvl.orders = append(lvl.orders[:i], lvl.orders[i+1:]...)
			if len(lvl.orders) == 0 {
				tree.Delete(&priceLevel{price: price})
			}
			return true
		}
	}
	return false
}

// QueueAt returns a copy of the FIFO order-id queue resting at price on
// side S.
func (idx *PriceLevelIndex) QueueAt(side common.Side, price *big.Int) []uint64 {
	tree := idx.treeFor(side)
	lvl, ok := tree.Get(&priceLevel{price: price})
	if !ok {
		return nil
	}
	out := make([]uint64, len(lvl.orders))
	copy(out, lvl.orders)
	return out
}

// QueueIndexAt is the positional accessor behind price_openBids/
// price_openAsks: the index'th order id resting at price on side S.
func (idx *PriceLevelIndex) QueueIndexAt(side common.Side, price *big.Int, index int) (uint64, error) {
	ids := idx.QueueAt(side, price)
	if index < 0 || index >= len(ids) {
		return 0, ErrIndexOutOfRange
	}
	return ids[index], nil
}

// Stack returns a copy of the ordered price sequence on side S: ascending
// for bids, descending for asks, with the last element always the best
// price.
func (idx *PriceLevelIndex) Stack(side common.Side) []*big.Int {
	tree := idx.treeFor(side)
	out := make([]*big.Int, 0, tree.Len())
	tree.Scan(func(lvl *priceLevel) bool {
		out = append(out, new(big.Int).Set(lvl.price))
		return true
	})
	return out
}

// StackAt is the positional accessor behind openBidsStack/openAsksStack.
func (idx *PriceLevelIndex) StackAt(side common.Side, index int) (*big.Int, error) {
	stack := idx.Stack(side)
	if index < 0 || index >= len(stack) {
		return nil, ErrIndexOutOfRange
	}
	return stack[index], nil
}

// BestFirstPrices returns the prices on side S ordered best-first: highest
// first for bids, lowest first for asks. It is the reverse of Stack and is
// used internally by the matching engine to walk multiple levels (e.g. a
// market order sweeping the book), not part of the spec's external
// read-only surface.
func (idx *PriceLevelIndex) BestFirstPrices(side common.Side) []*big.Int {
	tree := idx.treeFor(side)
	out := make([]*big.Int, 0, tree.Len())
	tree.Reverse(func(lvl *priceLevel) bool {
		out = append(out, new(big.Int).Set(lvl.price))
		return true
	})
	return out
}
