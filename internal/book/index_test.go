package book

import (
	"math/big"
	"testing"

	"github.com/saiputravu/ledgerbook/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestBestPriceSentinelsOnEmptyBook(t *testing.T) {
	idx := New()
	assert.Equal(t, big.NewInt(0), idx.BestPrice(common.Bid))
	assert.Equal(t, common.MaxUint256, idx.BestPrice(common.Ask))
}

func TestEnqueueAndBestPrice(t *testing.T) {
	idx := New()
	idx.Enqueue(common.Bid, big.NewInt(99), 1)
	idx.Enqueue(common.Bid, big.NewInt(100), 2)
	idx.Enqueue(common.Bid, big.NewInt(98), 3)

	assert.Equal(t, big.NewInt(100), idx.BestPrice(common.Bid))

	idx.Enqueue(common.Ask, big.NewInt(105), 4)
	idx.Enqueue(common.Ask, big.NewInt(101), 5)
	assert.Equal(t, big.NewInt(101), idx.BestPrice(common.Ask))
}

func TestStackOrdering(t *testing.T) {
	idx := New()
	idx.Enqueue(common.Bid, big.NewInt(98), 1)
	idx.Enqueue(common.Bid, big.NewInt(100), 2)
	idx.Enqueue(common.Bid, big.NewInt(99), 3)

	stack := idx.Stack(common.Bid)
	assert.Equal(t, []*big.Int{big.NewInt(98), big.NewInt(99), big.NewInt(100)}, stack)
	assert.Equal(t, big.NewInt(100), stack[len(stack)-1])

	idx.Enqueue(common.Ask, big.NewInt(105), 4)
	idx.Enqueue(common.Ask, big.NewInt(101), 5)
	idx.Enqueue(common.Ask, big.NewInt(103), 6)

	askStack := idx.Stack(common.Ask)
	assert.Equal(t, []*big.Int{big.NewInt(105), big.NewInt(103), big.NewInt(101)}, askStack)
	assert.Equal(t, big.NewInt(101), askStack[len(askStack)-1])
}

func TestFIFOQueueOrder(t *testing.T) {
	idx := New()
	idx.Enqueue(common.Bid, big.NewInt(100), 1)
	idx.Enqueue(common.Bid, big.NewInt(100), 2)
	idx.Enqueue(common.Bid, big.NewInt(100), 3)

	front, ok := idx.FrontOrderID(common.Bid, big.NewInt(100))
	assert.True(t, ok)
	assert.Equal(t, uint64(1), front)

	head, ok := idx.DequeueHead(common.Bid, big.NewInt(100))
	assert.True(t, ok)
	assert.Equal(t, uint64(1), head)

	assert.Equal(t, []uint64{2, 3}, idx.QueueAt(common.Bid, big.NewInt(100)))
}

func TestDequeueEmptiesLevel(t *testing.T) {
	idx := New()
	idx.Enqueue(common.Bid, big.NewInt(100), 1)
	idx.DequeueHead(common.Bid, big.NewInt(100))
	assert.Equal(t, big.NewInt(0), idx.BestPrice(common.Bid))
}

func TestRemoveByID(t *testing.T) {
	idx := New()
	idx.Enqueue(common.Ask, big.NewInt(100), 1)
	idx.Enqueue(common.Ask, big.NewInt(100), 2)

	assert.True(t, idx.RemoveByID(common.Ask, big.NewInt(100), 1))
	assert.Equal(t, []uint64{2}, idx.QueueAt(common.Ask, big.NewInt(100)))
	assert.False(t, idx.RemoveByID(common.Ask, big.NewInt(100), 99))
}

func TestBestFirstPricesIsReverseOfStack(t *testing.T) {
	idx := New()
	idx.Enqueue(common.Bid, big.NewInt(98), 1)
	idx.Enqueue(common.Bid, big.NewInt(100), 2)
	idx.Enqueue(common.Bid, big.NewInt(99), 3)

	best := idx.BestFirstPrices(common.Bid)
	assert.Equal(t, []*big.Int{big.NewInt(100), big.NewInt(99), big.NewInt(98)}, best)
}
