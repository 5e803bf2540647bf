package engine

import (
	"context"
	"math/big"
	"testing"

	"github.com/saiputravu/ledgerbook/internal/common"
	"github.com/saiputravu/ledgerbook/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func units(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), common.UNIT)
}

type testRig struct {
	eng        *Engine
	bookAsset  *ledger.InMemory
	priceAsset *ledger.InMemory
}

func newTestRig() *testRig {
	bookAsset := ledger.NewInMemory("book")
	priceAsset := ledger.NewInMemory("price")
	return &testRig{
		eng:        New(bookAsset, priceAsset),
		bookAsset:  bookAsset,
		priceAsset: priceAsset,
	}
}

func TestAddBidRestsWithNoCrossingAsks(t *testing.T) {
	r := newTestRig()
	r.priceAsset.Mint("alice", units(20))

	o, err := r.eng.AddBid(context.Background(), "alice", units(2), units(10))
	require.NoError(t, err)

	assert.Equal(t, common.Open, o.Status)
	assert.Equal(t, units(10), o.Remaining)
	assert.Equal(t, units(2), r.eng.BestBidPrice())
	assert.Equal(t, units(20), r.priceAsset.BalanceOf(ledger.EngineAccount))
	assert.Equal(t, big.NewInt(0), r.priceAsset.BalanceOf("alice"))
}

func TestFullCrossingFill(t *testing.T) {
	r := newTestRig()
	r.priceAsset.Mint("alice", units(20))
	r.bookAsset.Mint("bob", units(10))

	_, err := r.eng.AddBid(context.Background(), "alice", units(2), units(10))
	require.NoError(t, err)

	askOrder, err := r.eng.AddAsk(context.Background(), "bob", units(2), units(10))
	require.NoError(t, err)

	assert.Equal(t, common.Filled, askOrder.Status)
	assert.Equal(t, 0, askOrder.Remaining.Sign())
	assert.Equal(t, units(10), r.bookAsset.BalanceOf("alice"))
	assert.Equal(t, units(20), r.priceAsset.BalanceOf("bob"))
	assert.Equal(t, big.NewInt(0), r.eng.BestBidPrice())
	assert.Equal(t, common.MaxUint256, r.eng.BestAskPrice())
	assert.Equal(t, units(2), r.eng.MarketPrice())
}

func TestPartialFillLeavesBidResting(t *testing.T) {
	r := newTestRig()
	r.priceAsset.Mint("alice", units(20))
	r.bookAsset.Mint("bob", units(4))

	bidOrder, err := r.eng.AddBid(context.Background(), "alice", units(2), units(10))
	require.NoError(t, err)

	_, err = r.eng.AddAsk(context.Background(), "bob", units(2), units(4))
	require.NoError(t, err)

	bidOrder = r.eng.Order(bidOrder.Id)
	assert.Equal(t, common.Open, bidOrder.Status)
	assert.Equal(t, units(6), bidOrder.Remaining)
	assert.Equal(t, units(2), r.eng.BestBidPrice())
	assert.Equal(t, units(4), r.bookAsset.BalanceOf("alice"))
	assert.Equal(t, units(8), r.priceAsset.BalanceOf("bob"))
}

func TestAddBidRejectsCrossingViolation(t *testing.T) {
	r := newTestRig()
	r.bookAsset.Mint("bob", units(10))
	r.priceAsset.Mint("alice", units(30))

	_, err := r.eng.AddAsk(context.Background(), "bob", units(2), units(10))
	require.NoError(t, err)

	// Alice may not bid above bob's resting ask at 2: AddBid rejects any
	// limit price above the best ask.
	_, err = r.eng.AddBid(context.Background(), "alice", units(3), units(10))
	assert.ErrorIs(t, err, ErrCrossingViolationBid)
	assert.Equal(t, units(30), r.priceAsset.BalanceOf("alice")) // untouched, no escrow taken
}

func TestAddAskRejectsCrossingViolation(t *testing.T) {
	r := newTestRig()
	r.priceAsset.Mint("alice", units(20))
	r.bookAsset.Mint("bob", units(10))

	_, err := r.eng.AddBid(context.Background(), "alice", units(2), units(10))
	require.NoError(t, err)

	// Bob may not ask below alice's resting bid at 2.
	_, err = r.eng.AddAsk(context.Background(), "bob", units(1), units(10))
	assert.ErrorIs(t, err, ErrCrossingViolationAsk)
	assert.Equal(t, units(10), r.bookAsset.BalanceOf("bob")) // untouched, no escrow taken
}

func TestMarketBuySweepsMultipleLevels(t *testing.T) {
	r := newTestRig()
	r.bookAsset.Mint("bob", units(10))
	_, err := r.eng.AddAsk(context.Background(), "bob", units(2), units(5))
	require.NoError(t, err)
	_, err = r.eng.AddAsk(context.Background(), "bob", units(3), units(5))
	require.NoError(t, err)

	r.priceAsset.Mint("carol", units(25))
	order, err := r.eng.MarketBuy(context.Background(), "carol", units(10))
	require.NoError(t, err)

	assert.Equal(t, common.Filled, order.Status)
	assert.Equal(t, 0, order.Remaining.Sign())
	assert.Equal(t, units(10), r.bookAsset.BalanceOf("carol"))
	assert.Equal(t, units(3), r.eng.MarketPrice())

	// VWAP = (5*2 + 5*3) / 10 = 2.5
	expectedVWAP := new(big.Int).Div(new(big.Int).Mul(big.NewInt(25), common.UNIT), big.NewInt(10))
	assert.Equal(t, expectedVWAP, order.Price)
}

func TestMarketBuyOvershootRestsResidual(t *testing.T) {
	r := newTestRig()
	r.bookAsset.Mint("bob", units(10))
	_, err := r.eng.AddAsk(context.Background(), "bob", units(2), units(5))
	require.NoError(t, err)
	_, err = r.eng.AddAsk(context.Background(), "bob", units(3), units(5))
	require.NoError(t, err)

	r.priceAsset.Mint("carol", units(40))
	order, err := r.eng.MarketBuy(context.Background(), "carol", units(15))
	require.NoError(t, err)

	assert.Equal(t, common.Filled, order.Status) // the market order's own record is always closed
	assert.Equal(t, 0, order.Remaining.Sign())

	// A new resting bid for the 5-unit residual should exist at the last
	// traversed price (3).
	assert.Equal(t, units(3), r.eng.BestBidPrice())
	residualID, err := r.eng.UserOrderAt("carol", 1)
	require.NoError(t, err)
	residual := r.eng.Order(residualID)
	assert.Equal(t, common.Bid, residual.Side)
	assert.Equal(t, units(5), residual.Remaining)
	assert.Equal(t, units(3), residual.Price)
}

func TestCancelOrderRefundsEscrow(t *testing.T) {
	r := newTestRig()
	r.priceAsset.Mint("alice", units(20))

	o, err := r.eng.AddBid(context.Background(), "alice", units(2), units(10))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(0), r.priceAsset.BalanceOf("alice"))

	err = r.eng.CancelOrder(context.Background(), "alice", o.Id)
	require.NoError(t, err)

	cancelled := r.eng.Order(o.Id)
	assert.Equal(t, common.Cancelled, cancelled.Status)
	assert.Equal(t, units(20), r.priceAsset.BalanceOf("alice"))
	assert.Equal(t, big.NewInt(0), r.eng.BestBidPrice())
}

func TestCancelOrderRejectsWrongMaker(t *testing.T) {
	r := newTestRig()
	r.priceAsset.Mint("alice", units(20))
	o, err := r.eng.AddBid(context.Background(), "alice", units(2), units(10))
	require.NoError(t, err)

	err = r.eng.CancelOrder(context.Background(), "mallory", o.Id)
	assert.ErrorIs(t, err, ErrNotMaker)
}

func TestMarketBuyWithNoOpenAsksIsRejected(t *testing.T) {
	r := newTestRig()
	_, err := r.eng.MarketBuy(context.Background(), "carol", units(1))
	assert.ErrorIs(t, err, ErrNoOpenAsks)
}
