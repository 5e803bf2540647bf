package engine

import (
	"context"
	"fmt"
	"math/big"

	"github.com/saiputravu/ledgerbook/internal/common"
)

// sweepPlan is the result of speculatively walking one side of the book
// without mutating it: how much can be sourced, at what total cost (the
// VWAP audit price is derived from these two), and the price of the last
// level touched (the price a residual resting order is placed at).
type sweepPlan struct {
	filled    *big.Int
	totalCost *big.Int
	lastPrice *big.Int
	unfilled  *big.Int
}

// planSweep walks side from the best price outward, without touching the
// store or index, accumulating exactly what MarketBuy/MarketSell's real
// walk would consume. It lets MarketBuy pull the exact priceAsset cost
// from the taker in a single ledger call before any state changes, the
// same escrow-before-mutation discipline AddBid/AddAsk use; MarketSell
// escrows its bookAsset amount first and uses the plan only for the VWAP
// and the fallback residual price.
func (e *Engine) planSweep(side common.Side, amount *big.Int) sweepPlan {
	remaining := new(big.Int).Set(amount)
	totalCost := big.NewInt(0)
	lastPrice := big.NewInt(0)

	for _, price := range e.index.BestFirstPrices(side) {
		if remaining.Sign() == 0 {
			break
		}
		for _, id := range e.index.QueueAt(side, price) {
			if remaining.Sign() == 0 {
				break
			}
			o := e.store.Get(id)
			fill := common.MinBig(remaining, o.Remaining)
			totalCost.Add(totalCost, common.MulDivFloor(fill, price, common.UNIT))
			remaining.Sub(remaining, fill)
			lastPrice = price
		}
	}

	return sweepPlan{
		filled:    new(big.Int).Sub(amount, remaining),
		totalCost: totalCost,
		lastPrice: lastPrice,
		unfilled:  remaining,
	}
}

// vwap computes the volume-weighted average fill price (floor division),
// or zero if nothing filled, per spec.md §9's documented audit policy.
func vwap(totalCost, filled *big.Int) *big.Int {
	if filled.Sign() == 0 {
		return big.NewInt(0)
	}
	return common.MulDivFloor(totalCost, common.UNIT, filled)
}

// MarketBuy implements spec.md §4.3.3. Any portion of amount that cannot
// be sourced from the ask book rests as a new limit Bid at the last price
// consumed, exactly as the original_source contract behaves (see
// SPEC_FULL.md §4) — an idiosyncrasy flagged for re-evaluation in
// spec.md §9, not a design this implementation introduces.
func (e *Engine) MarketBuy(ctx context.Context, taker string, amount *big.Int) (common.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if amount.Sign() <= 0 {
		e.reportReject(taker, ErrInvalidAmount)
		return common.Order{}, ErrInvalidAmount
	}
	if e.index.BestPrice(common.Ask).Cmp(common.MaxUint256) == 0 {
		e.reportReject(taker, ErrNoOpenAsks)
		return common.Order{}, ErrNoOpenAsks
	}

	plan := e.planSweep(common.Ask, amount)
	residualEscrow := big.NewInt(0)
	if plan.unfilled.Sign() > 0 {
		residualEscrow = common.MulDivFloor(plan.unfilled, plan.lastPrice, common.UNIT)
	}
	totalEscrow := new(big.Int).Add(plan.totalCost, residualEscrow)
	if totalEscrow.Sign() > 0 {
		if err := e.priceAsset.TransferFrom(ctx, taker, e.escrowAccount(), totalEscrow); err != nil {
			wrapped := fmt.Errorf("escrow price asset: %w", err)
			e.reportReject(taker, wrapped)
			return common.Order{}, wrapped
		}
	}

	now := e.now()
	id := e.store.Create(taker, vwap(plan.totalCost, plan.filled), amount, common.MarketBuy, now)

	remaining := new(big.Int).Set(amount)
	var lastPrice *big.Int
	for remaining.Sign() > 0 {
		bestAsk := e.index.BestPrice(common.Ask)
		if bestAsk.Cmp(common.MaxUint256) == 0 {
			break
		}
		askID, ok := e.index.FrontOrderID(common.Ask, bestAsk)
		if !ok {
			break
		}
		ask := e.store.Get(askID)

		fill := common.MinBig(remaining, ask.Remaining)
		if err := e.bookAsset.Transfer(ctx, taker, fill); err != nil {
			return common.Order{}, fmt.Errorf("deliver book asset: %w", err)
		}
		proceeds := common.MulDivFloor(fill, bestAsk, common.UNIT)
		if err := e.priceAsset.Transfer(ctx, ask.Maker, proceeds); err != nil {
			return common.Order{}, fmt.Errorf("pay resting ask: %w", err)
		}

		_ = e.store.RecordFill(id, fill, now)
		_ = e.store.RecordFill(askID, fill, now)
		remaining.Sub(remaining, fill)
		lastPrice = new(big.Int).Set(bestAsk)

		if e.store.Get(askID).Remaining.Sign() == 0 {
			e.index.DequeueHead(common.Ask, bestAsk)
		}
		e.marketPrice = new(big.Int).Set(bestAsk)

		e.reportFill(common.Fill{
			TakerOrderID: id,
			MakerOrderID: askID,
			Taker:        taker,
			Maker:        ask.Maker,
			Price:        new(big.Int).Set(bestAsk),
			BookAmount:   fill,
			PriceAmount:  proceeds,
			Timestamp:    now,
		})
	}

	if remaining.Sign() > 0 {
		restPrice := lastPrice
		if restPrice == nil {
			restPrice = plan.lastPrice
		}
		_ = e.store.RecordFill(id, remaining, now)
		residualID := e.store.Create(taker, restPrice, remaining, common.Bid, now)
		e.index.Enqueue(common.Bid, restPrice, residualID)
	}

	return e.store.Get(id), nil
}

// MarketSell implements spec.md §4.3.4, symmetric to MarketBuy: the taker
// escrows bookAsset, sweeps the bid side paying each resting maker's own
// price, and rests any unfilled amount as a new Ask at the last price
// consumed.
func (e *Engine) MarketSell(ctx context.Context, taker string, amount *big.Int) (common.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if amount.Sign() <= 0 {
		e.reportReject(taker, ErrInvalidAmount)
		return common.Order{}, ErrInvalidAmount
	}
	if e.index.BestPrice(common.Bid).Sign() == 0 {
		e.reportReject(taker, ErrNoOpenBids)
		return common.Order{}, ErrNoOpenBids
	}

	if err := e.bookAsset.TransferFrom(ctx, taker, e.escrowAccount(), amount); err != nil {
		wrapped := fmt.Errorf("escrow book asset: %w", err)
		e.reportReject(taker, wrapped)
		return common.Order{}, wrapped
	}

	plan := e.planSweep(common.Bid, amount)
	now := e.now()
	id := e.store.Create(taker, vwap(plan.totalCost, plan.filled), amount, common.MarketSell, now)

	remaining := new(big.Int).Set(amount)
	var lastPrice *big.Int
	for remaining.Sign() > 0 {
		bestBid := e.index.BestPrice(common.Bid)
		if bestBid.Sign() == 0 {
			break
		}
		bidID, ok := e.index.FrontOrderID(common.Bid, bestBid)
		if !ok {
			break
		}
		bid := e.store.Get(bidID)

		fill := common.MinBig(remaining, bid.Remaining)
		proceeds := common.MulDivFloor(fill, bestBid, common.UNIT)
		if err := e.priceAsset.Transfer(ctx, taker, proceeds); err != nil {
			return common.Order{}, fmt.Errorf("pay taker: %w", err)
		}
		if err := e.bookAsset.Transfer(ctx, bid.Maker, fill); err != nil {
			return common.Order{}, fmt.Errorf("deliver book asset to bid: %w", err)
		}

		_ = e.store.RecordFill(id, fill, now)
		_ = e.store.RecordFill(bidID, fill, now)
		remaining.Sub(remaining, fill)
		lastPrice = new(big.Int).Set(bestBid)

		if e.store.Get(bidID).Remaining.Sign() == 0 {
			e.index.DequeueHead(common.Bid, bestBid)
		}
		e.marketPrice = new(big.Int).Set(bestBid)

		e.reportFill(common.Fill{
			TakerOrderID: id,
			MakerOrderID: bidID,
			Taker:        taker,
			Maker:        bid.Maker,
			Price:        new(big.Int).Set(bestBid),
			BookAmount:   fill,
			PriceAmount:  proceeds,
			Timestamp:    now,
		})
	}

	if remaining.Sign() > 0 {
		restPrice := lastPrice
		if restPrice == nil {
			restPrice = plan.lastPrice
		}
		_ = e.store.RecordFill(id, remaining, now)
		residualID := e.store.Create(taker, restPrice, remaining, common.Ask, now)
		e.index.Enqueue(common.Ask, restPrice, residualID)
	}

	return e.store.Get(id), nil
}
