package engine

import (
	"context"
	"fmt"
	"math/big"

	"github.com/saiputravu/ledgerbook/internal/common"
	"github.com/saiputravu/ledgerbook/internal/ledger"
)

// AddBid implements spec.md §4.3.1. price and amount must already be
// scaled by common.UNIT. The caller's priceAsset cost is escrowed before
// any book mutation is committed, so a reverted ledger transfer leaves the
// order store and price level index untouched (the atomicity spec.md §7
// requires).
func (e *Engine) AddBid(ctx context.Context, maker string, price, amount *big.Int) (common.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if price.Sign() <= 0 {
		e.reportReject(maker, ErrInvalidPrice)
		return common.Order{}, ErrInvalidPrice
	}
	if amount.Sign() <= 0 {
		e.reportReject(maker, ErrInvalidAmount)
		return common.Order{}, ErrInvalidAmount
	}
	if price.Cmp(e.index.BestPrice(common.Ask)) > 0 {
		e.reportReject(maker, ErrCrossingViolationBid)
		return common.Order{}, ErrCrossingViolationBid
	}

	cost := common.MulDivFloor(amount, price, common.UNIT)
	if err := e.priceAsset.TransferFrom(ctx, maker, e.escrowAccount(), cost); err != nil {
		wrapped := fmt.Errorf("escrow price asset: %w", err)
		e.reportReject(maker, wrapped)
		return common.Order{}, wrapped
	}

	now := e.now()
	id := e.store.Create(maker, price, amount, common.Bid, now)
	remaining := new(big.Int).Set(amount)

	for remaining.Sign() > 0 {
		bestAsk := e.index.BestPrice(common.Ask)
		if bestAsk.Cmp(price) > 0 {
			break
		}
		askID, ok := e.index.FrontOrderID(common.Ask, bestAsk)
		if !ok {
			break
		}
		ask := e.store.Get(askID)

		fill := common.MinBig(remaining, ask.Remaining)
		if err := e.bookAsset.Transfer(ctx, maker, fill); err != nil {
			return common.Order{}, fmt.Errorf("deliver book asset: %w", err)
		}
		proceeds := common.MulDivFloor(fill, bestAsk, common.UNIT)
		if err := e.priceAsset.Transfer(ctx, ask.Maker, proceeds); err != nil {
			return common.Order{}, fmt.Errorf("pay resting ask: %w", err)
		}
		if price.Cmp(bestAsk) > 0 {
			surplus := common.MulDivFloor(fill, new(big.Int).Sub(price, bestAsk), common.UNIT)
			if surplus.Sign() > 0 {
				if err := e.priceAsset.Transfer(ctx, maker, surplus); err != nil {
					return common.Order{}, fmt.Errorf("refund crossing surplus: %w", err)
				}
			}
		}

		_ = e.store.RecordFill(id, fill, now)
		_ = e.store.RecordFill(askID, fill, now)
		remaining.Sub(remaining, fill)

		if e.store.Get(askID).Remaining.Sign() == 0 {
			e.index.DequeueHead(common.Ask, bestAsk)
		}
		e.marketPrice = new(big.Int).Set(bestAsk)

		e.reportFill(common.Fill{
			TakerOrderID: id,
			MakerOrderID: askID,
			Taker:        maker,
			Maker:        ask.Maker,
			Price:        new(big.Int).Set(bestAsk),
			BookAmount:   fill,
			PriceAmount:  proceeds,
			Timestamp:    now,
		})
	}

	if remaining.Sign() > 0 {
		e.index.Enqueue(common.Bid, price, id)
	}
	return e.store.Get(id), nil
}

// AddAsk implements spec.md §4.3.2, symmetric to AddBid: asks escrow
// bookAsset and sweep the bid side, paying the resting bid's own price
// (not the incoming limit) on every fill.
func (e *Engine) AddAsk(ctx context.Context, maker string, price, amount *big.Int) (common.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if price.Sign() <= 0 {
		e.reportReject(maker, ErrInvalidPrice)
		return common.Order{}, ErrInvalidPrice
	}
	if amount.Sign() <= 0 {
		e.reportReject(maker, ErrInvalidAmount)
		return common.Order{}, ErrInvalidAmount
	}
	if price.Cmp(e.index.BestPrice(common.Bid)) < 0 {
		e.reportReject(maker, ErrCrossingViolationAsk)
		return common.Order{}, ErrCrossingViolationAsk
	}

	if err := e.bookAsset.TransferFrom(ctx, maker, e.escrowAccount(), amount); err != nil {
		wrapped := fmt.Errorf("escrow book asset: %w", err)
		e.reportReject(maker, wrapped)
		return common.Order{}, wrapped
	}

	now := e.now()
	id := e.store.Create(maker, price, amount, common.Ask, now)
	remaining := new(big.Int).Set(amount)

	for remaining.Sign() > 0 {
		bestBid := e.index.BestPrice(common.Bid)
		if bestBid.Cmp(price) < 0 {
			break
		}
		bidID, ok := e.index.FrontOrderID(common.Bid, bestBid)
		if !ok {
			break
		}
		bid := e.store.Get(bidID)

		fill := common.MinBig(remaining, bid.Remaining)
		proceeds := common.MulDivFloor(fill, bestBid, common.UNIT)
		if err := e.priceAsset.Transfer(ctx, maker, proceeds); err != nil {
			return common.Order{}, fmt.Errorf("pay ask maker: %w", err)
		}
		if err := e.bookAsset.Transfer(ctx, bid.Maker, fill); err != nil {
			return common.Order{}, fmt.Errorf("deliver book asset to bid: %w", err)
		}

		_ = e.store.RecordFill(id, fill, now)
		_ = e.store.RecordFill(bidID, fill, now)
		remaining.Sub(remaining, fill)

		if e.store.Get(bidID).Remaining.Sign() == 0 {
			e.index.DequeueHead(common.Bid, bestBid)
		}
		e.marketPrice = new(big.Int).Set(bestBid)

		e.reportFill(common.Fill{
			TakerOrderID: id,
			MakerOrderID: bidID,
			Taker:        maker,
			Maker:        bid.Maker,
			Price:        new(big.Int).Set(bestBid),
			BookAmount:   fill,
			PriceAmount:  proceeds,
			Timestamp:    now,
		})
	}

	if remaining.Sign() > 0 {
		e.index.Enqueue(common.Ask, price, id)
	}
	return e.store.Get(id), nil
}

// CancelOrder implements spec.md §4.3.5: it removes a still-open order
// from the book and refunds whatever escrow it was holding back to its
// maker, at the order's own resting price (not the current market).
func (e *Engine) CancelOrder(ctx context.Context, caller string, id uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	o := e.store.Get(id)
	if o.IsZero() {
		return ErrOrderNotFound
	}
	if o.Maker != caller {
		return ErrNotMaker
	}
	if o.Status != common.Open {
		return ErrNotOpen
	}

	side := o.Side
	if side == common.MarketBuy {
		side = common.Bid
	} else if side == common.MarketSell {
		side = common.Ask
	}
	e.index.RemoveByID(side, o.Price, id)

	now := e.now()
	if err := e.store.Cancel(id, now); err != nil {
		return err
	}

	switch side {
	case common.Bid:
		refund := common.MulDivFloor(o.Remaining, o.Price, common.UNIT)
		if refund.Sign() > 0 {
			if err := e.priceAsset.Transfer(ctx, o.Maker, refund); err != nil {
				return fmt.Errorf("refund price asset: %w", err)
			}
		}
	case common.Ask:
		if o.Remaining.Sign() > 0 {
			if err := e.bookAsset.Transfer(ctx, o.Maker, o.Remaining); err != nil {
				return fmt.Errorf("refund book asset: %w", err)
			}
		}
	}

	return nil
}

// escrowAccount is the identity the engine's held assets live under in the
// external ledgers.
func (e *Engine) escrowAccount() string {
	return ledger.EngineAccount
}
