// Package engine implements the MatchingEngine: the algorithmic core that
// consumes limit and market orders, crosses them against the resting book
// in price-time priority, moves assets through the AssetLedger, and
// updates marketPrice. Grounded on the teacher's internal/engine package,
// generalized from a per-AssetType map of order books down to the single
// fixed (bookAsset, priceAsset) pair this spec describes.
package engine

import (
	"math/big"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/saiputravu/ledgerbook/internal/book"
	"github.com/saiputravu/ledgerbook/internal/common"
	"github.com/saiputravu/ledgerbook/internal/ledger"
	"github.com/saiputravu/ledgerbook/internal/store"
)

// Reporter is notified of every fill and every rejected order, so a
// transport layer (the TCP wire server) can push execution/error reports
// to interested parties. It mirrors the teacher's
// net.Server, which the original cmd/server/server.go wires in via
// Engine.SetReporter.
type Reporter interface {
	ReportFill(fill common.Fill)
	ReportReject(maker string, err error)
}

type noopReporter struct{}

func (noopReporter) ReportFill(common.Fill)     {}
func (noopReporter) ReportReject(string, error) {}

// Engine is the matching engine proper. It owns the OrderStore and
// PriceLevelIndex for the single trading pair it was constructed with, and
// holds references to the two external asset ledgers it moves funds
// through.
type Engine struct {
	mu sync.Mutex

	bookAsset  ledger.Ledger
	priceAsset ledger.Ledger

	store *store.OrderStore
	index *book.PriceLevelIndex

	marketPrice *big.Int
	reporter    Reporter

	now func() time.Time
}

// New constructs an Engine over the given book/price asset ledgers.
// marketPrice, bestBidPrice and bestAskPrice all start at their
// construction-time sentinels (0, 0, MaxUint256 respectively) with empty
// stores, exactly mirroring the original_source contract's constructor,
// which takes only the two token addresses and no other configuration.
func New(bookAsset, priceAsset ledger.Ledger) *Engine {
	return &Engine{
		bookAsset:   bookAsset,
		priceAsset:  priceAsset,
		store:       store.New(),
		index:       book.New(),
		marketPrice: big.NewInt(0),
		reporter:    noopReporter{},
		now:         time.Now,
	}
}

// SetReporter installs the sink for fill/reject notifications. Matches
// the teacher's eng.SetReporter(srv) wiring in cmd/server/server.go.
func (e *Engine) SetReporter(r Reporter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reporter = r
}

func (e *Engine) reportFill(f common.Fill) {
	log.Info().
		Uint64("taker", f.TakerOrderID).
		Uint64("maker", f.MakerOrderID).
		Str("price", f.Price.String()).
		Str("bookAmount", f.BookAmount.String()).
		Msg("fill executed")
	e.reporter.ReportFill(f)
}

func (e *Engine) reportReject(maker string, err error) {
	log.Warn().Str("maker", maker).Err(err).Msg("order rejected")
	e.reporter.ReportReject(maker, err)
}

// BestBidPrice, BestAskPrice and MarketPrice are the three scalar
// read-only accessors of spec.md §4.4.
func (e *Engine) BestBidPrice() *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index.BestPrice(common.Bid)
}

func (e *Engine) BestAskPrice() *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index.BestPrice(common.Ask)
}

func (e *Engine) MarketPrice() *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return new(big.Int).Set(e.marketPrice)
}
