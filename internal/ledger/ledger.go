// Package ledger implements the out-of-scope external collaborator the
// spec calls AssetLedger: an in-process reference stand-in for the two
// fungible-token ledgers (bookAsset, priceAsset) the engine moves assets
// through. Real deployments would point engine.Ledger at two ERC20-style
// contracts; this package exists so the engine, its tests, and the TCP/
// HTTP demo servers are runnable without one.
package ledger

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/saiputravu/ledgerbook/internal/common"
	"github.com/shopspring/decimal"
)

// ErrInsufficientFunds is the revert the engine propagates (wrapped with
// %w, so errors.Is still matches it) when a transferFrom cannot be
// satisfied, matching the spec's "Insufficient funds" wire error.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Ledger is the exact surface the matching engine consumes from an
// external asset ledger: transferFrom, transfer, and balanceOf, all with
// revert-on-failure semantics (a non-nil error leaves no balance mutated).
type Ledger interface {
	TransferFrom(ctx context.Context, owner, to string, amount *big.Int) error
	Transfer(ctx context.Context, to string, amount *big.Int) error
	BalanceOf(owner string) *big.Int
}

// InMemory is a reference Ledger backed by a plain balance map. It is not
// part of the spec's core (the spec explicitly delegates custody to an
// external ledger) but gives the engine something concrete to hold
// escrow in in tests and the demo servers.
type InMemory struct {
	name string

	mu       sync.Mutex
	balances map[string]*big.Int
}

// NewInMemory builds an empty ledger. Name is used only for logging.
func NewInMemory(name string) *InMemory {
	return &InMemory{name: name, balances: make(map[string]*big.Int)}
}

// Mint credits owner with amount, bypassing transfer semantics. Used only
// to seed balances in tests and the demo CLI, analogous to the
// original_source deploy scripts minting MockERC20 supply to test
// accounts.
func (l *InMemory) Mint(owner string, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balanceLocked(owner).Add(l.balanceLocked(owner), amount)
}

func (l *InMemory) balanceLocked(owner string) *big.Int {
	b, ok := l.balances[owner]
	if !ok {
		b = big.NewInt(0)
		l.balances[owner] = b
	}
	return b
}

// TransferFrom moves amount from owner to to, reverting with
// ErrInsufficientFunds if owner's balance cannot cover it.
func (l *InMemory) TransferFrom(_ context.Context, owner, to string, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	from := l.balanceLocked(owner)
	if from.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	from.Sub(from, amount)
	l.balanceLocked(to).Add(l.balanceLocked(to), amount)
	return nil
}

// Transfer moves amount out of the caller's own held balance (the
// engine's escrow account) to to.
func (l *InMemory) Transfer(ctx context.Context, to string, amount *big.Int) error {
	return l.TransferFrom(ctx, EngineAccount, to, amount)
}

// BalanceOf returns owner's current balance, zero if never credited.
func (l *InMemory) BalanceOf(owner string) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.balanceLocked(owner))
}

// String renders the ledger's balances for logging/debugging, formatting
// each UNIT-scaled amount with shopspring/decimal the way the rest of the
// pack's ledger printers (e.g. the microcoin example's balance displays)
// render fixed-point token amounts for humans.
func (l *InMemory) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	scale := decimal.NewFromBigInt(common.UNIT, 0)
	out := l.name + " ledger:\n"
	for owner, bal := range l.balances {
		d := decimal.NewFromBigInt(bal, 0).DivRound(scale, 18)
		out += "  " + owner + ": " + d.String() + "\n"
	}
	return out
}

// EngineAccount is the identity the engine escrows assets under in the
// external ledgers. It is the sole authorised mover of its own balance.
const EngineAccount = "engine"
