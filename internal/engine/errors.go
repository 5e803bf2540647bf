package engine

import "errors"

// Precondition and state errors, one sentinel per wire-level failure
// string in spec.md §6/§7. The teacher follows the same pattern in
// internal/engine/orderbook.go (ErrNotEnoughLiquidity, ErrRejection); we
// extend it to the full set this spec's PublicAPI needs to surface.
var (
	ErrInvalidPrice         = errors.New("price must be greater than zero")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrCrossingViolationBid = errors.New("price must be less or equal than best ask price")
	ErrCrossingViolationAsk = errors.New("price must be greater or equal than best bid price")
	ErrNoOpenAsks           = errors.New("no open asks")
	ErrNoOpenBids           = errors.New("no open bids")
	ErrOrderNotFound        = errors.New("order not found")
	ErrNotMaker             = errors.New("not order maker")
	ErrNotOpen              = errors.New("order not open")
)
