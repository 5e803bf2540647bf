// Package common holds the vocabulary shared by the order store, the price
// level index, and the matching engine: the Order record, its side/status
// enums, and the fixed-point helpers used throughout the book.
package common

import "math/big"

// Side identifies what an order record represents. Bid and Ask are resting
// limit orders; MarketBuy and MarketSell are aggressive, price-unconstrained
// orders that sweep the opposite side of the book.
type Side int

const (
	Bid Side = iota
	Ask
	MarketBuy
	MarketSell
)

func (s Side) String() string {
	switch s {
	case Bid:
		return "BID"
	case Ask:
		return "ASK"
	case MarketBuy:
		return "MARKET_BUY"
	case MarketSell:
		return "MARKET_SELL"
	default:
		return "UNKNOWN"
	}
}

// Status is the lifecycle stage of an Order. Open orders may still receive
// fills; Filled and Cancelled are terminal.
type Status int

const (
	Open Status = iota
	Filled
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Open:
		return "OPEN"
	case Filled:
		return "FILLED"
	case Cancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// UNIT is the fixed scale factor applied to both assets. A price p means p
// scaled units of priceAsset per one scaled unit of bookAsset.
var UNIT = big.NewInt(1_000_000_000_000_000_000)

// MaxUint256 is the sentinel used as bestAskPrice when the ask side of the
// book is empty, mirroring the source contract's use of the type's max
// value rather than a special-cased nil/zero.
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// MulDivFloor computes floor(a*b/denom). All inputs are assumed
// non-negative, so big.Int's truncating Quo is equivalent to floor
// division.
func MulDivFloor(a, b, denom *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	return product.Quo(product, denom)
}

// MinBig returns the smaller of a and b without mutating either.
func MinBig(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}
