package book

import "math/big"

// priceLevel is one resting price on one side of the book: the price
// itself plus the FIFO queue of order ids waiting at that price, in time
// priority.
type priceLevel struct {
	price  *big.Int
	orders []uint64
}
