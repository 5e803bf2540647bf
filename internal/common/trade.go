package common

import (
	"fmt"
	"math/big"
	"time"
)

// Fill accounts for the two parties who matched in a single atomic
// execution: the taker that triggered the cross and the resting maker
// whose queue position it consumed.
type Fill struct {
	TakerOrderID uint64
	MakerOrderID uint64
	Taker        string
	Maker        string
	Price        *big.Int
	BookAmount   *big.Int
	PriceAmount  *big.Int
	Timestamp    time.Time
}

func (f Fill) String() string {
	return fmt.Sprintf(
		`Fill taker=#%d(%s) maker=#%d(%s) price=%s bookAmount=%s priceAmount=%s at=%v`,
		f.TakerOrderID, f.Taker,
		f.MakerOrderID, f.Maker,
		f.Price, f.BookAmount, f.PriceAmount,
		f.Timestamp.Format(time.RFC3339),
	)
}
