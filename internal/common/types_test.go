package common

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMulDivFloor(t *testing.T) {
	got := MulDivFloor(big.NewInt(7), big.NewInt(3), big.NewInt(2))
	assert.Equal(t, big.NewInt(10), got) // floor(7*3/2) = floor(10.5) = 10
}

func TestMinBig(t *testing.T) {
	assert.Equal(t, big.NewInt(3), MinBig(big.NewInt(3), big.NewInt(5)))
	assert.Equal(t, big.NewInt(3), MinBig(big.NewInt(5), big.NewInt(3)))
}

func TestSideString(t *testing.T) {
	assert.Equal(t, "BID", Bid.String())
	assert.Equal(t, "ASK", Ask.String())
	assert.Equal(t, "MARKET_BUY", MarketBuy.String())
	assert.Equal(t, "MARKET_SELL", MarketSell.String())
}
