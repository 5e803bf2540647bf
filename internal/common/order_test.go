package common

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrderIsZero(t *testing.T) {
	assert.True(t, Order{}.IsZero())
	assert.False(t, Order{Id: 1, Maker: "alice"}.IsZero())
}

func TestOrderString(t *testing.T) {
	o := Order{
		Id:        1,
		Maker:     "alice",
		Side:      Bid,
		Status:    Open,
		Price:     big.NewInt(100),
		Amount:    big.NewInt(10),
		Remaining: big.NewInt(10),
		CreatedAt: time.Now(),
	}
	assert.Contains(t, o.String(), "alice")
	assert.Contains(t, o.String(), "BID")
}
