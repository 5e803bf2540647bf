package ledger

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMintAndBalanceOf(t *testing.T) {
	l := NewInMemory("test")
	l.Mint("alice", big.NewInt(100))
	assert.Equal(t, big.NewInt(100), l.BalanceOf("alice"))
	assert.Equal(t, big.NewInt(0), l.BalanceOf("bob"))
}

func TestTransferFrom(t *testing.T) {
	l := NewInMemory("test")
	l.Mint("alice", big.NewInt(100))

	err := l.TransferFrom(context.Background(), "alice", EngineAccount, big.NewInt(40))
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(60), l.BalanceOf("alice"))
	assert.Equal(t, big.NewInt(40), l.BalanceOf(EngineAccount))
}

func TestTransferFromInsufficientFunds(t *testing.T) {
	l := NewInMemory("test")
	l.Mint("alice", big.NewInt(10))

	err := l.TransferFrom(context.Background(), "alice", EngineAccount, big.NewInt(11))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, big.NewInt(10), l.BalanceOf("alice")) // unchanged on revert
}

func TestTransferMovesFromEngineAccount(t *testing.T) {
	l := NewInMemory("test")
	l.Mint(EngineAccount, big.NewInt(50))

	err := l.Transfer(context.Background(), "bob", big.NewInt(50))
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(50), l.BalanceOf("bob"))
	assert.Equal(t, big.NewInt(0), l.BalanceOf(EngineAccount))
}
