package store

import (
	"math/big"
	"testing"
	"time"

	"github.com/saiputravu/ledgerbook/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestCreateAndGet(t *testing.T) {
	s := New()
	now := time.Now()

	id := s.Create("alice", big.NewInt(100), big.NewInt(10), common.Bid, now)
	assert.Equal(t, uint64(1), id)

	o := s.Get(id)
	assert.Equal(t, "alice", o.Maker)
	assert.Equal(t, common.Open, o.Status)
	assert.Equal(t, big.NewInt(10), o.Remaining)
}

func TestGetUnknownReturnsZeroOrder(t *testing.T) {
	s := New()
	assert.True(t, s.Get(999).IsZero())
}

func TestRecordFillClosesWhenExhausted(t *testing.T) {
	s := New()
	now := time.Now()
	id := s.Create("alice", big.NewInt(100), big.NewInt(10), common.Bid, now)

	assert.NoError(t, s.RecordFill(id, big.NewInt(4), now))
	o := s.Get(id)
	assert.Equal(t, big.NewInt(6), o.Remaining)
	assert.Equal(t, common.Open, o.Status)

	assert.NoError(t, s.RecordFill(id, big.NewInt(6), now))
	o = s.Get(id)
	assert.Equal(t, 0, o.Remaining.Sign())
	assert.Equal(t, common.Filled, o.Status)

	history := s.MatchHistory(id)
	assert.Len(t, history, 2)
}

func TestRecordFillExceedsRemaining(t *testing.T) {
	s := New()
	now := time.Now()
	id := s.Create("alice", big.NewInt(100), big.NewInt(10), common.Bid, now)

	err := s.RecordFill(id, big.NewInt(11), now)
	assert.ErrorIs(t, err, ErrFillExceedsRemaining)
}

func TestCancel(t *testing.T) {
	s := New()
	now := time.Now()
	id := s.Create("alice", big.NewInt(100), big.NewInt(10), common.Bid, now)

	assert.NoError(t, s.Cancel(id, now))
	assert.Equal(t, common.Cancelled, s.Get(id).Status)

	err := s.Cancel(id, now)
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestUserOrderAt(t *testing.T) {
	s := New()
	now := time.Now()
	id1 := s.Create("alice", big.NewInt(100), big.NewInt(10), common.Bid, now)
	id2 := s.Create("alice", big.NewInt(101), big.NewInt(5), common.Bid, now)

	got, err := s.UserOrderAt("alice", 0)
	assert.NoError(t, err)
	assert.Equal(t, id1, got)

	got, err = s.UserOrderAt("alice", 1)
	assert.NoError(t, err)
	assert.Equal(t, id2, got)

	_, err = s.UserOrderAt("alice", 2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = s.UserOrderAt("bob", 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}
