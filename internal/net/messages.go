package net

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/saiputravu/ledgerbook/internal/common"
)

var (
	ErrInvalidMessageType = errors.New("invalid message type")
	ErrMessageTooShort    = errors.New("message too short")
)

// MessageType identifies the operation a wire message requests. These map
// 1:1 onto the MatchingEngine's five mutating operations, plus a
// heartbeat and a LogBook message (both accepted by the server with no
// effect), mirroring the teacher's
// NewOrder/CancelOrder/Heartbeat enumeration in internal/net/messages.go.
type MessageType uint16

const (
	Heartbeat MessageType = iota
	AddBid
	AddAsk
	MarketBuy
	MarketSell
	CancelOrder
	LogBook
)

// ReportMessageType distinguishes a successful fill report from a
// rejection, the same split the teacher's ExecutionReport/ErrorReport
// pair makes.
type ReportMessageType uint8

const (
	ExecutionReport ReportMessageType = iota
	ErrorReport
)

// Message is any parsed request frame. CorrelationID is the client's
// per-request id; the server parses it but does not copy it into the
// reports it sends back (fill reports carry a zero id and error reports
// carry uuid.Nil). It rides on the wire only, never entering the core
// OrderId space the engine tracks.
type Message interface {
	GetType() MessageType
	GetCorrelationID() uuid.UUID
}

const baseMessageHeaderLen = 2 + 16 // type + correlation uuid

type baseMessage struct {
	TypeOf        MessageType
	CorrelationID uuid.UUID
}

func (m baseMessage) GetType() MessageType        { return m.TypeOf }
func (m baseMessage) GetCorrelationID() uuid.UUID { return m.CorrelationID }

// OrderMessage carries an AddBid or AddAsk request: price and amount are
// already UNIT-scaled big.Int magnitudes.
type OrderMessage struct {
	baseMessage
	Maker  string
	Price  *big.Int
	Amount *big.Int
}

// MarketOrderMessage carries a MarketBuy or MarketSell request.
type MarketOrderMessage struct {
	baseMessage
	Maker  string
	Amount *big.Int
}

// CancelOrderMessage carries a CancelOrder request.
type CancelOrderMessage struct {
	baseMessage
	Maker   string
	OrderID uint64
}

func putBigInt(buf []byte, v *big.Int) []byte {
	b := v.Bytes()
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(b)))
	buf = append(buf, lenBuf[:]...)
	return append(buf, b...)
}

func readBigInt(msg []byte) (*big.Int, []byte, error) {
	if len(msg) < 2 {
		return nil, nil, ErrMessageTooShort
	}
	n := int(binary.BigEndian.Uint16(msg[0:2]))
	msg = msg[2:]
	if len(msg) < n {
		return nil, nil, ErrMessageTooShort
	}
	return new(big.Int).SetBytes(msg[:n]), msg[n:], nil
}

func putString(buf []byte, s string) []byte {
	var lenBuf [1]byte
	lenBuf[0] = byte(len(s))
	buf = append(buf, lenBuf[:]...)
	return append(buf, []byte(s)...)
}

func readString(msg []byte) (string, []byte, error) {
	if len(msg) < 1 {
		return "", nil, ErrMessageTooShort
	}
	n := int(msg[0])
	msg = msg[1:]
	if len(msg) < n {
		return "", nil, ErrMessageTooShort
	}
	return string(msg[:n]), msg[n:], nil
}

func parseMessage(msg []byte) (Message, error) {
	if len(msg) < baseMessageHeaderLen {
		return nil, ErrMessageTooShort
	}
	typeOf := MessageType(binary.BigEndian.Uint16(msg[0:2]))
	correlationID, err := uuid.FromBytes(msg[2:18])
	if err != nil {
		return nil, fmt.Errorf("parse correlation id: %w", err)
	}
	base := baseMessage{TypeOf: typeOf, CorrelationID: correlationID}
	body := msg[baseMessageHeaderLen:]

	switch typeOf {
	case Heartbeat, LogBook:
		return base, nil
	case AddBid, AddAsk:
		return parseOrderMessage(base, body)
	case MarketBuy, MarketSell:
		return parseMarketOrderMessage(base, body)
	case CancelOrder:
		return parseCancelOrderMessage(base, body)
	default:
		return nil, ErrInvalidMessageType
	}
}

func parseOrderMessage(base baseMessage, body []byte) (OrderMessage, error) {
	price, body, err := readBigInt(body)
	if err != nil {
		return OrderMessage{}, err
	}
	amount, body, err := readBigInt(body)
	if err != nil {
		return OrderMessage{}, err
	}
	maker, _, err := readString(body)
	if err != nil {
		return OrderMessage{}, err
	}
	return OrderMessage{baseMessage: base, Maker: maker, Price: price, Amount: amount}, nil
}

func parseMarketOrderMessage(base baseMessage, body []byte) (MarketOrderMessage, error) {
	amount, body, err := readBigInt(body)
	if err != nil {
		return MarketOrderMessage{}, err
	}
	maker, _, err := readString(body)
	if err != nil {
		return MarketOrderMessage{}, err
	}
	return MarketOrderMessage{baseMessage: base, Maker: maker, Amount: amount}, nil
}

func parseCancelOrderMessage(base baseMessage, body []byte) (CancelOrderMessage, error) {
	if len(body) < 8 {
		return CancelOrderMessage{}, ErrMessageTooShort
	}
	orderID := binary.BigEndian.Uint64(body[0:8])
	maker, _, err := readString(body[8:])
	if err != nil {
		return CancelOrderMessage{}, err
	}
	return CancelOrderMessage{baseMessage: base, Maker: maker, OrderID: orderID}, nil
}

// EncodeOrderMessage serializes an AddBid/AddAsk request, used by test
// helpers and the demo client.
func EncodeOrderMessage(typeOf MessageType, correlationID uuid.UUID, maker string, price, amount *big.Int) []byte {
	buf := make([]byte, 0, baseMessageHeaderLen+32)
	var typeBuf [2]byte
	binary.BigEndian.PutUint16(typeBuf[:], uint16(typeOf))
	buf = append(buf, typeBuf[:]...)
	buf = append(buf, correlationID[:]...)
	buf = putBigInt(buf, price)
	buf = putBigInt(buf, amount)
	buf = putString(buf, maker)
	return buf
}

// EncodeMarketOrderMessage serializes a MarketBuy/MarketSell request.
func EncodeMarketOrderMessage(typeOf MessageType, correlationID uuid.UUID, maker string, amount *big.Int) []byte {
	buf := make([]byte, 0, baseMessageHeaderLen+16)
	var typeBuf [2]byte
	binary.BigEndian.PutUint16(typeBuf[:], uint16(typeOf))
	buf = append(buf, typeBuf[:]...)
	buf = append(buf, correlationID[:]...)
	buf = putBigInt(buf, amount)
	buf = putString(buf, maker)
	return buf
}

// EncodeCancelOrderMessage serializes a CancelOrder request.
func EncodeCancelOrderMessage(correlationID uuid.UUID, maker string, orderID uint64) []byte {
	buf := make([]byte, 0, baseMessageHeaderLen+16)
	var typeBuf [2]byte
	binary.BigEndian.PutUint16(typeBuf[:], uint16(CancelOrder))
	buf = append(buf, typeBuf[:]...)
	buf = append(buf, correlationID[:]...)
	var idBuf [8]byte
	binary.BigEndian.PutUint64(idBuf[:], orderID)
	buf = append(buf, idBuf[:]...)
	buf = putString(buf, maker)
	return buf
}

// EncodeHeaderOnlyMessage serializes a Heartbeat or LogBook request, both
// of which carry no body.
func EncodeHeaderOnlyMessage(typeOf MessageType, correlationID uuid.UUID) []byte {
	buf := make([]byte, 0, baseMessageHeaderLen)
	var typeBuf [2]byte
	binary.BigEndian.PutUint16(typeBuf[:], uint16(typeOf))
	buf = append(buf, typeBuf[:]...)
	return append(buf, correlationID[:]...)
}

// Report is the wire form of an execution or rejection notice pushed back
// to a connected client.
type Report struct {
	MessageType   ReportMessageType
	CorrelationID uuid.UUID
	Side          common.Side
	Timestamp     time.Time
	TakerOrderID  uint64
	MakerOrderID  uint64
	Price         *big.Int
	BookAmount    *big.Int
	Counterparty  string
	Err           string
}

// Serialize converts the report to its wire form.
func (r *Report) Serialize() []byte {
	buf := make([]byte, 0, 64+len(r.Err)+len(r.Counterparty))
	buf = append(buf, byte(r.MessageType))
	buf = append(buf, r.CorrelationID[:]...)
	buf = append(buf, byte(r.Side))

	var tsBuf [8]byte
	binary.BigEndian.PutUint64(tsBuf[:], uint64(r.Timestamp.UnixNano()))
	buf = append(buf, tsBuf[:]...)

	var takerBuf, makerBuf [8]byte
	binary.BigEndian.PutUint64(takerBuf[:], r.TakerOrderID)
	binary.BigEndian.PutUint64(makerBuf[:], r.MakerOrderID)
	buf = append(buf, takerBuf[:]...)
	buf = append(buf, makerBuf[:]...)

	price := r.Price
	if price == nil {
		price = big.NewInt(0)
	}
	bookAmount := r.BookAmount
	if bookAmount == nil {
		bookAmount = big.NewInt(0)
	}
	buf = putBigInt(buf, price)
	buf = putBigInt(buf, bookAmount)
	buf = putString(buf, r.Counterparty)

	var errLenBuf [4]byte
	binary.BigEndian.PutUint32(errLenBuf[:], uint32(len(r.Err)))
	buf = append(buf, errLenBuf[:]...)
	buf = append(buf, []byte(r.Err)...)

	return buf
}

// generateWireFillReports builds the pair of execution reports addressed
// to each side of a fill, mirroring the teacher's
// generateWireTradeReports.
func generateWireFillReports(fill common.Fill) (takerReport, makerReport []byte) {
	base := Report{
		MessageType:  ExecutionReport,
		Timestamp:    fill.Timestamp,
		TakerOrderID: fill.TakerOrderID,
		MakerOrderID: fill.MakerOrderID,
		Price:        fill.Price,
		BookAmount:   fill.BookAmount,
	}

	taker := base
	taker.Counterparty = fill.Maker
	makerR := base
	makerR.Counterparty = fill.Taker

	return taker.Serialize(), makerR.Serialize()
}

// generateWireErrorReport builds the rejection notice for a failed order.
func generateWireErrorReport(correlationID uuid.UUID, err error) []byte {
	r := Report{
		MessageType:   ErrorReport,
		CorrelationID: correlationID,
		Timestamp:     time.Now(),
		Err:           err.Error(),
	}
	return r.Serialize()
}
