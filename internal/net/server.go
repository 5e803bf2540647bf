// Package net implements the TCP wire transport around a MatchingEngine:
// a length-prefixed binary protocol for the five mutating operations plus
// heartbeat and LogBook messages (accepted and ignored), and the execution/rejection
// reports pushed back to connected makers. Grounded on the teacher's
// internal/net package (worker-pool-backed connection handling via
// gopkg.in/tomb.v2, zerolog logging), generalized from its per-AssetType
// PlaceOrder/CancelOrder surface to this spec's five fixed operations.
package net

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/saiputravu/ledgerbook/internal/common"
	tomb "gopkg.in/tomb.v2"
)

const (
	maxRecvSize        = 4 * 1024
	defaultNWorkers    = 10
	defaultConnTimeout = 30 * time.Second
)

var (
	ErrImproperConversion = errors.New("improper type conversion")
	ErrClientDoesNotExist = errors.New("client does not exist")
)

// Engine is the subset of *engine.Engine the wire server drives. Matching
// the teacher's net.Engine interface keeps the transport decoupled from
// the matching engine's concrete type.
type Engine interface {
	AddBid(ctx context.Context, maker string, price, amount *big.Int) (common.Order, error)
	AddAsk(ctx context.Context, maker string, price, amount *big.Int) (common.Order, error)
	MarketBuy(ctx context.Context, taker string, amount *big.Int) (common.Order, error)
	MarketSell(ctx context.Context, taker string, amount *big.Int) (common.Order, error)
	CancelOrder(ctx context.Context, caller string, id uint64) error
}

// clientSession tracks a connected TCP client by the maker identity named
// in its most recent order or cancel message. The identity is not
// authenticated.
type clientSession struct {
	conn net.Conn
}

// clientMessage links a parsed request to the connection it arrived on.
type clientMessage struct {
	conn    net.Conn
	message Message
}

// Server is the TCP front end of the exchange: it accepts connections, a
// bounded worker pool reads frames off them, and a single session
// handler goroutine serializes dispatch into the engine.
type Server struct {
	address string
	port    int
	engine  Engine

	pool   workerPool
	cancel context.CancelFunc

	sessionsByMaker map[string]clientSession
	sessionsLock    sync.Mutex

	messages chan clientMessage
}

// New constructs a Server bound to address:port, driving engine with a
// connection-handling pool of workers goroutines (defaultNWorkers if <= 0).
func New(address string, port int, engine Engine, workers int) *Server {
	if workers <= 0 {
		workers = defaultNWorkers
	}
	return &Server{
		address:         address,
		port:            port,
		engine:          engine,
		pool:            newWorkerPool(workers),
		sessionsByMaker: make(map[string]clientSession),
		messages:        make(chan clientMessage, 1),
	}
}

// Shutdown cancels the server's run context.
func (s *Server) Shutdown() {
	log.Info().Msg("server shutting down")
	if s.cancel != nil {
		s.cancel()
	}
}

// Run accepts connections until ctx is cancelled. It blocks; callers
// typically invoke it in its own goroutine.
func (s *Server) Run(ctx context.Context) {
	defer s.Shutdown()

	ctx, s.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		log.Error().Err(err).Msg("unable to start listener")
		return
	}
	defer func() {
		if err := listener.Close(); err != nil {
			log.Error().Err(err).Msg("unable to close listener")
		}
	}()

	t.Go(func() error {
		s.pool.Setup(t, s.handleConnection)
		return nil
	})
	t.Go(func() error {
		return s.sessionHandler(t)
	})

	log.Info().Str("address", listener.Addr().String()).Msg("server running")

	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn, err := listener.Accept()
			if err != nil {
				log.Error().Err(err).Msg("error accepting client")
				continue
			}
			log.Info().Str("address", conn.RemoteAddr().String()).Msg("new client connected")
			s.pool.AddTask(conn)
		}
	}
}

// ReportFill implements engine.Reporter: it pushes an execution report to
// both the taker and maker of a fill, if they currently have a live
// connection.
func (s *Server) ReportFill(fill common.Fill) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()

	takerReport, makerReport := generateWireFillReports(fill)
	if sess, ok := s.sessionsByMaker[fill.Taker]; ok {
		if _, err := sess.conn.Write(takerReport); err != nil {
			log.Error().Err(err).Str("maker", fill.Taker).Msg("unable to send execution report")
			delete(s.sessionsByMaker, fill.Taker)
		}
	}
	if sess, ok := s.sessionsByMaker[fill.Maker]; ok {
		if _, err := sess.conn.Write(makerReport); err != nil {
			log.Error().Err(err).Str("maker", fill.Maker).Msg("unable to send execution report")
			delete(s.sessionsByMaker, fill.Maker)
		}
	}
}

// ReportReject implements engine.Reporter: it pushes an error report to
// maker's live connection, if any.
func (s *Server) ReportReject(maker string, err error) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()

	sess, ok := s.sessionsByMaker[maker]
	if !ok {
		return
	}
	report := generateWireErrorReport(uuid.Nil, err)
	if _, werr := sess.conn.Write(report); werr != nil {
		log.Error().Err(werr).Str("maker", maker).Msg("unable to send error report")
		delete(s.sessionsByMaker, maker)
	}
}

func (s *Server) sessionHandler(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case msg := <-s.messages:
			if err := s.handleMessage(msg); err != nil {
				log.Error().Err(err).Msg("error handling message")
			}
		}
	}
}

func (s *Server) handleMessage(cm clientMessage) error {
	ctx := context.Background()

	switch m := cm.message.(type) {
	case OrderMessage:
		s.registerSession(m.Maker, cm.conn)
		var err error
		if m.TypeOf == AddBid {
			_, err = s.engine.AddBid(ctx, m.Maker, m.Price, m.Amount)
		} else {
			_, err = s.engine.AddAsk(ctx, m.Maker, m.Price, m.Amount)
		}
		return err
	case MarketOrderMessage:
		s.registerSession(m.Maker, cm.conn)
		var err error
		if m.TypeOf == MarketBuy {
			_, err = s.engine.MarketBuy(ctx, m.Maker, m.Amount)
		} else {
			_, err = s.engine.MarketSell(ctx, m.Maker, m.Amount)
		}
		return err
	case CancelOrderMessage:
		s.registerSession(m.Maker, cm.conn)
		return s.engine.CancelOrder(ctx, m.Maker, m.OrderID)
	case baseMessage:
		if m.TypeOf != Heartbeat && m.TypeOf != LogBook {
			return ErrInvalidMessageType
		}
		return nil
	default:
		return ErrInvalidMessageType
	}
}

func (s *Server) registerSession(maker string, conn net.Conn) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	s.sessionsByMaker[maker] = clientSession{conn: conn}
}

// handleConnection is a short-lived worker invocation: it reads exactly
// one frame off conn, parses it, forwards it to the session handler, and
// re-queues the connection for its next frame. Any error returned here is
// fatal to the worker goroutine that owns it, matching the teacher's
// contract.
func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	conn, ok := task.(net.Conn)
	if !ok {
		return ErrImproperConversion
	}

	select {
	case <-t.Dying():
		_ = conn.Close()
		return nil
	default:
	}

	if err := conn.SetDeadline(time.Now().Add(defaultConnTimeout)); err != nil {
		log.Error().Err(err).Str("address", conn.RemoteAddr().String()).Msg("failed setting deadline")
		_ = conn.Close()
		return nil
	}

	buffer := make([]byte, maxRecvSize)
	n, err := conn.Read(buffer)
	if err != nil {
		log.Debug().Err(err).Str("address", conn.RemoteAddr().String()).Msg("connection closed")
		_ = conn.Close()
		return nil
	}

	message, err := parseMessage(buffer[:n])
	if err != nil {
		log.Error().Err(err).Str("address", conn.RemoteAddr().String()).Msg("error parsing message")
		_, _ = conn.Write(generateWireErrorReport(uuid.Nil, err))
		s.pool.AddTask(conn)
		return nil
	}

	s.messages <- clientMessage{conn: conn, message: message}
	s.pool.AddTask(conn)
	return nil
}
