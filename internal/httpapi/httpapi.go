// Package httpapi exposes the matching engine's read-only surface
// (spec.md §4.4) over HTTP/JSON: order lookups, user order history, match
// history, and the best-price/book-stack accessors. It has no analogue in
// the teacher repo, which only exposes the engine over its TCP wire
// protocol; it is grounded on the use of github.com/gorilla/mux
// elsewhere in the retrieved pack for exactly this kind of routed
// accessor surface, and follows the teacher's zerolog logging
// conventions.
package httpapi

import (
	"encoding/json"
	"math/big"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/saiputravu/ledgerbook/internal/common"
)

// Engine is the read-only subset of *engine.Engine this surface serves.
type Engine interface {
	Order(id uint64) common.Order
	UserOrderAt(maker string, index int) (uint64, error)
	UserOrders(maker string) []uint64
	MatchHistory(id uint64) []common.MatchRecord
	QueueAt(side common.Side, price *big.Int) []uint64
	QueueIndexAt(side common.Side, price *big.Int, index int) (uint64, error)
	Stack(side common.Side) []*big.Int
	StackAt(side common.Side, index int) (*big.Int, error)
	BestBidPrice() *big.Int
	BestAskPrice() *big.Int
	MarketPrice() *big.Int
}

// Handler builds the routed http.Handler for the given engine.
func Handler(eng Engine) http.Handler {
	r := mux.NewRouter()
	h := &server{eng: eng}

	r.HandleFunc("/orders/{id}", h.order).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}/history", h.matchHistory).Methods(http.MethodGet)
	r.HandleFunc("/users/{maker}/orders", h.userOrders).Methods(http.MethodGet)
	r.HandleFunc("/users/{maker}/orders/{index}", h.userOrderAt).Methods(http.MethodGet)
	r.HandleFunc("/book/{side}/stack", h.stack).Methods(http.MethodGet)
	r.HandleFunc("/book/{side}/stack/{index}", h.stackAt).Methods(http.MethodGet)
	r.HandleFunc("/book/{side}/{price}", h.queueAt).Methods(http.MethodGet)
	r.HandleFunc("/market", h.market).Methods(http.MethodGet)

	return r
}

type server struct {
	eng Engine
}

func parseSide(s string) (common.Side, bool) {
	switch s {
	case "bids":
		return common.Bid, true
	case "asks":
		return common.Ask, true
	default:
		return 0, false
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed encoding http response")
	}
}

func (s *server) order(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}
	writeJSON(w, s.eng.Order(id))
}

func (s *server) matchHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}
	writeJSON(w, s.eng.MatchHistory(id))
}

func (s *server) userOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.eng.UserOrders(mux.Vars(r)["maker"]))
}

func (s *server) userOrderAt(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		http.Error(w, "invalid index", http.StatusBadRequest)
		return
	}
	id, err := s.eng.UserOrderAt(vars["maker"], index)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, id)
}

func (s *server) stack(w http.ResponseWriter, r *http.Request) {
	side, ok := parseSide(mux.Vars(r)["side"])
	if !ok {
		http.Error(w, "invalid side", http.StatusBadRequest)
		return
	}
	stack := s.eng.Stack(side)
	out := make([]string, len(stack))
	for i, p := range stack {
		out[i] = p.String()
	}
	writeJSON(w, out)
}

func (s *server) stackAt(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	side, ok := parseSide(vars["side"])
	if !ok {
		http.Error(w, "invalid side", http.StatusBadRequest)
		return
	}
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		http.Error(w, "invalid index", http.StatusBadRequest)
		return
	}
	price, err := s.eng.StackAt(side, index)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, price.String())
}

func (s *server) queueAt(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	side, ok := parseSide(vars["side"])
	if !ok {
		http.Error(w, "invalid side", http.StatusBadRequest)
		return
	}
	price, ok := new(big.Int).SetString(vars["price"], 10)
	if !ok {
		http.Error(w, "invalid price", http.StatusBadRequest)
		return
	}
	writeJSON(w, s.eng.QueueAt(side, price))
}

func (s *server) market(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"bestBid":     s.eng.BestBidPrice().String(),
		"bestAsk":     s.eng.BestAskPrice().String(),
		"marketPrice": s.eng.MarketPrice().String(),
	})
}
