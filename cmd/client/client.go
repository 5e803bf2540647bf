package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"math/big"
	"net"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	ledgernet "github.com/saiputravu/ledgerbook/internal/net"
)

func main() {
	serverAddr := flag.String("server", "127.0.0.1:9001", "Address of the exchange server")
	maker := flag.String("maker", "", "Maker identity (compulsory)")
	action := flag.String("action", "bid", "Action: ['bid', 'ask', 'marketbuy', 'marketsell', 'cancel', 'log']")

	price := flag.String("price", "100000000000000000000", "UNIT-scaled limit price")
	amount := flag.String("amount", "1000000000000000000", "UNIT-scaled amount")
	orderID := flag.Uint64("order", 0, "Order id to cancel")

	flag.Parse()

	if *maker == "" {
		fmt.Println("Error: -maker is compulsory.")
		flag.Usage()
		os.Exit(1)
	}

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("Failed to connect to server at %s: %v", *serverAddr, err)
	}
	defer conn.Close()
	fmt.Printf("Connected to %s as '%s'\n", *serverAddr, *maker)

	go readReports(conn)

	correlationID := uuid.New()

	switch strings.ToLower(*action) {
	case "bid", "ask":
		p, ok := new(big.Int).SetString(*price, 10)
		if !ok {
			log.Fatalf("invalid price %q", *price)
		}
		a, ok := new(big.Int).SetString(*amount, 10)
		if !ok {
			log.Fatalf("invalid amount %q", *amount)
		}
		typeOf := ledgernet.AddBid
		if strings.ToLower(*action) == "ask" {
			typeOf = ledgernet.AddAsk
		}
		buf := ledgernet.EncodeOrderMessage(typeOf, correlationID, *maker, p, a)
		if _, err := conn.Write(buf); err != nil {
			log.Fatalf("write failed: %v", err)
		}
		fmt.Printf("-> Sent %s order: %s @ %s\n", strings.ToUpper(*action), *amount, *price)

	case "marketbuy", "marketsell":
		a, ok := new(big.Int).SetString(*amount, 10)
		if !ok {
			log.Fatalf("invalid amount %q", *amount)
		}
		typeOf := ledgernet.MarketBuy
		if strings.ToLower(*action) == "marketsell" {
			typeOf = ledgernet.MarketSell
		}
		buf := ledgernet.EncodeMarketOrderMessage(typeOf, correlationID, *maker, a)
		if _, err := conn.Write(buf); err != nil {
			log.Fatalf("write failed: %v", err)
		}
		fmt.Printf("-> Sent %s order: %s\n", strings.ToUpper(*action), *amount)

	case "cancel":
		if *orderID == 0 {
			log.Fatal("Error: -order is required for cancellation")
		}
		buf := ledgernet.EncodeCancelOrderMessage(correlationID, *maker, *orderID)
		if _, err := conn.Write(buf); err != nil {
			log.Fatalf("write failed: %v", err)
		}
		fmt.Printf("-> Sent cancel request for order %d\n", *orderID)

	case "log":
		buf := ledgernet.EncodeHeaderOnlyMessage(ledgernet.LogBook, correlationID)
		if _, err := conn.Write(buf); err != nil {
			log.Fatalf("write failed: %v", err)
		}
		fmt.Println("-> Sent log request")

	default:
		log.Fatalf("Unknown action: %s", *action)
	}

	fmt.Println("\nListening for reports... (Press Ctrl+C to exit)")
	select {}
}

// readReports continuously reads and parses Report messages from the
// server. It mirrors the teacher's cmd/client/client.go reader loop,
// adapted to the new fixed-then-variable frame layout.
func readReports(conn net.Conn) {
	for {
		fixed := make([]byte, 1+16+1+8+8+8+2)
		if _, err := io.ReadFull(conn, fixed); err != nil {
			if err != io.EOF {
				log.Printf("connection lost: %v", err)
			}
			os.Exit(0)
		}

		msgType := fixed[0]
		side := fixed[17]
		tsNanos := binary.BigEndian.Uint64(fixed[18:26])
		_ = binary.BigEndian.Uint64(fixed[26:34]) // taker order id
		_ = binary.BigEndian.Uint64(fixed[34:42]) // maker order id
		priceLen := binary.BigEndian.Uint16(fixed[42:44])

		priceBuf := make([]byte, priceLen)
		if _, err := io.ReadFull(conn, priceBuf); err != nil {
			log.Printf("error reading price: %v", err)
			return
		}
		price := new(big.Int).SetBytes(priceBuf)

		amountLenBuf := make([]byte, 2)
		if _, err := io.ReadFull(conn, amountLenBuf); err != nil {
			log.Printf("error reading amount length: %v", err)
			return
		}
		amountBuf := make([]byte, binary.BigEndian.Uint16(amountLenBuf))
		if _, err := io.ReadFull(conn, amountBuf); err != nil {
			log.Printf("error reading amount: %v", err)
			return
		}
		amount := new(big.Int).SetBytes(amountBuf)

		counterpartyLenBuf := make([]byte, 1)
		if _, err := io.ReadFull(conn, counterpartyLenBuf); err != nil {
			log.Printf("error reading counterparty length: %v", err)
			return
		}
		counterparty := make([]byte, counterpartyLenBuf[0])
		if _, err := io.ReadFull(conn, counterparty); err != nil {
			log.Printf("error reading counterparty: %v", err)
			return
		}

		errLenBuf := make([]byte, 4)
		if _, err := io.ReadFull(conn, errLenBuf); err != nil {
			log.Printf("error reading error length: %v", err)
			return
		}
		errStr := make([]byte, binary.BigEndian.Uint32(errLenBuf))
		if _, err := io.ReadFull(conn, errStr); err != nil {
			log.Printf("error reading error string: %v", err)
			return
		}

		ts := time.Unix(0, int64(tsNanos))
		if ledgernet.ReportMessageType(msgType) == ledgernet.ErrorReport {
			fmt.Printf("\n[SERVER ERROR @ %s] %s\n", ts.Format(time.RFC3339), string(errStr))
		} else {
			sideStr := "BID"
			if side == byte(1) {
				sideStr = "ASK"
			}
			fmt.Printf("\n[EXECUTION @ %s] side=%s amount=%s price=%s vs=%s\n",
				ts.Format(time.RFC3339), sideStr, amount.String(), price.String(), string(counterparty))
		}
	}
}
