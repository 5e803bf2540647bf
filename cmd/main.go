package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/saiputravu/ledgerbook/internal/config"
	"github.com/saiputravu/ledgerbook/internal/engine"
	"github.com/saiputravu/ledgerbook/internal/httpapi"
	"github.com/saiputravu/ledgerbook/internal/ledger"
	"github.com/saiputravu/ledgerbook/internal/net"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	cfg := config.Parse()

	bookAsset := ledger.NewInMemory("book")
	priceAsset := ledger.NewInMemory("price")
	eng := engine.New(bookAsset, priceAsset)

	srv := net.New(cfg.TCPAddress, cfg.TCPPort, eng, cfg.WorkerPoolSize)
	eng.SetReporter(srv)

	go srv.Run(ctx)

	httpSrv := &http.Server{
		Addr:    cfg.HTTPAddress,
		Handler: httpapi.Handler(eng),
	}
	go func() {
		log.Info().Str("address", cfg.HTTPAddress).Msg("http read api listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server exited")
		}
	}()

	<-ctx.Done()
	_ = httpSrv.Shutdown(context.Background())
}
