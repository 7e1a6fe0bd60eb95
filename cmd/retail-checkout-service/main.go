// Package main boots the Retail Checkout Service HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairyhunter13/retail-checkout-service/internal/config"
	"github.com/fairyhunter13/retail-checkout-service/internal/engine"
	httpapi "github.com/fairyhunter13/retail-checkout-service/internal/http"
	"github.com/fairyhunter13/retail-checkout-service/internal/obs"
	"github.com/fairyhunter13/retail-checkout-service/internal/snapshot"
)

func main() {
	cfg := config.Load()
	obs.InitLogger()
	obs.Logger.Info("service_starting", "snapshot_path", cfg.SnapshotPath)

	gw := snapshot.NewFileStore(cfg.SnapshotPath)
	ctxLoad, cancelLoad := context.WithTimeout(context.Background(), cfg.SaveTimeout)
	snap, err := gw.Load(ctxLoad)
	cancelLoad()
	if err != nil {
		obs.Logger.Error("snapshot_load_error", "error", err)
		os.Exit(1)
	}
	obs.Logger.Info("snapshot_loaded",
		"goods", len(snap.Goods),
		"customers", len(snap.Customers),
		"sales", len(snap.Sales),
	)

	eng := engine.New(gw, snap)
	app := httpapi.NewApp(cfg, eng)
	mux := httpapi.NewRouter(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Info("shutdown_signal", "signal", s.String())

	app.StartShutdown()
	obs.Logger.Info("shutdown_drain_begin", "in_flight", eng.InFlight())

	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelDrain()
	if drained := eng.DrainUntil(ctxDrain); !drained {
		obs.Logger.Warn("shutdown_drain_timeout")
	} else {
		obs.Logger.Info("shutdown_drain_complete")
	}

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}
	obs.Logger.Info("service_stopped")
}
