package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	"github.com/RoyceAzure/lab/storefront/internal/api/handler"
	"github.com/RoyceAzure/lab/storefront/internal/api/router"
	"github.com/RoyceAzure/lab/storefront/internal/appcontext"
	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/rs/zerolog/log"
)

func main() {
	cf := config.GetConfig()
	app, err := appcontext.NewApplicationContext(cf)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup application")
		return
	}
	logger := app.Logger

	server := api.NewServer(
		handler.NewCatalogHandler(app.QueryLayer),
		handler.NewCartHandler(app.CartStore, app.QueryLayer),
		handler.NewCheckoutHandler(app.CheckoutSvc),
		handler.NewProfileHandler(app.ProfileService),
	)

	// 設置路由
	r := router.SetupRouter(server, app.RateLimiter, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cf.ServerPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 設置訊號監聽
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutdownCompleted := make(chan struct{}, 1)
	go func() {
		<-sigChan
		logger.Info().Msg("Received shutdown signal")

		timeout := cf.ShutdownTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Server shutdown error")
		}
		if err := app.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Application shutdown error")
		}

		shutdownCompleted <- struct{}{}
	}()

	// 啟動服務
	logger.Info().Str("addr", srv.Addr).Msg("Server starting")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server stopped unexpectedly")
	}
	<-shutdownCompleted
	logger.Info().Msg("closed completed")
}
