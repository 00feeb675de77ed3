// Package main starts the ledger HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/slavapak/ledger/cmd/httpserver"
	"github.com/slavapak/ledger/internal/middleware"
	"github.com/slavapak/ledger/pkg/configpkg"
	"github.com/slavapak/ledger/pkg/dbpkg"

	_ "github.com/lib/pq"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx = logger.WithContext(ctx)

	if err := dbpkg.Migrate(ctx, config.MigrationURL, config.DBSource); err != nil {
		logger.Fatal().Err(err).Msg("cannot migrate database")
	}

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource, dbpkg.Pool{
		MaxOpenConns:    config.DBMaxOpenConns,
		MaxIdleConns:    config.DBMaxIdleConns,
		ConnMaxLifetime: config.DBConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}

	if config.Environement != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	server, err := httpserver.New(db, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	srv := &http.Server{
		Addr:         config.ServerAddress,
		Handler:      server,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("address", config.ServerAddress).Msg("LEDGER API SERVER HAS STARTED")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		logger.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()

	if cerr := db.Close(); cerr != nil {
		logger.Error().Err(cerr).Msg("cannot close database")
	}

	if err != nil {
		logger.Fatal().Err(err).Msg("server stopped with error")
	}

	logger.Info().Msg("server stopped")
}
