// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/slavapak/ledger/internal/accountdelivery"
	"github.com/slavapak/ledger/internal/accountrepo"
	"github.com/slavapak/ledger/internal/accountservice"
	"github.com/slavapak/ledger/internal/middleware"
	"github.com/slavapak/ledger/internal/transferdelivery"
	"github.com/slavapak/ledger/internal/transferrepo"
	"github.com/slavapak/ledger/internal/transferservice"
	"github.com/slavapak/ledger/pkg/configpkg"
	"github.com/slavapak/ledger/pkg/dbpkg"
	"github.com/slavapak/ledger/pkg/intpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := intpkg.RegisterValidation(v); err != nil {
			return nil, errors.New("cannot register positiveint validator")
		}
	}

	accountRepo := accountrepo.NewRepoPGS(conn)
	transferRepo := transferrepo.NewRepoPGS(conn)
	txManager := dbpkg.NewTxManager(conn, sql.LevelRepeatableRead)

	accountService := accountservice.New(accountRepo, config.DefaultBalance)
	transferService := transferservice.New(transferRepo, accountRepo, txManager)

	accountHandler := accountdelivery.NewHandler(accountService)
	transferHandler := transferdelivery.NewHandler(transferService)

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.CORS())

	engine.POST("/users", accountHandler.Create)
	engine.GET("/users/:id", accountHandler.Get)

	engine.POST("/transactions", transferHandler.Create)
	engine.GET("/transactions/:id", transferHandler.Get)

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
