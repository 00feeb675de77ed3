// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/slavapak/ledger/internal/domain"
	"github.com/slavapak/ledger/pkg/errorspkg"
	"github.com/slavapak/ledger/pkg/intpkg"
	"github.com/slavapak/ledger/pkg/web"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Create(ctx context.Context) (domain.Account, error)
	Get(ctx context.Context, id int64) (domain.Account, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) Handler {
	return Handler{service: as}
}

// Create handles http request to create account.
//
// The new account id is returned as plain text.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	acc, err := h.service.Create(ctx)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	zerolog.Ctx(ctx).Info().Int64("account_id", acc.ID).Msg("account created")

	gctx.String(http.StatusCreated, strconv.FormatInt(acc.ID, 10))
}

type getRequest struct {
	ID string `uri:"id" binding:"required,positiveint"`
}

// Get handles http request to get account.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrBadRequest))

		return
	}

	id, err := intpkg.ParsePositive(req.ID)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrBadRequest))

		return
	}

	acc, err := h.service.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, acc)
}
