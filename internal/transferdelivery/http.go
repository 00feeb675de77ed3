// Package transferdelivery manages delivery layer of transfers.
package transferdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/slavapak/ledger/internal/domain"
	"github.com/slavapak/ledger/pkg/errorspkg"
	"github.com/slavapak/ledger/pkg/intpkg"
	"github.com/slavapak/ledger/pkg/web"
)

// maxBodyBytes bounds the size of a transfer request body.
const maxBodyBytes = 1 << 16

// InsufficientFundsMsg is the plain text body returned when the sender cannot cover the amount.
const InsufficientFundsMsg = "Insufficient funds."

// Service provides service layer interface needed by transfer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transferdelivery
type Service interface {
	Execute(ctx context.Context, arg domain.CreateTransferParams) (domain.TransferResult, error)
	Get(ctx context.Context, id int64) (domain.Transfer, error)
}

// Handler facilitates transfer delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transfer handler.
func NewHandler(ts Service) *Handler {
	return &Handler{
		service: ts,
	}
}

type createResponse struct {
	TransferID int64 `json:"transferId"`
}

// Create handles http request to transfer money between two accounts.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	gctx.Request.Body = http.MaxBytesReader(gctx.Writer, gctx.Request.Body, maxBodyBytes)

	body, err := gctx.GetRawData()
	if err != nil {
		l.Info().Err(err).Msg("cannot read request body")
		gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrBadRequest))

		return
	}

	arg, err := ParseTransferRequest(body)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrBadRequest))

		return
	}

	res, err := h.service.Execute(ctx, arg)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidTransfer), errors.Is(err, domain.ErrBalanceOverflow):
			gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrBadRequest))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	switch res.Outcome {
	case domain.OutcomeCommitted:
		gctx.JSON(http.StatusOK, createResponse{TransferID: res.Transfer.ID})
	case domain.OutcomeInvalidAccounts:
		gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrInvalidAccounts))
	case domain.OutcomeInsufficientFunds:
		gctx.String(http.StatusBadRequest, InsufficientFundsMsg)
	case domain.OutcomeConflict:
		// Conflicts share the server error status with infrastructure failures
		// and are told apart in logs only.
		l.Warn().Str("outcome", res.Outcome.String()).Msg("transfer not applied")
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	default:
		l.Error().Str("outcome", res.Outcome.String()).Msg("unexpected transfer outcome")
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

type getRequest struct {
	ID string `uri:"id" binding:"required,positiveint"`
}

// Get handles http request to get a transfer record.
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

	transfer, err := h.service.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrTransferNotFound) {
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, transfer)
}
