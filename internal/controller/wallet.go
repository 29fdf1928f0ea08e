package controller

import (
	"net/http"
	"strconv"
	"time"

	"amcwallet/internal/repo"
	"amcwallet/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type swapRequest struct {
	UserID string          `json:"user_id" binding:"required"`
	From   string          `json:"from"    binding:"required"`
	To     string          `json:"to"      binding:"required"`
	Amount decimal.Decimal `json:"amount"  binding:"required"`
}

// Swap godoc
// @Summary Swap between tokens
// @Description Convert an amount of one token into another at the current price ratio
// @Tags wallet
// @Accept json
// @Produce json
// @Param swap body swapRequest true "Swap request"
// @Success 200 {object} service.SwapResult
// @Failure 400 {object} controller.APIError
// @Failure 403 {object} controller.APIError
// @Failure 404 {object} controller.APIError
// @Router /api/swap [post]
func (c *Controller) Swap(ctx *gin.Context) {
	var req swapRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequestWithDetails(ctx, "invalid input", err.Error())
		return
	}

	result, err := c.ledger.Swap(req.UserID, req.From, req.To, req.Amount)
	switch {
	case err == nil:
		ctx.JSON(http.StatusOK, result)
	case errors.Is(err, service.ErrRestrictedSwap):
		restrictedForbidden(ctx, "swapping out of this token is not allowed")
	case errors.Is(err, service.ErrInvalidAmount):
		badRequest(ctx, "amount must be positive")
	case errors.Is(err, service.ErrInsufficientBalance):
		badRequest(ctx, "insufficient balance")
	case errors.Is(err, service.ErrUserNotFound):
		notFound(ctx, "user not found")
	case errors.Is(err, service.ErrAssetNotFound):
		notFound(ctx, "asset not found")
	case errors.Is(err, service.ErrPriceUnavailable):
		badRequest(ctx, "price unavailable for swap pair")
	default:
		c.logger.Error("swap failed", "user", req.UserID, "error", err)
		internalError(ctx, "failed to execute swap")
	}
}

// ListBalances godoc
// @Summary List user balances
// @Tags wallet
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {array} models.Balance
// @Failure 404 {object} controller.APIError
// @Router /api/users/{id}/balances [get]
func (c *Controller) ListBalances(ctx *gin.Context) {
	userID := ctx.Param("id")

	if _, err := c.repo.GetUserByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(ctx, "user not found")
			return
		}
		internalError(ctx, "failed to load user")
		return
	}

	balances, err := c.repo.ListBalancesByUser(userID)
	if err != nil {
		internalError(ctx, "failed to fetch balances")
		return
	}

	ctx.JSON(http.StatusOK, balances)
}

// ListTransactions godoc
// @Summary List user transactions
// @Description Paginated transaction history, newest first
// @Tags wallet
// @Produce json
// @Param id path string true "User ID"
// @Param type query string false "Transaction type filter"
// @Param currency query string false "Currency filter"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} repo.TransactionListResult
// @Failure 404 {object} controller.APIError
// @Router /api/users/{id}/transactions [get]
func (c *Controller) ListTransactions(ctx *gin.Context) {
	userID := ctx.Param("id")

	if _, err := c.repo.GetUserByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(ctx, "user not found")
			return
		}
		internalError(ctx, "failed to load user")
		return
	}

	filter := repo.TransactionFilter{
		UserID:   &userID,
		Type:     ctx.Query("type"),
		Currency: ctx.Query("currency"),
	}

	if v := ctx.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			badRequest(ctx, "invalid limit")
			return
		}
		filter.Limit = limit
	}
	if v := ctx.Query("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			badRequest(ctx, "invalid offset")
			return
		}
		filter.Offset = offset
	}
	if v := ctx.Query("start_date"); v != "" {
		start, err := time.Parse(time.RFC3339, v)
		if err != nil {
			badRequest(ctx, "invalid start_date")
			return
		}
		filter.StartDate = &start
	}
	if v := ctx.Query("end_date"); v != "" {
		end, err := time.Parse(time.RFC3339, v)
		if err != nil {
			badRequest(ctx, "invalid end_date")
			return
		}
		filter.EndDate = &end
	}

	result, err := c.repo.ListTransactions(filter)
	if err != nil {
		internalError(ctx, "failed to fetch transactions")
		return
	}

	ctx.JSON(http.StatusOK, result)
}
