package controller

import (
	"net/http"
	"strconv"

	"amcwallet/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type createAlertRequest struct {
	UserID      string  `json:"user_id"      binding:"required"`
	Symbol      string  `json:"symbol"       binding:"required"`
	Direction   string  `json:"direction"    binding:"required"`
	TargetPrice float64 `json:"target_price" binding:"required,gt=0"`
}

// CreateAlert godoc
// @Summary Create a price alert
// @Description Notifies the user by email and push when the price crosses the target
// @Tags alerts
// @Accept json
// @Produce json
// @Param alert body createAlertRequest true "Alert data"
// @Success 201 {object} models.PriceAlert
// @Failure 400 {object} controller.APIError
// @Failure 404 {object} controller.APIError
// @Router /api/alerts [post]
func (c *Controller) CreateAlert(ctx *gin.Context) {
	var req createAlertRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequestWithDetails(ctx, "invalid input", err.Error())
		return
	}

	if req.Direction != models.AlertDirectionAbove && req.Direction != models.AlertDirectionBelow {
		badRequest(ctx, "direction must be above or below")
		return
	}

	if _, err := c.repo.GetUserByID(req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(ctx, "user not found")
			return
		}
		internalError(ctx, "failed to load user")
		return
	}

	if _, err := c.repo.GetTokenConfig(req.Symbol); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(ctx, "unknown symbol")
			return
		}
		internalError(ctx, "failed to load token")
		return
	}

	alert := &models.PriceAlert{
		UserID:      req.UserID,
		Symbol:      req.Symbol,
		Direction:   req.Direction,
		TargetPrice: req.TargetPrice,
	}
	if err := c.repo.CreatePriceAlert(alert); err != nil {
		internalError(ctx, "failed to create alert")
		return
	}

	ctx.JSON(http.StatusCreated, alert)
}

// ListAlerts godoc
// @Summary List a user's price alerts
// @Tags alerts
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {array} models.PriceAlert
// @Router /api/users/{id}/alerts [get]
func (c *Controller) ListAlerts(ctx *gin.Context) {
	alerts, err := c.repo.ListPriceAlertsByUser(ctx.Param("id"))
	if err != nil {
		internalError(ctx, "failed to fetch alerts")
		return
	}
	ctx.JSON(http.StatusOK, alerts)
}

// DeleteAlert godoc
// @Summary Delete a price alert
// @Tags alerts
// @Param id path int true "Alert ID"
// @Success 204
// @Failure 400 {object} controller.APIError
// @Router /api/alerts/{id} [delete]
func (c *Controller) DeleteAlert(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		badRequest(ctx, "invalid alert id")
		return
	}

	if err := c.repo.DeletePriceAlert(id); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		internalError(ctx, "failed to delete alert")
		return
	}

	ctx.Status(http.StatusNoContent)
}
