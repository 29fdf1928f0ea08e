package controller

import (
	"net/http"

	"amcwallet/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type pushSubscribeRequest struct {
	UserID   string `json:"user_id"  binding:"required"`
	Endpoint string `json:"endpoint" binding:"required"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth"   binding:"required"`
	} `json:"keys" binding:"required"`
}

// SubscribePush godoc
// @Summary Register a Web Push subscription
// @Tags push
// @Accept json
// @Produce json
// @Param subscription body pushSubscribeRequest true "Push subscription"
// @Success 201 {object} map[string]string
// @Failure 400 {object} controller.APIError
// @Failure 404 {object} controller.APIError
// @Router /api/push/subscribe [post]
func (c *Controller) SubscribePush(ctx *gin.Context) {
	var req pushSubscribeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequestWithDetails(ctx, "invalid input", err.Error())
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

	if err := c.repo.SavePushSubscription(&models.PushSubscription{
		UserID:   req.UserID,
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	}); err != nil {
		internalError(ctx, "failed to save subscription")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "subscribed"})
}

type pushUnsubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// UnsubscribePush godoc
// @Summary Remove a Web Push subscription
// @Tags push
// @Accept json
// @Success 204
// @Failure 400 {object} controller.APIError
// @Router /api/push/subscribe [delete]
func (c *Controller) UnsubscribePush(ctx *gin.Context) {
	var req pushUnsubscribeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequestWithDetails(ctx, "invalid input", err.Error())
		return
	}

	if err := c.repo.DeletePushSubscription(req.Endpoint); err != nil {
		internalError(ctx, "failed to remove subscription")
		return
	}

	ctx.Status(http.StatusNoContent)
}
