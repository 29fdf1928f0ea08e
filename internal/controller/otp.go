package controller

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"amcwallet/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const otpTTL = 10 * time.Minute

type otpRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Purpose string `json:"purpose" binding:"required"`
}

type otpVerifyRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Purpose string `json:"purpose" binding:"required"`
	Code    string `json:"code"    binding:"required"`
}

func validOTPPurpose(purpose string) bool {
	return purpose == models.OTPPurposeSeedPhrase || purpose == models.OTPPurposeWalletImport
}

// RequestOTP godoc
// @Summary Request a one-time code
// @Description Emails a 6-digit single-use code for seed-phrase view or wallet import
// @Tags otp
// @Accept json
// @Produce json
// @Param request body otpRequest true "OTP request"
// @Success 202 {object} map[string]string
// @Failure 400 {object} controller.APIError
// @Failure 404 {object} controller.APIError
// @Router /api/otp/request [post]
func (c *Controller) RequestOTP(ctx *gin.Context) {
	var req otpRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequestWithDetails(ctx, "invalid input", err.Error())
		return
	}
	if !validOTPPurpose(req.Purpose) {
		badRequest(ctx, "unknown otp purpose")
		return
	}

	user, err := c.repo.GetUserByID(req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(ctx, "user not found")
			return
		}
		internalError(ctx, "failed to load user")
		return
	}

	code, err := newOTPCode()
	if err != nil {
		internalError(ctx, "failed to generate code")
		return
	}

	if err := c.repo.CreateOTPCode(&models.OTPCode{
		UserID:    user.ID,
		Code:      code,
		Purpose:   req.Purpose,
		ExpiresAt: time.Now().Add(otpTTL),
	}); err != nil {
		internalError(ctx, "failed to store code")
		return
	}

	if c.mailer != nil {
		c.mailer.SendAsync(user.Email, "Your verification code",
			fmt.Sprintf("Your verification code is %s. It expires in %d minutes.",
				code, int(otpTTL.Minutes())))
	} else {
		c.logger.Warn("mailer not configured, otp not delivered", "user", user.ID)
	}

	ctx.JSON(http.StatusAccepted, gin.H{"message": "code sent"})
}

// VerifyOTP godoc
// @Summary Verify a one-time code
// @Description Consumes the code; seed-phrase requests return the phrase on success
// @Tags otp
// @Accept json
// @Produce json
// @Param request body otpVerifyRequest true "OTP verification"
// @Success 200 {object} map[string]string
// @Failure 400 {object} controller.APIError
// @Router /api/otp/verify [post]
func (c *Controller) VerifyOTP(ctx *gin.Context) {
	var req otpVerifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequestWithDetails(ctx, "invalid input", err.Error())
		return
	}
	if !validOTPPurpose(req.Purpose) {
		badRequest(ctx, "unknown otp purpose")
		return
	}

	if _, err := c.repo.ConsumeOTPCode(req.UserID, req.Purpose, req.Code, time.Now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			badRequest(ctx, "invalid or expired code")
			return
		}
		internalError(ctx, "failed to verify code")
		return
	}

	if req.Purpose == models.OTPPurposeSeedPhrase {
		user, err := c.repo.GetUserByID(req.UserID)
		if err != nil {
			internalError(ctx, "failed to load user")
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"verified": true, "seed_phrase": user.SeedPhrase})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"verified": true})
}

func newOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
