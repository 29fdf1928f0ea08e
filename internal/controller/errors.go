package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	ErrNilLogger      = errors.New("logger cannot be nil")
	ErrNilRepository  = errors.New("repository cannot be nil")
	ErrNilLedger      = errors.New("ledger cannot be nil")
	ErrNilPriceEngine = errors.New("price engine cannot be nil")
)

type APIError struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Restricted bool   `json:"restricted,omitempty"`
}

func errorResponse(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, APIError{Error: message})
}

func badRequest(ctx *gin.Context, message string) {
	errorResponse(ctx, http.StatusBadRequest, message)
}

func badRequestWithDetails(ctx *gin.Context, message string, details string) {
	ctx.JSON(http.StatusBadRequest, APIError{Error: message, Details: details})
}

func notFound(ctx *gin.Context, message string) {
	errorResponse(ctx, http.StatusNotFound, message)
}

func unauthorized(ctx *gin.Context, message string) {
	errorResponse(ctx, http.StatusUnauthorized, message)
}

// restrictedForbidden flags policy rejections so clients can tell them
// apart from auth failures.
func restrictedForbidden(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusForbidden, APIError{Error: message, Restricted: true})
}

func internalError(ctx *gin.Context, message string) {
	errorResponse(ctx, http.StatusInternalServerError, message)
}

func serviceUnavailable(ctx *gin.Context, message string) {
	errorResponse(ctx, http.StatusServiceUnavailable, message)
}
