package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListPrices godoc
// @Summary List current prices
// @Description Get current prices for all tracked tokens
// @Tags prices
// @Produce json
// @Success 200 {object} map[string]service.PriceQuote
// @Failure 503 {object} controller.APIError
// @Router /api/prices [get]
func (c *Controller) ListPrices(ctx *gin.Context) {
	prices, err := c.engine.Prices()
	if err != nil {
		c.logger.Error("failed to read prices", "error", err)
		serviceUnavailable(ctx, "prices not available")
		return
	}
	ctx.JSON(http.StatusOK, prices)
}

// GetPrice godoc
// @Summary Get price for a token
// @Description Get the current price of a single token by symbol
// @Tags prices
// @Produce json
// @Param symbol path string true "Token symbol (AMC, BTC, ETH)"
// @Success 200 {object} service.PriceQuote
// @Failure 404 {object} controller.APIError
// @Router /api/prices/{symbol} [get]
func (c *Controller) GetPrice(ctx *gin.Context) {
	prices, err := c.engine.Prices()
	if err != nil {
		c.logger.Error("failed to read prices", "error", err)
		serviceUnavailable(ctx, "prices not available")
		return
	}

	quote, ok := prices[ctx.Param("symbol")]
	if !ok {
		notFound(ctx, "price not found for symbol")
		return
	}

	ctx.JSON(http.StatusOK, quote)
}
