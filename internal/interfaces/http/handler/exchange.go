package handler

import (
	appcurrency "github.com/agencyhub/backend/internal/application/currency"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ExchangeHandler exposes the cached exchange-rate table and conversions
type ExchangeHandler struct {
	BaseHandler
	rateService *appcurrency.RateService
}

// NewExchangeHandler creates a new exchange handler
func NewExchangeHandler(rateService *appcurrency.RateService) *ExchangeHandler {
	return &ExchangeHandler{rateService: rateService}
}

// ConvertQuery is the query string of the conversion endpoint
type ConvertQuery struct {
	Amount string `form:"amount" binding:"required,number"`
	From   string `form:"from" binding:"required,currency"`
	To     string `form:"to" binding:"required,currency"`
}

// Rates godoc
// @Summary      Exchange rates
// @Description  USD-anchored rates for the supported currencies. available is false when no rates could be fetched.
// @Tags         exchange-rates
// @Produce      json
// @Success      200 {object} dto.Response{data=appcurrency.RatesView}
// @Router       /exchange-rates [get]
func (h *ExchangeHandler) Rates(c *gin.Context) {
	h.Success(c, h.rateService.Rates(c.Request.Context()))
}

// Convert godoc
// @Summary      Convert an amount
// @Description  Converts between two supported currencies. Without rates the amount is returned unchanged and estimated is true.
// @Tags         exchange-rates
// @Produce      json
// @Param        amount query string true "Amount"
// @Param        from   query string true "Source currency code"
// @Param        to     query string true "Target currency code"
// @Success      200 {object} dto.Response{data=appcurrency.ConversionResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /exchange-rates/convert [get]
func (h *ExchangeHandler) Convert(c *gin.Context) {
	var q ConvertQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	amount, err := decimal.NewFromString(q.Amount)
	if err != nil {
		h.BadRequest(c, "amount must be a decimal number")
		return
	}
	res, err := h.rateService.Convert(c.Request.Context(), appcurrency.ConvertInput{
		Amount: amount,
		From:   q.From,
		To:     q.To,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}
