package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/qota-finance/backend-go/internal/domain"
	"github.com/andresuchdata/qota-finance/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type MetricsHandler struct {
	service *service.MetricsService
}

func NewMetricsHandler(svc *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{service: svc}
}

// Summary serves GET /api/metrics/resumo?month=YYYY-MM
func (h *MetricsHandler) Summary(c *gin.Context) {
	period, ok := parseMonth(c)
	if !ok {
		return
	}
	out, err := h.service.Summary(c.Request.Context(), period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *MetricsHandler) Totals(c *gin.Context) {
	out, err := h.service.Totals(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *MetricsHandler) Profits(c *gin.Context) {
	period, ok := parseMonth(c)
	if !ok {
		return
	}
	out, err := h.service.Profits(c.Request.Context(), period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *MetricsHandler) Series(c *gin.Context) {
	out, err := h.service.Series(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ProductSales serves the top/bottom sellers ranking.
// Query: scope=month|year, order=asc|desc, limit, year, month (1-12, month scope only).
func (h *MetricsHandler) ProductSales(c *gin.Context) {
	q := domain.SalesQuery{
		Scope: strings.ToLower(strings.TrimSpace(c.Query("scope"))),
		Order: strings.ToLower(strings.TrimSpace(c.Query("order"))),
	}

	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		q.Limit = limit
	}

	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, &domain.ValidationError{Field: "year", Reason: "expected a four digit year"})
			return
		}
		q.Year = year
	}

	// month only applies to the month scope
	if raw := strings.TrimSpace(c.Query("month")); raw != "" && q.Scope != domain.SalesScopeYear {
		month, err := domain.ParseMonthNumber(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		q.Month = month
	}

	out, err := h.service.ProductSales(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
