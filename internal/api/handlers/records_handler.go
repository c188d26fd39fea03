package handlers

import (
	"net/http"

	"github.com/andresuchdata/qota-finance/backend-go/internal/domain"
	"github.com/andresuchdata/qota-finance/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type RecordsHandler struct {
	service *service.RecordService
}

func NewRecordsHandler(svc *service.RecordService) *RecordsHandler {
	return &RecordsHandler{service: svc}
}

func (h *RecordsHandler) ListExpenses(c *gin.Context) {
	period, ok := parseMonth(c)
	if !ok {
		return
	}
	rows, err := h.service.ListExpenses(c.Request.Context(), period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *RecordsHandler) CreateExpense(c *gin.Context) {
	var payload expensePayload
	if !bindPayload(c, &payload) {
		return
	}
	res, err := h.service.CreateExpense(c.Request.Context(), payload.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *RecordsHandler) ListInvestments(c *gin.Context) {
	period, ok := parseMonth(c)
	if !ok {
		return
	}
	rows, err := h.service.ListInvestments(c.Request.Context(), period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *RecordsHandler) CreateInvestment(c *gin.Context) {
	var payload investmentPayload
	if !bindPayload(c, &payload) {
		return
	}
	res, err := h.service.CreateInvestment(c.Request.Context(), payload.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListProducts filters by effective date and includes per-product metrics.
func (h *RecordsHandler) ListProducts(c *gin.Context) {
	period, ok := parseMonth(c)
	if !ok {
		return
	}
	rows, err := h.service.ListProducts(c.Request.Context(), period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *RecordsHandler) CreateProduct(c *gin.Context) {
	var payload productPayload
	if !bindPayload(c, &payload) {
		return
	}
	product, err := payload.toDomain()
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.service.CreateProduct(c.Request.Context(), product)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *RecordsHandler) ListReceipts(c *gin.Context) {
	period, ok := parseMonth(c)
	if !ok {
		return
	}
	rows, err := h.service.ListReceipts(c.Request.Context(), period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// CreateReceipt also decrements the referenced product's stock.
func (h *RecordsHandler) CreateReceipt(c *gin.Context) {
	var payload receiptPayload
	if !bindPayload(c, &payload) {
		return
	}
	receipt, err := payload.toDomain()
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.service.CreateReceipt(c.Request.Context(), receipt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *RecordsHandler) ListRevenues(c *gin.Context) {
	period, ok := parseMonth(c)
	if !ok {
		return
	}
	rows, err := h.service.ListRevenues(c.Request.Context(), period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *RecordsHandler) LatestBalance(c *gin.Context) {
	b, err := h.service.LatestBalance(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *RecordsHandler) CreateBalance(c *gin.Context) {
	var payload balancePayload
	if !bindPayload(c, &payload) {
		return
	}
	res, err := h.service.CreateBalance(c.Request.Context(), payload.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Delete returns a handler removing a record of the given kind by :id.
// Deleting a missing id answers {"changes": 0}.
func (h *RecordsHandler) Delete(kind domain.RecordKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		res, err := h.service.Delete(c.Request.Context(), kind, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"changes": res.Changes})
	}
}
