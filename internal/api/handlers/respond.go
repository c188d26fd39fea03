package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/andresuchdata/qota-finance/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// respondError maps the error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// parseMonth reads the optional ?month=YYYY-MM filter. It writes the 400
// response itself and reports false when the value is malformed.
func parseMonth(c *gin.Context) (domain.Period, bool) {
	period, err := domain.MonthPeriod(c.Query("month"))
	if err != nil {
		respondError(c, err)
		return domain.Period{}, false
	}
	return period, true
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, &domain.ValidationError{Field: "id", Reason: "expected a positive integer"})
		return 0, false
	}
	return id, true
}

func bindPayload(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		respondError(c, &domain.ValidationError{Field: "body", Reason: err.Error()})
		return false
	}
	return true
}
