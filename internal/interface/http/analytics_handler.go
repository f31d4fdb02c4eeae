package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Analytics aggregates the caller's transformations over a timeframe.
func (h *Handler) Analytics(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	report, err := h.analyticsSvc.Report(c.Request.Context(), claims.UserID, c.Query("timeframe"))
	if err != nil {
		abortWithError(c, fromDomainError(err, "Failed to fetch analytics"))
		return
	}
	c.JSON(http.StatusOK, report)
}
