package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/beforest/brandvoice/internal/domain/transform"
)

// Transform rewrites content in the brand voice and stores the result.
func (h *Handler) Transform(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req transform.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, errMessage(err), err)
		return
	}
	meta := transform.RequestMeta{
		UserID:    claims.UserID,
		UserEmail: claims.Email,
		UserIP:    clientIP(c),
		UserAgent: c.Request.UserAgent(),
		SessionID: c.GetHeader("X-Session-Id"),
	}
	resp, err := h.transformSvc.Transform(c.Request.Context(), meta, req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "Failed to transform content"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// TransformHistory lists the caller's past transformations.
func (h *Handler) TransformHistory(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	query := transform.ListQuery{
		ContentType:    c.Query("content_type"),
		TargetAudience: c.Query("target_audience"),
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"limit", &query.Limit},
		{"offset", &query.Offset},
		{"page", &query.Page},
		{"page_size", &query.PageSize},
	} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			badRequest(c, p.name+" must be a non-negative integer", err)
			return
		}
		*p.dst = value
	}
	result, err := h.transformSvc.History(c.Request.Context(), claims.UserID, query)
	if err != nil {
		abortWithError(c, fromDomainError(err, "Failed to fetch transformation history"))
		return
	}
	c.JSON(http.StatusOK, result)
}

// TransformFeedback records a 1-5 rating.
func (h *Handler) TransformFeedback(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var body struct {
		Feedback *int `json:"feedback"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Feedback == nil {
		badRequest(c, "feedback must be an integer between 1 and 5", err)
		return
	}
	result, err := h.transformSvc.Feedback(c.Request.Context(), claims.UserID, c.Param("id"), *body.Feedback)
	if err != nil {
		abortWithError(c, fromDomainError(err, "Failed to record feedback"))
		return
	}
	c.JSON(http.StatusOK, result)
}

// TestPrompts runs a transformation with draft prompts without storing it.
func (h *Handler) TestPrompts(c *gin.Context) {
	if _, ok := requireClaims(c); !ok {
		return
	}
	var req transform.TestPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, errMessage(err), err)
		return
	}
	resp, err := h.transformSvc.TestPrompts(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "Failed to test prompts"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
