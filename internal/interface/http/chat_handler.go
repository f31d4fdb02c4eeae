package http

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/beforest/brandvoice/internal/domain/chat"
)

// Chat relays a streamed completion as Server-Sent Events.
func (h *Handler) Chat(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req chat.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, errMessage(err), err)
		return
	}

	frames, err := h.chatSvc.Stream(c.Request.Context(), claims.UserID, req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "Failed to process message"))
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "stream_unsupported", "streaming not supported", nil))
		return
	}
	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	for frame := range frames {
		payload, err := json.Marshal(frame)
		if err != nil {
			h.logger.Error("marshal frame failed", "error", err)
			continue
		}
		if _, err := c.Writer.Write(append(append([]byte("data: "), payload...), '\n', '\n')); err != nil {
			// client is gone; the relay observes the cancelled context and stops
			h.logger.Debug("sse write failed", "error", err)
			continue
		}
		flusher.Flush()
	}
}
