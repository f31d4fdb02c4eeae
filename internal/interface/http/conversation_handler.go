package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/beforest/brandvoice/internal/domain/chat"
)

// ListConversations returns the caller's conversations, newest first.
func (h *Handler) ListConversations(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	items, err := h.chatSvc.ListConversations(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, fromDomainError(err, "Failed to fetch conversations"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": items})
}

// CreateConversation starts an empty conversation.
func (h *Handler) CreateConversation(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req chat.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, errMessage(err), err)
		return
	}
	conv, err := h.chatSvc.CreateConversation(c.Request.Context(), claims.UserID, req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "Failed to create conversation"))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"conversation": conv})
}

// RenameConversation accepts the id either in the path or in the body.
func (h *Handler) RenameConversation(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req chat.RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, errMessage(err), err)
		return
	}
	if id := c.Param("id"); id != "" {
		req.ID = id
	}
	conv, err := h.chatSvc.RenameConversation(c.Request.Context(), claims.UserID, req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "Failed to update conversation"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversation": conv})
}

// DeleteConversation removes a conversation with its messages.
func (h *Handler) DeleteConversation(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	if err := h.chatSvc.DeleteConversation(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		abortWithError(c, fromDomainError(err, "Failed to delete conversation"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListMessages returns a conversation transcript in order.
func (h *Handler) ListMessages(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	messages, err := h.chatSvc.ListMessages(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		abortWithError(c, fromDomainError(err, "Failed to fetch messages"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// ExportConversation stores a Markdown transcript and returns where it lives.
func (h *Handler) ExportConversation(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	result, err := h.chatSvc.ExportConversation(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		abortWithError(c, fromDomainError(err, "Failed to export conversation"))
		return
	}
	c.JSON(http.StatusOK, result)
}
