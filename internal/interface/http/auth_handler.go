package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/beforest/brandvoice/internal/domain/auth"
)

// Register creates an account and signs the caller in.
func (h *Handler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, errMessage(err), err)
		return
	}
	resp, err := h.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "registration failed"))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login exchanges credentials for a token pair.
func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, errMessage(err), err)
		return
	}
	resp, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "login failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh issues a fresh token pair from a refresh token.
func (h *Handler) Refresh(c *gin.Context) {
	var req auth.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, errMessage(err), err)
		return
	}
	resp, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		abortWithError(c, fromDomainError(err, "token refresh failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me returns the authenticated profile.
func (h *Handler) Me(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	user, err := h.authSvc.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, fromDomainError(err, ""))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
