package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/beforest/brandvoice/internal/domain/settings"
)

// GetSettings returns the prompt and model settings with defaults filled in.
func (h *Handler) GetSettings(c *gin.Context) {
	view, err := h.settingsSvc.Get(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomainError(err, "Failed to fetch settings"))
		return
	}
	c.JSON(http.StatusOK, view)
}

// SaveSettings replaces the prompts record and optionally the model record.
func (h *Handler) SaveSettings(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req settings.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, errMessage(err), err)
		return
	}
	result, err := h.settingsSvc.Save(c.Request.Context(), claims.Email, req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "Failed to save settings"))
		return
	}
	c.JSON(http.StatusOK, result)
}

// PutSetting upserts one typed record.
func (h *Handler) PutSetting(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req settings.PutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, errMessage(err), err)
		return
	}
	result, err := h.settingsSvc.Put(c.Request.Context(), claims.Email, req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "Failed to update setting"))
		return
	}
	c.JSON(http.StatusOK, result)
}

// VerifyPasscode reports whether a passcode unlocks settings writes.
func (h *Handler) VerifyPasscode(c *gin.Context) {
	var body struct {
		Passcode string `json:"passcode"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, errMessage(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": h.settingsSvc.VerifyPasscode(body.Passcode)})
}
