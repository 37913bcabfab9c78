package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"qrtrack/models"
	"qrtrack/services"
)

type VerifyPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// Scan resolves a tracking URL. The expiration policy runs before the
// password prompt, so an expired protected code reports expired without
// ever asking for the password.
func (h *Handler) Scan(c *gin.Context) {
	id := c.Param("id")

	rec, outcome := h.Scans.Resolve(id)
	switch outcome {
	case services.ScanNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "QR code not found"})
		return
	case services.ScanExpired:
		c.JSON(http.StatusGone, gin.H{"error": "QR code has expired"})
		return
	case services.ScanInternal:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	if rec.PasswordProtected {
		c.JSON(http.StatusUnauthorized, gin.H{"password_required": true})
		return
	}

	updated, outcome := h.Scans.RecordScan(id, scanMetadataFrom(c))
	if outcome != services.ScanOK {
		h.respondScanOutcome(c, outcome)
		return
	}

	h.deliver(c, updated)
}

// VerifyPassword gates a protected scan. On a match the scan is recorded
// and the destination returned; a mismatch records nothing.
func (h *Handler) VerifyPassword(c *gin.Context) {
	id := c.Param("id")

	var req VerifyPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, outcome := h.Scans.Unlock(id, req.Password, scanMetadataFrom(c))
	if outcome != services.ScanOK {
		h.respondScanOutcome(c, outcome)
		return
	}

	c.JSON(http.StatusOK, gin.H{"redirect_url": destination(rec)})
}

func (h *Handler) respondScanOutcome(c *gin.Context, outcome services.ScanOutcome) {
	switch outcome {
	case services.ScanNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "QR code not found"})
	case services.ScanExpired:
		c.JSON(http.StatusGone, gin.H{"error": "QR code has expired"})
	case services.ScanAuthFailed:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}

// deliver sends the scanner to the payload: URLs redirect, everything
// else is returned as text.
func (h *Handler) deliver(c *gin.Context, rec *models.QRCode) {
	if rec.ContentType == models.ContentTypeURL {
		c.Redirect(http.StatusFound, rec.Content)
		return
	}
	c.String(http.StatusOK, rec.Content)
}

func destination(rec *models.QRCode) string {
	return rec.Content
}

// scanMetadataFrom collects request attribution. Geo headers are filled
// in by an upstream resolver when one is deployed.
func scanMetadataFrom(c *gin.Context) services.ScanMetadata {
	return services.ScanMetadata{
		UserAgent: c.Request.UserAgent(),
		IP:        c.ClientIP(),
		Referer:   c.Request.Referer(),
		Country:   c.GetHeader("X-Geo-Country"),
		City:      c.GetHeader("X-Geo-City"),
	}
}
