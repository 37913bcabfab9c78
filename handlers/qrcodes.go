package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"qrtrack/auth"
	"qrtrack/services"
)

type CreateQRCodeRequest struct {
	ContentType       string                  `json:"content_type" binding:"required"`
	Data              services.ContentPayload `json:"data"`
	Foreground        string                  `json:"foreground"`
	Background        string                  `json:"background"`
	LogoURL           string                  `json:"logo_url"`
	Margin            int                     `json:"margin"`
	TrackingEnabled   bool                    `json:"tracking_enabled"`
	PasswordProtected bool                    `json:"password_protected"`
	Password          string                  `json:"password"`
	ExpiresAt         *time.Time              `json:"expires_at"`
	MaxScans          int                     `json:"max_scans"`
}

type UpdateQRCodeRequest struct {
	ContentType       string                   `json:"content_type"`
	Data              *services.ContentPayload `json:"data"`
	Foreground        string                   `json:"foreground"`
	Background        string                   `json:"background"`
	LogoURL           string                   `json:"logo_url"`
	Margin            int                      `json:"margin"`
	PasswordProtected bool                     `json:"password_protected"`
	Password          string                   `json:"password"`
	ExpiresAt         *time.Time               `json:"expires_at"`
	MaxScans          int                      `json:"max_scans"`
}

type BulkDeleteRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

func (h *Handler) CreateQRCode(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateQRCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.QRCodes.Create(userID, services.CreateInput{
		ContentType:       req.ContentType,
		Payload:           req.Data,
		Foreground:        req.Foreground,
		Background:        req.Background,
		LogoURL:           req.LogoURL,
		Margin:            req.Margin,
		TrackingEnabled:   req.TrackingEnabled,
		PasswordProtected: req.PasswordProtected,
		Password:          req.Password,
		ExpiresAt:         req.ExpiresAt,
		MaxScans:          req.MaxScans,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) GetQRCode(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	rec, err := h.QRCodes.Get(c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "QR code not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (h *Handler) ListQRCodes(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	codes, total, err := h.QRCodes.List(userID, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"qrcodes": codes,
		"total":   total,
		"page":    page,
		"size":    pageSize,
	})
}

func (h *Handler) GetQRCodeImage(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	rec, err := h.QRCodes.Get(c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "QR code not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	size, _ := strconv.Atoi(c.DefaultQuery("size", "256"))
	png, err := h.QRCodes.RenderPNG(rec, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render QR code"})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) UpdateQRCode(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req UpdateQRCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.QRCodes.Update(c.Param("id"), userID, services.UpdateInput{
		ContentType:       req.ContentType,
		Payload:           req.Data,
		Foreground:        req.Foreground,
		Background:        req.Background,
		LogoURL:           req.LogoURL,
		Margin:            req.Margin,
		PasswordProtected: req.PasswordProtected,
		Password:          req.Password,
		ExpiresAt:         req.ExpiresAt,
		MaxScans:          req.MaxScans,
	})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "QR code not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (h *Handler) DeleteQRCode(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.QRCodes.Delete(c.Param("id"), userID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "QR code not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "QR code deleted successfully"})
}

func (h *Handler) BulkDeleteQRCodes(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deleted, err := h.QRCodes.BulkDelete(req.IDs, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *Handler) GetQRCodeAnalytics(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	summary, err := h.Analytics.ForQRCode(c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "QR code not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *Handler) GetUserAnalytics(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	summary, err := h.Analytics.ForUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}
