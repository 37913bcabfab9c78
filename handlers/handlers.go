package handlers

import (
	"gorm.io/gorm"

	"qrtrack/auth"
	"qrtrack/services"
)

// Handler groups the HTTP handlers around their injected dependencies.
type Handler struct {
	DB        *gorm.DB
	Auth      *auth.Service
	QRCodes   *services.QRCodeService
	Scans     *services.ScanService
	Analytics *services.AnalyticsService
}

func New(db *gorm.DB, authSvc *auth.Service, qrcodes *services.QRCodeService, scans *services.ScanService, analytics *services.AnalyticsService) *Handler {
	return &Handler{
		DB:        db,
		Auth:      authSvc,
		QRCodes:   qrcodes,
		Scans:     scans,
		Analytics: analytics,
	}
}
