package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"qrtrack/auth"
	"qrtrack/config"
	"qrtrack/database"
	"qrtrack/handlers"
	"qrtrack/services"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	authSvc := auth.NewService(cfg.JWTSecret)
	qrcodes := services.NewQRCodeService(db, cfg.BaseURL)
	scans := services.NewScanService(db)
	analytics := services.NewAnalyticsService(db)

	h := handlers.New(db, authSvc, qrcodes, scans, analytics)

	router := gin.Default()

	router.POST("/api/register", h.Register)
	router.POST("/api/login", h.Login)

	router.GET("/t/:id", h.Scan)
	router.POST("/t/:id/verify", h.VerifyPassword)

	api := router.Group("/api")
	api.Use(authSvc.Middleware())
	{
		api.POST("/qrcodes", h.CreateQRCode)
		api.GET("/qrcodes", h.ListQRCodes)
		api.GET("/qrcodes/:id", h.GetQRCode)
		api.GET("/qrcodes/:id/image", h.GetQRCodeImage)
		api.PUT("/qrcodes/:id", h.UpdateQRCode)
		api.DELETE("/qrcodes/:id", h.DeleteQRCode)
		api.POST("/qrcodes/bulk-delete", h.BulkDeleteQRCodes)

		api.GET("/qrcodes/:id/analytics", h.GetQRCodeAnalytics)
		api.GET("/user/analytics", h.GetUserAnalytics)
	}

	log.Printf("QR tracking server starting on %s", cfg.ListenAddr)
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
