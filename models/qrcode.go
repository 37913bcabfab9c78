package models

import (
	"time"
)

// QRCode lifecycle. Expired is terminal: nothing ever moves a code back
// to active.
const (
	StatusActive  = "active"
	StatusExpired = "expired"
)

// Content types a QR code can encode.
const (
	ContentTypeURL   = "url"
	ContentTypeText  = "text"
	ContentTypeVCard = "vcard"
	ContentTypeWiFi  = "wifi"
	ContentTypeEmail = "email"
	ContentTypeSMS   = "sms"
	ContentTypeGeo   = "geo"
	ContentTypeEvent = "event"
	ContentTypePhone = "phone"
)

type QRCode struct {
	ID          string `json:"id" gorm:"primaryKey;size:36"`
	UserID      uint   `json:"user_id" gorm:"index;not null"`
	Content     string `json:"content" gorm:"not null"`
	ContentType string `json:"content_type" gorm:"size:16;not null"`

	Foreground string `json:"foreground" gorm:"size:7"`
	Background string `json:"background" gorm:"size:7"`
	LogoURL    string `json:"logo_url"`
	Margin     int    `json:"margin"`

	PasswordProtected bool       `json:"password_protected"`
	Password          string     `json:"-"`
	ExpiresAt         *time.Time `json:"expires_at"`
	MaxScans          int        `json:"max_scans" gorm:"default:0"`

	ScanCount   int        `json:"scan_count" gorm:"default:0"`
	LastScanned *time.Time `json:"last_scanned"`
	Status      string     `json:"status" gorm:"size:16;default:'active'"`

	TrackingEnabled bool   `json:"tracking_enabled"`
	TrackingURL     string `json:"tracking_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ScanLocations []ScanLocation `json:"scan_locations,omitempty" gorm:"foreignKey:QRCodeID"`
	DeviceStats   []DeviceStat   `json:"device_stats,omitempty" gorm:"foreignKey:QRCodeID"`
}

// ScanLocation is one row per recorded scan, append-only.
type ScanLocation struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	QRCodeID  string    `json:"qr_code_id" gorm:"size:36;index;not null"`
	Country   string    `json:"country" gorm:"size:100;default:'Unknown'"`
	City      string    `json:"city" gorm:"size:100;default:'Unknown'"`
	ScannedAt time.Time `json:"scanned_at"`
}

// DeviceStat holds the cumulative scan count for one device type of one
// QR code. The unique index backs the atomic upsert in the scan recorder.
type DeviceStat struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QRCodeID   string `json:"qr_code_id" gorm:"size:36;uniqueIndex:idx_qr_device;not null"`
	DeviceType string `json:"device_type" gorm:"size:32;uniqueIndex:idx_qr_device;not null"`
	Count      int    `json:"count" gorm:"default:0"`
}
