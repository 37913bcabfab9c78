package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"qrtrack/models"
)

// ScanOutcome is the closed set of results a scan resolution can produce.
// Handlers branch on it instead of re-deriving the cause from nil records.
type ScanOutcome int

const (
	ScanOK ScanOutcome = iota
	ScanNotFound
	ScanExpired
	ScanPasswordRequired
	ScanAuthFailed
	ScanInternal
)

// ScanMetadata is the request context attributed to one scan. Country and
// city come from an upstream resolver when available and default to
// "Unknown" otherwise.
type ScanMetadata struct {
	UserAgent string
	IP        string
	Referer   string
	Country   string
	City      string
}

type ScanService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewScanService(db *gorm.DB) *ScanService {
	return &ScanService{db: db, now: time.Now}
}

// Expired applies the expiration policy to a record. A missing record is
// expired (fail-closed), an expired status is sticky, a passed expiry
// date or a reached scan limit expires the code. MaxScans of zero means
// unlimited. No side effects.
func Expired(rec *models.QRCode, now time.Time) bool {
	if rec == nil {
		return true
	}
	if rec.Status == models.StatusExpired {
		return true
	}
	if rec.ExpiresAt != nil && now.After(*rec.ExpiresAt) {
		return true
	}
	if rec.MaxScans > 0 && rec.ScanCount >= rec.MaxScans {
		return true
	}
	return false
}

// ClassifyDevice maps a user-agent string to a device type. Substring
// checks run in a fixed order and the first match wins, so an agent
// naming both iphone and android is ios.
func ClassifyDevice(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad"):
		return "ios"
	case strings.Contains(ua, "android"):
		return "android"
	case strings.Contains(ua, "windows phone"):
		return "windows-phone"
	case strings.Contains(ua, "macintosh") || strings.Contains(ua, "mac os"):
		return "mac"
	case strings.Contains(ua, "windows"):
		return "windows"
	case strings.Contains(ua, "linux"):
		return "linux"
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "tablet"):
		return "mobile"
	case ua != "":
		return "desktop"
	default:
		return "unknown"
	}
}

// Resolve fetches a record and applies the expiration policy, persisting
// the status flip when a code has aged out. Both the scan route and the
// password flow go through here, so the two paths cannot diverge.
func (s *ScanService) Resolve(id string) (*models.QRCode, ScanOutcome) {
	var rec models.QRCode
	if err := s.db.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ScanNotFound
		}
		log.Printf("Failed to load qr code %s: %v", id, err)
		return nil, ScanInternal
	}

	if Expired(&rec, s.now()) {
		if rec.Status != models.StatusExpired {
			if err := s.db.Model(&models.QRCode{}).Where("id = ?", rec.ID).
				Update("status", models.StatusExpired).Error; err != nil {
				log.Printf("Failed to mark qr code %s expired: %v", rec.ID, err)
			}
			rec.Status = models.StatusExpired
		}
		return &rec, ScanExpired
	}
	return &rec, ScanOK
}

// RecordScan resolves the record and, when it is usable, updates its
// analytics. Counter increment, last-scanned timestamp and the limit
// check run in one conditional UPDATE keyed by id; the device counter is
// a single atomic upsert, so concurrent scans of the same device type
// cannot lose updates.
func (s *ScanService) RecordScan(id string, meta ScanMetadata) (*models.QRCode, ScanOutcome) {
	rec, outcome := s.Resolve(id)
	if outcome != ScanOK {
		return rec, outcome
	}

	now := s.now()
	res := s.db.Model(&models.QRCode{}).Where("id = ?", rec.ID).UpdateColumns(map[string]interface{}{
		"scan_count":   gorm.Expr("scan_count + 1"),
		"last_scanned": now,
		"status":       gorm.Expr("CASE WHEN max_scans > 0 AND scan_count + 1 >= max_scans THEN ? ELSE status END", models.StatusExpired),
	})
	if res.Error != nil {
		log.Printf("Failed to record scan for qr code %s: %v", rec.ID, res.Error)
		return nil, ScanInternal
	}

	country := meta.Country
	if country == "" {
		country = "Unknown"
	}
	city := meta.City
	if city == "" {
		city = "Unknown"
	}
	loc := models.ScanLocation{QRCodeID: rec.ID, Country: country, City: city, ScannedAt: now}
	if err := s.db.Create(&loc).Error; err != nil {
		log.Printf("Failed to record scan location for qr code %s: %v", rec.ID, err)
		return nil, ScanInternal
	}

	stat := models.DeviceStat{QRCodeID: rec.ID, DeviceType: ClassifyDevice(meta.UserAgent), Count: 1}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "qr_code_id"}, {Name: "device_type"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("device_stats.count + 1")}),
	}).Create(&stat).Error; err != nil {
		log.Printf("Failed to record device stat for qr code %s: %v", rec.ID, err)
		return nil, ScanInternal
	}

	var updated models.QRCode
	if err := s.db.First(&updated, "id = ?", rec.ID).Error; err != nil {
		log.Printf("Failed to reload qr code %s: %v", rec.ID, err)
		return nil, ScanInternal
	}
	return &updated, ScanOK
}

// Unlock verifies a submitted password and records the scan on success.
// Expiration is checked before the password, so an expired code reports
// expired rather than prompting.
func (s *ScanService) Unlock(id, password string, meta ScanMetadata) (*models.QRCode, ScanOutcome) {
	rec, outcome := s.Resolve(id)
	if outcome != ScanOK {
		return rec, outcome
	}
	if rec.PasswordProtected {
		if strings.TrimSpace(rec.Password) != strings.TrimSpace(password) {
			return nil, ScanAuthFailed
		}
	}
	return s.RecordScan(id, meta)
}
