package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"image/color"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"qrtrack/models"
)

const (
	tokenCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	tokenLength  = 8
)

var ErrNotFound = errors.New("qr code not found")

type QRCodeService struct {
	db      *gorm.DB
	baseURL string
}

func NewQRCodeService(db *gorm.DB, baseURL string) *QRCodeService {
	return &QRCodeService{db: db, baseURL: strings.TrimRight(baseURL, "/")}
}

// CreateInput carries everything needed to persist a new QR code.
type CreateInput struct {
	ContentType       string
	Payload           ContentPayload
	Foreground        string
	Background        string
	LogoURL           string
	Margin            int
	TrackingEnabled   bool
	PasswordProtected bool
	Password          string
	ExpiresAt         *time.Time
	MaxScans          int
}

// UpdateInput covers the mutable fields of a QR code. Tracking fields and
// analytics counters are never touched by an edit.
type UpdateInput struct {
	ContentType       string
	Payload           *ContentPayload
	Foreground        string
	Background        string
	LogoURL           string
	Margin            int
	PasswordProtected bool
	Password          string
	ExpiresAt         *time.Time
	MaxScans          int
}

// Create formats the payload, pre-allocates the identifier (the tracking
// URL embeds it, so the id must exist before the image is ever rendered)
// and persists the record.
func (s *QRCodeService) Create(userID uint, in CreateInput) (*models.QRCode, error) {
	if in.MaxScans < 0 {
		return nil, errors.New("max_scans cannot be negative")
	}

	content, err := FormatContent(in.ContentType, in.Payload)
	if err != nil {
		return nil, err
	}

	rec := &models.QRCode{
		ID:                uuid.New().String(),
		UserID:            userID,
		Content:           content,
		ContentType:       in.ContentType,
		Foreground:        in.Foreground,
		Background:        in.Background,
		LogoURL:           in.LogoURL,
		Margin:            in.Margin,
		PasswordProtected: in.PasswordProtected,
		Password:          in.Password,
		ExpiresAt:         in.ExpiresAt,
		MaxScans:          in.MaxScans,
		Status:            models.StatusActive,
	}

	// A password may only be stored while protection is on.
	if !rec.PasswordProtected {
		rec.Password = ""
	}

	if in.TrackingEnabled {
		trackingURL, err := TrackingURL(s.baseURL, rec.ID)
		if err != nil {
			return nil, err
		}
		rec.TrackingEnabled = true
		rec.TrackingURL = trackingURL
	}

	if err := s.db.Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// Get returns a record owned by the given user.
func (s *QRCodeService) Get(id string, userID uint) (*models.QRCode, error) {
	var rec models.QRCode
	err := s.db.First(&rec, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns a page of the user's records, newest first.
func (s *QRCodeService) List(userID uint, page, pageSize int) ([]models.QRCode, int64, error) {
	var codes []models.QRCode
	var total int64

	if err := s.db.Model(&models.QRCode{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := s.db.Where("user_id = ?", userID).
		Limit(pageSize).Offset((page - 1) * pageSize).
		Order("created_at desc").Find(&codes).Error
	if err != nil {
		return nil, 0, err
	}
	return codes, total, nil
}

// Update edits content, customization and security policy. The expired
// status is terminal and an edit never reverts it; tracking fields are
// set at creation and stay as issued.
func (s *QRCodeService) Update(id string, userID uint, in UpdateInput) (*models.QRCode, error) {
	rec, err := s.Get(id, userID)
	if err != nil {
		return nil, err
	}
	if in.MaxScans < 0 {
		return nil, errors.New("max_scans cannot be negative")
	}

	if in.Payload != nil {
		contentType := in.ContentType
		if contentType == "" {
			contentType = rec.ContentType
		}
		content, err := FormatContent(contentType, *in.Payload)
		if err != nil {
			return nil, err
		}
		rec.Content = content
		rec.ContentType = contentType
	}

	rec.Foreground = in.Foreground
	rec.Background = in.Background
	rec.LogoURL = in.LogoURL
	rec.Margin = in.Margin
	rec.PasswordProtected = in.PasswordProtected
	rec.Password = in.Password
	if !rec.PasswordProtected {
		rec.Password = ""
	}
	rec.ExpiresAt = in.ExpiresAt
	rec.MaxScans = in.MaxScans

	if err := s.db.Save(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes one record and its analytics rows.
func (s *QRCodeService) Delete(id string, userID uint) error {
	rec, err := s.Get(id, userID)
	if err != nil {
		return err
	}
	return s.deleteRecords([]string{rec.ID})
}

// BulkDelete removes every listed record the user owns and returns how
// many were deleted. Identifiers not owned by the user are skipped.
func (s *QRCodeService) BulkDelete(ids []string, userID uint) (int64, error) {
	var owned []string
	err := s.db.Model(&models.QRCode{}).
		Where("id IN ? AND user_id = ?", ids, userID).
		Pluck("id", &owned).Error
	if err != nil {
		return 0, err
	}
	if len(owned) == 0 {
		return 0, nil
	}
	if err := s.deleteRecords(owned); err != nil {
		return 0, err
	}
	return int64(len(owned)), nil
}

func (s *QRCodeService) deleteRecords(ids []string) error {
	if err := s.db.Where("qr_code_id IN ?", ids).Delete(&models.ScanLocation{}).Error; err != nil {
		return err
	}
	if err := s.db.Where("qr_code_id IN ?", ids).Delete(&models.DeviceStat{}).Error; err != nil {
		return err
	}
	return s.db.Where("id IN ?", ids).Delete(&models.QRCode{}).Error
}

// RenderPNG encodes the QR symbol. Tracked codes encode the tracking URL
// so every scan routes through the recorder; untracked codes encode the
// payload directly.
func (s *QRCodeService) RenderPNG(rec *models.QRCode, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	target := rec.Content
	if rec.TrackingEnabled && rec.TrackingURL != "" {
		target = rec.TrackingURL
	}

	q, err := qrcode.New(target, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	q.ForegroundColor = parseHexColor(rec.Foreground, color.Black)
	q.BackgroundColor = parseHexColor(rec.Background, color.White)
	q.DisableBorder = rec.Margin == 0
	return q.PNG(size)
}

// parseHexColor parses "#RRGGBB", falling back when the value is absent
// or malformed.
func parseHexColor(s string, fallback color.Color) color.Color {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return fallback
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return fallback
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// TrackingURL builds the redirect-through URL for a QR code. The token is
// freshly generated per call; it is decorative and never stored or
// validated.
func TrackingURL(baseURL, qrID string) (string, error) {
	token, err := trackingToken()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/t/%s?tk=%s", strings.TrimRight(baseURL, "/"), qrID, token), nil
}

func trackingToken() (string, error) {
	token := make([]byte, tokenLength)
	charsetLength := big.NewInt(int64(len(tokenCharset)))
	for i := 0; i < tokenLength; i++ {
		randomIndex, err := rand.Int(rand.Reader, charsetLength)
		if err != nil {
			return "", err
		}
		token[i] = tokenCharset[randomIndex.Int64()]
	}
	return string(token), nil
}
