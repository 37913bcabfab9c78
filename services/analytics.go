package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"qrtrack/models"
)

type AnalyticsService struct {
	db *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

// RecordAnalytics is the analytics block of a single QR code.
type RecordAnalytics struct {
	QRCodeID    string                `json:"qr_code_id"`
	ScanCount   int                   `json:"scan_count"`
	LastScanned *time.Time            `json:"last_scanned"`
	Status      string                `json:"status"`
	Locations   []models.ScanLocation `json:"locations"`
	Devices     map[string]int        `json:"devices"`
}

// UserAnalytics rolls up every record a user owns.
type UserAnalytics struct {
	TotalCodes  int            `json:"total_codes"`
	TotalScans  int            `json:"total_scans"`
	MostScanned *models.QRCode `json:"most_scanned"`
	Devices     map[string]int `json:"devices"`
	Countries   map[string]int `json:"countries"`
}

// ForQRCode returns one record's analytics, scoped to its owner.
func (s *AnalyticsService) ForQRCode(id string, userID uint) (*RecordAnalytics, error) {
	var rec models.QRCode
	err := s.db.First(&rec, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var locations []models.ScanLocation
	if err := s.db.Where("qr_code_id = ?", id).Order("scanned_at asc").Find(&locations).Error; err != nil {
		return nil, err
	}
	var stats []models.DeviceStat
	if err := s.db.Where("qr_code_id = ?", id).Find(&stats).Error; err != nil {
		return nil, err
	}

	devices := make(map[string]int, len(stats))
	for _, st := range stats {
		devices[st.DeviceType] = st.Count
	}

	return &RecordAnalytics{
		QRCodeID:    rec.ID,
		ScanCount:   rec.ScanCount,
		LastScanned: rec.LastScanned,
		Status:      rec.Status,
		Locations:   locations,
		Devices:     devices,
	}, nil
}

// ForUser fetches everything the user owns and aggregates in memory.
func (s *AnalyticsService) ForUser(userID uint) (*UserAnalytics, error) {
	var codes []models.QRCode
	if err := s.db.Where("user_id = ?", userID).Order("created_at asc").Find(&codes).Error; err != nil {
		return nil, err
	}

	ids := make([]string, len(codes))
	for i, c := range codes {
		ids[i] = c.ID
	}

	var stats []models.DeviceStat
	var locations []models.ScanLocation
	if len(ids) > 0 {
		if err := s.db.Where("qr_code_id IN ?", ids).Find(&stats).Error; err != nil {
			return nil, err
		}
		if err := s.db.Where("qr_code_id IN ?", ids).Find(&locations).Error; err != nil {
			return nil, err
		}
	}

	return AggregateUser(codes, stats, locations), nil
}

// AggregateUser computes the per-user rollup: total record count, summed
// scan count, the most-scanned record (ties broken by query order),
// per-device totals and per-country totals (one unit per location row).
func AggregateUser(codes []models.QRCode, stats []models.DeviceStat, locations []models.ScanLocation) *UserAnalytics {
	out := &UserAnalytics{
		TotalCodes: len(codes),
		Devices:    make(map[string]int),
		Countries:  make(map[string]int),
	}

	for i := range codes {
		out.TotalScans += codes[i].ScanCount
		if out.MostScanned == nil || codes[i].ScanCount > out.MostScanned.ScanCount {
			out.MostScanned = &codes[i]
		}
	}
	for _, st := range stats {
		out.Devices[st.DeviceType] += st.Count
	}
	for _, loc := range locations {
		country := loc.Country
		if country == "" {
			country = "Unknown"
		}
		out.Countries[country]++
	}
	return out
}
