package services

import (
	"testing"

	"qrtrack/models"
)

func TestAggregateUser(t *testing.T) {
	codes := []models.QRCode{
		{ID: "a", ScanCount: 5},
		{ID: "b", ScanCount: 12},
		{ID: "c", ScanCount: 3},
	}
	stats := []models.DeviceStat{
		{QRCodeID: "a", DeviceType: "ios", Count: 3},
		{QRCodeID: "a", DeviceType: "android", Count: 2},
		{QRCodeID: "b", DeviceType: "ios", Count: 12},
		{QRCodeID: "c", DeviceType: "desktop", Count: 3},
	}
	locations := []models.ScanLocation{
		{QRCodeID: "a", Country: "France"},
		{QRCodeID: "b", Country: "France"},
		{QRCodeID: "b", Country: "Germany"},
		{QRCodeID: "c", Country: ""},
	}

	got := AggregateUser(codes, stats, locations)

	if got.TotalCodes != 3 {
		t.Errorf("TotalCodes = %d, want 3", got.TotalCodes)
	}
	if got.TotalScans != 20 {
		t.Errorf("TotalScans = %d, want 20", got.TotalScans)
	}
	if got.MostScanned == nil || got.MostScanned.ID != "b" {
		t.Errorf("MostScanned = %+v, want record b", got.MostScanned)
	}
	if got.Devices["ios"] != 15 || got.Devices["android"] != 2 || got.Devices["desktop"] != 3 {
		t.Errorf("Devices = %v", got.Devices)
	}
	if got.Countries["France"] != 2 || got.Countries["Germany"] != 1 || got.Countries["Unknown"] != 1 {
		t.Errorf("Countries = %v", got.Countries)
	}
}

func TestAggregateUserTieBreaksOnFirst(t *testing.T) {
	codes := []models.QRCode{
		{ID: "first", ScanCount: 7},
		{ID: "second", ScanCount: 7},
	}
	got := AggregateUser(codes, nil, nil)
	if got.MostScanned == nil || got.MostScanned.ID != "first" {
		t.Errorf("MostScanned = %+v, want first record on tie", got.MostScanned)
	}
}

func TestAggregateUserEmpty(t *testing.T) {
	got := AggregateUser(nil, nil, nil)
	if got.TotalCodes != 0 || got.TotalScans != 0 || got.MostScanned != nil {
		t.Errorf("empty aggregate = %+v", got)
	}
}

func TestForQRCode(t *testing.T) {
	db := testDB(t)
	scans := NewScanService(db)
	analytics := NewAnalyticsService(db)

	rec := models.QRCode{
		ID: "analytics-test", UserID: 7, Content: "https://example.com",
		ContentType: models.ContentTypeURL, Status: models.StatusActive,
	}
	if err := db.Create(&rec).Error; err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if _, outcome := scans.RecordScan(rec.ID, ScanMetadata{UserAgent: "Mozilla/5.0 (iPhone)", Country: "France"}); outcome != ScanOK {
			t.Fatalf("outcome = %v, want ScanOK", outcome)
		}
	}

	summary, err := analytics.ForQRCode(rec.ID, 7)
	if err != nil {
		t.Fatal(err)
	}
	if summary.ScanCount != 2 {
		t.Errorf("ScanCount = %d, want 2", summary.ScanCount)
	}
	if summary.Devices["ios"] != 2 {
		t.Errorf("Devices = %v, want ios:2", summary.Devices)
	}
	if len(summary.Locations) != 2 {
		t.Errorf("Locations = %d rows, want 2", len(summary.Locations))
	}

	// wrong owner cannot read it
	if _, err := analytics.ForQRCode(rec.ID, 8); err != ErrNotFound {
		t.Errorf("cross-owner read err = %v, want ErrNotFound", err)
	}
}
