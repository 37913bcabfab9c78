package services

import (
	"bytes"
	"strings"
	"testing"

	"qrtrack/models"
)

func TestTrackingURLShape(t *testing.T) {
	url, err := TrackingURL("http://localhost:8080/", "some-id")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(url, "http://localhost:8080/t/some-id?tk=") {
		t.Errorf("got %q", url)
	}
	token := url[strings.Index(url, "?tk=")+4:]
	if len(token) != tokenLength {
		t.Errorf("token %q has length %d, want %d", token, len(token), tokenLength)
	}
}

func TestCreateClearsPasswordWhenUnprotected(t *testing.T) {
	db := testDB(t)
	svc := NewQRCodeService(db, "http://localhost:8080")

	rec, err := svc.Create(1, CreateInput{
		ContentType: models.ContentTypeURL,
		Payload:     ContentPayload{URL: "https://example.com"},
		Password:    "leftover",
	})
	if err != nil {
		t.Fatal(err)
	}
	if rec.Password != "" {
		t.Errorf("Password = %q, want empty when protection is off", rec.Password)
	}
	if rec.Status != models.StatusActive {
		t.Errorf("Status = %q, want active", rec.Status)
	}
	if rec.ID == "" {
		t.Error("ID not allocated")
	}
}

func TestCreateWithTracking(t *testing.T) {
	db := testDB(t)
	svc := NewQRCodeService(db, "http://localhost:8080")

	rec, err := svc.Create(1, CreateInput{
		ContentType:     models.ContentTypeURL,
		Payload:         ContentPayload{URL: "https://example.com"},
		TrackingEnabled: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(rec.TrackingURL, "/t/"+rec.ID) {
		t.Errorf("TrackingURL %q does not embed id %q", rec.TrackingURL, rec.ID)
	}
}

func TestCreateRejectsNegativeMaxScans(t *testing.T) {
	db := testDB(t)
	svc := NewQRCodeService(db, "http://localhost:8080")

	_, err := svc.Create(1, CreateInput{
		ContentType: models.ContentTypeURL,
		Payload:     ContentPayload{URL: "https://example.com"},
		MaxScans:    -1,
	})
	if err == nil {
		t.Fatal("expected error for negative max_scans")
	}
}

func TestUpdateKeepsTrackingURL(t *testing.T) {
	db := testDB(t)
	svc := NewQRCodeService(db, "http://localhost:8080")

	rec, err := svc.Create(1, CreateInput{
		ContentType:     models.ContentTypeURL,
		Payload:         ContentPayload{URL: "https://example.com"},
		TrackingEnabled: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	issued := rec.TrackingURL

	updated, err := svc.Update(rec.ID, 1, UpdateInput{
		Payload:           &ContentPayload{URL: "https://example.org"},
		PasswordProtected: true,
		Password:          "secret",
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.TrackingURL != issued {
		t.Errorf("TrackingURL changed from %q to %q", issued, updated.TrackingURL)
	}
	if updated.Content != "https://example.org" {
		t.Errorf("Content = %q", updated.Content)
	}
	if updated.Password != "secret" {
		t.Errorf("Password = %q, want secret", updated.Password)
	}

	// disabling protection clears the stored password
	updated, err = svc.Update(rec.ID, 1, UpdateInput{
		PasswordProtected: false,
		Password:          "secret",
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Password != "" {
		t.Errorf("Password = %q, want empty after disabling protection", updated.Password)
	}
}

func TestBulkDeleteOnlyOwned(t *testing.T) {
	db := testDB(t)
	svc := NewQRCodeService(db, "http://localhost:8080")

	mine, err := svc.Create(1, CreateInput{ContentType: models.ContentTypeText, Payload: ContentPayload{Text: "mine"}})
	if err != nil {
		t.Fatal(err)
	}
	theirs, err := svc.Create(2, CreateInput{ContentType: models.ContentTypeText, Payload: ContentPayload{Text: "theirs"}})
	if err != nil {
		t.Fatal(err)
	}

	deleted, err := svc.BulkDelete([]string{mine.ID, theirs.ID}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
	if _, err := svc.Get(theirs.ID, 2); err != nil {
		t.Errorf("other user's record was deleted: %v", err)
	}
	if _, err := svc.Get(mine.ID, 1); err != ErrNotFound {
		t.Errorf("own record still present, err = %v", err)
	}
}

func TestDeleteRemovesAnalyticsRows(t *testing.T) {
	db := testDB(t)
	svc := NewQRCodeService(db, "http://localhost:8080")
	scans := NewScanService(db)

	rec, err := svc.Create(1, CreateInput{ContentType: models.ContentTypeURL, Payload: ContentPayload{URL: "https://example.com"}})
	if err != nil {
		t.Fatal(err)
	}
	if _, outcome := scans.RecordScan(rec.ID, ScanMetadata{UserAgent: "Mozilla/5.0 (iPhone)"}); outcome != ScanOK {
		t.Fatalf("outcome = %v, want ScanOK", outcome)
	}

	if err := svc.Delete(rec.ID, 1); err != nil {
		t.Fatal(err)
	}

	var locations, stats int64
	db.Model(&models.ScanLocation{}).Where("qr_code_id = ?", rec.ID).Count(&locations)
	db.Model(&models.DeviceStat{}).Where("qr_code_id = ?", rec.ID).Count(&stats)
	if locations != 0 || stats != 0 {
		t.Errorf("orphaned rows after delete: locations=%d stats=%d", locations, stats)
	}
}

func TestRenderPNG(t *testing.T) {
	db := testDB(t)
	svc := NewQRCodeService(db, "http://localhost:8080")

	rec := &models.QRCode{Content: "https://example.com", ContentType: models.ContentTypeURL, Foreground: "#112233", Background: "#ffffff"}
	png, err := svc.RenderPNG(rec, 128)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}
