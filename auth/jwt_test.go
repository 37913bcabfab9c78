package auth

import (
	"testing"

	"qrtrack/models"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService("test-secret")
	user := &models.User{ID: 42, Username: "ada"}

	token, err := svc.GenerateToken(user)
	if err != nil {
		t.Fatal(err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
}

func TestValidateRejectsWrongKey(t *testing.T) {
	token, err := NewService("key-one").GenerateToken(&models.User{ID: 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewService("key-two").ValidateToken(token); err == nil {
		t.Error("token signed with a different key validated")
	}
}
