package util

import (
	"talent_portal_backend/internal/model"
	"testing"
	"time"
)

func testUser() *model.User {
	u := &model.User{
		Name:  "Ada",
		Email: "ada@example.com",
		Role:  model.Candidate,
	}
	u.ID = 11
	return u
}

func TestGenerateAndParseJWT(t *testing.T) {
	secret := "0123456789abcdef0123456789abcdef"

	token, err := GenerateJWT(testUser(), secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ParseJWT(token, secret)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != 11 {
		t.Errorf("userID = %d, want 11", claims.UserID)
	}
	if claims.Role != model.Candidate {
		t.Errorf("role = %s, want candidate", claims.Role)
	}
	if claims.Email != "ada@example.com" {
		t.Errorf("email = %s", claims.Email)
	}
}

func TestParseJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT(testUser(), "0123456789abcdef0123456789abcdef", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	if _, err := ParseJWT(token, "another-secret-another-secret-xx"); err == nil {
		t.Fatal("ParseJWT accepted token signed with a different secret")
	}
}

func TestParseJWTExpired(t *testing.T) {
	secret := "0123456789abcdef0123456789abcdef"
	token, err := GenerateJWT(testUser(), secret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	if _, err := ParseJWT(token, secret); err == nil {
		t.Fatal("ParseJWT accepted expired token")
	}
}
