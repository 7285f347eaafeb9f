package security

import (
	"context"
	"testing"
	"time"

	"codecamp/internal/platform/config"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPasswordHash("s3cret!", hash) {
		t.Fatal("correct password rejected")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Fatal("wrong password accepted")
	}
}

func TestGenerateTokenClaims(t *testing.T) {
	config.AppConfig = &config.Config{JWTKey: []byte("test-key"), JWTExp: time.Hour}
	InitJWT()

	tokenString, err := GenerateToken("user-1", "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	token, err := TokenAuth.Decode(tokenString)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	claims, err := token.AsMap(context.Background())
	if err != nil {
		t.Fatalf("AsMap: %v", err)
	}
	if id, _ := GetUserIDFromClaims(claims); id != "user-1" {
		t.Errorf("user_id: got %q", id)
	}
	if role, _ := GetUserRoleFromClaims(claims); role != "admin" {
		t.Errorf("role: got %q", role)
	}
}
