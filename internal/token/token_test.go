package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret")

func TestSignAndVerify(t *testing.T) {
	signed, err := Sign(testSecret, "user-1", "videos/A/master.m3u8", time.Minute)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	claims, err := Verify(testSecret, signed)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if claims.Subject != "user-1" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "user-1")
	}
	if claims.VideoPath != "videos/A/master.m3u8" {
		t.Errorf("VideoPath = %q, want %q", claims.VideoPath, "videos/A/master.m3u8")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signed, err := Sign(testSecret, "user-1", "videos/A/master.m3u8", time.Minute)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	if _, err := Verify([]byte("other-secret"), signed); err == nil {
		t.Error("expected verification failure with wrong secret")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	now := time.Now()
	claims := Claims{
		VideoPath: "videos/A/master.m3u8",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("signing expired token: %v", err)
	}

	if _, err := Verify(testSecret, signed); err == nil {
		t.Error("expected verification failure for expired token")
	}
}

func TestVerifyRejectsWrongMethod(t *testing.T) {
	// alg=none tokens must never pass.
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{VideoPath: "videos/A/master.m3u8"})
	signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing none token: %v", err)
	}

	if _, err := Verify(testSecret, signed); err == nil {
		t.Error("expected verification failure for alg=none token")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	if _, err := Verify(testSecret, "not.a.jwt"); err == nil {
		t.Error("expected verification failure for malformed token")
	}
}

func TestSignRequiresSecret(t *testing.T) {
	if _, err := Sign(nil, "u", "videos/A/master.m3u8", time.Minute); err == nil {
		t.Error("expected error signing with empty secret")
	}
}

func TestFolderPrefix(t *testing.T) {
	tests := []struct {
		videoPath string
		prefix    string
		ok        bool
	}{
		{"videos/A/master.m3u8", "videos/A/", true},
		{"videos/A/720p/playlist.m3u8", "videos/A/720p/", true},
		{"master.m3u8", "", true},
		{"", "", false},
	}

	for _, tt := range tests {
		prefix, ok := FolderPrefix(tt.videoPath)
		if prefix != tt.prefix || ok != tt.ok {
			t.Errorf("FolderPrefix(%q) = (%q, %v), want (%q, %v)",
				tt.videoPath, prefix, ok, tt.prefix, tt.ok)
		}
	}
}

func TestAuthorizes(t *testing.T) {
	tests := []struct {
		videoPath string
		key       string
		want      bool
	}{
		{"videos/A/master.m3u8", "videos/A/master.m3u8", true},
		{"videos/A/master.m3u8", "videos/A/seg0.ts", true},
		{"videos/A/master.m3u8", "videos/A/720p/playlist.m3u8", true},
		{"videos/A/master.m3u8", "videos/B/master.m3u8", false},
		{"videos/A/master.m3u8", "videos/AB/master.m3u8", false},
		{"videos/A/master.m3u8", "thumbnails/A.jpg", false},
		// A scope without a folder never widens to the whole bucket.
		{"master.m3u8", "master.m3u8", true},
		{"master.m3u8", "other.m3u8", false},
		{"", "videos/A/master.m3u8", false},
	}

	for _, tt := range tests {
		if got := Authorizes(tt.videoPath, tt.key); got != tt.want {
			t.Errorf("Authorizes(%q, %q) = %v, want %v", tt.videoPath, tt.key, got, tt.want)
		}
	}
}

func TestSignedTokenShape(t *testing.T) {
	signed, err := Sign(testSecret, "u", "videos/A/master.m3u8", 0)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if strings.Count(signed, ".") != 2 {
		t.Errorf("signed token %q is not a three-part JWT", signed)
	}
}
