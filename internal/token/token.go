package token

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is how long a freshly signed playback token stays valid.
const DefaultTTL = time.Hour

// Claims is the payload of a scoped playback token. VideoPath names the
// manifest object the token was minted for; the gateway widens it to the
// containing folder so sibling segments are covered by the same token.
type Claims struct {
	VideoPath string `json:"videoPath"`
	jwt.RegisteredClaims
}

// Sign mints an HS256 token scoped to videoPath for the given subject.
func Sign(secret []byte, subject, videoPath string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", fmt.Errorf("signing secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := time.Now()
	claims := Claims{
		VideoPath: videoPath,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Verify parses and validates a token string: signature, expiry and signing
// method. It returns the claims on success.
func Verify(secret []byte, tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	return claims, nil
}

// FolderPrefix derives the authorization prefix from a token's videoPath by
// stripping everything after the final slash, inclusive. The second return
// is false when videoPath is empty, which callers must treat as an invalid
// scope.
func FolderPrefix(videoPath string) (string, bool) {
	if videoPath == "" {
		return "", false
	}
	idx := strings.LastIndex(videoPath, "/")
	if idx == -1 {
		return "", true
	}
	return videoPath[:idx+1], true
}

// Authorizes reports whether a token scoped to videoPath authorizes access
// to key: the manifest itself, or any sibling under the manifest's folder.
func Authorizes(videoPath, key string) bool {
	prefix, ok := FolderPrefix(videoPath)
	if !ok {
		return false
	}
	return key == videoPath || (prefix != "" && strings.HasPrefix(key, prefix))
}
