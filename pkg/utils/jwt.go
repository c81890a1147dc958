package utils

import (
	"fmt"
	"time"

	"github.com/creatorstack/tiktok-uploader/internal/config"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	defaultStateExpire = time.Minute * 30
)

// StateClaims is the signed payload carried in the OAuth state parameter.
// The registered ID ties the callback to a pending authorization attempt.
type StateClaims struct {
	jwt.RegisteredClaims
}

func GenerateStateToken(cfg *config.Config) (string, string, error) {
	expire := defaultStateExpire
	if cfg.Server.StateExpire > 0 {
		expire = cfg.Server.StateExpire
	}
	claims := &StateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expire)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(cfg.Server.StateSecretKey))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign state token: %w", err)
	}

	return signedToken, claims.ID, nil
}

func ValidateStateToken(tokenString string, secretKey string) (*StateClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &StateClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse state token: %w", err)
	}

	claims, ok := token.Claims.(*StateClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid state token claims")
	}

	return claims, nil
}
