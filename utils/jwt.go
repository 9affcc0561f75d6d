package utils

import (
	"errors"
	"time"

	"vltava/config"

	"github.com/golang-jwt/jwt"
)

func secretKey() []byte {
	secret := config.AppConfig.JWTSecret
	if secret == "" {
		secret = "vltava-dev-only"
	}
	return []byte(secret)
}

// GenerateOpsToken creates a signed JWT granting access to the operational
// read API. The token expires after the specified duration.
func GenerateOpsToken(subject string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   subject,
		"scope": "ops",
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// ValidateOpsToken parses a token string and verifies signature and scope.
func ValidateOpsToken(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey(), nil
	})
	if err != nil {
		return err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return errors.New("invalid token")
	}
	if scope, _ := claims["scope"].(string); scope != "ops" {
		return errors.New("token does not carry ops scope")
	}
	return nil
}
