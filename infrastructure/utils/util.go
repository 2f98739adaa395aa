package utils

import (
	"time"

	"trend-api/domain/model"
	"trend-api/infrastructure/logger"

	"github.com/golang-jwt/jwt"
)

// GetCurrentTime is the service clock.
func GetCurrentTime() time.Time {
	return time.Now().UTC()
}

// GenerateToken signs claims with HS256, the format the auth middleware accepts.
func GenerateToken(claims model.UserClaims, secretKey string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while generate token")
		return "", err
	}
	return tokenString, nil
}
