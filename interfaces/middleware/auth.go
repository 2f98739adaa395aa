package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"trend-api/domain/dto"
	"trend-api/domain/model"
	"trend-api/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// Context keys set by Auth.
const (
	KeyUserID     = "user_id"
	KeyEmail      = "email"
	KeyIsPaidUser = "is_paid_user"
)

// Auth validates an HS256 bearer token and exposes the caller identity on the gin context.
func Auth(secretKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authorization := ctx.Request.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(authorization, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			unauthorized(ctx, "Authorization token is required")
			return
		}

		claims, err := parseClaims(strings.TrimSpace(tokenString), secretKey)
		if err != nil {
			logger.GetLogger().WithField("error", err).Debug("Rejected token")
			unauthorized(ctx, rejectionMessage(err))
			return
		}

		ctx.Set(KeyUserID, claims.UserID)
		ctx.Set(KeyEmail, claims.Email)
		ctx.Set(KeyIsPaidUser, claims.IsPaidUser)
		ctx.Next()
	}
}

func parseClaims(tokenString, secretKey string) (model.UserClaims, error) {
	var claims model.UserClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return claims, err
	}
	if !token.Valid {
		return claims, errors.New("token is not valid")
	}
	if claims.UserID == "" {
		return claims, errors.New("token has no user id")
	}
	return claims, nil
}

func rejectionMessage(err error) string {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) {
		if ve.Errors&jwt.ValidationErrorMalformed != 0 {
			return "Malformed token"
		}
		if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
			return "Token is expired or not active yet"
		}
	}
	return "Invalid token"
}

func unauthorized(ctx *gin.Context, message string) {
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Success: false, Error: message})
}

// TierFromContext derives the access tier from the claim Auth stored. Missing claims mean free.
func TierFromContext(ctx *gin.Context) model.AccessTier {
	return model.TierFromClaim(ctx.GetBool(KeyIsPaidUser))
}
