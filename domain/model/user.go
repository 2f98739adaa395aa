package model

import "github.com/golang-jwt/jwt"

// UserClaims is the identity claim attached to every request by the auth service.
type UserClaims struct {
	UserID     string `json:"userId"`
	Email      string `json:"email"`
	IsPaidUser bool   `json:"isPaidUser"`
	jwt.StandardClaims
}
