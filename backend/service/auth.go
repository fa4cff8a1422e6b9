package service

import (
	"errors"
	"time"

	"insightlink/backend/common"
	"insightlink/backend/model"

	"github.com/golang-jwt/jwt/v5"
)

const (
	accessTokenValidity  = 24 * time.Hour
	refreshTokenValidity = 7 * 24 * time.Hour
	tokenIssuer          = "insightlink"
)

// Claims is the JWT payload for both access and refresh tokens.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     int    `json:"role"`
	jwt.RegisteredClaims
}

func generate(user *model.User, secret string, validity time.Duration) (string, error) {
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func validate(tokenString string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func GenerateToken(user *model.User) (string, error) {
	return generate(user, common.JWTSecret, accessTokenValidity)
}

func ValidateToken(tokenString string) (*Claims, error) {
	return validate(tokenString, common.JWTSecret)
}

func GenerateRefreshToken(user *model.User) (string, error) {
	return generate(user, common.JWTRefreshSecret, refreshTokenValidity)
}

func ValidateRefreshToken(tokenString string) (*Claims, error) {
	return validate(tokenString, common.JWTRefreshSecret)
}
