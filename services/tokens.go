package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"

	"staycation/models"
)

type Claims struct {
	ID              uint        `json:"id"`
	Email           string      `json:"email"`
	Name            string      `json:"name"`
	Role            models.Role `json:"role"`
	IsEmailVerified bool        `json:"isEmailVerified"`
	jwt.StandardClaims
}

type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Generate signs an HS256 access token for user.
func (s *TokenService) Generate(user models.User) (string, error) {
	now := s.now()
	claims := Claims{
		ID:              user.ID,
		Email:           user.Email,
		Name:            user.Name,
		Role:            user.Role,
		IsEmailVerified: user.IsEmailVerified,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
			Subject:   fmt.Sprint(user.ID),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates signature and expiry.
func (s *TokenService) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, Unauthorized("token expired")
		}
		return nil, Unauthorized("invalid token")
	}
	if !token.Valid {
		return nil, Unauthorized("invalid token")
	}
	return claims, nil
}
