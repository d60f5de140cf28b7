package jwt

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deskfolio/deskfolio/shared/domain"
	internal_errors "github.com/deskfolio/deskfolio/shared/errors"
	"github.com/deskfolio/deskfolio/shared/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type JwtService interface {
	NewToken(identity domain.Identity) (string, error)
	DecodeToken(jwtStr string) (domain.Session, error)
}

type Jwt struct {
	secretKey string
	ttl       time.Duration
	now       func() time.Time
}

func New(secretKey string, ttl time.Duration) *Jwt {
	return &Jwt{secretKey: secretKey, ttl: ttl, now: time.Now}
}

type claims struct {
	Uid   int64  `json:"uid"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (j *Jwt) NewToken(identity domain.Identity) (string, error) {
	now := j.now()
	c := claims{
		Uid:   identity.Id,
		Email: identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		logger.Log.Error("failed to sign token", "error", err)
		return "", errors.New("Can't create token")
	}

	return tokenString, nil
}

func (j *Jwt) DecodeToken(jwtStr string) (domain.Session, error) {
	var c claims
	token, err := jwt.ParseWithClaims(jwtStr, &c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithTimeFunc(j.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Session{}, &internal_errors.ErrorWithStatusCode{Message: "Session expired", StatusCode: http.StatusUnauthorized, Kind: internal_errors.ErrInvalidCredentials}
		}
		return domain.Session{}, &internal_errors.ErrorWithStatusCode{Message: "Invalid token signature", StatusCode: http.StatusUnauthorized, Kind: internal_errors.ErrInvalidCredentials}
	}
	if !token.Valid || c.ID == "" || c.Email == "" {
		return domain.Session{}, &internal_errors.ErrorWithStatusCode{Message: "Invalid access token", StatusCode: http.StatusUnauthorized, Kind: internal_errors.ErrInvalidCredentials}
	}

	return domain.Session{
		Identity:  domain.Identity{Id: c.Uid, Email: c.Email},
		TokenId:   c.ID,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}
