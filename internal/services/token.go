package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mundotea/mundotea-backend/internal/platform/apierr"
	"github.com/mundotea/mundotea-backend/internal/platform/ctxutil"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
)

type JWTClaims struct {
	jwt.RegisteredClaims
}

type TokenService interface {
	Issue(accountID uuid.UUID) (string, error)
	Validate(tokenString string) (uuid.UUID, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	TTL() time.Duration
}

type tokenService struct {
	log          *logger.Logger
	jwtSecretKey []byte
	ttl          time.Duration
	now          func() time.Time
}

func NewTokenService(log *logger.Logger, jwtSecretKey string, ttl time.Duration) TokenService {
	return newTokenService(log, jwtSecretKey, ttl, time.Now)
}

func newTokenService(log *logger.Logger, jwtSecretKey string, ttl time.Duration, now func() time.Time) *tokenService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &tokenService{
		log:          log.With("service", "TokenService"),
		jwtSecretKey: []byte(jwtSecretKey),
		ttl:          ttl,
		now:          now,
	}
}

func (ts *tokenService) TTL() time.Duration { return ts.ttl }

func (ts *tokenService) Issue(accountID uuid.UUID) (string, error) {
	if accountID == uuid.Nil {
		return "", errors.New("cannot issue token for empty account id")
	}
	issuedAt := ts.now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ts.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.jwtSecretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (ts *tokenService) Validate(tokenString string) (uuid.UUID, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return uuid.Nil, apierr.Unauthenticated(errors.New("token ausente"))
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return ts.jwtSecretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, apierr.Unauthenticated(errors.New("token expirado"))
		}
		return uuid.Nil, apierr.Unauthenticated(fmt.Errorf("token inválido: %w", err))
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return uuid.Nil, apierr.Unauthenticated(errors.New("token inválido"))
	}
	accountID, err := uuid.Parse(claims.Subject)
	if err != nil || accountID == uuid.Nil {
		return uuid.Nil, apierr.Unauthenticated(errors.New("token sem identificador de conta"))
	}
	return accountID, nil
}

// SetContextFromToken validates the token and attaches the acting account to ctx.
func (ts *tokenService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	accountID, err := ts.Validate(tokenString)
	if err != nil {
		return ctx, err
	}
	rd := &ctxutil.RequestData{
		TokenString: tokenString,
		AccountID:   accountID,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}
