package service

import (
	"errors"
	"time"

	"github.com/protakeoff/marketplace/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenExpireHours = 24

// tokenTTL 未配置或配置非法时回落到 24 小时
func tokenTTL(hours int) time.Duration {
	if hours <= 0 {
		hours = defaultTokenExpireHours
	}
	return time.Duration(hours) * time.Hour
}

// rememberMeTTL 未配置记住我时长则沿用普通时长
func rememberMeTTL(cfg config.JWTConfig) time.Duration {
	if cfg.RememberMeExpireHours <= 0 {
		return tokenTTL(cfg.ExpireHours)
	}
	return tokenTTL(cfg.RememberMeExpireHours)
}

func registeredClaims(now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
}

// signToken HS256 签名，返回 Token 与过期时间
func signToken(secret string, claims jwt.Claims) (string, time.Time, error) {
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return "", time.Time{}, ErrTokenInvalid
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp.Time, nil
}

// parseToken 只接受 HS256 且必须带过期时间
func parseToken[C jwt.Claims](secret, raw string, claims C) (C, error) {
	var zero C
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return zero, errors.Join(ErrTokenInvalid, err)
	}
	if !token.Valid {
		return zero, ErrTokenInvalid
	}
	return claims, nil
}
