// Package auth 提供 JWT 签发/校验与 bcrypt 密码哈希.
package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/yeisme/dataroom/pkg/configs"
	"github.com/yeisme/dataroom/pkg/internal/model"
)

var (
	// ErrInvalidToken token 无效、签名错误或已过期.
	ErrInvalidToken = errors.New("auth: invalid or expired token")
	// ErrPasswordMismatch 密码不匹配.
	ErrPasswordMismatch = errors.New("auth: password mismatch")
)

// Claims JWT 载荷.
type Claims struct {
	UserID string     `json:"userId"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Issuer 负责签发与校验 token.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer 根据认证配置创建 Issuer.
func NewIssuer(cfg *configs.AuthConfig) *Issuer {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = configs.DefaultTokenTTL
	}

	return &Issuer{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock 替换时间源，测试中使用.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	cp := *i
	cp.now = now

	return &cp
}

// Sign 为用户签发 HS256 token.
func (i *Issuer) Sign(userID string, role model.Role) (string, error) {
	now := i.now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return token, nil
}

// Verify 校验 token 并返回载荷.
func (i *Issuer) Verify(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}

	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// bcryptMaxBytes bcrypt 只接受不超过 72 字节的输入.
const bcryptMaxBytes = 72

// bcryptInput 超过 72 字节的密码先做 SHA-256 再 base64，短密码原样使用.
func bcryptInput(password string) []byte {
	if len(password) <= bcryptMaxBytes {
		return []byte(password)
	}

	sum := sha256.Sum256([]byte(password))

	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// HashPassword 使用 bcrypt 哈希密码.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	b, err := bcrypt.GenerateFromPassword(bcryptInput(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(b), nil
}

// ComparePassword 比较明文与哈希，不匹配时返回 ErrPasswordMismatch.
func ComparePassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}

	return err
}
