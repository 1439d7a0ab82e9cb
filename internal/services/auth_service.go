package services

import (
	"crypto/subtle"
	"errors"
	"time"

	"blogapi/internal/domain"
	"blogapi/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// RoleAdmin is the role carried by issued tokens.
const RoleAdmin = "admin"

// AuthService issues and checks the bearer tokens that guard write routes.
// An empty Secret disables it: every call fails as unauthorized.
type AuthService struct {
	Secret            []byte
	TTL               time.Duration
	AdminUsername     string
	AdminPasswordHash string
	Now               func() time.Time
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s AuthService) Enabled() bool { return len(s.Secret) > 0 }

// IssueToken checks the admin credentials and returns a signed HS256 token
// with its expiry.
func (s AuthService) IssueToken(username, password string) (string, time.Time, error) {
	if !s.Enabled() || s.AdminUsername == "" || s.AdminPasswordHash == "" {
		return "", time.Time{}, domain.UnauthorizedError{Msg: "token issuing is disabled"}
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(s.AdminUsername)) != 1 {
		return "", time.Time{}, domain.UnauthorizedError{Msg: "invalid username or password"}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.AdminPasswordHash), []byte(password)); err != nil {
		return "", time.Time{}, domain.UnauthorizedError{Msg: "invalid username or password", Err: err}
	}

	ttl := s.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := s.now()
	exp := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  username,
		"role": RoleAdmin,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	})
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		return "", time.Time{}, domain.InternalError{Msg: "failed to sign token", Err: err}
	}
	return signed, exp, nil
}

// ParseToken validates a signed token and returns the caller it names.
func (s AuthService) ParseToken(raw string) (domain.RequestContext, error) {
	if !s.Enabled() {
		return domain.RequestContext{}, domain.UnauthorizedError{Msg: "write access is disabled"}
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return domain.RequestContext{}, domain.UnauthorizedError{Msg: "invalid token", Err: err}
	}

	sub, _ := claims.GetSubject()
	role, _ := claims["role"].(string)
	if sub == "" || role != RoleAdmin {
		return domain.RequestContext{}, domain.UnauthorizedError{Msg: "invalid token", Err: errors.New("missing subject or role")}
	}
	return domain.RequestContext{Subject: sub, Role: role}, nil
}
