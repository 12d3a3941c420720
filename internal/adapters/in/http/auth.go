package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"fleet/internal/core/domain/model/kernel"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	actorContextKey = "fleet.actor"

	tokenQueryParam = "token"
)

var ErrTokenIsInvalid = errors.New("access token is invalid")

// Claims are issued by the identity service. UserID is carried in "sub".
type Claims struct {
	UserID string `json:"sub"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenVerifier checks HS256 access tokens. This service never issues tokens
// outside of tests.
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Actor verifies the token and returns the caller it identifies.
func (v *TokenVerifier) Actor(token string) (kernel.Actor, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return kernel.Actor{}, errors.Join(ErrTokenIsInvalid, err)
	}
	if !parsed.Valid {
		return kernel.Actor{}, ErrTokenIsInvalid
	}

	id, err := kernel.UUIDFromString(claims.UserID)
	if err != nil {
		return kernel.Actor{}, errors.Join(ErrTokenIsInvalid, err)
	}
	role, err := kernel.ParseRole(claims.Role)
	if err != nil {
		return kernel.Actor{}, errors.Join(ErrTokenIsInvalid, err)
	}
	return kernel.NewActor(id, role)
}

// Sign issues a token for actor. Used by tests and local tooling.
func (v *TokenVerifier) Sign(actor kernel.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: actor.ID.String(),
		Role:   actor.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Authenticate requires a bearer token and stores the actor in the echo context.
// Websocket clients that cannot set headers may pass the token as ?token=.
func Authenticate(verifier *TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request())
			if token == "" {
				token = c.QueryParam(tokenQueryParam)
			}
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			actor, err := verifier.Actor(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, ErrTokenIsInvalid.Error()).SetInternal(err)
			}

			c.Set(actorContextKey, actor)
			return next(c)
		}
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get(echo.HeaderAuthorization)
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// actorFrom returns the actor stored by Authenticate.
func actorFrom(c echo.Context) (kernel.Actor, error) {
	actor, ok := c.Get(actorContextKey).(kernel.Actor)
	if !ok {
		return kernel.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	}
	return actor, nil
}
