package echoapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/session"
)

var (
	tokenCookieName  = "token"
	authScheme       = "Bearer"
	signingMethod    = jwt.SigningMethodHS256
	contextGateKey   = "sessionGate"
	contextOrigState = "sessionOrig"

	// errors
	errUnexpectedSigningMethod = errors.New("unexpected signing method")
	errInvalidToken            = errors.New("invalid token")
)

// Claims represents the session claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Email      string `json:"email,omitempty"`
	Generation int    `json:"gen,omitempty"`
}

// GetIdentityClaims returns the Claims of a session established for id.
func GetIdentityClaims(conf *core.Config, id session.Identity) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   id.UID,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email:      id.Email,
		Generation: id.Generation,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(signingMethod, claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// ParseToken validates a token string and returns its session.
func ParseToken(conf *core.Config, tokenStr string) (session.Session, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != signingMethod.Alg() {
			return nil, errUnexpectedSigningMethod
		}
		return []byte(conf.SecretKey), nil
	})
	if err != nil {
		return session.Anonymous(), errors.Wrap(err, "parsing token")
	}
	if !token.Valid || claims.Subject == "" {
		return session.Anonymous(), errInvalidToken
	}
	id := session.Identity{UID: claims.Subject, Email: claims.Email, Generation: claims.Generation}
	return session.Authenticated(id, time.Unix(claims.IssuedAt, 0)), nil
}

// requestToken extracts the token from the session cookie, then from the Authorization header.
func requestToken(ctx echo.Context) string {
	if cookie, err := ctx.Cookie(tokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
	l := len(authScheme)
	if len(auth) > l+1 && strings.EqualFold(auth[:l], authScheme) {
		return strings.TrimSpace(auth[l+1:])
	}
	return ""
}

func getContextGate(ctx echo.Context) *session.Gate {
	return ctx.Get(contextGateKey).(*session.Gate)
}

// syncTokenCookie issues or clears the session cookie if the session changed while handling
// the request. It returns the new token, if any.
func syncTokenCookie(ctx echo.Context, conf *core.Config) (string, error) {
	gate, ok := ctx.Get(contextGateKey).(*session.Gate)
	if !ok {
		return "", nil
	}
	orig, _ := ctx.Get(contextOrigState).(session.Session)
	current := gate.Current()
	if orig.UID() == current.UID() && (!current.IsAuthenticated() || orig.Identity.Generation == current.Identity.Generation) {
		return "", nil
	}

	if !current.IsAuthenticated() {
		clearTokenCookie(ctx)
		return "", nil
	}
	token, err := GenerateToken(conf, GetIdentityClaims(conf, *current.Identity))
	if err != nil {
		return "", errors.Wrap(err, "generating token")
	}
	ctx.SetCookie(&http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(conf.Server.JWTExpirationDelta),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !(conf.Debug || conf.TestMode),
	})
	return token, nil
}

func clearTokenCookie(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
