package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const CookieName = "session"

// Manager binds browser cookies to server-side session records. The cookie
// value is an HS256 JWT carrying only the session id; everything else
// lives in the store.
type Manager struct {
	Store  Store
	Secret []byte
}

func NewManager(store Store, secret []byte) *Manager {
	return &Manager{Store: store, Secret: secret}
}

func (m *Manager) signSID(sid string, exp time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sid": sid,
		"exp": exp.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.Secret)
}

func (m *Manager) parseSID(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.Secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse session token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid session token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid session claims")
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", fmt.Errorf("missing sid claim")
	}
	return sid, nil
}

// Issue creates an empty session record and sets the cookie.
func (m *Manager) Issue(c echo.Context) (*Session, error) {
	s := &Session{SID: uuid.New().String()}
	if err := m.Store.Save(c.Request().Context(), s); err != nil {
		return nil, err
	}

	exp := time.Now().Add(TTL)
	signed, err := m.signSID(s.SID, exp)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}

	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s, nil
}

// Load returns the caller's session, or ErrNotFound when there is no valid
// cookie or the record has expired.
func (m *Manager) Load(c echo.Context) (*Session, error) {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNotFound
	}

	sid, err := m.parseSID(cookie.Value)
	if err != nil {
		return nil, ErrNotFound
	}

	return m.Store.Get(c.Request().Context(), sid)
}

// LoadOrIssue never fails with a missing session; it creates one instead.
func (m *Manager) LoadOrIssue(c echo.Context) (*Session, error) {
	s, err := m.Load(c)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return m.Issue(c)
}

func (m *Manager) Save(c echo.Context, s *Session) error {
	return m.Store.Save(c.Request().Context(), s)
}

// Destroy drops the server-side record and expires the cookie.
func (m *Manager) Destroy(c echo.Context, s *Session) error {
	if err := m.Store.Delete(c.Request().Context(), s.SID); err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return nil
}
