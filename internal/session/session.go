package session

import (
	"context"
	"errors"
	"time"

	"github.com/Knight069/ecommerce-microservice/internal/models"
)

var ErrNotFound = errors.New("session not found")

const TTL = 24 * time.Hour

type Flash struct {
	Message  string `json:"message"`
	Category string `json:"category"`
}

// Session is the server-side record behind the browser cookie. User and
// Order are cached snapshots of remote state; they are overwritten on the
// next successful fetch and may be stale in between.
type Session struct {
	SID     string        `json:"sid"`
	APIKey  string        `json:"api_key"`
	User    *models.User  `json:"user,omitempty"`
	Order   *models.Order `json:"order,omitempty"`
	Flashes []Flash       `json:"flashes,omitempty"`
}

func (s *Session) AddFlash(message, category string) {
	s.Flashes = append(s.Flashes, Flash{Message: message, Category: category})
}

// PopFlashes drains the pending flashes; the caller must save the session
// afterwards for the drain to stick.
func (s *Session) PopFlashes() []Flash {
	f := s.Flashes
	s.Flashes = nil
	return f
}

func (s *Session) LoggedIn() bool {
	return s != nil && s.APIKey != ""
}

type Store interface {
	Get(ctx context.Context, sid string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, sid string) error
}
