// Package tokens holds the per-session access and refresh tokens together with
// the cached user record.
package tokens

import (
	"context"
	"time"

	"github.com/jrsteele09/circle-miniapp/circlemodel"
)

type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type Session struct {
	Tokens       *Tokens           `json:"tokens,omitempty"`
	User         *circlemodel.User `json:"user,omitempty"`
	TestInitData string            `json:"test_init_data,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// UpdateFunc changes a session in place. exists is false when nothing is
// stored yet. Returning false deletes the session. A repo may call it more
// than once when it retries a conflicting write.
type UpdateFunc func(session *Session, exists bool) (keep bool)

// Repo persists sessions by session id. Get returns ErrSessionNotFound for unknown ids.
// Update is atomic per session: concurrent updates of one id never overwrite
// each other.
type Repo interface {
	Get(ctx context.Context, sessionID string) (Session, error)
	Upsert(ctx context.Context, sessionID string, session Session) error
	Update(ctx context.Context, sessionID string, fn UpdateFunc) error
	Delete(ctx context.Context, sessionID string) error
}
