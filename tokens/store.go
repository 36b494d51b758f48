package tokens

import (
	"context"
	"time"

	"github.com/jrsteele09/circle-miniapp/circlemodel"
	"github.com/jrsteele09/circle-miniapp/internal/errors"
	"github.com/rs/zerolog/log"
)

// Store binds a Repo to a single session id. Reads on a missing session
// return zero values rather than errors.
type Store struct {
	repo      Repo
	sessionID string
	now       func() time.Time
}

func NewStore(repo Repo, sessionID string) *Store {
	return &Store{repo: repo, sessionID: sessionID, now: time.Now}
}

func (s *Store) SessionID() string {
	return s.sessionID
}

func (s *Store) load(ctx context.Context) (Session, bool) {
	session, err := s.repo.Get(ctx, s.sessionID)
	if err != nil {
		if !errors.Is(err, errors.ErrSessionNotFound) {
			log.Err(err).Str("session", s.sessionID).Msg("failed to load session")
		}
		return Session{}, false
	}
	return session, true
}

func (s *Store) update(ctx context.Context, fn func(*Session)) error {
	return s.repo.Update(ctx, s.sessionID, func(session *Session, exists bool) bool {
		if !exists {
			session.CreatedAt = s.now()
		}
		fn(session)
		session.UpdatedAt = s.now()
		return true
	})
}

func (s *Store) GetTokens(ctx context.Context) *Tokens {
	session, ok := s.load(ctx)
	if !ok || session.Tokens == nil {
		return nil
	}
	t := *session.Tokens
	return &t
}

func (s *Store) SetTokens(ctx context.Context, t Tokens) error {
	return s.update(ctx, func(session *Session) {
		session.Tokens = &t
	})
}

// RemoveTokens drops the tokens and the cached user together. Development
// init data survives so a test login can be repeated.
func (s *Store) RemoveTokens(ctx context.Context) error {
	return s.repo.Update(ctx, s.sessionID, func(session *Session, exists bool) bool {
		if !exists || session.TestInitData == "" {
			return false
		}
		session.Tokens = nil
		session.User = nil
		session.UpdatedAt = s.now()
		return true
	})
}

func (s *Store) GetUser(ctx context.Context) *circlemodel.User {
	session, ok := s.load(ctx)
	if !ok {
		return nil
	}
	return session.User
}

func (s *Store) SetUser(ctx context.Context, user *circlemodel.User) error {
	return s.update(ctx, func(session *Session) {
		session.User = user
	})
}

// IsAuthenticated only checks that an access token is present.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	t := s.GetTokens(ctx)
	return t != nil && t.Access != ""
}

func (s *Store) TestInitData(ctx context.Context) string {
	session, _ := s.load(ctx)
	return session.TestInitData
}

func (s *Store) SetTestInitData(ctx context.Context, initData string) error {
	return s.update(ctx, func(session *Session) {
		session.TestInitData = initData
	})
}
