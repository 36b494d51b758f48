package tokens

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/circle-miniapp/internal/errors"
)

// FileRepo writes one JSON file per session into dir. The CLI uses it to keep
// a login between invocations.
type FileRepo struct {
	mu  sync.Mutex
	dir string
}

var _ Repo = (*FileRepo)(nil)

func NewFileRepo(dir string) *FileRepo {
	return &FileRepo{dir: dir}
}

func (r *FileRepo) path(sessionID string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("sessionID is required")
	}
	if sessionID != filepath.Base(sessionID) || sessionID == "." || sessionID == ".." {
		return "", fmt.Errorf("invalid sessionID %q", sessionID)
	}
	return filepath.Join(r.dir, sessionID+".json"), nil
}

// read and write expect r.mu to be held.
func (r *FileRepo) read(path string) (Session, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Session{}, errors.ErrSessionNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session file: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, fmt.Errorf("decode session file %s: %w", path, err)
	}
	return session, nil
}

func (r *FileRepo) write(path string, session Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return os.Rename(tmp, path)
}

func (r *FileRepo) remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func (r *FileRepo) Get(_ context.Context, sessionID string) (Session, error) {
	path, err := r.path(sessionID)
	if err != nil {
		return Session{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read(path)
}

func (r *FileRepo) Upsert(_ context.Context, sessionID string, session Session) error {
	path, err := r.path(sessionID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.write(path, session)
}

func (r *FileRepo) Update(_ context.Context, sessionID string, fn UpdateFunc) error {
	path, err := r.path(sessionID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.read(path)
	exists := err == nil
	if err != nil && !errors.Is(err, errors.ErrSessionNotFound) {
		return err
	}
	if !fn(&session, exists) {
		return r.remove(path)
	}
	return r.write(path, session)
}

func (r *FileRepo) Delete(_ context.Context, sessionID string) error {
	path, err := r.path(sessionID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remove(path)
}
