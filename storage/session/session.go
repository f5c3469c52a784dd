// Package session stores the bearer token of the logged in user between runs.
package session

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core"
)

// NowFunc is mockable in tests.
var NowFunc = time.Now

// Claims are the claims of the tokens issued by the API. Only the ones the dashboard shows are kept.
type Claims struct {
	jwt.StandardClaims
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Parse reads the claims of token without verifying its signature (the API does that) and
// returns the corresponding session. Expired tokens are reported as core.ErrLoginRequired.
func Parse(token string) (core.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return core.Session{}, core.ErrLoginRequired
	}

	claims := new(Claims)
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return core.Session{}, errors.Wrap(core.ErrLoginRequired, "malformed token")
	}
	if !claims.VerifyExpiresAt(NowFunc().Unix(), false) {
		return core.Session{}, errors.Wrap(core.ErrLoginRequired, "token expired")
	}
	sess := core.Session{
		UserID:   claims.Subject,
		Username: claims.Username,
		Email:    claims.Email,
		Token:    token,
	}
	if claims.ExpiresAt > 0 {
		sess.ExpiresAt = time.Unix(claims.ExpiresAt, 0).UTC()
	}
	return sess, nil
}

// FileStore keeps the token in a file readable by its owner only.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

// Token returns the stored token if it has not expired.
func (s *FileStore) Token() (string, error) {
	sess, err := s.Session()
	if err != nil {
		return "", err
	}
	return sess.Token, nil
}

// Session returns the session of the stored token.
func (s *FileStore) Session() (core.Session, error) {
	s.mu.Lock()
	data, err := os.ReadFile(s.path)
	s.mu.Unlock()
	if err != nil {
		if os.IsNotExist(err) {
			return core.Session{}, core.ErrLoginRequired
		}
		return core.Session{}, errors.Wrap(err, "reading token file")
	}
	return Parse(string(data))
}

// Save validates and stores token.
func (s *FileStore) Save(token string) (core.Session, error) {
	sess, err := Parse(token)
	if err != nil {
		return core.Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return core.Session{}, errors.Wrap(err, "creating token directory")
	}
	if err := os.WriteFile(s.path, []byte(sess.Token+"\n"), 0o600); err != nil {
		return core.Session{}, errors.Wrap(err, "writing token file")
	}
	return sess, nil
}

// Clear removes the stored token. Clearing an empty store is not an error.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing token file")
	}
	return nil
}
