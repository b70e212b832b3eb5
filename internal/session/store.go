// Package session keeps the signed-in user and token, mirrored to durable
// storage so a session survives restarts.
package session

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pageza/snaptop/client/internal/models"
)

// Storage keys. Both must exist and parse for a session to be restored.
const (
	KeyUser  = "user"
	KeyToken = "token"
)

// ErrKeyNotFound is returned by Storage.Get for a missing key
var ErrKeyNotFound = errors.New("key not found")

// Storage is durable key-value storage. Values are replaced whole.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Store holds the current session. Construct one at startup, call Restore
// once, and pass it to whatever needs the session. Safe for concurrent use.
type Store struct {
	storage Storage
	log     logrus.FieldLogger

	mu          sync.RWMutex
	user        *models.User
	token       *models.Token
	subscribers []chan struct{}
}

// New creates an empty, unauthenticated store over storage
func New(storage Storage, log logrus.FieldLogger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{storage: storage, log: log.WithField("component", "session")}
}

// Restore loads the persisted session. A missing or unreadable half of the
// pair invalidates the whole session: both keys are erased and the store
// stays signed out. Failures are logged, never returned.
func (s *Store) Restore(ctx context.Context) {
	user, token, err := s.load(ctx)

	s.mu.Lock()
	s.user, s.token = user, token
	s.mu.Unlock()

	if err == nil {
		s.log.WithField("user_id", user.UserID).Debug("session restored")
		s.notify()
		return
	}
	if errors.Is(err, ErrKeyNotFound) {
		s.log.Debug("no stored session")
	} else {
		s.log.WithError(err).Warn("discarding unreadable session")
	}
	if derr := s.storage.Delete(ctx, KeyUser, KeyToken); derr != nil {
		s.log.WithError(derr).Warn("failed to erase stored session")
	}
}

func (s *Store) load(ctx context.Context) (*models.User, *models.Token, error) {
	rawUser, err := s.storage.Get(ctx, KeyUser)
	if err != nil {
		return nil, nil, errors.Wrap(err, "reading user")
	}
	rawToken, err := s.storage.Get(ctx, KeyToken)
	if err != nil {
		return nil, nil, errors.Wrap(err, "reading token")
	}

	var user models.User
	if err := decodeStrict(rawUser, &user); err != nil {
		return nil, nil, errors.Wrap(err, "parsing user")
	}
	var token models.Token
	if err := decodeStrict(rawToken, &token); err != nil {
		return nil, nil, errors.Wrap(err, "parsing token")
	}
	if !user.Valid() || !token.Valid() {
		return nil, nil, errors.New("stored session is incomplete")
	}
	return &user, &token, nil
}

// decodeStrict rejects anything that is not a JSON object, including "null"
func decodeStrict(raw string, v interface{}) error {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return errors.New("not a JSON object")
	}
	return json.Unmarshal([]byte(trimmed), v)
}

// Login replaces the session with user and token and persists both. The
// in-memory session is replaced even if writing to storage fails.
func (s *Store) Login(ctx context.Context, user models.User, token models.Token) error {
	s.mu.Lock()
	s.user, s.token = &user, &token
	s.mu.Unlock()
	s.notify()

	rawUser, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "failed to marshal user")
	}
	rawToken, err := json.Marshal(token)
	if err != nil {
		return errors.Wrap(err, "failed to marshal token")
	}
	if err := s.storage.Set(ctx, KeyUser, string(rawUser)); err != nil {
		return errors.Wrap(err, "failed to store user")
	}
	if err := s.storage.Set(ctx, KeyToken, string(rawToken)); err != nil {
		return errors.Wrap(err, "failed to store token")
	}
	s.log.WithFields(logrus.Fields{"user_id": user.UserID, "provider": user.Provider}).Debug("session stored")
	return nil
}

// Logout clears the session in memory and in storage. Calling it while
// signed out is a no-op.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	wasSignedIn := s.user != nil || s.token != nil
	s.user, s.token = nil, nil
	s.mu.Unlock()
	if wasSignedIn {
		s.notify()
	}

	if err := s.storage.Delete(ctx, KeyUser, KeyToken); err != nil {
		return errors.Wrap(err, "failed to erase session")
	}
	return nil
}

// IsAuthenticated reports whether both a user and a token are present
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.token != nil
}

// User returns a copy of the current user, or nil
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns a copy of the current token, or nil
func (s *Store) Token() *models.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return nil
	}
	t := *s.token
	return &t
}

// AuthorizationHeader returns the Authorization header value for the current
// session, or "" when signed out
func (s *Store) AuthorizationHeader() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil || s.token == nil {
		return ""
	}
	scheme := "Bearer"
	if t := s.token.TokenType; t != "" {
		scheme = strings.ToUpper(t[:1]) + t[1:]
	}
	return scheme + " " + s.token.AccessToken
}

// Subscribe returns a channel that receives a value whenever the session
// changes. Notifications are coalesced; a slow reader sees at most one
// pending signal.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.mu.Unlock()
	return ch
}

func (s *Store) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
