// Package session persists the logged-in student between runs.  The store
// is a cache, not a source of truth: reads fail open to "no session", writes
// are best-effort, and a session older than the configured lifetime is
// cleared on read.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ghani250za/abdelghani-amrani/internal/logger"
	"github.com/ghani250za/abdelghani-amrani/internal/model"
	"github.com/ghani250za/abdelghani-amrani/internal/repository"
	"github.com/ghani250za/abdelghani-amrani/internal/utils"
)

// DefaultTTL is how long a login stays valid.
const DefaultTTL = 24 * time.Hour

// Persisted key names, appended to the store namespace.
const (
	KeyAuthToken     = "authToken"
	KeyCurrentUser   = "currentUser"
	KeyAuthContext   = "authContext"
	KeyLastLoginTime = "lastLoginTime"
)

var keyNames = []string{KeyAuthToken, KeyCurrentUser, KeyAuthContext, KeyLastLoginTime}

type Store struct {
	kv     repository.KV
	ns     string
	ttl    time.Duration
	now    func() time.Time
	sealer *utils.Sealer
	log    *zap.Logger
}

type Option func(*Store)

func WithTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.ttl = d
		}
	}
}

func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

func WithSealer(sl *utils.Sealer) Option { return func(s *Store) { s.sealer = sl } }

func WithLogger(l *zap.Logger) Option { return func(s *Store) { s.log = logger.OrNop(l) } }

// New returns a store whose keys are "<namespace>:<key>".
func New(kv repository.KV, namespace string, opts ...Option) *Store {
	s := &Store{kv: kv, ns: namespace, ttl: DefaultTTL, now: time.Now, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) key(name string) string { return s.ns + ":" + name }

// Namespace is the key prefix this store writes under.
func (s *Store) Namespace() string { return s.ns }

// TTL is the freshness window.
func (s *Store) TTL() time.Duration { return s.ttl }

// Load returns the persisted session when all four parts are present and
// younger than the TTL.  A stale session is cleared.  Any storage or decode
// failure reads as absent.
func (s *Store) Load(ctx context.Context) (model.Session, bool) {
	raw := make(map[string]string, len(keyNames))
	for _, name := range keyNames {
		v, err := s.kv.Get(ctx, s.key(name))
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				s.log.Warn("session load failed", zap.String("key", name), zap.Error(err))
			}
			return model.Session{}, false
		}
		raw[name] = v
	}

	var sess model.Session
	last, err := time.Parse(time.RFC3339Nano, raw[KeyLastLoginTime])
	if err != nil {
		s.log.Warn("session has unreadable login time", zap.Error(err))
		s.Clear(ctx)
		return model.Session{}, false
	}
	sess.LastLoginTime = last

	if age := sess.Age(s.now()); age >= s.ttl {
		s.log.Info("session expired", zap.Duration("age", age))
		s.Clear(ctx)
		return model.Session{}, false
	}

	token, err := s.sealer.Open(raw[KeyAuthToken])
	if err != nil {
		s.log.Warn("session token cannot be unsealed", zap.Error(err))
		s.Clear(ctx)
		return model.Session{}, false
	}
	sess.AuthToken = token

	if err := json.Unmarshal([]byte(raw[KeyCurrentUser]), &sess.CurrentUser); err != nil {
		s.log.Warn("session user is corrupt", zap.Error(err))
		s.Clear(ctx)
		return model.Session{}, false
	}
	if err := json.Unmarshal([]byte(raw[KeyAuthContext]), &sess.AuthContext); err != nil {
		s.log.Warn("session auth context is corrupt", zap.Error(err))
		s.Clear(ctx)
		return model.Session{}, false
	}
	if !sess.Complete() {
		return model.Session{}, false
	}
	return sess, true
}

// Save writes all four parts.  Failures are logged and otherwise ignored; a
// login that cannot be persisted still succeeds for the current run.
func (s *Store) Save(ctx context.Context, sess model.Session) {
	token, err := s.sealer.Seal(sess.AuthToken)
	if err != nil {
		s.log.Warn("session token seal failed", zap.Error(err))
		return
	}
	user, err := json.Marshal(sess.CurrentUser)
	if err != nil {
		s.log.Warn("session user encode failed", zap.Error(err))
		return
	}
	authCtx, err := json.Marshal(sess.AuthContext)
	if err != nil {
		s.log.Warn("session auth context encode failed", zap.Error(err))
		return
	}
	values := map[string]string{
		KeyAuthToken:     token,
		KeyCurrentUser:   string(user),
		KeyAuthContext:   string(authCtx),
		KeyLastLoginTime: sess.LastLoginTime.UTC().Format(time.RFC3339Nano),
	}
	for _, name := range keyNames {
		if err := s.kv.Set(ctx, s.key(name), values[name], s.ttl); err != nil {
			s.log.Warn("session save failed", zap.String("key", name), zap.Error(err))
			return
		}
	}
}

// Clear removes the session keys.  Clearing an empty store is a no-op.
func (s *Store) Clear(ctx context.Context) {
	keys := make([]string, len(keyNames))
	for i, name := range keyNames {
		keys[i] = s.key(name)
	}
	if err := s.kv.Delete(ctx, keys...); err != nil {
		s.log.Warn("session clear failed", zap.Error(err))
	}
}
