package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	echosession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// MemoryStorage keeps the two session keys in a map. It is safe for
// concurrent use.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
	writes int
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Load() (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Session{Token: m.values[KeyToken], Role: m.values[KeyRole]}, nil
}

func (m *MemoryStorage) Save(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[KeyToken] = s.Token
	m.values[KeyRole] = s.Role
	m.writes++
	return nil
}

func (m *MemoryStorage) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, KeyToken)
	delete(m.values, KeyRole)
	m.writes++
	return nil
}

// Writes returns how many times Save or Clear was called.
func (m *MemoryStorage) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// CookieStorage stores the session in a signed cookie through the
// echo-contrib session middleware, which must be installed.
type CookieStorage struct {
	c    echo.Context
	name string
}

// NewCookieStorage binds storage to the cookie session called name.
func NewCookieStorage(c echo.Context, name string) *CookieStorage {
	return &CookieStorage{c: c, name: name}
}

func (s *CookieStorage) Load() (Session, error) {
	sess, err := echosession.Get(s.name, s.c)
	if err != nil {
		// An undecodable cookie (rotated secret, tampering) is an empty session.
		return Session{}, nil
	}
	token, _ := sess.Values[KeyToken].(string)
	role, _ := sess.Values[KeyRole].(string)
	return Session{Token: token, Role: role}, nil
}

func (s *CookieStorage) Save(v Session) error {
	sess, err := echosession.Get(s.name, s.c)
	if err != nil && sess == nil {
		return fmt.Errorf("auth: load cookie session: %w", err)
	}
	sess.Values[KeyToken] = v.Token
	sess.Values[KeyRole] = v.Role
	return sess.Save(s.c.Request(), s.c.Response())
}

func (s *CookieStorage) Clear() error {
	sess, err := echosession.Get(s.name, s.c)
	if err != nil && sess == nil {
		return fmt.Errorf("auth: load cookie session: %w", err)
	}
	delete(sess.Values, KeyToken)
	delete(sess.Values, KeyRole)
	sess.Options.MaxAge = -1
	return sess.Save(s.c.Request(), s.c.Response())
}

const sidKey = "sid"

// RedisStorage keeps the token and role in a Redis hash. The cookie only
// carries an opaque session id.
type RedisStorage struct {
	c      echo.Context
	rdb    *redis.Client
	name   string
	prefix string
	ttl    time.Duration
}

// NewRedisStorage binds Redis-backed storage to the cookie session called
// name. Keys expire after ttl.
func NewRedisStorage(c echo.Context, rdb *redis.Client, name string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{c: c, rdb: rdb, name: name, prefix: "pubadmin:session:", ttl: ttl}
}

func (s *RedisStorage) ctx() context.Context {
	return s.c.Request().Context()
}

func (s *RedisStorage) cookie() (*sessions.Session, error) {
	sess, err := echosession.Get(s.name, s.c)
	if err != nil && sess == nil {
		return nil, fmt.Errorf("auth: load cookie session: %w", err)
	}
	return sess, nil
}

func (s *RedisStorage) Load() (Session, error) {
	sess, err := s.cookie()
	if err != nil {
		return Session{}, nil
	}
	sid, _ := sess.Values[sidKey].(string)
	if sid == "" {
		return Session{}, nil
	}
	vals, err := s.rdb.HGetAll(s.ctx(), s.prefix+sid).Result()
	if err != nil {
		return Session{}, fmt.Errorf("auth: load redis session: %w", err)
	}
	return Session{Token: vals[KeyToken], Role: vals[KeyRole]}, nil
}

func (s *RedisStorage) Save(v Session) error {
	sess, err := s.cookie()
	if err != nil {
		return err
	}
	sid := uuid.NewString()
	key := s.prefix + sid
	pipe := s.rdb.TxPipeline()
	pipe.HSet(s.ctx(), key, KeyToken, v.Token, KeyRole, v.Role)
	pipe.Expire(s.ctx(), key, s.ttl)
	if _, err := pipe.Exec(s.ctx()); err != nil {
		return fmt.Errorf("auth: save redis session: %w", err)
	}
	if old, _ := sess.Values[sidKey].(string); old != "" {
		_ = s.rdb.Del(s.ctx(), s.prefix+old).Err()
	}
	sess.Values[sidKey] = sid
	return sess.Save(s.c.Request(), s.c.Response())
}

func (s *RedisStorage) Clear() error {
	sess, err := s.cookie()
	if err != nil {
		return err
	}
	if sid, _ := sess.Values[sidKey].(string); sid != "" {
		if err := s.rdb.Del(s.ctx(), s.prefix+sid).Err(); err != nil {
			return fmt.Errorf("auth: clear redis session: %w", err)
		}
	}
	delete(sess.Values, sidKey)
	sess.Options.MaxAge = -1
	return sess.Save(s.c.Request(), s.c.Response())
}

// NewCookieStore returns the gorilla cookie store used by the session
// middleware.
func NewCookieStore(secret string, secure bool, maxAge int) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   maxAge,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	}
	return store
}
