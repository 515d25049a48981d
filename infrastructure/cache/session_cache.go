package cache

import (
	"sync"
	"time"

	"dockboard/models"
)

// UserSessionCache keeps signed-in sessions in memory, keyed by cookie token,
// so board requests skip the sessions table.
type UserSessionCache struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

func NewUserSessionCache() *UserSessionCache {
	return &UserSessionCache{sessions: make(map[string]models.Session)}
}

func (c *UserSessionCache) AddSession(s models.Session) {
	c.mu.Lock()
	c.sessions[s.ID] = s
	c.mu.Unlock()
}

func (c *UserSessionCache) FindSessionBySessionToken(token string) (models.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sessions[token]
	return s, ok
}

func (c *UserSessionCache) DeleteSessionBySessionToken(token string) {
	c.mu.Lock()
	delete(c.sessions, token)
	c.mu.Unlock()
}

// DeleteSessionsByUserID drops every cached session of a user, so role and
// account changes apply on the next request.
func (c *UserSessionCache) DeleteSessionsByUserID(userID int64) int {
	return c.deleteWhere(func(s models.Session) bool { return s.UserID == userID })
}

// DeleteExpired drops sessions whose expiry is before now.
func (c *UserSessionCache) DeleteExpired(now time.Time) int {
	return c.deleteWhere(func(s models.Session) bool { return s.ExpiresAt.Before(now) })
}

// Len is the number of cached sessions.
func (c *UserSessionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

func (c *UserSessionCache) deleteWhere(match func(models.Session) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for token, s := range c.sessions {
		if match(s) {
			delete(c.sessions, token)
			n++
		}
	}
	return n
}
