package cache

import (
	"strings"
	"sync"

	"dockboard/models"
)

// UserCache caches users by email.
type UserCache struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewUserCache() *UserCache {
	return &UserCache{users: make(map[string]models.User)}
}

func (c *UserCache) Add(email string, user models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[normalizeEmail(email)] = user
}

func (c *UserCache) Get(email string) (models.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.users[normalizeEmail(email)]
	return u, ok
}

func (c *UserCache) Delete(email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.users, normalizeEmail(email))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
