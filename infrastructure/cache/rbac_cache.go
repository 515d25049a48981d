package cache

import (
	"maps"
	"slices"
	"sync"
)

// Resource is one route a role may call, named by a permission code that
// views check through Session.ScreenPermissions.
type Resource struct {
	UserResourceCode string
	Path             string
	Method           string
	Role             string
}

type grantKey struct {
	code, method, path string
}

// RbacRolesCache holds the route grants of every role. Registering the same
// grant twice for a role is a no-op.
type RbacRolesCache struct {
	mu     sync.RWMutex
	grants map[string][]Resource
	seen   map[string]map[grantKey]struct{}
	codes  map[string]struct{}
}

func NewRbacRolesCache() *RbacRolesCache {
	return &RbacRolesCache{
		grants: make(map[string][]Resource),
		seen:   make(map[string]map[grantKey]struct{}),
		codes:  make(map[string]struct{}),
	}
}

func (c *RbacRolesCache) Add(role string, r Resource) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := grantKey{code: r.UserResourceCode, method: r.Method, path: r.Path}
	if c.seen[role] == nil {
		c.seen[role] = make(map[grantKey]struct{})
	}
	if _, dup := c.seen[role][k]; dup {
		return
	}
	c.seen[role][k] = struct{}{}
	r.Role = role
	c.grants[role] = append(c.grants[role], r)
	c.codes[r.UserResourceCode] = struct{}{}
}

// GetRolesAndResources returns the grants of all given roles.
func (c *RbacRolesCache) GetRolesAndResources(roles []string) []Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Resource
	for _, role := range slices.Compact(slices.Sorted(slices.Values(roles))) {
		out = append(out, c.grants[role]...)
	}
	return out
}

// Permissions returns the permission codes reachable by roles, nil when the
// roles grant nothing.
func (c *RbacRolesCache) Permissions(roles []string) map[string]int {
	resources := c.GetRolesAndResources(roles)
	if len(resources) == 0 {
		return nil
	}
	out := make(map[string]int, len(resources))
	for _, res := range resources {
		out[res.UserResourceCode] = 1
	}
	return out
}

// GetAllRouteNames returns every registered permission code; admins get this set.
func (c *RbacRolesCache) GetAllRouteNames() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]int, len(c.codes))
	for code := range c.codes {
		out[code] = 1
	}
	return out
}

// RouteNamesSorted lists the permission codes alphabetically.
func (c *RbacRolesCache) RouteNamesSorted() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.codes))
}
