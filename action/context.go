package action

// User identifies the caller for one invocation. Origin (session, API key)
// is external to this module.
type User struct {
	ID       string
	TenantID string
	Roles    []string
	Email    string
}

// Context is the ephemeral per-invocation caller context. It is never
// persisted; engines read the tenant id off it and hand it to hooks.
type Context struct {
	User *User
}

// TenantID returns the caller's tenant id, or "" when anonymous/unscoped.
func (c Context) TenantID() string {
	if c.User == nil {
		return ""
	}
	return c.User.TenantID
}
