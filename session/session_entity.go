package session

import (
	"context"
	"time"

	"signoff/authority"

	"github.com/fundwit/go-commons/types"
)

// Session is the resolved actor of a request. It is passed explicitly into
// every manager call; there is no ambient "current user".
type Session struct {
	Token    string   `json:"token"`
	Identity Identity `json:"identity"`

	// Role and Perms are a login-time snapshot used for display and coarse
	// routing. The authorization gate re-reads the role at check-time and
	// never trusts these fields.
	Role  authority.Role        `json:"role"`
	Perms authority.Permissions `json:"perms"`

	SigningTime time.Time `json:"-"`

	Context context.Context `json:"-"`
}

type Identity struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
}

func (s *Session) Clone() Session {
	c := *s
	perms := make(authority.Permissions, len(s.Perms))
	copy(perms, s.Perms)
	c.Perms = perms
	return c
}

func (u Identity) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Name
}
