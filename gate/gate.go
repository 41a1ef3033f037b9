package gate

import (
	"signoff/audit"
	"signoff/authority"
	"signoff/bizerror"
	"signoff/persistence"
	"signoff/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

type Mode string

const (
	Any Mode = "ANY"
	All Mode = "ALL"
)

// Decision carries the freshly resolved role and its full permission set, so
// the calling handler can make finer-grained ownership decisions without
// another identity store round trip.
type Decision struct {
	Role  authority.Role        `json:"role"`
	Perms authority.Permissions `json:"perms"`
}

var (
	AuthorizeFunc = Authorize

	// LoadRoleFunc resolves the actor's current role from the identity store.
	// Wired to account.LoadUserRole at bootstrap; the gate never trusts the
	// role cached in the session or embedded in a request payload.
	LoadRoleFunc func(uid types.ID) (authority.Role, error)
)

// Authorize gates one privileged action. A denial is itself a security-relevant
// event: it is written to the audit trail before the caller sees the error.
func Authorize(s *session.Session, action string, required authority.Permissions, mode Mode) (*Decision, error) {
	if s == nil || s.Identity.ID.IsZero() {
		return nil, bizerror.ErrUnauthenticated
	}
	if len(required) == 0 {
		return nil, bizerror.ErrInvalidArguments
	}

	role, err := LoadRoleFunc(s.Identity.ID)
	if err != nil {
		// identity store failures pass through as-is: the caller must be able
		// to tell an unavailable store apart from a legitimate denial
		return nil, err
	}

	perms := authority.PermissionsOf(role)
	var permitted bool
	if mode == Any {
		permitted = perms.HasAny(required...)
	} else {
		permitted = perms.HasAll(required...)
	}

	if !permitted {
		if err := RecordForbidden(s, role, action, audit.Properties{
			"requiredPermissions": permissionStrings(required),
			"mode":                string(mode),
		}); err != nil {
			return nil, err
		}
		return nil, &bizerror.ErrMissingPermission{
			Action: action, Required: permissionStrings(required), Mode: string(mode),
		}
	}

	return &Decision{Role: role, Perms: perms}, nil
}

// RecordForbidden writes the warning trail entry every denial must leave,
// whether the denial came from the permission matrix or from a finer check a
// manager makes after the gate permitted (party identity, role reach). It runs
// in its own transaction: the denial record must survive the caller's rollback.
func RecordForbidden(s *session.Session, role authority.Role, action string, metadata audit.Properties) error {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	return db.Transaction(func(tx *gorm.DB) error {
		_, err := audit.Record(audit.Recording{
			Action:   action,
			Severity: audit.SeverityWarning,
			Metadata: metadata,
		}, &s.Identity, role, tx)
		return err
	})
}

func permissionStrings(perms authority.Permissions) []string {
	r := make([]string, 0, len(perms))
	for _, p := range perms {
		r = append(r, string(p))
	}
	return r
}
