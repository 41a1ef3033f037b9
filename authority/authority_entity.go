package authority

// Role is a fixed enumeration, ordered by privilege. It is never extended at runtime.
type Role string

const (
	RoleOwner      Role = "owner"
	RoleAdmin      Role = "admin"
	RoleEditor     Role = "editor"
	RoleConsultant Role = "consultant"
	RoleViewer     Role = "viewer"
)

// Permission is an opaque token compared by equality only.
type Permission string

type Permissions []Permission

func (c Permissions) HasPermission(perm Permission) bool {
	for _, v := range c {
		if v == perm {
			return true
		}
	}
	return false
}

func (c Permissions) HasAll(perms ...Permission) bool {
	for _, p := range perms {
		if !c.HasPermission(p) {
			return false
		}
	}
	return true
}

func (c Permissions) HasAny(perms ...Permission) bool {
	for _, p := range perms {
		if c.HasPermission(p) {
			return true
		}
	}
	return false
}

func AllRoles() []Role {
	return []Role{RoleOwner, RoleAdmin, RoleEditor, RoleConsultant, RoleViewer}
}

func IsValidRole(r Role) bool {
	for _, v := range AllRoles() {
		if v == r {
			return true
		}
	}
	return false
}
