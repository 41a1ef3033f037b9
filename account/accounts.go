package account

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"

	"signoff/audit"
	"signoff/authority"
	"signoff/bizerror"
	"signoff/gate"
	"signoff/idgen"
	"signoff/persistence"
	"signoff/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	userIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	LoadUserRoleFunc = LoadUserRole

	QueryUsersFunc            = QueryUsers
	CreateUserFunc            = CreateUser
	UpdateUserRoleFunc        = UpdateUserRole
	UpdateBasicAuthSecretFunc = UpdateBasicAuthSecret
)

// LoadUserRole reads the actor's current role from the users table. This is
// the check-time role read the gate depends on.
func LoadUserRole(uid types.ID) (authority.Role, error) {
	user := User{}
	db := persistence.ActiveDataSourceManager.GormDB(context.TODO())
	if err := db.Model(&User{}).Where(&User{ID: uid}).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", bizerror.ErrUnauthenticated
		}
		return "", err
	}
	return user.Role, nil
}

// DefaultSecurityConfiguration seeds the initial owner account when the users
// table is still empty.
func DefaultSecurityConfiguration() error {
	db := persistence.ActiveDataSourceManager.GormDB(context.TODO())
	return db.Transaction(func(tx *gorm.DB) error {
		owner := User{}
		err := tx.Model(&User{}).Where(&User{ID: 1}).First(&owner).Error
		if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
			initialOwnerPassword := os.Getenv("INITIAL_OWNER_PASSWORD")
			if initialOwnerPassword == "" {
				initialOwnerPassword = "owner123"
			}
			return tx.Save(&User{ID: 1, Name: "owner", Secret: HashSha256(initialOwnerPassword),
				Role: authority.RoleOwner}).Error
		}
		return err
	})
}

func QueryUsers(s *session.Session) ([]UserInfo, error) {
	if _, err := gate.AuthorizeFunc(s, "users.query",
		authority.Permissions{authority.UsersView}, gate.All); err != nil {
		return nil, err
	}

	var users []UserInfo
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Model(&User{}).Scan(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func CreateUser(creation *UserCreation, s *session.Session) (*UserInfo, error) {
	decision, err := gate.AuthorizeFunc(s, "users.create",
		authority.Permissions{authority.UsersCreate}, gate.All)
	if err != nil {
		return nil, err
	}
	if !authority.IsValidRole(creation.Role) {
		return nil, bizerror.ErrInvalidRole
	}
	if !authority.CanManage(decision.Role, creation.Role) {
		if err := gate.RecordForbidden(s, decision.Role, "users.create", audit.Properties{
			"reason": "role_out_of_reach", "targetRole": string(creation.Role),
		}); err != nil {
			return nil, err
		}
		return nil, bizerror.ErrForbidden
	}

	user := User{ID: idgen.NextID(userIdWorker), Name: creation.Name,
		Secret: HashSha256(creation.Secret), Nickname: creation.Nickname, Role: creation.Role}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if persistence.IsDuplicateEntryError(err) {
				return bizerror.ErrUserNameExisted
			}
			return err
		}
		_, err := audit.Record(audit.Recording{
			Action: "users.create", EntityType: "user", EntityID: user.ID,
			NewValue: audit.Properties{"name": user.Name, "role": string(user.Role)},
		}, &s.Identity, decision.Role, tx)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	return &UserInfo{ID: user.ID, Name: user.Name, Nickname: user.Nickname, Role: user.Role}, nil
}

// UpdateUserRole changes one user's role. The actor must be able to manage
// both the role the target currently holds and the role being assigned, which
// keeps the owner rule airtight and rules out elevation beyond the actor's
// own reach.
func UpdateUserRole(uid types.ID, updating *RoleUpdating, s *session.Session) error {
	decision, err := gate.AuthorizeFunc(s, "users.update_role",
		authority.Permissions{authority.UsersManageRoles}, gate.All)
	if err != nil {
		return err
	}
	if !authority.IsValidRole(updating.Role) {
		return bizerror.ErrInvalidRole
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	return db.Transaction(func(tx *gorm.DB) error {
		user := User{}
		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			Model(&User{}).Where(&User{ID: uid}).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}
		if !authority.CanManage(decision.Role, user.Role) || !authority.CanManage(decision.Role, updating.Role) {
			if err := gate.RecordForbidden(s, decision.Role, "users.update_role", audit.Properties{
				"reason": "role_out_of_reach", "targetUserId": uid.String(),
				"targetRole": string(user.Role), "requestedRole": string(updating.Role),
			}); err != nil {
				return err
			}
			return bizerror.ErrForbidden
		}
		if user.Role == updating.Role {
			return nil
		}

		oldRole := user.Role
		if err := tx.Model(&User{}).Where(&User{ID: uid}).
			Update("role", updating.Role).Error; err != nil {
			return err
		}

		_, err := audit.Record(audit.Recording{
			Action: "users.update_role", EntityType: "user", EntityID: uid,
			OldValue: audit.Properties{"role": string(oldRole)},
			NewValue: audit.Properties{"role": string(updating.Role)},
			Severity: audit.SeverityCritical,
		}, &s.Identity, decision.Role, tx)
		return err
	})
}

func UpdateBasicAuthSecret(updating *BasicAuthUpdating, s *session.Session) error {
	if s == nil || s.Identity.ID.IsZero() {
		return bizerror.ErrUnauthenticated
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	return db.Transaction(func(tx *gorm.DB) error {
		user := User{}
		if err := tx.Model(&User{}).Where(&User{ID: s.Identity.ID}).First(&user).Error; err != nil {
			return err
		}
		if user.Secret != HashSha256(updating.OriginalSecret) {
			if err := gate.RecordForbidden(s, user.Role, "users.update_secret", audit.Properties{
				"reason": "secret_mismatch",
			}); err != nil {
				return err
			}
			return bizerror.ErrForbidden
		}
		return tx.Model(&User{}).Where(&User{ID: s.Identity.ID}).
			Update("secret", HashSha256(updating.NewSecret)).Error
	})
}

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}
