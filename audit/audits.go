package audit

import (
	"signoff/authority"
	"signoff/idgen"
	"signoff/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	auditIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	AuditPersistCreateFunc = auditPersistCreate
)

// Recording is the content of one trail entry, before attribution is attached.
type Recording struct {
	Action     string
	EntityType string
	EntityID   types.ID

	OldValue Properties
	NewValue Properties
	Metadata Properties

	Severity Severity
}

// Record appends one entry to the trail, inside the caller's transaction when
// the caller passes its tx. It is always invoked synchronously by the component
// performing the privileged action, so a failed write surfaces to that caller.
func Record(r Recording, identity *session.Identity, role authority.Role, db *gorm.DB) (*Entry, error) {
	entry := Entry{
		ID: idgen.NextID(auditIdWorker),

		ActorID:   identity.ID,
		ActorName: identity.DisplayName(),
		ActorRole: role,

		Action:     r.Action,
		EntityType: r.EntityType,
		EntityID:   r.EntityID,

		OldValue: r.OldValue,
		NewValue: r.NewValue,
		Metadata: r.Metadata,

		Severity:   r.Severity,
		CreateTime: types.CurrentTimestamp(),
	}
	if entry.Severity == "" {
		entry.Severity = SeverityInfo
	}
	if err := AuditPersistCreateFunc(&entry, db); err != nil {
		return nil, err
	}
	return &entry, nil
}

func auditPersistCreate(entry *Entry, db *gorm.DB) error {
	return db.Create(entry).Error
}
