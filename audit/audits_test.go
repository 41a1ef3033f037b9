package audit

import (
	"signoff/authority"
	"signoff/session"
	"signoff/testinfra"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
)

var (
	testDatabase *testinfra.TestDatabase
)

func setup(t *testing.T) {
	testDatabase = testinfra.StartMysqlTestDatabase("signoff")
	assert.Nil(t, testDatabase.DS.GormDB(nil).AutoMigrate(&Entry{}).Error)
}
func teardown(t *testing.T) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
}

func TestRecord(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should persist one attributable entry", func(t *testing.T) {
		setup(t)
		defer teardown(t)

		identity := session.Identity{ID: 333, Name: "user333", Nickname: "nick333"}
		entry, err := Record(Recording{
			Action: "content.approve", EntityType: "content_submission", EntityID: 1234,
			OldValue: Properties{"status": "pending"},
			NewValue: Properties{"status": "approved"},
			Metadata: Properties{"contentType": "article", "contentId": "5678"},
			Severity: SeverityInfo,
		}, &identity, authority.RoleAdmin, testDatabase.DS.GormDB(nil))
		assert.Nil(t, err)
		assert.NotNil(t, entry)

		// assert records in tables
		records := []Entry{}
		Expect(testDatabase.DS.GormDB(nil).Model(&Entry{}).Find(&records).Error).To(BeNil())
		Expect(len(records)).To(Equal(1))
		Expect(records[0].ID).To(Equal(entry.ID))
		Expect(records[0].ActorID).To(Equal(identity.ID))
		Expect(records[0].ActorName).To(Equal("nick333"))
		Expect(records[0].ActorRole).To(Equal(authority.RoleAdmin))
		Expect(records[0].Action).To(Equal("content.approve"))
		Expect(records[0].OldValue).To(Equal(Properties{"status": "pending"}))
		Expect(records[0].NewValue).To(Equal(Properties{"status": "approved"}))
		Expect(records[0].Severity).To(Equal(SeverityInfo))
		Expect(records[0].CreateTime.IsZero()).To(BeFalse())
	})

	t.Run("severity should default to info", func(t *testing.T) {
		setup(t)
		defer teardown(t)

		identity := session.Identity{ID: 1, Name: "user1"}
		entry, err := Record(Recording{Action: "contracts.create", EntityType: "contract", EntityID: 1},
			&identity, authority.RoleOwner, testDatabase.DS.GormDB(nil))
		assert.Nil(t, err)
		Expect(entry.Severity).To(Equal(SeverityInfo))
		Expect(entry.ActorName).To(Equal("user1"))
	})

	t.Run("persist failures should surface to the caller", func(t *testing.T) {
		setup(t)
		defer teardown(t)

		testDatabase.DS.GormDB(nil).DropTable(&Entry{})

		identity := session.Identity{ID: 1, Name: "user1"}
		entry, err := Record(Recording{Action: "contracts.create", EntityType: "contract", EntityID: 1},
			&identity, authority.RoleOwner, testDatabase.DS.GormDB(nil))
		Expect(entry).To(BeNil())
		Expect(err).ToNot(BeNil())
	})
}
