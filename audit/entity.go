package audit

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"signoff/authority"

	"github.com/fundwit/go-commons/types"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Properties is a free-form bag persisted as a JSON text column.
type Properties map[string]interface{}

// Entry is append-only: it is never updated or deleted once written.
type Entry struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	ActorID   types.ID       `json:"actorId"`
	ActorName string         `json:"actorName"`
	ActorRole authority.Role `json:"actorRole"` // role held at action time, not a lookup

	Action     string   `json:"action"` // namespaced, e.g. "content.approve"
	EntityType string   `json:"entityType"`
	EntityID   types.ID `json:"entityId"`

	OldValue Properties `json:"oldValue" sql:"type:TEXT"`
	NewValue Properties `json:"newValue" sql:"type:TEXT"`
	Metadata Properties `json:"metadata" sql:"type:TEXT"`

	Severity Severity `json:"severity"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

func (r *Entry) TableName() string {
	return "audit_entries"
}

func (t Properties) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (c *Properties) Scan(v interface{}) error {
	if v == nil {
		return nil
	}
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	return json.Unmarshal([]byte(jsonString), c)
}
