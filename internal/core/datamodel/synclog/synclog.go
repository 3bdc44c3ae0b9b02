package synclog

import "time"

const (
	SyncTypeAuto    = "auto"
	SyncTypeManual  = "manual"
	SyncTypeInitial = "initial"

	DirectionPersonalToEmployee = "personal_to_employee"
	DirectionEmployeeToPersonal = "employee_to_personal"

	EntityTypeEmployee = "employee"
	EntityTypeProfile  = "personal_profile"
	EntityTypeSnapshot = "snapshot"
)

// SyncLog is the append-only audit row: one per changed scalar field, or one
// per relation batch (FieldName nil, NewValue holding a record count). Rows
// are never mutated; only the bulk retention purge removes them.
type SyncLog struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	ContractID int64     `json:"contract_id" gorm:"column:contract_id;not null;index"`
	SyncType   string    `json:"sync_type" gorm:"column:sync_type"`
	EntityType string    `json:"entity_type" gorm:"column:entity_type"`
	FieldName  *string   `json:"field_name,omitempty" gorm:"column:field_name"`
	OldValue   *string   `json:"old_value,omitempty" gorm:"column:old_value"`
	NewValue   *string   `json:"new_value,omitempty" gorm:"column:new_value"`
	Direction  string    `json:"direction" gorm:"column:direction"`
	SyncedBy   int64     `json:"synced_by" gorm:"column:synced_by"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at"`
}

func (SyncLog) TableName() string {
	return "sync_logs"
}
