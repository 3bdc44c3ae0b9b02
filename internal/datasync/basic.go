package datasync

import (
	"log/slog"

	"github.com/hrlink/people-sync/internal/core/datamodel/synclog"
)

// SyncMeta carries the audit attributes of one sync invocation.
type SyncMeta struct {
	SyncType string
	ActorID  int64
}

// FieldChange records one scalar field that actually changed. Field holds the
// registry's personal-side name regardless of direction.
type FieldChange struct {
	Field    string  `json:"field"`
	OldValue *string `json:"old_value"`
	NewValue *string `json:"new_value"`
}

// BasicSyncResult is the staged outcome of one basic-engine pass. Logs are
// not persisted here; the orchestrator owns the transaction boundary.
type BasicSyncResult struct {
	SyncedFields []string
	Changes      []FieldChange
	Logs         []*synclog.SyncLog
}

// BasicSyncEngine copies scalar fields between the two representations,
// one registry entry at a time. It mutates the in-memory destination only;
// persisting both the destination and the staged log rows is the caller's
// job.
type BasicSyncEngine struct {
	logger *slog.Logger
}

func NewBasicSyncEngine(logger *slog.Logger) *BasicSyncEngine {
	return &BasicSyncEngine{logger: logger}
}

// SyncPersonalToEmployee copies the target personal fields onto the employee.
// targetFields are personal-side names already intersected with consent by
// the caller.
func (e *BasicSyncEngine) SyncPersonalToEmployee(contractID int64, src BasicFieldSource, dst BasicFieldSink, targetFields []string, meta SyncMeta) (*BasicSyncResult, error) {
	result := &BasicSyncResult{}

	for _, field := range targetFields {
		employeeField, ok := EmployeeField(field)
		if !ok {
			e.logger.Warn("skipping unmapped field", "field", field, "contract_id", contractID)
			continue
		}

		srcVal, ok := src.FieldValue(field)
		if !ok {
			continue
		}
		dstVal, _ := dst.FieldValue(employeeField)

		if valuesEqual(srcVal, dstVal) {
			continue
		}

		if err := dst.SetFieldValue(employeeField, srcVal); err != nil {
			return nil, err
		}

		e.stage(result, contractID, field, dstVal, srcVal, synclog.EntityTypeEmployee, synclog.DirectionPersonalToEmployee, meta)
	}

	return result, nil
}

// SyncEmployeeToPersonal is the symmetric inverse: employee values flow back
// onto the personal profile.
func (e *BasicSyncEngine) SyncEmployeeToPersonal(contractID int64, src BasicFieldSource, dst BasicFieldSink, targetFields []string, meta SyncMeta) (*BasicSyncResult, error) {
	result := &BasicSyncResult{}

	for _, field := range targetFields {
		employeeField, ok := EmployeeField(field)
		if !ok {
			e.logger.Warn("skipping unmapped field", "field", field, "contract_id", contractID)
			continue
		}

		srcVal, ok := src.FieldValue(employeeField)
		if !ok {
			continue
		}
		dstVal, _ := dst.FieldValue(field)

		if valuesEqual(srcVal, dstVal) {
			continue
		}

		if err := dst.SetFieldValue(field, srcVal); err != nil {
			return nil, err
		}

		e.stage(result, contractID, field, dstVal, srcVal, synclog.EntityTypeProfile, synclog.DirectionEmployeeToPersonal, meta)
	}

	return result, nil
}

func (e *BasicSyncEngine) stage(result *BasicSyncResult, contractID int64, field string, oldVal, newVal interface{}, entityType, direction string, meta SyncMeta) {
	oldSerialized := SerializeValue(oldVal)
	newSerialized := SerializeValue(newVal)

	fieldName := field
	result.SyncedFields = append(result.SyncedFields, field)
	result.Changes = append(result.Changes, FieldChange{
		Field:    field,
		OldValue: oldSerialized,
		NewValue: newSerialized,
	})
	result.Logs = append(result.Logs, &synclog.SyncLog{
		ContractID: contractID,
		SyncType:   meta.SyncType,
		EntityType: entityType,
		FieldName:  &fieldName,
		OldValue:   oldSerialized,
		NewValue:   newSerialized,
		Direction:  direction,
		SyncedBy:   meta.ActorID,
	})
}
