package datasync

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hrlink/people-sync/internal"
	"github.com/hrlink/people-sync/internal/core/datamodel/contract"
	"github.com/hrlink/people-sync/internal/core/datamodel/employee"
	"github.com/hrlink/people-sync/internal/core/datamodel/profile"
	"github.com/hrlink/people-sync/internal/core/datamodel/synclog"
)

// SyncResult is the structured outcome of one sync invocation.
type SyncResult struct {
	ContractID     int64          `json:"contract_id"`
	Direction      string         `json:"direction"`
	SyncType       string         `json:"sync_type"`
	SyncedFields   []string       `json:"synced_fields"`
	Changes        []FieldChange  `json:"changes"`
	RelationCounts map[string]int `json:"relation_counts"`
	LogIDs         []int64        `json:"log_ids"`
}

// ContractSyncOutcome is one entry of a per-user sweep.
type ContractSyncOutcome struct {
	ContractID int64       `json:"contract_id"`
	Skipped    bool        `json:"skipped"`
	Reason     string      `json:"reason,omitempty"`
	Result     *SyncResult `json:"result,omitempty"`
	Error      string      `json:"error,omitempty"`
}

type UserSyncResult struct {
	PersonAccountID int64                 `json:"person_account_id"`
	Outcomes        []ContractSyncOutcome `json:"outcomes"`
}

// SyncableFields reports what a contract's settings currently authorize.
type SyncableFields struct {
	ContractID   int64               `json:"contract_id"`
	Fields       map[string][]string `json:"fields"`
	Relations    []string            `json:"relations"`
	RealtimeSync bool                `json:"realtime_sync"`
}

// Service is the sync orchestration facade. It resolves the contract,
// enforces consent, materializes the employee side when missing, delegates
// to the two engines and commits once per invocation.
type Service struct {
	store    Store
	basic    *BasicSyncEngine
	relation *RelationSyncEngine
	logger   *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		basic:    NewBasicSyncEngine(logger),
		relation: NewRelationSyncEngine(logger),
		logger:   logger,
	}
}

// GetSyncableFields reports the fields and relation groups the contract's
// current settings authorize for syncing.
func (s *Service) GetSyncableFields(ctx context.Context, contractID int64) (*SyncableFields, error) {
	c, settings, err := s.resolveApprovedContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	fields := make(map[string][]string)
	for _, group := range ScalarGroups() {
		if !settings.SharesGroup(group) {
			continue
		}
		for _, m := range FieldsForGroup(group) {
			fields[group] = append(fields[group], m.PersonalField)
		}
	}

	var relations []string
	for _, group := range RelationGroups() {
		if settings.SharesGroup(group) {
			relations = append(relations, group)
		}
	}

	return &SyncableFields{
		ContractID:   c.ID,
		Fields:       fields,
		Relations:    relations,
		RealtimeSync: settings.RealtimeSync,
	}, nil
}

// SyncPersonalToEmployee pushes the profile's authorized fields and relations
// onto the employee record. An empty targetFields means everything currently
// authorized; caller input can only narrow the set, never widen it past the
// settings.
func (s *Service) SyncPersonalToEmployee(ctx context.Context, contractID int64, targetFields []string, syncType string, actorID int64) (*SyncResult, error) {
	c, settings, err := s.resolveApprovedContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	prof, err := s.store.Profiles().GetByPersonAccountID(c.PersonAccountID)
	if err != nil {
		return nil, err
	}
	if prof == nil {
		return nil, internal.ErrProfileNotFound
	}

	scalarFields := intersectFields(authorizedScalarFields(settings), targetFields)
	relationGroups := intersectFields(authorizedRelationGroups(settings), targetFields)
	meta := SyncMeta{SyncType: syncType, ActorID: actorID}

	result := &SyncResult{
		ContractID:     c.ID,
		Direction:      synclog.DirectionPersonalToEmployee,
		SyncType:       syncType,
		SyncedFields:   []string{},
		Changes:        []FieldChange{},
		RelationCounts: map[string]int{},
	}

	err = s.store.Transaction(ctx, func(tx Store) error {
		emp, err := s.materializeEmployee(tx, c, prof)
		if err != nil {
			return err
		}

		basicResult, err := s.basic.SyncPersonalToEmployee(c.ID, prof, emp, scalarFields, meta)
		if err != nil {
			return err
		}

		relationResult, err := s.relation.SyncPersonalToEmployee(tx.Relations(), c.ID, prof, emp, relationGroups, meta)
		if err != nil {
			return err
		}

		if len(basicResult.SyncedFields) > 0 {
			if err := tx.Employees().Save(emp); err != nil {
				return err
			}
		}

		logs := append(basicResult.Logs, relationResult.Logs...)
		if len(logs) > 0 {
			if err := tx.SyncLogs().CreateBatch(logs); err != nil {
				return err
			}
		}

		result.SyncedFields = basicResult.SyncedFields
		result.Changes = basicResult.Changes
		result.RelationCounts = relationResult.SyncedCounts
		for _, l := range logs {
			result.LogIDs = append(result.LogIDs, l.ID)
		}
		return nil
	})
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("personal to employee sync failed", "error", err, "contract_id", contractID)
		return nil, internal.NewInternalError("sync failed", err)
	}

	s.logger.Info("personal to employee sync completed",
		"contract_id", c.ID,
		"sync_type", syncType,
		"changed_fields", len(result.Changes),
		"relation_groups", len(result.RelationCounts))

	return result, nil
}

// SyncEmployeeToPersonal pulls the employee's authorized fields and relations
// back onto the profile. The employee must already exist; the reverse
// direction never materializes.
func (s *Service) SyncEmployeeToPersonal(ctx context.Context, contractID int64, targetFields []string, syncType string, actorID int64) (*SyncResult, error) {
	c, settings, err := s.resolveApprovedContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	prof, err := s.store.Profiles().GetByPersonAccountID(c.PersonAccountID)
	if err != nil {
		return nil, err
	}
	if prof == nil {
		return nil, internal.ErrProfileNotFound
	}

	emp, err := s.lookupEmployee(s.store, c, prof)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, internal.ErrEmployeeNotFound
	}

	scalarFields := intersectFields(authorizedScalarFields(settings), targetFields)
	relationGroups := intersectFields(authorizedRelationGroups(settings), targetFields)
	meta := SyncMeta{SyncType: syncType, ActorID: actorID}

	result := &SyncResult{
		ContractID:     c.ID,
		Direction:      synclog.DirectionEmployeeToPersonal,
		SyncType:       syncType,
		SyncedFields:   []string{},
		Changes:        []FieldChange{},
		RelationCounts: map[string]int{},
	}

	err = s.store.Transaction(ctx, func(tx Store) error {
		basicResult, err := s.basic.SyncEmployeeToPersonal(c.ID, emp, prof, scalarFields, meta)
		if err != nil {
			return err
		}

		relationResult, err := s.relation.SyncEmployeeToPersonal(tx.Relations(), c.ID, emp, prof, relationGroups, meta)
		if err != nil {
			return err
		}

		if len(basicResult.SyncedFields) > 0 {
			if err := tx.Profiles().Save(prof); err != nil {
				return err
			}
		}

		logs := append(basicResult.Logs, relationResult.Logs...)
		if len(logs) > 0 {
			if err := tx.SyncLogs().CreateBatch(logs); err != nil {
				return err
			}
		}

		result.SyncedFields = basicResult.SyncedFields
		result.Changes = basicResult.Changes
		result.RelationCounts = relationResult.SyncedCounts
		for _, l := range logs {
			result.LogIDs = append(result.LogIDs, l.ID)
		}
		return nil
	})
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("employee to personal sync failed", "error", err, "contract_id", contractID)
		return nil, internal.NewInternalError("sync failed", err)
	}

	s.logger.Info("employee to personal sync completed",
		"contract_id", c.ID,
		"sync_type", syncType,
		"changed_fields", len(result.Changes),
		"relation_groups", len(result.RelationCounts))

	return result, nil
}

// SyncAllContractsForUser forward-syncs every approved, realtime-enabled
// contract of one person. Per-contract failures are recorded and do not stop
// the sweep.
func (s *Service) SyncAllContractsForUser(ctx context.Context, personAccountID int64, syncType string) (*UserSyncResult, error) {
	contracts, err := s.store.Contracts().GetApprovedByPerson(personAccountID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list contracts", err)
	}

	result := &UserSyncResult{PersonAccountID: personAccountID, Outcomes: []ContractSyncOutcome{}}

	for _, c := range contracts {
		settings, err := s.store.Contracts().GetSettings(c.ID)
		if err != nil || settings == nil {
			result.Outcomes = append(result.Outcomes, ContractSyncOutcome{
				ContractID: c.ID, Skipped: true, Reason: "settings missing",
			})
			continue
		}
		if !settings.RealtimeSync {
			result.Outcomes = append(result.Outcomes, ContractSyncOutcome{
				ContractID: c.ID, Skipped: true, Reason: "realtime sync disabled",
			})
			continue
		}

		syncResult, err := s.SyncPersonalToEmployee(ctx, c.ID, nil, syncType, c.PersonAccountID)
		if err != nil {
			s.logger.Error("contract sync failed during user sweep",
				"error", err, "contract_id", c.ID, "person_account_id", personAccountID)
			result.Outcomes = append(result.Outcomes, ContractSyncOutcome{
				ContractID: c.ID, Error: err.Error(),
			})
			continue
		}
		result.Outcomes = append(result.Outcomes, ContractSyncOutcome{
			ContractID: c.ID, Result: syncResult,
		})
	}

	return result, nil
}

// GetSnapshot produces a one-time, consent-filtered disclosure of the
// profile. The audit row names the disclosed top-level keys only.
func (s *Service) GetSnapshot(ctx context.Context, contractID int64, includeRelations bool, actorID int64) (map[string]interface{}, error) {
	c, settings, err := s.resolveApprovedContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	prof, err := s.store.Profiles().GetByPersonAccountID(c.PersonAccountID)
	if err != nil {
		return nil, err
	}
	if prof == nil {
		return nil, internal.ErrProfileNotFound
	}

	snapshot, keys := BuildSnapshot(prof, settings, includeRelations)

	disclosed := strings.Join(keys, ",")
	logRow := &synclog.SyncLog{
		ContractID: c.ID,
		SyncType:   synclog.SyncTypeManual,
		EntityType: synclog.EntityTypeSnapshot,
		NewValue:   &disclosed,
		Direction:  synclog.DirectionPersonalToEmployee,
		SyncedBy:   actorID,
	}
	if err := s.store.SyncLogs().CreateBatch([]*synclog.SyncLog{logRow}); err != nil {
		return nil, internal.NewInternalError("failed to record snapshot disclosure", err)
	}

	s.logger.Info("snapshot disclosed", "contract_id", c.ID, "keys", len(keys))
	return snapshot, nil
}

// ApplySnapshotToEmployee writes a previously captured snapshot's scalar
// fields onto the contract's employee, materializing it if necessary.
func (s *Service) ApplySnapshotToEmployee(ctx context.Context, contractID int64, snapshot map[string]interface{}, actorID int64) (*SyncResult, error) {
	c, _, err := s.resolveApprovedContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	prof, err := s.store.Profiles().GetByPersonAccountID(c.PersonAccountID)
	if err != nil {
		return nil, err
	}
	if prof == nil {
		return nil, internal.ErrProfileNotFound
	}

	result := &SyncResult{
		ContractID:     c.ID,
		Direction:      synclog.DirectionPersonalToEmployee,
		SyncType:       synclog.SyncTypeManual,
		SyncedFields:   []string{},
		Changes:        []FieldChange{},
		RelationCounts: map[string]int{},
	}

	err = s.store.Transaction(ctx, func(tx Store) error {
		emp, err := s.materializeEmployee(tx, c, prof)
		if err != nil {
			return err
		}

		applied, err := ApplySnapshotToEmployee(snapshot, emp)
		if err != nil {
			return internal.NewValidationError(err.Error(), internal.ErrCodeInvalidField)
		}
		if len(applied) == 0 {
			return nil
		}

		if err := tx.Employees().Save(emp); err != nil {
			return err
		}

		appliedList := strings.Join(applied, ",")
		logRow := &synclog.SyncLog{
			ContractID: c.ID,
			SyncType:   synclog.SyncTypeManual,
			EntityType: synclog.EntityTypeSnapshot,
			NewValue:   &appliedList,
			Direction:  synclog.DirectionPersonalToEmployee,
			SyncedBy:   actorID,
		}
		if err := tx.SyncLogs().CreateBatch([]*synclog.SyncLog{logRow}); err != nil {
			return err
		}

		result.SyncedFields = applied
		result.LogIDs = append(result.LogIDs, logRow.ID)
		return nil
	})
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		return nil, internal.NewInternalError("failed to apply snapshot", err)
	}

	return result, nil
}

// GetSyncLogs returns the audit trail of one contract, newest first.
func (s *Service) GetSyncLogs(ctx context.Context, contractID int64, limit, offset int) ([]*synclog.SyncLog, error) {
	if _, err := s.resolveContract(ctx, contractID); err != nil {
		return nil, err
	}
	logs, err := s.store.SyncLogs().ListByContract(contractID, limit, offset)
	if err != nil {
		return nil, internal.NewInternalError("failed to list sync logs", err)
	}
	return logs, nil
}

// resolveContract loads the contract and refuses action for a caller that is
// authenticated as a different person account. Ownership enforcement proper
// lives upstream; this is the last line.
func (s *Service) resolveContract(ctx context.Context, contractID int64) (*contract.Contract, error) {
	c, err := s.store.Contracts().GetByID(contractID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load contract", err)
	}
	if c == nil {
		return nil, internal.ErrContractNotFound
	}
	if actor := internal.AccountIDFromContext(ctx); actor != 0 && actor != c.PersonAccountID {
		return nil, internal.ErrContractNotOwned
	}
	return c, nil
}

func (s *Service) resolveApprovedContract(ctx context.Context, contractID int64) (*contract.Contract, *contract.DataSharingSettings, error) {
	c, err := s.resolveContract(ctx, contractID)
	if err != nil {
		return nil, nil, err
	}
	if !c.IsApproved() {
		return nil, nil, internal.ErrContractNotApproved
	}

	settings, err := s.store.Contracts().GetSettings(c.ID)
	if err != nil {
		return nil, nil, internal.NewInternalError("failed to load sharing settings", err)
	}
	if settings == nil {
		return nil, nil, internal.ErrSettingsNotFound
	}
	return c, settings, nil
}

// lookupEmployee resolves the employee side without creating it: by the
// contract's employee number first, then by the (name, company) heuristic.
func (s *Service) lookupEmployee(store Store, c *contract.Contract, prof *profile.PersonalProfile) (*employee.Employee, error) {
	if c.EmployeeNumber != nil && *c.EmployeeNumber != "" {
		emp, err := store.Employees().GetByNumber(c.CompanyID, *c.EmployeeNumber)
		if err != nil {
			return nil, internal.NewInternalError("failed to look up employee", err)
		}
		if emp != nil {
			return emp, nil
		}
	}

	emp, err := store.Employees().FindByName(c.CompanyID, prof.LastName, prof.FirstName)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up employee", err)
	}
	return emp, nil
}

// materializeEmployee resolves the employee side, creating it from a
// full-field profile copy when nothing matches. This is the only path that
// mutates the contract's employee number after creation.
func (s *Service) materializeEmployee(tx Store, c *contract.Contract, prof *profile.PersonalProfile) (*employee.Employee, error) {
	emp, err := s.lookupEmployee(tx, c, prof)
	if err != nil {
		return nil, err
	}

	if emp != nil {
		if emp.EmployeeNumber == "" {
			number, err := s.nextEmployeeNumber(tx, c.CompanyID)
			if err != nil {
				return nil, err
			}
			emp.EmployeeNumber = number
			if err := tx.Employees().Save(emp); err != nil {
				return nil, internal.NewInternalError("failed to assign employee number", err)
			}
		}
		if c.EmployeeNumber == nil || *c.EmployeeNumber != emp.EmployeeNumber {
			if err := tx.Contracts().SetEmployeeNumber(c.ID, emp.EmployeeNumber); err != nil {
				return nil, internal.NewInternalError("failed to link employee number", err)
			}
			num := emp.EmployeeNumber
			c.EmployeeNumber = &num
		}
		return emp, nil
	}

	number, err := s.nextEmployeeNumber(tx, c.CompanyID)
	if err != nil {
		return nil, err
	}

	emp = &employee.Employee{
		CompanyID:       c.CompanyID,
		PersonAccountID: &c.PersonAccountID,
		EmployeeNumber:  number,
		Status:          employee.StatusPreActive,
		Position:        c.Position,
		Department:      c.Department,
	}
	for _, m := range fieldMappings {
		value, ok := prof.FieldValue(m.PersonalField)
		if !ok {
			continue
		}
		if err := emp.SetFieldValue(m.EmployeeField, value); err != nil {
			return nil, internal.NewInternalError(fmt.Sprintf("failed to copy field %s", m.PersonalField), err)
		}
	}

	if err := tx.Employees().Create(emp); err != nil {
		return nil, internal.NewInternalError("failed to materialize employee", err).WithDetails(internal.ErrCodeMaterializeFailed)
	}
	if err := tx.Contracts().SetEmployeeNumber(c.ID, number); err != nil {
		return nil, internal.NewInternalError("failed to link employee number", err)
	}
	c.EmployeeNumber = &number

	s.logger.Info("materialized employee from profile",
		"contract_id", c.ID,
		"company_id", c.CompanyID,
		"employee_number", number)

	return emp, nil
}

func (s *Service) nextEmployeeNumber(tx Store, companyID int64) (string, error) {
	year := time.Now().Year()
	seq, err := tx.Employees().NextSequence(companyID, year)
	if err != nil {
		return "", internal.NewInternalError("failed to allocate employee number", err)
	}
	return fmt.Sprintf("EMP-%d-%04d", year, seq), nil
}

func authorizedScalarFields(settings *contract.DataSharingSettings) []string {
	var fields []string
	for _, group := range ScalarGroups() {
		if !settings.SharesGroup(group) {
			continue
		}
		for _, m := range FieldsForGroup(group) {
			fields = append(fields, m.PersonalField)
		}
	}
	return fields
}

func authorizedRelationGroups(settings *contract.DataSharingSettings) []string {
	var groups []string
	for _, group := range RelationGroups() {
		if settings.SharesGroup(group) {
			groups = append(groups, group)
		}
	}
	return groups
}

// intersectFields narrows the authorized set by the caller's request. An
// empty request means everything authorized; an entry outside the authorized
// set is silently dropped, so callers cannot widen their grant.
func intersectFields(authorized, requested []string) []string {
	if len(requested) == 0 {
		return authorized
	}
	allowed := make(map[string]struct{}, len(authorized))
	for _, f := range authorized {
		allowed[f] = struct{}{}
	}
	var out []string
	for _, f := range requested {
		if _, ok := allowed[f]; ok {
			out = append(out, f)
		}
	}
	return out
}
