package datasync

import (
	"context"

	"github.com/hrlink/people-sync/internal/core/datamodel/contract"
	"github.com/hrlink/people-sync/internal/core/datamodel/employee"
	"github.com/hrlink/people-sync/internal/core/datamodel/profile"
	"github.com/hrlink/people-sync/internal/core/datamodel/synclog"
)

// ContractRepository is the slice of contract persistence the sync engine
// needs. SetEmployeeNumber exists only for the materialization path; nothing
// else may touch that column after contract creation.
type ContractRepository interface {
	GetByID(id int64) (*contract.Contract, error)
	GetApprovedByPerson(personAccountID int64) ([]*contract.Contract, error)
	GetSettings(contractID int64) (*contract.DataSharingSettings, error)
	SetEmployeeNumber(contractID int64, number string) error
}

type ProfileRepository interface {
	// GetByPersonAccountID loads the profile with all relation collections.
	GetByPersonAccountID(personAccountID int64) (*profile.PersonalProfile, error)
	Save(p *profile.PersonalProfile) error
}

type EmployeeRepository interface {
	// GetByNumber and FindByName load the employee with all relation
	// collections; both return nil without error when no row matches.
	GetByNumber(companyID int64, employeeNumber string) (*employee.Employee, error)
	FindByName(companyID int64, familyName, givenName string) (*employee.Employee, error)
	Create(e *employee.Employee) error
	Save(e *employee.Employee) error
	// NextSequence returns the next free sequence for EMP-{year}-{seq}
	// numbers within one company.
	NextSequence(companyID int64, year int) (int, error)
}

type SyncLogRepository interface {
	CreateBatch(logs []*synclog.SyncLog) error
	ListByContract(contractID int64, limit, offset int) ([]*synclog.SyncLog, error)
}

// Store bundles the repositories behind one transaction boundary. Transaction
// yields a store whose repositories share a single database transaction; the
// orchestrator opens exactly one per sync invocation.
type Store interface {
	Contracts() ContractRepository
	Profiles() ProfileRepository
	Employees() EmployeeRepository
	SyncLogs() SyncLogRepository
	Relations() RelationStore
	Transaction(ctx context.Context, fn func(Store) error) error
}
