package datasync_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hrlink/people-sync/internal"
	"github.com/hrlink/people-sync/internal/core/datamodel/contract"
	"github.com/hrlink/people-sync/internal/core/datamodel/employee"
	"github.com/hrlink/people-sync/internal/core/datamodel/profile"
	"github.com/hrlink/people-sync/internal/core/datamodel/synclog"
	"github.com/hrlink/people-sync/internal/datasync"
)

// Mock repositories backing the sync store
type mockContractRepo struct {
	contracts map[int64]*contract.Contract
	settings  map[int64]*contract.DataSharingSettings

	linkedNumbers map[int64]string

	getError      error
	settingsError error
}

func (m *mockContractRepo) GetByID(id int64) (*contract.Contract, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	return m.contracts[id], nil
}

func (m *mockContractRepo) GetApprovedByPerson(personAccountID int64) ([]*contract.Contract, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	var out []*contract.Contract
	for _, c := range m.contracts {
		if c.PersonAccountID == personAccountID && c.Status == contract.StatusApproved {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockContractRepo) GetSettings(contractID int64) (*contract.DataSharingSettings, error) {
	if m.settingsError != nil {
		return nil, m.settingsError
	}
	return m.settings[contractID], nil
}

func (m *mockContractRepo) SetEmployeeNumber(contractID int64, number string) error {
	if m.linkedNumbers == nil {
		m.linkedNumbers = make(map[int64]string)
	}
	m.linkedNumbers[contractID] = number
	return nil
}

type mockProfileRepo struct {
	profiles map[int64]*profile.PersonalProfile

	getError  error
	saveError error
	saveCalls int
}

func (m *mockProfileRepo) GetByPersonAccountID(personAccountID int64) (*profile.PersonalProfile, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	return m.profiles[personAccountID], nil
}

func (m *mockProfileRepo) Save(p *profile.PersonalProfile) error {
	if m.saveError != nil {
		return m.saveError
	}
	m.saveCalls++
	m.profiles[p.PersonAccountID] = p
	return nil
}

type mockEmployeeRepo struct {
	employees map[int64]*employee.Employee
	nextID    int64
	sequence  int

	createError error
	saveError   error
	created     []*employee.Employee
	saveCalls   int
}

func (m *mockEmployeeRepo) GetByNumber(companyID int64, employeeNumber string) (*employee.Employee, error) {
	for _, e := range m.employees {
		if e.CompanyID == companyID && e.EmployeeNumber == employeeNumber {
			return e, nil
		}
	}
	return nil, nil
}

func (m *mockEmployeeRepo) FindByName(companyID int64, familyName, givenName string) (*employee.Employee, error) {
	for _, e := range m.employees {
		if e.CompanyID == companyID && e.FamilyName == familyName && e.GivenName == givenName {
			return e, nil
		}
	}
	return nil, nil
}

func (m *mockEmployeeRepo) Create(e *employee.Employee) error {
	if m.createError != nil {
		return m.createError
	}
	m.nextID++
	e.ID = m.nextID
	m.employees[e.ID] = e
	m.created = append(m.created, e)
	return nil
}

func (m *mockEmployeeRepo) Save(e *employee.Employee) error {
	if m.saveError != nil {
		return m.saveError
	}
	m.saveCalls++
	m.employees[e.ID] = e
	return nil
}

func (m *mockEmployeeRepo) NextSequence(companyID int64, year int) (int, error) {
	m.sequence++
	return m.sequence, nil
}

type mockSyncLogRepo struct {
	logs   []*synclog.SyncLog
	nextID int64

	createError error
}

func (m *mockSyncLogRepo) CreateBatch(logs []*synclog.SyncLog) error {
	if m.createError != nil {
		return m.createError
	}
	for _, l := range logs {
		m.nextID++
		l.ID = m.nextID
		m.logs = append(m.logs, l)
	}
	return nil
}

func (m *mockSyncLogRepo) ListByContract(contractID int64, limit, offset int) ([]*synclog.SyncLog, error) {
	var out []*synclog.SyncLog
	for _, l := range m.logs {
		if l.ContractID == contractID {
			out = append(out, l)
		}
	}
	return out, nil
}

type mockStore struct {
	contracts *mockContractRepo
	profiles  *mockProfileRepo
	employees *mockEmployeeRepo
	syncLogs  *mockSyncLogRepo
	relations *mockRelationStore

	txError error
}

func newMockStore() *mockStore {
	return &mockStore{
		contracts: &mockContractRepo{
			contracts: make(map[int64]*contract.Contract),
			settings:  make(map[int64]*contract.DataSharingSettings),
		},
		profiles:  &mockProfileRepo{profiles: make(map[int64]*profile.PersonalProfile)},
		employees: &mockEmployeeRepo{employees: make(map[int64]*employee.Employee)},
		syncLogs:  &mockSyncLogRepo{},
		relations: newMockRelationStore(),
	}
}

func (m *mockStore) Contracts() datasync.ContractRepository { return m.contracts }
func (m *mockStore) Profiles() datasync.ProfileRepository   { return m.profiles }
func (m *mockStore) Employees() datasync.EmployeeRepository { return m.employees }
func (m *mockStore) SyncLogs() datasync.SyncLogRepository   { return m.syncLogs }
func (m *mockStore) Relations() datasync.RelationStore      { return m.relations }

func (m *mockStore) Transaction(ctx context.Context, fn func(datasync.Store) error) error {
	if m.txError != nil {
		return m.txError
	}
	return fn(m)
}

var _ = Describe("Sync Service", func() {
	var (
		service *datasync.Service
		store   *mockStore
		ctx     context.Context
	)

	seedApprovedContract := func() *contract.Contract {
		approvedAt := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
		c := &contract.Contract{
			ID:              10,
			PersonAccountID: 1001,
			CompanyID:       1,
			Status:          contract.StatusApproved,
			Position:        "Engineer",
			Department:      "Platform",
			ApprovedAt:      &approvedAt,
		}
		store.contracts.contracts[c.ID] = c
		store.contracts.settings[c.ID] = &contract.DataSharingSettings{
			ContractID:   c.ID,
			ShareBasic:   true,
			ShareContact: true,
			RealtimeSync: true,
		}
		return c
	}

	seedProfile := func() *profile.PersonalProfile {
		p := &profile.PersonalProfile{
			ID:              3,
			PersonAccountID: 1001,
			LastName:        "Tanaka",
			FirstName:       "Yuki",
			Email:           "tanaka@example.com",
			MobilePhone:     "090-1234-5678",
		}
		store.profiles.profiles[p.PersonAccountID] = p
		return p
	}

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		store = newMockStore()
		service = datasync.NewService(store, logger)
		ctx = context.Background()
	})

	Describe("SyncPersonalToEmployee", func() {
		It("should copy consented fields onto an existing employee and log each change", func() {
			// Given an approved contract linked to an existing employee
			c := seedApprovedContract()
			seedProfile()
			number := "EMP-2025-0001"
			c.EmployeeNumber = &number
			store.employees.employees[5] = &employee.Employee{
				ID:             5,
				CompanyID:      1,
				EmployeeNumber: number,
				FamilyName:     "Tanaka",
				GivenName:      "Yuki",
				Status:         employee.StatusActive,
			}

			// When syncing forward
			result, err := service.SyncPersonalToEmployee(ctx, c.ID, nil, synclog.SyncTypeManual, 1001)

			// Then contact fields land on the employee and every change is logged
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Direction).To(Equal(synclog.DirectionPersonalToEmployee))
			Expect(result.SyncedFields).To(ContainElements("email", "mobile_phone"))

			emp := store.employees.employees[5]
			Expect(emp.PersonalEmail).To(Equal("tanaka@example.com"))
			Expect(emp.MobilePhone).To(Equal("090-1234-5678"))

			Expect(result.LogIDs).To(HaveLen(len(result.Changes)))
			Expect(store.syncLogs.logs).To(HaveLen(len(result.Changes)))
			for _, l := range store.syncLogs.logs {
				Expect(l.ContractID).To(Equal(c.ID))
				Expect(l.SyncType).To(Equal(synclog.SyncTypeManual))
			}
		})

		It("should materialize the employee when none exists", func() {
			// Given an approved contract with no employee side yet
			c := seedApprovedContract()
			seedProfile()

			// When syncing forward
			_, err := service.SyncPersonalToEmployee(ctx, c.ID, nil, synclog.SyncTypeManual, 1001)

			// Then a pre_active employee appears with a generated number
			Expect(err).ToNot(HaveOccurred())
			Expect(store.employees.created).To(HaveLen(1))

			emp := store.employees.created[0]
			Expect(emp.Status).To(Equal(employee.StatusPreActive))
			Expect(emp.CompanyID).To(Equal(c.CompanyID))
			Expect(emp.PersonAccountID).ToNot(BeNil())
			Expect(*emp.PersonAccountID).To(Equal(c.PersonAccountID))
			Expect(emp.Position).To(Equal("Engineer"))

			expected := fmt.Sprintf("EMP-%d-0001", time.Now().Year())
			Expect(emp.EmployeeNumber).To(Equal(expected))

			// And the number is linked back onto the contract
			Expect(store.contracts.linkedNumbers[c.ID]).To(Equal(expected))
			Expect(c.EmployeeNumber).ToNot(BeNil())
			Expect(*c.EmployeeNumber).To(Equal(expected))
		})

		It("should seed the materialized employee with the full profile copy", func() {
			c := seedApprovedContract()
			p := seedProfile()
			birth := time.Date(1988, 6, 2, 0, 0, 0, 0, time.UTC)
			p.BirthDate = &birth

			_, err := service.SyncPersonalToEmployee(ctx, c.ID, nil, synclog.SyncTypeManual, 1001)

			Expect(err).ToNot(HaveOccurred())
			emp := store.employees.created[0]
			Expect(emp.FamilyName).To(Equal("Tanaka"))
			Expect(emp.GivenName).To(Equal("Yuki"))
			Expect(emp.DateOfBirth).ToNot(BeNil())
		})

		It("should not let a field request widen past the current consent", func() {
			// Given consent for basic only and an already linked employee
			c := seedApprovedContract()
			seedProfile()
			store.contracts.settings[c.ID].ShareContact = false
			number := "EMP-2025-0001"
			c.EmployeeNumber = &number
			store.employees.employees[5] = &employee.Employee{
				ID:             5,
				CompanyID:      1,
				EmployeeNumber: number,
				Status:         employee.StatusActive,
			}

			// When explicitly requesting a contact field
			result, err := service.SyncPersonalToEmployee(ctx, c.ID, []string{"email", "last_name"}, synclog.SyncTypeManual, 1001)

			// Then only the basic field survives the intersection
			Expect(err).ToNot(HaveOccurred())
			Expect(result.SyncedFields).To(ConsistOf("last_name"))
			Expect(store.employees.employees[5].PersonalEmail).To(BeEmpty())
			Expect(store.employees.employees[5].FamilyName).To(Equal("Tanaka"))
		})

		It("should fail when the contract does not exist", func() {
			_, err := service.SyncPersonalToEmployee(ctx, 999, nil, synclog.SyncTypeManual, 1001)

			Expect(err).To(Equal(internal.ErrContractNotFound))
		})

		It("should fail when the contract is not approved", func() {
			c := seedApprovedContract()
			seedProfile()
			c.Status = contract.StatusRequested

			_, err := service.SyncPersonalToEmployee(ctx, c.ID, nil, synclog.SyncTypeManual, 1001)

			Expect(err).To(Equal(internal.ErrContractNotApproved))
		})

		It("should refuse a caller authenticated as a different account", func() {
			c := seedApprovedContract()
			seedProfile()
			otherCtx := internal.ContextWithAccountID(ctx, 2002)

			_, err := service.SyncPersonalToEmployee(otherCtx, c.ID, nil, synclog.SyncTypeManual, 2002)

			Expect(err).To(Equal(internal.ErrContractNotOwned))
		})

		It("should fail when settings are missing", func() {
			c := seedApprovedContract()
			seedProfile()
			delete(store.contracts.settings, c.ID)

			_, err := service.SyncPersonalToEmployee(ctx, c.ID, nil, synclog.SyncTypeManual, 1001)

			Expect(err).To(Equal(internal.ErrSettingsNotFound))
		})

		It("should fail when the profile is missing", func() {
			c := seedApprovedContract()

			_, err := service.SyncPersonalToEmployee(ctx, c.ID, nil, synclog.SyncTypeManual, 1001)

			Expect(err).To(Equal(internal.ErrProfileNotFound))
		})

		It("should surface a storage failure as an internal error", func() {
			c := seedApprovedContract()
			seedProfile()
			store.txError = errors.New("connection reset")

			_, err := service.SyncPersonalToEmployee(ctx, c.ID, nil, synclog.SyncTypeManual, 1001)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
		})
	})

	Describe("SyncEmployeeToPersonal", func() {
		It("should pull employee values back onto the profile", func() {
			c := seedApprovedContract()
			seedProfile()
			number := "EMP-2025-0001"
			c.EmployeeNumber = &number
			store.employees.employees[5] = &employee.Employee{
				ID:             5,
				CompanyID:      1,
				EmployeeNumber: number,
				FamilyName:     "Tanaka",
				GivenName:      "Yuki",
				MobilePhone:    "080-9999-0000",
			}

			result, err := service.SyncEmployeeToPersonal(ctx, c.ID, []string{"mobile_phone"}, synclog.SyncTypeManual, 1)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Direction).To(Equal(synclog.DirectionEmployeeToPersonal))
			Expect(result.SyncedFields).To(ConsistOf("mobile_phone"))
			Expect(store.profiles.profiles[1001].MobilePhone).To(Equal("080-9999-0000"))
			Expect(store.profiles.saveCalls).To(Equal(1))
		})

		It("should fail without materializing when the employee does not exist", func() {
			c := seedApprovedContract()
			seedProfile()

			_, err := service.SyncEmployeeToPersonal(ctx, c.ID, nil, synclog.SyncTypeManual, 1)

			Expect(err).To(Equal(internal.ErrEmployeeNotFound))
			Expect(store.employees.created).To(BeEmpty())
		})
	})

	Describe("SyncAllContractsForUser", func() {
		It("should sync realtime contracts and skip the rest with a reason", func() {
			// Given two approved contracts, one with realtime sync disabled
			c1 := seedApprovedContract()
			seedProfile()
			c2 := &contract.Contract{
				ID:              11,
				PersonAccountID: 1001,
				CompanyID:       2,
				Status:          contract.StatusApproved,
			}
			store.contracts.contracts[c2.ID] = c2
			store.contracts.settings[c2.ID] = &contract.DataSharingSettings{
				ContractID: c2.ID, ShareBasic: true, RealtimeSync: false,
			}

			// When sweeping the person's contracts
			result, err := service.SyncAllContractsForUser(ctx, 1001, synclog.SyncTypeAuto)

			// Then one synced, one skipped
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Outcomes).To(HaveLen(2))

			byContract := make(map[int64]datasync.ContractSyncOutcome)
			for _, o := range result.Outcomes {
				byContract[o.ContractID] = o
			}
			Expect(byContract[c1.ID].Skipped).To(BeFalse())
			Expect(byContract[c1.ID].Result).ToNot(BeNil())
			Expect(byContract[c1.ID].Result.SyncType).To(Equal(synclog.SyncTypeAuto))
			Expect(byContract[c2.ID].Skipped).To(BeTrue())
			Expect(byContract[c2.ID].Reason).To(Equal("realtime sync disabled"))
		})

		It("should propagate an edit only after realtime sync is enabled", func() {
			// Given an approved contract with realtime sync off and a linked employee
			c := seedApprovedContract()
			p := seedProfile()
			store.contracts.settings[c.ID].RealtimeSync = false
			number := "EMP-2025-0001"
			c.EmployeeNumber = &number
			store.employees.employees[5] = &employee.Employee{
				ID:             5,
				CompanyID:      1,
				EmployeeNumber: number,
				FamilyName:     "Tanaka",
				GivenName:      "Yuki",
				Status:         employee.StatusActive,
			}

			// When the person edits their phone and the sweep runs
			p.MobilePhone = "080-9999-0000"
			result, err := service.SyncAllContractsForUser(ctx, 1001, synclog.SyncTypeAuto)

			// Then nothing moves while realtime is off
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Outcomes[0].Skipped).To(BeTrue())
			Expect(store.employees.employees[5].MobilePhone).To(BeEmpty())
			Expect(store.syncLogs.logs).To(BeEmpty())

			// And after enabling realtime the edit propagates with one log row
			store.contracts.settings[c.ID].RealtimeSync = true
			result, err = service.SyncAllContractsForUser(ctx, 1001, synclog.SyncTypeAuto)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Outcomes[0].Skipped).To(BeFalse())
			Expect(store.employees.employees[5].MobilePhone).To(Equal("080-9999-0000"))

			phoneLogs := 0
			for _, l := range store.syncLogs.logs {
				if l.FieldName != nil && *l.FieldName == "mobile_phone" {
					phoneLogs++
					Expect(l.Direction).To(Equal(synclog.DirectionPersonalToEmployee))
				}
			}
			Expect(phoneLogs).To(Equal(1))
		})

		It("should skip a contract whose settings are missing", func() {
			c := seedApprovedContract()
			seedProfile()
			delete(store.contracts.settings, c.ID)

			result, err := service.SyncAllContractsForUser(ctx, 1001, synclog.SyncTypeAuto)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Outcomes).To(HaveLen(1))
			Expect(result.Outcomes[0].Skipped).To(BeTrue())
			Expect(result.Outcomes[0].Reason).To(Equal("settings missing"))
		})
	})

	Describe("GetSyncableFields", func() {
		It("should list the fields and relations the settings authorize", func() {
			c := seedApprovedContract()
			store.contracts.settings[c.ID].ShareCareer = true

			fields, err := service.GetSyncableFields(ctx, c.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(fields.Fields).To(HaveKey(datasync.GroupBasic))
			Expect(fields.Fields).To(HaveKey(datasync.GroupContact))
			Expect(fields.Relations).To(ConsistOf(datasync.GroupCareer))
			Expect(fields.RealtimeSync).To(BeTrue())
		})
	})

	Describe("GetSnapshot", func() {
		It("should record a keys-only disclosure row", func() {
			c := seedApprovedContract()
			seedProfile()

			snapshot, err := service.GetSnapshot(ctx, c.ID, false, 1001)

			Expect(err).ToNot(HaveOccurred())
			Expect(snapshot).To(HaveKeyWithValue("email", "tanaka@example.com"))

			Expect(store.syncLogs.logs).To(HaveLen(1))
			row := store.syncLogs.logs[0]
			Expect(row.EntityType).To(Equal(synclog.EntityTypeSnapshot))
			Expect(row.FieldName).To(BeNil())
			Expect(row.NewValue).ToNot(BeNil())
			// Disclosed key names only, never values
			Expect(*row.NewValue).To(ContainSubstring("email"))
			Expect(*row.NewValue).ToNot(ContainSubstring("tanaka@example.com"))
			Expect(strings.Split(*row.NewValue, ",")).To(ContainElement("last_name"))
		})
	})

	Describe("GetSyncLogs", func() {
		It("should return the contract's audit trail", func() {
			c := seedApprovedContract()
			field := "email"
			store.syncLogs.CreateBatch([]*synclog.SyncLog{
				{ContractID: c.ID, FieldName: &field, SyncType: synclog.SyncTypeManual},
				{ContractID: 99, SyncType: synclog.SyncTypeManual},
			})

			logs, err := service.GetSyncLogs(ctx, c.ID, 50, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(logs).To(HaveLen(1))
			Expect(logs[0].ContractID).To(Equal(c.ID))
		})
	})
})
