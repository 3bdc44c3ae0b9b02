package datasync_test

import (
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hrlink/people-sync/internal/core/datamodel/employee"
	"github.com/hrlink/people-sync/internal/core/datamodel/profile"
	"github.com/hrlink/people-sync/internal/core/datamodel/synclog"
	"github.com/hrlink/people-sync/internal/datasync"
)

// Mock relation store recording what was replaced
type mockRelationStore struct {
	employeeEducations   map[int64][]employee.Education
	employeeCareers      map[int64][]employee.Career
	employeeCertificates map[int64][]employee.Certificate
	employeeLanguages    map[int64][]employee.Language
	employeeMilitary     map[int64]*employee.Military
	employeeFamilies     map[int64][]employee.Family

	profileEducations   map[int64][]profile.Education
	profileCareers      map[int64][]profile.Career
	profileCertificates map[int64][]profile.Certificate
	profileLanguages    map[int64][]profile.Language
	profileMilitary     map[int64]*profile.Military
	profileFamilies     map[int64][]profile.Family

	replaceCalls []string
	replaceError error
}

func newMockRelationStore() *mockRelationStore {
	return &mockRelationStore{
		employeeEducations:   make(map[int64][]employee.Education),
		employeeCareers:      make(map[int64][]employee.Career),
		employeeCertificates: make(map[int64][]employee.Certificate),
		employeeLanguages:    make(map[int64][]employee.Language),
		employeeMilitary:     make(map[int64]*employee.Military),
		employeeFamilies:     make(map[int64][]employee.Family),
		profileEducations:    make(map[int64][]profile.Education),
		profileCareers:       make(map[int64][]profile.Career),
		profileCertificates:  make(map[int64][]profile.Certificate),
		profileLanguages:     make(map[int64][]profile.Language),
		profileMilitary:      make(map[int64]*profile.Military),
		profileFamilies:      make(map[int64][]profile.Family),
	}
}

func (m *mockRelationStore) ReplaceEmployeeEducations(employeeID int64, records []employee.Education) error {
	if m.replaceError != nil {
		return m.replaceError
	}
	m.replaceCalls = append(m.replaceCalls, "employee_educations")
	m.employeeEducations[employeeID] = records
	return nil
}

func (m *mockRelationStore) ReplaceEmployeeCareers(employeeID int64, records []employee.Career) error {
	if m.replaceError != nil {
		return m.replaceError
	}
	m.replaceCalls = append(m.replaceCalls, "employee_careers")
	m.employeeCareers[employeeID] = records
	return nil
}

func (m *mockRelationStore) ReplaceEmployeeCertificates(employeeID int64, records []employee.Certificate) error {
	m.replaceCalls = append(m.replaceCalls, "employee_certificates")
	m.employeeCertificates[employeeID] = records
	return nil
}

func (m *mockRelationStore) ReplaceEmployeeLanguages(employeeID int64, records []employee.Language) error {
	m.replaceCalls = append(m.replaceCalls, "employee_languages")
	m.employeeLanguages[employeeID] = records
	return nil
}

func (m *mockRelationStore) ReplaceEmployeeMilitary(employeeID int64, record *employee.Military) error {
	m.replaceCalls = append(m.replaceCalls, "employee_military")
	m.employeeMilitary[employeeID] = record
	return nil
}

func (m *mockRelationStore) ReplaceEmployeeFamilies(employeeID int64, records []employee.Family) error {
	m.replaceCalls = append(m.replaceCalls, "employee_families")
	m.employeeFamilies[employeeID] = records
	return nil
}

func (m *mockRelationStore) ReplaceProfileEducations(profileID int64, records []profile.Education) error {
	m.replaceCalls = append(m.replaceCalls, "profile_educations")
	m.profileEducations[profileID] = records
	return nil
}

func (m *mockRelationStore) ReplaceProfileCareers(profileID int64, records []profile.Career) error {
	m.replaceCalls = append(m.replaceCalls, "profile_careers")
	m.profileCareers[profileID] = records
	return nil
}

func (m *mockRelationStore) ReplaceProfileCertificates(profileID int64, records []profile.Certificate) error {
	m.replaceCalls = append(m.replaceCalls, "profile_certificates")
	m.profileCertificates[profileID] = records
	return nil
}

func (m *mockRelationStore) ReplaceProfileLanguages(profileID int64, records []profile.Language) error {
	m.replaceCalls = append(m.replaceCalls, "profile_languages")
	m.profileLanguages[profileID] = records
	return nil
}

func (m *mockRelationStore) ReplaceProfileMilitary(profileID int64, record *profile.Military) error {
	m.replaceCalls = append(m.replaceCalls, "profile_military")
	m.profileMilitary[profileID] = record
	return nil
}

func (m *mockRelationStore) ReplaceProfileFamilies(profileID int64, records []profile.Family) error {
	m.replaceCalls = append(m.replaceCalls, "profile_families")
	m.profileFamilies[profileID] = records
	return nil
}

var _ = Describe("RelationSyncEngine", func() {
	var (
		engine *datasync.RelationSyncEngine
		store  *mockRelationStore
		prof   *profile.PersonalProfile
		emp    *employee.Employee
		meta   datasync.SyncMeta
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		engine = datasync.NewRelationSyncEngine(logger)
		store = newMockRelationStore()
		meta = datasync.SyncMeta{SyncType: synclog.SyncTypeManual, ActorID: 7}

		prof = &profile.PersonalProfile{ID: 3, PersonAccountID: 1001}
		emp = &employee.Employee{ID: 5, CompanyID: 1}
	})

	Describe("SyncPersonalToEmployee", func() {
		It("should replace the destination set when source has records", func() {
			start := time.Date(2015, 4, 1, 0, 0, 0, 0, time.UTC)
			prof.Careers = []profile.Career{
				{CompanyName: "Acme", Position: "Engineer", StartDate: &start},
			}

			result, err := engine.SyncPersonalToEmployee(store, 10, prof, emp,
				[]string{datasync.GroupCareer}, meta)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.SyncedCounts).To(HaveKeyWithValue(datasync.GroupCareer, 1))

			written := store.employeeCareers[emp.ID]
			Expect(written).To(HaveLen(1))
			Expect(written[0].CompanyName).To(Equal("Acme"))
			Expect(written[0].Position).To(Equal("Engineer"))
			Expect(written[0].StartDate.Equal(start)).To(BeTrue())
			Expect(written[0].EmployeeID).To(Equal(emp.ID))
		})

		It("should leave the destination untouched when source is empty", func() {
			prof.Careers = nil

			result, err := engine.SyncPersonalToEmployee(store, 10, prof, emp,
				[]string{datasync.GroupCareer}, meta)

			Expect(err).ToNot(HaveOccurred())
			Expect(store.replaceCalls).To(BeEmpty())
			Expect(result.SyncedCounts).To(BeEmpty())
			Expect(result.Logs).To(BeEmpty())
		})

		It("should stage exactly one count-only log row per synced group", func() {
			prof.Educations = []profile.Education{
				{SchoolName: "Tokyo University", Degree: "BSc"},
				{SchoolName: "Kyoto University", Degree: "MSc"},
			}
			prof.Languages = []profile.Language{
				{Language: "Japanese", Level: "native"},
			}

			result, err := engine.SyncPersonalToEmployee(store, 10, prof, emp,
				[]string{datasync.GroupEducation, datasync.GroupLanguages}, meta)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Logs).To(HaveLen(2))
			for _, l := range result.Logs {
				Expect(l.FieldName).To(BeNil())
				Expect(l.OldValue).To(BeNil())
				Expect(l.NewValue).ToNot(BeNil())
				Expect(l.Direction).To(Equal(synclog.DirectionPersonalToEmployee))
			}
			Expect(result.SyncedCounts).To(HaveKeyWithValue(datasync.GroupEducation, 2))
			Expect(result.SyncedCounts).To(HaveKeyWithValue(datasync.GroupLanguages, 1))
		})

		It("should sync the military singleton", func() {
			prof.Military = &profile.Military{ServiceBranch: "navy", Rank: "lieutenant"}

			result, err := engine.SyncPersonalToEmployee(store, 10, prof, emp,
				[]string{datasync.GroupMilitary}, meta)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.SyncedCounts).To(HaveKeyWithValue(datasync.GroupMilitary, 1))
			Expect(store.employeeMilitary[emp.ID]).ToNot(BeNil())
			Expect(store.employeeMilitary[emp.ID].ServiceBranch).To(Equal("navy"))
		})

		It("should not touch a group that was not requested", func() {
			prof.Careers = []profile.Career{{CompanyName: "Acme"}}
			prof.Educations = []profile.Education{{SchoolName: "Tokyo University"}}

			_, err := engine.SyncPersonalToEmployee(store, 10, prof, emp,
				[]string{datasync.GroupCareer}, meta)

			Expect(err).ToNot(HaveOccurred())
			Expect(store.replaceCalls).To(ConsistOf("employee_careers"))
		})
	})

	Describe("SyncEmployeeToPersonal", func() {
		It("should replace the profile set from the employee side", func() {
			emp.Certificates = []employee.Certificate{
				{Name: "AWS SAA", IssuedBy: "Amazon"},
			}

			result, err := engine.SyncEmployeeToPersonal(store, 10, emp, prof,
				[]string{datasync.GroupCertificates}, meta)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.SyncedCounts).To(HaveKeyWithValue(datasync.GroupCertificates, 1))

			written := store.profileCertificates[prof.ID]
			Expect(written).To(HaveLen(1))
			Expect(written[0].Name).To(Equal("AWS SAA"))
			Expect(written[0].ProfileID).To(Equal(prof.ID))
			Expect(result.Logs[0].Direction).To(Equal(synclog.DirectionEmployeeToPersonal))
		})

		It("should never wipe profile records when the employee side is empty", func() {
			emp.Families = nil

			_, err := engine.SyncEmployeeToPersonal(store, 10, emp, prof,
				[]string{datasync.GroupFamily}, meta)

			Expect(err).ToNot(HaveOccurred())
			Expect(store.replaceCalls).To(BeEmpty())
		})
	})
})
