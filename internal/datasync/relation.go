package datasync

import (
	"log/slog"
	"strconv"

	"github.com/hrlink/people-sync/internal/core/datamodel/employee"
	"github.com/hrlink/people-sync/internal/core/datamodel/profile"
	"github.com/hrlink/people-sync/internal/core/datamodel/synclog"
)

// RelationStore performs the destructive half of the full-replace policy:
// delete every destination record of one relation type, recreate from the
// given set. Implementations run inside the orchestrator's transaction.
type RelationStore interface {
	ReplaceEmployeeEducations(employeeID int64, records []employee.Education) error
	ReplaceEmployeeCareers(employeeID int64, records []employee.Career) error
	ReplaceEmployeeCertificates(employeeID int64, records []employee.Certificate) error
	ReplaceEmployeeLanguages(employeeID int64, records []employee.Language) error
	ReplaceEmployeeMilitary(employeeID int64, record *employee.Military) error
	ReplaceEmployeeFamilies(employeeID int64, records []employee.Family) error

	ReplaceProfileEducations(profileID int64, records []profile.Education) error
	ReplaceProfileCareers(profileID int64, records []profile.Career) error
	ReplaceProfileCertificates(profileID int64, records []profile.Certificate) error
	ReplaceProfileLanguages(profileID int64, records []profile.Language) error
	ReplaceProfileMilitary(profileID int64, record *profile.Military) error
	ReplaceProfileFamilies(profileID int64, records []profile.Family) error
}

// RelationSyncResult is the staged outcome of one relation-engine pass.
// SyncedCounts maps relation group to the number of records written.
type RelationSyncResult struct {
	SyncedGroups []string
	SyncedCounts map[string]int
	Logs         []*synclog.SyncLog
}

// RelationSyncEngine applies the full-replace policy per relation group: a
// non-empty source set replaces the destination set wholesale; an empty
// source leaves the destination alone. No diffing, no merging; the two
// schemas share no stable record key to diff on.
type RelationSyncEngine struct {
	logger *slog.Logger
}

func NewRelationSyncEngine(logger *slog.Logger) *RelationSyncEngine {
	return &RelationSyncEngine{logger: logger}
}

// SyncPersonalToEmployee replaces the employee's relation sets from the
// profile for each requested group. One count-only log row is staged per
// group that was actually written.
func (e *RelationSyncEngine) SyncPersonalToEmployee(store RelationStore, contractID int64, prof *profile.PersonalProfile, emp *employee.Employee, groups []string, meta SyncMeta) (*RelationSyncResult, error) {
	result := &RelationSyncResult{SyncedCounts: make(map[string]int)}

	for _, group := range groups {
		var (
			count int
			err   error
		)

		switch group {
		case GroupEducation:
			if count = len(prof.Educations); count > 0 {
				err = store.ReplaceEmployeeEducations(emp.ID, educationsToEmployee(emp.ID, prof.Educations))
			}
		case GroupCareer:
			if count = len(prof.Careers); count > 0 {
				err = store.ReplaceEmployeeCareers(emp.ID, careersToEmployee(emp.ID, prof.Careers))
			}
		case GroupCertificates:
			if count = len(prof.Certificates); count > 0 {
				err = store.ReplaceEmployeeCertificates(emp.ID, certificatesToEmployee(emp.ID, prof.Certificates))
			}
		case GroupLanguages:
			if count = len(prof.Languages); count > 0 {
				err = store.ReplaceEmployeeLanguages(emp.ID, languagesToEmployee(emp.ID, prof.Languages))
			}
		case GroupMilitary:
			if prof.Military != nil {
				count = 1
				err = store.ReplaceEmployeeMilitary(emp.ID, militaryToEmployee(emp.ID, prof.Military))
			}
		case GroupFamily:
			if count = len(prof.Families); count > 0 {
				err = store.ReplaceEmployeeFamilies(emp.ID, familiesToEmployee(emp.ID, prof.Families))
			}
		default:
			e.logger.Warn("skipping unknown relation group", "group", group, "contract_id", contractID)
			continue
		}
		if err != nil {
			return nil, err
		}
		if count == 0 {
			// empty source never wipes the destination
			continue
		}

		e.stage(result, contractID, group, count, synclog.DirectionPersonalToEmployee, meta)
	}

	return result, nil
}

// SyncEmployeeToPersonal replaces the profile's relation sets from the
// employee record.
func (e *RelationSyncEngine) SyncEmployeeToPersonal(store RelationStore, contractID int64, emp *employee.Employee, prof *profile.PersonalProfile, groups []string, meta SyncMeta) (*RelationSyncResult, error) {
	result := &RelationSyncResult{SyncedCounts: make(map[string]int)}

	for _, group := range groups {
		var (
			count int
			err   error
		)

		switch group {
		case GroupEducation:
			if count = len(emp.Educations); count > 0 {
				err = store.ReplaceProfileEducations(prof.ID, educationsToProfile(prof.ID, emp.Educations))
			}
		case GroupCareer:
			if count = len(emp.Careers); count > 0 {
				err = store.ReplaceProfileCareers(prof.ID, careersToProfile(prof.ID, emp.Careers))
			}
		case GroupCertificates:
			if count = len(emp.Certificates); count > 0 {
				err = store.ReplaceProfileCertificates(prof.ID, certificatesToProfile(prof.ID, emp.Certificates))
			}
		case GroupLanguages:
			if count = len(emp.Languages); count > 0 {
				err = store.ReplaceProfileLanguages(prof.ID, languagesToProfile(prof.ID, emp.Languages))
			}
		case GroupMilitary:
			if emp.Military != nil {
				count = 1
				err = store.ReplaceProfileMilitary(prof.ID, militaryToProfile(prof.ID, emp.Military))
			}
		case GroupFamily:
			if count = len(emp.Families); count > 0 {
				err = store.ReplaceProfileFamilies(prof.ID, familiesToProfile(prof.ID, emp.Families))
			}
		default:
			e.logger.Warn("skipping unknown relation group", "group", group, "contract_id", contractID)
			continue
		}
		if err != nil {
			return nil, err
		}
		if count == 0 {
			continue
		}

		e.stage(result, contractID, group, count, synclog.DirectionEmployeeToPersonal, meta)
	}

	return result, nil
}

// stage records one count-only log row per relation group. Payloads never go
// into the audit trail for batches.
func (e *RelationSyncEngine) stage(result *RelationSyncResult, contractID int64, group string, count int, direction string, meta SyncMeta) {
	countStr := strconv.Itoa(count)
	result.SyncedGroups = append(result.SyncedGroups, group)
	result.SyncedCounts[group] = count
	result.Logs = append(result.Logs, &synclog.SyncLog{
		ContractID: contractID,
		SyncType:   meta.SyncType,
		EntityType: group,
		NewValue:   &countStr,
		Direction:  direction,
		SyncedBy:   meta.ActorID,
	})
}

func educationsToEmployee(employeeID int64, in []profile.Education) []employee.Education {
	out := make([]employee.Education, len(in))
	for i, r := range in {
		out[i] = employee.Education{
			EmployeeID: employeeID,
			SchoolName: r.SchoolName,
			Degree:     r.Degree,
			Major:      r.Major,
			StartDate:  r.StartDate,
			EndDate:    r.EndDate,
			Note:       r.Note,
		}
	}
	return out
}

func educationsToProfile(profileID int64, in []employee.Education) []profile.Education {
	out := make([]profile.Education, len(in))
	for i, r := range in {
		out[i] = profile.Education{
			ProfileID:  profileID,
			SchoolName: r.SchoolName,
			Degree:     r.Degree,
			Major:      r.Major,
			StartDate:  r.StartDate,
			EndDate:    r.EndDate,
			Note:       r.Note,
		}
	}
	return out
}

func careersToEmployee(employeeID int64, in []profile.Career) []employee.Career {
	out := make([]employee.Career, len(in))
	for i, r := range in {
		out[i] = employee.Career{
			EmployeeID:  employeeID,
			CompanyName: r.CompanyName,
			Position:    r.Position,
			Department:  r.Department,
			StartDate:   r.StartDate,
			EndDate:     r.EndDate,
			Description: r.Description,
		}
	}
	return out
}

func careersToProfile(profileID int64, in []employee.Career) []profile.Career {
	out := make([]profile.Career, len(in))
	for i, r := range in {
		out[i] = profile.Career{
			ProfileID:   profileID,
			CompanyName: r.CompanyName,
			Position:    r.Position,
			Department:  r.Department,
			StartDate:   r.StartDate,
			EndDate:     r.EndDate,
			Description: r.Description,
		}
	}
	return out
}

func certificatesToEmployee(employeeID int64, in []profile.Certificate) []employee.Certificate {
	out := make([]employee.Certificate, len(in))
	for i, r := range in {
		out[i] = employee.Certificate{
			EmployeeID: employeeID,
			Name:       r.Name,
			IssuedBy:   r.IssuedBy,
			AcquiredOn: r.AcquiredOn,
			ExpiresOn:  r.ExpiresOn,
		}
	}
	return out
}

func certificatesToProfile(profileID int64, in []employee.Certificate) []profile.Certificate {
	out := make([]profile.Certificate, len(in))
	for i, r := range in {
		out[i] = profile.Certificate{
			ProfileID:  profileID,
			Name:       r.Name,
			IssuedBy:   r.IssuedBy,
			AcquiredOn: r.AcquiredOn,
			ExpiresOn:  r.ExpiresOn,
		}
	}
	return out
}

func languagesToEmployee(employeeID int64, in []profile.Language) []employee.Language {
	out := make([]employee.Language, len(in))
	for i, r := range in {
		out[i] = employee.Language{
			EmployeeID:      employeeID,
			Language:        r.Language,
			Level:           r.Level,
			CertificateName: r.CertificateName,
			Score:           r.Score,
		}
	}
	return out
}

func languagesToProfile(profileID int64, in []employee.Language) []profile.Language {
	out := make([]profile.Language, len(in))
	for i, r := range in {
		out[i] = profile.Language{
			ProfileID:       profileID,
			Language:        r.Language,
			Level:           r.Level,
			CertificateName: r.CertificateName,
			Score:           r.Score,
		}
	}
	return out
}

func militaryToEmployee(employeeID int64, r *profile.Military) *employee.Military {
	return &employee.Military{
		EmployeeID:    employeeID,
		ServiceBranch: r.ServiceBranch,
		Rank:          r.Rank,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		DischargeType: r.DischargeType,
	}
}

func militaryToProfile(profileID int64, r *employee.Military) *profile.Military {
	return &profile.Military{
		ProfileID:     profileID,
		ServiceBranch: r.ServiceBranch,
		Rank:          r.Rank,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		DischargeType: r.DischargeType,
	}
}

func familiesToEmployee(employeeID int64, in []profile.Family) []employee.Family {
	out := make([]employee.Family, len(in))
	for i, r := range in {
		out[i] = employee.Family{
			EmployeeID:    employeeID,
			Name:          r.Name,
			Relationship:  r.Relationship,
			BirthDate:     r.BirthDate,
			IsDependent:   r.IsDependent,
			LivesTogether: r.LivesTogether,
		}
	}
	return out
}

func familiesToProfile(profileID int64, in []employee.Family) []profile.Family {
	out := make([]profile.Family, len(in))
	for i, r := range in {
		out[i] = profile.Family{
			ProfileID:     profileID,
			Name:          r.Name,
			Relationship:  r.Relationship,
			BirthDate:     r.BirthDate,
			IsDependent:   r.IsDependent,
			LivesTogether: r.LivesTogether,
		}
	}
	return out
}
