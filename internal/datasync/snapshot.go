package datasync

import (
	"fmt"
	"sort"

	"github.com/hrlink/people-sync/internal/core/datamodel/contract"
	"github.com/hrlink/people-sync/internal/core/datamodel/employee"
	"github.com/hrlink/people-sync/internal/core/datamodel/profile"
)

// BuildSnapshot extracts a consent-filtered, read-only view of the profile
// "as of now". Scalar fields appear under their personal-side names; relation
// groups under the group name. The second return value lists the disclosed
// top-level keys for the audit row, key names only, never values.
func BuildSnapshot(prof *profile.PersonalProfile, settings *contract.DataSharingSettings, includeRelations bool) (map[string]interface{}, []string) {
	snapshot := make(map[string]interface{})

	for _, group := range ScalarGroups() {
		if !settings.SharesGroup(group) {
			continue
		}
		for _, m := range FieldsForGroup(group) {
			if v, ok := prof.FieldValue(m.PersonalField); ok {
				snapshot[m.PersonalField] = v
			}
		}
	}

	if includeRelations {
		if settings.SharesGroup(GroupEducation) && len(prof.Educations) > 0 {
			snapshot[GroupEducation] = prof.Educations
		}
		if settings.SharesGroup(GroupCareer) && len(prof.Careers) > 0 {
			snapshot[GroupCareer] = prof.Careers
		}
		if settings.SharesGroup(GroupCertificates) && len(prof.Certificates) > 0 {
			snapshot[GroupCertificates] = prof.Certificates
		}
		if settings.SharesGroup(GroupLanguages) && len(prof.Languages) > 0 {
			snapshot[GroupLanguages] = prof.Languages
		}
		if settings.SharesGroup(GroupMilitary) && prof.Military != nil {
			snapshot[GroupMilitary] = prof.Military
		}
		if settings.SharesGroup(GroupFamily) && len(prof.Families) > 0 {
			snapshot[GroupFamily] = prof.Families
		}
	}

	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return snapshot, keys
}

// ApplySnapshotToEmployee one-way-applies a captured snapshot's basic and
// contact fields onto the employee, independent of the live engines. Relation
// entries in the snapshot are ignored. Returns the applied personal-side
// field names.
func ApplySnapshotToEmployee(snapshot map[string]interface{}, emp *employee.Employee) ([]string, error) {
	var applied []string

	for _, group := range ScalarGroups() {
		for _, m := range FieldsForGroup(group) {
			value, ok := snapshot[m.PersonalField]
			if !ok {
				continue
			}
			if err := emp.SetFieldValue(m.EmployeeField, value); err != nil {
				return nil, fmt.Errorf("apply snapshot field %q: %w", m.PersonalField, err)
			}
			applied = append(applied, m.PersonalField)
		}
	}

	return applied, nil
}
