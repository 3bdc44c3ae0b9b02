package datasync

// Share groups. Scalar groups map field-by-field; relation groups are synced
// as whole record sets by the relation engine.
const (
	GroupBasic        = "basic"
	GroupContact      = "contact"
	GroupEducation    = "education"
	GroupCareer       = "career"
	GroupCertificates = "certificates"
	GroupLanguages    = "languages"
	GroupMilitary     = "military"
	GroupFamily       = "family"
)

// FieldMapping correlates one personal-profile attribute with its
// employee-side name. The registry is the single source of truth for name
// correspondence; adding a shareable field means adding one entry here.
type FieldMapping struct {
	PersonalField string
	EmployeeField string
	Group         string
}

var fieldMappings = []FieldMapping{
	{"last_name", "family_name", GroupBasic},
	{"first_name", "given_name", GroupBasic},
	{"last_name_kana", "family_name_kana", GroupBasic},
	{"first_name_kana", "given_name_kana", GroupBasic},
	{"birth_date", "date_of_birth", GroupBasic},
	{"gender", "gender", GroupBasic},
	{"nationality", "nationality", GroupBasic},

	{"email", "personal_email", GroupContact},
	{"mobile_phone", "mobile_phone", GroupContact},
	{"phone", "phone", GroupContact},
	{"postal_code", "postal_code", GroupContact},
	{"prefecture", "prefecture", GroupContact},
	{"city", "city", GroupContact},
	{"street_address", "street_address", GroupContact},
}

var (
	byPersonalField = make(map[string]FieldMapping, len(fieldMappings))
	byEmployeeField = make(map[string]FieldMapping, len(fieldMappings))
)

func init() {
	for _, m := range fieldMappings {
		byPersonalField[m.PersonalField] = m
		byEmployeeField[m.EmployeeField] = m
	}
}

// ScalarGroups lists the groups handled by the basic field engine.
func ScalarGroups() []string {
	return []string{GroupBasic, GroupContact}
}

// RelationGroups lists the groups handled by the relation engine.
func RelationGroups() []string {
	return []string{GroupEducation, GroupCareer, GroupCertificates, GroupLanguages, GroupMilitary, GroupFamily}
}

// FieldsForGroup returns the mappings of one scalar share group, in
// registration order. Unknown and relation groups return nil.
func FieldsForGroup(group string) []FieldMapping {
	var out []FieldMapping
	for _, m := range fieldMappings {
		if m.Group == group {
			out = append(out, m)
		}
	}
	return out
}

// EmployeeField resolves a personal attribute name to its employee-side name.
func EmployeeField(personalField string) (string, bool) {
	m, ok := byPersonalField[personalField]
	if !ok {
		return "", false
	}
	return m.EmployeeField, true
}

// PersonalField resolves an employee attribute name to its personal-side name.
func PersonalField(employeeField string) (string, bool) {
	m, ok := byEmployeeField[employeeField]
	if !ok {
		return "", false
	}
	return m.PersonalField, true
}

// GroupForPersonalField returns the share group a personal field belongs to.
func GroupForPersonalField(personalField string) (string, bool) {
	m, ok := byPersonalField[personalField]
	if !ok {
		return "", false
	}
	return m.Group, true
}
