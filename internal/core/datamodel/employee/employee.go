package employee

import (
	"fmt"
	"time"
)

const (
	StatusPreActive = "pre_active"
	StatusActive    = "active"
	StatusResigned  = "resigned"
)

// Employee is the employer-owned representation of a person's HR data.
// Attribute names follow the employer schema; the field mapping registry
// correlates them with the personal-profile names.
type Employee struct {
	ID              int64      `json:"id" gorm:"primaryKey"`
	CompanyID       int64      `json:"company_id" gorm:"column:company_id;index"`
	PersonAccountID *int64     `json:"person_account_id,omitempty" gorm:"column:person_account_id"`
	EmployeeNumber  string     `json:"employee_number" gorm:"column:employee_number;index"`
	Status          string     `json:"status" gorm:"column:status;default:pre_active"`
	FamilyName      string     `json:"family_name" gorm:"column:family_name"`
	GivenName       string     `json:"given_name" gorm:"column:given_name"`
	FamilyNameKana  string     `json:"family_name_kana" gorm:"column:family_name_kana"`
	GivenNameKana   string     `json:"given_name_kana" gorm:"column:given_name_kana"`
	DateOfBirth     *time.Time `json:"date_of_birth,omitempty" gorm:"column:date_of_birth"`
	Gender          string     `json:"gender" gorm:"column:gender"`
	Nationality     string     `json:"nationality" gorm:"column:nationality"`
	PersonalEmail   string     `json:"personal_email" gorm:"column:personal_email"`
	MobilePhone     string     `json:"mobile_phone" gorm:"column:mobile_phone"`
	Phone           string     `json:"phone" gorm:"column:phone"`
	PostalCode      string     `json:"postal_code" gorm:"column:postal_code"`
	Prefecture      string     `json:"prefecture" gorm:"column:prefecture"`
	City            string     `json:"city" gorm:"column:city"`
	StreetAddress   string     `json:"street_address" gorm:"column:street_address"`
	Position        string     `json:"position" gorm:"column:position"`
	Department      string     `json:"department" gorm:"column:department"`
	HireDate        *time.Time `json:"hire_date,omitempty" gorm:"column:hire_date"`
	ResignationDate *time.Time `json:"resignation_date,omitempty" gorm:"column:resignation_date"`
	CreatedAt       time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"column:updated_at"`

	Educations   []Education   `json:"educations,omitempty" gorm:"foreignKey:EmployeeID"`
	Careers      []Career      `json:"careers,omitempty" gorm:"foreignKey:EmployeeID"`
	Certificates []Certificate `json:"certificates,omitempty" gorm:"foreignKey:EmployeeID"`
	Languages    []Language    `json:"languages,omitempty" gorm:"foreignKey:EmployeeID"`
	Military     *Military     `json:"military,omitempty" gorm:"foreignKey:EmployeeID"`
	Families     []Family      `json:"families,omitempty" gorm:"foreignKey:EmployeeID"`
}

func (Employee) TableName() string {
	return "employees"
}

func (e *Employee) IsResigned() bool {
	return e.Status == StatusResigned
}

// FieldValue returns the named scalar attribute using employer-side names.
func (e *Employee) FieldValue(name string) (interface{}, bool) {
	switch name {
	case "family_name":
		return e.FamilyName, true
	case "given_name":
		return e.GivenName, true
	case "family_name_kana":
		return e.FamilyNameKana, true
	case "given_name_kana":
		return e.GivenNameKana, true
	case "date_of_birth":
		if e.DateOfBirth == nil {
			return nil, true
		}
		return *e.DateOfBirth, true
	case "gender":
		return e.Gender, true
	case "nationality":
		return e.Nationality, true
	case "personal_email":
		return e.PersonalEmail, true
	case "mobile_phone":
		return e.MobilePhone, true
	case "phone":
		return e.Phone, true
	case "postal_code":
		return e.PostalCode, true
	case "prefecture":
		return e.Prefecture, true
	case "city":
		return e.City, true
	case "street_address":
		return e.StreetAddress, true
	default:
		return nil, false
	}
}

func (e *Employee) SetFieldValue(name string, value interface{}) error {
	switch name {
	case "family_name":
		return assignString(&e.FamilyName, name, value)
	case "given_name":
		return assignString(&e.GivenName, name, value)
	case "family_name_kana":
		return assignString(&e.FamilyNameKana, name, value)
	case "given_name_kana":
		return assignString(&e.GivenNameKana, name, value)
	case "date_of_birth":
		return assignDate(&e.DateOfBirth, name, value)
	case "gender":
		return assignString(&e.Gender, name, value)
	case "nationality":
		return assignString(&e.Nationality, name, value)
	case "personal_email":
		return assignString(&e.PersonalEmail, name, value)
	case "mobile_phone":
		return assignString(&e.MobilePhone, name, value)
	case "phone":
		return assignString(&e.Phone, name, value)
	case "postal_code":
		return assignString(&e.PostalCode, name, value)
	case "prefecture":
		return assignString(&e.Prefecture, name, value)
	case "city":
		return assignString(&e.City, name, value)
	case "street_address":
		return assignString(&e.StreetAddress, name, value)
	default:
		return fmt.Errorf("employee has no syncable field %q", name)
	}
}

func assignString(dst *string, name string, value interface{}) error {
	if value == nil {
		*dst = ""
		return nil
	}
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("field %q expects string, got %T", name, value)
	}
	*dst = s
	return nil
}

func assignDate(dst **time.Time, name string, value interface{}) error {
	switch v := value.(type) {
	case nil:
		*dst = nil
	case time.Time:
		t := v
		*dst = &t
	case *time.Time:
		*dst = v
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fmt.Errorf("field %q: cannot parse date %q: %w", name, v, err)
		}
		*dst = &t
	default:
		return fmt.Errorf("field %q expects date, got %T", name, value)
	}
	return nil
}

// Company supplies the root organization for employee materialization.
type Company struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"column:name"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Company) TableName() string { return "companies" }

type Education struct {
	ID         int64      `json:"id" gorm:"primaryKey"`
	EmployeeID int64      `json:"employee_id" gorm:"column:employee_id;not null;index"`
	SchoolName string     `json:"school_name" gorm:"column:school_name"`
	Degree     string     `json:"degree" gorm:"column:degree"`
	Major      string     `json:"major" gorm:"column:major"`
	StartDate  *time.Time `json:"start_date,omitempty" gorm:"column:start_date"`
	EndDate    *time.Time `json:"end_date,omitempty" gorm:"column:end_date"`
	Note       string     `json:"note" gorm:"column:note"`
	CreatedAt  time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Education) TableName() string { return "employee_educations" }

type Career struct {
	ID          int64      `json:"id" gorm:"primaryKey"`
	EmployeeID  int64      `json:"employee_id" gorm:"column:employee_id;not null;index"`
	CompanyName string     `json:"company_name" gorm:"column:company_name"`
	Position    string     `json:"position" gorm:"column:position"`
	Department  string     `json:"department" gorm:"column:department"`
	StartDate   *time.Time `json:"start_date,omitempty" gorm:"column:start_date"`
	EndDate     *time.Time `json:"end_date,omitempty" gorm:"column:end_date"`
	Description string     `json:"description" gorm:"column:description"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Career) TableName() string { return "employee_careers" }

type Certificate struct {
	ID         int64      `json:"id" gorm:"primaryKey"`
	EmployeeID int64      `json:"employee_id" gorm:"column:employee_id;not null;index"`
	Name       string     `json:"name" gorm:"column:name"`
	IssuedBy   string     `json:"issued_by" gorm:"column:issued_by"`
	AcquiredOn *time.Time `json:"acquired_on,omitempty" gorm:"column:acquired_on"`
	ExpiresOn  *time.Time `json:"expires_on,omitempty" gorm:"column:expires_on"`
	CreatedAt  time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Certificate) TableName() string { return "employee_certificates" }

type Language struct {
	ID              int64     `json:"id" gorm:"primaryKey"`
	EmployeeID      int64     `json:"employee_id" gorm:"column:employee_id;not null;index"`
	Language        string    `json:"language" gorm:"column:language"`
	Level           string    `json:"level" gorm:"column:level"`
	CertificateName string    `json:"certificate_name" gorm:"column:certificate_name"`
	Score           string    `json:"score" gorm:"column:score"`
	CreatedAt       time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Language) TableName() string { return "employee_languages" }

type Military struct {
	ID            int64      `json:"id" gorm:"primaryKey"`
	EmployeeID    int64      `json:"employee_id" gorm:"column:employee_id;uniqueIndex;not null"`
	ServiceBranch string     `json:"service_branch" gorm:"column:service_branch"`
	Rank          string     `json:"rank" gorm:"column:rank"`
	StartDate     *time.Time `json:"start_date,omitempty" gorm:"column:start_date"`
	EndDate       *time.Time `json:"end_date,omitempty" gorm:"column:end_date"`
	DischargeType string     `json:"discharge_type" gorm:"column:discharge_type"`
	CreatedAt     time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Military) TableName() string { return "employee_military_records" }

type Family struct {
	ID            int64      `json:"id" gorm:"primaryKey"`
	EmployeeID    int64      `json:"employee_id" gorm:"column:employee_id;not null;index"`
	Name          string     `json:"name" gorm:"column:name"`
	Relationship  string     `json:"relationship" gorm:"column:relationship"`
	BirthDate     *time.Time `json:"birth_date,omitempty" gorm:"column:birth_date"`
	IsDependent   bool       `json:"is_dependent" gorm:"column:is_dependent"`
	LivesTogether bool       `json:"lives_together" gorm:"column:lives_together"`
	CreatedAt     time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Family) TableName() string { return "employee_families" }
