package profile

import (
	"fmt"
	"time"
)

// PersonalProfile is the self-owned representation of a person's HR data.
// Scalar attributes are exposed to the sync engine by name through
// FieldValue/SetFieldValue so the engine never depends on the struct shape.
type PersonalProfile struct {
	ID              int64      `json:"id" gorm:"primaryKey"`
	PersonAccountID int64      `json:"person_account_id" gorm:"column:person_account_id;uniqueIndex;not null"`
	LastName        string     `json:"last_name" gorm:"column:last_name"`
	FirstName       string     `json:"first_name" gorm:"column:first_name"`
	LastNameKana    string     `json:"last_name_kana" gorm:"column:last_name_kana"`
	FirstNameKana   string     `json:"first_name_kana" gorm:"column:first_name_kana"`
	BirthDate       *time.Time `json:"birth_date,omitempty" gorm:"column:birth_date"`
	Gender          string     `json:"gender" gorm:"column:gender"`
	Nationality     string     `json:"nationality" gorm:"column:nationality"`
	Email           string     `json:"email" gorm:"column:email"`
	MobilePhone     string     `json:"mobile_phone" gorm:"column:mobile_phone"`
	Phone           string     `json:"phone" gorm:"column:phone"`
	PostalCode      string     `json:"postal_code" gorm:"column:postal_code"`
	Prefecture      string     `json:"prefecture" gorm:"column:prefecture"`
	City            string     `json:"city" gorm:"column:city"`
	StreetAddress   string     `json:"street_address" gorm:"column:street_address"`
	CreatedAt       time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"column:updated_at"`

	Educations   []Education   `json:"educations,omitempty" gorm:"foreignKey:ProfileID"`
	Careers      []Career      `json:"careers,omitempty" gorm:"foreignKey:ProfileID"`
	Certificates []Certificate `json:"certificates,omitempty" gorm:"foreignKey:ProfileID"`
	Languages    []Language    `json:"languages,omitempty" gorm:"foreignKey:ProfileID"`
	Military     *Military     `json:"military,omitempty" gorm:"foreignKey:ProfileID"`
	Families     []Family      `json:"families,omitempty" gorm:"foreignKey:ProfileID"`
}

func (PersonalProfile) TableName() string {
	return "personal_profiles"
}

// OwnerPersonID identifies the account whose edits should trigger auto-sync.
func (p *PersonalProfile) OwnerPersonID() int64 {
	return p.PersonAccountID
}

// FieldValue returns the named scalar attribute. Nil pointers come back as a
// nil value with ok=true: the field exists, its value is null.
func (p *PersonalProfile) FieldValue(name string) (interface{}, bool) {
	switch name {
	case "last_name":
		return p.LastName, true
	case "first_name":
		return p.FirstName, true
	case "last_name_kana":
		return p.LastNameKana, true
	case "first_name_kana":
		return p.FirstNameKana, true
	case "birth_date":
		if p.BirthDate == nil {
			return nil, true
		}
		return *p.BirthDate, true
	case "gender":
		return p.Gender, true
	case "nationality":
		return p.Nationality, true
	case "email":
		return p.Email, true
	case "mobile_phone":
		return p.MobilePhone, true
	case "phone":
		return p.Phone, true
	case "postal_code":
		return p.PostalCode, true
	case "prefecture":
		return p.Prefecture, true
	case "city":
		return p.City, true
	case "street_address":
		return p.StreetAddress, true
	default:
		return nil, false
	}
}

// SetFieldValue assigns the named scalar attribute, coercing from the loose
// types the sync engine passes through.
func (p *PersonalProfile) SetFieldValue(name string, value interface{}) error {
	switch name {
	case "last_name":
		return assignString(&p.LastName, name, value)
	case "first_name":
		return assignString(&p.FirstName, name, value)
	case "last_name_kana":
		return assignString(&p.LastNameKana, name, value)
	case "first_name_kana":
		return assignString(&p.FirstNameKana, name, value)
	case "birth_date":
		return assignDate(&p.BirthDate, name, value)
	case "gender":
		return assignString(&p.Gender, name, value)
	case "nationality":
		return assignString(&p.Nationality, name, value)
	case "email":
		return assignString(&p.Email, name, value)
	case "mobile_phone":
		return assignString(&p.MobilePhone, name, value)
	case "phone":
		return assignString(&p.Phone, name, value)
	case "postal_code":
		return assignString(&p.PostalCode, name, value)
	case "prefecture":
		return assignString(&p.Prefecture, name, value)
	case "city":
		return assignString(&p.City, name, value)
	case "street_address":
		return assignString(&p.StreetAddress, name, value)
	default:
		return fmt.Errorf("personal profile has no syncable field %q", name)
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

type Education struct {
	ID         int64      `json:"id" gorm:"primaryKey"`
	ProfileID  int64      `json:"profile_id" gorm:"column:profile_id;not null;index"`
	SchoolName string     `json:"school_name" gorm:"column:school_name"`
	Degree     string     `json:"degree" gorm:"column:degree"`
	Major      string     `json:"major" gorm:"column:major"`
	StartDate  *time.Time `json:"start_date,omitempty" gorm:"column:start_date"`
	EndDate    *time.Time `json:"end_date,omitempty" gorm:"column:end_date"`
	Note       string     `json:"note" gorm:"column:note"`
	CreatedAt  time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Education) TableName() string { return "profile_educations" }

type Career struct {
	ID          int64      `json:"id" gorm:"primaryKey"`
	ProfileID   int64      `json:"profile_id" gorm:"column:profile_id;not null;index"`
	CompanyName string     `json:"company_name" gorm:"column:company_name"`
	Position    string     `json:"position" gorm:"column:position"`
	Department  string     `json:"department" gorm:"column:department"`
	StartDate   *time.Time `json:"start_date,omitempty" gorm:"column:start_date"`
	EndDate     *time.Time `json:"end_date,omitempty" gorm:"column:end_date"`
	Description string     `json:"description" gorm:"column:description"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Career) TableName() string { return "profile_careers" }

type Certificate struct {
	ID         int64      `json:"id" gorm:"primaryKey"`
	ProfileID  int64      `json:"profile_id" gorm:"column:profile_id;not null;index"`
	Name       string     `json:"name" gorm:"column:name"`
	IssuedBy   string     `json:"issued_by" gorm:"column:issued_by"`
	AcquiredOn *time.Time `json:"acquired_on,omitempty" gorm:"column:acquired_on"`
	ExpiresOn  *time.Time `json:"expires_on,omitempty" gorm:"column:expires_on"`
	CreatedAt  time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Certificate) TableName() string { return "profile_certificates" }

type Language struct {
	ID              int64     `json:"id" gorm:"primaryKey"`
	ProfileID       int64     `json:"profile_id" gorm:"column:profile_id;not null;index"`
	Language        string    `json:"language" gorm:"column:language"`
	Level           string    `json:"level" gorm:"column:level"`
	CertificateName string    `json:"certificate_name" gorm:"column:certificate_name"`
	Score           string    `json:"score" gorm:"column:score"`
	CreatedAt       time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Language) TableName() string { return "profile_languages" }

// Military is a singleton relation: a profile carries at most one record.
type Military struct {
	ID            int64      `json:"id" gorm:"primaryKey"`
	ProfileID     int64      `json:"profile_id" gorm:"column:profile_id;uniqueIndex;not null"`
	ServiceBranch string     `json:"service_branch" gorm:"column:service_branch"`
	Rank          string     `json:"rank" gorm:"column:rank"`
	StartDate     *time.Time `json:"start_date,omitempty" gorm:"column:start_date"`
	EndDate       *time.Time `json:"end_date,omitempty" gorm:"column:end_date"`
	DischargeType string     `json:"discharge_type" gorm:"column:discharge_type"`
	CreatedAt     time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Military) TableName() string { return "profile_military_records" }

type Family struct {
	ID            int64      `json:"id" gorm:"primaryKey"`
	ProfileID     int64      `json:"profile_id" gorm:"column:profile_id;not null;index"`
	Name          string     `json:"name" gorm:"column:name"`
	Relationship  string     `json:"relationship" gorm:"column:relationship"`
	BirthDate     *time.Time `json:"birth_date,omitempty" gorm:"column:birth_date"`
	IsDependent   bool       `json:"is_dependent" gorm:"column:is_dependent"`
	LivesTogether bool       `json:"lives_together" gorm:"column:lives_together"`
	CreatedAt     time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Family) TableName() string { return "profile_families" }
