package profile

import (
	"time"

	"github.com/hrlink/people-sync/internal/core/datamodel/profile"
)

// UpdateProfileDTO is a partial update: nil scalar pointers leave the field
// alone, nil relation slices leave the set alone, non-nil slices replace it.
type UpdateProfileDTO struct {
	LastName      *string    `json:"last_name,omitempty"`
	FirstName     *string    `json:"first_name,omitempty"`
	LastNameKana  *string    `json:"last_name_kana,omitempty"`
	FirstNameKana *string    `json:"first_name_kana,omitempty"`
	BirthDate     *time.Time `json:"birth_date,omitempty"`
	Gender        *string    `json:"gender,omitempty"`
	Nationality   *string    `json:"nationality,omitempty"`
	Email         *string    `json:"email,omitempty"`
	MobilePhone   *string    `json:"mobile_phone,omitempty"`
	Phone         *string    `json:"phone,omitempty"`
	PostalCode    *string    `json:"postal_code,omitempty"`
	Prefecture    *string    `json:"prefecture,omitempty"`
	City          *string    `json:"city,omitempty"`
	StreetAddress *string    `json:"street_address,omitempty"`

	Educations   []profile.Education   `json:"educations,omitempty"`
	Careers      []profile.Career      `json:"careers,omitempty"`
	Certificates []profile.Certificate `json:"certificates,omitempty"`
	Languages    []profile.Language    `json:"languages,omitempty"`
	Military     *profile.Military     `json:"military,omitempty"`
	Families     []profile.Family      `json:"families,omitempty"`
}

func (d *UpdateProfileDTO) ApplyTo(p *profile.PersonalProfile) {
	if d.LastName != nil {
		p.LastName = *d.LastName
	}
	if d.FirstName != nil {
		p.FirstName = *d.FirstName
	}
	if d.LastNameKana != nil {
		p.LastNameKana = *d.LastNameKana
	}
	if d.FirstNameKana != nil {
		p.FirstNameKana = *d.FirstNameKana
	}
	if d.BirthDate != nil {
		p.BirthDate = d.BirthDate
	}
	if d.Gender != nil {
		p.Gender = *d.Gender
	}
	if d.Nationality != nil {
		p.Nationality = *d.Nationality
	}
	if d.Email != nil {
		p.Email = *d.Email
	}
	if d.MobilePhone != nil {
		p.MobilePhone = *d.MobilePhone
	}
	if d.Phone != nil {
		p.Phone = *d.Phone
	}
	if d.PostalCode != nil {
		p.PostalCode = *d.PostalCode
	}
	if d.Prefecture != nil {
		p.Prefecture = *d.Prefecture
	}
	if d.City != nil {
		p.City = *d.City
	}
	if d.StreetAddress != nil {
		p.StreetAddress = *d.StreetAddress
	}
}
