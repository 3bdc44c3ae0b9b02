package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hrlink/people-sync/internal/core/datamodel/profile"
	profilesvc "github.com/hrlink/people-sync/internal/profile"
)

// ProfileRepository implements the profile write path using GORM.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) profilesvc.Repository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Transaction(ctx context.Context, fn func(profilesvc.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ProfileRepository{db: tx})
	})
}

func (r *ProfileRepository) GetByPersonAccountID(personAccountID int64) (*profile.PersonalProfile, error) {
	var p profile.PersonalProfile
	err := r.db.
		Preload("Educations").
		Preload("Careers").
		Preload("Certificates").
		Preload("Languages").
		Preload("Military").
		Preload("Families").
		Where("person_account_id = ?", personAccountID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) Save(p *profile.PersonalProfile) error {
	return r.db.Omit("Educations", "Careers", "Certificates", "Languages", "Military", "Families").Save(p).Error
}

func replaceSet[T any](db *gorm.DB, profileID int64, records []T) error {
	if err := db.Where("profile_id = ?", profileID).Delete(new(T)).Error; err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	return db.Create(&records).Error
}

func (r *ProfileRepository) ReplaceEducations(profileID int64, records []profile.Education) error {
	return replaceSet(r.db, profileID, stamped(records, func(rec *profile.Education) { rec.ID = 0; rec.ProfileID = profileID }))
}

func (r *ProfileRepository) ReplaceCareers(profileID int64, records []profile.Career) error {
	return replaceSet(r.db, profileID, stamped(records, func(rec *profile.Career) { rec.ID = 0; rec.ProfileID = profileID }))
}

func (r *ProfileRepository) ReplaceCertificates(profileID int64, records []profile.Certificate) error {
	return replaceSet(r.db, profileID, stamped(records, func(rec *profile.Certificate) { rec.ID = 0; rec.ProfileID = profileID }))
}

func (r *ProfileRepository) ReplaceLanguages(profileID int64, records []profile.Language) error {
	return replaceSet(r.db, profileID, stamped(records, func(rec *profile.Language) { rec.ID = 0; rec.ProfileID = profileID }))
}

func (r *ProfileRepository) ReplaceMilitary(profileID int64, record *profile.Military) error {
	if err := r.db.Where("profile_id = ?", profileID).Delete(&profile.Military{}).Error; err != nil {
		return err
	}
	if record == nil {
		return nil
	}
	record.ID = 0
	record.ProfileID = profileID
	return r.db.Create(record).Error
}

func (r *ProfileRepository) ReplaceFamilies(profileID int64, records []profile.Family) error {
	return replaceSet(r.db, profileID, stamped(records, func(rec *profile.Family) { rec.ID = 0; rec.ProfileID = profileID }))
}

// stamped copies the incoming records and forces ownership: caller-supplied
// ids never survive a replace.
func stamped[T any](records []T, fix func(*T)) []T {
	out := make([]T, len(records))
	copy(out, records)
	for i := range out {
		fix(&out[i])
	}
	return out
}
