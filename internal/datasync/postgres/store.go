package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hrlink/people-sync/internal/core/datamodel/contract"
	"github.com/hrlink/people-sync/internal/core/datamodel/employee"
	"github.com/hrlink/people-sync/internal/core/datamodel/profile"
	"github.com/hrlink/people-sync/internal/core/datamodel/synclog"
	"github.com/hrlink/people-sync/internal/datasync"
)

// Store implements datasync.Store on GORM. Transaction yields a store bound
// to the transaction handle, so every repository inside the closure shares
// one database transaction.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Contracts() datasync.ContractRepository { return &contractRepository{db: s.db} }
func (s *Store) Profiles() datasync.ProfileRepository   { return &profileRepository{db: s.db} }
func (s *Store) Employees() datasync.EmployeeRepository { return &employeeRepository{db: s.db} }
func (s *Store) SyncLogs() datasync.SyncLogRepository   { return &syncLogRepository{db: s.db} }
func (s *Store) Relations() datasync.RelationStore      { return &relationStore{db: s.db} }

func (s *Store) Transaction(ctx context.Context, fn func(datasync.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

type contractRepository struct {
	db *gorm.DB
}

func (r *contractRepository) GetByID(id int64) (*contract.Contract, error) {
	var c contract.Contract
	err := r.db.Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *contractRepository) GetApprovedByPerson(personAccountID int64) ([]*contract.Contract, error) {
	var contracts []*contract.Contract
	err := r.db.Where("person_account_id = ? AND status = ?", personAccountID, contract.StatusApproved).
		Order("id ASC").
		Find(&contracts).Error
	return contracts, err
}

func (r *contractRepository) GetSettings(contractID int64) (*contract.DataSharingSettings, error) {
	var settings contract.DataSharingSettings
	err := r.db.Where("contract_id = ?", contractID).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *contractRepository) SetEmployeeNumber(contractID int64, number string) error {
	return r.db.Model(&contract.Contract{}).
		Where("id = ?", contractID).
		Updates(map[string]interface{}{
			"employee_number": number,
			"updated_at":      time.Now(),
		}).Error
}

type profileRepository struct {
	db *gorm.DB
}

func (r *profileRepository) GetByPersonAccountID(personAccountID int64) (*profile.PersonalProfile, error) {
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

func (r *profileRepository) Save(p *profile.PersonalProfile) error {
	p.UpdatedAt = time.Now()
	return r.db.Omit("Educations", "Careers", "Certificates", "Languages", "Military", "Families").
		Save(p).Error
}

type employeeRepository struct {
	db *gorm.DB
}

func (r *employeeRepository) preload() *gorm.DB {
	return r.db.
		Preload("Educations").
		Preload("Careers").
		Preload("Certificates").
		Preload("Languages").
		Preload("Military").
		Preload("Families")
}

func (r *employeeRepository) GetByNumber(companyID int64, employeeNumber string) (*employee.Employee, error) {
	var e employee.Employee
	err := r.preload().
		Where("company_id = ? AND employee_number = ?", companyID, employeeNumber).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *employeeRepository) FindByName(companyID int64, familyName, givenName string) (*employee.Employee, error) {
	var e employee.Employee
	err := r.preload().
		Where("company_id = ? AND family_name = ? AND given_name = ?", companyID, familyName, givenName).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *employeeRepository) Create(e *employee.Employee) error {
	return r.db.Omit("Educations", "Careers", "Certificates", "Languages", "Military", "Families").
		Create(e).Error
}

func (r *employeeRepository) Save(e *employee.Employee) error {
	e.UpdatedAt = time.Now()
	return r.db.Omit("Educations", "Careers", "Certificates", "Languages", "Military", "Families").
		Save(e).Error
}

func (r *employeeRepository) NextSequence(companyID int64, year int) (int, error) {
	var count int64
	prefix := fmt.Sprintf("EMP-%d-%%", year)
	err := r.db.Model(&employee.Employee{}).
		Where("company_id = ? AND employee_number LIKE ?", companyID, prefix).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count) + 1, nil
}

type syncLogRepository struct {
	db *gorm.DB
}

func (r *syncLogRepository) CreateBatch(logs []*synclog.SyncLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.Create(logs).Error
}

func (r *syncLogRepository) ListByContract(contractID int64, limit, offset int) ([]*synclog.SyncLog, error) {
	var logs []*synclog.SyncLog
	err := r.db.Where("contract_id = ?", contractID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	return logs, err
}

// relationStore performs the full-replace writes: delete the destination set,
// recreate from source. Runs inside the orchestrator's transaction.
type relationStore struct {
	db *gorm.DB
}

func replaceSet[T any](db *gorm.DB, ownerColumn string, ownerID int64, records []T) error {
	if err := db.Where(ownerColumn+" = ?", ownerID).Delete(new(T)).Error; err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	return db.Create(&records).Error
}

func (r *relationStore) ReplaceEmployeeEducations(employeeID int64, records []employee.Education) error {
	return replaceSet(r.db, "employee_id", employeeID, records)
}

func (r *relationStore) ReplaceEmployeeCareers(employeeID int64, records []employee.Career) error {
	return replaceSet(r.db, "employee_id", employeeID, records)
}

func (r *relationStore) ReplaceEmployeeCertificates(employeeID int64, records []employee.Certificate) error {
	return replaceSet(r.db, "employee_id", employeeID, records)
}

func (r *relationStore) ReplaceEmployeeLanguages(employeeID int64, records []employee.Language) error {
	return replaceSet(r.db, "employee_id", employeeID, records)
}

func (r *relationStore) ReplaceEmployeeMilitary(employeeID int64, record *employee.Military) error {
	if err := r.db.Where("employee_id = ?", employeeID).Delete(&employee.Military{}).Error; err != nil {
		return err
	}
	if record == nil {
		return nil
	}
	return r.db.Create(record).Error
}

func (r *relationStore) ReplaceEmployeeFamilies(employeeID int64, records []employee.Family) error {
	return replaceSet(r.db, "employee_id", employeeID, records)
}

func (r *relationStore) ReplaceProfileEducations(profileID int64, records []profile.Education) error {
	return replaceSet(r.db, "profile_id", profileID, records)
}

func (r *relationStore) ReplaceProfileCareers(profileID int64, records []profile.Career) error {
	return replaceSet(r.db, "profile_id", profileID, records)
}

func (r *relationStore) ReplaceProfileCertificates(profileID int64, records []profile.Certificate) error {
	return replaceSet(r.db, "profile_id", profileID, records)
}

func (r *relationStore) ReplaceProfileLanguages(profileID int64, records []profile.Language) error {
	return replaceSet(r.db, "profile_id", profileID, records)
}

func (r *relationStore) ReplaceProfileMilitary(profileID int64, record *profile.Military) error {
	if err := r.db.Where("profile_id = ?", profileID).Delete(&profile.Military{}).Error; err != nil {
		return err
	}
	if record == nil {
		return nil
	}
	return r.db.Create(record).Error
}

func (r *relationStore) ReplaceProfileFamilies(profileID int64, records []profile.Family) error {
	return replaceSet(r.db, "profile_id", profileID, records)
}
