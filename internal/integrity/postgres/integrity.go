package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hrlink/people-sync/internal/core/datamodel/contract"
	"github.com/hrlink/people-sync/internal/core/datamodel/employee"
	"github.com/hrlink/people-sync/internal/integrity"
)

// IntegrityRepository implements the integrity.Repository interface using
// GORM. Scans read scalar columns only; relations are irrelevant to the
// checks.
type IntegrityRepository struct {
	db *gorm.DB
}

func NewIntegrityRepository(db *gorm.DB) integrity.Repository {
	return &IntegrityRepository{db: db}
}

func (r *IntegrityRepository) Transaction(ctx context.Context, fn func(integrity.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&IntegrityRepository{db: tx})
	})
}

func (r *IntegrityRepository) ListApprovedContracts(companyID int64) ([]*contract.Contract, error) {
	query := r.db.Where("status = ?", contract.StatusApproved)
	if companyID != 0 {
		query = query.Where("company_id = ?", companyID)
	}

	var contracts []*contract.Contract
	if err := query.Order("id").Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *IntegrityRepository) ListEmployees(companyID int64) ([]*employee.Employee, error) {
	query := r.db.Model(&employee.Employee{})
	if companyID != 0 {
		query = query.Where("company_id = ?", companyID)
	}

	var employees []*employee.Employee
	if err := query.Order("id").Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

func (r *IntegrityRepository) GetContract(id int64) (*contract.Contract, error) {
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

func (r *IntegrityRepository) GetEmployee(id int64) (*employee.Employee, error) {
	var e employee.Employee
	err := r.db.Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *IntegrityRepository) FindEmployeeByNumber(companyID int64, number string) (*employee.Employee, error) {
	var e employee.Employee
	err := r.db.Where("company_id = ? AND employee_number = ?", companyID, number).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *IntegrityRepository) SaveContract(c *contract.Contract) error {
	return r.db.Save(c).Error
}

func (r *IntegrityRepository) SaveEmployee(e *employee.Employee) error {
	return r.db.Omit("Educations", "Careers", "Certificates", "Languages", "Military", "Families").Save(e).Error
}
