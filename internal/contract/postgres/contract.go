package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	contractsvc "github.com/hrlink/people-sync/internal/contract"
	"github.com/hrlink/people-sync/internal/core/datamodel/contract"
)

// ContractRepository implements the contract.Repository interface using GORM.
type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) contractsvc.Repository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) Transaction(ctx context.Context, fn func(contractsvc.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ContractRepository{db: tx})
	})
}

func (r *ContractRepository) Create(c *contract.Contract) error {
	return r.db.Create(c).Error
}

func (r *ContractRepository) GetByID(id int64) (*contract.Contract, error) {
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

// FindActive returns the person's non-terminal contract with the company, if
// any. Rejected and terminated contracts do not count.
func (r *ContractRepository) FindActive(personAccountID, companyID int64) (*contract.Contract, error) {
	var c contract.Contract
	err := r.db.Where("person_account_id = ? AND company_id = ? AND status IN ?",
		personAccountID, companyID, contract.ActiveStatuses).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *ContractRepository) ListByPerson(personAccountID int64) ([]*contract.Contract, error) {
	var contracts []*contract.Contract
	err := r.db.Where("person_account_id = ?", personAccountID).
		Order("created_at DESC").
		Find(&contracts).Error
	return contracts, err
}

func (r *ContractRepository) ListByCompany(companyID int64) ([]*contract.Contract, error) {
	var contracts []*contract.Contract
	err := r.db.Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&contracts).Error
	return contracts, err
}

func (r *ContractRepository) Save(c *contract.Contract) error {
	c.UpdatedAt = time.Now()
	return r.db.Save(c).Error
}

func (r *ContractRepository) GetSettings(contractID int64) (*contract.DataSharingSettings, error) {
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

func (r *ContractRepository) CreateSettings(s *contract.DataSharingSettings) error {
	return r.db.Create(s).Error
}

func (r *ContractRepository) SaveSettings(s *contract.DataSharingSettings) error {
	s.UpdatedAt = time.Now()
	return r.db.Save(s).Error
}
