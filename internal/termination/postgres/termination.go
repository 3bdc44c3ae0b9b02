package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/hrlink/people-sync/internal/core/datamodel/contract"
	"github.com/hrlink/people-sync/internal/core/datamodel/synclog"
	"github.com/hrlink/people-sync/internal/termination"
)

// TerminationRepository implements the termination.Repository interface using
// GORM.
type TerminationRepository struct {
	db *gorm.DB
}

func NewTerminationRepository(db *gorm.DB) termination.Repository {
	return &TerminationRepository{db: db}
}

func (r *TerminationRepository) Transaction(ctx context.Context, fn func(termination.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&TerminationRepository{db: tx})
	})
}

func (r *TerminationRepository) GetContract(id int64) (*contract.Contract, error) {
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

func (r *TerminationRepository) SaveContract(c *contract.Contract) error {
	return r.db.Save(c).Error
}

func (r *TerminationRepository) GetSettings(contractID int64) (*contract.DataSharingSettings, error) {
	var s contract.DataSharingSettings
	err := r.db.Where("contract_id = ?", contractID).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *TerminationRepository) SaveSettings(s *contract.DataSharingSettings) error {
	return r.db.Save(s).Error
}

func (r *TerminationRepository) CreateArchive(a *contract.ContractArchive) error {
	return r.db.Create(a).Error
}

func (r *TerminationRepository) GetArchive(contractID int64) (*contract.ContractArchive, error) {
	var a contract.ContractArchive
	err := r.db.Where("contract_id = ?", contractID).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *TerminationRepository) SaveArchive(a *contract.ContractArchive) error {
	return r.db.Save(a).Error
}

func (r *TerminationRepository) ListArchivesDue(before time.Time) ([]*contract.ContractArchive, error) {
	var archives []*contract.ContractArchive
	err := r.db.
		Where("retention_end <= ? AND archive_status <> ?", before, contract.ArchiveStatusDeleted).
		Order("retention_end").
		Find(&archives).Error
	if err != nil {
		return nil, err
	}
	return archives, nil
}

func (r *TerminationRepository) PurgeSyncLogs(contractID int64) (int64, error) {
	res := r.db.Where("contract_id = ?", contractID).Delete(&synclog.SyncLog{})
	return res.RowsAffected, res.Error
}

func (r *TerminationRepository) ListTerminated(companyID int64) ([]*contract.Contract, error) {
	query := r.db.Where("status = ?", contract.StatusTerminated)
	if companyID != 0 {
		query = query.Where("company_id = ?", companyID)
	}

	var contracts []*contract.Contract
	if err := query.Order("terminated_at DESC").Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}
