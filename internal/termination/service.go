package termination

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrlink/people-sync/internal"
	"github.com/hrlink/people-sync/internal/core/datamodel/contract"
	"github.com/hrlink/people-sync/internal/core/events"
)

// Repository is the persistence surface of termination and retention.
type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	GetContract(id int64) (*contract.Contract, error)
	SaveContract(c *contract.Contract) error
	GetSettings(contractID int64) (*contract.DataSharingSettings, error)
	SaveSettings(s *contract.DataSharingSettings) error
	CreateArchive(a *contract.ContractArchive) error
	GetArchive(contractID int64) (*contract.ContractArchive, error)
	SaveArchive(a *contract.ContractArchive) error
	ListArchivesDue(before time.Time) ([]*contract.ContractArchive, error)
	ListTerminated(companyID int64) ([]*contract.Contract, error)
	PurgeSyncLogs(contractID int64) (int64, error)
}

// Service terminates contracts and reports retention eligibility. Archival
// and deletion sweeps run out-of-band; this service only marks eligibility.
type Service struct {
	repo          Repository
	retentionDays int
	eventBus      *events.EventBus
	logger        *slog.Logger
}

func NewService(repo Repository, retentionDays int, eventBus *events.EventBus, logger *slog.Logger) *Service {
	if retentionDays <= 0 {
		retentionDays = internal.DefaultRetentionDays
	}
	return &Service{
		repo:          repo,
		retentionDays: retentionDays,
		eventBus:      eventBus,
		logger:        logger,
	}
}

// TerminateContract moves the contract to terminated, stamps TerminatedAt,
// revokes every consent flag and schedules a pending archive in one
// transaction, so consent can never outlive the status change. Terminating
// an already terminated contract fails without touching anything.
func (s *Service) TerminateContract(ctx context.Context, id int64, reason string, byUserID int64) (*contract.Contract, error) {
	c, err := s.repo.GetContract(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load contract", err)
	}
	if c == nil {
		return nil, internal.ErrContractNotFound
	}
	if c.IsTerminated() {
		s.logger.Warn("contract already terminated", "contract_id", id)
		return nil, internal.ErrAlreadyTerminated
	}

	now := time.Now()
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		c.Status = contract.StatusTerminated
		c.TerminatedAt = &now
		if reason != "" {
			c.Notes = reason
		}
		if err := tx.SaveContract(c); err != nil {
			return err
		}

		settings, err := tx.GetSettings(c.ID)
		if err != nil {
			return err
		}
		if settings != nil {
			settings.RevokeAll()
			if err := tx.SaveSettings(settings); err != nil {
				return err
			}
		}

		return tx.CreateArchive(&contract.ContractArchive{
			ContractID:    c.ID,
			ArchiveStatus: contract.ArchiveStatusPending,
			TerminatedAt:  now,
			RetentionEnd:  now.AddDate(0, 0, s.retentionDays),
		})
	})
	if err != nil {
		s.logger.Error("failed to terminate contract", "error", err, "contract_id", id)
		return nil, internal.NewInternalError("failed to terminate contract", err)
	}

	s.logger.Info("contract terminated",
		"contract_id", c.ID,
		"reason", reason,
		"terminated_by", byUserID)

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.NewContractTerminatedEvent(c.ID, c.PersonAccountID, c.CompanyID, reason, byUserID))
	}
	return c, nil
}

// RetentionStatus reports where a terminated contract sits in its retention
// window.
type RetentionStatus struct {
	ContractID    int64     `json:"contract_id"`
	Status        string    `json:"status"`
	TerminatedAt  time.Time `json:"terminated_at"`
	RetentionEnd  time.Time `json:"retention_end"`
	DaysRemaining int       `json:"days_remaining"`
}

func (s *Service) GetRetentionStatus(ctx context.Context, contractID int64) (*RetentionStatus, error) {
	c, err := s.repo.GetContract(contractID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load contract", err)
	}
	if c == nil {
		return nil, internal.ErrContractNotFound
	}

	archive, err := s.repo.GetArchive(contractID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load archive", err)
	}
	if archive == nil {
		return nil, internal.ErrArchiveNotFound
	}

	daysRemaining := int(time.Until(archive.RetentionEnd).Hours() / 24)
	if daysRemaining < 0 {
		daysRemaining = 0
	}

	return &RetentionStatus{
		ContractID:    contractID,
		Status:        archive.ArchiveStatus,
		TerminatedAt:  archive.TerminatedAt,
		RetentionEnd:  archive.RetentionEnd,
		DaysRemaining: daysRemaining,
	}, nil
}

// TerminationRecord pairs a terminated contract with its archive state.
type TerminationRecord struct {
	Contract *contract.Contract        `json:"contract"`
	Archive  *contract.ContractArchive `json:"archive,omitempty"`
}

// SweepResult reports what one retention sweep pass did.
type SweepResult struct {
	Archived     int   `json:"archived"`
	Deleted      int   `json:"deleted"`
	PurgedLogs   int64 `json:"purged_logs"`
	ArchivesSeen int   `json:"archives_seen"`
}

// SweepRetention advances archives whose retention window has elapsed:
// pending rows become archived, archived rows have their audit trail purged
// and become deleted. Each archive advances one step per pass, so a full
// cleanup takes two sweeps. Per-archive failures are logged and skipped.
func (s *Service) SweepRetention(ctx context.Context, now time.Time) (*SweepResult, error) {
	archives, err := s.repo.ListArchivesDue(now)
	if err != nil {
		return nil, internal.NewInternalError("failed to list due archives", err)
	}

	result := &SweepResult{ArchivesSeen: len(archives)}
	for _, a := range archives {
		err := s.repo.Transaction(ctx, func(tx Repository) error {
			switch a.ArchiveStatus {
			case contract.ArchiveStatusPending:
				a.ArchiveStatus = contract.ArchiveStatusArchived
				if err := tx.SaveArchive(a); err != nil {
					return err
				}
				result.Archived++
			case contract.ArchiveStatusArchived:
				purged, err := tx.PurgeSyncLogs(a.ContractID)
				if err != nil {
					return err
				}
				a.ArchiveStatus = contract.ArchiveStatusDeleted
				if err := tx.SaveArchive(a); err != nil {
					return err
				}
				result.PurgedLogs += purged
				result.Deleted++
			}
			return nil
		})
		if err != nil {
			s.logger.Error("retention sweep failed for archive",
				"error", err,
				"contract_id", a.ContractID,
				"archive_status", a.ArchiveStatus)
		}
	}

	s.logger.Info("retention sweep completed",
		"seen", result.ArchivesSeen,
		"archived", result.Archived,
		"deleted", result.Deleted,
		"purged_logs", result.PurgedLogs)
	return result, nil
}

// GetTerminationHistory lists the terminated contracts of one company (or of
// all companies with companyID 0), newest first.
func (s *Service) GetTerminationHistory(ctx context.Context, companyID int64) ([]TerminationRecord, error) {
	contracts, err := s.repo.ListTerminated(companyID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list terminated contracts", err)
	}

	records := make([]TerminationRecord, 0, len(contracts))
	for _, c := range contracts {
		archive, err := s.repo.GetArchive(c.ID)
		if err != nil {
			return nil, internal.NewInternalError("failed to load archive", err)
		}
		records = append(records, TerminationRecord{Contract: c, Archive: archive})
	}
	return records, nil
}
