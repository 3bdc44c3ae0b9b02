package contract

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrlink/people-sync/internal"
	"github.com/hrlink/people-sync/internal/core/datamodel/contract"
	"github.com/hrlink/people-sync/internal/core/events"
)

// Repository is the persistence surface of the contract lifecycle.
// Transaction yields a repository bound to one database transaction.
type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	Create(c *contract.Contract) error
	GetByID(id int64) (*contract.Contract, error)
	FindActive(personAccountID, companyID int64) (*contract.Contract, error)
	ListByPerson(personAccountID int64) ([]*contract.Contract, error)
	ListByCompany(companyID int64) ([]*contract.Contract, error)
	Save(c *contract.Contract) error
	GetSettings(contractID int64) (*contract.DataSharingSettings, error)
	CreateSettings(s *contract.DataSharingSettings) error
	SaveSettings(s *contract.DataSharingSettings) error
}

// Service drives the contract state machine. Approval is the single gate
// that provisions consent settings; both happen in one transaction.
type Service struct {
	repo     Repository
	eventBus *events.EventBus
	logger   *slog.Logger
}

func NewService(repo Repository, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// CreateContract opens a new contract in requested status. At most one
// non-terminal contract may exist per (person, company) pair.
func (s *Service) CreateContract(ctx context.Context, dto CreateContractDTO) (*contract.Contract, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("contract validation failed", "error", err)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	existing, err := s.repo.FindActive(dto.PersonAccountID, dto.CompanyID)
	if err != nil {
		return nil, internal.NewInternalError("failed to check existing contracts", err)
	}
	if existing != nil {
		s.logger.Warn("duplicate contract rejected",
			"person_account_id", dto.PersonAccountID,
			"company_id", dto.CompanyID,
			"existing_contract_id", existing.ID)
		return nil, internal.ErrContractAlreadyExists
	}

	c := &contract.Contract{
		PersonAccountID: dto.PersonAccountID,
		CompanyID:       dto.CompanyID,
		Status:          contract.StatusRequested,
		ContractType:    dto.ContractType,
		Position:        dto.Position,
		Department:      dto.Department,
		RequestedBy:     dto.RequestedBy,
		Notes:           dto.Notes,
	}
	if err := s.repo.Create(c); err != nil {
		s.logger.Error("failed to create contract", "error", err)
		return nil, internal.NewInternalError("failed to create contract", err)
	}

	s.logger.Info("contract created",
		"contract_id", c.ID,
		"person_account_id", c.PersonAccountID,
		"company_id", c.CompanyID)
	return c, nil
}

func (s *Service) GetContract(ctx context.Context, id int64) (*contract.Contract, error) {
	c, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load contract", err)
	}
	if c == nil {
		return nil, internal.ErrContractNotFound
	}
	if actor := internal.AccountIDFromContext(ctx); actor != 0 && actor != c.PersonAccountID {
		return nil, internal.ErrContractNotOwned
	}
	return c, nil
}

func (s *Service) ListContractsForPerson(ctx context.Context, personAccountID int64) ([]*contract.Contract, error) {
	contracts, err := s.repo.ListByPerson(personAccountID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list contracts", err)
	}
	return contracts, nil
}

// ApproveContract moves requested to approved, stamping ApprovedAt and
// provisioning default sharing settings in the same transaction. Settings are
// only created when none exist yet, so re-approval attempts can never leave a
// second settings row behind.
func (s *Service) ApproveContract(ctx context.Context, id int64, approvedBy int64) (*contract.Contract, error) {
	c, err := s.GetContract(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != contract.StatusRequested {
		s.logger.Warn("cannot approve contract in current status",
			"contract_id", id, "status", c.Status)
		return nil, internal.NewInvalidStateError("only requested contracts can be approved", internal.ErrCodeInvalidStatus)
	}

	now := time.Now()
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		c.Status = contract.StatusApproved
		c.ApprovedAt = &now
		if err := tx.Save(c); err != nil {
			return err
		}

		settings, err := tx.GetSettings(c.ID)
		if err != nil {
			return err
		}
		if settings == nil {
			if err := tx.CreateSettings(contract.DefaultSettings(c.ID)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to approve contract", "error", err, "contract_id", id)
		return nil, internal.NewInternalError("failed to approve contract", err)
	}

	s.logger.Info("contract approved", "contract_id", c.ID, "approved_by", approvedBy)

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.NewContractApprovedEvent(c.ID, c.PersonAccountID, c.CompanyID, approvedBy))
	}
	return c, nil
}

// RejectContract moves requested to rejected, a terminal status. No settings
// are ever provisioned for a rejected contract.
func (s *Service) RejectContract(ctx context.Context, id int64, reason string, rejectedBy int64) (*contract.Contract, error) {
	c, err := s.GetContract(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != contract.StatusRequested {
		return nil, internal.NewInvalidStateError("only requested contracts can be rejected", internal.ErrCodeInvalidStatus)
	}

	c.Status = contract.StatusRejected
	if reason != "" {
		c.Notes = reason
	}
	if err := s.repo.Save(c); err != nil {
		return nil, internal.NewInternalError("failed to reject contract", err)
	}

	s.logger.Info("contract rejected", "contract_id", c.ID, "rejected_by", rejectedBy, "reason", reason)
	return c, nil
}

// RequestTermination marks an approved contract for wind-down. The contract
// still counts as active until it actually terminates.
func (s *Service) RequestTermination(ctx context.Context, id int64, requestedBy int64) (*contract.Contract, error) {
	c, err := s.GetContract(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != contract.StatusApproved {
		return nil, internal.NewInvalidStateError("only approved contracts can request termination", internal.ErrCodeInvalidStatus)
	}

	c.Status = contract.StatusTerminationRequested
	if err := s.repo.Save(c); err != nil {
		return nil, internal.NewInternalError("failed to request termination", err)
	}

	s.logger.Info("contract termination requested", "contract_id", c.ID, "requested_by", requestedBy)
	return c, nil
}

func (s *Service) GetSettings(ctx context.Context, contractID int64) (*contract.DataSharingSettings, error) {
	if _, err := s.GetContract(ctx, contractID); err != nil {
		return nil, err
	}
	settings, err := s.repo.GetSettings(contractID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load sharing settings", err)
	}
	if settings == nil {
		return nil, internal.ErrSettingsNotFound
	}
	return settings, nil
}

// UpdateSettings changes consent flags on a live contract. Terminated
// contracts keep their revoked state forever.
func (s *Service) UpdateSettings(ctx context.Context, contractID int64, dto UpdateSettingsDTO) (*contract.DataSharingSettings, error) {
	c, err := s.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if c.IsTerminal() {
		return nil, internal.NewInvalidStateError("sharing settings of a closed contract cannot change", internal.ErrCodeInvalidStatus)
	}

	settings, err := s.repo.GetSettings(contractID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load sharing settings", err)
	}
	if settings == nil {
		return nil, internal.ErrSettingsNotFound
	}

	dto.ApplyTo(settings)
	if err := s.repo.SaveSettings(settings); err != nil {
		return nil, internal.NewInternalError("failed to save sharing settings", err)
	}

	s.logger.Info("sharing settings updated",
		"contract_id", contractID,
		"realtime_sync", settings.RealtimeSync)
	return settings, nil
}
