package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeContractApproved   = "contract.approved"
	EventTypeContractTerminated = "contract.terminated"
)

type ContractApprovedEvent struct {
	BaseEvent
	ContractID      int64 `json:"contract_id"`
	PersonAccountID int64 `json:"person_account_id"`
	CompanyID       int64 `json:"company_id"`
	ApprovedBy      int64 `json:"approved_by"`
}

func NewContractApprovedEvent(contractID, personAccountID, companyID, approvedBy int64) *ContractApprovedEvent {
	return &ContractApprovedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeContractApproved,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"contract_id":       contractID,
				"person_account_id": personAccountID,
				"company_id":        companyID,
				"approved_by":       approvedBy,
			},
		},
		ContractID:      contractID,
		PersonAccountID: personAccountID,
		CompanyID:       companyID,
		ApprovedBy:      approvedBy,
	}
}

type ContractTerminatedEvent struct {
	BaseEvent
	ContractID      int64  `json:"contract_id"`
	PersonAccountID int64  `json:"person_account_id"`
	CompanyID       int64  `json:"company_id"`
	Reason          string `json:"reason"`
	TerminatedBy    int64  `json:"terminated_by"`
}

func NewContractTerminatedEvent(contractID, personAccountID, companyID int64, reason string, terminatedBy int64) *ContractTerminatedEvent {
	return &ContractTerminatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeContractTerminated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"contract_id":       contractID,
				"person_account_id": personAccountID,
				"company_id":        companyID,
				"reason":            reason,
				"terminated_by":     terminatedBy,
			},
		},
		ContractID:      contractID,
		PersonAccountID: personAccountID,
		CompanyID:       companyID,
		Reason:          reason,
		TerminatedBy:    terminatedBy,
	}
}
