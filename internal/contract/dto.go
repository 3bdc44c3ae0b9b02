package contract

import (
	"errors"

	"github.com/hrlink/people-sync/internal/core/datamodel/contract"
)

type CreateContractDTO struct {
	PersonAccountID int64  `json:"person_account_id"`
	CompanyID       int64  `json:"company_id"`
	ContractType    string `json:"contract_type"`
	Position        string `json:"position"`
	Department      string `json:"department"`
	RequestedBy     int64  `json:"requested_by"`
	Notes           string `json:"notes,omitempty"`
}

func (dto CreateContractDTO) Validate() error {
	if dto.PersonAccountID <= 0 {
		return errors.New("person_account_id is required")
	}
	if dto.CompanyID <= 0 {
		return errors.New("company_id is required")
	}
	if dto.ContractType == "" {
		return errors.New("contract_type is required")
	}
	return nil
}

type ApproveContractDTO struct {
	ApprovedBy int64 `json:"approved_by"`
}

type RejectContractDTO struct {
	Reason     string `json:"reason"`
	RejectedBy int64  `json:"rejected_by"`
}

type RequestTerminationDTO struct {
	RequestedBy int64 `json:"requested_by"`
}

// UpdateSettingsDTO carries a partial settings update; nil flags stay as they
// are.
type UpdateSettingsDTO struct {
	ShareBasic        *bool `json:"share_basic,omitempty"`
	ShareContact      *bool `json:"share_contact,omitempty"`
	ShareEducation    *bool `json:"share_education,omitempty"`
	ShareCareer       *bool `json:"share_career,omitempty"`
	ShareCertificates *bool `json:"share_certificates,omitempty"`
	ShareLanguages    *bool `json:"share_languages,omitempty"`
	ShareMilitary     *bool `json:"share_military,omitempty"`
	RealtimeSync      *bool `json:"realtime_sync,omitempty"`
}

func (dto UpdateSettingsDTO) ApplyTo(s *contract.DataSharingSettings) {
	if dto.ShareBasic != nil {
		s.ShareBasic = *dto.ShareBasic
	}
	if dto.ShareContact != nil {
		s.ShareContact = *dto.ShareContact
	}
	if dto.ShareEducation != nil {
		s.ShareEducation = *dto.ShareEducation
	}
	if dto.ShareCareer != nil {
		s.ShareCareer = *dto.ShareCareer
	}
	if dto.ShareCertificates != nil {
		s.ShareCertificates = *dto.ShareCertificates
	}
	if dto.ShareLanguages != nil {
		s.ShareLanguages = *dto.ShareLanguages
	}
	if dto.ShareMilitary != nil {
		s.ShareMilitary = *dto.ShareMilitary
	}
	if dto.RealtimeSync != nil {
		s.RealtimeSync = *dto.RealtimeSync
	}
}

type ContractsResponse struct {
	Contracts []*contract.Contract `json:"contracts"`
}
