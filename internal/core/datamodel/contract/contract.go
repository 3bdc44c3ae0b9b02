package contract

import (
	"time"
)

// Contract is the consent record linking one person account to one company.
// Every movement of data between the two HR representations is gated by the
// status and the sharing settings of exactly one contract.
type Contract struct {
	ID              int64      `json:"id" gorm:"primaryKey"`
	PersonAccountID int64      `json:"person_account_id" gorm:"column:person_account_id;not null;index"`
	CompanyID       int64      `json:"company_id" gorm:"column:company_id;not null;index"`
	Status          string     `json:"status" gorm:"column:status;default:requested"`
	ContractType    string     `json:"contract_type" gorm:"column:contract_type"`
	Position        string     `json:"position" gorm:"column:position"`
	Department      string     `json:"department" gorm:"column:department"`
	EmployeeNumber  *string    `json:"employee_number,omitempty" gorm:"column:employee_number"`
	RequestedBy     int64      `json:"requested_by" gorm:"column:requested_by"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty" gorm:"column:approved_at"`
	TerminatedAt    *time.Time `json:"terminated_at,omitempty" gorm:"column:terminated_at"`
	Notes           string     `json:"notes" gorm:"column:notes"`
	CreatedAt       time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Contract) TableName() string {
	return "contracts"
}

const (
	StatusRequested            = "requested"
	StatusApproved             = "approved"
	StatusRejected             = "rejected"
	StatusTerminationRequested = "termination_requested"
	StatusTerminated           = "terminated"
)

// ActiveStatuses are statuses that count against the one-active-contract
// invariant per (person, company) pair. termination_requested still counts.
var ActiveStatuses = []string{StatusRequested, StatusApproved, StatusTerminationRequested}

func (c *Contract) IsApproved() bool {
	return c.Status == StatusApproved
}

func (c *Contract) IsTerminated() bool {
	return c.Status == StatusTerminated
}

func (c *Contract) IsTerminal() bool {
	return c.Status == StatusRejected || c.Status == StatusTerminated
}

// DataSharingSettings is the 1:1 consent record of a contract. Created with
// permissive defaults when the contract is approved, forced all-false when it
// terminates.
type DataSharingSettings struct {
	ID                int64     `json:"id" gorm:"primaryKey"`
	ContractID        int64     `json:"contract_id" gorm:"column:contract_id;uniqueIndex;not null"`
	ShareBasic        bool      `json:"share_basic" gorm:"column:share_basic"`
	ShareContact      bool      `json:"share_contact" gorm:"column:share_contact"`
	ShareEducation    bool      `json:"share_education" gorm:"column:share_education"`
	ShareCareer       bool      `json:"share_career" gorm:"column:share_career"`
	ShareCertificates bool      `json:"share_certificates" gorm:"column:share_certificates"`
	ShareLanguages    bool      `json:"share_languages" gorm:"column:share_languages"`
	ShareMilitary     bool      `json:"share_military" gorm:"column:share_military"`
	RealtimeSync      bool      `json:"realtime_sync" gorm:"column:realtime_sync"`
	CreatedAt         time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (DataSharingSettings) TableName() string {
	return "data_sharing_settings"
}

// DefaultSettings are the permissive defaults provisioned on approval:
// identity and contact data flow, everything else stays opt-in.
func DefaultSettings(contractID int64) *DataSharingSettings {
	return &DataSharingSettings{
		ContractID:   contractID,
		ShareBasic:   true,
		ShareContact: true,
	}
}

// RevokeAll turns every consent flag off, including realtime sync.
func (s *DataSharingSettings) RevokeAll() {
	s.ShareBasic = false
	s.ShareContact = false
	s.ShareEducation = false
	s.ShareCareer = false
	s.ShareCertificates = false
	s.ShareLanguages = false
	s.ShareMilitary = false
	s.RealtimeSync = false
}

// SharesGroup reports whether the named share group is currently consented.
func (s *DataSharingSettings) SharesGroup(group string) bool {
	switch group {
	case "basic":
		return s.ShareBasic
	case "contact":
		return s.ShareContact
	case "education":
		return s.ShareEducation
	case "career":
		return s.ShareCareer
	case "certificates":
		return s.ShareCertificates
	case "languages":
		return s.ShareLanguages
	case "military":
		return s.ShareMilitary
	case "family":
		// family records carry no flag of their own and ride with basic
		return s.ShareBasic
	default:
		return false
	}
}

const (
	ArchiveStatusPending  = "pending"
	ArchiveStatusArchived = "archived"
	ArchiveStatusDeleted  = "deleted"
)

// ContractArchive marks a terminated contract as eligible for the retention
// sweep. The sweep itself is out-of-band housekeeping; this row only records
// eligibility and the computed window.
type ContractArchive struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	ContractID    int64     `json:"contract_id" gorm:"column:contract_id;uniqueIndex;not null"`
	ArchiveStatus string    `json:"archive_status" gorm:"column:archive_status;default:pending"`
	TerminatedAt  time.Time `json:"terminated_at" gorm:"column:terminated_at"`
	RetentionEnd  time.Time `json:"retention_end" gorm:"column:retention_end"`
	CreatedAt     time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (ContractArchive) TableName() string {
	return "contract_archives"
}
