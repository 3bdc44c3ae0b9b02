package integrity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hrlink/people-sync/internal"
	"github.com/hrlink/people-sync/internal/core/datamodel/contract"
	"github.com/hrlink/people-sync/internal/core/datamodel/employee"
)

// Issue codes reported by the validator. The auto-fixable ones are resolved
// with status or timestamp writes only; the rest need operator intervention
// because fixing them would mean inventing data.
const (
	IssueApprovedEmployeeNotActive  = "approved_contract_employee_not_active"
	IssueResignedContractApproved   = "resigned_employee_contract_approved"
	IssueResignedNoDate             = "resigned_no_date"
	IssueApprovedMissingEmployeeNum = "approved_missing_employee_number"
	IssueEmployeeNumberOrphan       = "employee_number_orphan"
	IssueEmployeeMissingPersonLink  = "employee_missing_person_link"
	IssueEmployeeMissingCompany     = "employee_missing_company"
	IssueApprovedMissingApprovedAt  = "approved_missing_approved_at"
)

const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Issue is one detected inconsistency between a contract and its employee
// record.
type Issue struct {
	Code        string `json:"code"`
	Severity    string `json:"severity"`
	ContractID  int64  `json:"contract_id,omitempty"`
	EmployeeID  int64  `json:"employee_id,omitempty"`
	Message     string `json:"message"`
	AutoFixable bool   `json:"auto_fixable"`
}

// Repository is the read/write surface the validator scans and repairs
// through.
type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	ListApprovedContracts(companyID int64) ([]*contract.Contract, error)
	ListEmployees(companyID int64) ([]*employee.Employee, error)
	GetContract(id int64) (*contract.Contract, error)
	GetEmployee(id int64) (*employee.Employee, error)
	FindEmployeeByNumber(companyID int64, number string) (*employee.Employee, error)
	SaveContract(c *contract.Contract) error
	SaveEmployee(e *employee.Employee) error
}

// Service is a stateless batch validator over contracts and employee records.
// companyID 0 scans everything.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ValidateAll scans approved contracts and employee records and reports every
// typed issue it finds. The scan itself never writes.
func (s *Service) ValidateAll(ctx context.Context, companyID int64) ([]Issue, error) {
	issues, err := s.scan(s.repo, companyID)
	if err != nil {
		return nil, internal.NewInternalError("integrity scan failed", err)
	}
	return issues, nil
}

func (s *Service) scan(repo Repository, companyID int64) ([]Issue, error) {
	var issues []Issue

	contracts, err := repo.ListApprovedContracts(companyID)
	if err != nil {
		return nil, err
	}

	for _, c := range contracts {
		if c.ApprovedAt == nil {
			issues = append(issues, Issue{
				Code:        IssueApprovedMissingApprovedAt,
				Severity:    SeverityWarning,
				ContractID:  c.ID,
				Message:     fmt.Sprintf("contract %d is approved but has no approval timestamp", c.ID),
				AutoFixable: true,
			})
		}

		if c.EmployeeNumber == nil || *c.EmployeeNumber == "" {
			issues = append(issues, Issue{
				Code:       IssueApprovedMissingEmployeeNum,
				Severity:   SeverityWarning,
				ContractID: c.ID,
				Message:    fmt.Sprintf("contract %d is approved but has no employee number", c.ID),
			})
			continue
		}

		emp, err := repo.FindEmployeeByNumber(c.CompanyID, *c.EmployeeNumber)
		if err != nil {
			return nil, err
		}
		if emp == nil {
			issues = append(issues, Issue{
				Code:       IssueEmployeeNumberOrphan,
				Severity:   SeverityError,
				ContractID: c.ID,
				Message:    fmt.Sprintf("contract %d references employee number %s with no matching record", c.ID, *c.EmployeeNumber),
			})
			continue
		}

		switch emp.Status {
		case employee.StatusPreActive:
			issues = append(issues, Issue{
				Code:        IssueApprovedEmployeeNotActive,
				Severity:    SeverityWarning,
				ContractID:  c.ID,
				EmployeeID:  emp.ID,
				Message:     fmt.Sprintf("contract %d is approved but employee %d is still pre-active", c.ID, emp.ID),
				AutoFixable: true,
			})
		case employee.StatusResigned:
			issues = append(issues, Issue{
				Code:        IssueResignedContractApproved,
				Severity:    SeverityError,
				ContractID:  c.ID,
				EmployeeID:  emp.ID,
				Message:     fmt.Sprintf("employee %d resigned but contract %d is still approved", emp.ID, c.ID),
				AutoFixable: true,
			})
		}
	}

	employees, err := repo.ListEmployees(companyID)
	if err != nil {
		return nil, err
	}

	for _, emp := range employees {
		if emp.IsResigned() && emp.ResignationDate == nil {
			issues = append(issues, Issue{
				Code:        IssueResignedNoDate,
				Severity:    SeverityWarning,
				EmployeeID:  emp.ID,
				Message:     fmt.Sprintf("employee %d resigned without a resignation date", emp.ID),
				AutoFixable: true,
			})
		}
		if emp.Status == employee.StatusActive && emp.PersonAccountID == nil {
			issues = append(issues, Issue{
				Code:       IssueEmployeeMissingPersonLink,
				Severity:   SeverityWarning,
				EmployeeID: emp.ID,
				Message:    fmt.Sprintf("active employee %d has no linked person account", emp.ID),
			})
		}
		if emp.CompanyID == 0 {
			issues = append(issues, Issue{
				Code:       IssueEmployeeMissingCompany,
				Severity:   SeverityError,
				EmployeeID: emp.ID,
				Message:    fmt.Sprintf("employee %d has no company", emp.ID),
			})
		}
	}

	return issues, nil
}

// Summary aggregates scan results by issue code.
type Summary struct {
	Total       int            `json:"total"`
	AutoFixable int            `json:"auto_fixable"`
	Errors      int            `json:"errors"`
	Warnings    int            `json:"warnings"`
	ByCode      map[string]int `json:"by_code"`
}

func (s *Service) GetSummary(ctx context.Context, companyID int64) (*Summary, error) {
	issues, err := s.ValidateAll(ctx, companyID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{ByCode: make(map[string]int)}
	for _, issue := range issues {
		summary.Total++
		summary.ByCode[issue.Code]++
		if issue.AutoFixable {
			summary.AutoFixable++
		}
		if issue.Severity == SeverityError {
			summary.Errors++
		} else {
			summary.Warnings++
		}
	}
	return summary, nil
}

// FixResult reports what AutoFix did, or would do with dryRun set.
type FixResult struct {
	DryRun bool    `json:"dry_run"`
	Fixed  []Issue `json:"fixed"`
	Manual []Issue `json:"manual"`
}

// AutoFix resolves the auto-fixable issue classes. Pre-active employees under
// approved contracts are activated, contracts for resigned employees move to
// termination_requested, missing resignation dates and approval timestamps
// are stamped with now. Everything else is returned for manual resolution.
// All fixes of one invocation share a transaction.
func (s *Service) AutoFix(ctx context.Context, companyID int64, dryRun bool) (*FixResult, error) {
	issues, err := s.ValidateAll(ctx, companyID)
	if err != nil {
		return nil, err
	}

	result := &FixResult{DryRun: dryRun}
	for _, issue := range issues {
		if issue.AutoFixable {
			result.Fixed = append(result.Fixed, issue)
		} else {
			result.Manual = append(result.Manual, issue)
		}
	}

	if dryRun || len(result.Fixed) == 0 {
		return result, nil
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		for _, issue := range result.Fixed {
			if err := s.applyFix(tx, issue); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, internal.NewInternalError("auto-fix failed", err)
	}

	s.logger.Info("integrity auto-fix applied",
		"company_id", companyID,
		"fixed", len(result.Fixed),
		"manual", len(result.Manual))
	return result, nil
}

func (s *Service) applyFix(repo Repository, issue Issue) error {
	now := time.Now()

	switch issue.Code {
	case IssueApprovedMissingApprovedAt:
		c, err := s.loadContract(repo, issue.ContractID)
		if err != nil {
			return err
		}
		c.ApprovedAt = &now
		return repo.SaveContract(c)

	case IssueApprovedEmployeeNotActive:
		emp, err := s.loadEmployee(repo, issue.EmployeeID)
		if err != nil {
			return err
		}
		emp.Status = employee.StatusActive
		return repo.SaveEmployee(emp)

	case IssueResignedContractApproved:
		c, err := s.loadContract(repo, issue.ContractID)
		if err != nil {
			return err
		}
		c.Status = contract.StatusTerminationRequested
		return repo.SaveContract(c)

	case IssueResignedNoDate:
		emp, err := s.loadEmployee(repo, issue.EmployeeID)
		if err != nil {
			return err
		}
		emp.ResignationDate = &now
		return repo.SaveEmployee(emp)
	}

	return fmt.Errorf("issue %s is not auto-fixable", issue.Code)
}

func (s *Service) loadContract(repo Repository, id int64) (*contract.Contract, error) {
	c, err := repo.GetContract(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, internal.ErrContractNotFound
	}
	return c, nil
}

func (s *Service) loadEmployee(repo Repository, id int64) (*employee.Employee, error) {
	emp, err := repo.GetEmployee(id)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, internal.ErrEmployeeNotFound
	}
	return emp, nil
}
