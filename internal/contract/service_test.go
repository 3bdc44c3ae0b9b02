package contract_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hrlink/people-sync/internal"
	contractsvc "github.com/hrlink/people-sync/internal/contract"
	"github.com/hrlink/people-sync/internal/core/datamodel/contract"
)

// Mock repository for contract lifecycle tests
type mockContractRepository struct {
	contracts map[int64]*contract.Contract
	settings  map[int64]*contract.DataSharingSettings
	nextID    int64

	createError   error
	saveError     error
	findError     error
	settingsError error

	settingsCreated int
}

func newMockContractRepository() *mockContractRepository {
	return &mockContractRepository{
		contracts: make(map[int64]*contract.Contract),
		settings:  make(map[int64]*contract.DataSharingSettings),
	}
}

func (m *mockContractRepository) Transaction(ctx context.Context, fn func(contractsvc.Repository) error) error {
	return fn(m)
}

func (m *mockContractRepository) Create(c *contract.Contract) error {
	if m.createError != nil {
		return m.createError
	}
	m.nextID++
	c.ID = m.nextID
	m.contracts[c.ID] = c
	return nil
}

func (m *mockContractRepository) GetByID(id int64) (*contract.Contract, error) {
	if m.findError != nil {
		return nil, m.findError
	}
	return m.contracts[id], nil
}

func (m *mockContractRepository) FindActive(personAccountID, companyID int64) (*contract.Contract, error) {
	if m.findError != nil {
		return nil, m.findError
	}
	for _, c := range m.contracts {
		if c.PersonAccountID != personAccountID || c.CompanyID != companyID {
			continue
		}
		for _, status := range contract.ActiveStatuses {
			if c.Status == status {
				return c, nil
			}
		}
	}
	return nil, nil
}

func (m *mockContractRepository) ListByPerson(personAccountID int64) ([]*contract.Contract, error) {
	var out []*contract.Contract
	for _, c := range m.contracts {
		if c.PersonAccountID == personAccountID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockContractRepository) ListByCompany(companyID int64) ([]*contract.Contract, error) {
	var out []*contract.Contract
	for _, c := range m.contracts {
		if c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockContractRepository) Save(c *contract.Contract) error {
	if m.saveError != nil {
		return m.saveError
	}
	m.contracts[c.ID] = c
	return nil
}

func (m *mockContractRepository) GetSettings(contractID int64) (*contract.DataSharingSettings, error) {
	if m.settingsError != nil {
		return nil, m.settingsError
	}
	return m.settings[contractID], nil
}

func (m *mockContractRepository) CreateSettings(s *contract.DataSharingSettings) error {
	m.settingsCreated++
	m.settings[s.ContractID] = s
	return nil
}

func (m *mockContractRepository) SaveSettings(s *contract.DataSharingSettings) error {
	if m.settingsError != nil {
		return m.settingsError
	}
	m.settings[s.ContractID] = s
	return nil
}

var _ = Describe("Contract Service", func() {
	var (
		service *contractsvc.Service
		repo    *mockContractRepository
		ctx     context.Context
	)

	validDTO := func() contractsvc.CreateContractDTO {
		return contractsvc.CreateContractDTO{
			PersonAccountID: 1001,
			CompanyID:       1,
			ContractType:    "full_time",
			Position:        "Engineer",
			Department:      "Platform",
			RequestedBy:     500,
		}
	}

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newMockContractRepository()
		service = contractsvc.NewService(repo, nil, logger)
		ctx = context.Background()
	})

	Describe("CreateContract", func() {
		It("should open a contract in requested status", func() {
			// When creating a valid contract
			c, err := service.CreateContract(ctx, validDTO())

			// Then it starts in requested status with no settings yet
			Expect(err).ToNot(HaveOccurred())
			Expect(c.ID).ToNot(BeZero())
			Expect(c.Status).To(Equal(contract.StatusRequested))
			Expect(repo.settings).To(BeEmpty())
		})

		It("should reject a second active contract for the same person and company", func() {
			_, err := service.CreateContract(ctx, validDTO())
			Expect(err).ToNot(HaveOccurred())

			_, err = service.CreateContract(ctx, validDTO())

			Expect(err).To(Equal(internal.ErrContractAlreadyExists))
		})

		It("should allow a new contract once the previous one is terminated", func() {
			c, err := service.CreateContract(ctx, validDTO())
			Expect(err).ToNot(HaveOccurred())
			c.Status = contract.StatusTerminated
			repo.contracts[c.ID] = c

			_, err = service.CreateContract(ctx, validDTO())

			Expect(err).ToNot(HaveOccurred())
		})

		It("should allow contracts with different companies concurrently", func() {
			_, err := service.CreateContract(ctx, validDTO())
			Expect(err).ToNot(HaveOccurred())

			dto := validDTO()
			dto.CompanyID = 2
			_, err = service.CreateContract(ctx, dto)

			Expect(err).ToNot(HaveOccurred())
		})

		It("should reject an incomplete request", func() {
			dto := validDTO()
			dto.ContractType = ""

			_, err := service.CreateContract(ctx, dto)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})

	Describe("ApproveContract", func() {
		It("should approve and provision default sharing settings", func() {
			// Given a requested contract
			c, _ := service.CreateContract(ctx, validDTO())

			// When approving it
			approved, err := service.ApproveContract(ctx, c.ID, 500)

			// Then it is approved with basic and contact consent, realtime off
			Expect(err).ToNot(HaveOccurred())
			Expect(approved.Status).To(Equal(contract.StatusApproved))
			Expect(approved.ApprovedAt).ToNot(BeNil())

			settings := repo.settings[c.ID]
			Expect(settings).ToNot(BeNil())
			Expect(settings.ShareBasic).To(BeTrue())
			Expect(settings.ShareContact).To(BeTrue())
			Expect(settings.ShareEducation).To(BeFalse())
			Expect(settings.ShareCareer).To(BeFalse())
			Expect(settings.RealtimeSync).To(BeFalse())
		})

		It("should refuse to approve an already approved contract", func() {
			c, _ := service.CreateContract(ctx, validDTO())
			_, err := service.ApproveContract(ctx, c.ID, 500)
			Expect(err).ToNot(HaveOccurred())

			_, err = service.ApproveContract(ctx, c.ID, 500)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInvalidState))
			Expect(repo.settingsCreated).To(Equal(1))
		})

		It("should keep existing settings when approval retries after a partial failure", func() {
			c, _ := service.CreateContract(ctx, validDTO())
			custom := contract.DefaultSettings(c.ID)
			custom.ShareCareer = true
			repo.settings[c.ID] = custom

			_, err := service.ApproveContract(ctx, c.ID, 500)

			Expect(err).ToNot(HaveOccurred())
			Expect(repo.settingsCreated).To(BeZero())
			Expect(repo.settings[c.ID].ShareCareer).To(BeTrue())
		})

		It("should fail for an unknown contract", func() {
			_, err := service.ApproveContract(ctx, 999, 500)

			Expect(err).To(Equal(internal.ErrContractNotFound))
		})
	})

	Describe("RejectContract", func() {
		It("should move requested to rejected without provisioning settings", func() {
			c, _ := service.CreateContract(ctx, validDTO())

			rejected, err := service.RejectContract(ctx, c.ID, "position filled", 500)

			Expect(err).ToNot(HaveOccurred())
			Expect(rejected.Status).To(Equal(contract.StatusRejected))
			Expect(rejected.Notes).To(Equal("position filled"))
			Expect(repo.settings).To(BeEmpty())
		})

		It("should refuse to reject an approved contract", func() {
			c, _ := service.CreateContract(ctx, validDTO())
			service.ApproveContract(ctx, c.ID, 500)

			_, err := service.RejectContract(ctx, c.ID, "", 500)

			Expect(err).To(HaveOccurred())
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInvalidState))
		})
	})

	Describe("RequestTermination", func() {
		It("should mark an approved contract for wind-down", func() {
			c, _ := service.CreateContract(ctx, validDTO())
			service.ApproveContract(ctx, c.ID, 500)

			updated, err := service.RequestTermination(ctx, c.ID, 1001)

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Status).To(Equal(contract.StatusTerminationRequested))
		})

		It("should refuse for a requested contract", func() {
			c, _ := service.CreateContract(ctx, validDTO())

			_, err := service.RequestTermination(ctx, c.ID, 1001)

			Expect(err).To(HaveOccurred())
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInvalidState))
		})

		It("should still count as active for the duplicate check", func() {
			c, _ := service.CreateContract(ctx, validDTO())
			service.ApproveContract(ctx, c.ID, 500)
			service.RequestTermination(ctx, c.ID, 1001)

			_, err := service.CreateContract(ctx, validDTO())

			Expect(err).To(Equal(internal.ErrContractAlreadyExists))
		})
	})

	Describe("GetContract ownership", func() {
		It("should refuse access for a different account", func() {
			c, _ := service.CreateContract(ctx, validDTO())
			otherCtx := internal.ContextWithAccountID(ctx, 2002)

			_, err := service.GetContract(otherCtx, c.ID)

			Expect(err).To(Equal(internal.ErrContractNotOwned))
		})

		It("should allow the owning account", func() {
			c, _ := service.CreateContract(ctx, validDTO())
			ownerCtx := internal.ContextWithAccountID(ctx, 1001)

			loaded, err := service.GetContract(ownerCtx, c.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(loaded.ID).To(Equal(c.ID))
		})
	})

	Describe("UpdateSettings", func() {
		boolPtr := func(v bool) *bool { return &v }

		It("should apply only the provided flags", func() {
			c, _ := service.CreateContract(ctx, validDTO())
			service.ApproveContract(ctx, c.ID, 500)

			settings, err := service.UpdateSettings(ctx, c.ID, contractsvc.UpdateSettingsDTO{
				ShareCareer:  boolPtr(true),
				RealtimeSync: boolPtr(true),
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(settings.ShareCareer).To(BeTrue())
			Expect(settings.RealtimeSync).To(BeTrue())
			// Untouched flags keep their defaults
			Expect(settings.ShareBasic).To(BeTrue())
			Expect(settings.ShareEducation).To(BeFalse())
		})

		It("should refuse changes on a terminated contract", func() {
			c, _ := service.CreateContract(ctx, validDTO())
			service.ApproveContract(ctx, c.ID, 500)
			c.Status = contract.StatusTerminated
			repo.contracts[c.ID] = c

			_, err := service.UpdateSettings(ctx, c.ID, contractsvc.UpdateSettingsDTO{
				ShareBasic: boolPtr(true),
			})

			Expect(err).To(HaveOccurred())
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInvalidState))
		})

		It("should fail when settings were never provisioned", func() {
			c, _ := service.CreateContract(ctx, validDTO())

			_, err := service.UpdateSettings(ctx, c.ID, contractsvc.UpdateSettingsDTO{
				ShareBasic: boolPtr(false),
			})

			Expect(err).To(Equal(internal.ErrSettingsNotFound))
		})

		It("should surface a storage failure", func() {
			c, _ := service.CreateContract(ctx, validDTO())
			service.ApproveContract(ctx, c.ID, 500)
			repo.settingsError = errors.New("connection reset")

			_, err := service.UpdateSettings(ctx, c.ID, contractsvc.UpdateSettingsDTO{
				ShareBasic: boolPtr(false),
			})

			Expect(err).To(HaveOccurred())
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
		})
	})
})
