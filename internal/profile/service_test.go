package profile_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hrlink/people-sync/internal"
	"github.com/hrlink/people-sync/internal/core/datamodel/profile"
	"github.com/hrlink/people-sync/internal/datasync"
	profilesvc "github.com/hrlink/people-sync/internal/profile"
)

// Mock repository for profile write path tests
type mockProfileRepository struct {
	profiles map[int64]*profile.PersonalProfile

	saveError    error
	replaceError error
	replaceCalls []string
}

func newMockProfileRepository() *mockProfileRepository {
	return &mockProfileRepository{profiles: make(map[int64]*profile.PersonalProfile)}
}

func (m *mockProfileRepository) Transaction(ctx context.Context, fn func(profilesvc.Repository) error) error {
	return fn(m)
}

func (m *mockProfileRepository) GetByPersonAccountID(personAccountID int64) (*profile.PersonalProfile, error) {
	return m.profiles[personAccountID], nil
}

func (m *mockProfileRepository) Save(p *profile.PersonalProfile) error {
	if m.saveError != nil {
		return m.saveError
	}
	m.profiles[p.PersonAccountID] = p
	return nil
}

func (m *mockProfileRepository) replace(name string) error {
	if m.replaceError != nil {
		return m.replaceError
	}
	m.replaceCalls = append(m.replaceCalls, name)
	return nil
}

func (m *mockProfileRepository) ReplaceEducations(profileID int64, records []profile.Education) error {
	return m.replace("educations")
}

func (m *mockProfileRepository) ReplaceCareers(profileID int64, records []profile.Career) error {
	return m.replace("careers")
}

func (m *mockProfileRepository) ReplaceCertificates(profileID int64, records []profile.Certificate) error {
	return m.replace("certificates")
}

func (m *mockProfileRepository) ReplaceLanguages(profileID int64, records []profile.Language) error {
	return m.replace("languages")
}

func (m *mockProfileRepository) ReplaceMilitary(profileID int64, record *profile.Military) error {
	return m.replace("military")
}

func (m *mockProfileRepository) ReplaceFamilies(profileID int64, records []profile.Family) error {
	return m.replace("families")
}

// Sync facade recording drained persons
type recordingSyncAPI struct {
	synced []int64
}

func (r *recordingSyncAPI) SyncAllContractsForUser(ctx context.Context, personAccountID int64, syncType string) (*datasync.UserSyncResult, error) {
	r.synced = append(r.synced, personAccountID)
	return &datasync.UserSyncResult{PersonAccountID: personAccountID}, nil
}

var _ = Describe("Profile Service", func() {
	var (
		service     *profilesvc.Service
		repo        *mockProfileRepository
		coordinator *datasync.Coordinator
		syncer      *recordingSyncAPI
		ctx         context.Context
	)

	strPtr := func(v string) *string { return &v }

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newMockProfileRepository()
		syncer = &recordingSyncAPI{}
		coordinator = datasync.NewCoordinator(syncer, logger)
		service = profilesvc.NewService(repo, coordinator, logger)
		ctx = context.Background()

		repo.profiles[1001] = &profile.PersonalProfile{
			ID:              3,
			PersonAccountID: 1001,
			LastName:        "Tanaka",
			FirstName:       "Yuki",
			Email:           "tanaka@example.com",
		}
	})

	Describe("GetProfile", func() {
		It("should return the profile", func() {
			p, err := service.GetProfile(ctx, 1001)

			Expect(err).ToNot(HaveOccurred())
			Expect(p.LastName).To(Equal("Tanaka"))
		})

		It("should fail for an unknown person", func() {
			_, err := service.GetProfile(ctx, 9999)

			Expect(err).To(Equal(internal.ErrProfileNotFound))
		})
	})

	Describe("UpdateProfile", func() {
		It("should apply only the provided scalar fields", func() {
			updated, err := service.UpdateProfile(ctx, 1001, profilesvc.UpdateProfileDTO{
				MobilePhone: strPtr("090-1234-5678"),
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.MobilePhone).To(Equal("090-1234-5678"))
			// Untouched fields survive
			Expect(updated.LastName).To(Equal("Tanaka"))
			Expect(updated.Email).To(Equal("tanaka@example.com"))
		})

		It("should replace only the relation sets present in the request", func() {
			_, err := service.UpdateProfile(ctx, 1001, profilesvc.UpdateProfileDTO{
				Careers: []profile.Career{{CompanyName: "Acme"}},
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(repo.replaceCalls).To(ConsistOf("careers"))
		})

		It("should trigger an auto-sync sweep after the commit", func() {
			_, err := service.UpdateProfile(ctx, 1001, profilesvc.UpdateProfileDTO{
				LastName: strPtr("Sato"),
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(syncer.synced).To(ConsistOf(int64(1001)))
		})

		It("should not sweep while auto-sync is disabled", func() {
			coordinator.Disable()

			_, err := service.UpdateProfile(ctx, 1001, profilesvc.UpdateProfileDTO{
				LastName: strPtr("Sato"),
			})

			// The edit still lands; only the propagation is suppressed
			Expect(err).ToNot(HaveOccurred())
			Expect(repo.profiles[1001].LastName).To(Equal("Sato"))
			Expect(syncer.synced).To(BeEmpty())
		})

		It("should not sweep when the write fails", func() {
			repo.saveError = errors.New("connection reset")

			_, err := service.UpdateProfile(ctx, 1001, profilesvc.UpdateProfileDTO{
				LastName: strPtr("Sato"),
			})

			Expect(err).To(HaveOccurred())
			Expect(syncer.synced).To(BeEmpty())
		})

		It("should fail for an unknown person", func() {
			_, err := service.UpdateProfile(ctx, 9999, profilesvc.UpdateProfileDTO{
				LastName: strPtr("Sato"),
			})

			Expect(err).To(Equal(internal.ErrProfileNotFound))
		})
	})
})
