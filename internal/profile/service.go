package profile

import (
	"context"
	"log/slog"

	"github.com/hrlink/people-sync/internal"
	"github.com/hrlink/people-sync/internal/core/datamodel/profile"
	"github.com/hrlink/people-sync/internal/datasync"
)

// Repository is the persistence surface of the profile write path.
type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	GetByPersonAccountID(personAccountID int64) (*profile.PersonalProfile, error)
	Save(p *profile.PersonalProfile) error
	ReplaceEducations(profileID int64, records []profile.Education) error
	ReplaceCareers(profileID int64, records []profile.Career) error
	ReplaceCertificates(profileID int64, records []profile.Certificate) error
	ReplaceLanguages(profileID int64, records []profile.Language) error
	ReplaceMilitary(profileID int64, record *profile.Military) error
	ReplaceFamilies(profileID int64, records []profile.Family) error
}

// Service is the narrow profile write path. It exists as the trigger surface
// for auto-sync: every committed edit lands in the coordinator's pending set
// and the set is drained after the commit, never inside it.
type Service struct {
	repo        Repository
	coordinator *datasync.Coordinator
	logger      *slog.Logger
}

func NewService(repo Repository, coordinator *datasync.Coordinator, logger *slog.Logger) *Service {
	return &Service{repo: repo, coordinator: coordinator, logger: logger}
}

func (s *Service) GetProfile(ctx context.Context, personAccountID int64) (*profile.PersonalProfile, error) {
	p, err := s.repo.GetByPersonAccountID(personAccountID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load profile", err)
	}
	if p == nil {
		return nil, internal.ErrProfileNotFound
	}
	return p, nil
}

// UpdateProfile applies a partial update to the person's profile in one
// transaction, then drains pending auto-sync work. Relation writes do not
// pass through the owner-tracking callback, so the person is marked pending
// explicitly before the drain.
func (s *Service) UpdateProfile(ctx context.Context, personAccountID int64, dto UpdateProfileDTO) (*profile.PersonalProfile, error) {
	p, err := s.repo.GetByPersonAccountID(personAccountID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load profile", err)
	}
	if p == nil {
		return nil, internal.ErrProfileNotFound
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		dto.ApplyTo(p)
		if err := tx.Save(p); err != nil {
			return err
		}

		if dto.Educations != nil {
			if err := tx.ReplaceEducations(p.ID, dto.Educations); err != nil {
				return err
			}
		}
		if dto.Careers != nil {
			if err := tx.ReplaceCareers(p.ID, dto.Careers); err != nil {
				return err
			}
		}
		if dto.Certificates != nil {
			if err := tx.ReplaceCertificates(p.ID, dto.Certificates); err != nil {
				return err
			}
		}
		if dto.Languages != nil {
			if err := tx.ReplaceLanguages(p.ID, dto.Languages); err != nil {
				return err
			}
		}
		if dto.Military != nil {
			if err := tx.ReplaceMilitary(p.ID, dto.Military); err != nil {
				return err
			}
		}
		if dto.Families != nil {
			if err := tx.ReplaceFamilies(p.ID, dto.Families); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to update profile", "error", err, "person_account_id", personAccountID)
		return nil, internal.NewInternalError("failed to update profile", err)
	}

	if s.coordinator != nil {
		s.coordinator.MarkPending(personAccountID)
		s.coordinator.DrainPending(ctx)
	}

	updated, err := s.repo.GetByPersonAccountID(personAccountID)
	if err != nil {
		return nil, internal.NewInternalError("failed to reload profile", err)
	}
	return updated, nil
}
