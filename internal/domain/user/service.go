package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) UpsertProfile(ctx context.Context, userID, email, fullName, avatarURL string) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	profile := Profile{UserID: userID}
	if email != "" {
		profile.Email = &email
	}
	if fullName != "" {
		profile.FullName = &fullName
	}
	if avatarURL != "" {
		profile.AvatarURL = &avatarURL
	}

	return s.repo.UpsertProfile(ctx, &profile)
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

// DisplayName returns the best human-readable name for a user: full name,
// then email local part, then the raw id.
func (s *Service) DisplayName(ctx context.Context, userID string) (string, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return userID, nil
		}
		return "", err
	}

	if profile.FullName != nil && strings.TrimSpace(*profile.FullName) != "" {
		return strings.TrimSpace(*profile.FullName), nil
	}
	if profile.Email != nil && *profile.Email != "" {
		if at := strings.Index(*profile.Email, "@"); at > 0 {
			return (*profile.Email)[:at], nil
		}
		return *profile.Email, nil
	}
	return userID, nil
}
