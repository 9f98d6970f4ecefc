package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// UpsertFromAuth records a successful OAuth login and returns the stored user.
func (s *Service) UpsertFromAuth(ctx context.Context, provider, subject, email, name, picture string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	provider = strings.TrimSpace(provider)
	subject = strings.TrimSpace(subject)
	if provider == "" || subject == "" {
		return User{}, errors.New("provider and subject are required")
	}
	user, err := s.Repo.Upsert(ctx, User{
		ID:         provider + ":" + subject,
		Provider:   provider,
		Subject:    subject,
		Email:      strings.TrimSpace(email),
		Name:       strings.TrimSpace(name),
		PictureURL: strings.TrimSpace(picture),
	})
	if err != nil {
		return User{}, fmt.Errorf("upsert user: %w", err)
	}
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID)
}
