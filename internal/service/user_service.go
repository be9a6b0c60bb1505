package service

import (
	"context"
	"time"

	"github.com/cwrk-planet/relay-service/internal/domain"
	"github.com/cwrk-planet/relay-service/internal/postgres"
)

// TokenVerifier resolves a bearer credential to a subject id.
type TokenVerifier interface {
	Subject(token string) (string, error)
}

type UserService struct {
	userRepo *postgres.UserRepository
	verifier TokenVerifier
}

func NewUserService(userRepo *postgres.UserRepository, verifier TokenVerifier) *UserService {
	return &UserService{userRepo: userRepo, verifier: verifier}
}

// Authenticate verifies the credential and loads the identity behind it.
// Blocked identities are rejected here, before any event is processed.
func (s *UserService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	sub, err := s.verifier.Subject(token)
	if err != nil {
		return nil, err
	}
	u, err := s.userRepo.Get(ctx, sub)
	if err != nil {
		return nil, err
	}
	if u.Blocked {
		return nil, domain.ErrUserBlocked
	}
	return u, nil
}

func (s *UserService) UserWithFriends(ctx context.Context, id string) (*domain.User, error) {
	return s.userRepo.GetWithFriends(ctx, id)
}

func (s *UserService) SetOnlineStatus(ctx context.Context, id string, online bool, lastSeen time.Time) error {
	return s.userRepo.SetOnlineStatus(ctx, id, online, lastSeen)
}
