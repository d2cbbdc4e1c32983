package service

import (
	"strings"

	"hivechat/internal/apperr"
	"hivechat/internal/entity"
	"hivechat/internal/nlog"
	"hivechat/internal/repository"
)

// Service used to sync identities from the external auth provider.
type UserService interface {
	SyncUser(externalID, name, imageURL string) (*entity.User, error) // Upserts the user row keyed by the provider's stable id.
}

type userService struct {
	logger         nlog.Logger
	userRepository repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository, logger nlog.Logger) UserService {
	return &userService{
		logger:         logger,
		userRepository: userRepo,
	}
}

func (s *userService) Logf(format string, v ...any) {
	s.logger.Logf(format, v...)
}

func (s *userService) SyncUser(externalID, name, imageURL string) (*entity.User, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, apperr.Validation("externalId is required")
	}

	user, err := s.userRepository.Upsert(externalID, name, imageURL)
	if err != nil {
		s.Logf("Could not sync user %s {%v}", externalID, err)
		return nil, apperr.Internal(err)
	}

	s.Logf("Synced user %s -> %s", externalID, user.UUID)
	return user, nil
}
